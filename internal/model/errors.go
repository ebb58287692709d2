// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrLinkNotFound は指定されたリンクがレジストリに存在しない場合のエラー。
var ErrLinkNotFound = errors.New("リンクがレジストリに存在しません")

// FetchError はページ取得の失敗（ネットワークエラー、タイムアウト、非2xx応答）を表す。
// サイクル内ではリンク単位で記録され、他リンクのチェックを止めない。
type FetchError struct {
	URL        string
	StatusCode int // レスポンス受信前の失敗は0
	Err        error
}

// Error はerrorインターフェースを実装する。
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ページ取得に失敗しました: %s (HTTPステータス %d)", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("ページ取得に失敗しました: %s: %v", e.URL, e.Err)
}

// Unwrap はラップされたエラーを返す。
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError はネットワークレベルの取得失敗エラーを生成する。
func NewFetchError(url string, err error) *FetchError {
	return &FetchError{URL: url, Err: err}
}

// NewFetchStatusError は非2xxステータスによる取得失敗エラーを生成する。
func NewFetchStatusError(url string, statusCode int) *FetchError {
	return &FetchError{URL: url, StatusCode: statusCode}
}

// ValidationError は登録入力の検証失敗（空URL、不正な形式など）を表す。
// バッチ登録では該当行のみが拒否され、他の行には影響しない。
type ValidationError struct {
	Input  string
	Reason string
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("無効な入力です: %s", e.Reason)
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(input, reason string) *ValidationError {
	return &ValidationError{Input: input, Reason: reason}
}

// PersistenceError はレジストリファイルの書き込み失敗を表す。
// 非致命として扱い、プロセス存続中はメモリ上の状態が正となる。
type PersistenceError struct {
	Path string
	Err  error
}

// Error はerrorインターフェースを実装する。
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("レジストリの保存に失敗しました: %s: %v", e.Path, e.Err)
}

// Unwrap はラップされたエラーを返す。
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError はレジストリ保存エラーを生成する。
func NewPersistenceError(path string, err error) *PersistenceError {
	return &PersistenceError{Path: path, Err: err}
}
