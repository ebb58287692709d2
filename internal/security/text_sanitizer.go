// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService は抽出したページテキスト（商品タイトルなど）から
// HTMLマークアップを除去する。抽出結果は通知メッセージやAPIレスポンスに
// そのまま埋め込まれるため、bluemondayの全タグ除去ポリシーで
// 残存マークアップを確実に落とす。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はプレーンテキスト化機能のインターフェースを定義する。
type TextSanitizerService interface {
	// SanitizeText は入力からすべてのHTMLタグを除去し、
	// エンティティをデコードした前後トリム済みのテキストを返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeText(raw string) string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのStrictPolicy（全タグ除去）を保持し、スレッドセーフに動作する。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// SanitizeText は入力からすべてのHTMLタグを除去したテキストを返す。
// StrictPolicyはエスケープ済みエンティティを残すため、除去後にデコードする。
func (s *textSanitizer) SanitizeText(raw string) string {
	stripped := s.policy.Sanitize(raw)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
