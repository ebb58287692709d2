// Package model はドメインモデルを定義する。
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// LinkStatus は最後のチェックで観測した在庫状態を表す。
type LinkStatus string

const (
	// LinkStatusAvailable は商品が購入可能な状態。
	LinkStatusAvailable LinkStatus = "available"
	// LinkStatusUnavailable は商品が在庫切れの状態。
	LinkStatusUnavailable LinkStatus = "unavailable"
)

// MonitoredLink は監視対象の商品URLと直近の観測スナップショットを表す。
// 正規化済みURLが唯一のキーであり、同一URLの再登録は既存エントリを上書きする。
// LastCheck / LastStatus / LastPrice / InStock は初回チェックまですべてnil。
// 履歴は保持せず、各チェックで最新値のみを上書き保存する。
type MonitoredLink struct {
	Name         string      `json:"name"`
	URL          string      `json:"url"`
	LastCheck    *time.Time  `json:"last_check"`
	LastStatus   *LinkStatus `json:"last_status"`
	LastPrice    *string     `json:"last_price"`
	InStock      *bool       `json:"in_stock"`
	ProductTitle string      `json:"product_title"`
	AddedDate    time.Time   `json:"added_date"`
}

// ID はリンクの安定した衝突フリー識別子を返す。
// 正規化済みURLのSHA-256全幅ハッシュ（16進文字列）であり、
// 永続化せず都度導出する。短縮ハッシュは登録数の増加で衝突するため使用しない。
func (l *MonitoredLink) ID() string {
	return LinkID(l.URL)
}

// LinkID は正規化済みURLからリンク識別子を導出する。
func LinkID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}
