// Package model はドメインモデルを定義する。
package model

import "time"

// Extraction はヒューリスティック抽出が1ページから導出した生シグナルを表す。
// Priceは通貨記号を含むマッチ文字列そのもので、数値正規化は行わない。
type Extraction struct {
	Title   string
	Price   *string
	InStock bool
}

// CheckResult は1リンク1サイクル分のチェック結果を表す。
// 永続化されず、通知コンシューマのみが消費する。
// Errorが空でない場合は「シグナルなし」を意味し、在庫切れとは解釈しない。
type CheckResult struct {
	Name          string  `json:"name"`
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	InStock       *bool   `json:"in_stock"`
	Price         *string `json:"price"`
	StatusChanged bool    `json:"status_changed"`
	PriceChanged  bool    `json:"price_changed"`
	OldPrice      *string `json:"old_price"`
	Error         string  `json:"error,omitempty"`
}

// CheckReport は1サイクル分の全チェック結果を表す。
// CycleIDはログ相関用のUUIDで、結果はレジストリの登録順に並ぶ。
type CheckReport struct {
	CycleID    string        `json:"cycle_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Results    []CheckResult `json:"results"`
}

// HasChanges は在庫状態または価格の変化を含む結果が1件以上あるかを返す。
func (r *CheckReport) HasChanges() bool {
	for _, res := range r.Results {
		if res.Error != "" {
			continue
		}
		if res.StatusChanged || res.PriceChanged {
			return true
		}
	}
	return false
}
