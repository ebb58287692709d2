package monitor

import (
	"time"

	"github.com/hitoshi/stockwatch/internal/model"
)

// Diff は前回スナップショットと今回チェック結果の差分を表す。
type Diff struct {
	StatusChanged bool
	PriceChanged  bool
	OldPrice      *string
}

// Compare は登録リンクの前回スナップショットと今回の抽出結果を比較する。
// 在庫変化は前回の在庫状態が記録されている場合のみ検出する（初回チェックは変化なし）。
// 価格変化は前回と今回の両方に価格がある場合のみ、文字列比較で検出する。
// ApplySnapshotより先に呼ぶこと。スナップショット更新後は前回値が失われる。
func Compare(prev *model.MonitoredLink, curr model.Extraction) Diff {
	d := Diff{OldPrice: prev.LastPrice}

	if prev.InStock != nil && *prev.InStock != curr.InStock {
		d.StatusChanged = true
	}

	if prev.LastPrice != nil && curr.Price != nil && *prev.LastPrice != *curr.Price {
		d.PriceChanged = true
	}

	return d
}

// ApplySnapshot はチェック成功後のスナップショットをリンクへ書き込む。
func ApplySnapshot(link *model.MonitoredLink, curr model.Extraction, now time.Time) {
	status := model.LinkStatusUnavailable
	if curr.InStock {
		status = model.LinkStatusAvailable
	}

	inStock := curr.InStock

	link.LastCheck = &now
	link.LastStatus = &status
	link.LastPrice = curr.Price
	link.InStock = &inStock
	if curr.Title != "" {
		link.ProductTitle = curr.Title
	}
}

// ApplyCheckFailure はチェック失敗時の更新を行う。
// 確認時刻のみ進め、直前の在庫状態と価格は保持する。
// 一時的な取得失敗で既知の状態を消さないため。
func ApplyCheckFailure(link *model.MonitoredLink, now time.Time) {
	link.LastCheck = &now
}
