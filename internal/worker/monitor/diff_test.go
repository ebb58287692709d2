package monitor

import (
	"testing"
	"time"

	"github.com/hitoshi/stockwatch/internal/model"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// --- 差分検出のテスト ---

func TestCompare_FirstCheckNeverReportsStatusChange(t *testing.T) {
	// 初回チェック（前回在庫状態なし）では在庫変化を報告しないこと
	prev := &model.MonitoredLink{Name: "x", URL: "https://example.com/p"}
	curr := model.Extraction{Title: "P", InStock: false}

	d := Compare(prev, curr)

	if d.StatusChanged {
		t.Error("StatusChanged = true, want false")
	}
	if d.PriceChanged {
		t.Error("PriceChanged = true, want false")
	}
}

func TestCompare_StatusFlipDetected(t *testing.T) {
	prev := &model.MonitoredLink{InStock: boolPtr(false)}
	curr := model.Extraction{InStock: true}

	d := Compare(prev, curr)

	if !d.StatusChanged {
		t.Error("StatusChanged = false, want true")
	}
}

func TestCompare_SameStatusNoChange(t *testing.T) {
	prev := &model.MonitoredLink{InStock: boolPtr(true)}
	curr := model.Extraction{InStock: true}

	if d := Compare(prev, curr); d.StatusChanged {
		t.Error("StatusChanged = true, want false")
	}
}

func TestCompare_PriceChangeRequiresBothPrices(t *testing.T) {
	tests := []struct {
		name      string
		prevPrice *string
		currPrice *string
		want      bool
	}{
		{"両方あり・異なる", strPtr("$10"), strPtr("$12"), true},
		{"両方あり・同一", strPtr("$10"), strPtr("$10"), false},
		{"前回なし", nil, strPtr("$12"), false},
		{"今回なし", strPtr("$10"), nil, false},
		{"両方なし", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := &model.MonitoredLink{LastPrice: tt.prevPrice}
			curr := model.Extraction{Price: tt.currPrice}

			if d := Compare(prev, curr); d.PriceChanged != tt.want {
				t.Errorf("PriceChanged = %v, want %v", d.PriceChanged, tt.want)
			}
		})
	}
}

func TestCompare_PriceIsComparedAsString(t *testing.T) {
	// 価格は数値でなく文字列として比較すること（€19,99 と €19.99 は別値）
	prev := &model.MonitoredLink{LastPrice: strPtr("€19,99")}
	curr := model.Extraction{Price: strPtr("€19.99")}

	if d := Compare(prev, curr); !d.PriceChanged {
		t.Error("PriceChanged = false, want true")
	}
}

func TestCompare_OldPriceCarriesPreviousValue(t *testing.T) {
	prev := &model.MonitoredLink{LastPrice: strPtr("$10")}
	curr := model.Extraction{Price: strPtr("$12")}

	d := Compare(prev, curr)

	if d.OldPrice == nil || *d.OldPrice != "$10" {
		t.Errorf("OldPrice = %v, want $10", d.OldPrice)
	}
}

// --- スナップショット更新のテスト ---

func TestApplySnapshot_WritesAllFields(t *testing.T) {
	link := &model.MonitoredLink{Name: "x", URL: "https://example.com/p"}
	now := time.Now()
	curr := model.Extraction{Title: "Widget", Price: strPtr("$9.99"), InStock: true}

	ApplySnapshot(link, curr, now)

	if link.LastCheck == nil || !link.LastCheck.Equal(now) {
		t.Errorf("LastCheck = %v, want %v", link.LastCheck, now)
	}
	if link.LastStatus == nil || *link.LastStatus != model.LinkStatusAvailable {
		t.Errorf("LastStatus = %v, want available", link.LastStatus)
	}
	if link.LastPrice == nil || *link.LastPrice != "$9.99" {
		t.Errorf("LastPrice = %v, want $9.99", link.LastPrice)
	}
	if link.InStock == nil || !*link.InStock {
		t.Errorf("InStock = %v, want true", link.InStock)
	}
	if link.ProductTitle != "Widget" {
		t.Errorf("ProductTitle = %q, want %q", link.ProductTitle, "Widget")
	}
}

func TestApplySnapshot_UnavailableStatus(t *testing.T) {
	link := &model.MonitoredLink{}

	ApplySnapshot(link, model.Extraction{InStock: false}, time.Now())

	if link.LastStatus == nil || *link.LastStatus != model.LinkStatusUnavailable {
		t.Errorf("LastStatus = %v, want unavailable", link.LastStatus)
	}
}

func TestApplyCheckFailure_KeepsPreviousSnapshot(t *testing.T) {
	// 取得失敗は確認時刻のみ進め、直前の在庫状態と価格を保持すること
	prevCheck := time.Now().Add(-time.Hour)
	status := model.LinkStatusAvailable
	link := &model.MonitoredLink{
		LastCheck:  &prevCheck,
		LastStatus: &status,
		LastPrice:  strPtr("$10"),
		InStock:    boolPtr(true),
	}

	now := time.Now()
	ApplyCheckFailure(link, now)

	if link.LastCheck == nil || !link.LastCheck.Equal(now) {
		t.Errorf("LastCheck = %v, want %v", link.LastCheck, now)
	}
	if link.LastStatus == nil || *link.LastStatus != model.LinkStatusAvailable {
		t.Errorf("LastStatus = %v, want available", link.LastStatus)
	}
	if link.LastPrice == nil || *link.LastPrice != "$10" {
		t.Errorf("LastPrice = %v, want $10", link.LastPrice)
	}
	if link.InStock == nil || !*link.InStock {
		t.Errorf("InStock = %v, want true", link.InStock)
	}
}
