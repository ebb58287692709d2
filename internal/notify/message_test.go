package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/stockwatch/internal/model"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestRenderReport_EmptyWhenNoChanges(t *testing.T) {
	report := &model.CheckReport{
		Results: []model.CheckResult{
			{Name: "a", InStock: boolPtr(true)},
			{Name: "b", Error: "timeout"},
		},
	}

	if got := RenderReport(report, time.Now()); got != "" {
		t.Errorf("変化なしのレポートは空文字列を返すべき, got %q", got)
	}
}

func TestRenderReport_StatusChangeSections(t *testing.T) {
	report := &model.CheckReport{
		Results: []model.CheckResult{
			{Name: "Widget", InStock: boolPtr(true), StatusChanged: true},
			{Name: "Gadget", InStock: boolPtr(false), StatusChanged: true},
		},
	}

	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	got := RenderReport(report, now)

	if !strings.Contains(got, "**Widget** è tornato DISPONIBILE!") {
		t.Errorf("再入荷の行が含まれるべき:\n%s", got)
	}
	if !strings.Contains(got, "**Gadget** è diventato NON DISPONIBILE!") {
		t.Errorf("在庫切れの行が含まれるべき:\n%s", got)
	}
	if !strings.Contains(got, "Cambiamenti di disponibilità") {
		t.Errorf("在庫変化セクションの見出しが含まれるべき:\n%s", got)
	}
	if !strings.Contains(got, "15/06/2025 14:30") {
		t.Errorf("実行時刻のフッターが含まれるべき:\n%s", got)
	}
}

func TestRenderReport_PriceChangeLine(t *testing.T) {
	report := &model.CheckReport{
		Results: []model.CheckResult{
			{
				Name:         "Widget",
				InStock:      boolPtr(true),
				PriceChanged: true,
				Price:        strPtr("$12"),
				OldPrice:     strPtr("$10"),
			},
		},
	}

	got := RenderReport(report, time.Now())

	if !strings.Contains(got, "**Widget** - Prezzo cambiato: $10 → $12") {
		t.Errorf("価格変化の行が含まれるべき:\n%s", got)
	}
}

func TestRenderReport_StatusSectionComesBeforePriceSection(t *testing.T) {
	report := &model.CheckReport{
		Results: []model.CheckResult{
			{
				Name:          "Widget",
				InStock:       boolPtr(true),
				StatusChanged: true,
				PriceChanged:  true,
				Price:         strPtr("$12"),
				OldPrice:      strPtr("$10"),
			},
		},
	}

	got := RenderReport(report, time.Now())

	statusIdx := strings.Index(got, "Cambiamenti di disponibilità")
	priceIdx := strings.Index(got, "Cambiamenti di prezzo")
	if statusIdx < 0 || priceIdx < 0 {
		t.Fatalf("両方のセクションが含まれるべき:\n%s", got)
	}
	if statusIdx > priceIdx {
		t.Error("在庫変化セクションが価格変化セクションより先に並ぶべき")
	}
}

func TestRenderReport_ErroredResultsAreSkipped(t *testing.T) {
	// エラー結果はstatus_changedが立っていても通知に含めないこと
	report := &model.CheckReport{
		Results: []model.CheckResult{
			{Name: "Broken", Error: "boom", StatusChanged: true},
			{Name: "Widget", InStock: boolPtr(true), StatusChanged: true},
		},
	}

	got := RenderReport(report, time.Now())

	if strings.Contains(got, "Broken") {
		t.Errorf("エラー結果が通知に含まれてはならない:\n%s", got)
	}
	if !strings.Contains(got, "Widget") {
		t.Errorf("正常な変化は通知に含まれるべき:\n%s", got)
	}
}

func TestRenderReport_PriceChangeRequiresBothPricesInResult(t *testing.T) {
	// old_priceが欠けた価格変化は行を生成しないこと
	report := &model.CheckReport{
		Results: []model.CheckResult{
			{Name: "Widget", InStock: boolPtr(true), PriceChanged: true, Price: strPtr("$12")},
		},
	}

	if got := RenderReport(report, time.Now()); got != "" {
		t.Errorf("価格情報が不完全な場合は空文字列を返すべき, got %q", got)
	}
}
