// Package notify はチェックレポートの通知機能を提供する。
// レポートのMarkdownレンダリングとTelegram Bot APIによる配信を含む。
package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/stockwatch/internal/model"
)

// RenderReport はチェックレポートを通知用Markdownテキストに変換する。
// 在庫変化セクションを価格変化セクションより先に並べる。
// 変化が1件もない場合は空文字列を返す（通知不要の合図）。
// エラーになった結果は変化として扱わない。
func RenderReport(report *model.CheckReport, now time.Time) string {
	var statusChanges []string
	var priceChanges []string

	for _, r := range report.Results {
		if r.Error != "" {
			continue
		}

		if r.StatusChanged && r.InStock != nil {
			if *r.InStock {
				statusChanges = append(statusChanges,
					fmt.Sprintf("✅ **%s** è tornato DISPONIBILE!", r.Name))
			} else {
				statusChanges = append(statusChanges,
					fmt.Sprintf("❌ **%s** è diventato NON DISPONIBILE!", r.Name))
			}
		}

		if r.PriceChanged && r.Price != nil && r.OldPrice != nil {
			priceChanges = append(priceChanges,
				fmt.Sprintf("💰 **%s** - Prezzo cambiato: %s → %s", r.Name, *r.OldPrice, *r.Price))
		}
	}

	if len(statusChanges) == 0 && len(priceChanges) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("🔔 **Aggiornamenti Prodotti**\n\n")

	if len(statusChanges) > 0 {
		b.WriteString("**📦 Cambiamenti di disponibilità:**\n")
		b.WriteString(strings.Join(statusChanges, "\n"))
		b.WriteString("\n\n")
	}

	if len(priceChanges) > 0 {
		b.WriteString("**💰 Cambiamenti di prezzo:**\n")
		b.WriteString(strings.Join(priceChanges, "\n"))
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("🕐 Controllo eseguito: %s", now.Format("02/01/2006 15:04")))

	return b.String()
}
