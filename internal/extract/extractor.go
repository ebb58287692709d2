// Package extract はHTMLからのヒューリスティック抽出を提供する。
// サイト固有のスキーマに依存せず、順序付きセレクタ表とキーワード表の
// 先勝ちルールでタイトル・価格・在庫状態をベストエフォートで導出する。
package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/hitoshi/stockwatch/internal/model"
)

const (
	// TitleMaxLength は商品タイトルの最大長（文字数）。超過分は切り詰める。
	TitleMaxLength = 100
	// TitleUnknown はタイトルがどの規則でも抽出できなかった場合のプレースホルダ。
	TitleUnknown = "Unknown product"
	// TitleCheckFailed は取得・パース失敗時にタイトル欄へ入れるプレースホルダ。
	TitleCheckFailed = "Check failed"
)

// TitleSelectors は商品タイトル抽出のセレクタ表。
// 上から順に評価し、空でないトリム済みテキストを持つ最初のセレクタが勝つ。
// 優先順位が暗黙の制御フローに埋もれないよう、順序付きデータとして公開する。
var TitleSelectors = []string{
	"h1",
	"title",
	".product-title",
	".product-name",
	".item-title",
	"#product-title",
	".entry-title",
}

// PriceSelectors は価格抽出のセレクタ表。
// 各セレクタの最初の一致要素のテキストに通貨パターンを照合し、
// 最初に正規表現がマッチしたセレクタが勝つ。
var PriceSelectors = []string{
	".price",
	".cost",
	".amount",
	".valor",
	".prezzo",
	"[class*=price]",
	"[class*=cost]",
	"[id*=price]",
	".product-price",
	".regular-price",
	".sale-price",
}

// UnavailableKeywords は在庫切れを示すキーワード表。
// いずれか1つでもページテキストに含まれれば、AvailableKeywordsの
// 一致有無にかかわらず直ちに在庫切れと判定する。この優先順位は
// 変更してはならないポリシーである（「売り切れ」表示の横に
// カートボタンが残るページを誤判定しないため）。
var UnavailableKeywords = []string{
	"esaurito",
	"non disponibile",
	"out of stock",
	"sold out",
	"temporarily unavailable",
	"currently unavailable",
	"fuori stock",
	"prodotto terminato",
	"non in magazzino",
}

// AvailableKeywords は在庫ありを示すキーワード表。
// UnavailableKeywordsが1つも一致しなかった場合のみ評価する。
var AvailableKeywords = []string{
	"disponibile",
	"in stock",
	"available",
	"aggiungi al carrello",
	"add to cart",
	"buy now",
	"acquista ora",
	"in magazzino",
}

// priceRe は通貨金額のパターン。
// 通貨記号（€/$/£/¥）+ 小数（カンマまたはドット区切り）、
// またはその逆順にマッチする。マッチ全体（記号込み）をそのまま価格として扱い、
// 数値への正規化や通貨換算は行わない。
var priceRe = regexp.MustCompile(`[€$£¥]\s*\d+(?:[.,]\d+)?|\d+(?:[.,]\d+)?\s*[€$£¥]`)

// Extractor は生HTMLから商品シグナルを抽出する。
type Extractor struct {
	sanitizer TextSanitizer
}

// TextSanitizer は抽出テキストのマークアップ除去インターフェース。
// security.TextSanitizerServiceを抽象化してテスタビリティを向上させる。
type TextSanitizer interface {
	SanitizeText(raw string) string
}

// NewExtractor はExtractorの新しいインスタンスを生成する。
func NewExtractor(sanitizer TextSanitizer) *Extractor {
	return &Extractor{sanitizer: sanitizer}
}

// Extract は生HTMLからタイトル・価格・在庫状態を導出する。
// パースに失敗した場合はエラーを返し、呼び出し元は結果を
// 「シグナルなし」として扱う（在庫切れと解釈してはならない）。
func (e *Extractor) Extract(body []byte) (model.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return model.Extraction{}, fmt.Errorf("HTMLのパースに失敗しました: %w", err)
	}

	return model.Extraction{
		Title:   e.extractTitle(doc),
		Price:   extractPrice(doc),
		InStock: DetectAvailability(string(body)),
	}, nil
}

// extractTitle はセレクタ表を順に評価してタイトルを抽出する。
// 各セレクタはドキュメント順で最初の一致要素のみを見る。
// どの規則も一致しない場合はプレースホルダを返す。
// 結果はマークアップ除去と空白正規化を経て最大長に切り詰める。
func (e *Extractor) extractTitle(doc *goquery.Document) string {
	for _, selector := range TitleSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := collapseWhitespace(e.sanitizer.SanitizeText(sel.Text())); text != "" {
			return truncateRunes(text, TitleMaxLength)
		}
	}

	return TitleUnknown
}

// extractPrice はセレクタ表を順に評価して価格トークンを抽出する。
// 正規表現のマッチ全体（通貨記号込み）をそのまま返す。
// どのセレクタからも金額が取れない場合はnilを返す。
func extractPrice(doc *goquery.Document) *string {
	for _, selector := range PriceSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		text := strings.TrimSpace(sel.Text())
		if match := priceRe.FindString(text); match != "" {
			return &match
		}
	}

	return nil
}

// DetectAvailability はページ全文の大文字小文字を無視した部分一致で在庫状態を判定する。
// 判定順序:
//  1. UnavailableKeywordsのいずれかが含まれれば false
//  2. それ以外でAvailableKeywordsのいずれかが含まれれば true
//  3. どちらの表にも一致しなければ true
//
// 手順3の楽観的デフォルトは意図的なヒューリスティックであり、
// 判定材料のないページを在庫ありとみなす既知の弱点を含む。
func DetectAvailability(pageText string) bool {
	lower := strings.ToLower(pageText)

	for _, keyword := range UnavailableKeywords {
		if strings.Contains(lower, keyword) {
			return false
		}
	}

	for _, keyword := range AvailableKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}

	return true
}

// collapseWhitespace は連続する空白類を単一スペースにまとめる。
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes は文字数ベースでsをmax文字に切り詰める。
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
