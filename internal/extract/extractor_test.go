package extract

import (
	"strings"
	"testing"
)

// passthroughSanitizer はマークアップ除去を行わないテスト用サニタイザー。
type passthroughSanitizer struct{}

func (passthroughSanitizer) SanitizeText(raw string) string {
	return raw
}

func newTestExtractor() *Extractor {
	return NewExtractor(passthroughSanitizer{})
}

// --- タイトル抽出のテスト ---

func TestExtract_TitleSelectorPrecedence(t *testing.T) {
	// h1とtitleの両方がある場合、表の先頭にあるh1が勝つこと
	html := `<html><head><title>Shop Title</title></head>
<body><h1>Product X</h1></body></html>`

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.Title != "Product X" {
		t.Errorf("Title = %q, want %q", ext.Title, "Product X")
	}
}

func TestExtract_TitleFallbackToTitleTag(t *testing.T) {
	// h1がない場合は次のセレクタ（title）にフォールバックすること
	html := `<html><head><title>Fallback Title</title></head><body><p>text</p></body></html>`

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.Title != "Fallback Title" {
		t.Errorf("Title = %q, want %q", ext.Title, "Fallback Title")
	}
}

func TestExtract_TitleClassSelector(t *testing.T) {
	html := `<html><body><div class="product-title">Widget Deluxe</div></body></html>`

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.Title != "Widget Deluxe" {
		t.Errorf("Title = %q, want %q", ext.Title, "Widget Deluxe")
	}
}

func TestExtract_TitleUnknownWhenNoSelectorMatches(t *testing.T) {
	html := `<html><body><div>just some text</div></body></html>`

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.Title != TitleUnknown {
		t.Errorf("Title = %q, want %q", ext.Title, TitleUnknown)
	}
}

func TestExtract_TitleEmptyMatchFallsThrough(t *testing.T) {
	// 空白のみのh1はスキップし、次のセレクタを評価すること
	html := `<html><head><title>Real Title</title></head><body><h1>   </h1></body></html>`

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.Title != "Real Title" {
		t.Errorf("Title = %q, want %q", ext.Title, "Real Title")
	}
}

func TestExtract_TitleWhitespaceCollapsed(t *testing.T) {
	html := "<html><body><h1>  Super \n\t  Widget  </h1></body></html>"

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.Title != "Super Widget" {
		t.Errorf("Title = %q, want %q", ext.Title, "Super Widget")
	}
}

func TestExtract_TitleTruncatedToMaxLength(t *testing.T) {
	long := strings.Repeat("a", 150)
	html := "<html><body><h1>" + long + "</h1></body></html>"

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if len([]rune(ext.Title)) != TitleMaxLength {
		t.Errorf("タイトル長 = %d, want %d", len([]rune(ext.Title)), TitleMaxLength)
	}
}

// --- 価格抽出のテスト ---

func TestExtract_PriceFromPriceClass(t *testing.T) {
	html := `<html><body><span class="price">€19,99</span></body></html>`

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.Price == nil {
		t.Fatal("Price が nil であってはならない")
	}
	if *ext.Price != "€19,99" {
		t.Errorf("Price = %q, want %q", *ext.Price, "€19,99")
	}
}

func TestExtract_PriceSymbolAfterNumber(t *testing.T) {
	html := `<html><body><span class="prezzo">1.299 €</span></body></html>`

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.Price == nil {
		t.Fatal("Price が nil であってはならない")
	}
	if *ext.Price != "1.299 €" {
		t.Errorf("Price = %q, want %q", *ext.Price, "1.299 €")
	}
}

func TestExtract_PriceSelectorOrderWins(t *testing.T) {
	// ドキュメント内の出現順でなくセレクタ表の順で決まること
	html := `<html><body>
<span class="cost">$5.00</span>
<span class="price">$10.00</span>
</body></html>`

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.Price == nil {
		t.Fatal("Price が nil であってはならない")
	}
	if *ext.Price != "$10.00" {
		t.Errorf("Price = %q, want %q", *ext.Price, "$10.00")
	}
}

func TestExtract_PriceFallsThroughNonMatchingSelector(t *testing.T) {
	// 先のセレクタの要素に金額がなければ次のセレクタを評価すること
	html := `<html><body>
<span class="price">Contact us</span>
<span class="cost">£7,50</span>
</body></html>`

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.Price == nil {
		t.Fatal("Price が nil であってはならない")
	}
	if *ext.Price != "£7,50" {
		t.Errorf("Price = %q, want %q", *ext.Price, "£7,50")
	}
}

func TestExtract_PriceNilWhenNoCurrencyToken(t *testing.T) {
	html := `<html><body><span class="price">TBD</span></body></html>`

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.Price != nil {
		t.Errorf("Price = %q, want nil", *ext.Price)
	}
}

// --- 在庫判定のテスト ---

func TestDetectAvailability(t *testing.T) {
	tests := []struct {
		name     string
		pageText string
		want     bool
	}{
		{
			name:     "在庫切れキーワードで false",
			pageText: "This item is currently Sold Out.",
			want:     false,
		},
		{
			name:     "在庫切れが在庫ありより優先される",
			pageText: "Sold out, but you can Add to cart a similar item",
			want:     false,
		},
		{
			name:     "イタリア語の在庫切れ表記",
			pageText: "Prodotto esaurito",
			want:     false,
		},
		{
			name:     "在庫ありキーワードで true",
			pageText: "Aggiungi al carrello",
			want:     true,
		},
		{
			name:     "大文字小文字を無視する",
			pageText: "IN STOCK NOW",
			want:     true,
		},
		{
			name:     "どちらにも一致しなければ楽観的に true",
			pageText: "Welcome to our shop",
			want:     true,
		},
		{
			name:     "空テキストも true",
			pageText: "",
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectAvailability(tt.pageText); got != tt.want {
				t.Errorf("DetectAvailability(%q) = %v, want %v", tt.pageText, got, tt.want)
			}
		})
	}
}

func TestExtract_InStockScansWholeDocument(t *testing.T) {
	// 在庫キーワードはセレクタではなくページ全文から検出すること
	html := `<html><body><h1>Widget</h1><footer>non disponibile</footer></body></html>`

	ext, err := newTestExtractor().Extract([]byte(html))
	if err != nil {
		t.Fatalf("Extract() がエラーを返した: %v", err)
	}
	if ext.InStock {
		t.Error("InStock = true, want false")
	}
}
