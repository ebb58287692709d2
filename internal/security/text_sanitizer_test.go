package security

import "testing"

func TestTextSanitizer_SanitizeText(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"プレーンテキストはそのまま", "Widget Deluxe", "Widget Deluxe"},
		{"タグを除去", "<b>Widget</b> <script>alert(1)</script>Deluxe", "Widget Deluxe"},
		{"HTMLエンティティを復元", "Fish &amp; Chips", "Fish & Chips"},
		{"前後の空白を除去", "  Widget  ", "Widget"},
		{"空文字列", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
