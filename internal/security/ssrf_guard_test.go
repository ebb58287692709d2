package security

import (
	"testing"
	"time"
)

func TestSSRFGuard_ValidateURL(t *testing.T) {
	g := NewSSRFGuard()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"通常のhttps URL", "https://shop.example/product/1", false},
		{"通常のhttp URL", "http://shop.example/p", false},
		{"空URL", "", true},
		{"fileスキーム", "file:///etc/passwd", true},
		{"ftpスキーム", "ftp://example.com/", true},
		{"ホストなし", "https://", true},
		{"localhost", "http://localhost/admin", true},
		{"ループバックIP", "http://127.0.0.1/", true},
		{"プライベートIP 10系", "http://10.0.0.5/", true},
		{"プライベートIP 192.168系", "http://192.168.1.1/", true},
		{"プライベートIP 172.16系", "http://172.16.0.1/", true},
		{"リンクローカル（メタデータIP）", "http://169.254.169.254/latest/meta-data/", true},
		{"IPv6ループバック", "http://[::1]/", true},
		{"パブリックIPは許可", "http://93.184.216.34/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateURL(tt.url)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateURL(%q) はエラーを返すべき", tt.url)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateURL(%q) がエラーを返した: %v", tt.url, err)
			}
		})
	}
}

func TestSSRFGuard_NewSafeClient(t *testing.T) {
	g := NewSSRFGuard()

	client := g.NewSafeClient(10*time.Second, 5*1024*1024)
	if client == nil {
		t.Fatal("NewSafeClient は nil を返してはならない")
	}
}
