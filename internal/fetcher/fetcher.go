// Package fetcher は監視対象ページのHTTP取得を提供する。
package fetcher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/stockwatch/internal/model"
)

// SSRFValidator はSSRF防止機能のインターフェース。
// security.SSRFGuardServiceを抽象化してテスタビリティを向上させる。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// browserHeaders は対象サイトに通常のブラウザとして振る舞うための固定ヘッダ。
// 抽出ヒューリスティックはボット向け簡易ページではなく
// 通常のHTMLを前提とするため、一般的なブラウザのヘッダ一式を送る。
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "it-IT,it;q=0.8,en-US;q=0.5,en;q=0.3",
	"Upgrade-Insecure-Requests": "1",
}

// Fetcher は1チェックにつき1回の境界付きGETを発行するPageFetcher。
// リトライ・リダイレクトポリシーのカスタマイズ・キャッシュは行わない。
type Fetcher struct {
	client      *http.Client
	ssrfGuard   SSRFValidator
	logger      *slog.Logger
	maxBodySize int64
}

// NewFetcher はFetcherの新しいインスタンスを生成する。
// HTTPクライアントはSSRF防止機能付きで、timeoutが全体の取得期限となる。
func NewFetcher(ssrfGuard SSRFValidator, logger *slog.Logger, timeout time.Duration, maxBodySize int64) *Fetcher {
	return &Fetcher{
		client:      ssrfGuard.NewSafeClient(timeout, maxBodySize),
		ssrfGuard:   ssrfGuard,
		logger:      logger,
		maxBodySize: maxBodySize,
	}
}

// Fetch は指定URLのページ本文とHTTPステータスコードを返す。
// ネットワーク失敗・タイムアウト・非2xx応答はすべてmodel.FetchErrorとして返し、
// 呼び出し元（サイクル）が該当リンクのみを失敗扱いにして継続できるようにする。
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, int, error) {
	// SSRF検証。クライアントのDialer検証に加えて、リクエスト送信前に
	// スキームとホストを静的に弾く
	if err := f.ssrfGuard.ValidateURL(url); err != nil {
		f.logger.Error("SSRF検証に失敗しました",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return nil, 0, model.NewFetchError(url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, model.NewFetchError(url, err)
	}

	for key, value := range browserHeaders {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warn("ページ取得に失敗しました",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
		return nil, 0, model.NewFetchError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		f.logger.Warn("ページ取得が非2xxステータスを返しました",
			slog.String("url", url),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, resp.StatusCode, model.NewFetchStatusError(url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, model.NewFetchError(url, err)
	}

	return body, resp.StatusCode, nil
}
