package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/stockwatch/internal/model"
)

// TelegramClient はTelegram Bot APIの通知クライアント。
// sendMessageエンドポイントのみを使用する。
type TelegramClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	apiBase    string // テスト用にエンドポイントを差し替え可能
	token      string
	chatID     string
}

// NewTelegramClient はTelegramClient の新しいインスタンスを生成する。
func NewTelegramClient(httpClient *http.Client, logger *slog.Logger, apiBase, token, chatID string) *TelegramClient {
	return &TelegramClient{
		httpClient: httpClient,
		logger:     logger,
		apiBase:    apiBase,
		token:      token,
		chatID:     chatID,
	}
}

// NotifyReport はレポートをレンダリングし、変化があればTelegramへ送信する。
// 変化がないレポートは送信せずnilを返す。
func (c *TelegramClient) NotifyReport(ctx context.Context, report *model.CheckReport) error {
	text := RenderReport(report, time.Now())
	if text == "" {
		c.logger.Info("変化がないため通知をスキップします", "cycle_id", report.CycleID)
		return nil
	}

	if err := c.SendMessage(ctx, text); err != nil {
		return err
	}

	c.logger.Info("通知を送信しました", "cycle_id", report.CycleID)
	return nil
}

// SendMessage はテキストをMarkdown形式でチャットへ送信する。
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)

	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Telegram APIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("Telegram APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Telegram APIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
		)
		return fmt.Errorf("Telegram APIがステータス %d を返しました", resp.StatusCode)
	}

	return nil
}
