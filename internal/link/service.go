// Package link はリンク登録・管理のドメインロジックを提供する。
// URL正規化 → 名前導出 → 初回プローブ → 保存のフローを統括する。
package link

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/stockwatch/internal/extract"
	"github.com/hitoshi/stockwatch/internal/model"
)

// ProductChecker は商品ページの取得と抽出のインターフェース。
// 登録時の初回同期プローブ（product_titleの取得）に使用する。
type ProductChecker interface {
	Check(ctx context.Context, url string) (model.Extraction, error)
}

// Store はサービスが必要とするレジストリ操作のインターフェース。
// registry.Registryを抽象化してテスタビリティを向上させる。
type Store interface {
	Put(link *model.MonitoredLink) error
	Remove(url string) (*model.MonitoredLink, error)
	RemoveAll() (int, error)
	List() []*model.MonitoredLink
	Get(url string) (*model.MonitoredLink, bool)
	FindByID(id string) (*model.MonitoredLink, bool)
}

// Service はリンク登録・削除のサービス層。
type Service struct {
	store   Store
	checker ProductChecker
	logger  *slog.Logger
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(store Store, checker ProductChecker, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		checker: checker,
		logger:  logger,
	}
}

// AddResult はバッチ登録の1行分の結果を表す。
type AddResult struct {
	Input string
	Link  *model.MonitoredLink
	Err   error
}

// NormalizeURL は登録入力のURLを正規化する。
// スキームがなければhttps://を前置し、パース不能または
// ホストのない入力はmodel.ValidationErrorとして拒否する。
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", model.NewValidationError(raw, "URLが空です")
	}

	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", model.NewValidationError(raw, "URLとして解釈できません: "+err.Error())
	}
	if parsed.Hostname() == "" {
		return "", model.NewValidationError(raw, "ホスト名がありません")
	}

	return trimmed, nil
}

// DeriveName は正規化済みURLのホスト名から表示名を導出する。
// 先頭のwww.は取り除く。
func DeriveName(normalizedURL string) string {
	parsed, err := url.Parse(normalizedURL)
	if err != nil {
		return normalizedURL
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// ParseLine は登録入力の1行を「URL」または「URL|名前」として分解する。
func ParseLine(line string) (rawURL, name string) {
	if before, after, found := strings.Cut(line, "|"); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return strings.TrimSpace(line), ""
}

// Add はリンクを正規化して登録する。同一URLの再登録は既存エントリを上書きする。
// 登録時に初回の同期プローブを1回行い、product_titleを取得する。
// プローブの失敗は登録を妨げず、タイトルにプレースホルダを入れて続行する。
// 監視スナップショット（last_check等）は初回サイクルまですべて未設定のまま残す。
func (s *Service) Add(ctx context.Context, rawURL, name string) (*model.MonitoredLink, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = DeriveName(normalized)
	}

	title := extract.TitleCheckFailed
	extraction, err := s.checker.Check(ctx, normalized)
	if err != nil {
		s.logger.Warn("初回プローブに失敗しました",
			slog.String("url", normalized),
			slog.String("error", err.Error()),
		)
	} else {
		title = extraction.Title
	}

	monitored := &model.MonitoredLink{
		Name:         name,
		URL:          normalized,
		ProductTitle: title,
		AddedDate:    time.Now(),
	}

	if err := s.store.Put(monitored); err != nil {
		// 永続化失敗は非致命。メモリ上の登録は有効なまま続行する。
		s.logger.Error("レジストリの保存に失敗しました",
			slog.String("url", normalized),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("リンクを登録しました",
		slog.String("url", normalized),
		slog.String("name", name),
	)

	return monitored, nil
}

// AddBatch は改行区切りの複数行入力を1行ずつ登録する。
// 各行は「URL」または「URL|名前」形式。不正な行はその行だけが失敗し、
// 残りの行の登録には影響しない。空行は無視する。
func (s *Service) AddBatch(ctx context.Context, input string) []AddResult {
	var results []AddResult

	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rawURL, name := ParseLine(line)
		added, err := s.Add(ctx, rawURL, name)
		results = append(results, AddResult{Input: line, Link: added, Err: err})
	}

	return results
}

// Remove は正規化済みキーの完全一致でリンクを削除する。
// 未登録のURLはmodel.ErrLinkNotFoundを返し、レジストリを変更しない。
func (s *Service) Remove(rawURL string) (*model.MonitoredLink, error) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	removed, err := s.store.Remove(normalized)
	if err != nil {
		if errors.Is(err, model.ErrLinkNotFound) {
			return nil, err
		}
		// 永続化失敗は非致命。削除自体はメモリ上で反映済み。
		s.logger.Error("レジストリの保存に失敗しました",
			slog.String("url", normalized),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("リンクを削除しました", slog.String("url", normalized))
	return removed, nil
}

// RemoveByID はリンク識別子（URLのSHA-256）でリンクを削除する。
func (s *Service) RemoveByID(id string) (*model.MonitoredLink, error) {
	found, ok := s.store.FindByID(id)
	if !ok {
		return nil, model.ErrLinkNotFound
	}
	return s.Remove(found.URL)
}

// RemoveAll は全リンクを無条件に削除し、削除件数を返す。
func (s *Service) RemoveAll() int {
	count, err := s.store.RemoveAll()
	if err != nil {
		s.logger.Error("レジストリの保存に失敗しました", slog.String("error", err.Error()))
	}

	s.logger.Info("全リンクを削除しました", slog.Int("removed", count))
	return count
}

// List は全リンクを登録順で返す。
func (s *Service) List() []*model.MonitoredLink {
	return s.store.List()
}

// Get は正規化済みURLでリンクを取得する。
func (s *Service) Get(rawURL string) (*model.MonitoredLink, bool) {
	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, false
	}
	return s.store.Get(normalized)
}
