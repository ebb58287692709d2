package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hitoshi/stockwatch/internal/extract"
	"github.com/hitoshi/stockwatch/internal/model"
)

// DefaultCheckDelay はリンク間の最小待機時間のデフォルト値。
const DefaultCheckDelay = 2 * time.Second

// ProductChecker は1リンクのチェックを実行するインターフェース。
type ProductChecker interface {
	Check(ctx context.Context, url string) (model.Extraction, error)
}

// Store はサイクルが必要とするレジストリ操作のインターフェース。
type Store interface {
	List() []*model.MonitoredLink
	Save() error
}

// MetricsRecorder はサイクルの計測を記録するインターフェース。
type MetricsRecorder interface {
	RecordCheckSuccess()
	RecordCheckFailure()
	RecordStatusChange()
	RecordPriceChange()
	RecordCheckLatency(d time.Duration)
	SetLinksRegistered(n int)
}

// Cycle は登録済み全リンクの逐次チェックを1周分実行する。
type Cycle struct {
	store   Store
	checker ProductChecker
	metrics MetricsRecorder
	logger  *slog.Logger
	limiter *rate.Limiter
}

// NewCycle はCycleの新しいインスタンスを生成する。
// delayが0以下の場合はDefaultCheckDelayを使用する。
func NewCycle(store Store, checker ProductChecker, metrics MetricsRecorder, logger *slog.Logger, delay time.Duration) *Cycle {
	if delay <= 0 {
		delay = DefaultCheckDelay
	}

	return &Cycle{
		store:   store,
		checker: checker,
		metrics: metrics,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Run は全リンクを登録順に1回ずつチェックし、結果レポートを返す。
// 個々のリンクの失敗はレポートに記録して続行する。
// スナップショットの永続化はサイクル末尾に1回だけ行う。
// コンテキストがキャンセルされた場合は途中までの結果を永続化して返す。
func (c *Cycle) Run(ctx context.Context) (*model.CheckReport, error) {
	report := &model.CheckReport{
		CycleID:   uuid.New().String(),
		StartedAt: time.Now(),
	}

	links := c.store.List()
	c.metrics.SetLinksRegistered(len(links))

	c.logger.Info("チェックサイクル開始",
		"cycle_id", report.CycleID,
		"link_count", len(links),
	)

	var ctxErr error
	for _, link := range links {
		// 先頭リンクは初期バーストトークンで即時通過し、
		// 2本目以降は必ずdelay分の待機が入る。
		if err := c.limiter.Wait(ctx); err != nil {
			ctxErr = err
			break
		}

		report.Results = append(report.Results, c.checkLink(ctx, link))
	}

	if err := c.store.Save(); err != nil {
		c.logger.Error("スナップショットの保存に失敗しました",
			"cycle_id", report.CycleID,
			"error", err,
		)
	}

	report.FinishedAt = time.Now()

	c.logger.Info("チェックサイクル完了",
		"cycle_id", report.CycleID,
		"checked", len(report.Results),
		"has_changes", report.HasChanges(),
		"duration", report.FinishedAt.Sub(report.StartedAt),
	)

	return report, ctxErr
}

// checkLink は1リンクをチェックし、スナップショットを更新して結果を返す。
func (c *Cycle) checkLink(ctx context.Context, link *model.MonitoredLink) model.CheckResult {
	start := time.Now()
	curr, err := c.checker.Check(ctx, link.URL)
	c.metrics.RecordCheckLatency(time.Since(start))

	now := time.Now()

	if err != nil {
		ApplyCheckFailure(link, now)
		c.metrics.RecordCheckFailure()

		c.logger.Warn("リンクのチェックに失敗しました",
			"name", link.Name,
			"url", link.URL,
			"error", err,
		)

		return model.CheckResult{
			Name:  link.Name,
			URL:   link.URL,
			Title: extract.TitleCheckFailed,
			Error: err.Error(),
		}
	}

	diff := Compare(link, curr)
	ApplySnapshot(link, curr, now)

	c.metrics.RecordCheckSuccess()
	if diff.StatusChanged {
		c.metrics.RecordStatusChange()
	}
	if diff.PriceChanged {
		c.metrics.RecordPriceChange()
	}

	inStock := curr.InStock

	return model.CheckResult{
		Name:          link.Name,
		URL:           link.URL,
		Title:         curr.Title,
		InStock:       &inStock,
		Price:         curr.Price,
		StatusChanged: diff.StatusChanged,
		PriceChanged:  diff.PriceChanged,
		OldPrice:      diff.OldPrice,
	}
}
