package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/stockwatch/internal/model"
)

// Notifier はチェックレポートの通知先を表すインターフェース。
// 変化がないレポートをスキップする判断は実装側が行う。
type Notifier interface {
	NotifyReport(ctx context.Context, report *model.CheckReport) error
}

// Runner はチェックサイクルを一定間隔で繰り返し実行する。
type Runner struct {
	cycle    *Cycle
	notifier Notifier
	logger   *slog.Logger
}

// NewRunner はRunnerの新しいインスタンスを生成する。
func NewRunner(cycle *Cycle, notifier Notifier, logger *slog.Logger) *Runner {
	return &Runner{
		cycle:    cycle,
		notifier: notifier,
		logger:   logger,
	}
}

// Start は起動直後に1回実行し、その後interval間隔でサイクルを繰り返す。
// コンテキストのキャンセルで停止する。
func (r *Runner) Start(ctx context.Context, interval time.Duration) {
	r.logger.Info("監視ワーカーを開始します", "interval", interval)

	r.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("監視ワーカーを停止します")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce はサイクルを1回実行し、レポートを通知する。
// 途中キャンセルされたサイクルも、得られた結果までは通知対象になる。
func (r *Runner) RunOnce(ctx context.Context) {
	report, err := r.cycle.Run(ctx)
	if err != nil {
		r.logger.Warn("チェックサイクルが中断されました", "error", err)
	}

	if report == nil || len(report.Results) == 0 {
		return
	}

	if err := r.notifier.NotifyReport(ctx, report); err != nil {
		r.logger.Error("レポートの通知に失敗しました",
			"cycle_id", report.CycleID,
			"error", err,
		)
	}
}
