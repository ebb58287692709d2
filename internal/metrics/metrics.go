// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// チェックサイクルから利用する。
type MetricsCollector interface {
	RecordCheckSuccess()
	RecordCheckFailure()
	RecordStatusChange()
	RecordPriceChange()
	RecordCheckLatency(d time.Duration)
	SetLinksRegistered(n int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	checkSuccess    prometheus.Counter
	checkFail       prometheus.Counter
	statusChanges   prometheus.Counter
	priceChanges    prometheus.Counter
	checkLatency    prometheus.Histogram
	linksRegistered prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		checkSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockwatch_check_success_total",
			Help: "商品ページチェック成功の合計数",
		}),
		checkFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockwatch_check_fail_total",
			Help: "商品ページチェック失敗の合計数",
		}),
		statusChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockwatch_status_changes_total",
			Help: "検出した在庫状態変化の合計数",
		}),
		priceChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stockwatch_price_changes_total",
			Help: "検出した価格変化の合計数",
		}),
		checkLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockwatch_check_latency_seconds",
			Help:    "商品ページチェックのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		linksRegistered: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stockwatch_links_registered",
			Help: "現在登録されている監視リンク数",
		}),
	}

	reg.MustRegister(
		c.checkSuccess,
		c.checkFail,
		c.statusChanges,
		c.priceChanges,
		c.checkLatency,
		c.linksRegistered,
	)

	return c
}

// RecordCheckSuccess はチェック成功を記録する。
func (c *Collector) RecordCheckSuccess() {
	c.checkSuccess.Inc()
}

// RecordCheckFailure はチェック失敗を記録する。
func (c *Collector) RecordCheckFailure() {
	c.checkFail.Inc()
}

// RecordStatusChange は在庫状態変化の検出を記録する。
func (c *Collector) RecordStatusChange() {
	c.statusChanges.Inc()
}

// RecordPriceChange は価格変化の検出を記録する。
func (c *Collector) RecordPriceChange() {
	c.priceChanges.Inc()
}

// RecordCheckLatency はチェックのレイテンシを記録する。
func (c *Collector) RecordCheckLatency(d time.Duration) {
	c.checkLatency.Observe(d.Seconds())
}

// SetLinksRegistered は現在の登録リンク数を記録する。
func (c *Collector) SetLinksRegistered(n int) {
	c.linksRegistered.Set(float64(n))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
