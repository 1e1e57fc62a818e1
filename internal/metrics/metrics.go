// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// upstream・source・scrape の各パッケージが定義する記録先インターフェースを満たす。
type Collector struct {
	httpStatus       *prometheus.CounterVec
	fetchLatency     prometheus.Histogram
	fetchFail        *prometheus.CounterVec
	sourceOutcome    *prometheus.CounterVec
	scrapes          *prometheus.CounterVec
	postsReturned    prometheus.Counter
	commentsReturned prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redditscraper_upstream_http_status_total",
			Help: "上流HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "redditscraper_upstream_latency_seconds",
			Help:    "上流リクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		fetchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redditscraper_upstream_fail_total",
			Help: "レスポンスを得られなかった上流リクエストの数",
		}, []string{"reason"}),
		sourceOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redditscraper_source_outcome_total",
			Help: "投稿ソースごとの取得結果（ok/empty）",
		}, []string{"source", "outcome"}),
		scrapes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redditscraper_scrapes_total",
			Help: "採用されたソース別のスクレイプ回数",
		}, []string{"source"}),
		postsReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redditscraper_posts_returned_total",
			Help: "レスポンスで返した投稿の合計数",
		}),
		commentsReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redditscraper_comments_returned_total",
			Help: "レスポンスで返したコメントの合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.fetchLatency,
		c.fetchFail,
		c.sourceOutcome,
		c.scrapes,
		c.postsReturned,
		c.commentsReturned,
	)

	return c
}

// RecordHTTPStatus は上流のHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordFetchLatency は上流リクエストのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordFetchFailure は上流リクエストの失敗を理由別に記録する。
func (c *Collector) RecordFetchFailure(reason string) {
	c.fetchFail.WithLabelValues(reason).Inc()
}

// RecordSourceOutcome は投稿ソースの取得結果を記録する。
func (c *Collector) RecordSourceOutcome(source, outcome string) {
	c.sourceOutcome.WithLabelValues(source, outcome).Inc()
}

// RecordScrape はスクレイプ1回分の結果を記録する。
func (c *Collector) RecordScrape(source string, posts, comments int) {
	c.scrapes.WithLabelValues(source).Inc()
	c.postsReturned.Add(float64(posts))
	c.commentsReturned.Add(float64(comments))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
