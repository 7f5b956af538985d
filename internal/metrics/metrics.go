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
type Collector struct {
	loginSuccess    prometheus.Counter
	loginFailure    prometheus.Counter
	tokensRefreshed prometheus.Counter
	contentCreated  *prometheus.CounterVec
	commentsCreated *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	requestDuration prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storyline_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storyline_login_failure_total",
			Help: "ログイン失敗の合計数",
		}),
		tokensRefreshed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storyline_tokens_refreshed_total",
			Help: "トークンリフレッシュの合計数",
		}),
		contentCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storyline_content_created_total",
			Help: "種別ごとの作品作成数",
		}, []string{"kind"}),
		commentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storyline_comments_created_total",
			Help: "種別ごとのコメント作成数",
		}, []string{"kind"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storyline_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storyline_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFailure,
		c.tokensRefreshed,
		c.contentCreated,
		c.commentsCreated,
		c.httpStatus,
		c.requestDuration,
	)

	return c
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFailure.Inc()
}

// RecordTokenRefreshed はトークンリフレッシュを記録する。
func (c *Collector) RecordTokenRefreshed() {
	c.tokensRefreshed.Inc()
}

// RecordContentCreated は作品作成を記録する。
func (c *Collector) RecordContentCreated(kind string) {
	c.contentCreated.WithLabelValues(kind).Inc()
}

// RecordCommentCreated はコメント作成を記録する。
func (c *Collector) RecordCommentCreated(kind string) {
	c.commentsCreated.WithLabelValues(kind).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestDuration はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestDuration(duration time.Duration) {
	c.requestDuration.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
