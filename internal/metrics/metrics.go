// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordRegistration(outcome string)
	RecordRegistrationLatency(duration time.Duration)
	RecordEmailSent()
	RecordEmailFailure(reason string)
	RecordHTTPStatus(statusCode int)
	RecordArticleView()
	RecordContentLoadFailure()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations       *prometheus.CounterVec
	registrationLatency prometheus.Histogram
	emailSent           prometheus.Counter
	emailFail           *prometheus.CounterVec
	httpStatus          *prometheus.CounterVec
	articleViews        prometheus.Counter
	contentLoadFail     prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aispecialist_registrations_total",
			Help: "先行登録リクエストの結果別の合計数",
		}, []string{"outcome"}),
		registrationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "aispecialist_registration_latency_seconds",
			Help:    "先行登録処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		emailSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aispecialist_welcome_email_sent_total",
			Help: "ウェルカムメール送信成功の合計数",
		}),
		emailFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aispecialist_welcome_email_fail_total",
			Help: "ウェルカムメール送信失敗の合計数",
		}, []string{"reason"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "aispecialist_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		articleViews: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aispecialist_article_views_total",
			Help: "インタビュー記事の取得成功数",
		}),
		contentLoadFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "aispecialist_content_load_fail_total",
			Help: "読み込みに失敗した記事ファイルの合計数",
		}),
	}

	reg.MustRegister(
		c.registrations,
		c.registrationLatency,
		c.emailSent,
		c.emailFail,
		c.httpStatus,
		c.articleViews,
		c.contentLoadFail,
	)

	return c
}

// RecordRegistration は先行登録の結果を記録する。
func (c *Collector) RecordRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

// RecordRegistrationLatency は先行登録処理のレイテンシを記録する。
func (c *Collector) RecordRegistrationLatency(duration time.Duration) {
	c.registrationLatency.Observe(duration.Seconds())
}

// RecordEmailSent はウェルカムメール送信成功を記録する。
func (c *Collector) RecordEmailSent() {
	c.emailSent.Inc()
}

// RecordEmailFailure はウェルカムメール送信失敗を記録する。
// reasonは "disabled" または "delivery" のような固定値とする。
func (c *Collector) RecordEmailFailure(reason string) {
	c.emailFail.WithLabelValues(reason).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordArticleView は記事の取得を記録する。
func (c *Collector) RecordArticleView() {
	c.articleViews.Inc()
}

// RecordContentLoadFailure は記事ファイルの読み込み失敗を記録する。
func (c *Collector) RecordContentLoadFailure() {
	c.contentLoadFail.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NopCollector は何も記録しないMetricsCollector。テストやメトリクス無効時に使用する。
type NopCollector struct{}

func (NopCollector) RecordRegistration(string)                {}
func (NopCollector) RecordRegistrationLatency(time.Duration) {}
func (NopCollector) RecordEmailSent()                         {}
func (NopCollector) RecordEmailFailure(string)                {}
func (NopCollector) RecordHTTPStatus(int)                     {}
func (NopCollector) RecordArticleView()                       {}
func (NopCollector) RecordContentLoadFailure()                {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)
