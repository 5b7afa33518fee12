package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 邮箱指标
	MailboxesCreated prometheus.Counter
	MailboxesDeleted prometheus.Counter
	MailboxesExpired prometheus.Counter

	// 上游服务商指标
	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter

	// 限流指标
	RateLimitBlocks *prometheus.CounterVec
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postdrop_http_requests_total",
				Help: "HTTP 请求总数",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "postdrop_http_request_duration_seconds",
				Help:    "HTTP 请求耗时分布",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		MailboxesCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "postdrop_mailboxes_created_total",
				Help: "已创建的邮箱总数",
			},
		),
		MailboxesDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "postdrop_mailboxes_deleted_total",
				Help: "已删除的邮箱总数",
			},
		),
		MailboxesExpired: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "postdrop_mailboxes_expired_total",
				Help: "因过期被清理的邮箱总数",
			},
		),
		ProviderRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postdrop_provider_requests_total",
				Help: "上游服务商调用总数",
			},
			[]string{"op", "outcome"},
		),
		ProviderRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "postdrop_provider_request_duration_seconds",
				Help:    "上游服务商调用耗时分布",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postdrop_errors_total",
				Help: "错误总数",
			},
			[]string{"type", "component"},
		),
		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "postdrop_panics_total",
				Help: "捕获到的 panic 总数",
			},
		),
		RateLimitBlocks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postdrop_rate_limit_blocks_total",
				Help: "被限流拦截的请求总数",
			},
			[]string{"scope"},
		),
	}
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordMailboxCreated 记录邮箱创建
func (m *Metrics) RecordMailboxCreated() {
	m.MailboxesCreated.Inc()
}

// RecordMailboxDeleted 记录邮箱删除
func (m *Metrics) RecordMailboxDeleted() {
	m.MailboxesDeleted.Inc()
}

// RecordMailboxesExpired 记录过期清理数量
func (m *Metrics) RecordMailboxesExpired(count int) {
	m.MailboxesExpired.Add(float64(count))
}

// RecordProviderRequest 记录一次上游调用
func (m *Metrics) RecordProviderRequest(op, outcome string, duration time.Duration) {
	m.ProviderRequestsTotal.WithLabelValues(op, outcome).Inc()
	m.ProviderRequestDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordError 记录一次错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录一次 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// RecordRateLimitBlock 记录一次限流拦截
func (m *Metrics) RecordRateLimitBlock(scope string) {
	m.RateLimitBlocks.WithLabelValues(scope).Inc()
}

// HTTPHandler 返回 Prometheus 指标端点处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
