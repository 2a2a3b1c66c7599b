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

	// 合作工作流指标
	StatusTransitions  *prometheus.CounterVec
	IllegalTransitions prometheus.Counter

	// 邮箱开通指标
	MailboxesProvisioned prometheus.Counter
	ProvisionCollisions  prometheus.Counter
	ProvisionExhaustions prometheus.Counter
	ProviderCallsTotal   *prometheus.CounterVec

	// Bio 验证指标
	BioVerifications *prometheus.CounterVec

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP 请求总数",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP 请求耗时",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "cooperation_status_transitions_total",
			Help: "合作状态转换次数",
		}, []string{"from", "to"}),
		IllegalTransitions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cooperation_illegal_transitions_total",
			Help: "被拒绝的非法状态转换次数",
		}),

		MailboxesProvisioned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mailboxes_provisioned_total",
			Help: "成功开通的商务邮箱数",
		}),
		ProvisionCollisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mailbox_address_collisions_total",
			Help: "候选地址冲突改名次数",
		}),
		ProvisionExhaustions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mailbox_provision_exhaustions_total",
			Help: "地址分配穷尽失败次数",
		}),
		ProviderCallsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mail_provider_calls_total",
			Help: "邮箱服务商接口调用次数",
		}, []string{"operation", "result"}),

		BioVerifications: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bio_verifications_total",
			Help: "TikTok Bio 验证次数",
		}, []string{"result"}),

		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "错误总数",
		}, []string{"type", "component"}),
		PanicsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "panics_total",
			Help: "panic 总数",
		}),
	}
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError 记录一次错误
func (m *Metrics) RecordError(errType, component string) {
	m.ErrorsTotal.WithLabelValues(errType, component).Inc()
}

// RecordPanic 记录一次 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// Handler 返回 Prometheus 指标处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
