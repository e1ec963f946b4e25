// Package metrics は認証まわりの Prometheus メトリクスを提供します。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "authgate"

// ログイン・登録・ログアウトの結果ラベル
const (
	OutcomeSuccess   = "success"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
	OutcomeCreated   = "created"
	OutcomeDuplicate = "duplicate"
)

// ガード種別ラベル
const (
	GuardAuthenticated = "authenticated"
	GuardAdmin         = "admin"
)

// Metrics はアプリケーション固有のコレクターをまとめます。
type Metrics struct {
	registry *prometheus.Registry

	LoginAttempts   *prometheus.CounterVec
	Signups         *prometheus.CounterVec
	Logouts         *prometheus.CounterVec
	GuardRejections *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New は専用レジストリにコレクターを登録した Metrics を返します。
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		Signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Signup attempts by outcome.",
		}, []string{"outcome"}),
		Logouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Logout attempts by outcome.",
		}, []string{"outcome"}),
		GuardRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_rejections_total",
			Help:      "Requests short-circuited by an access guard.",
		}, []string{"guard"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.LoginAttempts,
		m.Signups,
		m.Logouts,
		m.GuardRejections,
		m.HTTPRequests,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry はコレクターを登録したレジストリを返します。
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler は /metrics 用のハンドラーを返します。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Login はログイン結果を記録します。nil レシーバーでは何もしません。
func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// Signup は登録結果を記録します。
func (m *Metrics) Signup(outcome string) {
	if m == nil {
		return
	}
	m.Signups.WithLabelValues(outcome).Inc()
}

// Logout はログアウト結果を記録します。
func (m *Metrics) Logout(outcome string) {
	if m == nil {
		return
	}
	m.Logouts.WithLabelValues(outcome).Inc()
}

// GuardRejected はガードによる拒否を記録します。
func (m *Metrics) GuardRejected(guard string) {
	if m == nil {
		return
	}
	m.GuardRejections.WithLabelValues(guard).Inc()
}

// Middleware はリクエスト数とレイテンシを記録する gin ミドルウェアです。
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
