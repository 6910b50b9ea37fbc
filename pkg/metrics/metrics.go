package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector 指标收集器
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbConnectionsActive prometheus.Gauge
	dbConnectionsIdle   prometheus.Gauge

	ordersCreatedTotal    prometheus.Counter
	paymentsVerifiedTotal *prometheus.CounterVec
}

// NewCollector 创建指标收集器并注册到默认 Registry
func NewCollector() *Collector {
	return &Collector{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		dbConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_active",
				Help: "Number of active database connections",
			},
		),
		dbConnectionsIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		ordersCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Total number of orders created",
			},
		),
		paymentsVerifiedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_verified_total",
				Help: "Total number of payment verification attempts",
			},
			[]string{"result"},
		),
	}
}

// ObserveHTTP 记录一次 HTTP 请求
func (c *Collector) ObserveHTTP(method, endpoint, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// OrderCreated 订单创建计数
func (c *Collector) OrderCreated() {
	c.ordersCreatedTotal.Inc()
}

// PaymentVerified 支付验签结果计数，result: success/failed/pending
func (c *Collector) PaymentVerified(result string) {
	c.paymentsVerifiedTotal.WithLabelValues(result).Inc()
}

// CollectDBStats 周期采集数据库连接池指标
func (c *Collector) CollectDBStats(db *sql.DB, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			stats := db.Stats()
			c.dbConnectionsActive.Set(float64(stats.InUse))
			c.dbConnectionsIdle.Set(float64(stats.Idle))
		}
	}()
}

// Default 全局收集器
var Default *Collector

// Init 初始化全局收集器
func Init() {
	Default = NewCollector()
}
