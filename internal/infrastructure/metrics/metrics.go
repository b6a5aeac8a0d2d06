// Package metrics Prometheus 指标：HTTP 请求、订单流转、变更事件、在线实时视图
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tutor_match"

var (
	httpDuration = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.99: 0.001,
			},
		},
		[]string{"method", "path", "status_code"},
	)

	orderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status transitions written to the store",
		},
		[]string{"from", "to", "role"},
	)

	changeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_events_total",
			Help:      "Table change events published",
		},
		[]string{"table", "op"},
	)

	liveViews = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_views",
			Help:      "Live dashboard views currently open",
		},
	)
)

// GinMetrics 记录每个请求的耗时，路径使用路由模板避免高基数
func GinMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpDuration.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// ObserveOrderTransition from 为空表示新建申请
func ObserveOrderTransition(from, to, role string) {
	if from == "" {
		from = "none"
	}
	orderTransitions.WithLabelValues(from, to, role).Inc()
}

func ObserveChangeEvent(table, op string) {
	changeEvents.WithLabelValues(table, op).Inc()
}

// LiveViewOpened / LiveViewClosed 成对调用
func LiveViewOpened() { liveViews.Inc() }
func LiveViewClosed() { liveViews.Dec() }

// Handler /metrics 端点
func Handler() http.Handler {
	return promhttp.Handler()
}
