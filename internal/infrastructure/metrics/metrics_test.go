package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOrderTransition(t *testing.T) {
	before := testutil.ToFloat64(orderTransitions.WithLabelValues("none", "applying", "student"))
	ObserveOrderTransition("", "applying", "student")
	after := testutil.ToFloat64(orderTransitions.WithLabelValues("none", "applying", "student"))
	assert.Equal(t, before+1, after)
}

func TestLiveViewsGauge(t *testing.T) {
	before := testutil.ToFloat64(liveViews)
	LiveViewOpened()
	LiveViewOpened()
	LiveViewClosed()
	assert.Equal(t, before+1, testutil.ToFloat64(liveViews))
	LiveViewClosed()
}

func TestGinMetricsAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMetrics())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tutor_match_http_request_duration_seconds")
}
