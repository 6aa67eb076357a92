package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := NewMetrics()

	r := gin.New()
	r.Use(metrics.Middleware())
	r.GET("/api/pos/sales/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pos/sales/abc", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requestsTotal.WithLabelValues("/api/pos/sales/:id", "418")))

	metricsRR := httptest.NewRecorder()
	r.ServeHTTP(metricsRR, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, metricsRR.Code)
	assert.Contains(t, metricsRR.Body.String(), `notas_http_request_duration_seconds_bucket{route="/api/pos/sales/:id"`)
}

func TestDomainCounters(t *testing.T) {
	metrics := NewMetrics()

	metrics.SaleCreated("PIX")
	metrics.SaleCreated("PIX")
	metrics.SalesMarkedPaid(3)
	metrics.SalesMarkedPaid(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.salesCreated.WithLabelValues("PIX")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.salesMarkedPaid))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.SaleCreated("DEBITO")
	metrics.SalesMarkedPaid(1)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
