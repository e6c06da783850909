package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncrementRatingsSubmitted(t *testing.T) {
	before := testutil.ToFloat64(RatingsSubmitted.WithLabelValues("created"))
	IncrementRatingsSubmitted("created")
	after := testutil.ToFloat64(RatingsSubmitted.WithLabelValues("created"))

	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, grew by %v", after-before)
	}
}

func TestSetActiveConnections(t *testing.T) {
	SetActiveConnections(3)
	if got := testutil.ToFloat64(ActiveConnections); got != 3 {
		t.Fatalf("expected gauge 3, got %v", got)
	}
	SetActiveConnections(0)
}

func TestMetricsHandler_ExposesCounters(t *testing.T) {
	IncrementStatisticsFallbacks()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/metrics", NewHandler().Metrics)

	req := httptest.NewRequest("GET", "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != 200 {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "bookhub_statistics_fallbacks_total") {
		t.Fatalf("fallback counter missing from exposition")
	}
}
