package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordShelf(t *testing.T) {
	before := testutil.ToFloat64(ShelfBuilds.WithLabelValues("popular", OutcomeDegraded))
	RecordShelf("popular", true)
	after := testutil.ToFloat64(ShelfBuilds.WithLabelValues("popular", OutcomeDegraded))
	if after-before != 1 {
		t.Fatalf("degraded counter delta = %v, want 1", after-before)
	}
}

func TestGinMiddlewareUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/titles/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/titles/:id", "204"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/titles/abc", nil))
	after := testutil.ToFloat64(HTTPRequests.WithLabelValues("GET", "/api/titles/:id", "204"))

	if after-before != 1 {
		t.Fatalf("request counter delta = %v, want 1", after-before)
	}
}
