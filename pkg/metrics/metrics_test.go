package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/courses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/courses/:id", "200"))
	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/courses/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/api/courses/:id", "200"))
	assert.Equal(t, 2.0, after-before)
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(pointsAwarded.WithLabelValues("CHECK_IN"))
	RecordPointsAwarded("CHECK_IN", 15)
	RecordPointsAwarded("CHECK_IN", 0)
	assert.Equal(t, 15.0, testutil.ToFloat64(pointsAwarded.WithLabelValues("CHECK_IN"))-before)

	beforeOrders := testutil.ToFloat64(ordersCreated.WithLabelValues("COURSE"))
	RecordOrderCreated("COURSE")
	assert.Equal(t, 1.0, testutil.ToFloat64(ordersCreated.WithLabelValues("COURSE"))-beforeOrders)
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordCheckIn()
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cme_points_check_ins_total")
}
