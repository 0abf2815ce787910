package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMiddlewareCountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/v1/resources/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/resources/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	body := scrape(t, m)
	assert.Contains(t, body, `portal_http_requests_total{method="GET",route="/api/v1/resources/:id",status="200"} 3`)
	assert.NotContains(t, body, "/api/v1/resources/a")
}

func TestRecorders(t *testing.T) {
	m := New()
	m.ObserveLogin(true)
	m.ObserveLogin(false)
	m.ObserveLogin(false)
	m.ObserveDecision("approved")
	m.ObserveSubmission()

	body := scrape(t, m)
	assert.Contains(t, body, `portal_login_attempts_total{outcome="success"} 1`)
	assert.Contains(t, body, `portal_login_attempts_total{outcome="failure"} 2`)
	assert.Contains(t, body, `portal_resource_decisions_total{status="approved"} 1`)
	assert.Contains(t, body, `portal_resource_submissions_total 1`)

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.ObserveLogin(true)
		nilMetrics.ObserveDecision("rejected")
		nilMetrics.ObserveSubmission()
	})
}
