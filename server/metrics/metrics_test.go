package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.AdminAction("save_news", true)
	m.AdminAction("save_news", false)
	m.AdminAction("save_news", true)
	m.SpeedTest(false)
	m.ObserveRequest(http.MethodGet, "/", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.adminActions.WithLabelValues("save_news", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.speedTests.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.Submission("contact")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `skybiz_form_submissions_total{form="contact"} 1`)
}
