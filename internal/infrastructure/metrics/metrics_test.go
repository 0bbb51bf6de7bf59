package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveUpstream(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequests.WithLabelValues("latest", "ok"))
	ObserveUpstream("latest", "ok", 120*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(upstreamRequests.WithLabelValues("latest", "ok")))
}

func TestObserveSnapshot(t *testing.T) {
	before := testutil.ToFloat64(snapshots.WithLabelValues("fallback", "throttled"))
	ObserveSnapshot("fallback", "throttled")
	assert.Equal(t, before+1, testutil.ToFloat64(snapshots.WithLabelValues("fallback", "throttled")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	ObserveHTTP(http.MethodGet, "/rates", http.StatusOK, time.Millisecond)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fxconv_http_requests_total")
}
