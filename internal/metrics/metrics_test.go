package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"daybook/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusBucket(t *testing.T) {
	assert.Equal(t, "1xx", statusBucket(101))
	assert.Equal(t, "2xx", statusBucket(204))
	assert.Equal(t, "3xx", statusBucket(302))
	assert.Equal(t, "4xx", statusBucket(401))
	assert.Equal(t, "5xx", statusBucket(503))
}

func TestNew_DisabledIsNoop(t *testing.T) {
	m := New(&config.Config{MetricsEnabled: false})
	assert.Equal(t, Noop(), m)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}

func TestNew_ExposesCounters(t *testing.T) {
	m := New(&config.Config{MetricsEnabled: true})
	m.IncRequestsTotal("/api/habits", 200)
	m.ObserveRequestDuration("/api/habits", 20*time.Millisecond)
	m.IncCronAction("hourly", "digest_sent")
	m.IncCacheHits()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `daybook_requests_total{route="/api/habits",status="2xx"} 1`)
	assert.Contains(t, string(body), `daybook_cron_actions_total{action="digest_sent",job="hourly"} 1`)
	assert.Contains(t, string(body), `daybook_calendar_cache_hits_total 1`)
}
