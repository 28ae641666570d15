package stats

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStatsUpdater(t *testing.T) {
	mux := http.NewServeMux()
	su := NewStatsUpdater(mux)
	assert.NotNil(t, su, "expected StatsUpdater to be non-nil")
	assert.NotNil(t, su.updateChan, "expected updateChan to be initialized")
	handler, pattern := mux.Handler(&http.Request{URL: &url.URL{Path: "/debug/vars"}, Method: http.MethodGet})
	assert.NotNil(t, handler, "expected handler for /debug/vars to be set")
	assert.Equal(t, "GET /debug/vars", pattern, "expected handler to be registered for GET method on /debug/vars")
}

func TestStatsUpdater(t *testing.T) {
	mux := http.NewServeMux()
	su := NewStatsUpdater(mux)
	su.RegisterMetric(NumActiveSessions)
	su.RegisterMetric(MessagesSent)
	su.Run()

	su.Incr(NumActiveSessions)
	su.Incr(NumActiveSessions)
	su.Decr(NumActiveSessions)
	su.Incr(MessagesSent)
	su.Incr("unregistered")
	su.Stop()
	su.Stop()

	assert.Equal(t, int64(1), su.Value(NumActiveSessions))
	assert.Equal(t, int64(1), su.Value(MessagesSent))
	assert.Equal(t, int64(0), su.Value("unregistered"))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/vars", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body[NumActiveSessions])
	assert.Contains(t, body, "Uptime")
}

func TestStatsUpdaterDropsUpdatesAfterStop(t *testing.T) {
	su := NewStatsUpdater(http.NewServeMux())
	su.RegisterMetric(NumActiveRooms)
	su.Run()

	su.Incr(NumActiveRooms)
	su.Stop()

	assert.NotPanics(t, func() {
		su.Incr(NumActiveRooms)
		su.Decr(NumActiveRooms)
	})
	assert.Equal(t, int64(1), su.Value(NumActiveRooms))
}

func TestStatsUpdaterStopWhileUpdating(t *testing.T) {
	su := NewStatsUpdater(http.NewServeMux())
	su.RegisterMetric(NumActiveSessions)
	su.Run()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				su.Decr(NumActiveSessions)
			}
		}()
	}

	su.Stop()
	wg.Wait()

	assert.LessOrEqual(t, su.Value(NumActiveSessions), int64(0))
}
