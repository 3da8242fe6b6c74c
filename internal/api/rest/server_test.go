package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/clock"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/service/engine"
)

//nolint:gochecknoinits // Silences gin's debug output in tests.
func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer serves an engine on a fake clock set to the given instant.
func newTestServer(t *testing.T, start time.Time, opts ...Option) (*Server, *engine.Engine) {
	t.Helper()

	e, err := engine.New(engine.WithClock(clock.NewFake(start)), engine.WithTimeZone("UTC"))
	require.NoError(t, err)

	t.Cleanup(e.Close)

	server := NewServer(e, opts...)
	t.Cleanup(e.Subscribe(server.Hub()))

	return server, e
}

// do performs a request against the handler and decodes the JSON body.
func do(t *testing.T, handler http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()

	request := httptest.NewRequestWithContext(context.Background(), method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	var payload map[string]any
	if strings.HasPrefix(recorder.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	}

	return recorder.Code, payload
}

// TestServer_AlarmLifecycle drives set, toggle, snooze and stop over HTTP.
func TestServer_AlarmLifecycle(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, time.Date(2026, 10, 16, 13, 5, 9, 0, time.UTC))
	handler := server.Handler()

	code, state := do(t, handler, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "01:05:09", state["clock"])
	require.Equal(t, "PM", state["meridiem"])
	require.Equal(t, "Switch to 24-Hour", state["toggle_label"])
	require.Equal(t, "disarmed", state["status"])

	code, state = do(t, handler, http.MethodPost, "/api/alarm", `{"time":"07:30"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "armed", state["status"])
	require.Equal(t, "Alarm set for 07:30", state["alarm_label"])

	code, state = do(t, handler, http.MethodPost, "/api/format/toggle", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "13:05:09", state["display"])
	require.Equal(t, "", state["meridiem"])
	require.Equal(t, "Switch to 12-Hour", state["toggle_label"])

	code, state = do(t, handler, http.MethodPost, "/api/alarm/snooze", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, state["snooze_pending"])

	code, state = do(t, handler, http.MethodDelete, "/api/alarm", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "disarmed", state["status"])
	require.Equal(t, false, state["snooze_pending"])
	require.NotContains(t, state, "alarm")

	code, state = do(t, handler, http.MethodPut, "/api/timezone", `{"time_zone":"Asia/Tokyo"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Asia/Tokyo", state["time_zone"])
}

// TestServer_BadRequests maps invalid input to 400.
func TestServer_BadRequests(t *testing.T) {
	t.Parallel()

	server, e := newTestServer(t, time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC))
	handler := server.Handler()

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/alarm", `{"time":"24:00"}`},
		{http.MethodPost, "/api/alarm", `{"time":"7:5"}`},
		{http.MethodPost, "/api/alarm", `{}`},
		{http.MethodPost, "/api/alarm", `not json`},
		{http.MethodPut, "/api/timezone", `{"time_zone":"Atlantis/Capital"}`},
	}

	for _, tc := range cases {
		code, payload := do(t, handler, tc.method, tc.path, tc.body)
		require.Equal(t, http.StatusBadRequest, code, tc.body)
		require.NotEmpty(t, payload["error"], tc.body)
	}

	require.Nil(t, e.Alarm())
	require.Equal(t, "UTC", e.TimeZone())
}

// TestServer_StaticRoutes serves the page, health and metrics.
func TestServer_StaticRoutes(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC), WithMetrics(prometheus.NewRegistry()))
	handler := server.Handler()

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "Switch to 24-Hour")

	code, payload := do(t, handler, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", payload["status"])

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
}

// TestServer_NoMetricsByDefault leaves /metrics unrouted without a gatherer.
func TestServer_NoMetricsByDefault(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC))

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

// TestServer_CORS answers preflight requests for allowed origins.
func TestServer_CORS(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t,
		time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC),
		WithAllowedOrigins([]string{"https://dashboard.example.com"}),
	)

	request := httptest.NewRequestWithContext(context.Background(), http.MethodOptions, "/api/alarm", nil)
	request.Header.Set("Origin", "https://dashboard.example.com")
	request.Header.Set("Access-Control-Request-Method", http.MethodPost)

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, request)

	require.Equal(t, "https://dashboard.example.com", recorder.Header().Get("Access-Control-Allow-Origin"))
}

// TestHub_StreamsEvents receives the snapshot and later events over websocket.
func TestHub_StreamsEvents(t *testing.T) {
	t.Parallel()

	server, e := newTestServer(t, time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC))

	httpServer := httptest.NewServer(server.Handler())
	defer httpServer.Close()

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"

	conn, response, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
		_ = response.Body.Close()
	}()

	var snapshot eventMessage
	require.NoError(t, conn.ReadJSON(&snapshot))
	require.Equal(t, string(domain.EventSnapshot), snapshot.Type)
	require.Equal(t, "disarmed", snapshot.State.Status)

	_, err = e.SetAlarm(context.Background(), "06:45")
	require.NoError(t, err)

	var armed eventMessage
	require.NoError(t, conn.ReadJSON(&armed))
	require.Equal(t, string(domain.EventAlarmArmed), armed.Type)
	require.Equal(t, "Alarm set for 06:45", armed.State.AlarmLabel)
	require.Equal(t, 1, server.Hub().Clients())
}

// TestHub_RejectsForeignOrigin refuses cross-origin pages that are not configured.
func TestHub_RejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, time.Date(2026, 10, 16, 6, 0, 0, 0, time.UTC))

	httpServer := httptest.NewServer(server.Handler())
	defer httpServer.Close()

	url := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"

	header := http.Header{}
	header.Set("Origin", "https://evil.example.com")

	conn, response, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.Nil(t, conn)
	require.Equal(t, http.StatusForbidden, response.StatusCode)

	_ = response.Body.Close()
}

// eventMessage is the subset of the websocket payload the tests read.
type eventMessage struct {
	// Type is the event type.
	Type string `json:"type"`
	// State is the decorated state.
	State struct {
		// Status is the alarm status.
		Status string `json:"status"`
		// AlarmLabel is the alarm caption.
		AlarmLabel string `json:"alarm_label"`
	} `json:"state"`
}
