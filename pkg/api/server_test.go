package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network_router/pkg/network"
	"network_router/pkg/routing"
)

func newTestServer(t *testing.T, cfg ServerConfig) *httptest.Server {
	t.Helper()
	store := network.NewMemoryStore(map[string][]orb.LineString{
		"streets": {
			{{0, 0}, {0.02, 0}},
			{{0.01, -0.01}, {0.01, 0.01}},
		},
	})
	engine := routing.NewEngine(store, routing.Options{})
	metrics := NewMetrics()
	srv := NewServer(cfg, NewHandlers(engine, store, metrics, nil), metrics, nil)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestServerRouteEndToEnd(t *testing.T) {
	ts := newTestServer(t, DefaultConfig(":0"))

	resp, err := http.Post(ts.URL+"/api/v1/route", "application/json",
		strings.NewReader(`{"network":"streets","from":[0,0],"to":[0.01,0.01]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := geojson.UnmarshalFeature(body)
	require.NoError(t, err)

	ls, ok := f.Geometry.(orb.LineString)
	require.True(t, ok, "geometry is %T", f.Geometry)
	require.Len(t, ls, 3)
	assert.InDelta(t, 0.01, ls[1][0], 1e-9)
	assert.InDelta(t, 0.0, ls[1][1], 1e-9)
	assert.Greater(t, f.Properties.MustFloat64("length_meters"), 2000.0)
}

func TestServerRouteUnknownNetwork(t *testing.T) {
	ts := newTestServer(t, DefaultConfig(":0"))

	resp, err := http.Post(ts.URL+"/api/v1/route", "application/json",
		strings.NewReader(`{"network":"nowhere","from":[0,0],"to":[0.01,0.01]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerStatsAndMetrics(t *testing.T) {
	ts := newTestServer(t, DefaultConfig(":0"))

	resp, err := http.Get(ts.URL + "/api/v1/networks/streets/stats")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/v1/route", "application/json",
		strings.NewReader(`{"from":[0,0],"to":[0.01,0.01]}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "network_router_route_duration_seconds_count 1")
	assert.Contains(t, string(body), `network_router_http_requests_total{code="200",pattern="GET /api/v1/networks/{name}/stats"} 1`)
}

func TestServerCORS(t *testing.T) {
	cfg := DefaultConfig(":0")
	cfg.CORSOrigin = "https://example.org"
	ts := newTestServer(t, cfg)

	resp, err := http.Get(ts.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "https://example.org", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMiddlewareConcurrencyLimit(t *testing.T) {
	sem := make(chan struct{}, 1)
	sem <- struct{}{} // occupy the only slot

	h := withMiddleware("GET /x", func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run")
	}, sem, DefaultConfig(":0"), nil, log.New(io.Discard))

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/x", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestMiddlewareRecoversPanic(t *testing.T) {
	h := withMiddleware("GET /x", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, make(chan struct{}, 1), DefaultConfig(":0"), NewMetrics(), log.New(io.Discard))

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMiddlewareRequestTimeout(t *testing.T) {
	cfg := DefaultConfig(":0")
	cfg.RequestTimeout = time.Millisecond

	var deadline bool
	h := withMiddleware("GET /x", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		_, deadline = r.Context().Deadline()
		assert.ErrorIs(t, r.Context().Err(), context.DeadlineExceeded)
	}, make(chan struct{}, 1), cfg, nil, log.New(io.Discard))

	h(httptest.NewRecorder(), httptest.NewRequest("GET", "/x", nil))
	assert.True(t, deadline)
}
