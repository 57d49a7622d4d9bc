package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"network_router/pkg/network"
	"network_router/pkg/routing"
)

// mockService implements Service for testing.
type mockService struct {
	result *routing.RouteResult
	stats  *routing.NetworkStats
	err    error
	last   routing.Request
}

func (m *mockService) Route(ctx context.Context, req routing.Request) (*routing.RouteResult, error) {
	m.last = req
	return m.result, m.err
}

func (m *mockService) Stats(ctx context.Context, name string) (*routing.NetworkStats, error) {
	return m.stats, m.err
}

func newTestHandlers(svc Service) *Handlers {
	store := network.NewMemoryStore(map[string][]orb.LineString{
		"streets": {{{103.8, 1.3}, {103.85, 1.35}}},
	})
	return NewHandlers(svc, store, nil, nil)
}

func postRoute(h *Handlers, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.HandleRoute(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

func TestHandleRoute_Success(t *testing.T) {
	mock := &mockService{
		result: &routing.RouteResult{
			Network:             "streets",
			Coordinates:         []orb.Point{{103.8, 1.3}, {103.85, 1.35}},
			TotalDistanceMeters: 1234.5,
		},
	}
	h := newTestHandlers(mock)

	w := postRoute(h, `{"network":"streets","from":[103.8,1.3],"to":[103.85,1.35]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200. body: %s", w.Code, w.Body.String())
	}

	f, err := geojson.UnmarshalFeature(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, orb.LineString{{103.8, 1.3}, {103.85, 1.35}}, f.Geometry)
	assert.Equal(t, "streets", f.Properties.MustString("layer"))
	assert.Equal(t, 1234.5, f.Properties.MustFloat64("length_meters"))

	assert.Equal(t, routing.Request{
		Network: "streets",
		From:    orb.Point{103.8, 1.3},
		To:      orb.Point{103.85, 1.35},
	}, mock.last)
}

func TestHandleRoute_LayerAlias(t *testing.T) {
	mock := &mockService{result: &routing.RouteResult{Network: "trails", Coordinates: []orb.Point{{0, 0}}}}
	h := newTestHandlers(mock)

	w := postRoute(h, `{"layer":"trails","from":[0,0],"to":[0,0]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "trails", mock.last.Network)
}

func TestHandleRoute_DefaultNetworkLeftToEngine(t *testing.T) {
	mock := &mockService{result: &routing.RouteResult{Network: "streets", Coordinates: []orb.Point{{0, 0}}}}
	h := newTestHandlers(mock)

	w := postRoute(h, `{"from":[0,0],"to":[0,0]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, mock.last.Network)
}

func TestHandleRoute_InvalidJSON(t *testing.T) {
	h := newTestHandlers(&mockService{})

	w := postRoute(h, "not json")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	assert.Equal(t, "InvalidRequest", decodeError(t, w).ErrorKind)
}

func TestHandleRoute_MissingContentType(t *testing.T) {
	h := newTestHandlers(&mockService{})

	body := `{"from":[103.8,1.3],"to":[103.85,1.35]}`
	req := httptest.NewRequest("POST", "/api/v1/route", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.HandleRoute(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleRoute_InvalidCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing from", `{"to":[103.85,1.35]}`, "from is required"},
		{"missing to", `{"from":[103.85,1.35]}`, "to is required"},
		{"latitude out of range", `{"from":[103.8,91],"to":[103.85,1.35]}`, "from must be"},
		{"longitude out of range", `{"from":[103.8,1.3],"to":[181,1.35]}`, "to must be"},
		{"three values", `{"from":[103.8,1.3,5],"to":[103.85,1.35]}`, "from must be"},
		{"empty pair", `{"from":[],"to":[103.85,1.35]}`, "from must be"},
		{"string coordinates", `{"from":"103.8,1.3","to":[103.85,1.35]}`, "malformed"},
		{"network too long", fmt.Sprintf(`{"network":%q,"from":[0,0],"to":[0,0]}`, strings.Repeat("n", 200)), "network must be at most"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockService{}
			h := newTestHandlers(mock)

			w := postRoute(h, tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			resp := decodeError(t, w)
			assert.Equal(t, "InvalidRequest", resp.ErrorKind)
			assert.Contains(t, resp.Message, tt.message)
			assert.Zero(t, mock.last, "engine must not be called")
		})
	}
}

func TestHandleRoute_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{fmt.Errorf("%w: trails", network.ErrNotFound), http.StatusNotFound, "NetworkNotFound"},
		{fmt.Errorf("%w: bad name", routing.ErrInvalidRequest), http.StatusBadRequest, "InvalidRequest"},
		{routing.ErrNoRoutableSegments, http.StatusUnprocessableEntity, "NoRoutableSegments"},
		{fmt.Errorf("start: %w", routing.ErrProjectionFailed), http.StatusUnprocessableEntity, "ProjectionFailed"},
		{routing.ErrNoPathFound, http.StatusNotFound, "NoPathFound"},
		{routing.ErrInternalComputation, http.StatusInternalServerError, "InternalComputationError"},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, "Timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			h := newTestHandlers(&mockService{err: tt.err})

			w := postRoute(h, `{"from":[103.8,1.3],"to":[103.85,1.35]}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.kind, decodeError(t, w).ErrorKind)
		})
	}
}

func TestHandleRoute_InternalErrorHidesDetail(t *testing.T) {
	h := newTestHandlers(&mockService{err: fmt.Errorf("%w: secret detail", routing.ErrInternalComputation)})

	w := postRoute(h, `{"from":[103.8,1.3],"to":[103.85,1.35]}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, decodeError(t, w).Message, "secret")
}

func TestHandleNetworks(t *testing.T) {
	h := newTestHandlers(&mockService{})

	req := httptest.NewRequest("GET", "/api/v1/networks", nil)
	w := httptest.NewRecorder()
	h.HandleNetworks(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp NetworksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"streets"}, resp.Networks)
}

func TestHandleNetwork(t *testing.T) {
	h := newTestHandlers(&mockService{})

	req := httptest.NewRequest("GET", "/api/v1/networks/streets", nil)
	req.SetPathValue("name", "streets")
	w := httptest.NewRecorder()
	h.HandleNetwork(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	fc, err := geojson.UnmarshalFeatureCollection(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, orb.LineString{{103.8, 1.3}, {103.85, 1.35}}, fc.Features[0].Geometry)
	assert.Equal(t, "streets", fc.Features[0].Properties.MustString("layer"))
}

func TestHandleNetwork_NotFound(t *testing.T) {
	h := newTestHandlers(&mockService{})

	req := httptest.NewRequest("GET", "/api/v1/networks/trails", nil)
	req.SetPathValue("name", "trails")
	w := httptest.NewRecorder()
	h.HandleNetwork(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NetworkNotFound", decodeError(t, w).ErrorKind)
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandlers(&mockService{})

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()

	h.HandleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want 'ok'", resp.Status)
	}
}

func TestHandleStats(t *testing.T) {
	mock := &mockService{stats: &routing.NetworkStats{
		Network: "streets", Lines: 2, Segments: 4, Crossings: 1, Nodes: 5, Edges: 4, Components: 1, LargestComponent: 5,
	}}
	h := newTestHandlers(mock)

	req := httptest.NewRequest("GET", "/api/v1/networks/streets/stats", nil)
	req.SetPathValue("name", "streets")
	w := httptest.NewRecorder()

	h.HandleStats(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatsResponse{
		Network: "streets", Lines: 2, Segments: 4, Crossings: 1, Nodes: 5, Edges: 4, Components: 1, LargestComponent: 5,
	}, resp)
}
