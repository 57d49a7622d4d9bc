package api

import "network_router/pkg/routing"

// RouteRequest is the JSON body for POST /api/v1/route.
// Coordinates are [lon, lat] pairs. Layer is accepted as an alias for Network.
type RouteRequest struct {
	Network string    `json:"network" validate:"omitempty,max=128"`
	Layer   string    `json:"layer" validate:"omitempty,max=128"`
	From    []float64 `json:"from" validate:"required,lonlat"`
	To      []float64 `json:"to" validate:"required,lonlat"`
}

// NetworkName returns the requested network, preferring Network over Layer.
func (r RouteRequest) NetworkName() string {
	if r.Network != "" {
		return r.Network
	}
	return r.Layer
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	ErrorKind string `json:"errorKind"`
	Message   string `json:"message"`
}

// NetworksResponse is the JSON response for GET /api/v1/networks.
type NetworksResponse struct {
	Networks []string `json:"networks"`
}

// StatsResponse is the JSON response for GET /api/v1/networks/{name}/stats.
type StatsResponse struct {
	Network          string `json:"network"`
	Lines            int    `json:"lines"`
	Segments         int    `json:"segments"`
	Crossings        int    `json:"crossings"`
	Nodes            int    `json:"nodes"`
	Edges            int    `json:"edges"`
	Components       int    `json:"components"`
	LargestComponent int    `json:"largest_component"`
}

func newStatsResponse(st *routing.NetworkStats) StatsResponse {
	return StatsResponse{
		Network:          st.Network,
		Lines:            st.Lines,
		Segments:         st.Segments,
		Crossings:        st.Crossings,
		Nodes:            st.Nodes,
		Edges:            st.Edges,
		Components:       st.Components,
		LargestComponent: st.LargestComponent,
	}
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
