package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"network_router/pkg/network"
	"network_router/pkg/routing"
)

// kindTimeout is reported when the request context ends before a result.
const kindTimeout = "Timeout"

// maxBodyBytes bounds the route request body.
const maxBodyBytes = 4 << 10

// Service is what the handlers need from the routing engine.
type Service interface {
	routing.Router
	Stats(ctx context.Context, name string) (*routing.NetworkStats, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	svc      Service
	store    network.Store
	metrics  *Metrics
	logger   *log.Logger
	validate *validator.Validate
}

// NewHandlers creates handlers over the given engine and network store.
// metrics and logger may be nil.
func NewHandlers(svc Service, store network.Store, metrics *Metrics, logger *log.Logger) *Handlers {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handlers{
		svc:      svc,
		store:    store,
		metrics:  metrics,
		logger:   logger,
		validate: newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("lonlat", func(fl validator.FieldLevel) bool {
		pt, ok := fl.Field().Interface().([]float64)
		return ok && validLonLat(pt)
	})
	return v
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, string(routing.KindInvalidRequest), "content type must be application/json")
		return
	}

	// Parse request.
	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(routing.KindInvalidRequest), "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, string(routing.KindInvalidRequest), validationMessage(err))
		return
	}

	// Route.
	start := time.Now()
	result, err := h.svc.Route(r.Context(), routing.Request{
		Network: req.NetworkName(),
		From:    orb.Point{req.From[0], req.From[1]},
		To:      orb.Point{req.To[0], req.To[1]},
	})
	if err != nil {
		status, kind := errorStatus(err)
		h.metrics.observeRoute(time.Since(start), kind)
		h.writeFailure(w, status, kind, err)
		return
	}
	h.metrics.observeRoute(time.Since(start), "")

	// Build response.
	f := geojson.NewFeature(result.LineString())
	f.Properties["layer"] = result.Network
	f.Properties["length_meters"] = result.TotalDistanceMeters

	writeJSON(w, http.StatusOK, f)
}

// HandleNetworks handles GET /api/v1/networks.
func (h *Handlers) HandleNetworks(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.List(r.Context())
	if err != nil {
		status, kind := errorStatus(err)
		h.writeFailure(w, status, kind, err)
		return
	}
	writeJSON(w, http.StatusOK, NetworksResponse{Networks: names})
}

// HandleNetwork handles GET /api/v1/networks/{name}.
func (h *Handlers) HandleNetwork(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := network.ValidateName(name); err != nil {
		writeError(w, http.StatusBadRequest, string(routing.KindInvalidRequest), err.Error())
		return
	}

	n, err := h.store.Load(r.Context(), name)
	if err != nil {
		status, kind := errorStatus(err)
		h.writeFailure(w, status, kind, err)
		return
	}
	writeJSON(w, http.StatusOK, network.FeatureCollection(n))
}

// HandleStats handles GET /api/v1/networks/{name}/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), r.PathValue("name"))
	if err != nil {
		status, kind := errorStatus(err)
		h.writeFailure(w, status, kind, err)
		return
	}
	writeJSON(w, http.StatusOK, newStatsResponse(st))
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// errorStatus maps an engine or store error to its HTTP status and error kind.
func errorStatus(err error) (int, string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, kindTimeout
	}

	kind := routing.KindOf(err)
	switch kind {
	case routing.KindInvalidRequest:
		return http.StatusBadRequest, string(kind)
	case routing.KindNetworkNotFound, routing.KindNoPathFound:
		return http.StatusNotFound, string(kind)
	case routing.KindNoRoutableSegments, routing.KindProjectionFailed:
		return http.StatusUnprocessableEntity, string(kind)
	}
	return http.StatusInternalServerError, string(kind)
}

// writeFailure writes err to the client. Internal error details are logged
// but not returned.
func (h *Handlers) writeFailure(w http.ResponseWriter, status int, kind string, err error) {
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		h.logger.Error("request failed", "kind", kind, "err", err)
		msg = "internal computation error"
	case http.StatusServiceUnavailable:
		msg = "request timed out"
	}
	writeError(w, status, kind, msg)
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "lonlat":
		return fmt.Sprintf("%s must be a finite [lon, lat] pair with lon in [-180, 180] and lat in [-90, 90]", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func validLonLat(pt []float64) bool {
	if len(pt) != 2 {
		return false
	}
	lon, lat := pt[0], pt[1]
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, ErrorResponse{ErrorKind: kind, Message: message})
}
