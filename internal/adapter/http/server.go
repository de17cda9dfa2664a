package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/narcan-map/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StateProvider exposes the current map state and accepts reload requests.
type StateProvider interface {
	sharedobs.ReadinessChecker
	State() *domain.MapState
	RequestReload()
}

// Server exposes the map collections plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	state      StateProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server serving the map API and operational routes.
func NewServer(addr string, state StateProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		state:  state,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(state))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/heat", s.handleHeat)
	mux.HandleFunc("GET /api/markers", s.handleMarkers)
	mux.HandleFunc("GET /api/markers.geojson", s.handleMarkersGeoJSON)
	mux.HandleFunc("GET /api/stations", s.handleStations)
	mux.HandleFunc("GET /api/stations.geojson", s.handleStationsGeoJSON)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("POST /api/reload", s.handleReload)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHeat(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"points": s.state.State().Data.Heat})
}

func (s *Server) handleMarkers(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"markers": s.state.State().Data.Markers})
}

func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"stations": domain.Stations()})
}

func (s *Server) handleMarkersGeoJSON(w http.ResponseWriter, _ *http.Request) {
	s.writeGeoJSON(w, markerFeatures(s.state.State().Data.Markers))
}

func (s *Server) handleStationsGeoJSON(w http.ResponseWriter, _ *http.Request) {
	s.writeGeoJSON(w, stationFeatures(domain.Stations()))
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, domain.DefaultView())
}

type stateSummary struct {
	Generation uint64                `json:"generation"`
	LoadedAt   *time.Time            `json:"loaded_at"`
	Source     string                `json:"source,omitempty"`
	Stats      domain.TransformStats `json:"stats"`
	Stations   int                   `json:"stations"`
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	st := s.state.State()
	summary := stateSummary{
		Generation: st.Generation,
		Source:     st.Source,
		Stats:      st.Stats,
		Stations:   domain.StationCount(),
	}
	if !st.LoadedAt.IsZero() {
		loadedAt := st.LoadedAt
		summary.LoadedAt = &loadedAt
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleReload(w http.ResponseWriter, _ *http.Request) {
	s.state.RequestReload()
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "reload requested"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", "error", err)
	}
}
