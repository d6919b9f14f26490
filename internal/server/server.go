package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/domain"
	"github.com/damianolombardo/sensor.jellyfin-upcoming-media/internal/sensor"
)

// Platform is the sensor registry served over HTTP
type Platform interface {
	Sensors() []*sensor.LibrarySensor
	Sensor(entityID string) (*sensor.LibrarySensor, error)
	RefreshAll(ctx context.Context) (sensor.CycleReport, error)
	Refreshing() bool
}

// Server exposes sensor state and persisted artwork
type Server struct {
	platform Platform
	wwwDir   string
	logger   *slog.Logger
}

// New creates a server; wwwDir is served under /local/
func New(platform Platform, wwwDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		platform: platform,
		wwwDir:   wwwDir,
		logger:   logger.With("component", "http"),
	}
}

// Handler returns the full handler chain
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterHandlers(r)

	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.logger}))
	return recovery(HTTPLog(s.logger, r))
}

// RegisterHandlers adds all routes to r
func (s *Server) RegisterHandlers(r *mux.Router) {
	gzip := func(handler http.HandlerFunc) http.Handler {
		return handlers.CompressHandler(handler)
	}

	api := r.PathPrefix("/api/").Subrouter()
	api.Handle("/states", gzip(s.statesHandler)).Methods("GET")
	api.Handle("/states/{entity_id}", gzip(s.stateHandler)).Methods("GET")
	api.Handle("/refresh", http.HandlerFunc(s.refreshHandler)).Methods("POST")

	r.Handle("/healthz", http.HandlerFunc(s.healthHandler)).Methods("GET")

	r.Handle("/local", http.NotFoundHandler())
	r.PathPrefix("/local/").Handler(http.StripPrefix("/local/", http.FileServer(http.Dir(s.wwwDir))))
}

// Serve listens on addr until ctx is cancelled
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving HTTP", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) statesHandler(w http.ResponseWriter, r *http.Request) {
	sensors := s.platform.Sensors()
	states := make([]domain.SensorSnapshot, 0, len(sensors))
	for _, ls := range sensors {
		states = append(states, ls.Snapshot())
	}
	serveJSON(states, w)
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	entityID := mux.Vars(r)["entity_id"]
	ls, err := s.platform.Sensor(entityID)
	if err != nil {
		serveError(w, http.StatusNotFound, err)
		return
	}
	serveJSON(ls.Snapshot(), w)
}

// refreshResult is the JSON form of sensor.Result
type refreshResult struct {
	EntityID string `json:"entity_id"`
	State    string `json:"state"`
	Items    int    `json:"items"`
	Error    string `json:"error,omitempty"`
}

type refreshResponse struct {
	CycleID  string          `json:"cycle_id"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
	Results  []refreshResult `json:"results"`
}

func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	report, err := s.platform.RefreshAll(r.Context())
	switch {
	case errors.Is(err, domain.ErrRefreshInProgress):
		serveError(w, http.StatusConflict, err)
		return
	case err != nil:
		serveError(w, http.StatusBadGateway, err)
		return
	}

	resp := refreshResponse{
		CycleID:  report.ID,
		Started:  report.Started,
		Finished: report.Finished,
		Results:  make([]refreshResult, 0, len(report.Results)),
	}
	for _, res := range report.Results {
		rr := refreshResult{EntityID: res.EntityID, State: res.State, Items: res.Items}
		if res.Err != nil {
			rr.Error = res.Err.Error()
		}
		resp.Results = append(resp.Results, rr)
	}
	serveJSON(resp, w)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	serveJSON(map[string]any{
		"status":     "ok",
		"sensors":    len(s.platform.Sensors()),
		"refreshing": s.platform.Refreshing(),
	}, w)
}

func serveJSON(obj any, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	j := json.NewEncoder(w)
	j.SetIndent("", "  ")
	j.Encode(obj)
}

func serveError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// recoveryLogger routes handler panics to slog
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("panic in handler", "error", fmt.Sprint(v...))
}
