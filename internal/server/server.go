// Package server is the HTTP surface in front of the detection engine.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/guardianeye/guardianeye/internal/config"
	"github.com/guardianeye/guardianeye/internal/console"
	"github.com/guardianeye/guardianeye/internal/detect"
	"github.com/guardianeye/guardianeye/internal/metrics"
)

// Server wraps the router and the detection engine.
type Server struct {
	cfg    *config.Config
	engine *detect.Engine
	router chi.Router
}

// New creates a Server with all routes registered.
func New(cfg *config.Config, engine *detect.Engine) *Server {
	s := &Server{
		cfg:    cfg,
		engine: engine,
		router: chi.NewRouter(),
	}

	s.router.Use(requestLogger)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", metrics.Handler())
	s.router.Post("/api/analyze", s.handleAnalyze)
	s.router.Get("/", console.Handler().ServeHTTP)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP on the configured address.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: time.Duration(s.cfg.Server.ReadHeaderTimeoutSeconds) * time.Second,
		ReadTimeout:       time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}
	log.Printf("server: listening on %s", s.cfg.Server.Addr)
	return srv.ListenAndServe()
}

type analyzeRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var reqBody analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start := time.Now()
	verdict, signals, err := s.engine.Analyze(r.Context(), detect.Request{
		Text: reqBody.Text,
		URL:  reqBody.URL,
	})
	metrics.ObserveDuration(time.Since(start).Seconds())

	for _, sig := range signals {
		if sig.Status == detect.StatusUnavailable {
			metrics.RecordUnavailable(string(sig.Source))
		}
	}

	switch {
	case errors.Is(err, detect.ErrNoInput):
		metrics.RecordError("no_input")
		writeError(w, http.StatusBadRequest, "at least one of text or url is required")
		return
	case errors.Is(err, detect.ErrFusionImpossible):
		metrics.RecordError("fusion_impossible")
		writeError(w, http.StatusServiceUnavailable, "no signal source could be consulted; unable to produce a verdict")
		return
	case err != nil:
		log.Printf("server: analyze failed: %v", err)
		metrics.RecordError("internal")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.RecordVerdict(string(verdict.Status), verdict.DetectionMethod)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(verdict); err != nil {
		log.Printf("server: failed to write analyze response: %v", err)
	}
}

type healthResponse struct {
	Status  string   `json:"status"`
	Sources []string `json:"sources"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{Status: "ok", Sources: s.engine.Sources()}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("server: failed to write health response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: msg}); err != nil {
		log.Printf("server: failed to write error response: %v", err)
	}
}

// requestLogger tags each request with an ID and logs method, path, and
// duration on completion.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("server: %s %s request_id=%s duration=%s", r.Method, r.URL.Path, id, time.Since(start))
	})
}
