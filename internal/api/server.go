// Package api exposes the HTTP interface for the menu discovery service.
package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/willzeng274/HaystackDiet/internal/config"
	"github.com/willzeng274/HaystackDiet/internal/dispatcher"
	"github.com/willzeng274/HaystackDiet/internal/game"
	"github.com/willzeng274/HaystackDiet/internal/menu"
	"github.com/willzeng274/HaystackDiet/internal/metrics"
)

// Server wires HTTP handlers to the dispatcher, stores and game engine.
type Server struct {
	router     chi.Router
	jobStore   menu.JobStore
	catalogs   menu.CatalogStore
	dispatcher *dispatcher.Dispatcher
	engine     *game.Engine
	idGen      menu.IDGenerator
	clock      menu.Clock
	cfg        config.Config
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes. The game engine
// is optional; passing nil disables the game routes.
func NewServer(
	jobStore menu.JobStore,
	catalogs menu.CatalogStore,
	dispatcher *dispatcher.Dispatcher,
	engine *game.Engine,
	idGen menu.IDGenerator,
	clock menu.Clock,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		jobStore:   jobStore,
		catalogs:   catalogs,
		dispatcher: dispatcher,
		engine:     engine,
		idGen:      idGen,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(60 * time.Second))
	if cfg.Auth.Enabled {
		r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
	}

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/discoveries", func(r chi.Router) {
			r.Post("/", s.submitDiscovery)
			r.Route("/{job_id}", func(r chi.Router) {
				r.Get("/", s.getDiscovery)
				r.Get("/result", s.getDiscoveryResult)
				r.Post("/cancel", s.cancelDiscovery)
			})
		})
		if engine != nil {
			r.Route("/games", func(r chi.Router) {
				r.Post("/", s.startGame)
				r.Get("/leaderboard", s.leaderboard)
				r.Route("/{game_id}", func(r chi.Router) {
					r.Get("/", s.gameState)
					r.Post("/orders", s.generateOrder)
					r.Post("/orders/{order_id}/serve", s.serveOrder)
				})
			})
		}
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type discoveryRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Radius    *int     `json:"radius"`
}

func (s *Server) submitDiscovery(w http.ResponseWriter, r *http.Request) {
	var req discoveryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	params, err := s.toDiscoveryParams(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	jobID, err := s.enqueueJob(r.Context(), params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusRequestTimeout
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
}

func (s *Server) getDiscovery(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": job})
}

func (s *Server) getDiscoveryResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.jobStore.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.Status != menu.JobStatusSucceeded {
		writeJSON(w, http.StatusOK, map[string]any{"job": job, "restaurants": []menu.Restaurant{}})
		return
	}
	catalog, err := s.catalogs.GetCatalog(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch catalog")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": job, "restaurants": catalog})
}

func (s *Server) cancelDiscovery(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if err := s.jobStore.UpdateJobStatus(
		r.Context(),
		jobID,
		menu.JobStatusCanceled,
		"canceled via API",
		menu.JobCounters{},
	); err != nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job_id": jobID, "status": string(menu.JobStatusCanceled)})
}

func (s *Server) enqueueJob(ctx context.Context, params menu.DiscoveryParams) (string, error) {
	jobID, err := s.idGen.NewID()
	if err != nil {
		return "", fmt.Errorf("generate job id: %w", err)
	}
	now := s.clock.Now()
	job := menu.DiscoveryJob{
		ID:        jobID,
		Status:    menu.JobStatusQueued,
		Submitted: now,
		Params:    params,
	}
	if err := s.jobStore.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("create job: %w", err)
	}
	queueCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	item := menu.QueueItem{
		JobID:     jobID,
		Params:    params,
		Attempt:   1,
		Submitted: now.Unix(),
	}
	if err := s.dispatcher.Enqueue(queueCtx, item); err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return jobID, nil
}

func (s *Server) toDiscoveryParams(req discoveryRequest) (menu.DiscoveryParams, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return menu.DiscoveryParams{}, errors.New("latitude and longitude required")
	}
	if *req.Latitude < -90 || *req.Latitude > 90 {
		return menu.DiscoveryParams{}, errors.New("latitude out of range")
	}
	if *req.Longitude < -180 || *req.Longitude > 180 {
		return menu.DiscoveryParams{}, errors.New("longitude out of range")
	}
	radius := s.cfg.Discovery.DefaultRadius
	if req.Radius != nil {
		if *req.Radius <= 0 {
			return menu.DiscoveryParams{}, errors.New("radius must be > 0")
		}
		radius = *req.Radius
	}
	return menu.DiscoveryParams{
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Radius:    radius,
	}, nil
}

func (s *Server) startGame(w http.ResponseWriter, _ *http.Request) {
	gameID := s.engine.StartGame()
	writeJSON(w, http.StatusCreated, map[string]string{"game_id": gameID})
}

func (s *Server) generateOrder(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	resp, err := s.engine.GenerateOrder(r.Context(), gameID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

type serveOrderRequest struct {
	ItemsServed []string `json:"items_served"`
}

func (s *Server) serveOrder(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	orderID := chi.URLParam(r, "order_id")
	var req serveOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	result, err := s.engine.ServeOrder(r.Context(), gameID, orderID, req.ItemsServed)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) gameState(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "game_id")
	state, err := s.engine.State(gameID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) leaderboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Leaderboard(10))
}

func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, game.ErrOrderNotFound),
		errors.Is(err, game.ErrCustomerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			duration := time.Since(start)
			metrics.ObserveHTTPRequest(r.Method, routePattern(r), ww.status, duration)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", duration.Milliseconds()),
			)
		})
	}
}

// routePattern resolves the chi route template, falling back to the raw
// path when chi has no context.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := rw.ResponseWriter.(http.Hijacker); ok {
		conn, buf, err := h.Hijack()
		if err != nil {
			return nil, nil, fmt.Errorf("hijack connection: %w", err)
		}
		return conn, buf, nil
	}
	return nil, nil, errors.New("hijacker not supported")
}

type requestIDKey struct{}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				writeError(w, http.StatusForbidden, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
