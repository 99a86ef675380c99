// Package web serves the prediction form and the JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/richard-senior/matchcast/internal/logger"
	"github.com/richard-senior/matchcast/pkg/ensemble"
	"github.com/richard-senior/matchcast/pkg/history"
	"github.com/richard-senior/matchcast/pkg/report"
	"github.com/richard-senior/matchcast/pkg/store"
)

// Journal records served predictions, normally a *store.Store
type Journal interface {
	RecordPrediction(p *store.PredictionLog) error
	RecentPredictions(limit int) ([]*store.PredictionLog, error)
}

// Options configures a Server
type Options struct {
	Report        report.Options
	RatePerSecond float64
	Burst         int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// Server handles web and API requests. Everything it holds is read-only after New.
type Server struct {
	blender *ensemble.Blender
	source  history.Source
	journal Journal
	opts    Options
	limiter *rate.Limiter
	router  *mux.Router
}

// New wires the routes. journal may be nil.
func New(blender *ensemble.Blender, source history.Source, journal Journal, opts Options) *Server {
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	if opts.Burst < 1 {
		opts.Burst = 10
	}
	s := &Server{
		blender: blender,
		source:  source,
		journal: journal,
		opts:    opts,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
	}
	s.router = s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests, s.rateLimit)

	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/", s.handleIndexPost).Methods("POST")
	r.HandleFunc("/predict", s.handlePredict).Methods("POST")
	r.HandleFunc("/api/teams", s.handleTeams).Methods("GET")
	r.HandleFunc("/api/predictions", s.handleRecentPredictions).Methods("GET")
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	return r
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.opts.ReadTimeout,
		WriteTimeout:   s.opts.WriteTimeout,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server starting on", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		logger.Info("Server stopped")
		return nil
	}
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info(r.Method, r.URL.Path, rec.status, time.Since(start).String())
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
