// Package api exposes the health check and the indices snapshot over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"stockdash/internal/logger"
	"stockdash/internal/market"
)

//go:generate mockgen -package=api_test -destination=mock_aggregator_test.go -source=server.go Aggregator
//go:generate mockgen -package=api_test -destination=mock_provider_test.go -source=../provider/provider.go Provider

// Aggregator produces the indices snapshot.
type Aggregator interface {
	Aggregate(ctx context.Context) market.Snapshot
	Fallback() market.Snapshot
}

type Option func(*Server)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Server) { s.log = l }
}

// WithRequestTimeout bounds the time spent aggregating one request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

type Server struct {
	agg            Aggregator
	log            logrus.FieldLogger
	router         *mux.Router
	requestTimeout time.Duration
	corsOrigins    []string
	now            func() time.Time
}

func NewServer(agg Aggregator, opts ...Option) *Server {
	s := &Server{
		agg:            agg,
		log:            logrus.StandardLogger(),
		requestTimeout: 10 * time.Second,
		now:            time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/indices", s.handleIndices).Methods(http.MethodGet)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = handlers.CompressHandler(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.log),
		handlers.PrintRecoveryStack(false),
	)(h)
	h = logger.Middleware(s.log)(h)
	c := cors.New(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(h)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Timestamp: s.now()})
}

// handleIndices always answers 200; upstream failures surface as isFallback.
func (s *Server) handleIndices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()
	writeJSON(w, http.StatusOK, s.snapshot(ctx))
}

func (s *Server) snapshot(ctx context.Context) (snap market.Snapshot) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.WithField("panic", rec).Error("aggregation panicked, serving fallback")
			snap = s.agg.Fallback()
		}
	}()
	return s.agg.Aggregate(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
