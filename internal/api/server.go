// Package api exposes the analysis engine over HTTP.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/eloiseboudon/crossfit-audit/internal/analyzer"
	"github.com/eloiseboudon/crossfit-audit/internal/config"
	"github.com/eloiseboudon/crossfit-audit/internal/monitoring"
	"github.com/eloiseboudon/crossfit-audit/internal/store"
)

// Version is reported by the health endpoint and in analysis metadata.
const Version = "1.0.0"

// maxBodyBytes bounds request documents.
const maxBodyBytes = 1 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	analyzer *analyzer.Analyzer
	store    store.Store // nil disables run persistence
	cfg      config.ServerConfig
	now      func() time.Time
}

// New creates a Server. st may be nil.
func New(a *analyzer.Analyzer, st store.Store, cfg config.ServerConfig) *Server {
	return &Server{
		analyzer: a,
		store:    st,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(observe)

	r.Handle("/metrics", monitoring.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)))
		}

		r.Get("/health", s.handleHealth)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/quick", s.handleQuick)
		r.Post("/validate", s.handleValidate)
		r.Get("/benchmarks", s.handleBenchmarks)
		r.Post("/benchmarks/compare", s.handleCompare)

		if s.store != nil {
			r.Get("/analyses", s.handleListAnalyses)
			r.Get("/analyses/{id}", s.handleGetAnalysis)
			r.Delete("/analyses/{id}", s.handleDeleteAnalysis)
		}
	})

	return r
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.AllowedOrigins
}

// observe records request counts and latency by route pattern.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		monitoring.ObserveHTTP(route, r.Method, strconv.Itoa(status), time.Since(start))
	})
}

// rateLimit rejects requests once the shared token bucket is empty.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeJSON encodes v before writing the header, so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("api: encode response", zap.Int("status", status), zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Error: "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

type errorBody struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
