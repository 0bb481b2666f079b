package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sangnt1552314/ytscout/internal/models"
	"go.uber.org/zap"
)

// Searcher is the query engine as seen by the web UI.
type Searcher interface {
	FindChannels(ctx context.Context, req models.SearchRequest) (*models.SearchResult, error)
}

type config struct {
	addr  string
	limit int
}

// Option is a functional option for Server configuration
type Option func(*config)

func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithLimit sets the maximum number of channels per search.
func WithLimit(limit int) Option {
	return func(c *config) {
		c.limit = limit
	}
}

type Server struct {
	*http.Server
}

func NewServer(searcher Searcher, logger *zap.Logger, opts ...Option) *Server {
	cfg := &config{
		addr:  "localhost:8080",
		limit: models.DefaultLimit,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	h := &handler{
		searcher: searcher,
		logger:   logger,
		limit:    cfg.limit,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(loggingMiddleware(logger))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)
	router.Get("/", h.handleIndex)
	router.Get("/search", h.handleSearch)
	router.Post("/export", h.handleExport)

	return &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}
}

func loggingMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("HTTP request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
