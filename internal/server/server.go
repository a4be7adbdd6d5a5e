// Package server exposes the question-answering pipeline over HTTP. Uploaded
// datasets live in memory for the life of the process.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/csvask-cli/internal/assist"
	"github.com/KaramelBytes/csvask-cli/internal/dataset"
	"github.com/KaramelBytes/csvask-cli/internal/router"
	"github.com/KaramelBytes/csvask-cli/internal/tools"
)

// MaxUploadBytes caps a dataset upload.
const MaxUploadBytes = 100 << 20

// Config wires a Server. Router and Runner are required.
type Config struct {
	Router      *router.Router
	Runner      *tools.Runner
	Assistant   *assist.Assistant
	Load        dataset.Options
	CORSOrigins []string
	Logger      *slog.Logger
	// MaxCharts bounds the charts kept per dataset; the oldest is evicted.
	MaxCharts int
}

// Server holds uploaded datasets and their rendered-on-demand charts.
type Server struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	id      string
	data    *dataset.Dataset
	created time.Time

	mu     sync.Mutex
	charts map[string]*tools.Chart
	order  []string
}

// New returns a Server with no datasets.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Load == (dataset.Options{}) {
		cfg.Load = dataset.DefaultOptions()
	}
	if cfg.MaxCharts <= 0 {
		cfg.MaxCharts = 50
	}
	return &Server{cfg: cfg, logger: cfg.Logger, sessions: map[string]*session{}}
}

// Handler builds the chi router with middleware and all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/datasets", func(r chi.Router) {
		r.Post("/", s.upload)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.describe)
			r.Delete("/", s.remove)
			r.Post("/ask", s.ask)
			r.Get("/charts/{resultID}.png", s.chart)
		})
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", slog.String("addr", addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) add(d *dataset.Dataset, id string) *session {
	sess := &session{id: id, data: d, created: time.Now(), charts: map[string]*tools.Chart{}}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess
}

func (s *Server) get(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) drop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

func (sess *session) keep(id string, c *tools.Chart, max int) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.charts[id] = c
	sess.order = append(sess.order, id)
	for len(sess.order) > max {
		delete(sess.charts, sess.order[0])
		sess.order = sess.order[1:]
	}
}

func (sess *session) chart(id string) (*tools.Chart, bool) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	c, ok := sess.charts[id]
	return c, ok
}
