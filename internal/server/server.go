// Package server serves the portfolio page, the repository feed and the theme
// toggle over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/naka-gawa/portfolio-feed/internal/metrics"
	"github.com/naka-gawa/portfolio-feed/internal/store"
	"github.com/naka-gawa/portfolio-feed/internal/usecase"
	"github.com/naka-gawa/portfolio-feed/internal/view"
	"golang.org/x/sync/errgroup"
)

// Config holds server configuration.
type Config struct {
	Addr     string
	AllowAll bool // allow all CORS origins on the JSON API
	Map      view.MapSettings
	Globe    view.GlobeSettings
	// ScrollThreshold is passed through to the scroll-to-top button.
	ScrollThreshold int
}

// DefaultScrollThreshold is the scroll offset in pixels past which the
// scroll-to-top button appears.
const DefaultScrollThreshold = 240

// Server wires the feed loader and preference store into HTTP handlers.
type Server struct {
	cfg    Config
	loader *usecase.FeedLoader
	prefs  store.Store
	logger *log.Logger
	now    func() time.Time

	router     chi.Router
	httpServer *http.Server
}

// New creates a new server with all dependencies.
func New(cfg Config, loader *usecase.FeedLoader, prefs store.Store, logger *log.Logger) *Server {
	if cfg.ScrollThreshold == 0 {
		cfg.ScrollThreshold = DefaultScrollThreshold
	}
	s := &Server{
		cfg:    cfg,
		loader: loader,
		prefs:  prefs,
		logger: logger,
		now:    time.Now,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: s.logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(view.Static()))))

	r.Get("/", s.handlePage)
	r.Get("/repos", s.handleFeedFragment)
	r.Post("/theme/toggle", s.handleThemeToggle)

	r.Get("/api/repos", s.handleFeedJSON)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s.logger.Printf("portfolio server listening on %s", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Println("portfolio server shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
