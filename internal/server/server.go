// Package server exposes the QueryForge API over HTTP and hosts the dashboard SPA.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/queryforge/internal/notifier"
	"github.com/leapstack-labs/queryforge/internal/service"
	"golang.org/x/sync/errgroup"
)

// DefaultPollInterval is how often /api/events refreshes without audit activity.
const DefaultPollInterval = 30 * time.Second

// Server is the HTTP API server.
type Server struct {
	svc          *service.Service
	notifier     *notifier.Notifier
	sessions     *sessions.CookieStore
	port         int
	staticDir    string
	corsOrigins  []string
	pollInterval time.Duration
	env          string
	modelsFile   string
	debugInfo    any
	logger       *slog.Logger
}

// Config holds configuration for the HTTP server.
type Config struct {
	Service  *service.Service
	Notifier *notifier.Notifier
	Port     int
	// StaticDir holds the built SPA. Empty disables static hosting.
	StaticDir   string
	CORSOrigins []string
	// SessionSecret signs the workflow cookie. Empty generates a
	// per-process secret, so cookies do not survive a restart.
	SessionSecret string
	PollInterval  time.Duration
	Env           string
	// ModelsFile is watched and hot-reloaded into the model catalog.
	ModelsFile string
	// DebugInfo is served verbatim by /api/debug/config. It must not hold secrets.
	DebugInfo any
	Logger    *slog.Logger
}

// New creates a server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	secret := cfg.SessionSecret
	if secret == "" {
		logger.Warn("no session secret configured, generating one for this process")
		secret = uuid.NewString() + uuid.NewString()
	}
	notify := cfg.Notifier
	if notify == nil {
		notify = notifier.New()
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	return &Server{
		svc:          cfg.Service,
		notifier:     notify,
		sessions:     newSessionStore(secret),
		port:         cfg.Port,
		staticDir:    cfg.StaticDir,
		corsOrigins:  cfg.CORSOrigins,
		pollInterval: poll,
		env:          cfg.Env,
		modelsFile:   cfg.ModelsFile,
		debugInfo:    cfg.DebugInfo,
		logger:       logger,
	}
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Handler builds the HTTP handler with all middleware and routes.
func (s *Server) Handler() http.Handler {
	origins := s.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
		cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	s.setupRoutes(r)
	return r
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting QueryForge API", "addr", fmt.Sprintf("http://localhost:%d", s.port), "env", s.env)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.modelsFile != "" {
		eg.Go(func() error {
			err := s.svc.Router().Catalog().Watch(egctx, s.modelsFile, s.notifier.Broadcast)
			if err != nil {
				// Serving continues with the catalog loaded at startup.
				s.logger.Error("failed to watch models file", "path", s.modelsFile, "error", err)
			}
			return nil
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down API server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
