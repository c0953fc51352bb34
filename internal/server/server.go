// Package server exposes persisted rule sets over HTTP so other services
// can check values without running the CLI.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/leapdq/internal/state"
	"github.com/leapstack-labs/leapdq/internal/watch"
	"github.com/leapstack-labs/leapdq/pkg/quality"
	"github.com/leapstack-labs/leapdq/pkg/rule"
	"golang.org/x/sync/errgroup"
)

// Store is the subset of the state store the server reads.
type Store interface {
	LoadRuleSets(ctx context.Context, source string) ([]*rule.RuleSet, error)
	Sources(ctx context.Context) ([]state.SourceSummary, error)
	ListRuns(ctx context.Context, limit int) ([]*state.Run, error)
	RunFailures(ctx context.Context, id string, limit int) ([]state.FailureRecord, error)
}

// Config holds configuration for the server.
type Config struct {
	Store     Store
	Validator *quality.Validator
	// Source selects which stored rule sets are served.
	Source string
	Port   int
	// WatchPath, when set, reloads the rule sets whenever the file changes.
	WatchPath string
	Logger    *slog.Logger
}

// Server serves one source's rule sets.
type Server struct {
	store     Store
	validator *quality.Validator
	source    string
	port      int
	watchPath string
	logger    *slog.Logger

	mu   sync.RWMutex
	sets []*rule.RuleSet
}

// New creates a server. Call Reload before serving.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	v := cfg.Validator
	if v == nil {
		v = quality.New()
	}
	return &Server{
		store:     cfg.Store,
		validator: v,
		source:    cfg.Source,
		port:      cfg.Port,
		watchPath: cfg.WatchPath,
		logger:    logger,
	}
}

// Reload replaces the served rule sets with the stored ones.
func (s *Server) Reload(ctx context.Context) error {
	sets, err := s.store.LoadRuleSets(ctx, s.source)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sets = sets
	s.mu.Unlock()
	s.logger.Debug("rule sets loaded", "source", s.source, "count", len(sets))
	return nil
}

func (s *Server) ruleSets() []*rule.RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sets
}

func (s *Server) lookup(name string) (*rule.RuleSet, bool) {
	for _, rs := range s.ruleSets() {
		if rs.Name() == name {
			return rs, true
		}
	}
	return nil, false
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.requestLogger,
	)

	r.Get("/healthz", s.health)

	r.Route("/rulesets", func(r chi.Router) {
		r.Get("/", s.listRuleSets)
		r.Post("/check", s.checkRecord)
		r.Get("/{name}", s.getRuleSet)
		r.Get("/{name}/expression", s.getExpression)
		r.Post("/{name}/check", s.checkValue)
	})

	r.Get("/sources", s.listSources)

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.listRuns)
		r.Get("/{id}/failures", s.listFailures)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting rule server", "addr", fmt.Sprintf("http://localhost:%d", s.port), "source", s.source)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.watchPath != "" {
		eg.Go(func() error {
			return watch.File(egctx, s.watchPath, watch.DefaultDebounce, s.logger, func() {
				if err := s.Reload(egctx); err != nil {
					s.logger.Error("reload failed", "error", err)
				}
			})
		})
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down rule server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
