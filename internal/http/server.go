// Package http serves the ledger and savings JSON API and the live
// transaction event stream.
package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"

	"budgetik/internal/log"
	"budgetik/internal/middleware/ratelimit"
	"budgetik/internal/middleware/security"
	"budgetik/internal/middleware/trace"
	"budgetik/internal/services"
	"budgetik/internal/stream"
)

const (
	maxBodyBytes      = 1 << 20
	heartbeatInterval = 25 * time.Second
)

// Dependencies are the collaborators the handlers call.
type Dependencies struct {
	Ledger  *services.LedgerService
	Savings *services.SavingsService
	Streams *stream.Router
	// Ready reports whether the backing store is usable. Nil means always ready.
	Ready  func(ctx context.Context) error
	Clock  clockwork.Clock
	Logger *log.Logger

	RateLimit ratelimit.Config
}

type Server struct {
	http.Server
	ledger  *services.LedgerService
	savings *services.SavingsService
	streams *stream.Router
	ready   func(ctx context.Context) error
	clock   clockwork.Clock
	logger  *log.Logger

	limiter *ratelimit.Limiter

	// closed when Shutdown starts, ending open event streams
	stopStreams  chan struct{}
	shutdownOnce sync.Once
}

// NewServer wires the routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Dependencies) *Server {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		ledger:      deps.Ledger,
		savings:     deps.Savings,
		streams:     deps.Streams,
		ready:       deps.Ready,
		clock:       clock,
		logger:      logger,
		limiter:     ratelimit.NewLimiter(clock, deps.RateLimit),
		stopStreams: make(chan struct{}),
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.Server.RegisterOnShutdown(s.closeStreams)
	return s
}

func (s *Server) routes() http.Handler {
	clientIP := security.NewClientIP()
	tracer := trace.NewMiddleware(s.logger, clientIP.Extract)

	r := chi.NewRouter()
	r.Use(log.Middleware(s.logger))
	r.Use(tracer.Middleware)
	r.Use(log.RequestIDMiddleware(trace.RequestID))
	r.Use(chimw.Recoverer)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.limiter.Middleware(clientIP.Extract, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
		}))

		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleCreateTransaction)
		r.Post("/transactions/delete-matching", s.handleDeleteMatching)
		r.Put("/transactions/{id}", s.handleUpdateTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)

		r.Get("/report", s.handleReport)
		r.Get("/balances", s.handleBalances)
		r.Get("/suggestions", s.handleSuggestions)
		r.Get("/stream", s.handleStream)

		r.Get("/jars", s.handleListJars)
		r.Post("/jars", s.handleCreateJar)
		r.Patch("/jars/{id}", s.handleUpdateJar)
		r.Post("/jars/{id}/deposit", s.handleDeposit)
		r.Delete("/jars/{id}", s.handleDeleteJar)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})
	return r
}

func (s *Server) closeStreams() {
	select {
	case <-s.stopStreams:
	default:
		close(s.stopStreams)
	}
}

// Shutdown ends open event streams, stops the rate limiter and shuts down
// the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// ListenAndServe runs until Shutdown. A normal shutdown returns nil.
func (s *Server) ListenAndServe() error {
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "store unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
