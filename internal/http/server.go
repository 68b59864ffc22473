package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendfy/internal/log"
	"spendfy/internal/middleware/ratelimit"
	"spendfy/internal/middleware/security"
	"spendfy/internal/middleware/trace"
	"spendfy/internal/services"
)

// Services groups the operations the API exposes.
type Services struct {
	Auth         *services.AuthService
	Accounts     *services.AccountService
	Categories   *services.CategoryService
	Budgets      *services.BudgetService
	Transactions *services.TransactionService
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the middleware stack.
type Options struct {
	AuthRateLimitPerMinute int
	APIRateLimitPerMinute  int
	TrustedProxies         []string
}

type Server struct {
	http.Server
	svc    Services
	store  Pinger
	logger *log.Logger

	authLimiter      *ratelimit.Limiter
	apiLimiter       *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, store Pinger, logger *log.Logger, opts Options) (*Server, error) {
	detector, err := security.NewDetector(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		svc:              svc,
		store:            store,
		logger:           logger.WithComponent(log.ComponentHTTP),
		authLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.AuthRateLimitPerMinute}),
		apiLimiter:       ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.APIRateLimitPerMinute}),
		securityDetector: detector,
		started:          time.Now(),
	}
	s.traceMiddleware = trace.NewMiddleware(logger, detector.ExtractClientIP)

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = s.apiLimiter.Middleware(detector.ExtractClientIP, s.writeRateLimited)(handler)
	handler = detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	authLimited := s.authLimiter.Middleware(s.securityDetector.ExtractClientIP, s.writeRateLimited)
	mux.Handle("POST /auth/register", authLimited(http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /auth/login", authLimited(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("GET /auth/me", s.authenticated(s.handleMe))
	mux.HandleFunc("DELETE /auth/me", s.authenticated(s.handleDeleteMe))

	mux.HandleFunc("POST /accounts", s.authenticated(s.handleCreateAccount))
	mux.HandleFunc("GET /accounts", s.authenticated(s.handleListAccounts))
	mux.HandleFunc("GET /accounts/{id}", s.authenticated(s.handleGetAccount))
	mux.HandleFunc("PUT /accounts/{id}", s.authenticated(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /accounts/{id}", s.authenticated(s.handleDeleteAccount))

	mux.HandleFunc("POST /categories", s.authenticated(s.handleCreateCategory))
	mux.HandleFunc("GET /categories", s.authenticated(s.handleListCategories))
	mux.HandleFunc("GET /categories/{id}", s.authenticated(s.handleGetCategory))
	mux.HandleFunc("PUT /categories/{id}", s.authenticated(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /categories/{id}", s.authenticated(s.handleDeleteCategory))

	mux.HandleFunc("POST /budgets", s.authenticated(s.handleCreateBudget))
	mux.HandleFunc("GET /budgets", s.authenticated(s.handleListBudgets))
	mux.HandleFunc("GET /budgets/{id}", s.authenticated(s.handleGetBudget))
	mux.HandleFunc("PUT /budgets/{id}", s.authenticated(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /budgets/{id}", s.authenticated(s.handleDeleteBudget))
	mux.HandleFunc("GET /budgets/{id}/usage", s.authenticated(s.handleBudgetUsage))

	mux.HandleFunc("POST /transactions", s.authenticated(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions", s.authenticated(s.handleListTransactions))
	mux.HandleFunc("GET /transactions/{id}", s.authenticated(s.handleGetTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.authenticated(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.authenticated(s.handleDeleteTransaction))
}

// Shutdown stops the limiters and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.authLimiter.Stop()
		s.apiLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
