// Package http exposes the JSON API for budgets, recurring rules and the
// ledger. Family scope comes from the X-Family-ID header on every request.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"famledger/internal/cache"
	"famledger/internal/core"
	applog "famledger/internal/log"
	"famledger/internal/services"
)

// SpendReportExporter writes a spend snapshot to an external report target.
type SpendReportExporter interface {
	ExportSpendReport(ctx context.Context, budget core.Budget, snapshot core.BudgetSpendSnapshot) (int, error)
}

// Deps collects the collaborators the server routes to.
type Deps struct {
	Rules      services.RuleStore
	Budgets    services.BudgetStore
	Ledger     services.LedgerStore
	Aggregator *services.BudgetAggregator
	Dispatcher *services.AlertDispatcher
	Scheduler  *services.Scheduler
	// Exporter is optional; the export endpoint answers 503 when nil.
	Exporter SpendReportExporter

	SpendCacheSize int
	SpendCacheTTL  time.Duration
}

type Server struct {
	http.Server

	rules      services.RuleStore
	budgets    services.BudgetStore
	ledger     services.LedgerStore
	aggregator *services.BudgetAggregator
	dispatcher *services.AlertDispatcher
	scheduler  *services.Scheduler
	exporter   SpendReportExporter

	// Spend snapshots are cached per family and budget; concurrent misses
	// for the same budget collapse into one aggregation.
	spendCache   *cache.LRUCache[core.BudgetSpendSnapshot]
	spendGroup   singleflight.Group
	cacheManager *cache.Manager

	rateLimiter *rateLimiter

	logger  *applog.Logger
	httpLog *applog.StructuredLogger

	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	cacheSize := deps.SpendCacheSize
	if cacheSize < 1 {
		cacheSize = 256
	}
	cacheTTL := deps.SpendCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(logger)(mux),
		},
		rules:            deps.Rules,
		budgets:          deps.Budgets,
		ledger:           deps.Ledger,
		aggregator:       deps.Aggregator,
		dispatcher:       deps.Dispatcher,
		scheduler:        deps.Scheduler,
		exporter:         deps.Exporter,
		spendCache:   cache.NewLRUCache[core.BudgetSpendSnapshot](cacheSize, cacheTTL),
		cacheManager: cache.NewManager(),
		rateLimiter:  newRateLimiter(),
		logger:       logger,
		httpLog:      applog.NewStructuredLogger(logger),
	}

	s.cacheManager.Register(s.spendCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/budgets", s.withSecurityHeaders(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.withSecurityHeaders(s.handleCreateBudget))
	mux.HandleFunc("GET /api/budgets/{id}", s.withSecurityHeaders(s.handleGetBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.withSecurityHeaders(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.withSecurityHeaders(s.handleDeleteBudget))
	mux.HandleFunc("GET /api/budgets/{id}/spend", s.withSecurityHeaders(s.handleBudgetSpend))
	mux.HandleFunc("POST /api/budgets/{id}/export", s.withSecurityHeaders(s.handleExportBudget))

	mux.HandleFunc("GET /api/recurring", s.withSecurityHeaders(s.handleListRules))
	mux.HandleFunc("POST /api/recurring", s.withSecurityHeaders(s.handleCreateRule))
	mux.HandleFunc("GET /api/recurring/{id}", s.withSecurityHeaders(s.handleGetRule))
	mux.HandleFunc("PUT /api/recurring/{id}", s.withSecurityHeaders(s.handleUpdateRule))
	mux.HandleFunc("DELETE /api/recurring/{id}", s.withSecurityHeaders(s.handleDeleteRule))
	mux.HandleFunc("POST /api/recurring/run", s.withSecurityHeaders(s.handleRunDueRules))

	mux.HandleFunc("POST /api/ledger", s.withSecurityHeaders(s.handleCreateEntry))
	mux.HandleFunc("GET /api/ledger", s.withSecurityHeaders(s.handleListEntries))
	mux.HandleFunc("DELETE /api/ledger/{id}", s.withSecurityHeaders(s.handleDeleteEntry))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := r.Context()
		reqLog := s.logger.With(applog.FieldRequestID, requestID)

		s.httpLog.LogHTTPStart(ctx, r, clientIP)

		// Rate limit mutating requests only.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			reqLog.WarnContext(ctx, "Rate limit exceeded",
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.httpLog.LogHTTPEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) spendCacheKey(familyID, budgetID string) string {
	return familyID + ":" + budgetID
}

// invalidateFamilySpend drops every cached snapshot for the family. Ledger
// and budget writes call this so reads never serve stale figures past the
// write.
func (s *Server) invalidateFamilySpend(familyID string) {
	s.spendCache.DeletePrefix(familyID + ":")
}
