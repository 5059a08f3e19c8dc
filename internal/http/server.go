// Package http exposes the JSON API over the ingestion, statement and
// analytics services.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"cardtrack/internal/auth"
	applog "cardtrack/internal/log"
	"cardtrack/internal/services"
)

// Services groups the application services the server exposes.
type Services struct {
	Ingest       *services.IngestService
	Analytics    *services.AnalyticsService
	Statements   services.StatementStore
	Transactions services.TransactionStore
	Categories   services.CategoryStore
}

type Server struct {
	http.Server

	svcs           Services
	authn          auth.Authenticator
	rateLimiter    *rateLimiter
	uploadMaxBytes int64

	shutdownOnce sync.Once
}

// ownerHandler is a handler that runs with a resolved owner id.
type ownerHandler func(w http.ResponseWriter, r *http.Request, ownerID int64)

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, logger *applog.Logger, authn auth.Authenticator, svcs Services, uploadMaxBytes int64) *Server {
	mux := http.NewServeMux()

	s := &Server{
		svcs:           svcs,
		authn:          authn,
		rateLimiter:    newRateLimiter(),
		uploadMaxBytes: uploadMaxBytes,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/upload", s.api(s.handleUpload))

	mux.HandleFunc("GET /api/statements", s.api(s.handleListStatements))
	mux.HandleFunc("GET /api/statements/latest-dates", s.api(s.handleLatestDates))
	mux.HandleFunc("GET /api/statements/{id}", s.api(s.handleGetStatement))
	mux.HandleFunc("DELETE /api/statements/{id}", s.api(s.handleDeleteStatement))
	mux.HandleFunc("GET /api/available-periods", s.api(s.handleAvailablePeriods))

	mux.HandleFunc("GET /api/transactions", s.api(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/by-statement/{id}", s.api(s.handleTransactionsByStatement))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.api(s.handleUpdateTransactionCategory))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.api(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/categories", s.api(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.api(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.api(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.api(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/analytics", s.api(s.handleAnalytics))
	mux.HandleFunc("GET /api/analytics/trend", s.api(s.handleAnalyticsTrend))

	handler := applog.Middleware(logger)(applog.RequestIDMiddleware()(mux))
	s.Server = http.Server{
		Addr:    addr,
		Handler: handler,
	}

	return s
}

// Shutdown stops the rate limiter cleanup goroutine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// api wraps a handler with security headers, rate limiting, request
// logging and authentication.
func (s *Server) api(next ownerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := applog.FromContext(ctx)

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		logger.InfoContext(ctx, "Request started",
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		ownerID, err := s.authn.Authenticate(r)
		if err != nil {
			writeError(rw, r, err)
		} else {
			next(rw, r, ownerID)
		}

		logger.InfoContext(ctx, "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
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
