// Package http exposes the ledger as a JSON API. Each authenticated user
// gets a session holding their transaction mirror; the registry keeps
// sessions alive between requests and discards them on logout or TTL expiry.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"ledgerly/internal/cache"
	"ledgerly/internal/collection"
	"ledgerly/internal/ledger"
	"ledgerly/internal/log"
)

type Server struct {
	http.Server

	coll      collection.Collection
	planner   collection.PlannerStore
	subs      collection.SubscriptionStore
	jwtSecret []byte

	sessions     *cache.LRUCache[*ledger.Session]
	cacheManager *cache.Manager
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

type Options struct {
	Addr            string
	JWTSecret       string
	SessionTTL      time.Duration
	SessionCacheMax int
}

func NewServer(opts Options, coll collection.Collection, planner collection.PlannerStore, subs collection.SubscriptionStore) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		coll:         coll,
		planner:      planner,
		subs:         subs,
		jwtSecret:    []byte(opts.JWTSecret),
		sessions:     cache.NewLRUCache[*ledger.Session](opts.SessionCacheMax, opts.SessionTTL),
		cacheManager: cache.NewManager(),
		rateLimiter:  newRateLimiter(),
	}

	// An evicted session is closed so an in-flight load cannot resurrect it;
	// the next request simply rebuilds the mirror from the collection.
	s.sessions.OnEvict = func(_ string, sess *ledger.Session) {
		sess.Close()
	}
	s.cacheManager.Register(s.sessions)
	s.cacheManager.StartCleanup(5 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("GET /api/transactions", s.protect(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.protect(s.handleSubmitTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.protect(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.protect(s.handleDeleteTransaction))
	mux.HandleFunc("POST /api/transactions/reorder", s.protect(s.handleReorderTransactions))

	mux.HandleFunc("GET /api/summary", s.protect(s.handleSummary))
	mux.HandleFunc("PUT /api/summary/{field}", s.protect(s.handleEditAggregate))

	mux.HandleFunc("GET /api/planner", s.protect(s.handleListPlans))
	mux.HandleFunc("POST /api/planner", s.protect(s.handleCreatePlan))
	mux.HandleFunc("DELETE /api/planner/{id}", s.protect(s.handleDeletePlan))

	mux.HandleFunc("GET /api/subscriptions", s.protect(s.handleListSubscriptions))
	mux.HandleFunc("POST /api/subscriptions", s.protect(s.handleCreateSubscription))
	mux.HandleFunc("DELETE /api/subscriptions/{id}", s.protect(s.handleDeleteSubscription))

	mux.HandleFunc("POST /api/logout", s.protect(s.handleLogout))

	return s
}

// session returns the live session for userID, building and loading a fresh
// one when the registry has none.
func (s *Server) session(ctx context.Context, userID string) (*ledger.Session, error) {
	if sess, ok := s.sessions.Get(userID); ok {
		return sess, nil
	}

	sess := ledger.NewSession(s.coll, userID)
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}
	s.sessions.Set(userID, sess)
	return sess, nil
}

// dropSession closes and forgets the user's session; the next request
// rebuilds the mirror from scratch.
func (s *Server) dropSession(userID string) {
	s.sessions.Delete(userID)
}

// protect wires the request pipeline: request id, logging, rate limiting on
// mutating methods, security headers, then JWT authentication.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(s.withAuth(next))
}

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
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.DebugContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			log.FieldUserAgent, r.Header.Get("User-Agent"))

		if isMutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				log.FieldComponent, log.ComponentRateLimit,
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// Shutdown stops the server and its housekeeping goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ready")
}
