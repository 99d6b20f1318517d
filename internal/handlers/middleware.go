package handlers

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags each request, and every log entry written while serving it, with an ID
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}

		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), reqID)))
	})
}

// IPRateLimiter keeps one token bucket per client address
type IPRateLimiter struct {
	mu    sync.Mutex
	ips   map[string]*visitor
	limit rate.Limit
	burst int
	now   func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter allows each client perSecond requests with bursts of up to burst
func NewIPRateLimiter(perSecond float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:   make(map[string]*visitor),
		limit: rate.Limit(perSecond),
		burst: burst,
		now:   time.Now,
	}
}

// Limiter returns the bucket for ip, creating it on first use
func (l *IPRateLimiter) Limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.ips[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.ips[ip] = v
	}
	v.lastSeen = l.now()
	return v.limiter
}

// Len returns the number of tracked client addresses
func (l *IPRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ips)
}

// Sweep forgets clients not seen for longer than idle and returns how many were removed
func (l *IPRateLimiter) Sweep(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idle)
	removed := 0
	for ip, v := range l.ips {
		if v.lastSeen.Before(cutoff) {
			delete(l.ips, ip)
			removed++
		}
	}
	return removed
}

// Run sweeps idle clients every interval until ctx is done
func (l *IPRateLimiter) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep(idle)
		}
	}
}

// RateLimitMiddleware rejects clients that exceed their bucket with 429; /health is never limited
func RateLimitMiddleware(limiter *IPRateLimiter, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			if !limiter.Limiter(ip).Allow() {
				endpoint := routeTemplate(r)
				logger.Warn(r.Context(), "[API_RATE_LIMITED] Request rejected", logging.Fields{
					"client_ip": ip,
					"path":      r.URL.Path,
				})
				metricsCollector.RecordAPIError("rate_limited", endpoint)
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// routeTemplate labels a request by its matched route, e.g. /api/neos/{designation}
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RouterOptions configures the middleware and extra endpoints of NewRouter
type RouterOptions struct {
	Limiter        *IPRateLimiter
	AllowedOrigins []string
	// Metrics is served at /metrics when set
	Metrics http.Handler
}

// NewRouter builds the API router with request IDs, rate limiting and CORS applied
func NewRouter(h *ApproachHandler, opts RouterOptions) http.Handler {
	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	if opts.Limiter != nil {
		router.Use(RateLimitMiddleware(opts.Limiter, h.logger, h.metrics))
	}
	h.RegisterRoutes(router)
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics).Methods("GET")
	}

	return cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{requestIDHeader, "Content-Type"},
		ExposedHeaders: []string{requestIDHeader},
	}).Handler(router)
}
