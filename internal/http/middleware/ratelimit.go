package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterMaxAge = 10 * time.Minute

// RateLimiter mantém um token bucket por chave e descarta chaves ociosas.
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu    sync.Mutex
	store map[string]*limiterEntry
	swept time.Time
}

type limiterEntry struct {
	limiter *rate.Limiter
	updated time.Time
}

// NewRateLimiter cria um limitador com reqPerSec requisições por segundo e
// rajada burst para cada chave.
func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit: rate.Limit(reqPerSec),
		burst: burst,
		now:   time.Now,
		store: make(map[string]*limiterEntry),
	}
}

// Allow consome um token da chave.
func (r *RateLimiter) Allow(key string) bool {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.store[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.store[key] = entry
	}
	entry.updated = now

	if now.Sub(r.swept) > limiterMaxAge {
		for k, e := range r.store {
			if now.Sub(e.updated) > limiterMaxAge {
				delete(r.store, k)
			}
		}
		r.swept = now
	}

	return entry.limiter.AllowN(now, 1)
}

// LimitByKey aplica o limite à chave devolvida por keyFunc. Sem chave a
// requisição passa.
func (r *RateLimiter) LimitByKey(next http.Handler, keyFunc func(*http.Request) (string, bool)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		key, ok := keyFunc(req)
		if !ok || key == "" {
			next.ServeHTTP(w, req)
			return
		}
		if !r.Allow(key) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "RATE_LIMIT", "Limite de requisições excedido")
			return
		}
		next.ServeHTTP(w, req)
	})
}

// IPRateLimit limita por IP de origem.
func IPRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.LimitByKey(next, func(r *http.Request) (string, bool) {
			return realIPFromRequest(r), true
		})
	}
}

// UserRateLimit limita pelo usuário autenticado; precisa rodar depois de Auth.
func UserRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return limiter.LimitByKey(next, func(r *http.Request) (string, bool) {
			subject := GetSubject(r.Context())
			return subject, subject != ""
		})
	}
}

func realIPFromRequest(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
