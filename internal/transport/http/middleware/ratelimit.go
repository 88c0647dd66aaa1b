package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
	"github.com/simulado-cea/simulado-service/internal/metrics"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (domain.RateDecision, error)
}

// RateClass is a named per-IP budget shared by every route it is applied to.
type RateClass struct {
	Name   string
	Limit  int
	Window time.Duration
}

var (
	ClassAuth    = RateClass{Name: "AUTH", Limit: 5, Window: 15 * time.Minute}
	ClassAPI     = RateClass{Name: "API", Limit: 100, Window: time.Minute}
	ClassPayment = RateClass{Name: "PAYMENT", Limit: 3, Window: 5 * time.Minute}
)

// RateLimit applies a fixed-window budget keyed by class and client IP on a
// shared limiter (Redis). Limiter failures fail open.
func RateLimit(limiter RateLimiter, class RateClass, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if class.Window <= 0 {
		class.Window = time.Minute
	}
	if class.Name == "" {
		class.Name = "unknown"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := class.Name + ":" + ClientIP(r)
			dec, err := limiter.Allow(r.Context(), key, class.Limit, class.Window)
			if err != nil {
				logger.WithCtx(r.Context()).Warn().Err(err).Str("class", class.Name).Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))

			if !dec.Allowed {
				secs := int((dec.RetryAfter + time.Second - 1) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				rejected(w, r, class, writeErr)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LocalRateLimit is the single-instance variant of RateLimit, used when no
// shared limiter is configured. Counters live in httprate's in-process
// sliding window; every route wrapped by the returned middleware shares them.
func LocalRateLimit(class RateClass, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if class.Window <= 0 {
		class.Window = time.Minute
	}
	if class.Name == "" {
		class.Name = "unknown"
	}
	if class.Limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(class.Limit, class.Window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return class.Name + ":" + ClientIP(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			rejected(w, r, class, writeErr)
		}),
	)
}

func rejected(w http.ResponseWriter, r *http.Request, class RateClass, writeErr WriteErrFunc) {
	metrics.RateLimitedTotal.WithLabelValues(class.Name).Inc()
	logger.WithCtx(r.Context()).Warn().
		Str("class", class.Name).
		Str("ip", ClientIP(r)).
		Str("path", r.URL.Path).
		Msg("rate limit exceeded")
	writeErr(w, r, domain.ErrRateLimited(class.Name))
}

// ClientIP extracts the caller address, honouring the headers set by common
// proxies and CDNs: cf-connecting-ip, x-forwarded-for (first hop), x-real-ip
// and x-client-ip, then the connection address.
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("Cf-Connecting-Ip")); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Client-Ip")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		return addr
	}
	return "unknown"
}
