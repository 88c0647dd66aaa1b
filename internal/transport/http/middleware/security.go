package middleware

import (
	"net/http"
	"strings"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self' https://sdk.mercadopago.com",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' data: https: blob:",
	"connect-src 'self' https://api.mercadopago.com",
	"frame-src https://www.mercadopago.com",
	"object-src 'none'",
	"frame-ancestors 'none'",
	"base-uri 'self'",
}, "; ")

// SecurityHeaders sets browser hardening headers. HSTS is only sent when hsts is true
// (production behind TLS).
func SecurityHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", contentSecurityPolicy)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "1; mode=block")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireJSON rejects POST, PUT and PATCH requests whose Content-Type is not JSON.
func RequireJSON(writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				ct := strings.ToLower(r.Header.Get("Content-Type"))
				if !strings.Contains(ct, "application/json") {
					writeErr(w, r, domain.ErrInvalidContentType())
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
