package middleware

import (
	"net/http"

	"github.com/google/uuid"

	pkgctx "github.com/simulado-cea/simulado-service/internal/pkg/context"
)

const HeaderXRequestID = "X-Request-Id"

// maxRequestIDLen bounds ids accepted from clients so they cannot bloat log lines.
const maxRequestIDLen = 128

// RequestID assigns the request id (echoed in X-Request-Id) and records the
// client address so every log line of the request carries both.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" || len(reqID) > maxRequestIDLen {
			reqID = uuid.NewString()
		}
		w.Header().Set(HeaderXRequestID, reqID)

		ctx := pkgctx.WithRequestID(r.Context(), reqID)
		ctx = pkgctx.WithClientIP(ctx, ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
