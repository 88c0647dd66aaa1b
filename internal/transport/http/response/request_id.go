package response

import (
	"net/http"

	pkgctx "github.com/simulado-cea/simulado-service/internal/pkg/context"
)

// RequestIDFromContext returns the id set by the RequestID middleware, if any.
func RequestIDFromContext(r *http.Request) string {
	return pkgctx.GetRequestID(r.Context())
}
