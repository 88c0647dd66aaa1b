package middleware

import (
	"net/http"
	"time"

	"github.com/simulado-cea/simulado-service/internal/logger"
)

// statusWriter captures the status and body size written by the handler.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// code is the status sent to the client; handlers that never write send 200.
func (w *statusWriter) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// AccessLog writes one line per request. Server errors are logged at error level.
// Request id and client ip come from the request context.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		start := time.Now()

		next.ServeHTTP(sw, r)

		status := sw.code()
		lg := logger.WithCtx(r.Context())
		ev := lg.Info()
		if status >= http.StatusInternalServerError {
			ev = lg.Error()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", sw.bytes).
			Dur("latency", time.Since(start)).
			Msg("http_request")
	})
}
