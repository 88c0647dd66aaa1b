package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
)

type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

var kindStatus = map[domain.ErrKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindAuth:           http.StatusUnauthorized,
	domain.KindForbidden:      http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
	domain.KindConflict:       http.StatusConflict,
	domain.KindRateLimited:    http.StatusTooManyRequests,
	domain.KindUpstream:       http.StatusBadGateway,
	domain.KindInfrastructure: http.StatusServiceUnavailable,
}

var internalPayload = ErrorPayload{
	Code:    "internal_error",
	Message: "Erro interno do servidor",
}

// StatusFromKind maps a domain error kind to its HTTP status. Unknown kinds are 500.
func StatusFromKind(kind domain.ErrKind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteError renders err as the JSON error envelope. Errors that are not
// *domain.Error become a generic 500 so internals never reach the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	payload := internalPayload

	var de *domain.Error
	if errors.As(err, &de) {
		status = StatusFromKind(de.Kind)
		payload = ErrorPayload{Code: de.Code, Message: de.Message, Meta: de.Meta}
	}
	payload.RequestID = RequestIDFromContext(r)

	logFailure(r, status, payload.Code, err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Error: payload})
}

func logFailure(r *http.Request, status int, code string, err error) {
	lg := logger.WithCtx(r.Context())
	var ev *zerolog.Event
	switch {
	case status >= http.StatusInternalServerError:
		ev = lg.Error()
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		ev = lg.Debug()
	default:
		return
	}
	ev.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Str("code", code).
		Msg("request failed")
}
