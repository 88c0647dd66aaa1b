package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindForbidden      ErrKind = "forbidden"      // 403
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindRateLimited    ErrKind = "rate_limited"   // 429
	KindUpstream       ErrKind = "upstream"       // 502
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code
// - Message: safe summary for clients (pt-BR, shown to end users)
// - Meta: optional details (field, reason, etc.)
// - Cause: wrapped internal error for logging
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Code returns the stable code of a domain error, "internal_error" for anything else.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal_error"
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "corpo JSON inválido", cause)
}

func ErrInvalidContentType() *Error {
	return New(KindValidation, "invalid_content_type", "Content-Type deve ser application/json")
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "campo obrigatório ausente"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "campo inválido"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

func ErrWeakPassword(reason string) *Error {
	return WithMeta(New(KindValidation, "weak_password", "a senha não atende aos requisitos"), map[string]string{
		"reason": reason,
	})
}

func ErrInvalidStatus(status string) *Error {
	return WithMeta(New(KindValidation, "invalid_status", "Status inválido"), map[string]string{
		"status": status,
	})
}

func ErrUnknownAction(action string) *Error {
	return WithMeta(New(KindValidation, "unknown_action", "Ação não reconhecida"), map[string]string{
		"action": action,
	})
}

func ErrInvalidAmount() *Error {
	return New(KindValidation, "invalid_amount", "Valor inválido para pagamento.")
}

// ----------------------
// Auth errors (401)
// ----------------------

// Login failures share one message so emails cannot be enumerated.
func ErrInvalidCredentials() *Error {
	return New(KindAuth, "invalid_credentials", "email ou senha inválidos")
}

func ErrTokenMissing() *Error {
	return New(KindAuth, "token_missing", "Não autenticado")
}

func ErrTokenInvalid() *Error {
	return New(KindAuth, "token_invalid", "token inválido")
}

func ErrTokenExpired() *Error {
	return New(KindAuth, "token_expired", "token expirado")
}

func ErrRefreshTokenInvalid() *Error {
	return New(KindAuth, "refresh_token_invalid", "refresh token inválido")
}

// ----------------------
// Forbidden (403)
// ----------------------

func ErrForbidden() *Error {
	return New(KindForbidden, "forbidden", "acesso negado")
}

func ErrAdminRequired() *Error {
	return New(KindForbidden, "admin_required", "Acesso permitido apenas a administradores.")
}

func ErrAccountInactive(status string) *Error {
	return WithMeta(New(KindForbidden, "account_inactive", "conta não está ativa"), map[string]string{
		"status": status,
	})
}

// Admin cannot perform this action on themselves.
func ErrCannotAffectSelf() *Error {
	return New(KindForbidden, "cannot_affect_self", "não é possível executar esta ação no próprio usuário")
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "Usuário não encontrado")
}

func ErrObjectNotFound() *Error {
	return New(KindNotFound, "object_not_found", "arquivo não encontrado")
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, "email_already_exists", "Este email já está cadastrado.")
}

// ----------------------
// Rate limit (429)
// ----------------------

func ErrRateLimited(scope string) *Error {
	return WithMeta(New(KindRateLimited, "rate_limited", "Muitas tentativas. Tente novamente mais tarde."), map[string]string{
		"scope": scope,
	})
}

// ----------------------
// Upstream / infrastructure / internal (5xx)
// ----------------------

func ErrPaymentGateway(cause error) *Error {
	return Wrap(KindUpstream, "payment_gateway_error", "Não foi possível iniciar o pagamento.", cause)
}

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "banco de dados indisponível", cause)
}

func ErrRedisUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "redis_unavailable", "cache indisponível", cause)
}

func ErrRabbitUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "rabbit_unavailable", "broker de mensagens indisponível", cause)
}

func ErrStorageUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "storage_unavailable", "armazenamento indisponível", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "falha ao processar senha", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "falha ao assinar token", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, "random_failed", "falha ao gerar valor aleatório", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "Erro interno do servidor", cause)
}
