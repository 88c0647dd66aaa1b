package middleware

import (
	"net/http"
	"strings"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/infrastructure/security"
	"github.com/simulado-cea/simulado-service/internal/logger"
)

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

type TokenVerifier interface {
	VerifyAccessToken(token string) (domain.Principal, error)
}

// SessionProvider resolves the principal of a request, if any.
type SessionProvider interface {
	Session(r *http.Request) (domain.Principal, bool)
}

// TokenSessions reads the access token from "Authorization: Bearer" or, for
// browser page loads, from the access token cookie.
type TokenSessions struct {
	verifier TokenVerifier
}

func NewTokenSessions(v TokenVerifier) *TokenSessions {
	return &TokenSessions{verifier: v}
}

func (s *TokenSessions) Session(r *http.Request) (domain.Principal, bool) {
	raw, ok := bearerToken(r)
	if !ok {
		raw, ok = security.ReadAccessToken(r)
	}
	if !ok {
		return domain.Principal{}, false
	}

	p, err := s.verifier.VerifyAccessToken(raw)
	if err != nil {
		logger.WithCtx(r.Context()).Debug().Str("code", domain.Code(err)).Msg("access token rejected")
		return domain.Principal{}, false
	}
	if strings.TrimSpace(p.ID) == "" {
		return domain.Principal{}, false
	}
	return p, true
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}

// Authenticate attaches the principal to the context when a session exists.
// Requests without one pass through unchanged.
func Authenticate(sessions SessionProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p, ok := sessions.Session(r); ok {
				r = r.WithContext(WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests without a session with 401 token_missing.
func RequireAuth(sessions SessionProvider, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				p, ok = sessions.Session(r)
			}
			if !ok {
				writeErr(w, r, domain.ErrTokenMissing())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
