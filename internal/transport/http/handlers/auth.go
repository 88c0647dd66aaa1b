package http_handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/simulado-cea/simulado-service/internal/application/auth"
	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/infrastructure/security"
	"github.com/simulado-cea/simulado-service/internal/logger"
	"github.com/simulado-cea/simulado-service/internal/metrics"
	"github.com/simulado-cea/simulado-service/internal/transport/http/dto"
	"github.com/simulado-cea/simulado-service/internal/transport/http/middleware"
	"github.com/simulado-cea/simulado-service/internal/transport/http/response"
)

type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (domain.AuthUser, error)
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (auth.AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID string) (auth.MeResult, error)
}

// LoginAuditor records login outcomes together with the caller address.
type LoginAuditor interface {
	LoginSuccess(ctx context.Context, userID, email, ip string)
	LoginFailed(ctx context.Context, email, ip, reason string)
	Logout(ctx context.Context, userID string)
}

type AuthHandler struct {
	svc           AuthService
	audit         LoginAuditor
	accessTTL     time.Duration
	refreshTTL    time.Duration
	secureCookies bool
}

func NewAuthHandler(svc AuthService, audit LoginAuditor, accessTTL, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		svc:           svc,
		audit:         audit,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		secureCookies: secureCookies,
	}
}

// Cadastro handles POST /api/cadastro.
func (h *AuthHandler) Cadastro(w http.ResponseWriter, r *http.Request) {
	var req dto.CadastroRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Register(r.Context(), auth.RegisterInput{
		Nome:     req.Nome,
		Email:    req.Email,
		Whatsapp: req.Whatsapp,
		Senha:    req.Senha,
	})
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info().Str("user_id", u.ID).Msg("user_registered")

	response.WriteJSON(w, http.StatusCreated, dto.SuccessResponse{Success: true})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		response.WriteError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.WriteError(w, r, err)
		return
	}

	ip := middleware.ClientIP(r)
	res, err := h.svc.Login(r.Context(), req.Email, req.Senha)
	if err != nil {
		code := domain.Code(err)
		metrics.LoginAttemptsTotal.WithLabelValues(code).Inc()
		h.audit.LoginFailed(r.Context(), req.Email, ip, code)
		response.WriteError(w, r, err)
		return
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	h.audit.LoginSuccess(r.Context(), res.User.ID, res.User.Email, ip)

	security.SetAccessToken(w, res.Tokens.AccessToken, h.accessTTL, h.secureCookies)
	security.SetRefreshToken(w, res.Tokens.RefreshToken, h.refreshTTL, h.secureCookies)

	response.OK(w, dto.AuthData{
		User:   dto.NewUserView(res.User),
		Tokens: dto.NewTokensView(res.Tokens),
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshTok, ok := security.ReadRefreshToken(r)
	if !ok {
		response.WriteError(w, r, domain.ErrRefreshTokenInvalid())
		return
	}

	toks, err := h.svc.Refresh(r.Context(), refreshTok)
	if err != nil {
		if domain.Is(err, "refresh_token_invalid") || domain.Is(err, "account_inactive") {
			security.ClearTokens(w, h.secureCookies)
		}
		response.WriteError(w, r, err)
		return
	}

	security.SetAccessToken(w, toks.AccessToken, h.accessTTL, h.secureCookies)
	security.SetRefreshToken(w, toks.RefreshToken, h.refreshTTL, h.secureCookies)

	response.OK(w, dto.RefreshData{Tokens: dto.NewTokensView(toks)})
}

// Logout is idempotent: the cookies are cleared even without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshTok, _ := security.ReadRefreshToken(r)
	if err := h.svc.Logout(r.Context(), refreshTok); err != nil {
		response.WriteError(w, r, err)
		return
	}

	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		h.audit.Logout(r.Context(), p.ID)
	}

	security.ClearTokens(w, h.secureCookies)
	response.NoContent(w)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.WriteError(w, r, domain.ErrTokenMissing())
		return
	}

	res, err := h.svc.Me(r.Context(), p.ID)
	if err != nil {
		response.WriteError(w, r, err)
		return
	}

	data := dto.MeData{User: dto.NewUserView(res.User)}
	if res.Record != nil {
		v := dto.NewUsuarioView(*res.Record)
		data.Usuario = &v
	}
	response.OK(w, data)
}
