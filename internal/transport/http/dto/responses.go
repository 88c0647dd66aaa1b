package dto

import (
	"time"

	"github.com/simulado-cea/simulado-service/internal/application/admin"
	"github.com/simulado-cea/simulado-service/internal/application/auth"
	"github.com/simulado-cea/simulado-service/internal/application/payment"
	"github.com/simulado-cea/simulado-service/internal/domain"
)

// -------- Auth --------

// UserView is the user payload of login and /me responses.
type UserView struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Nome         string         `json:"nome"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

func NewUserView(u domain.AuthUser) UserView {
	return UserView{
		ID:           u.ID,
		Email:        u.Email,
		Nome:         u.Principal().DisplayName(),
		AppMetadata:  u.AppMetadata,
		UserMetadata: u.UserMetadata,
	}
}

// TokensView carries the access token. The refresh token only travels in its HttpOnly cookie.
type TokensView struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // "Bearer"
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

func NewTokensView(t auth.AuthTokens) TokensView {
	return TokensView{AccessToken: t.AccessToken, TokenType: t.TokenType, ExpiresIn: t.ExpiresIn}
}

type AuthData struct {
	User   UserView   `json:"user"`
	Tokens TokensView `json:"tokens"`
}

type RefreshData struct {
	Tokens TokensView `json:"tokens"`
}

type MeData struct {
	User    UserView     `json:"user"`
	Usuario *UsuarioView `json:"usuario,omitempty"`
}

// SuccessResponse is the bare acknowledgement used by cadastro and submeter.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// -------- Directory / admin --------

type UsuarioView struct {
	ID              string    `json:"id"`
	Nome            string    `json:"nome"`
	Email           string    `json:"email"`
	Whatsapp        string    `json:"whatsapp,omitempty"`
	Perfil          string    `json:"perfil,omitempty"`
	Papel           string    `json:"papel,omitempty"`
	Tipo            string    `json:"tipo,omitempty"`
	Status          string    `json:"status"`
	DataCadastro    time.Time `json:"data_cadastro"`
	DataAtualizacao time.Time `json:"data_atualizacao"`
}

func NewUsuarioView(r domain.DirectoryRecord) UsuarioView {
	return UsuarioView{
		ID:              r.ID,
		Nome:            r.Nome,
		Email:           r.Email,
		Whatsapp:        r.Whatsapp,
		Perfil:          r.Perfil,
		Papel:           r.Papel,
		Tipo:            r.Tipo,
		Status:          r.Status,
		DataCadastro:    r.DataCadastro,
		DataAtualizacao: r.DataAtualizacao,
	}
}

// AdminDashboard backs the admin page.
type AdminDashboard struct {
	AdminUser    domain.AdminUser      `json:"adminUser"`
	Usuarios     []UsuarioView         `json:"usuarios"`
	Estatisticas domain.DirectoryStats `json:"estatisticas"`
}

func NewAdminDashboard(d admin.Dashboard) AdminDashboard {
	users := make([]UsuarioView, 0, len(d.Usuarios))
	for _, u := range d.Usuarios {
		users = append(users, NewUsuarioView(u))
	}
	return AdminDashboard{AdminUser: d.AdminUser, Usuarios: users, Estatisticas: d.Estatisticas}
}

// -------- Payments --------

type PreferenceResponse struct {
	PreferenceID     string `json:"preference_id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point,omitempty"`
	PublicKey        string `json:"public_key,omitempty"`
}

func NewPreferenceResponse(r payment.PreferenceResult) PreferenceResponse {
	return PreferenceResponse{
		PreferenceID:     r.PreferenceID,
		InitPoint:        r.InitPoint,
		SandboxInitPoint: r.SandboxInitPoint,
		PublicKey:        r.PublicKey,
	}
}
