package dto

import "strings"

// -------- Registration / login --------

type CadastroRequest struct {
	Nome     string `json:"nome" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Whatsapp string `json:"whatsapp" validate:"required,max=32"`
	Senha    string `json:"senha" validate:"required"`
}

// Validate trims the text fields before checking them. Password strength is
// enforced by the registration service.
func (r *CadastroRequest) Validate() error {
	r.Nome = strings.TrimSpace(r.Nome)
	r.Email = strings.TrimSpace(r.Email)
	r.Whatsapp = strings.TrimSpace(r.Whatsapp)
	return validateStruct(r)
}

type LoginRequest struct {
	Email string `json:"email" validate:"required"`
	Senha string `json:"senha" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateStruct(r)
}

// If the refresh token is in the HttpOnly cookie this body can be empty.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}
