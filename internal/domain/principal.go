package domain

import "strings"

// Principal is the authenticated identity attached to a request.
// AppMetadata is server-controlled; UserMetadata is editable by the user.
type Principal struct {
	ID           string
	Email        string
	AppMetadata  map[string]any
	UserMetadata map[string]any
}

// DisplayName returns user_metadata.nome, falling back to the email.
func (p Principal) DisplayName() string {
	if s, ok := p.UserMetadata["nome"].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return p.Email
}

// AdminUser is the identity attached to the context once the route guard admits a request.
type AdminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Nome  string `json:"nome"`
}

func AdminUserFrom(p Principal) AdminUser {
	return AdminUser{ID: p.ID, Email: p.Email, Nome: p.DisplayName()}
}

// NormalizeEmail trims and lower-cases an email for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
