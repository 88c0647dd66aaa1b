package admin

import (
	"context"
	"sort"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type ReportUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type ReportConfig struct {
	EmailsConfigurados int      `json:"emailsConfigurados"`
	EmailsAdmin        []string `json:"emailsAdmin,omitempty"`
	HasAdminEmails     bool     `json:"hasAdminEmails"`
}

// Report is the diagnostic payload of the admin-check endpoint.
type Report struct {
	Authenticated bool          `json:"authenticated"`
	IsAdmin       bool          `json:"isAdmin"`
	User          *ReportUser   `json:"user,omitempty"`
	AdminConfig   *ReportConfig `json:"adminConfig,omitempty"`
	Message       string        `json:"message"`
}

// Report runs the checker for an optional principal and describes the outcome.
// The allow-list entries are only disclosed to administrators.
func (c *Checker) Report(ctx context.Context, p *domain.Principal) Report {
	if p == nil {
		return Report{Message: "Usuário não autenticado"}
	}

	d := c.Check(ctx, *p)
	cfg := &ReportConfig{
		EmailsConfigurados: c.allow.Len(),
		HasAdminEmails:     !c.allow.Empty(),
	}
	if d.Granted {
		if c.allow.Empty() {
			cfg.EmailsAdmin = []string{"Nenhum email configurado"}
		} else {
			cfg.EmailsAdmin = c.allow.Emails()
			sort.Strings(cfg.EmailsAdmin)
		}
	}

	msg := "Usuário não tem permissões de admin"
	if d.Granted {
		msg = "Usuário tem permissões de admin"
	}

	return Report{
		Authenticated: true,
		IsAdmin:       d.Granted,
		User:          &ReportUser{ID: p.ID, Email: p.Email},
		AdminConfig:   cfg,
		Message:       msg,
	}
}
