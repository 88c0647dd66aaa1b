package auth

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
)

const (
	minPasswordLen = 6
	maxEmailLen    = 254
)

type RegisterInput struct {
	Nome     string
	Email    string
	Whatsapp string
	Senha    string
}

// Register creates the authentication record and its directory row.
// If the directory insert fails the authentication record is removed again.
func (s *Service) Register(ctx context.Context, in RegisterInput) (domain.AuthUser, error) {
	const action = "auth.register"

	in.Nome = strings.TrimSpace(in.Nome)
	in.Email = domain.NormalizeEmail(in.Email)
	in.Whatsapp = strings.TrimSpace(in.Whatsapp)

	audit := func(result string, err error, userID string) {
		fields := map[string]string{"email": in.Email, "result": result}
		if userID != "" {
			fields["user_id"] = userID
		}
		if err != nil {
			fields["error_code"] = domain.Code(err)
		}
		s.audit(action, fields)
	}

	if err := validateRegister(in); err != nil {
		audit("error", err, "")
		return domain.AuthUser{}, err
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		err := domain.ErrEmailAlreadyExists()
		audit("error", err, "")
		return domain.AuthUser{}, err
	} else if !domain.Is(err, "user_not_found") {
		audit("error", err, "")
		return domain.AuthUser{}, err
	}

	hash, err := s.hasher.Hash(in.Senha)
	if err != nil {
		err := domain.ErrHashFailed(err)
		audit("error", err, "")
		return domain.AuthUser{}, err
	}

	created, err := s.users.Create(ctx, domain.AuthUser{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		AppMetadata:  map[string]any{},
		UserMetadata: map[string]any{"nome": in.Nome, "whatsapp": in.Whatsapp},
	})
	if err != nil {
		audit("error", err, "")
		return domain.AuthUser{}, err
	}

	now := s.now().UTC()
	rec := domain.DirectoryRecord{
		ID:              created.ID,
		Nome:            in.Nome,
		Email:           in.Email,
		Whatsapp:        in.Whatsapp,
		Status:          string(domain.StatusAtivo),
		DataCadastro:    now,
		DataAtualizacao: now,
	}
	if err := s.dir.Insert(ctx, rec); err != nil {
		if delErr := s.users.Delete(ctx, created.ID); delErr != nil {
			logger.WithCtx(ctx).Error().Err(delErr).Str("user_id", created.ID).
				Msg("rollback of auth user after directory insert failure failed")
		}
		audit("error", err, created.ID)
		return domain.AuthUser{}, err
	}

	audit("success", nil, created.ID)
	return created, nil
}

func validateRegister(in RegisterInput) error {
	switch {
	case in.Nome == "":
		return domain.ErrMissingField("nome")
	case in.Email == "":
		return domain.ErrMissingField("email")
	case in.Whatsapp == "":
		return domain.ErrMissingField("whatsapp")
	case in.Senha == "":
		return domain.ErrMissingField("senha")
	}
	if len(in.Email) > maxEmailLen {
		return domain.ErrInvalidField("email", "too long")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil || !strings.Contains(in.Email, "@") {
		return domain.ErrInvalidField("email", "invalid format")
	}
	if len([]rune(in.Senha)) < minPasswordLen {
		return domain.ErrWeakPassword("A senha deve ter pelo menos 6 caracteres.")
	}
	return nil
}
