package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/simulado-cea/simulado-service/internal/domain"
	"github.com/simulado-cea/simulado-service/internal/logger"
)

type SeederHasher interface {
	Hash(password string) (string, error)
}

type SeederRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.AuthUser, error)
	Create(ctx context.Context, u domain.AuthUser) (domain.AuthUser, error)
}

type SeederDirectory interface {
	UpsertRole(ctx context.Context, rec domain.DirectoryRecord) error
}

// SeedAdmin makes sure an administrator account exists for email.
// An existing account keeps its password and gets papel=admin in the directory.
func SeedAdmin(ctx context.Context, repo SeederRepo, dir SeederDirectory, hasher SeederHasher, email, password string) {
	lg := logger.Component("seed")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return
	}

	u, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if !domain.Is(err, "user_not_found") {
			lg.Error().Err(err).Msg("lookup seed admin failed")
			return
		}

		hash, err := hasher.Hash(password)
		if err != nil {
			lg.Error().Err(err).Msg("hash seed admin password failed")
			return
		}
		u, err = repo.Create(ctx, domain.AuthUser{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			AppMetadata:  map[string]any{"role": domain.RoleAdmin},
			UserMetadata: map[string]any{"nome": "Administrador"},
		})
		if err != nil {
			lg.Error().Err(err).Msg("create seed admin failed")
			return
		}
	}

	if err := dir.UpsertRole(ctx, domain.DirectoryRecord{
		ID:    u.ID,
		Nome:  u.Principal().DisplayName(),
		Email: u.Email,
		Papel: domain.RoleAdmin,
	}); err != nil {
		lg.Error().Err(err).Msg("upsert seed admin directory row failed")
		return
	}

	lg.Info().Str("user_id", u.ID).Msg("admin account seeded")
}
