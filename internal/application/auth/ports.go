package auth

import (
	"context"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

/*
AuthUserRepo
------------
Persistence port for authentication records.
GetBy* return domain.ErrUserNotFound when nothing matches; Create returns
domain.ErrEmailAlreadyExists on a duplicate email.
*/
type AuthUserRepo interface {
	GetByEmail(ctx context.Context, email string) (domain.AuthUser, error)
	GetByID(ctx context.Context, id string) (domain.AuthUser, error)
	Create(ctx context.Context, u domain.AuthUser) (domain.AuthUser, error)
	Delete(ctx context.Context, id string) error
}

// Directory is the slice of the user directory the auth flows touch.
type Directory interface {
	Insert(ctx context.Context, rec domain.DirectoryRecord) error
	FindByID(ctx context.Context, id string) (domain.DirectoryRecord, bool, error)
}

/*
PasswordHasher
--------------
Abstracts bcrypt.
*/
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error // nil if match
}

/*
TokenSigner
-----------
Issues and verifies access tokens. The token carries the principal's
metadata so request authentication needs no storage round-trip.
*/
type TokenSigner interface {
	SignAccessToken(p domain.Principal, ttl time.Duration) (string, error)
	VerifyAccessToken(token string) (domain.Principal, error)
}

/*
SessionStore
------------
Refresh token / session management.
Backed by Redis or memory.
*/
type SessionStore interface {
	CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (token string, err error)
	RotateRefreshToken(ctx context.Context, oldToken string, ttl time.Duration) (newToken string, err error)
	RevokeRefreshToken(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID string) error
	GetUserIDByRefreshToken(ctx context.Context, token string) (string, error)
}
