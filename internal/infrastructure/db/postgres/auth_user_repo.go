package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type authUserRow struct {
	ID           string
	Email        string
	PasswordHash string
	AppMetadata  []byte
	UserMetadata []byte
	CreatedAt    time.Time
}

func (r authUserRow) toDomain() (domain.AuthUser, error) {
	u := domain.AuthUser{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		AppMetadata:  map[string]any{},
		UserMetadata: map[string]any{},
		CreatedAt:    r.CreatedAt,
	}
	if len(r.AppMetadata) > 0 {
		if err := json.Unmarshal(r.AppMetadata, &u.AppMetadata); err != nil {
			return domain.AuthUser{}, domain.ErrInternal(err)
		}
	}
	if len(r.UserMetadata) > 0 {
		if err := json.Unmarshal(r.UserMetadata, &u.UserMetadata); err != nil {
			return domain.AuthUser{}, domain.ErrInternal(err)
		}
	}
	return u, nil
}

type AuthUserRepo struct {
	db *sql.DB
}

func NewAuthUserRepo(db *sql.DB) *AuthUserRepo {
	return &AuthUserRepo{db: db}
}

func (r *AuthUserRepo) scan(row *sql.Row) (domain.AuthUser, error) {
	var ur authUserRow
	err := row.Scan(&ur.ID, &ur.Email, &ur.PasswordHash, &ur.AppMetadata, &ur.UserMetadata, &ur.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AuthUser{}, domain.ErrUserNotFound()
		}
		return domain.AuthUser{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain()
}

func (r *AuthUserRepo) GetByEmail(ctx context.Context, email string) (domain.AuthUser, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.AuthUser{}, domain.ErrMissingField("email")
	}

	const q = `
SELECT id, email, password_hash, app_metadata, user_metadata, created_at
FROM auth_users
WHERE email = $1
LIMIT 1;
`
	return r.scan(r.db.QueryRowContext(ctx, q, email))
}

func (r *AuthUserRepo) GetByID(ctx context.Context, id string) (domain.AuthUser, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.AuthUser{}, domain.ErrMissingField("id")
	}

	const q = `
SELECT id, email, password_hash, app_metadata, user_metadata, created_at
FROM auth_users
WHERE id = $1
LIMIT 1;
`
	return r.scan(r.db.QueryRowContext(ctx, q, id))
}

func (r *AuthUserRepo) Create(ctx context.Context, u domain.AuthUser) (domain.AuthUser, error) {
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		return domain.AuthUser{}, domain.ErrMissingField("id")
	}
	if u.Email == "" {
		return domain.AuthUser{}, domain.ErrMissingField("email")
	}
	if u.PasswordHash == "" {
		return domain.AuthUser{}, domain.ErrMissingField("password_hash")
	}

	appMeta, err := marshalMeta(u.AppMetadata)
	if err != nil {
		return domain.AuthUser{}, domain.ErrInternal(err)
	}
	userMeta, err := marshalMeta(u.UserMetadata)
	if err != nil {
		return domain.AuthUser{}, domain.ErrInternal(err)
	}

	const q = `
INSERT INTO auth_users (id, email, password_hash, app_metadata, user_metadata)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, email, password_hash, app_metadata, user_metadata, created_at;
`
	var ur authUserRow
	err = r.db.QueryRowContext(ctx, q, u.ID, u.Email, u.PasswordHash, string(appMeta), string(userMeta)).
		Scan(&ur.ID, &ur.Email, &ur.PasswordHash, &ur.AppMetadata, &ur.UserMetadata, &ur.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.AuthUser{}, domain.ErrEmailAlreadyExists()
		}
		return domain.AuthUser{}, domain.ErrDBUnavailable(err)
	}
	return ur.toDomain()
}

// SetAppMetadataRole stores role in app_metadata, keeping other keys.
func (r *AuthUserRepo) SetAppMetadataRole(ctx context.Context, id, role string) error {
	const q = `
UPDATE auth_users
SET app_metadata = app_metadata || jsonb_build_object('role', $2::text)
WHERE id = $1;
`
	res, err := r.db.ExecContext(ctx, q, id, role)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (r *AuthUserRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrMissingField("id")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM auth_users WHERE id = $1;`, id)
	if err != nil {
		return domain.ErrDBUnavailable(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func marshalMeta(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
