package auth

import (
	"context"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type Service struct {
	users    AuthUserRepo
	dir      Directory
	hasher   PasswordHasher
	signer   TokenSigner
	sessions SessionStore

	accessTTL  time.Duration
	refreshTTL time.Duration
	audit      func(action string, fields map[string]string)
	now        func() time.Time
}

type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewService(
	users AuthUserRepo,
	dir Directory,
	hasher PasswordHasher,
	signer TokenSigner,
	sessions SessionStore,
	cfg Config,
) *Service {
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Service{
		users:    users,
		dir:      dir,
		hasher:   hasher,
		signer:   signer,
		sessions: sessions,
		audit:    func(string, map[string]string) {},
		now:      time.Now,

		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *Service) WithAudit(fn func(action string, fields map[string]string)) *Service {
	if fn != nil {
		s.audit = fn
	}
	return s
}

// AuthTokens is the common token output for handlers/DTO mapping.
type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64  // seconds
	TokenType    string // "Bearer"
}

type LoginResult struct {
	User   domain.AuthUser
	Tokens AuthTokens
}

// issueTokens issues an access token + refresh token for a user.
func (s *Service) issueTokens(ctx context.Context, u domain.AuthUser) (AuthTokens, error) {
	access, err := s.signer.SignAccessToken(u.Principal(), s.accessTTL)
	if err != nil {
		return AuthTokens{}, domain.ErrTokenSignFailed(err)
	}

	refresh, err := s.sessions.CreateRefreshToken(ctx, u.ID, s.refreshTTL)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// ensureActive rejects users whose directory record was suspended or inactivated.
// Users without a directory record are allowed (seeded operators).
func (s *Service) ensureActive(ctx context.Context, userID string) error {
	rec, found, err := s.dir.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	if st := domain.UserStatus(rec.Status); st.RevokesSessions() {
		return domain.ErrAccountInactive(rec.Status)
	}
	return nil
}
