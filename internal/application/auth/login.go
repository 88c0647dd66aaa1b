package auth

import (
	"context"
	"strings"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

// Login authenticates a user and issues tokens.
// Unknown emails and wrong passwords yield the same error.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = domain.NormalizeEmail(email)

	if email == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.Is(err, "user_not_found") {
			return LoginResult{}, domain.ErrInvalidCredentials()
		}
		return LoginResult{}, err
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return LoginResult{}, domain.ErrInvalidCredentials()
	}

	if err := s.ensureActive(ctx, u.ID); err != nil {
		return LoginResult{}, err
	}

	toks, err := s.issueTokens(ctx, u)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: u, Tokens: toks}, nil
}

// Refresh rotates a refresh token and issues a new access token.
// The old refresh token is invalid once used successfully.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (AuthTokens, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	userID, err := s.sessions.GetUserIDByRefreshToken(ctx, refreshToken)
	if err != nil {
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	if err := s.ensureActive(ctx, u.ID); err != nil {
		return AuthTokens{}, err
	}

	newRefresh, err := s.sessions.RotateRefreshToken(ctx, refreshToken, s.refreshTTL)
	if err != nil {
		return AuthTokens{}, domain.ErrRefreshTokenInvalid()
	}

	access, err := s.signer.SignAccessToken(u.Principal(), s.accessTTL)
	if err != nil {
		return AuthTokens{}, domain.ErrTokenSignFailed(err)
	}

	return AuthTokens{
		AccessToken:  access,
		RefreshToken: newRefresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Logout revokes the current refresh token. An empty token is a no-op.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.RevokeRefreshToken(ctx, refreshToken)
}

type MeResult struct {
	User   domain.AuthUser
	Record *domain.DirectoryRecord
}

func (s *Service) Me(ctx context.Context, userID string) (MeResult, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return MeResult{}, err
	}
	rec, found, err := s.dir.FindByID(ctx, userID)
	if err != nil {
		return MeResult{}, err
	}
	out := MeResult{User: u}
	if found {
		out.Record = &rec
	}
	return out, nil
}
