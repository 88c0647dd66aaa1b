package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type JWTSigner struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTSigner(secret string, issuer string) *JWTSigner {
	return &JWTSigner{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

// accessClaims carries the principal so request authentication needs no lookup.
// Revoking a user's sessions does not recall tokens already issued: they stay
// valid, metadata roles included, until exp. Keep the access TTL short.
type accessClaims struct {
	UserID       string         `json:"uid"`
	Email        string         `json:"email"`
	AppMetadata  map[string]any `json:"app_metadata,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) SignAccessToken(p domain.Principal, ttl time.Duration) (string, error) {
	if strings.TrimSpace(p.ID) == "" {
		return "", domain.ErrMissingField("uid")
	}
	now := s.now()
	claims := accessClaims{
		UserID:       p.ID,
		Email:        p.Email,
		AppMetadata:  p.AppMetadata,
		UserMetadata: p.UserMetadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTSigner) VerifyAccessToken(token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Principal{}, domain.ErrTokenMissing()
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Principal{}, domain.ErrTokenExpired()
		}
		return domain.Principal{}, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return domain.Principal{}, domain.ErrTokenInvalid()
	}

	return domain.Principal{
		ID:           claims.UserID,
		Email:        claims.Email,
		AppMetadata:  claims.AppMetadata,
		UserMetadata: claims.UserMetadata,
	}, nil
}
