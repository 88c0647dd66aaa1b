package memory

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"strings"
	"sync"
	"time"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

type sessionEntry struct {
	userID    string
	expiresAt time.Time
}

// SessionStore is the single-instance refresh session backend used when
// REDIS_ADDR is not configured.
type SessionStore struct {
	mu sync.RWMutex
	// refresh token -> entry
	tokens map[string]sessionEntry
	// user id -> set of refresh tokens
	byUser map[string]map[string]struct{}

	now func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		tokens: make(map[string]sessionEntry),
		byUser: make(map[string]map[string]struct{}),
		now:    time.Now,
	}
}

func (s *SessionStore) CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", domain.ErrMissingField("user_id")
	}
	tok, err := newOpaqueToken(32)
	if err != nil {
		return "", domain.ErrRandomFailed(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[tok] = sessionEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	if s.byUser[userID] == nil {
		s.byUser[userID] = make(map[string]struct{})
	}
	s.byUser[userID][tok] = struct{}{}
	return tok, nil
}

func (s *SessionStore) GetUserIDByRefreshToken(ctx context.Context, token string) (string, error) {
	s.mu.RLock()
	entry, ok := s.tokens[token]
	s.mu.RUnlock()

	if !ok {
		return "", domain.ErrRefreshTokenInvalid()
	}
	if s.now().After(entry.expiresAt) {
		_ = s.RevokeRefreshToken(ctx, token)
		return "", domain.ErrRefreshTokenInvalid()
	}
	return entry.userID, nil
}

func (s *SessionStore) RotateRefreshToken(ctx context.Context, oldToken string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	entry, ok := s.tokens[oldToken]
	if ok {
		s.removeLocked(oldToken, entry.userID)
	}
	s.mu.Unlock()

	if !ok || s.now().After(entry.expiresAt) {
		return "", domain.ErrRefreshTokenInvalid()
	}
	return s.CreateRefreshToken(ctx, entry.userID, ttl)
}

func (s *SessionStore) RevokeRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok {
		return nil
	}
	s.removeLocked(token, entry.userID)
	return nil
}

func (s *SessionStore) RevokeAll(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for tok := range s.byUser[userID] {
		delete(s.tokens, tok)
	}
	delete(s.byUser, userID)
	return nil
}

func (s *SessionStore) removeLocked(token, userID string) {
	delete(s.tokens, token)
	if set := s.byUser[userID]; set != nil {
		delete(set, token)
		if len(set) == 0 {
			delete(s.byUser, userID)
		}
	}
}

func newOpaqueToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
