package redis

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

const (
	sessionKeyPrefix    = "simulado:rt:"
	generationKeyPrefix = "simulado:rtgen:"

	refreshTokenBytes = 32
	defaultRefreshTTL = 7 * 24 * time.Hour
)

var errNotConfigured = errors.New("redis session store not configured")

// SessionStore keeps opaque refresh tokens in Redis.
//
//	simulado:rt:<token>   "<uid>:<generation>", expires with the session
//	simulado:rtgen:<uid>  current generation for the user
//
// Suspending or deleting a user bumps the generation, which orphans every
// token issued before it without scanning for them.
type SessionStore struct {
	rdb *goredis.Client
}

func NewSessionStore(c *Client) *SessionStore {
	s := &SessionStore{}
	if c != nil {
		s.rdb = c.rdb
	}
	return s
}

func sessionKey(token string) string { return sessionKeyPrefix + token }

func generationKey(uid string) string { return generationKeyPrefix + uid }

func (s *SessionStore) ready() error {
	if s.rdb == nil {
		return domain.ErrRedisUnavailable(errNotConfigured)
	}
	return nil
}

func (s *SessionStore) CreateRefreshToken(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", domain.ErrMissingField("user_id")
	}
	if err := s.ready(); err != nil {
		return "", err
	}

	gen, err := s.generation(ctx, userID)
	if err != nil {
		return "", err
	}
	token, err := opaqueToken()
	if err != nil {
		return "", domain.ErrRandomFailed(err)
	}
	if err := s.rdb.Set(ctx, sessionKey(token), formatUIDGen(userID, gen), ttl).Err(); err != nil {
		return "", domain.ErrRedisUnavailable(err)
	}
	return token, nil
}

// rotateScript moves the session value from KEYS[1] to KEYS[2] in one step
// so a token can be rotated at most once. Returns nil when KEYS[1] is gone.
var rotateScript = goredis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
  return false
end
redis.call("DEL", KEYS[1])
redis.call("SET", KEYS[2], v, "PX", ARGV[1])
return v
`)

func (s *SessionStore) RotateRefreshToken(ctx context.Context, oldToken string, ttl time.Duration) (string, error) {
	oldToken = strings.TrimSpace(oldToken)
	if oldToken == "" {
		return "", domain.ErrRefreshTokenInvalid()
	}
	if err := s.ready(); err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = defaultRefreshTTL
	}

	next, err := opaqueToken()
	if err != nil {
		return "", domain.ErrRandomFailed(err)
	}

	val, err := rotateScript.Run(ctx, s.rdb, []string{sessionKey(oldToken), sessionKey(next)}, ttl.Milliseconds()).Text()
	switch {
	case errors.Is(err, goredis.Nil):
		return "", domain.ErrRefreshTokenInvalid()
	case err != nil:
		return "", domain.ErrRedisUnavailable(err)
	}

	if _, err := s.validate(ctx, val); err != nil {
		_ = s.rdb.Del(ctx, sessionKey(next)).Err()
		return "", err
	}
	return next, nil
}

func (s *SessionStore) GetUserIDByRefreshToken(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrRefreshTokenInvalid()
	}
	if err := s.ready(); err != nil {
		return "", err
	}

	val, err := s.rdb.Get(ctx, sessionKey(token)).Result()
	switch {
	case errors.Is(err, goredis.Nil):
		return "", domain.ErrRefreshTokenInvalid()
	case err != nil:
		return "", domain.ErrRedisUnavailable(err)
	}
	return s.validate(ctx, val)
}

// RevokeRefreshToken is a no-op for empty or unknown tokens.
func (s *SessionStore) RevokeRefreshToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

func (s *SessionStore) RevokeAll(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrMissingField("user_id")
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.rdb.Incr(ctx, generationKey(userID)).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

// validate parses a stored session value and rejects stale generations.
func (s *SessionStore) validate(ctx context.Context, val string) (string, error) {
	uid, gen, err := parseUIDGen(val)
	if err != nil {
		return "", domain.ErrRefreshTokenInvalid()
	}
	current, err := s.generation(ctx, uid)
	if err != nil {
		return "", err
	}
	if gen != current {
		return "", domain.ErrRefreshTokenInvalid()
	}
	return uid, nil
}

// generation reads the user's generation; a missing or garbled key counts as 0.
func (s *SessionStore) generation(ctx context.Context, uid string) (int64, error) {
	n, err := s.rdb.Get(ctx, generationKey(uid)).Int64()
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, goredis.Nil):
		return 0, nil
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return 0, nil
	}
	return 0, domain.ErrRedisUnavailable(err)
}

func formatUIDGen(uid string, gen int64) string {
	return uid + ":" + strconv.FormatInt(gen, 10)
}

// user ids are uuids, so the last ':' separates the generation
func parseUIDGen(v string) (uid string, gen int64, err error) {
	i := strings.LastIndexByte(v, ':')
	if i <= 0 {
		return "", 0, fmt.Errorf("bad session value %q", v)
	}
	uid = strings.TrimSpace(v[:i])
	if uid == "" {
		return "", 0, errors.New("empty uid")
	}
	gen, err = strconv.ParseInt(strings.TrimSpace(v[i+1:]), 10, 64)
	if err != nil {
		return "", 0, err
	}
	return uid, gen, nil
}

func opaqueToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
