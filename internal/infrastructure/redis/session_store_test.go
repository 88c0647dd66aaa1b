package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

const testUID = "2f1d7c1e-0d7e-4a8e-9b6a-5f0f4f7b9a11"

func TestSessionStore_CreateAndLookup(t *testing.T) {
	c, mr := newTestClient(t)
	s := NewSessionStore(c)
	ctx := context.Background()

	tok, err := s.CreateRefreshToken(ctx, testUID, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.True(t, mr.Exists("simulado:rt:"+tok))

	uid, err := s.GetUserIDByRefreshToken(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, testUID, uid)

	_, err = s.GetUserIDByRefreshToken(ctx, "nope")
	assert.True(t, domain.Is(err, "refresh_token_invalid"))
}

func TestSessionStore_Expiry(t *testing.T) {
	c, mr := newTestClient(t)
	s := NewSessionStore(c)
	ctx := context.Background()

	tok, err := s.CreateRefreshToken(ctx, testUID, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = s.GetUserIDByRefreshToken(ctx, tok)
	assert.True(t, domain.Is(err, "refresh_token_invalid"))
}

func TestSessionStore_RotateInvalidatesOld(t *testing.T) {
	c, _ := newTestClient(t)
	s := NewSessionStore(c)
	ctx := context.Background()

	old, err := s.CreateRefreshToken(ctx, testUID, time.Hour)
	require.NoError(t, err)

	next, err := s.RotateRefreshToken(ctx, old, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, old, next)

	_, err = s.GetUserIDByRefreshToken(ctx, old)
	assert.True(t, domain.Is(err, "refresh_token_invalid"))

	uid, err := s.GetUserIDByRefreshToken(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, testUID, uid)

	_, err = s.RotateRefreshToken(ctx, old, time.Hour)
	assert.True(t, domain.Is(err, "refresh_token_invalid"))
}

func TestSessionStore_RevokeAll(t *testing.T) {
	c, _ := newTestClient(t)
	s := NewSessionStore(c)
	ctx := context.Background()

	a, err := s.CreateRefreshToken(ctx, testUID, time.Hour)
	require.NoError(t, err)
	b, err := s.CreateRefreshToken(ctx, testUID, time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.RevokeAll(ctx, testUID))

	for _, tok := range []string{a, b} {
		_, err := s.GetUserIDByRefreshToken(ctx, tok)
		assert.True(t, domain.Is(err, "refresh_token_invalid"))
		_, err = s.RotateRefreshToken(ctx, tok, time.Hour)
		assert.True(t, domain.Is(err, "refresh_token_invalid"))
	}

	fresh, err := s.CreateRefreshToken(ctx, testUID, time.Hour)
	require.NoError(t, err)
	uid, err := s.GetUserIDByRefreshToken(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, testUID, uid)
}

func TestSessionStore_RevokeRefreshToken_Idempotent(t *testing.T) {
	c, _ := newTestClient(t)
	s := NewSessionStore(c)
	ctx := context.Background()

	tok, err := s.CreateRefreshToken(ctx, testUID, time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.RevokeRefreshToken(ctx, tok))
	require.NoError(t, s.RevokeRefreshToken(ctx, tok))
	require.NoError(t, s.RevokeRefreshToken(ctx, ""))

	_, err = s.GetUserIDByRefreshToken(ctx, tok)
	assert.True(t, domain.Is(err, "refresh_token_invalid"))
}

func TestSessionStore_Unconfigured(t *testing.T) {
	s := NewSessionStore(nil)
	ctx := context.Background()

	_, err := s.CreateRefreshToken(ctx, testUID, time.Hour)
	assert.True(t, domain.Is(err, "redis_unavailable"))

	_, err = s.CreateRefreshToken(ctx, " ", time.Hour)
	assert.True(t, domain.Is(err, "missing_field"))

	assert.True(t, domain.Is(s.RevokeAll(ctx, testUID), "redis_unavailable"))
}

func TestSessionStore_RedisDown(t *testing.T) {
	c, mr := newTestClient(t)
	s := NewSessionStore(c)
	mr.Close()

	_, err := s.CreateRefreshToken(context.Background(), testUID, time.Hour)
	assert.True(t, domain.Is(err, "redis_unavailable"))
}

func TestParseUIDGen(t *testing.T) {
	uid, gen, err := parseUIDGen(testUID + ":3")
	require.NoError(t, err)
	assert.Equal(t, testUID, uid)
	assert.Equal(t, int64(3), gen)

	for _, bad := range []string{"", "nocolon", ":1", "u:x"} {
		_, _, err := parseUIDGen(bad)
		assert.Error(t, err, bad)
	}
}
