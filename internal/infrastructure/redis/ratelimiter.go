package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

// FixedWindowLimiter counts hits per key in Redis:
// INCR key; on the first hit PEXPIRE key window.
// Counters are shared by every instance pointing at the same Redis.
type FixedWindowLimiter struct {
	rdb    *goredis.Client
	prefix string
	now    func() time.Time
}

func NewFixedWindowLimiter(c *Client) *FixedWindowLimiter {
	l := &FixedWindowLimiter{prefix: "simulado:rl:", now: time.Now}
	if c != nil {
		l.rdb = c.rdb
	}
	return l
}

const incrScript = `
local c = redis.call("INCR", KEYS[1])
if c == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {c, ttl}
`

// Allow records one hit for key and reports whether it fits in limit per window.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (domain.RateDecision, error) {
	if limit <= 0 {
		return domain.RateDecision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if l.rdb == nil {
		return domain.RateDecision{Allowed: true, Limit: limit, Remaining: limit}, nil
	}

	res, err := l.rdb.Eval(ctx, incrScript, []string{l.prefix + key}, window.Milliseconds()).Result()
	if err != nil {
		return domain.RateDecision{}, domain.ErrRedisUnavailable(fmt.Errorf("ratelimit eval: %w", err))
	}
	arr, ok := res.([]any)
	if !ok || len(arr) != 2 {
		return domain.RateDecision{}, domain.ErrRedisUnavailable(fmt.Errorf("ratelimit eval: unexpected result %T", res))
	}
	count, ok1 := arr[0].(int64)
	ttlms, ok2 := arr[1].(int64)
	if !ok1 || !ok2 {
		return domain.RateDecision{}, domain.ErrRedisUnavailable(fmt.Errorf("ratelimit eval: unexpected element types"))
	}

	ttl := time.Duration(ttlms) * time.Millisecond
	if ttl <= 0 {
		ttl = window
	}

	d := domain.RateDecision{
		Allowed:   int(count) <= limit,
		Limit:     limit,
		Remaining: max(0, limit-int(count)),
		Count:     int(count),
		ResetAt:   l.now().Add(ttl),
	}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d, nil
}
