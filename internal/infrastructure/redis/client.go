package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/simulado-cea/simulado-service/internal/domain"
)

const (
	clientName  = "simulado-service"
	pingTimeout = 2 * time.Second
)

// Client owns the shared connection pool used by the session store and
// the rate limiter.
type Client struct {
	rdb *goredis.Client
}

func New(addr, password string, db int) *Client {
	return &Client{
		rdb: goredis.NewClient(&goredis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			ClientName:   clientName,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		}),
	}
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
