package redis

import (
	"context"
	"fmt"
	"time"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/fastygo/stockdesk/domain"
	"github.com/fastygo/stockdesk/internal/config"
)

const pingTimeout = 5 * time.Second

// NewClient connects to the shared state backend and pings it once. A bad
// URL is INVALID, an unreachable server is TRANSPORT.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goRedis.Client, error) {
	opts, err := goRedis.ParseURL(cfg.URL)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "parse REDIS_URL", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	client := goRedis.NewClient(opts)
	if _, err := HealthCheck(client)(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// HealthCheck returns a check for the connectivity monitor. The detail
// reports the address and pool usage.
func HealthCheck(client *goRedis.Client) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		addr := client.Options().Addr
		if err := client.Ping(pingCtx).Err(); err != nil {
			return "", domain.WrapError(domain.ErrCodeTransport, "redis "+addr+" unreachable", err)
		}
		stats := client.PoolStats()
		return fmt.Sprintf("%s db %d, %d/%d conns idle", addr, client.Options().DB, stats.IdleConns, stats.TotalConns), nil
	}
}
