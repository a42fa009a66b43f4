package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/scamguard/support-service/internal/config"
)

// sequenceTTL keeps daily ticket counters around long enough to survive the
// day boundary in every timezone before expiring.
const sequenceTTL = 48 * time.Hour

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration. Redis being
// unreachable degrades ticket numbering to the random fallback, so only a
// warning is logged.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// NextTicketSequence returns the next value of the monotonic per-day ticket
// counter for the given YYYYMMDD date key.
func (r *Redis) NextTicketSequence(ctx context.Context, dateKey string) (int64, error) {
	if r == nil || r.Client == nil {
		return 0, errors.New("redis client not configured")
	}
	key := fmt.Sprintf("ticket:seq:%s", dateKey)
	seq, err := r.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if seq == 1 {
		// first ticket of the day sets the expiry
		_ = r.Client.Expire(ctx, key, sequenceTTL).Err()
	}
	return seq, nil
}
