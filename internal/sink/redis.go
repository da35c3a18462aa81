package sink

import (
	"context"
	"time"

	"codeberg.org/mutker/camvitals/internal/errors"
	"github.com/go-redis/redis/v8"
)

const (
	DefaultRedisKey = "camvitals"
	DefaultRedisTTL = 10 * time.Second
)

// Redis keeps only the latest envelope of each kind under <key>:<kind>,
// expiring after ttl so a stalled daemon does not leave stale vitals
// behind. It is a polled "latest snapshot" accessor, not a history.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func ConnectRedis(ctx context.Context, addr, key string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.New().Wrap(errors.ErrSinkInit, err)
	}

	if key == "" {
		key = DefaultRedisKey
	}
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &Redis{client: client, key: key, ttl: ttl}, nil
}

func (r *Redis) Name() string {
	return "redis"
}

func (r *Redis) Key(kind string) string {
	return r.key + ":" + kind
}

func (r *Redis) Publish(ctx context.Context, kind string, payload []byte) error {
	if err := r.client.Set(ctx, r.Key(kind), payload, r.ttl).Err(); err != nil {
		return errors.New().Wrap(errors.ErrPublish, err)
	}
	return nil
}

// Latest returns the last envelope of kind, or nil when none is stored.
func (r *Redis) Latest(ctx context.Context, kind string) ([]byte, error) {
	payload, err := r.client.Get(ctx, r.Key(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrOperationFailed, err)
	}
	return payload, nil
}

func (r *Redis) Close() error {
	if err := r.client.Close(); err != nil {
		return errors.New().Wrap(errors.ErrSinkClose, err)
	}
	return nil
}
