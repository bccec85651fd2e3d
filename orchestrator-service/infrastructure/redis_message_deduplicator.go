package infrastructure

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const dedupeCheckTimeout = 2 * time.Second

// RedisMessageDeduplicator remembers broker message ids with SETNX and a TTL
type RedisMessageDeduplicator struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisMessageDeduplicator creates a new RedisMessageDeduplicator
func NewRedisMessageDeduplicator(client *redis.Client, prefix string, ttl time.Duration) *RedisMessageDeduplicator {
	if prefix == "" {
		prefix = "orchestrator:dedupe"
	}
	return &RedisMessageDeduplicator{client: client, prefix: prefix, ttl: ttl}
}

// FirstDelivery reports whether the message id was not seen before. When
// Redis is unavailable the message is treated as new and the error returned.
func (d *RedisMessageDeduplicator) FirstDelivery(ctx context.Context, messageID string) (bool, error) {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" || d.ttl <= 0 {
		return true, nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, dedupeCheckTimeout)
	defer cancel()

	ok, err := d.client.SetNX(timeoutCtx, d.prefix+":"+messageID, "1", d.ttl).Result()
	if err != nil {
		return true, errors.Wrap(err, "dedupe check failed")
	}
	return ok, nil
}

// NoopMessageDeduplicator treats every message as new
type NoopMessageDeduplicator struct{}

func (NoopMessageDeduplicator) FirstDelivery(context.Context, string) (bool, error) {
	return true, nil
}
