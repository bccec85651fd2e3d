package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisMessageDeduplicator_FirstDelivery(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	dedupe := NewRedisMessageDeduplicator(client, "", time.Minute)
	ctx := context.Background()

	first, err := dedupe.FirstDelivery(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := dedupe.FirstDelivery(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, again)

	other, err := dedupe.FirstDelivery(ctx, "msg-2")
	require.NoError(t, err)
	assert.True(t, other)

	assert.True(t, mr.Exists("orchestrator:dedupe:msg-1"))

	// the key expires with the TTL
	mr.FastForward(2 * time.Minute)
	expired, err := dedupe.FirstDelivery(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestRedisMessageDeduplicator_FailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	first, err := NewRedisMessageDeduplicator(client, "test", time.Minute).FirstDelivery(context.Background(), "msg-1")

	assert.Error(t, err)
	assert.True(t, first)
}

func TestRedisMessageDeduplicator_BlankIDs(t *testing.T) {
	dedupe := NewRedisMessageDeduplicator(nil, "", time.Minute)

	first, err := dedupe.FirstDelivery(context.Background(), " ")
	require.NoError(t, err)
	assert.True(t, first)

	first, err = NoopMessageDeduplicator{}.FirstDelivery(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.True(t, first)
}
