package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisKV(client), mr
}

func TestRedisKV_SetGet(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "session:abc", "user-1", time.Minute))

	got, err := kv.Get(ctx, "session:abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", got)
}

func TestRedisKV_GetMiss(t *testing.T) {
	kv, _ := newTestKV(t)

	_, err := kv.Get(context.Background(), "session:nope")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_Del(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "session:abc", "user-1", time.Minute))
	require.NoError(t, kv.Del(ctx, "session:abc"))

	_, err := kv.Get(ctx, "session:abc")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_TTLExpiry(t *testing.T) {
	kv, mr := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "session:abc", "user-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := kv.Get(ctx, "session:abc")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_ScanKeys(t *testing.T) {
	kv, _ := newTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "session:a", "1", 0))
	require.NoError(t, kv.Set(ctx, "session:b", "2", 0))
	require.NoError(t, kv.Set(ctx, "other:c", "3", 0))

	keys, err := kv.ScanKeys(ctx, "session:*")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
