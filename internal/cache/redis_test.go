package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	type stats struct {
		Total int `json:"total"`
	}

	require.NoError(t, c.Set(ctx, "training:stats:a", stats{Total: 3}, time.Minute))

	var got stats
	require.NoError(t, c.Get(ctx, "training:stats:a", &got))
	assert.Equal(t, 3, got.Total)
}

func TestCacheGetMiss(t *testing.T) {
	c := newTestCache(t)

	var got map[string]int
	err := c.Get(context.Background(), "absent", &got)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestCacheDelete(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	var got int
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
}
