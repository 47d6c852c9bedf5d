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

func newTestCache(t *testing.T, ttl time.Duration) (*SuggestionCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSuggestionCache(rdb, ttl, "test:"), mr
}

func TestSuggestionCacheGetSet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)

	list, err := c.Get(ctx, "Write report")
	require.NoError(t, err)
	assert.Nil(t, list)

	require.NoError(t, c.Set(ctx, "Write report", []string{"a", "b"}))
	list, err = c.Get(ctx, "  write   REPORT ")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, list)

	assert.True(t, mr.Exists("test:suggest:write report"))

	mr.FastForward(2 * time.Minute)
	list, err = c.Get(ctx, "Write report")
	require.NoError(t, err)
	assert.Nil(t, list, "entry expired")
}

func TestSuggestionCacheInvalidateAll(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set("test:tasks", "[]"))

	require.NoError(t, c.Set(ctx, "one", []string{"a"}))
	require.NoError(t, c.Set(ctx, "two", []string{"b"}))
	require.NoError(t, c.InvalidateAll(ctx))

	list, err := c.Get(ctx, "one")
	require.NoError(t, err)
	assert.Nil(t, list)
	assert.True(t, mr.Exists("test:tasks"), "other keys are left alone")
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "plan the meeting", NormalizeTitle("  Plan\tthe  MEETING "))
}
