package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGetRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.Set(ctx, "k1", payload{Name: "optics", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "k1", &got))
	assert.Equal(t, "optics", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestMemoryCache_MissAndExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	var dest string
	assert.ErrorIs(t, c.Get(ctx, "absent", &dest), ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "short", "v", time.Nanosecond))
	time.Sleep(time.Millisecond)
	assert.ErrorIs(t, c.Get(ctx, "short", &dest), ErrCacheMiss)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "topic_stats:l1:Math", "a", 0))
	require.NoError(t, c.Set(ctx, "topic_stats:l1:Physics", "b", 0))
	require.NoError(t, c.Set(ctx, "other:l1", "c", 0))

	require.NoError(t, c.DeletePattern(ctx, "topic_stats:l1:*"))

	var dest string
	assert.ErrorIs(t, c.Get(ctx, "topic_stats:l1:Math", &dest), ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "other:l1", &dest))
}
