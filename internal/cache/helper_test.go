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

type cachedSummary struct {
	Total int    `json:"total"`
	Label string `json:"label"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func TestGetSetJSONRoundTrip(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	var missed cachedSummary
	found, err := GetJSON(ctx, "summary:1", &missed)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "summary:1", cachedSummary{Total: 7, Label: "week"}, time.Minute))

	var got cachedSummary
	found, err = GetJSON(ctx, "summary:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7, got.Total)
	assert.Equal(t, "week", got.Label)

	// TTL was applied
	assert.Greater(t, mr.TTL("summary:1"), time.Duration(0))
}

func TestAsidePopulatesOnMiss(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedSummary) func() error {
		return func() error {
			fetches++
			dest.Total = 42
			return nil
		}
	}

	var first cachedSummary
	require.NoError(t, Aside(ctx, AnalyticsKey(9), &first, AnalyticsTTL, fetch(&first)))
	assert.Equal(t, 42, first.Total)
	assert.Equal(t, 1, fetches)

	// Second call is served from Redis without calling fetch again.
	var second cachedSummary
	require.NoError(t, Aside(ctx, AnalyticsKey(9), &second, AnalyticsTTL, fetch(&second)))
	assert.Equal(t, 42, second.Total)
	assert.Equal(t, 1, fetches)
}

func TestAsidePropagatesFetchError(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	var dest cachedSummary
	err := Aside(ctx, "summary:err", &dest, time.Minute, func() error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	// A failed fetch must not leave a cached value behind.
	found, err := GetJSON(ctx, "summary:err", &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidateAnalyticsDropsBothKeys(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, AnalyticsKey(3), cachedSummary{Total: 1}, time.Minute))
	require.NoError(t, SetJSON(ctx, StreakKey(3), cachedSummary{Total: 2}, time.Minute))
	require.NoError(t, SetJSON(ctx, AnalyticsKey(4), cachedSummary{Total: 3}, time.Minute))

	InvalidateAnalytics(ctx, 3)

	assert.False(t, mr.Exists(AnalyticsKey(3)))
	assert.False(t, mr.Exists(StreakKey(3)))
	assert.True(t, mr.Exists(AnalyticsKey(4)), "other users' keys are untouched")
}

func TestNilClientDegradesGracefully(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	var dest cachedSummary
	found, err := GetJSON(ctx, "anything", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, "anything", cachedSummary{}, time.Minute))
	Invalidate(ctx, "anything")

	// Aside still works, every call hits fetch.
	fetches := 0
	require.NoError(t, Aside(ctx, "anything", &dest, time.Minute, func() error {
		fetches++
		dest.Total = 5
		return nil
	}))
	assert.Equal(t, 5, dest.Total)
	assert.Equal(t, 1, fetches)
}
