package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sangkips/notas-backoffice/pkg/logger"
)

type payload struct {
	Total string `json:"total"`
}

func newTestCache(t *testing.T) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewReportCache(client, time.Minute, logger.Discard()), mr
}

func TestFetchJSONCachesUntilInvalidated(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var calls int32
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return payload{Total: "10.00"}, nil
	}

	key, err := c.BuildKey(ctx, "invoices", "summary", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "reports:invoices:summary:2024-01-01:v1", key)

	var got payload
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	assert.Equal(t, "10.00", got.Total)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists(key))

	c.Invalidate(ctx)
	key2, err := c.BuildKey(ctx, "invoices", "summary", "2024-01-01")
	require.NoError(t, err)
	assert.NotEqual(t, key, key2)

	require.NoError(t, c.FetchJSON(ctx, key2, &got, loader))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestFetchJSONAppliesTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var got payload
	require.NoError(t, c.FetchJSON(ctx, "k", &got, func(context.Context) (interface{}, error) {
		return payload{Total: "1.00"}, nil
	}))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("k"))
}

func TestFetchJSONSharesConcurrentLoads(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return payload{Total: "5.00"}, nil
	}

	var wg sync.WaitGroup
	results := make([]payload, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, c.FetchJSON(ctx, "shared", &results[i], loader))
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "5.00", r.Total)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestNilCacheCallsLoader(t *testing.T) {
	var c *ReportCache
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)

	var got payload
	require.NoError(t, c.FetchJSON(ctx, key, &got, func(context.Context) (interface{}, error) {
		return payload{Total: "2.00"}, nil
	}))
	assert.Equal(t, "2.00", got.Total)

	c.Invalidate(ctx)
}

func TestRedisFailureFallsBackToLoader(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	mr.Close()

	var got payload
	err := c.FetchJSON(ctx, "k", &got, func(context.Context) (interface{}, error) {
		return payload{Total: "3.00"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "3.00", got.Total)
}
