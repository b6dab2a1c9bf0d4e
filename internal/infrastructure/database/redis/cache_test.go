package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendergate/tendergate/internal/config"
	"github.com/tendergate/tendergate/internal/infrastructure/monitoring/logging"
)

type marketView struct {
	Level      string  `json:"level"`
	AvgBidders float64 `json:"avg_bidders"`
}

func newTestCache(t *testing.T) (*Cache, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	cfg := config.RedisConfig{
		KeyPrefix:  "tendergate",
		DefaultTTL: time.Minute,
		TTLJitter:  0, // deterministic TTLs in tests
	}
	return NewCache(client, cfg, logging.NewNopLogger()), mock
}

func TestCacheGetHit(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectGet("tendergate:market:t1").SetVal(`{"level":"high","avg_bidders":8}`)

	var view marketView
	require.NoError(t, cache.Get(context.Background(), "market:t1", &view))
	assert.Equal(t, "high", view.Level)
	assert.Equal(t, 8.0, view.AvgBidders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheGetMiss(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectGet("tendergate:market:t1").RedisNil()

	var view marketView
	err := cache.Get(context.Background(), "market:t1", &view)
	assert.Equal(t, ErrCacheMiss, err)
}

func TestCacheGetNullMarker(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectGet("tendergate:market:t1").SetVal("__null__")

	var view marketView
	err := cache.Get(context.Background(), "market:t1", &view)
	assert.Equal(t, ErrNilValue, err)
}

func TestCacheSet(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectSet("tendergate:market:t1", `{"level":"low","avg_bidders":2}`, time.Minute).SetVal("OK")

	err := cache.Set(context.Background(), "market:t1", marketView{Level: "low", AvgBidders: 2}, 0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheSetNull(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectSet("tendergate:market:t1", "__null__", time.Minute).SetVal("OK")

	require.NoError(t, cache.Set(context.Background(), "market:t1", nil, 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheDelete(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectDel("tendergate:a", "tendergate:b").SetVal(2)

	require.NoError(t, cache.Delete(context.Background(), "a", "b"))
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.NoError(t, cache.Delete(context.Background()))
}

func TestCacheGetOrSetMissInvokesLoader(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectGet("tendergate:market:t1").RedisNil()
	mock.ExpectSet("tendergate:market:t1", `{"level":"medium","avg_bidders":5}`, time.Minute).SetVal("OK")

	loads := 0
	var view marketView
	err := cache.GetOrSet(context.Background(), "market:t1", &view, 0,
		func(context.Context) (interface{}, error) {
			loads++
			return marketView{Level: "medium", AvgBidders: 5}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, "medium", view.Level)
}

func TestCacheGetOrSetHitSkipsLoader(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectGet("tendergate:market:t1").SetVal(`{"level":"high","avg_bidders":9}`)

	var view marketView
	err := cache.GetOrSet(context.Background(), "market:t1", &view, 0,
		func(context.Context) (interface{}, error) {
			t.Fatal("loader must not run on a cache hit")
			return nil, nil
		})
	require.NoError(t, err)
	assert.Equal(t, "high", view.Level)
}

func TestCacheGetOrSetLoaderError(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectGet("tendergate:market:t1").RedisNil()

	var view marketView
	err := cache.GetOrSet(context.Background(), "market:t1", &view, 0,
		func(context.Context) (interface{}, error) {
			return nil, assert.AnError
		})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestJitteredTTL(t *testing.T) {
	cache, _ := newTestCache(t)
	cache.jitter = 0.1
	cache.randFloat = func() float64 { return 1 }

	assert.Equal(t, 66*time.Second, cache.jitteredTTL(time.Minute))

	cache.jitter = 0
	assert.Equal(t, time.Minute, cache.jitteredTTL(time.Minute))
}
