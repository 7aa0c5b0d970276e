package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
)

func newTestStore(t *testing.T) (*Store, *redis.Client) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	prefix := "test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})
	return NewStore(client, prefix), client
}

func seed(t *testing.T, s *Store, qty int64) int64 {
	t.Helper()
	id, err := s.Add(context.Background(), domain.Product{Name: "Laptop", Price: decimal.RequireFromString("999.50"), Quantity: qty})
	require.NoError(t, err)
	return id
}

func TestAddGet(t *testing.T) {
	s, _ := newTestStore(t)
	id := seed(t, s, 10)

	p, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", p.Name)
	assert.True(t, decimal.RequireFromString("999.5").Equal(p.Price))
	assert.EqualValues(t, 10, p.Quantity)
}

func TestReserve(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	id := seed(t, s, 10)

	require.NoError(t, s.Reserve(ctx, id, 3))
	err := s.Reserve(ctx, id, 8)
	assert.ErrorIs(t, err, apperr.ErrInsufficientQuantity)
	assert.ErrorIs(t, s.Reserve(ctx, id+1000, 1), apperr.ErrNotFound)

	p, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 7, p.Quantity)

	require.NoError(t, s.Release(ctx, id, 3))
	p, _ = s.Get(ctx, id)
	assert.EqualValues(t, 10, p.Quantity)
}

func TestReserveConcurrent(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	id := seed(t, s, 100)

	var wg sync.WaitGroup
	var ok int64
	for i := 0; i < 250; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Reserve(ctx, id, 1) == nil {
				atomic.AddInt64(&ok, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 100, ok)
	p, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 0, p.Quantity)
}
