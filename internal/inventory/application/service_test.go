package application_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/application"
	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
	"github.com/dmehra2102/order-fulfillment/internal/inventory/infrastructure/memory"
	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
	"github.com/dmehra2102/order-fulfillment/pkg/logging"
)

type recorder struct {
	mu      sync.Mutex
	results []string
}

func (r *recorder) Reservation(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func TestService_Reserve(t *testing.T) {
	rec := &recorder{}
	svc := application.NewService(logging.Discard(), memory.NewStore(), rec)
	ctx := context.Background()

	id, err := svc.AddProduct(ctx, domain.Product{Name: "Tablet", Price: decimal.NewFromInt(300), Quantity: 200})
	require.NoError(t, err)

	require.NoError(t, svc.Reserve(ctx, id, 10))
	assert.ErrorIs(t, svc.Reserve(ctx, id, 300), apperr.ErrInsufficientQuantity)
	assert.ErrorIs(t, svc.Reserve(ctx, id+1, 1), apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Reserve(ctx, id, 0), apperr.ErrInvalidRequest)

	p, err := svc.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, 190, p.Quantity)
	assert.Equal(t, []string{"reserved", "insufficient_quantity", "not_found"}, rec.results)

	require.NoError(t, svc.Release(ctx, id, 10))
	p, _ = svc.GetProduct(ctx, id)
	assert.EqualValues(t, 200, p.Quantity)
}

func TestService_AddProductValidates(t *testing.T) {
	svc := application.NewService(logging.Discard(), memory.NewStore(), nil)

	_, err := svc.AddProduct(context.Background(), domain.Product{Name: "", Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrInvalidRequest)
	_, err = svc.AddProduct(context.Background(), domain.Product{Name: "x", Quantity: -1})
	assert.ErrorIs(t, err, apperr.ErrInvalidRequest)
}
