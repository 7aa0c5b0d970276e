package application

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment/internal/payment/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
	"github.com/dmehra2102/order-fulfillment/pkg/logging"
)

type fakeRepo struct {
	mu      sync.Mutex
	byOrder map[int64]domain.Payment
}

func (r *fakeRepo) Create(_ context.Context, p domain.Payment) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byOrder[p.OrderID]; ok {
		return 0, domain.ErrAlreadyPaid
	}
	p.ID = int64(len(r.byOrder) + 1)
	r.byOrder[p.OrderID] = p
	return p.ID, nil
}

func (r *fakeRepo) FindByOrderID(_ context.Context, orderID int64) (domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byOrder[orderID]
	if !ok {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	return p, nil
}

func TestPay(t *testing.T) {
	repo := &fakeRepo{byOrder: map[int64]domain.Payment{}}
	svc := NewService(logging.Discard(), repo)
	ctx := context.Background()

	id, err := svc.Pay(ctx, PayRequest{OrderID: 4, Amount: decimal.NewFromInt(200), Mode: domain.ModeApplePay, ReferenceNumber: "ref"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	p, err := svc.ByOrderID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, p.Status)
	assert.Equal(t, "ref", p.ReferenceNumber)
	assert.False(t, p.PaymentDate.IsZero())

	_, err = svc.Pay(ctx, PayRequest{OrderID: 4, Amount: decimal.NewFromInt(1), Mode: domain.ModeCash})
	assert.ErrorIs(t, err, apperr.ErrInvalidRequest)
	assert.Len(t, repo.byOrder, 1)
}

func TestPay_InvalidLeavesNoRecord(t *testing.T) {
	repo := &fakeRepo{byOrder: map[int64]domain.Payment{}}
	svc := NewService(logging.Discard(), repo)

	_, err := svc.Pay(context.Background(), PayRequest{OrderID: 4, Amount: decimal.NewFromInt(1), Mode: "CHEQUE"})
	assert.ErrorIs(t, err, apperr.ErrInvalidRequest)
	assert.Empty(t, repo.byOrder)

	_, err = svc.ByOrderID(context.Background(), 4)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
