package application

import (
	"context"

	"github.com/dmehra2102/order-fulfillment/internal/payment/domain"
)

type PaymentRepository interface {
	// Create stores p and returns its id. domain.ErrAlreadyPaid when the
	// order already has a payment.
	Create(ctx context.Context, p domain.Payment) (int64, error)
	FindByOrderID(ctx context.Context, orderID int64) (domain.Payment, error)
}
