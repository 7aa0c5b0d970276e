package application

import (
	"context"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
)

// ProductRepository is the inventory store. Reserve must be one atomic
// conditional decrement: it either takes quantity units or changes nothing
// and returns domain.ErrInsufficientQuantity.
type ProductRepository interface {
	Add(ctx context.Context, p domain.Product) (int64, error)
	Get(ctx context.Context, id int64) (domain.Product, error)
	Reserve(ctx context.Context, id, quantity int64) error
	Release(ctx context.Context, id, quantity int64) error
}

type ReservationRecorder interface {
	Reservation(result string)
}
