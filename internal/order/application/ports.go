package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	sagadomain "github.com/dmehra2102/order-fulfillment/internal/orchestrator/domain"
	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, o domain.Order) (domain.Order, error)
	Update(ctx context.Context, o domain.Order) error
	// FindByID returns domain.ErrOrderNotFound when no order has the id.
	FindByID(ctx context.Context, id int64) (domain.Order, error)
}

type ProductSnapshot struct {
	ProductID   int64
	ProductName string
	Price       decimal.Decimal
	Quantity    int64
}

// InventoryClient reaches the inventory service. Reserve reports
// apperr.ErrNotFound or apperr.ErrInsufficientQuantity for business
// rejections and apperr.ErrUpstreamUnavailable when the call itself fails.
type InventoryClient interface {
	Reserve(ctx context.Context, productID, quantity int64) error
	Product(ctx context.Context, productID int64) (ProductSnapshot, error)
}

type PaymentRequest struct {
	OrderID         int64
	Amount          decimal.Decimal
	Mode            domain.PaymentMode
	ReferenceNumber string
}

type PaymentSnapshot struct {
	PaymentID       int64
	OrderID         int64
	Amount          decimal.Decimal
	Mode            string
	Status          string
	ReferenceNumber string
	PaymentDate     time.Time
}

type PaymentClient interface {
	Pay(ctx context.Context, req PaymentRequest) (int64, error)
	ByOrderID(ctx context.Context, orderID int64) (PaymentSnapshot, error)
}

// Compensator is told about placements once they end. It decides what, if
// anything, happens to a reservation whose payment failed.
type Compensator interface {
	OnPaymentFailed(ctx context.Context, saga *sagadomain.Saga, cause error)
	OnFinished(ctx context.Context, saga *sagadomain.Saga)
}
