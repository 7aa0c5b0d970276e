package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
)

type OrderStatus string

const (
	StatusCreated       OrderStatus = "CREATED"
	StatusPlaced        OrderStatus = "PLACED"
	StatusPaymentFailed OrderStatus = "PAYMENT_FAILED"
)

func (s OrderStatus) Terminal() bool {
	return s == StatusPlaced || s == StatusPaymentFailed
}

var ErrOrderNotFound = apperr.NotFound("NOT_FOUND", "order with given id not found")

// PaymentMode is how the customer pays for an order.
type PaymentMode string

const (
	ModeCash       PaymentMode = "CASH"
	ModePaypal     PaymentMode = "PAYPAL"
	ModeDebitCard  PaymentMode = "DEBIT_CARD"
	ModeCreditCard PaymentMode = "CREDIT_CARD"
	ModeApplePay   PaymentMode = "APPLE_PAY"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case ModeCash, ModePaypal, ModeDebitCard, ModeCreditCard, ModeApplePay:
		return true
	}
	return false
}

type Order struct {
	ID        int64
	ProductID int64
	Quantity  int64
	Amount    decimal.Decimal
	OrderDate time.Time
	Status    OrderStatus
}

// NewOrder returns an unsaved order in CREATED. The store assigns the ID.
func NewOrder(productID, quantity int64, amount decimal.Decimal, now time.Time) Order {
	return Order{
		ProductID: productID,
		Quantity:  quantity,
		Amount:    amount,
		OrderDate: now.UTC(),
		Status:    StatusCreated,
	}
}

func (o *Order) MarkPlaced() error { return o.transition(StatusPlaced) }

func (o *Order) MarkPaymentFailed() error { return o.transition(StatusPaymentFailed) }

// Only CREATED may move, and only to a terminal status.
func (o *Order) transition(to OrderStatus) error {
	if o.Status != StatusCreated {
		return fmt.Errorf("order %d: cannot move from %s to %s", o.ID, o.Status, to)
	}
	o.Status = to
	return nil
}
