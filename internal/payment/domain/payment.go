package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
)

type Mode string

const (
	ModeCash       Mode = "CASH"
	ModePaypal     Mode = "PAYPAL"
	ModeDebitCard  Mode = "DEBIT_CARD"
	ModeCreditCard Mode = "CREDIT_CARD"
	ModeApplePay   Mode = "APPLE_PAY"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeCash, ModePaypal, ModeDebitCard, ModeCreditCard, ModeApplePay:
		return true
	}
	return false
}

type Status string

// Every stored payment succeeded; a failed attempt leaves no record.
const StatusSuccess Status = "SUCCESS"

var (
	ErrPaymentNotFound = apperr.NotFound("PAYMENT_NOT_FOUND", "payment with given order id not found")
	ErrAlreadyPaid     = apperr.New(apperr.ErrInvalidRequest, "PAYMENT_EXISTS", "order already has a payment", nil).WithStatus(409)
)

// Payment is immutable once stored.
type Payment struct {
	ID              int64
	OrderID         int64
	Amount          decimal.Decimal
	Mode            Mode
	Status          Status
	ReferenceNumber string
	PaymentDate     time.Time
}

// Amounts are stored as NUMERIC(14,2).
var maxAmount = decimal.New(1, 12)

func NewPayment(orderID int64, amount decimal.Decimal, mode Mode, ref string, now time.Time) (Payment, error) {
	switch {
	case orderID <= 0:
		return Payment{}, apperr.Invalid("orderId must be positive")
	case amount.IsNegative():
		return Payment{}, apperr.Invalid("amount must not be negative")
	case amount.GreaterThanOrEqual(maxAmount), !amount.Equal(amount.Truncate(2)):
		return Payment{}, apperr.Invalid("amount does not fit 12 digits and 2 decimals")
	case !mode.Valid():
		return Payment{}, apperr.Invalid("unsupported paymentMode " + string(mode))
	}
	return Payment{
		OrderID:         orderID,
		Amount:          amount,
		Mode:            mode,
		Status:          StatusSuccess,
		ReferenceNumber: ref,
		PaymentDate:     now.UTC(),
	}, nil
}
