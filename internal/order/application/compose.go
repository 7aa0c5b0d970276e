package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/order-fulfillment/internal/order/domain"
)

type ProductDetails struct {
	ProductID   int64
	ProductName string
}

type PaymentDetails struct {
	PaymentID     int64
	PaymentStatus string
	PaymentDate   time.Time
	PaymentMode   string
}

// AggregateView is an order together with its product and payment.
type AggregateView struct {
	OrderID        int64
	OrderStatus    domain.OrderStatus
	OrderDate      time.Time
	Amount         decimal.Decimal
	ProductDetails ProductDetails
	PaymentDetails PaymentDetails
}

// Compose copies fields from the three records without deriving anything.
func Compose(o domain.Order, p ProductSnapshot, pay PaymentSnapshot) AggregateView {
	return AggregateView{
		OrderID:     o.ID,
		OrderStatus: o.Status,
		OrderDate:   o.OrderDate,
		Amount:      o.Amount,
		ProductDetails: ProductDetails{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
		},
		PaymentDetails: PaymentDetails{
			PaymentID:     pay.PaymentID,
			PaymentStatus: pay.Status,
			PaymentDate:   pay.PaymentDate,
			PaymentMode:   pay.Mode,
		},
	}
}
