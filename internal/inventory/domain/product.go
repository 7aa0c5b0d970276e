package domain

import (
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/order-fulfillment/pkg/apperr"
)

var (
	ErrProductNotFound      = apperr.NotFound("PRODUCT_NOT_FOUND", "product with given id not found")
	ErrInsufficientQuantity = apperr.InsufficientQuantity("product does not have sufficient quantity")
)

// Product is one inventory item. Quantity is the stock still available for
// reservation and never drops below zero.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Quantity int64
}

func (p Product) Validate() error {
	switch {
	case p.Name == "":
		return apperr.Invalid("product name is required")
	case p.Price.IsNegative():
		return apperr.Invalid("product price must not be negative")
	case p.Quantity < 0:
		return apperr.Invalid("product quantity must not be negative")
	}
	return nil
}
