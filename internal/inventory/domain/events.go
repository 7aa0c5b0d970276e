package domain

// ReservationReleased is logged when stock returns to a product after the
// order it was reserved for failed payment.
type ReservationReleased struct {
	OrderID   int64 `json:"orderId"`
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}
