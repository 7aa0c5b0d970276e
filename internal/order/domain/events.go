package domain

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderPlaced        = "OrderPlaced"
	EventOrderPaymentFailed = "OrderPaymentFailed"
)

// OrderEvent is the payload published for every order status change.
type OrderEvent struct {
	OrderID   int64       `json:"orderId"`
	ProductID int64       `json:"productId"`
	Quantity  int64       `json:"quantity"`
	Amount    string      `json:"amount"`
	Status    OrderStatus `json:"status"`
}

// EventFor names the event that announces the order's current status.
func EventFor(o Order) (string, OrderEvent) {
	ev := OrderEvent{
		OrderID:   o.ID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		Amount:    o.Amount.String(),
		Status:    o.Status,
	}
	switch o.Status {
	case StatusPlaced:
		return EventOrderPlaced, ev
	case StatusPaymentFailed:
		return EventOrderPaymentFailed, ev
	default:
		return EventOrderCreated, ev
	}
}
