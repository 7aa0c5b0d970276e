package domain

const EventPaymentRecorded = "PaymentRecorded"

type PaymentRecorded struct {
	PaymentID       int64  `json:"paymentId"`
	OrderID         int64  `json:"orderId"`
	Amount          string `json:"amount"`
	Mode            Mode   `json:"paymentMode"`
	ReferenceNumber string `json:"referenceNumber"`
}

func Recorded(p Payment) PaymentRecorded {
	return PaymentRecorded{
		PaymentID:       p.ID,
		OrderID:         p.OrderID,
		Amount:          p.Amount.String(),
		Mode:            p.Mode,
		ReferenceNumber: p.ReferenceNumber,
	}
}
