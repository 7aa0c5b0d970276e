package domain

import "time"

// Step is one leg of order placement, in execution order.
type Step string

const (
	StepReserve     Step = "reserve"
	StepCreateOrder Step = "create_order"
	StepPay         Step = "pay"
	StepUpdateOrder Step = "update_order"
)

// Outcome is how a placement ended.
type Outcome string

const (
	OutcomePlaced        Outcome = "placed"
	OutcomePaymentFailed Outcome = "payment_failed"
	OutcomeRejected      Outcome = "rejected"
	OutcomeFailed        Outcome = "failed"
)

// Saga records the progress of one placement.
type Saga struct {
	OrderID   int64
	ProductID int64
	Quantity  int64
	Completed []Step
	Outcome   Outcome
	StartedAt time.Time
}

func NewSaga(productID, quantity int64, now time.Time) *Saga {
	return &Saga{ProductID: productID, Quantity: quantity, StartedAt: now}
}

func (s *Saga) Complete(step Step) { s.Completed = append(s.Completed, step) }

func (s *Saga) Done(step Step) bool {
	for _, c := range s.Completed {
		if c == step {
			return true
		}
	}
	return false
}

// Reserved reports whether stock is held for this placement.
func (s *Saga) Reserved() bool { return s.Done(StepReserve) }

func (s *Saga) Finish(o Outcome) { s.Outcome = o }
