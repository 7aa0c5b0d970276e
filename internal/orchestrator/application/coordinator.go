package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmehra2102/order-fulfillment/internal/orchestrator/domain"
)

type Recorder interface {
	Order(outcome string)
	Reservation(result string)
}

// Coordinator reacts to the end of a placement. A payment failure keeps the
// reservation: stock is only returned when the inventory service runs its
// release consumer for OrderPaymentFailed events.
type Coordinator struct {
	log     *slog.Logger
	metrics Recorder
	now     func() time.Time
}

func NewCoordinator(log *slog.Logger, metrics Recorder) *Coordinator {
	return &Coordinator{log: log, metrics: metrics, now: time.Now}
}

func (c *Coordinator) OnPaymentFailed(ctx context.Context, saga *domain.Saga, cause error) {
	if !saga.Reserved() {
		return
	}
	if c.metrics != nil {
		c.metrics.Reservation("retained")
	}
	c.log.WarnContext(ctx, "payment failed, reservation retained",
		"order_id", saga.OrderID,
		"product_id", saga.ProductID,
		"quantity", saga.Quantity,
		"err", cause,
	)
}

func (c *Coordinator) OnFinished(ctx context.Context, saga *domain.Saga) {
	if c.metrics != nil {
		c.metrics.Order(string(saga.Outcome))
	}
	c.log.InfoContext(ctx, "placement finished",
		"order_id", saga.OrderID,
		"outcome", saga.Outcome,
		"steps", saga.Completed,
		"duration", c.now().Sub(saga.StartedAt),
	)
}
