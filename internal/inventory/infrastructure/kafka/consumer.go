package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/order-fulfillment/internal/inventory/domain"
	orderdom "github.com/dmehra2102/order-fulfillment/internal/order/domain"
	"github.com/dmehra2102/order-fulfillment/pkg/idempotency"
	"github.com/dmehra2102/order-fulfillment/pkg/tracing"
)

type Releaser interface {
	Release(ctx context.Context, productID, quantity int64) error
}

type Deduper interface {
	Claim(ctx context.Context, key string) (string, bool, error)
	Complete(ctx context.Context, key, result string) error
	Release(ctx context.Context, key string) error
}

// messageReader is the part of *kafka.Reader the consumer drives.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer returns reserved stock for orders whose payment failed. It is
// only started when the inventory service is configured to compensate.
type Consumer struct {
	log      *slog.Logger
	reader   messageReader
	svc      Releaser
	idem     Deduper
	tracer   trace.Tracer
	retryMin time.Duration
	retryMax time.Duration
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, svc Releaser, idem Deduper) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:      log,
		reader:   r,
		svc:      svc,
		idem:     idem,
		tracer:   otel.Tracer("inventory-consumer"),
		retryMin: 200 * time.Millisecond,
		retryMax: 10 * time.Second,
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}
		if err := c.handleUntilDone(ctx, msg); err != nil {
			return err
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

// handleUntilDone retries msg with exponential backoff until it is handled
// or ctx ends. Committing any later offset of the partition would commit
// msg as well, so the consumer never moves past a failed message.
func (c *Consumer) handleUntilDone(ctx context.Context, msg kafka.Message) error {
	wait := c.retryMin
	for attempt := 1; ; attempt++ {
		err := c.Handle(ctx, msg)
		if err == nil {
			return nil
		}
		c.log.Error("release failed, retrying",
			"partition", msg.Partition, "offset", msg.Offset, "attempt", attempt, "backoff", wait, "err", err)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait = min(wait*2, c.retryMax)
	}
}

// Handle processes one order event. Events other than OrderPaymentFailed
// and repeats for an order already released are ignored. An error means the
// event must be handled again.
func (c *Consumer) Handle(ctx context.Context, msg kafka.Message) error {
	if headerValue(msg.Headers, "event_type") != orderdom.EventOrderPaymentFailed {
		return nil
	}

	ctx, span := c.tracer.Start(tracing.ExtractKafkaHeaders(ctx, msg.Headers), "ReleaseReservation")
	defer span.End()

	var ev orderdom.OrderEvent
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		c.log.Error("unmarshal failed, skipping", "offset", msg.Offset, "err", err)
		return nil
	}
	span.SetAttributes(attribute.Int64("order.id", ev.OrderID))

	key := "release:" + strconv.FormatInt(ev.OrderID, 10)
	_, claimed, err := c.idem.Claim(ctx, key)
	switch {
	case errors.Is(err, idempotency.ErrInFlight):
		// another worker holds the claim; it either finishes or its claim expires
		return fmt.Errorf("release for order %d: %w", ev.OrderID, err)
	case err != nil:
		return err
	case !claimed:
		c.log.Info("duplicate release skipped", "order_id", ev.OrderID)
		return nil
	}

	if err := c.svc.Release(ctx, ev.ProductID, ev.Quantity); err != nil {
		_ = c.idem.Release(ctx, key)
		return err
	}
	if err := c.idem.Complete(ctx, key, "released"); err != nil {
		c.log.Warn("release not marked done", "order_id", ev.OrderID, "err", err)
	}

	released := domain.ReservationReleased{OrderID: ev.OrderID, ProductID: ev.ProductID, Quantity: ev.Quantity}
	c.log.InfoContext(ctx, "reservation released",
		"order_id", released.OrderID, "product_id", released.ProductID, "quantity", released.Quantity)
	return nil
}

func headerValue(h []kafka.Header, key string) string {
	for _, hh := range h {
		if hh.Key == key {
			return string(hh.Value)
		}
	}
	return ""
}
