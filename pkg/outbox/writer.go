package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Writer is the Kafka producer behind a Dispatcher. Messages carry
// their own topic.
type Writer struct {
	log *slog.Logger
	w   *kafka.Writer
}

func NewWriter(log *slog.Logger, brokers []string) *Writer {
	return &Writer{
		log: log,
		w: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchTimeout:           10 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (w *Writer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if err := w.w.WriteMessages(ctx, msgs...); err != nil {
		w.log.Error("kafka write failed", "messages", len(msgs), "err", err)
		return err
	}
	return nil
}

func (w *Writer) Close() error { return w.w.Close() }
