package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/order-fulfillment/pkg/logging"
)

type fakeStore struct {
	mu      sync.Mutex
	pending []Event
	sent    []int64
	failed  map[int64]string
}

func (s *fakeStore) LockBatch(_ context.Context, relayID string, batchSize int, _ time.Duration) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(batchSize, len(s.pending))
	batch := s.pending[:n]
	s.pending = s.pending[n:]
	for i := range batch {
		batch[i].RelayID = relayID
	}
	return batch, nil
}

func (s *fakeStore) MarkSent(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *fakeStore) MarkFailed(_ context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failed == nil {
		s.failed = map[int64]string{}
	}
	s.failed[id] = errMsg
	return nil
}

type fakeProducer struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	failOn string
}

func (p *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		if string(m.Key) == p.failOn {
			return errors.New("broker unavailable")
		}
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func event(t *testing.T, id int64, aggregateID string) Event {
	t.Helper()
	ev, err := NewEvent("order", aggregateID, "OrderPlaced", map[string]string{"orderId": aggregateID}, "")
	require.NoError(t, err)
	ev.ID = id
	return ev
}

func TestRelayFlush_SendsAndMarks(t *testing.T) {
	store := &fakeStore{pending: []Event{event(t, 1, "10"), event(t, 2, "11"), event(t, 3, "12")}}
	producer := &fakeProducer{failOn: "11"}
	relay := NewRelay(logging.Discard(), store, NewDispatcher(logging.Discard(), producer, "order.events"), "r1", WithBatchSize(10))

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{1, 3}, store.sent)
	assert.Equal(t, "broker unavailable", store.failed[2])
	require.Len(t, producer.msgs, 2)
	assert.Equal(t, "order.events", producer.msgs[0].Topic)
	assert.Equal(t, "10", string(producer.msgs[0].Key))
}

func TestRelayFlush_Empty(t *testing.T) {
	store := &fakeStore{}
	relay := NewRelay(logging.Discard(), store, NewDispatcher(logging.Discard(), &fakeProducer{}, "t"), "r1")

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.sent)
}

func TestRelayRun_StopsOnCancel(t *testing.T) {
	store := &fakeStore{pending: []Event{event(t, 1, "10")}}
	producer := &fakeProducer{}
	relay := NewRelay(logging.Discard(), store, NewDispatcher(logging.Discard(), producer, "t"), "r1", WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.sent) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestDispatcherMessage_Headers(t *testing.T) {
	d := NewDispatcher(logging.Discard(), &fakeProducer{}, "order.events")
	ev := event(t, 7, "99")
	ev.Headers["source"] = "order-service"

	msg := d.Message(context.Background(), ev)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "OrderPlaced", headers["event_type"])
	assert.Equal(t, "order", headers["aggregate_type"])
	assert.Equal(t, "order-service", headers["source"])
	assert.JSONEq(t, `{"orderId":"99"}`, string(msg.Value))
}
