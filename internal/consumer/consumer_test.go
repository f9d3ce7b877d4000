package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pos-service/internal/entity"
)

type fakeInvalidator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeInvalidator) InvalidateCache(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeReader hands out queued messages, then blocks until ctx is done.
type fakeReader struct {
	msgs   chan kafka.Message
	closed chan struct{}
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{msgs: make(chan kafka.Message, len(msgs)), closed: make(chan struct{})}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) Close() error {
	close(r.closed)
	return nil
}

func saleMessage(t *testing.T, saleID int64) kafka.Message {
	t.Helper()
	value, err := json.Marshal(entity.SaleCreatedEvent{EventID: "evt-1", SaleID: saleID})
	require.NoError(t, err)
	return kafka.Message{Key: []byte("sale.created.7"), Value: value}
}

func TestProcessMessageInvalidatesDashboard(t *testing.T) {
	dash := &fakeInvalidator{}
	c := NewConsumer(newFakeReader(), dash)

	c.processMessage(context.Background(), saleMessage(t, 7))

	assert.Equal(t, 1, dash.count())
}

func TestProcessMessageIgnoresOtherMessages(t *testing.T) {
	dash := &fakeInvalidator{}
	c := NewConsumer(newFakeReader(), dash)
	ctx := context.Background()

	c.processMessage(ctx, kafka.Message{Key: []byte("order.created.1"), Value: []byte(`{}`)})
	c.processMessage(ctx, kafka.Message{Key: []byte("sale.refunded.1"), Value: []byte(`{}`)})
	c.processMessage(ctx, kafka.Message{Key: []byte("sale.created.1"), Value: []byte(`not json`)})

	assert.Zero(t, dash.count())
}

func TestProcessMessageInvalidationFailure(t *testing.T) {
	dash := &fakeInvalidator{err: errors.New("redis down")}
	c := NewConsumer(newFakeReader(), dash)

	assert.NotPanics(t, func() {
		c.processMessage(context.Background(), saleMessage(t, 7))
	})
	assert.Equal(t, 1, dash.count())
}

func TestStartStopsOnCancel(t *testing.T) {
	dash := &fakeInvalidator{}
	reader := newFakeReader(saleMessage(t, 1), saleMessage(t, 2))
	c := NewConsumer(reader, dash)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return dash.count() == 2 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
	select {
	case <-reader.closed:
	default:
		t.Fatal("reader was not closed")
	}
}
