package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish_RecordsEvent(t *testing.T) {
	t.Parallel()

	rec := &Recorder{}
	Publish(context.Background(), rec, slog.Default(), TopicCart, "7", map[string]any{"type": "cart_item_added"})

	evs := rec.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, TopicCart, evs[0].Topic)
	assert.Equal(t, "7", evs[0].Key)
	assert.Equal(t, []string{"cart_item_added"}, rec.Types())
}

func TestPublish_ErrorIsLoggedNotReturned(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	rec := &Recorder{Err: errors.New("broker down")}

	Publish(context.Background(), rec, l, TopicOrders, "1", map[string]any{"type": "order_placed"})

	assert.Contains(t, buf.String(), "publish_event_error")
	assert.Contains(t, buf.String(), "broker down")
}

func TestPublish_NilPublisher(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		Publish(context.Background(), nil, slog.Default(), TopicUsers, "", nil)
	})
}

func TestPublish_SurvivesCanceledRequest(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &Recorder{}
	Publish(ctx, rec, slog.Default(), TopicUsers, "1", map[string]any{"type": "user_registered"})
	assert.Len(t, rec.Events(), 1)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	msg, err := encode(TopicProducts, "5", map[string]any{"type": "product_created", "productID": 5})
	require.NoError(t, err)
	assert.Equal(t, TopicProducts, msg.Topic)
	assert.Equal(t, []byte("5"), msg.Key)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "product_created", body["type"])
	assert.EqualValues(t, 5, body["productID"])

	_, err = encode(TopicProducts, "x", make(chan int))
	require.Error(t, err)
}

func TestNewKafkaProducer_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewKafkaProducer(nil, nil)
	require.Error(t, err)

	p, err := NewKafkaProducer([]string{"localhost:9092"}, slog.Default())
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

// fakeWriter blocks every write until release is closed.
type fakeWriter struct {
	started chan struct{}
	release chan struct{}
	err     error

	mu      sync.Mutex
	written []kafka.Message
	closed  bool
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.started <- struct{}{}
	select {
	case <-w.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) topics() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for _, m := range w.written {
		out = append(out, m.Topic)
	}
	return out
}

func TestKafkaProducer_DoesNotWaitForBroker(t *testing.T) {
	t.Parallel()

	w := newFakeWriter()
	p := newKafkaProducer(w, slog.Default(), 4)

	start := time.Now()
	require.NoError(t, p.PublishEvent(context.Background(), TopicCart, "1", map[string]any{"type": "cart_item_added"}))
	require.NoError(t, p.PublishEvent(context.Background(), TopicOrders, "1", map[string]any{"type": "order_placed"}))
	assert.Less(t, time.Since(start), time.Second)

	close(w.release)
	require.NoError(t, p.Close())
	assert.Equal(t, []string{TopicCart, TopicOrders}, w.topics())
	assert.True(t, w.closed)
}

func TestKafkaProducer_QueueFull(t *testing.T) {
	t.Parallel()

	w := newFakeWriter()
	p := newKafkaProducer(w, slog.Default(), 1)
	ctx := context.Background()

	require.NoError(t, p.PublishEvent(ctx, TopicCart, "1", map[string]any{}))
	<-w.started
	require.NoError(t, p.PublishEvent(ctx, TopicCart, "2", map[string]any{}))
	assert.ErrorIs(t, p.PublishEvent(ctx, TopicCart, "3", map[string]any{}), ErrQueueFull)

	close(w.release)
	require.NoError(t, p.Close())
	assert.Len(t, w.topics(), 2)
}

func TestKafkaProducer_WriteErrorIsLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := newFakeWriter()
	w.err = errors.New("broker down")
	close(w.release)
	p := newKafkaProducer(w, slog.New(slog.NewJSONHandler(&buf, nil)), 4)

	require.NoError(t, p.PublishEvent(context.Background(), TopicUsers, "9", map[string]any{}))
	require.NoError(t, p.Close())

	assert.Contains(t, buf.String(), "kafka_write_error")
	assert.Contains(t, buf.String(), "broker down")
	assert.Empty(t, w.topics())
}

func TestKafkaProducer_PublishAfterClose(t *testing.T) {
	t.Parallel()

	w := newFakeWriter()
	close(w.release)
	p := newKafkaProducer(w, slog.Default(), 4)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.PublishEvent(context.Background(), TopicUsers, "1", map[string]any{}), ErrClosed)
}
