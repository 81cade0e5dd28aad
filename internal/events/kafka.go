package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"
)

const (
	queueSize    = 256
	writeTimeout = 5 * time.Second
)

var (
	ErrQueueFull = errors.New("kafka: publish queue full")
	ErrClosed    = errors.New("kafka: producer closed")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer queues events and writes them from a background goroutine,
// so a slow or unreachable broker never holds up a request.
type KafkaProducer struct {
	writer messageWriter
	log    *slog.Logger
	queue  chan kafka.Message
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewKafkaProducer(brokers []string, l *slog.Logger) (*KafkaProducer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafkaProducer(w, l, queueSize), nil
}

func newKafkaProducer(w messageWriter, l *slog.Logger, size int) *KafkaProducer {
	if l == nil {
		l = slog.Default()
	}
	p := &KafkaProducer{
		writer: w,
		log:    l.With("component", "kafka_producer"),
		queue:  make(chan kafka.Message, size),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// PublishEvent encodes the event and enqueues it without waiting for the
// broker. It fails only when the event cannot be encoded, the queue is full
// or the producer is closed.
func (p *KafkaProducer) PublishEvent(ctx context.Context, topic, key string, event any) error {
	msg, err := encode(topic, key, event)
	if err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (p *KafkaProducer) run() {
	defer close(p.done)
	for msg := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := p.writer.WriteMessages(ctx, msg)
		cancel()
		if err != nil {
			p.log.Warn("kafka_write_error", "topic", msg.Topic, "key", string(msg.Key), "error", err)
		}
	}
}

// Close stops accepting events, flushes the queue and closes the writer.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}

func encode(topic, key string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: json.Marshal failed: %w", err)
	}
	return kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	}, nil
}
