package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/authflow/service/messaging"
)

// ErrProcessed is returned when a message is acknowledged twice
var ErrProcessed = errors.New("message already processed")

// Config for memory queue implementation
type Config struct {
	// MaxRetries is the number of times a nacked message is redelivered;
	// zero sends nacked messages straight to the dead letter list.
	MaxRetries  int
	RetryDelay  time.Duration
	DeadLetter  bool
	QueueBuffer int
}

// DefaultConfig returns the configuration used for store dispatch: no
// redelivery, rejected messages kept as dead letters.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  0,
		RetryDelay:  100 * time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 256,
	}
}

// DeadLetter is a rejected message together with the rejection reason
type DeadLetter[T any] struct {
	ID      string
	Payload T
	Reason  error
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
	createdAt  time.Time
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return ErrProcessed
	}
	m.processed = true
	return nil
}

// Nack rejects the message; it is redelivered while under the retry limit,
// otherwise moved to the dead letter list when enabled
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return ErrProcessed
	}
	m.processed = true
	m.retryCount++

	q := m.queue
	if m.retryCount <= q.config.MaxRetries {
		retry := &Message[T]{
			id:         m.id,
			payload:    m.payload,
			queue:      q,
			retryCount: m.retryCount,
			createdAt:  time.Now(),
		}
		go func() {
			time.Sleep(q.config.RetryDelay)
			q.messages <- retry
		}()
		return nil
	}
	if q.config.DeadLetter {
		q.dlqMu.Lock()
		q.dlq = append(q.dlq, DeadLetter[T]{ID: m.id, Payload: m.payload, Reason: err})
		q.dlqMu.Unlock()
	}
	return nil
}

// Queue implements an in-memory messaging.Queue
type Queue[T any] struct {
	messages chan *Message[T]
	dlq      []DeadLetter[T]
	config   Config
	dlqMu    sync.Mutex
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		config:   config,
	}
}

// Publish adds a new item to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &Message[T]{
		id:        uuid.New().String(),
		payload:   *t,
		queue:     q,
		createdAt: time.Now(),
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DLQSize returns the number of messages in the dead letter list
func (q *Queue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

// DeadLetters returns a copy of the dead letter list
func (q *Queue[T]) DeadLetters() []DeadLetter[T] {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return append([]DeadLetter[T](nil), q.dlq...)
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
