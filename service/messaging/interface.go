package messaging

import (
	"context"
)

// Vendor represents the name of a messaging vendor
type Vendor string

// Memory is the in-process queue vendor
const Memory Vendor = "memory"

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue, blocking until one
	// is available or ctx is done
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack rejects the message; the reason is kept with dead-lettered messages
	Nack(err error) error
}
