package messaging

import (
	"context"
	"errors"
)

// ErrQueueFull is returned by TryPublish when the queue has no free capacity
var ErrQueueFull = errors.New("messaging: queue full")

// Queue carries payloads of type T between a producer and consumers
type Queue[T any] interface {
	// Publish enqueues t, blocking until there is room or ctx is done
	Publish(ctx context.Context, t *T) error

	// TryPublish enqueues t or fails with ErrQueueFull
	TryPublish(t *T) error

	// Consume blocks for the next message
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a consumed payload awaiting acknowledgement
type Message[T any] interface {
	T() *T

	Ack() error

	// Nack requeues the payload or moves it to the dead letter queue once
	// retries are exhausted
	Nack(err error) error
}
