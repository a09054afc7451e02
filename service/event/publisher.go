package event

import (
	"context"

	"github.com/viant/lottery/service/messaging"
)

// Publisher publishes typed events onto a queue
type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

// NewPublisher creates a publisher
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// Publish blocks until the event is queued or ctx is done
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	return p.queue.Publish(ctx, event)
}

// Offer queues the event without blocking; a full queue drops it and
// returns messaging.ErrQueueFull
func (p *Publisher[T]) Offer(event *Event[T]) error {
	return p.queue.TryPublish(event)
}

// Consume returns the next event, acknowledging it
func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
