package event

import (
	"context"
	"errors"
	"sync"
)

// Listener dispatches consumed events to a handler until stopped
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewListener creates a listener
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
	}
}

// Start consumes events in a goroutine until ctx is done or Stop is called
func (l *Listener[T]) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		for {
			event, err := l.publisher.Consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				continue
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}

// Stop cancels consumption and waits for the handler to return
func (l *Listener[T]) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
}
