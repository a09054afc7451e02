package event

import (
	"time"

	"github.com/viant/lottery/internal/clock"
)

// Context identifies the process an event belongs to
type Context struct {
	PID       int    `json:"pid"`
	Slot      int    `json:"slot"`
	EventType string `json:"eventType"`
	Boot      string `json:"boot,omitempty"`
}

// Event wraps a payload with its origin and creation time
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event stamped with the current time
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
