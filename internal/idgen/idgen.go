package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier. Override in tests.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier
func New() string { return NewFunc() }

// Short returns the first segment of a new identifier, suitable as a log field
func Short() string {
	id := New()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
