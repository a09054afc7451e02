package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	assert.Len(t, Short(), 8)
	assert.NotEqual(t, New(), New())

	prev := NewFunc
	defer func() { NewFunc = prev }()
	NewFunc = func() string { return "boot" }
	assert.Equal(t, "boot", Short())
}
