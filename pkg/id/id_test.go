package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUUID(t *testing.T) {
	a := NewUUID()
	b := NewUUID()
	assert.NotEqual(t, a, b)
	assert.True(t, IsValidUUID(a))
	assert.False(t, IsValidUUID("not-a-uuid"))
}

func TestNewULID(t *testing.T) {
	a := NewULID()
	b := NewULID()
	assert.True(t, IsValidULID(a))
	assert.True(t, IsValidULID(b))

	// Monotonic within the same process.
	assert.Less(t, a, b)
}

func TestNewULIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		u := NewULID()
		_, dup := seen[u]
		assert.False(t, dup, "duplicate ulid %s", u)
		seen[u] = struct{}{}
	}
}
