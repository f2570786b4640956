package identifier

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorUnique(t *testing.T) {
	a := NewAllocator()
	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		id := a.NewID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
		_, err := uuid.Parse(id)
		require.NoError(t, err)
	}
}

func TestAllocatorPrefix(t *testing.T) {
	a := NewAllocator(WithPrefix("id-"))
	id := a.NewID()
	assert.True(t, strings.HasPrefix(id, "id-"))
	_, err := uuid.Parse(strings.TrimPrefix(id, "id-"))
	assert.NoError(t, err)
}

func TestSequence(t *testing.T) {
	s := &Sequence{Prefix: "p"}
	assert.Equal(t, "p-1", s.NewID())
	assert.Equal(t, "p-2", s.NewID())
	assert.Equal(t, "p-3", s.NewID())
}
