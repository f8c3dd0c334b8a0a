package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_ValidFormat(t *testing.T) {
	id := UUIDv7Generator{}.Generate()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err, "id should be valid UUID")
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)
}

func TestUUIDv7Generator_Uniqueness(t *testing.T) {
	gen := UUIDv7Generator{}
	const iterations = 1000

	seen := make(map[string]bool, iterations)
	for i := 0; i < iterations; i++ {
		id := gen.Generate()
		require.False(t, seen[id], "id %s generated twice", id)
		seen[id] = true
	}
}

func TestULIDGenerator_ValidAndMonotonic(t *testing.T) {
	gen := NewULIDGenerator()

	prev := ""
	for i := 0; i < 500; i++ {
		id := gen.Generate()
		_, err := ulid.Parse(id)
		require.NoError(t, err)
		require.Len(t, id, 26)
		require.Greater(t, id, prev, "ULIDs must sort in creation order")
		prev = id
	}
}

func TestFixedGenerator_Sequential(t *testing.T) {
	gen := NewFixedGenerator("g-1", "g-2")

	assert.Equal(t, "g-1", gen.Generate())
	assert.Equal(t, "g-2", gen.Generate())
	assert.Panics(t, func() { gen.Generate() }, "should panic when all ids exhausted")
}

func TestFixedGenerator_EmptyIDs(t *testing.T) {
	gen := NewFixedGenerator()
	assert.Panics(t, func() { gen.Generate() })
}
