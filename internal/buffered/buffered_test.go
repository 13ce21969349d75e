package buffered

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNegativeCache_AddContains(t *testing.T) {
	c := NewNegativeCache[int64](8)

	assert.False(t, c.Contains(7))

	c.Add(7)
	assert.True(t, c.Contains(7))
	assert.Equal(t, 1, c.Len())

	// re-adding the same key is a no-op
	c.Add(7)
	assert.Equal(t, 1, c.Len())
}

func TestNegativeCache_Remove(t *testing.T) {
	c := NewNegativeCache[string](8)

	c.Add("alice")
	c.Add("bob")
	c.Remove("alice")

	assert.False(t, c.Contains("alice"))
	assert.True(t, c.Contains("bob"))
	assert.Equal(t, 1, c.Len())

	// removing an unknown key must not panic or disturb the rest
	c.Remove("carol")
	assert.Equal(t, 1, c.Len())
}

func TestNegativeCache_EvictsOldestWhenFull(t *testing.T) {
	c := NewNegativeCache[int64](3)

	c.Add(1)
	c.Add(2)
	c.Add(3)
	c.Add(4)

	assert.Equal(t, 3, c.Len())
	assert.False(t, c.Contains(1))
	assert.True(t, c.Contains(2))
	assert.True(t, c.Contains(4))
}

func TestNegativeCache_MinimumCapacity(t *testing.T) {
	c := NewNegativeCache[int64](0)

	c.Add(1)
	c.Add(2)

	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Contains(2))
}
