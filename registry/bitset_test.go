package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkSetSetAndHas(t *testing.T) {
	s := newChunkSet(130)

	assert.False(t, s.Has(0))
	assert.True(t, s.Set(0))
	assert.True(t, s.Has(0))
	assert.False(t, s.Set(0))
	assert.Equal(t, 1, s.Count())

	// Indices across word boundaries
	for _, i := range []int{63, 64, 127, 128, 129} {
		assert.True(t, s.Set(i))
		assert.True(t, s.Has(i))
	}
	assert.Equal(t, 6, s.Count())
	assert.False(t, s.Full())
}

func TestChunkSetFull(t *testing.T) {
	s := newChunkSet(65)
	for i := 0; i < 65; i++ {
		s.Set(i)
	}
	assert.True(t, s.Full())
	assert.Equal(t, 65, s.Count())
}
