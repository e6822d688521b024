package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_Push(t *testing.T) {

	b := NewBuffer(3)

	_, ok := b.Last()
	assert.False(t, ok)

	for i := 0; i < 3; i++ {
		_, ok := b.Push(float64(i))
		assert.False(t, ok)
	}
	assert.True(t, b.Full())

	for i := 3; i < 10; i++ {
		evicted, ok := b.Push(float64(i))
		assert.True(t, ok)
		assert.Equal(t, float64(i-3), evicted)
	}

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []float64{7, 8, 9}, b.Get())
	assert.Equal(t, []float64{9, 8, 7}, b.GetReverse())
	last, ok := b.Last()
	assert.True(t, ok)
	assert.Equal(t, 9.0, last)
}
