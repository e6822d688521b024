package buffer

// Buffer is a float buffer that acts like a constant size queue.
type Buffer struct {
	size   int
	values []float64
}

// NewBuffer creates a new buffer.
func NewBuffer(size int) *Buffer {
	return &Buffer{
		size:   size,
		values: make([]float64, 0, size+1),
	}
}

// Push adds an element to the buffer.
// It returns the evicted element if the buffer was full.
func (b *Buffer) Push(x float64) (float64, bool) {
	b.values = append(b.values, x)
	if len(b.values) > b.size {
		value := b.values[0]
		b.values = append(b.values[:0], b.values[1:]...)
		return value, true
	}
	return 0, false
}

// Get returns the buffer elements in the order they were added.
func (b *Buffer) Get() []float64 {
	vv := make([]float64, len(b.values))
	copy(vv, b.values)
	return vv
}

// GetReverse returns the buffer elements in the reverse order they were added.
func (b *Buffer) GetReverse() []float64 {
	size := len(b.values)
	vv := make([]float64, size)
	for i := 0; i < size; i++ {
		vv[i] = b.values[size-1-i]
	}
	return vv
}

// Len returns the current number of elements.
func (b *Buffer) Len() int {
	return len(b.values)
}

// Full checks if the buffer holds as many elements as its size.
func (b *Buffer) Full() bool {
	return b.size > 0 && len(b.values) == b.size
}

// Last returns the latest element.
func (b *Buffer) Last() (float64, bool) {
	if len(b.values) == 0 {
		return 0, false
	}
	return b.values[len(b.values)-1], true
}
