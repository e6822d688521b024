package buffer

import (
	"math"
)

// Stats keeps running statistics over a series of values,
// e.g. the error of a network after each training pass.
type Stats struct {
	count          int
	sum            float64
	first, last    float64
	min, max       float64
	mean, dSquared float64
	ema            float64
}

// NewStats creates a new Stats.
func NewStats() *Stats {
	return &Stats{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
}

// Push adds another value to the series.
func (s *Stats) Push(v float64) {
	s.count++
	s.sum += v
	diff := (v - s.mean) / float64(s.count)
	mean := s.mean + diff
	s.dSquared += (v - mean) * (v - s.mean)
	s.mean = mean

	w := 2 / float64(s.count+1)
	s.ema = v*w + s.ema*(1-w)

	if s.count == 1 {
		s.first = v
	}
	s.min = math.Min(s.min, v)
	s.max = math.Max(s.max, v)
	s.last = v
}

// Count returns the number of values.
func (s Stats) Count() int {
	return s.count
}

// Sum returns the sum of all values.
func (s Stats) Sum() float64 {
	return s.sum
}

// Avg returns the average value, 0 for an empty series.
func (s Stats) Avg() float64 {
	return s.mean
}

// EMA is the exponential moving average of the series.
func (s Stats) EMA() float64 {
	return s.ema
}

// Min returns the smallest value, 0 for an empty series.
func (s Stats) Min() float64 {
	if s.count == 0 {
		return 0
	}
	return s.min
}

// Max returns the largest value, 0 for an empty series.
func (s Stats) Max() float64 {
	if s.count == 0 {
		return 0
	}
	return s.max
}

// First returns the first value pushed.
func (s Stats) First() float64 {
	return s.first
}

// Last returns the latest value pushed.
func (s Stats) Last() float64 {
	return s.last
}

// Diff returns the difference of the last and the first value.
func (s Stats) Diff() float64 {
	return s.last - s.first
}

// Variance is the population variance of the series.
func (s Stats) Variance() float64 {
	if s.count == 0 {
		return 0
	}
	return s.dSquared / float64(s.count)
}

// StDev is the population standard deviation of the series.
func (s Stats) StDev() float64 {
	return math.Sqrt(s.Variance())
}

// History tracks the statistics of a whole series
// together with a window over its most recent values.
type History struct {
	stats  *Stats
	recent *Buffer
}

// NewHistory creates a new history keeping the given number of recent values.
func NewHistory(window int) *History {
	return &History{
		stats:  NewStats(),
		recent: NewBuffer(window),
	}
}

// Push adds a value to the history.
func (h *History) Push(v float64) {
	h.stats.Push(v)
	h.recent.Push(v)
}

// Stats returns the statistics over all values.
func (h *History) Stats() Stats {
	return *h.stats
}

// Recent returns the most recent values, oldest first.
func (h *History) Recent() []float64 {
	return h.recent.Get()
}

// Plateau checks if the recent window is full and its values vary less than the given threshold.
func (h *History) Plateau(threshold float64) bool {
	if !h.recent.Full() {
		return false
	}
	values := h.recent.Get()
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi-lo < threshold
}
