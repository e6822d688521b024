package math

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// Format formats a float based on the given precision
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// FormatAll formats a slice of floats with full precision, separated by spaces.
func FormatAll(ff []float64) string {
	s := ""
	for i, f := range ff {
		if i > 0 {
			s += " "
		}
		s += strconv.FormatFloat(f, 'g', -1, 64)
	}
	return s
}

// Clip bounds the value within [min,max].
func Clip(f, min, max float64) float64 {
	if f < min {
		return min
	}
	if f > max {
		return max
	}
	return f
}

// Entropy2 is the binary entropy in bits for the given positive and negative counts.
// NOTE : a pure or empty split has zero entropy
func Entropy2(p, n int) float64 {
	if p == 0 || n == 0 {
		return 0
	}
	return Entropy([]int{p, n})
}

// Entropy computes the entropy in bits of the distribution described by the given class counts.
// NOTE : it resolves to 0 for empty or pure distributions, never to NaN
func Entropy(counts []int) float64 {
	total := 0
	classes := 0
	for _, c := range counts {
		if c > 0 {
			total += c
			classes++
		}
	}
	if classes <= 1 {
		return 0
	}
	p := make([]float64, 0, classes)
	for _, c := range counts {
		if c > 0 {
			p = append(p, float64(c)/float64(total))
		}
	}
	return stat.Entropy(p) / math.Ln2
}
