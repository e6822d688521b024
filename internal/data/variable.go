package data

import (
	"strconv"
	"strings"
)

// Kind distinguishes the two variable variants.
type Kind int

const (
	// Continuous variables are range-scaled to a single value.
	Continuous Kind = iota
	// Discrete variables are one-of-N encoded over the labels seen so far.
	Discrete
)

func (k Kind) String() string {
	switch k {
	case Continuous:
		return "continuous"
	case Discrete:
		return "discrete"
	}
	return "unknown"
}

// ParseKind maps a schema type token to the variable kind.
// 'categorical' is an alias for 'discrete'.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "continuous":
		return Continuous, true
	case "discrete", "categorical":
		return Discrete, true
	}
	return Continuous, false
}

// Variable describes a single field of the records.
// Continuous variables keep a running min and max,
// discrete ones the distinct labels in the order they were first seen.
type Variable struct {
	name   string
	column int
	kind   Kind
	min    float64
	max    float64
	labels []string
	index  map[string]int
}

// NewContinuous creates a new continuous variable.
// NOTE : min and max start at 0, so the observed range always includes it.
func NewContinuous(name string) *Variable {
	return &Variable{
		name:   name,
		column: -1,
		kind:   Continuous,
	}
}

// NewDiscrete creates a new discrete (categorical) variable.
func NewDiscrete(name string) *Variable {
	return &Variable{
		name:   name,
		column: -1,
		kind:   Discrete,
		labels: make([]string, 0),
		index:  make(map[string]int),
	}
}

// Name returns the variable name.
func (v *Variable) Name() string {
	return v.name
}

// Column returns the position of the variable within a record.
func (v *Variable) Column() int {
	return v.column
}

// Kind returns the variable variant.
func (v *Variable) Kind() Kind {
	return v.kind
}

// IsCategorical returns true for discrete variables.
func (v *Variable) IsCategorical() bool {
	return v.kind == Discrete
}

// Min returns the smallest value observed.
func (v *Variable) Min() float64 {
	return v.min
}

// Max returns the largest value observed.
func (v *Variable) Max() float64 {
	return v.max
}

// Labels returns a copy of the labels seen so far, in first-seen order.
func (v *Variable) Labels() []string {
	labels := make([]string, len(v.labels))
	copy(labels, v.labels)
	return labels
}

// Label returns the label at the given one-of-N position.
func (v *Variable) Label(i int) string {
	return v.labels[i]
}

// Index returns the one-of-N position of the label, -1 if it was never seen.
func (v *Variable) Index(label string) int {
	if i, ok := v.index[label]; ok {
		return i
	}
	return -1
}

// ComputeStatistics updates the variable statistics with one observed value.
func (v *Variable) ComputeStatistics(raw string) error {
	switch v.kind {
	case Continuous:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		if f < v.min {
			v.min = f
		}
		if f > v.max {
			v.max = f
		}
	case Discrete:
		if _, ok := v.index[raw]; !ok {
			v.index[raw] = len(v.labels)
			v.labels = append(v.labels, raw)
		}
	}
	return nil
}

// NormalizedSize is the number of values the variable occupies in a normalized record.
func (v *Variable) NormalizedSize() int {
	if v.kind == Discrete {
		return len(v.labels)
	}
	return 1
}

// Normalize writes the normalized form of the raw value into out, starting at index at.
// It returns the index just past the written values,
// so that variables can be chained without knowing each others width.
func (v *Variable) Normalize(raw string, out []float64, at int) int {
	switch v.kind {
	case Discrete:
		index := v.Index(raw)
		for i := range v.labels {
			if i == index {
				out[at+i] = 1.0
			} else {
				out[at+i] = 0.0
			}
		}
		return at + len(v.labels)
	default:
		out[at] = v.scale(raw)
		return at + 1
	}
}

// scale maps the value onto [0,1] by dividing with the observed range.
// NOTE : the value is not shifted by min before the division.
func (v *Variable) scale(raw string) float64 {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	factor := v.max - v.min
	if factor == 0 {
		return 0
	}
	if f <= v.min {
		f = v.min
	} else if f >= v.max {
		f = v.max
	}
	s := f / factor
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Decode transforms the activations starting at the given index back into a displayable value.
// Discrete variables pick the label with the highest activation.
func (v *Variable) Decode(act []float64, start int) string {
	if v.kind != Discrete {
		return strconv.FormatFloat(act[start], 'g', -1, 64)
	}
	value := "0"
	max := -1.0
	for i := range v.labels {
		if act[start+i] > max {
			max = act[start+i]
			value = v.labels[i]
		}
	}
	return value
}

// String describes the variable, listing the labels for discrete ones.
func (v *Variable) String() string {
	if v.kind == Discrete {
		return v.name + "( " + strings.Join(v.labels, " ") + " )"
	}
	return v.name + "( <real> )"
}
