package ml

import (
	"errors"
	"math/rand"
	"time"
)

var (
	// InvalidTopologyErr is returned when the network shape does not match the data or the snapshot.
	InvalidTopologyErr = errors.New("invalid topology")
	// NoDataErr is returned when training is requested without any records.
	NoDataErr = errors.New("no data")
	// ContinuousAttributeErr is returned when a decision tree is requested over continuous fields.
	ContinuousAttributeErr = errors.New("continuous attribute")
	// NoClassFieldErr is returned when a decision tree is requested without a class field.
	NoClassFieldErr = errors.New("no class field")
)

// Mode defines if a network adjusts its weights or is used for inference only.
type Mode int

const (
	// Train mode mutates the weights on every step.
	Train Mode = iota
	// Locked mode keeps the weights frozen.
	Locked
)

func (m Mode) String() string {
	if m == Locked {
		return "locked"
	}
	return "train"
}

// Metadata is the training bookkeeping of a network.
type Metadata struct {
	Records int     `json:"records"`
	Passes  int     `json:"passes"`
	Error   float64 `json:"error"`
	Mode    Mode    `json:"mode"`
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func copyOf(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}
