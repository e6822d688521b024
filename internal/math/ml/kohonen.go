package ml

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/drakos74/free-learn/internal/api"
	learnmath "github.com/drakos74/free-learn/internal/math"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// KohonenConfig holds the annealing schedule of a kohonen map.
// FinalSigma is the fraction of the grid columns the neighbourhood width shrinks to.
type KohonenConfig struct {
	InitLearnRate  float64 `json:"init_learn_rate"`
	FinalLearnRate float64 `json:"final_learn_rate"`
	FinalSigma     float64 `json:"final_sigma"`
	MaxPasses      int     `json:"max_passes"`
	Seed           int64   `json:"seed"`
}

// DefaultKohonenConfig returns the default annealing schedule.
func DefaultKohonenConfig() KohonenConfig {
	return KohonenConfig{
		InitLearnRate:  1.0,
		FinalLearnRate: 0.05,
		FinalSigma:     0.20,
		MaxPasses:      1000,
	}
}

// Kohonen is a self organizing map over a rows x cols grid of output units.
type Kohonen struct {
	name string
	cfg  KohonenConfig
	sink api.Sink
	rnd  *rand.Rand

	data   [][]float64
	recInx int

	numInputs  int
	numOutputs int
	rows       int
	cols       int
	mode       Mode

	learnRate float64
	sigma     float64
	passes    int

	sumError   float64
	quantError float64

	winner      int
	input       []float64
	activations []float64
	weights     []float64
	distance    [][]int
	diff        []float64
}

// NewKohonen creates a new kohonen map without a grid.
func NewKohonen(name string, cfg KohonenConfig, sink api.Sink) *Kohonen {
	return &Kohonen{
		name: name,
		cfg:  cfg,
		sink: api.OrVoid(sink),
		rnd:  newRand(cfg.Seed),
		data: make([][]float64, 0),
	}
}

// CreateNetwork allocates the grid, the static distance table and random weights in [0.4,0.6].
func (k *Kohonen) CreateNetwork(numInputs, rows, cols int) error {
	if numInputs <= 0 || rows <= 0 || cols <= 0 {
		return fmt.Errorf("map %d-%dx%d: %w", numInputs, rows, cols, InvalidTopologyErr)
	}
	k.numInputs = numInputs
	k.rows = rows
	k.cols = cols
	k.numOutputs = rows * cols
	k.mode = Train
	k.passes = 0
	k.recInx = 0
	k.winner = 0
	k.sumError = 0
	k.quantError = 0

	k.input = make([]float64, numInputs)
	k.diff = make([]float64, numInputs)
	k.activations = make([]float64, k.numOutputs)
	k.weights = make([]float64, k.numOutputs*numInputs)
	for i := range k.weights {
		k.weights[i] = 0.4 + 0.2*k.rnd.Float64()
	}
	k.distance = distanceTable(k.numOutputs, cols)
	k.anneal()

	log.Debug().
		Str("map", k.name).
		Int("inputs", numInputs).
		Int("rows", rows).
		Int("cols", cols).
		Msg("created kohonen map")
	return nil
}

// distanceTable computes the fourth power distance between every pair of units,
// with units laid out row by row on the given number of columns.
func distanceTable(units, cols int) [][]int {
	table := make([][]int, units)
	for i := 0; i < units; i++ {
		table[i] = make([]int, units)
		xi, yi := i%cols, i/cols
		for j := 0; j < units; j++ {
			dx := xi - j%cols
			dy := yi - j/cols
			table[i][j] = dx*dx*dx*dx + dy*dy*dy*dy
		}
	}
	return table
}

// anneal moves learn rate and neighbourhood width along the geometric schedule.
func (k *Kohonen) anneal() {
	ratio := 1.0
	if k.cfg.MaxPasses > 0 {
		ratio = learnmath.Clip(float64(k.passes)/float64(k.cfg.MaxPasses), 0, 1)
	}
	k.learnRate = k.cfg.InitLearnRate * math.Pow(k.cfg.FinalLearnRate/k.cfg.InitLearnRate, ratio)
	k.sigma = float64(k.cols) * math.Pow(k.cfg.FinalSigma, ratio)
}

// SetData assigns the normalized records to cluster.
// The first inputs fields of every record are used.
func (k *Kohonen) SetData(records [][]float64) error {
	if k.numOutputs == 0 {
		return fmt.Errorf("no map created for '%s': %w", k.name, InvalidTopologyErr)
	}
	for i, record := range records {
		if len(record) < k.numInputs {
			return fmt.Errorf("record %d has %d fields but map expects %d: %w",
				i, len(record), k.numInputs, InvalidTopologyErr)
		}
	}
	k.data = records
	k.recInx = 0
	k.sumError = 0
	return nil
}

// Step processes the next record, cycling over the data.
// In training mode all unit weights are pulled towards the input,
// scaled by the neighbourhood kernel around the winner.
func (k *Kohonen) Step() error {
	if k.numOutputs == 0 {
		return fmt.Errorf("no map created for '%s': %w", k.name, InvalidTopologyErr)
	}
	if len(k.data) == 0 {
		return fmt.Errorf("no records for '%s': %w", k.name, NoDataErr)
	}
	k.recInx = k.recInx % len(k.data)
	copy(k.input, k.data[k.recInx][:k.numInputs])
	k.recInx++

	k.winner = k.compete(k.input, k.activations, k.diff)
	k.sumError += math.Sqrt(k.activations[k.winner])

	if k.mode == Train {
		k.adjustWeights()
	}

	if k.recInx == len(k.data) {
		k.quantError = k.sumError / float64(len(k.data))
		k.sumError = 0
		if k.mode == Train {
			k.passes++
			k.anneal()
		}
	}
	return nil
}

// compete fills the squared distance of every unit to the input and returns the closest one.
func (k *Kohonen) compete(input, act, diff []float64) int {
	for i := 0; i < k.numOutputs; i++ {
		w := k.weights[i*k.numInputs : (i+1)*k.numInputs]
		floats.SubTo(diff, input, w)
		act[i] = floats.Dot(diff, diff)
	}
	return floats.MinIdx(act)
}

func (k *Kohonen) adjustWeights() {
	twoSigmaSq := 2 * k.sigma * k.sigma
	for i := 0; i < k.numOutputs; i++ {
		scale := k.learnRate * math.Exp(-float64(k.distance[k.winner][i])/twoSigmaSq)
		w := k.weights[i*k.numInputs : (i+1)*k.numInputs]
		for j := range w {
			w[j] += scale * (k.input[j] - w[j])
		}
	}
}

// Cluster returns the winning unit for the given input without changing the map.
func (k *Kohonen) Cluster(input []float64) (int, error) {
	if k.numOutputs == 0 || len(input) < k.numInputs {
		return 0, fmt.Errorf("input of size %d for %d inputs: %w", len(input), k.numInputs, InvalidTopologyErr)
	}
	act := make([]float64, k.numOutputs)
	diff := make([]float64, k.numInputs)
	return k.compete(input[:k.numInputs], act, diff), nil
}

// Winner returns the winning unit of the last step.
func (k *Kohonen) Winner() int {
	return k.winner
}

// Position returns the grid row and column of the given unit.
func (k *Kohonen) Position(unit int) (int, int) {
	return unit / k.cols, unit % k.cols
}

// Distance returns the fourth power grid distance between two units.
func (k *Kohonen) Distance(i, j int) int {
	return k.distance[i][j]
}

// Weights returns a copy of the weight vector of the given unit.
func (k *Kohonen) Weights(unit int) []float64 {
	return copyOf(k.weights[unit*k.numInputs : (unit+1)*k.numInputs])
}

// LearnRate returns the current learn rate.
func (k *Kohonen) LearnRate() float64 {
	return k.learnRate
}

// Sigma returns the current neighbourhood width.
func (k *Kohonen) Sigma() float64 {
	return k.sigma
}

// SetMode switches between training and locked mode.
func (k *Kohonen) SetMode(mode Mode) {
	k.mode = mode
}

// Mode returns the current mode.
func (k *Kohonen) Mode() Mode {
	return k.mode
}

// Lock freezes the weights.
func (k *Kohonen) Lock() {
	k.SetMode(Locked)
}

// IsLocked checks if the weights are frozen.
func (k *Kohonen) IsLocked() bool {
	return k.mode == Locked
}

// Error returns the average distance of the records to their winning unit over the last full pass.
func (k *Kohonen) Error() float64 {
	return k.quantError
}

// Passes returns the number of training passes completed.
func (k *Kohonen) Passes() int {
	return k.passes
}

// Records returns the number of records the map cycles over.
func (k *Kohonen) Records() int {
	return len(k.data)
}

// Metadata returns the training bookkeeping.
func (k *Kohonen) Metadata() Metadata {
	return Metadata{
		Records: len(k.data),
		Passes:  k.passes,
		Error:   k.quantError,
		Mode:    k.mode,
	}
}

// Display emits the last input, the unit distances and the winner on the sink.
func (k *Kohonen) Display() {
	msg := api.NewMessage("input =").Add(learnmath.FormatAll(k.input))
	msg.Add("winner =").Addf("%d", k.winner)
	msg.Send(k.sink)
	k.sink.Emit("distances = " + learnmath.FormatAll(k.activations))
}

func (k *Kohonen) String() string {
	return fmt.Sprintf("Kohonen Feature Map: %s"+
		"\n\tNum. of units in the input layer: %d"+
		"\n\tNum. of units in the output layer: %d (%dx%d)",
		k.name, k.numInputs, k.numOutputs, k.rows, k.cols)
}
