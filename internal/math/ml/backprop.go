package ml

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/drakos74/free-learn/internal/api"
	learnmath "github.com/drakos74/free-learn/internal/math"
	xml "github.com/drakos74/go-ex-machina/xmachina/ml"
	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/rs/zerolog/log"
)

// BackPropConfig holds the control parameters of a back propagation network.
// LearnRate scales the weight gradients,
// Momentum is the fraction of the previous weight change carried into the next one,
// Tolerance is the output error below which an output is considered correct.
type BackPropConfig struct {
	LearnRate float64 `json:"learn_rate"`
	Momentum  float64 `json:"momentum"`
	Tolerance float64 `json:"tolerance"`
	Seed      int64   `json:"seed"`
}

// DefaultBackPropConfig returns the default control parameters.
func DefaultBackPropConfig() BackPropConfig {
	return BackPropConfig{
		LearnRate: 0.2,
		Momentum:  0.7,
		Tolerance: 0.1,
	}
}

// BackProp is a feed-forward network with a single hidden layer,
// trained with back propagation and momentum.
// Units are laid out as inputs, hidden, outputs in a single activation vector.
type BackProp struct {
	name string
	cfg  BackPropConfig
	sink api.Sink
	rnd  *rand.Rand

	data   [][]float64
	recInx int

	sumSquaredError float64
	aveRMSError     float64
	passes          int

	numInputs  int
	numHidden  int
	numOutputs int
	numUnits   int
	mode       Mode

	activations xmath.Vector
	weights     xmath.Vector
	wDerivs     xmath.Vector
	wDeltas     xmath.Vector
	thresholds  xmath.Vector
	tDerivs     xmath.Vector
	tDeltas     xmath.Vector
	teach       xmath.Vector
	errors      xmath.Vector
	deltas      xmath.Vector
}

// NewBackProp creates a new back propagation network without a topology.
func NewBackProp(name string, cfg BackPropConfig, sink api.Sink) *BackProp {
	return &BackProp{
		name: name,
		cfg:  cfg,
		sink: api.OrVoid(sink),
		rnd:  newRand(cfg.Seed),
		data: make([][]float64, 0),
	}
}

// CreateNetwork declares the topology and randomizes the weights.
func (bp *BackProp) CreateNetwork(numInputs, numHidden, numOutputs int) error {
	if numInputs <= 0 || numHidden <= 0 || numOutputs <= 0 {
		return fmt.Errorf("network %d-%d-%d: %w", numInputs, numHidden, numOutputs, InvalidTopologyErr)
	}
	bp.numInputs = numInputs
	bp.numHidden = numHidden
	bp.numOutputs = numOutputs
	bp.numUnits = numInputs + numHidden + numOutputs
	numWeights := numInputs*numHidden + numHidden*numOutputs

	bp.mode = Train
	bp.aveRMSError = 0
	bp.sumSquaredError = 0
	bp.passes = 0
	bp.recInx = 0

	bp.activations = xmath.Vec(bp.numUnits)
	bp.weights = xmath.Vec(numWeights)
	bp.wDerivs = xmath.Vec(numWeights)
	bp.wDeltas = xmath.Vec(numWeights)
	bp.thresholds = xmath.Vec(bp.numUnits)
	bp.tDerivs = xmath.Vec(bp.numUnits)
	bp.tDeltas = xmath.Vec(bp.numUnits)
	bp.teach = xmath.Vec(numOutputs)
	bp.deltas = xmath.Vec(bp.numUnits)
	bp.errors = xmath.Vec(bp.numUnits)

	log.Debug().
		Str("network", bp.name).
		Int("units", bp.numUnits).
		Int("inputs", numInputs).
		Int("hidden", numHidden).
		Int("outputs", numOutputs).
		Msg("created back propagation network")

	bp.Reset()
	return nil
}

// Reset randomizes weights and thresholds within [-0.5,0.5] and clears all accumulated changes.
func (bp *BackProp) Reset() {
	for i := range bp.weights {
		bp.weights[i] = 0.5 - bp.rnd.Float64()
		bp.wDeltas[i] = 0
		bp.wDerivs[i] = 0
	}
	for i := range bp.thresholds {
		bp.thresholds[i] = 0.5 - bp.rnd.Float64()
		bp.tDeltas[i] = 0
		bp.tDerivs[i] = 0
	}
}

// SetData assigns the normalized records to train on.
// Each record must hold exactly the inputs followed by the target outputs.
func (bp *BackProp) SetData(records [][]float64) error {
	if bp.numUnits == 0 {
		return fmt.Errorf("no network created for '%s': %w", bp.name, InvalidTopologyErr)
	}
	width := bp.numInputs + bp.numOutputs
	for i, record := range records {
		if len(record) != width {
			return fmt.Errorf("record %d has %d fields but network %d-%d-%d expects %d: %w",
				i, len(record), bp.numInputs, bp.numHidden, bp.numOutputs, width, InvalidTopologyErr)
		}
	}
	bp.data = records
	bp.recInx = 0
	bp.sumSquaredError = 0
	return nil
}

// Step processes the next record, cycling over the data.
// It always runs the forward and backward pass, but only adjusts the weights in training mode.
func (bp *BackProp) Step() error {
	if bp.numUnits == 0 {
		return fmt.Errorf("no network created for '%s': %w", bp.name, InvalidTopologyErr)
	}
	if len(bp.data) == 0 {
		return fmt.Errorf("no records for '%s': %w", bp.name, NoDataErr)
	}
	bp.readInputs()
	bp.computeOutputs(bp.activations)
	training := bp.mode == Train
	bp.computeError(training)
	if training {
		bp.adjustWeights()
	}
	// at the end of an epoch compute the average RMS error
	if bp.recInx == len(bp.data) {
		if training {
			bp.passes++
		}
		bp.aveRMSError = math.Sqrt(bp.sumSquaredError / float64(len(bp.data)*bp.numOutputs))
		bp.sumSquaredError = 0
	}
	return nil
}

func (bp *BackProp) readInputs() {
	bp.recInx = bp.recInx % len(bp.data)
	record := bp.data[bp.recInx]
	copy(bp.activations[:bp.numInputs], record[:bp.numInputs])
	copy(bp.teach, record[bp.numInputs:bp.numInputs+bp.numOutputs])
	bp.recInx++
}

// computeOutputs runs the forward pass on the given activations,
// the inputs need to be set already.
func (bp *BackProp) computeOutputs(act xmath.Vector) {
	firstHidden := bp.numInputs
	firstOut := bp.numInputs + bp.numHidden

	inputs := act[:firstHidden]
	inx := 0
	for i := firstHidden; i < firstOut; i++ {
		sum := bp.thresholds[i] + inputs.Dot(bp.weights[inx:inx+bp.numInputs])
		act[i] = xml.Sigmoid.F(sum)
		inx += bp.numInputs
	}

	hidden := act[firstHidden:firstOut]
	for i := firstOut; i < bp.numUnits; i++ {
		sum := bp.thresholds[i] + hidden.Dot(bp.weights[inx:inx+bp.numHidden])
		act[i] = xml.Sigmoid.F(sum)
		inx += bp.numHidden
	}
}

// computeError computes the output and hidden deltas
// and accumulates the weight and threshold derivatives if requested.
func (bp *BackProp) computeError(accumulate bool) {
	firstHidden := bp.numInputs
	firstOut := bp.numInputs + bp.numHidden

	for i := firstHidden; i < bp.numUnits; i++ {
		bp.errors[i] = 0
	}

	for i := firstOut; i < bp.numUnits; i++ {
		bp.errors[i] = bp.teach[i-firstOut] - bp.activations[i]
		bp.sumSquaredError += bp.errors[i] * bp.errors[i]
		// close enough
		if math.Abs(bp.errors[i]) < bp.cfg.Tolerance {
			bp.errors[i] = 0
		}
		bp.deltas[i] = bp.errors[i] * xml.Sigmoid.D(bp.activations[i])
	}

	// hidden layer errors
	winx := bp.numInputs * bp.numHidden
	for i := firstOut; i < bp.numUnits; i++ {
		for j := firstHidden; j < firstOut; j++ {
			if accumulate {
				bp.wDerivs[winx] += bp.deltas[i] * bp.activations[j]
			}
			bp.errors[j] += bp.weights[winx] * bp.deltas[i]
			winx++
		}
		if accumulate {
			bp.tDerivs[i] += bp.deltas[i]
		}
	}

	for i := firstHidden; i < firstOut; i++ {
		bp.deltas[i] = bp.errors[i] * xml.Sigmoid.D(bp.activations[i])
	}

	if !accumulate {
		return
	}

	// input to hidden weights
	winx = 0
	for i := firstHidden; i < firstOut; i++ {
		for j := 0; j < firstHidden; j++ {
			bp.wDerivs[winx] += bp.deltas[i] * bp.activations[j]
			winx++
		}
		bp.tDerivs[i] += bp.deltas[i]
	}
}

func (bp *BackProp) adjustWeights() {
	for i := range bp.weights {
		bp.wDeltas[i] = bp.cfg.LearnRate*bp.wDerivs[i] + bp.cfg.Momentum*bp.wDeltas[i]
		bp.weights[i] += bp.wDeltas[i]
		bp.wDerivs[i] = 0
	}
	for i := bp.numInputs; i < bp.numUnits; i++ {
		bp.tDeltas[i] = bp.cfg.LearnRate*bp.tDerivs[i] + bp.cfg.Momentum*bp.tDeltas[i]
		bp.thresholds[i] += bp.tDeltas[i]
		bp.tDerivs[i] = 0
	}
}

// Outputs runs a forward pass for the given input without touching the network state.
func (bp *BackProp) Outputs(input []float64) ([]float64, error) {
	if bp.numUnits == 0 || len(input) < bp.numInputs {
		return nil, fmt.Errorf("input of size %d for %d inputs: %w", len(input), bp.numInputs, InvalidTopologyErr)
	}
	act := xmath.Vec(bp.numUnits)
	copy(act[:bp.numInputs], input[:bp.numInputs])
	bp.computeOutputs(act)
	return copyOf(act[bp.numInputs+bp.numHidden:]), nil
}

// Predict returns the activation of the first output unit for the given input.
// It only makes sense for networks with a single continuous output.
func (bp *BackProp) Predict(input []float64) (float64, error) {
	out, err := bp.Outputs(input)
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

// SetMode switches between training and locked mode.
func (bp *BackProp) SetMode(mode Mode) {
	bp.mode = mode
}

// Mode returns the current mode.
func (bp *BackProp) Mode() Mode {
	return bp.mode
}

// Lock freezes the weights.
func (bp *BackProp) Lock() {
	bp.SetMode(Locked)
}

// IsLocked checks if the weights are frozen.
func (bp *BackProp) IsLocked() bool {
	return bp.mode == Locked
}

// Error returns the average RMS error of the last full pass.
func (bp *BackProp) Error() float64 {
	return bp.aveRMSError
}

// Passes returns the number of training passes completed.
func (bp *BackProp) Passes() int {
	return bp.passes
}

// Records returns the number of records the network cycles over.
func (bp *BackProp) Records() int {
	return len(bp.data)
}

// Current returns the index of the last processed record.
func (bp *BackProp) Current() int {
	if bp.recInx == 0 {
		return len(bp.data) - 1
	}
	return bp.recInx - 1
}

// Activations returns a copy of all unit activations.
func (bp *BackProp) Activations() []float64 {
	return copyOf(bp.activations)
}

// FirstOutput is the index of the first output unit within the activations.
func (bp *BackProp) FirstOutput() int {
	return bp.numInputs + bp.numHidden
}

// Topology returns the number of input, hidden and output units.
func (bp *BackProp) Topology() (int, int, int) {
	return bp.numInputs, bp.numHidden, bp.numOutputs
}

// Config returns the control parameters.
func (bp *BackProp) Config() BackPropConfig {
	return bp.cfg
}

// Metadata returns the training bookkeeping.
func (bp *BackProp) Metadata() Metadata {
	return Metadata{
		Records: len(bp.data),
		Passes:  bp.passes,
		Error:   bp.aveRMSError,
		Mode:    bp.mode,
	}
}

// Display emits the current activations on the sink.
func (bp *BackProp) Display() {
	bp.sink.Emit("activations = " + learnmath.FormatAll(bp.activations))
}

func (bp *BackProp) String() string {
	return fmt.Sprintf("Back Propagation Neural Net: %s"+
		"\n\tNum. of units in the input layer: %d"+
		"\n\tNum. of units in the hidden layer: %d"+
		"\n\tNum. of units in the output layer: %d",
		bp.name, bp.numInputs, bp.numHidden, bp.numOutputs)
}
