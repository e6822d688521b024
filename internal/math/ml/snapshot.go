package ml

import (
	"fmt"

	"github.com/drakos74/go-ex-machina/xmath"
)

// BackPropSnapshot is the serializable state of a back propagation network.
type BackPropSnapshot struct {
	Name       string         `json:"name"`
	Config     BackPropConfig `json:"config"`
	Inputs     int            `json:"inputs"`
	Hidden     int            `json:"hidden"`
	Outputs    int            `json:"outputs"`
	Weights    []float64      `json:"weights"`
	Thresholds []float64      `json:"thresholds"`
	Meta       Metadata       `json:"meta"`
}

// KohonenSnapshot is the serializable state of a kohonen map.
type KohonenSnapshot struct {
	Name    string        `json:"name"`
	Config  KohonenConfig `json:"config"`
	Inputs  int           `json:"inputs"`
	Rows    int           `json:"rows"`
	Cols    int           `json:"cols"`
	Weights []float64     `json:"weights"`
	Meta    Metadata      `json:"meta"`
}

// Snapshot captures the topology, weights and bookkeeping of the network.
func (bp *BackProp) Snapshot() BackPropSnapshot {
	return BackPropSnapshot{
		Name:       bp.name,
		Config:     bp.cfg,
		Inputs:     bp.numInputs,
		Hidden:     bp.numHidden,
		Outputs:    bp.numOutputs,
		Weights:    copyOf(bp.weights),
		Thresholds: copyOf(bp.thresholds),
		Meta:       bp.Metadata(),
	}
}

// validate checks the snapshot against its own topology and the given records.
func (s BackPropSnapshot) validate(records [][]float64) error {
	if s.Inputs <= 0 || s.Hidden <= 0 || s.Outputs <= 0 {
		return fmt.Errorf("snapshot '%s' network %d-%d-%d: %w", s.Name, s.Inputs, s.Hidden, s.Outputs, InvalidTopologyErr)
	}
	weights := s.Inputs*s.Hidden + s.Hidden*s.Outputs
	units := s.Inputs + s.Hidden + s.Outputs
	if len(s.Weights) != weights || len(s.Thresholds) != units {
		return fmt.Errorf("snapshot '%s' has %d weights and %d thresholds but network %d-%d-%d expects %d and %d: %w",
			s.Name, len(s.Weights), len(s.Thresholds), s.Inputs, s.Hidden, s.Outputs, weights, units, InvalidTopologyErr)
	}
	width := s.Inputs + s.Outputs
	for i, record := range records {
		if len(record) != width {
			return fmt.Errorf("record %d has %d fields but snapshot '%s' expects %d: %w",
				i, len(record), s.Name, width, InvalidTopologyErr)
		}
	}
	return nil
}

// Restore re-creates the network from a snapshot.
// Data is not part of the snapshot, records already set are validated against the restored topology.
// A rejected snapshot leaves the network untouched.
func (bp *BackProp) Restore(s BackPropSnapshot) error {
	if err := s.validate(bp.data); err != nil {
		return err
	}
	bp.cfg = s.Config
	if err := bp.CreateNetwork(s.Inputs, s.Hidden, s.Outputs); err != nil {
		return err
	}
	if err := bp.SetData(bp.data); err != nil {
		return err
	}
	bp.weights = xmath.Vec(len(s.Weights)).With(s.Weights...)
	bp.thresholds = xmath.Vec(len(s.Thresholds)).With(s.Thresholds...)
	bp.passes = s.Meta.Passes
	bp.aveRMSError = s.Meta.Error
	bp.mode = s.Meta.Mode
	return nil
}

// Snapshot captures the grid, weights and bookkeeping of the map.
func (k *Kohonen) Snapshot() KohonenSnapshot {
	return KohonenSnapshot{
		Name:    k.name,
		Config:  k.cfg,
		Inputs:  k.numInputs,
		Rows:    k.rows,
		Cols:    k.cols,
		Weights: copyOf(k.weights),
		Meta:    k.Metadata(),
	}
}

func (s KohonenSnapshot) validate(records [][]float64) error {
	if s.Inputs <= 0 || s.Rows <= 0 || s.Cols <= 0 {
		return fmt.Errorf("snapshot '%s' map %d-%dx%d: %w", s.Name, s.Inputs, s.Rows, s.Cols, InvalidTopologyErr)
	}
	if weights := s.Rows * s.Cols * s.Inputs; len(s.Weights) != weights {
		return fmt.Errorf("snapshot '%s' has %d weights but map %d-%dx%d expects %d: %w",
			s.Name, len(s.Weights), s.Inputs, s.Rows, s.Cols, weights, InvalidTopologyErr)
	}
	for i, record := range records {
		if len(record) < s.Inputs {
			return fmt.Errorf("record %d has %d fields but snapshot '%s' expects %d: %w",
				i, len(record), s.Name, s.Inputs, InvalidTopologyErr)
		}
	}
	return nil
}

// Restore re-creates the map from a snapshot.
// Records already set are validated against the restored topology.
// A rejected snapshot leaves the map untouched.
func (k *Kohonen) Restore(s KohonenSnapshot) error {
	if err := s.validate(k.data); err != nil {
		return err
	}
	k.cfg = s.Config
	if err := k.CreateNetwork(s.Inputs, s.Rows, s.Cols); err != nil {
		return err
	}
	if err := k.SetData(k.data); err != nil {
		return err
	}
	copy(k.weights, s.Weights)
	k.passes = s.Meta.Passes
	k.quantError = s.Meta.Error
	k.mode = s.Meta.Mode
	k.anneal()
	return nil
}
