package learn

import (
	"fmt"

	"github.com/drakos74/free-learn/internal/api"
	"github.com/drakos74/free-learn/internal/data"
	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/evaluation"
)

// NewBackProp creates a back propagation network for the dataset.
// The class field is the output layer and all other normalized fields are inputs,
// a hidden layer size of 0 defaults to the number of inputs.
func NewBackProp(ds *data.Dataset, hidden int, cfg ml.BackPropConfig, sink api.Sink) (*ml.BackProp, error) {
	outputs := ds.ClassFieldSize()
	inputs := ds.NormalizedRecordSize() - outputs
	if hidden <= 0 {
		hidden = inputs
	}
	if outputs == 0 {
		return nil, fmt.Errorf("dataset '%s' has no class field to learn: %w", ds.Name(), ml.InvalidTopologyErr)
	}
	if _, ok := ds.Variable(data.ClassField); ok && !isLast(ds) {
		return nil, fmt.Errorf("class field of '%s' must be the last field: %w", ds.Name(), ml.InvalidTopologyErr)
	}
	bp := ml.NewBackProp(ds.Name(), cfg, sink)
	if err := bp.CreateNetwork(inputs, hidden, outputs); err != nil {
		return nil, err
	}
	if err := bp.SetData(ds.Normalized()); err != nil {
		return nil, err
	}
	return bp, nil
}

func isLast(ds *data.Dataset) bool {
	fields := ds.Fields()
	return len(fields) > 0 && fields[len(fields)-1].Name() == data.ClassField
}

// NewKohonen creates a kohonen map over all normalized fields of the dataset.
func NewKohonen(ds *data.Dataset, rows, cols int, cfg ml.KohonenConfig, sink api.Sink) (*ml.Kohonen, error) {
	k := ml.NewKohonen(ds.Name(), cfg, sink)
	if err := k.CreateNetwork(ds.NormalizedRecordSize(), rows, cols); err != nil {
		return nil, err
	}
	if err := k.SetData(ds.Normalized()); err != nil {
		return nil, err
	}
	return k, nil
}

// Classify runs one locked pass of the network over the dataset,
// decoding the outputs back into class values.
func Classify(bp *ml.BackProp, ds *data.Dataset, sink api.Sink) (evaluation.ConfusionMatrix, error) {
	sink = api.OrVoid(sink)
	bp.SetMode(ml.Locked)
	matrix := make(evaluation.ConfusionMatrix)
	for r := 0; r < bp.Records(); r++ {
		if err := bp.Step(); err != nil {
			return nil, fmt.Errorf("could not classify record %d: %w", r, err)
		}
		desired, _ := ds.ClassFieldValue(bp.Current())
		actual, _ := ds.DecodeClassField(bp.Activations(), bp.FirstOutput())
		api.NewMessage(fmt.Sprintf("Record %d:", bp.Current())).
			Add("Desired = " + desired).
			Add("Actual = " + actual).
			Send(sink)
		if _, ok := matrix[desired]; !ok {
			matrix[desired] = make(map[string]int)
		}
		matrix[desired][actual]++
	}
	return matrix, nil
}

// Assign runs one locked pass of the map over its records and returns the winning unit for each of them.
func Assign(k *ml.Kohonen, sink api.Sink) ([]int, error) {
	sink = api.OrVoid(sink)
	k.SetMode(ml.Locked)
	clusters := make([]int, k.Records())
	for r := range clusters {
		if err := k.Step(); err != nil {
			return nil, fmt.Errorf("could not assign record %d: %w", r, err)
		}
		clusters[r] = k.Winner()
		row, col := k.Position(clusters[r])
		api.Emitf(sink, "Record %d: cluster %d (%d,%d)", r, clusters[r], row, col)
	}
	return clusters, nil
}

// BuildTree builds the decision tree for a categorical dataset,
// renders it on the sink and evaluates it against the training records.
func BuildTree(ds *data.Dataset, sink api.Sink) (*ml.Node, evaluation.ConfusionMatrix, error) {
	sink = api.OrVoid(sink)
	tree, attributes, err := ml.TreeFor(ds, sink)
	if err != nil {
		return nil, nil, err
	}
	root := tree.BuildAll(ds.Raw(), attributes)
	sink.Emit("")
	sink.Emit("DecisionTree -- classVar = " + tree.Class().Name)
	root.Render(sink, "")
	matrix := tree.Evaluate(root, ds.Raw(), attributes)
	log.Info().
		Str("dataset", ds.Name()).
		Float64("accuracy", ml.Accuracy(matrix)).
		Msg("evaluated decision tree")
	return root, matrix, nil
}
