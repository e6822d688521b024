package ml

import (
	"fmt"

	"github.com/drakos74/free-learn/internal/api"
	"github.com/drakos74/free-learn/internal/data"
	learnmath "github.com/drakos74/free-learn/internal/math"
	"github.com/rs/zerolog/log"
	"github.com/sjwhitworth/golearn/evaluation"
)

// DefaultLabel is the label of the root default node when no examples are available.
const DefaultLabel = "default"

// Attribute is a categorical column of the raw records.
type Attribute struct {
	Name   string   `json:"name"`
	Column int      `json:"column"`
	Values []string `json:"values"`
}

// AttributeOf creates the attribute for a discrete variable.
func AttributeOf(v *data.Variable) Attribute {
	return Attribute{
		Name:   v.Name(),
		Column: v.Column(),
		Values: v.Labels(),
	}
}

// DecisionTree builds ID3 decision trees over categorical records.
// Records are raw string rows, the class attribute points to the column holding the class value.
type DecisionTree struct {
	name  string
	class Attribute
	sink  api.Sink
}

// NewDecisionTree creates a new tree builder for the given class attribute.
func NewDecisionTree(name string, class Attribute, sink api.Sink) *DecisionTree {
	return &DecisionTree{
		name:  name,
		class: class,
		sink:  api.OrVoid(sink),
	}
}

// TreeFor creates a tree builder from a loaded dataset,
// together with all non-class attributes in schema order.
func TreeFor(ds *data.Dataset, sink api.Sink) (*DecisionTree, []Attribute, error) {
	if !ds.IsCategorical() {
		return nil, nil, fmt.Errorf("dataset '%s': %w", ds.Name(), ContinuousAttributeErr)
	}
	classVar, ok := ds.ClassField()
	if !ok {
		return nil, nil, fmt.Errorf("dataset '%s': %w", ds.Name(), NoClassFieldErr)
	}
	attributes := make([]Attribute, 0)
	for _, v := range ds.Fields() {
		if v.Name() == data.ClassField {
			continue
		}
		attributes = append(attributes, AttributeOf(v))
	}
	return NewDecisionTree(ds.Name(), AttributeOf(classVar), sink), attributes, nil
}

// Class returns the class attribute.
func (t *DecisionTree) Class() Attribute {
	return t.class
}

// Build recursively creates the tree for the given examples.
// Attributes are consumed in the given order, the first attribute with the best gain wins.
func (t *DecisionTree) Build(examples [][]string, attributes []Attribute, def *Node) *Node {
	if len(examples) == 0 {
		return def
	}
	if t.identical(examples) {
		return NewNode(examples[0][t.class.Column])
	}
	majority := t.Majority(examples)
	if len(attributes) == 0 {
		return NewNode(majority)
	}

	best := t.choose(examples, attributes)
	remaining := make([]Attribute, 0, len(attributes)-1)
	for i, attr := range attributes {
		if i != best {
			remaining = append(remaining, attr)
		}
	}

	attr := attributes[best]
	tree := NewNode(attr.Name)
	for _, value := range attr.Values {
		subset := t.Subset(examples, attr, value)
		child := t.Build(subset, remaining, NewNode(majority))
		tree.AddChild(child, attr.Name+"="+value)
	}
	return tree
}

// BuildAll builds the tree over all examples with a root default node.
func (t *DecisionTree) BuildAll(examples [][]string, attributes []Attribute) *Node {
	root := t.Build(examples, attributes, NewNode(DefaultLabel))
	log.Info().
		Str("tree", t.name).
		Str("class", t.class.Name).
		Int("examples", len(examples)).
		Int("attributes", len(attributes)).
		Int("depth", root.Depth()).
		Msg("built decision tree")
	return root
}

func (t *DecisionTree) identical(examples [][]string) bool {
	value := examples[0][t.class.Column]
	for _, example := range examples[1:] {
		if example[t.class.Column] != value {
			return false
		}
	}
	return true
}

func (t *DecisionTree) choose(examples [][]string, attributes []Attribute) int {
	info := t.Info(examples)
	t.sink.Emit(fmt.Sprintf("Info = %v", info))
	best := 0
	bestGain := -1.0
	for i, attr := range attributes {
		gain := info - t.Remainder(examples, attr)
		t.sink.Emit(fmt.Sprintf("%s gain = %v", attr.Name, gain))
		if gain > bestGain {
			bestGain = gain
			best = i
		}
	}
	t.sink.Emit("Choosing best variable: " + attributes[best].Name)
	return best
}

// Counts returns the number of examples per class value.
// Class values not declared in the class attribute are appended in order of appearance.
func (t *DecisionTree) Counts(examples [][]string) ([]string, []int) {
	values := make([]string, len(t.class.Values))
	copy(values, t.class.Values)
	index := make(map[string]int, len(values))
	for i, v := range values {
		index[v] = i
	}
	counts := make([]int, len(values))
	for _, example := range examples {
		v := example[t.class.Column]
		i, ok := index[v]
		if !ok {
			i = len(values)
			index[v] = i
			values = append(values, v)
			counts = append(counts, 0)
		}
		counts[i]++
	}
	return values, counts
}

// Majority returns the most frequent class value, the first one in case of a tie.
func (t *DecisionTree) Majority(examples [][]string) string {
	values, counts := t.Counts(examples)
	if len(values) == 0 {
		return ""
	}
	maxInx := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[maxInx] {
			maxInx = i
		}
	}
	return values[maxInx]
}

// Info returns the class entropy of the examples in bits.
func (t *DecisionTree) Info(examples [][]string) float64 {
	_, counts := t.Counts(examples)
	return learnmath.Entropy(counts)
}

// Remainder returns the expected entropy after splitting the examples on the attribute.
func (t *DecisionTree) Remainder(examples [][]string, attr Attribute) float64 {
	if len(examples) == 0 {
		return 0
	}
	total := float64(len(examples))
	sum := 0.0
	for _, value := range attr.Values {
		subset := filter(examples, attr, value)
		if len(subset) == 0 {
			continue
		}
		sum += float64(len(subset)) / total * t.Info(subset)
	}
	return sum
}

// Gain returns the information gain of splitting the examples on the attribute.
func (t *DecisionTree) Gain(examples [][]string, attr Attribute) float64 {
	return t.Info(examples) - t.Remainder(examples, attr)
}

// Subset returns the examples holding the given value for the attribute.
func (t *DecisionTree) Subset(examples [][]string, attr Attribute, value string) [][]string {
	subset := filter(examples, attr, value)
	t.sink.Emit(fmt.Sprintf(" Subset - there are %d records with %s = %s", len(subset), attr.Name, value))
	return subset
}

func filter(examples [][]string, attr Attribute, value string) [][]string {
	subset := make([][]string, 0)
	for _, example := range examples {
		if example[attr.Column] == value {
			subset = append(subset, example)
		}
	}
	return subset
}

// Classify returns the class the tree assigns to the raw record.
func (t *DecisionTree) Classify(root *Node, record []string, attributes []Attribute) (string, bool) {
	columns := make(map[string]int, len(attributes))
	for _, attr := range attributes {
		columns[attr.Name] = attr.Column
	}
	return root.Classify(func(name string) (string, bool) {
		c, ok := columns[name]
		if !ok || c >= len(record) {
			return "", false
		}
		return record[c], true
	})
}

// Evaluate classifies every example and collects the outcome against the actual class.
// Examples the tree cannot classify are counted under the root default label.
func (t *DecisionTree) Evaluate(root *Node, examples [][]string, attributes []Attribute) evaluation.ConfusionMatrix {
	matrix := make(evaluation.ConfusionMatrix)
	for _, example := range examples {
		actual := example[t.class.Column]
		predicted, ok := t.Classify(root, example, attributes)
		if !ok {
			predicted = DefaultLabel
		}
		if _, ok := matrix[actual]; !ok {
			matrix[actual] = make(map[string]int)
		}
		matrix[actual][predicted]++
	}
	return matrix
}

// Accuracy returns the share of correctly classified examples, 0 for an empty matrix.
func Accuracy(matrix evaluation.ConfusionMatrix) float64 {
	total := 0
	for _, row := range matrix {
		for _, n := range row {
			total += n
		}
	}
	if total == 0 {
		return 0
	}
	return evaluation.GetAccuracy(matrix)
}
