package ml

import (
	"strings"
	"testing"

	"github.com/drakos74/free-learn/internal/api"
	"github.com/drakos74/free-learn/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	attrA = Attribute{Name: "A", Column: 0, Values: []string{"x", "y"}}
	attrB = Attribute{Name: "B", Column: 1, Values: []string{"p", "q"}}
	class = Attribute{Name: data.ClassField, Column: 2, Values: []string{"yes", "no"}}

	examples = [][]string{
		{"x", "p", "yes"},
		{"x", "q", "no"},
		{"y", "p", "no"},
		{"y", "q", "no"},
	}
)

func TestDecisionTree_BaseCases(t *testing.T) {

	tree := NewDecisionTree("base", class, nil)

	type test struct {
		examples   [][]string
		attributes []Attribute
		label      string
		isDefault  bool
	}

	tests := map[string]test{
		"empty": {
			examples:   [][]string{},
			attributes: []Attribute{attrA, attrB},
			label:      "fallback",
			isDefault:  true,
		},
		"identical": {
			examples:   examples[2:],
			attributes: []Attribute{attrA, attrB},
			label:      "no",
		},
		"no-attributes": {
			examples:   examples,
			attributes: []Attribute{},
			label:      "no",
		},
		"majority-tie": {
			examples:   examples[:2],
			attributes: []Attribute{},
			label:      "yes",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			def := NewNode("fallback")
			node := tree.Build(tt.examples, tt.attributes, def)
			assert.Equal(t, tt.label, node.Label)
			assert.True(t, node.IsLeaf())
			assert.Equal(t, 0, len(node.Children()))
			if tt.isDefault {
				assert.True(t, def == node)
			} else {
				assert.False(t, def == node)
			}
		})
	}
}

func TestDecisionTree_Gain(t *testing.T) {
	tree := NewDecisionTree("gain", class, nil)
	assert.InDelta(t, 0.8112781244591328, tree.Info(examples), 1e-12)
	assert.InDelta(t, 0.3112781244591328, tree.Gain(examples, attrA), 1e-12)
	assert.InDelta(t, 0.3112781244591328, tree.Gain(examples, attrB), 1e-12)
	assert.Equal(t, 0.0, tree.Info(examples[2:]))
	assert.Equal(t, 0.0, tree.Info([][]string{}))
}

func TestDecisionTree_Build(t *testing.T) {

	buffer := api.NewBuffer()
	tree := NewDecisionTree("scenario", class, buffer)
	root := tree.BuildAll(examples, []Attribute{attrA, attrB})

	assert.Equal(t, "A", root.Label)
	assert.Nil(t, root.Parent())
	assert.Equal(t, []string{"A=x", "A=y"}, root.Links())

	ax := root.Children()[0]
	assert.Equal(t, "B", ax.Label)
	assert.Equal(t, root, ax.Parent())
	assert.Equal(t, []string{"B=p", "B=q"}, ax.Links())
	assert.Equal(t, "yes", ax.Children()[0].Label)
	assert.Equal(t, "no", ax.Children()[1].Label)

	ay := root.Children()[1]
	assert.Equal(t, "no", ay.Label)
	assert.True(t, ay.IsLeaf())
	assert.Equal(t, 2, root.Depth())

	assert.True(t, buffer.Contains("Info = 0.811"))
	assert.True(t, buffer.Contains("A gain = 0.311"))
	assert.True(t, buffer.Contains("Choosing best variable: A"))
	assert.True(t, buffer.Contains(" Subset - there are 2 records with A = x"))
}

func TestDecisionTree_TieBreak(t *testing.T) {
	tree := NewDecisionTree("tie", class, nil)

	root := tree.Build(examples, []Attribute{attrB, attrA}, NewNode(DefaultLabel))
	assert.Equal(t, "B", root.Label)
	assert.Equal(t, "A", root.Children()[0].Label)

	// a copy of the same column has the same gain
	twin := Attribute{Name: "A2", Column: 0, Values: attrA.Values}
	root = tree.Build(examples, []Attribute{twin, attrA}, NewNode(DefaultLabel))
	assert.Equal(t, "A2", root.Label)
}

func TestDecisionTree_MissingValue(t *testing.T) {
	tree := NewDecisionTree("missing", class, nil)
	wide := Attribute{Name: "A", Column: 0, Values: []string{"x", "y", "z"}}
	root := tree.Build(examples, []Attribute{wide}, NewNode(DefaultLabel))

	require.Equal(t, 3, len(root.Children()))
	// no examples for z, so the parent majority is used
	assert.Equal(t, "no", root.Children()[2].Label)
	assert.Equal(t, "A=z", root.Links()[2])
}

func TestDecisionTree_Attributes(t *testing.T) {
	tree := NewDecisionTree("immutable", class, nil)
	attributes := []Attribute{attrA, attrB}
	tree.Build(examples, attributes, NewNode(DefaultLabel))
	assert.Equal(t, []Attribute{attrA, attrB}, attributes)
}

func TestDecisionTree_MultiClass(t *testing.T) {
	colour := Attribute{Name: data.ClassField, Column: 1, Values: []string{"red", "green", "blue"}}
	shape := Attribute{Name: "shape", Column: 0, Values: []string{"round", "square", "flat"}}
	records := [][]string{
		{"round", "red"},
		{"square", "green"},
		{"flat", "blue"},
		{"round", "red"},
	}
	tree := NewDecisionTree("colours", colour, nil)
	root := tree.BuildAll(records, []Attribute{shape})
	assert.Equal(t, "shape", root.Label)

	matrix := tree.Evaluate(root, records, []Attribute{shape})
	assert.Equal(t, 1.0, Accuracy(matrix))
	assert.Equal(t, 2, matrix["red"]["red"])
}

func TestNode_Render(t *testing.T) {
	tree := NewDecisionTree("render", class, nil)
	root := tree.BuildAll(examples, []Attribute{attrA, attrB})

	expected := strings.Join([]string{
		"   A (Interior node)",
		"   IF (A=x)",
		"      B (Interior node)",
		"      IF (B=p)",
		"          THEN (yes)  (Leaf node)",
		"      IF (B=q)",
		"          THEN (no)  (Leaf node)",
		"   IF (A=y)",
		"       THEN (no)  (Leaf node)",
	}, "\n")
	assert.Equal(t, expected, root.String())
}

func TestNode_Classify(t *testing.T) {
	tree := NewDecisionTree("classify", class, nil)
	attributes := []Attribute{attrA, attrB}
	root := tree.BuildAll(examples, attributes)

	for _, example := range examples {
		label, ok := tree.Classify(root, example, attributes)
		assert.True(t, ok)
		assert.Equal(t, example[2], label)
	}

	_, ok := tree.Classify(root, []string{"z", "p", "yes"}, attributes)
	assert.False(t, ok)

	matrix := tree.Evaluate(root, append(examples, []string{"z", "p", "yes"}), attributes)
	assert.InDelta(t, 0.8, Accuracy(matrix), 1e-9)
	assert.Equal(t, 1, matrix["yes"][DefaultLabel])
	assert.Equal(t, 0.0, Accuracy(nil))
}

func TestTreeFor(t *testing.T) {

	type test struct {
		schema string
		data   string
		err    error
	}

	tests := map[string]test{
		"categorical": {
			schema: "discrete A\ndiscrete B\ndiscrete ClassField\n",
			data:   "x p yes\nx q no\ny p no\ny q no\n",
		},
		"continuous": {
			schema: "continuous A\ndiscrete ClassField\n",
			data:   "1 yes\n2 no\n",
			err:    ContinuousAttributeErr,
		},
		"no-class": {
			schema: "discrete A\ndiscrete B\n",
			data:   "x p\ny q\n",
			err:    NoClassFieldErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ds := data.New(name, name, nil)
			require.NoError(t, ds.ReadData(strings.NewReader(tt.schema), strings.NewReader(tt.data)))
			tree, attributes, err := TreeFor(ds, nil)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []Attribute{attrA, attrB}, attributes)
			assert.Equal(t, class, tree.Class())
			root := tree.BuildAll(ds.Raw(), attributes)
			assert.Equal(t, "A", root.Label)
		})
	}
}
