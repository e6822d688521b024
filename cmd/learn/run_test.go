package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/drakos74/free-learn/internal/learn"
	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/drakos74/free-learn/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testdata = "../../internal/data/testdata/"

func TestExitCode(t *testing.T) {

	type test struct {
		err  error
		code int
	}

	tests := map[string]test{
		"ok":                 {code: 0},
		"usage":              {err: usageErr, code: 2},
		"schema-not-found":   {err: data.SchemaNotFoundErr, code: 3},
		"data-not-found":     {err: data.DataFileNotFoundErr, code: 4},
		"data-read":          {err: data.DataReadErr, code: 5},
		"corrupt-row":        {err: data.CorruptRowErr, code: 6},
		"invalid-topology":   {err: ml.InvalidTopologyErr, code: 7},
		"continuous":         {err: ml.ContinuousAttributeErr, code: 8},
		"no-class":           {err: ml.NoClassFieldErr, code: 8},
		"other":              {err: fmt.Errorf("boom"), code: 1},
		"wrapped-corruption": {err: fmt.Errorf("line 3: %w", data.CorruptRowErr), code: 6},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.code, exitCode(tt.err))
		})
	}
}

func TestRun(t *testing.T) {

	type test struct {
		opts     options
		code     int
		contains []string
	}

	tests := map[string]test{
		"backprop": {
			opts: options{data: testdata + "xor.dfn", learner: learn.BackProp, passes: 200, hidden: 3, seed: 1},
			contains: []string{
				"Dataset: extracted from file",
				"Num. of units in the hidden layer: 3",
				"backprop on xor: 200 passes",
				"Record 3:",
				"activations = ",
			},
		},
		"backprop-classes": {
			opts: options{data: testdata + "tree", learner: learn.BackProp, passes: 50, seed: 1},
			contains: []string{
				"Record 0: Desired = yes",
				"Accuracy: ",
			},
		},
		"kohonen": {
			opts: options{data: testdata + "mixed", learner: learn.Kohonen, passes: 5, rows: 2, cols: 3, seed: 1},
			contains: []string{
				"(2x3)",
				"kohonen on mixed: 5 passes",
				"Record 3: cluster",
			},
		},
		"tree": {
			opts: options{data: testdata + "tree", learner: learn.Tree},
			contains: []string{
				"DecisionTree -- classVar = ClassField",
				"Choosing best variable: A",
				"THEN (yes)  (Leaf node)",
				"Accuracy: 1.0000",
			},
		},
		"tree-continuous": {
			opts: options{data: testdata + "xor", learner: learn.Tree},
			code: treePreconditionCode,
		},
		"missing-schema": {
			opts: options{data: testdata + "unknown", learner: learn.BackProp},
			code: schemaNotFoundCode,
		},
		"missing-data": {
			opts: options{data: testdata + "nodata", learner: learn.Kohonen},
			code: dataFileNotFoundCode,
		},
		"corrupt": {
			opts: options{data: testdata + "corrupt", learner: learn.Tree},
			code: corruptRowCode,
		},
		"no-class": {
			opts: options{data: testdata + "mixed", learner: learn.BackProp},
			code: invalidTopologyCode,
		},
		"no-data-flag": {
			opts: options{learner: learn.BackProp},
			code: usageCode,
		},
		"unknown-learner": {
			opts: options{data: testdata + "xor", learner: "svm"},
			code: usageCode,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			tt.opts.storage = t.TempDir()
			out := new(bytes.Buffer)
			err := run(context.Background(), tt.opts, out)
			assert.Equal(t, tt.code, exitCode(err))
			for _, txt := range tt.contains {
				assert.Contains(t, out.String(), txt)
			}
		})
	}
}

func TestRun_SaveRestore(t *testing.T) {
	dir := t.TempDir()
	opts := options{data: testdata + "xor", learner: learn.BackProp, passes: 20, seed: 3, storage: dir, save: true}
	require.NoError(t, run(context.Background(), opts, nil))

	_, err := os.Stat(filepath.Join(dir, "models", "xor", "xor_backprop_model.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "runs", "xor", "xor", "backprop", "events.log"))
	assert.NoError(t, err)

	opts.save = false
	opts.restore = true
	out := new(bytes.Buffer)
	require.NoError(t, run(context.Background(), opts, out))
	assert.NotContains(t, out.String(), "passes (")
	assert.Contains(t, out.String(), "activations = ")

	opts.data = testdata + "tree"
	assert.Equal(t, otherCode, exitCode(run(context.Background(), opts, nil)))
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := new(bytes.Buffer)
	opts := options{data: testdata + "xor", learner: learn.BackProp, passes: 1000, storage: t.TempDir()}
	require.NoError(t, run(ctx, opts, out))
	assert.Contains(t, out.String(), "0 passes (0 total)")
	assert.Contains(t, out.String(), "halted=true")
}

func TestRun_Journal(t *testing.T) {

	type test struct {
		opts     options
		learner  string
		accuracy float64
		passes   int
	}

	tests := map[string]test{
		"tree": {
			opts:     options{data: testdata + "tree", learner: learn.Tree},
			learner:  learn.Tree,
			accuracy: 1,
		},
		"backprop-classes": {
			opts:    options{data: testdata + "tree", learner: learn.BackProp, passes: 50, seed: 1},
			learner: learn.BackProp,
			passes:  50,
		},
		"backprop-target": {
			opts:    options{data: testdata + "xor", learner: learn.BackProp, passes: 2500, hidden: 2, seed: 1, target: 0.45},
			learner: learn.BackProp,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tt.opts.storage = dir
			require.NoError(t, run(context.Background(), tt.opts, nil))

			ds := filepath.Base(tt.opts.data)
			b, err := os.ReadFile(filepath.Join(dir, "runs", ds, ds, tt.learner, "events.log"))
			require.NoError(t, err)

			var report learn.Report
			require.NoError(t, json.Unmarshal(bytes.TrimSpace(b), &report))
			assert.Equal(t, ds, report.Dataset)
			assert.Equal(t, tt.learner, report.Learner)
			assert.NotEmpty(t, report.ID)
			if tt.accuracy > 0 {
				assert.Equal(t, tt.accuracy, report.Accuracy)
			}
			if tt.passes > 0 {
				assert.Equal(t, tt.passes, report.Passes)
				assert.True(t, report.Accuracy > 0)
			}
			if tt.opts.target > 0 {
				assert.True(t, report.Converged)
				assert.True(t, report.Passes < tt.opts.passes)
				assert.LessOrEqual(t, report.Error, tt.opts.target)
			}
		})
	}
}

func TestRun_NoStorage(t *testing.T) {
	opts := options{data: testdata + "xor", learner: learn.BackProp, passes: 5, seed: 1}
	require.NoError(t, run(context.Background(), opts, nil))
	_, err := os.Stat(storage.DefaultDir)
	assert.True(t, os.IsNotExist(err))

	opts.restore = true
	assert.ErrorIs(t, run(context.Background(), opts, nil), storage.NotFoundErr)
}
