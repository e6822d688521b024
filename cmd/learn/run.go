package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/drakos74/free-learn/internal/api"
	"github.com/drakos74/free-learn/internal/data"
	"github.com/drakos74/free-learn/internal/learn"
	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/drakos74/free-learn/internal/storage"
	"github.com/drakos74/free-learn/internal/storage/file/json"
	"github.com/sjwhitworth/golearn/evaluation"
)

const (
	okCode = iota
	otherCode
	usageCode
	schemaNotFoundCode
	dataFileNotFoundCode
	dataReadCode
	corruptRowCode
	invalidTopologyCode
	treePreconditionCode
)

var usageErr = errors.New("usage")

type options struct {
	data    string
	learner string
	passes  int
	hidden  int
	rows    int
	cols    int
	seed    int64
	config  string
	storage string
	save    bool
	restore bool
	metrics string
	quiet   bool
	target  float64
	plateau float64
	yield   time.Duration
}

func (o options) validate() error {
	if o.data == "" {
		return fmt.Errorf("missing -data: %w", usageErr)
	}
	switch o.learner {
	case learn.BackProp, learn.Kohonen, learn.Tree:
	default:
		return fmt.Errorf("unknown learner '%s': %w", o.learner, usageErr)
	}
	if o.passes < 0 || o.hidden < 0 || o.rows < 0 || o.cols < 0 || o.target < 0 || o.plateau < 0 || o.yield < 0 {
		return fmt.Errorf("negative sizes are not allowed: %w", usageErr)
	}
	if o.save && o.restore {
		return fmt.Errorf("-save and -restore are exclusive: %w", usageErr)
	}
	if o.learner == learn.Tree && (o.save || o.restore) {
		return fmt.Errorf("trees are rebuilt on every run: %w", usageErr)
	}
	return nil
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return okCode
	case errors.Is(err, usageErr):
		return usageCode
	case errors.Is(err, data.SchemaNotFoundErr):
		return schemaNotFoundCode
	case errors.Is(err, data.DataFileNotFoundErr):
		return dataFileNotFoundCode
	case errors.Is(err, data.DataReadErr):
		return dataReadCode
	case errors.Is(err, data.CorruptRowErr):
		return corruptRowCode
	case errors.Is(err, ml.InvalidTopologyErr):
		return invalidTopologyCode
	case errors.Is(err, ml.ContinuousAttributeErr), errors.Is(err, ml.NoClassFieldErr):
		return treePreconditionCode
	default:
		return otherCode
	}
}

func settings(o options) (learn.Settings, error) {
	s := learn.DefaultSettings()
	if o.config != "" {
		var err error
		s, err = learn.LoadSettings(o.config)
		if err != nil {
			return s, err
		}
	}
	if o.seed != 0 {
		s.BackProp.Seed = o.seed
		s.Kohonen.Seed = o.seed
	}
	if o.rows > 0 {
		s.Grid.Rows = o.rows
	}
	if o.cols > 0 {
		s.Grid.Cols = o.cols
	}
	if o.target > 0 {
		s.Target = o.target
	}
	if o.plateau > 0 {
		s.Plateau = o.plateau
	}
	if o.yield > 0 {
		s.Yield = o.yield
	}
	return s, nil
}

// persistence returns the model store and run journal of the dataset.
// Without a storage dir and without -save or -restore nothing is persisted.
func persistence(o options, dataset string) (storage.Persistence, storage.Journal, error) {
	if o.storage == "" && !o.save && !o.restore {
		store, err := storage.VoidShard()(dataset)
		return store, storage.NewVoidJournal(), err
	}
	root := storage.DefaultDir
	if o.storage != "" {
		root = o.storage
	}
	store, err := json.BlobShardAt(root, storage.ModelsDir)(dataset)
	if err != nil {
		return nil, nil, err
	}
	return store, json.NewLogger(dataset).WithPath(root), nil
}

func run(ctx context.Context, o options, out io.Writer) error {
	if err := o.validate(); err != nil {
		return err
	}
	s, err := settings(o)
	if err != nil {
		return err
	}

	sink := api.LogSink(o.learner)
	if out != nil {
		sink = api.Tee(sink, api.WriterSink(out))
	}

	path := data.Stem(o.data)
	ds, err := data.Load(filepath.Base(path), path, sink)
	if err != nil {
		return err
	}
	sink.Emit(ds.String())

	store, journal, err := persistence(o, ds.Name())
	if err != nil {
		return err
	}

	if o.learner == learn.Tree {
		report := learn.NewReport(ds.Name(), learn.Tree)
		_, matrix, err := learn.BuildTree(ds, sink)
		if err != nil {
			return err
		}
		report.Duration = time.Since(report.Start)
		report.Accuracy = summary(sink, matrix)
		return learn.Journal(journal, report)
	}

	var learner learn.Learner
	switch o.learner {
	case learn.Kohonen:
		k, err := learn.NewKohonen(ds, s.Grid.Rows, s.Grid.Cols, s.Kohonen, sink)
		if err != nil {
			return err
		}
		sink.Emit(k.String())
		learner = k
	default:
		bp, err := learn.NewBackProp(ds, o.hidden, s.BackProp, sink)
		if err != nil {
			return err
		}
		sink.Emit(bp.String())
		learner = bp
	}

	if o.restore {
		if err := learn.Restore(store, ds.Name(), learner); err != nil {
			return err
		}
		_, err := evaluate(ds, learner, sink)
		return err
	}

	cfg := s.Config(o.learner)
	if o.passes > 0 {
		cfg.Passes = o.passes
	}
	report, err := learn.Run(ctx, ds.Name(), learner, cfg, sink)
	if err != nil {
		return err
	}
	sink.Emit(report.String())

	report.Accuracy, err = evaluate(ds, learner, sink)
	if err != nil {
		return err
	}
	if err := learn.Journal(journal, report); err != nil {
		return err
	}
	if o.save {
		return learn.Save(store, ds.Name(), learner)
	}
	return nil
}

// evaluate runs the locked pass over the dataset.
// The accuracy is only known for back propagation on a categorical class field.
func evaluate(ds *data.Dataset, learner learn.Learner, sink api.Sink) (float64, error) {
	switch l := learner.(type) {
	case *ml.BackProp:
		if class, ok := ds.ClassField(); ok && class.IsCategorical() {
			matrix, err := learn.Classify(l, ds, sink)
			if err != nil {
				return 0, err
			}
			return summary(sink, matrix), nil
		}
	case *ml.Kohonen:
		_, err := learn.Assign(l, sink)
		return 0, err
	}
	return 0, learn.Evaluate(learner, sink)
}

func summary(sink api.Sink, matrix evaluation.ConfusionMatrix) float64 {
	if len(matrix) == 0 {
		return 0
	}
	accuracy := ml.Accuracy(matrix)
	sink.Emit(evaluation.GetSummary(matrix))
	api.Emitf(sink, "Accuracy: %.4f", accuracy)
	return accuracy
}
