package learn

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/drakos74/free-learn/internal/api"
	"github.com/drakos74/free-learn/internal/buffer"
	learnmath "github.com/drakos74/free-learn/internal/math"
	"github.com/drakos74/free-learn/internal/math/ml"
	"github.com/drakos74/free-learn/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Run trains the learner for up to cfg.Passes full passes over its records.
// The context is checked between passes, cancelling it stops the run without an error
// and leaves the partially trained learner usable.
// The learner is locked when the run returns.
func Run(ctx context.Context, name string, learner Learner, cfg Config, sink api.Sink) (Report, error) {
	sink = api.OrVoid(sink)
	kind := Kind(learner)
	start := time.Now()
	report := NewReport(name, kind)
	report.Start = start
	defer learner.SetMode(ml.Locked)

	records := learner.Records()
	if records == 0 {
		return report, fmt.Errorf("nothing to train for '%s': %w", name, ml.NoDataErr)
	}

	history := buffer.NewHistory(cfg.Window)
	learner.SetMode(ml.Train)
	log.Info().
		Str("id", report.ID).
		Str("dataset", name).
		Str("learner", kind).
		Int("records", records).
		Int("passes", cfg.Passes).
		Msg("started training")

passes:
	for p := 0; p < cfg.Passes; p++ {
		select {
		case <-ctx.Done():
			report.Halted = true
			break passes
		default:
		}

		for r := 0; r < records; r++ {
			if err := learner.Step(); err != nil {
				return report, fmt.Errorf("could not train '%s' at pass %d: %w", name, p, err)
			}
		}
		report.Passes++

		e := learner.Error()
		history.Push(e)
		metrics.Observer.Steps(name, kind, records)
		metrics.Observer.Pass(name, kind, records, e)

		if cfg.Progress > 0 && report.Passes%cfg.Progress == 0 {
			api.NewMessage(fmt.Sprintf("Pass %d", learner.Passes())).
				Add("error = " + learnmath.Format(e)).
				Send(sink)
		}

		if cfg.Target > 0 && e <= cfg.Target {
			report.Converged = true
			break
		}
		if cfg.Plateau > 0 && history.Plateau(cfg.Plateau) {
			report.Converged = true
			break
		}

		runtime.Gosched()
		if cfg.Yield > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(cfg.Yield):
			}
		}
	}

	stats := history.Stats()
	report.Total = learner.Passes()
	report.Error = learner.Error()
	report.MinError = stats.Min()
	report.AvgError = stats.Avg()
	report.TrendError = stats.EMA()
	report.Duration = time.Since(start)
	metrics.Observer.Run(name, kind, report.Halted)

	log.Info().
		Str("id", report.ID).
		Str("dataset", name).
		Str("learner", kind).
		Int("passes", report.Passes).
		Float64("error", report.Error).
		Bool("halted", report.Halted).
		Bool("converged", report.Converged).
		Dur("duration", report.Duration).
		Msg("finished training")
	return report, nil
}

// Evaluate runs one locked pass over the records, displaying the learner after every step.
func Evaluate(learner Learner, sink api.Sink) error {
	sink = api.OrVoid(sink)
	learner.SetMode(ml.Locked)
	for r := 0; r < learner.Records(); r++ {
		if err := learner.Step(); err != nil {
			return fmt.Errorf("could not evaluate record %d: %w", r, err)
		}
		api.Emitf(sink, "Record %d:", r)
		learner.Display()
	}
	return nil
}
