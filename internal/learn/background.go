package learn

import (
	"context"
	"sync"

	"github.com/drakos74/free-learn/internal/api"
	"github.com/drakos74/free-learn/internal/concurrent"
	"golang.org/x/sync/errgroup"
)

// Job is a training run for a single learner.
type Job struct {
	Name    string
	Learner Learner
	Config  Config
}

// Handle tracks a training run in the background.
type Handle struct {
	cancel context.CancelFunc
	latch  *concurrent.Latch
	mutex  *sync.RWMutex
	report Report
	err    error
}

// Start runs the job in a new go routine.
// The learner must not be used by the caller until the run is done.
func Start(ctx context.Context, job Job, sink api.Sink) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		cancel: cancel,
		mutex:  new(sync.RWMutex),
	}
	h.latch = concurrent.Go(func() {
		defer cancel()
		report, err := Run(ctx, job.Name, job.Learner, job.Config, sink)
		h.mutex.Lock()
		defer h.mutex.Unlock()
		h.report = report
		h.err = err
	})
	return h
}

// Stop cancels the run, the learner keeps its partially trained state.
func (h *Handle) Stop() {
	h.cancel()
}

// Done is closed once the run has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.latch.Done()
}

// Wait blocks until the run has finished and returns its outcome.
func (h *Handle) Wait() (Report, error) {
	<-h.latch.Done()
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.report, h.err
}

// Batch trains independent learners in parallel.
// The first failure cancels the other runs.
func Batch(ctx context.Context, jobs []Job, sink api.Sink) ([]Report, error) {
	reports := make([]Report, len(jobs))
	group, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		group.Go(func() error {
			report, err := Run(ctx, job.Name, job.Learner, job.Config, sink)
			reports[i] = report
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}
