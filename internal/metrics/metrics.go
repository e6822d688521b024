package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer is the process wide training metrics collector.
var Observer = &Metrics{
	mutex:      new(sync.RWMutex),
	prometheus: NewPrometheusMetrics(),
	last:       make(map[string]float64),
}

func init() {
	prometheus.MustRegister(Observer.prometheus.collectors()...)
}

// Metrics records training progress.
type Metrics struct {
	mutex      *sync.RWMutex
	prometheus Prometheus
	last       map[string]float64
}

// Steps adds the processed records for the given dataset and learner.
func (m *Metrics) Steps(dataset, learner string, n int) {
	m.prometheus.Steps.WithLabelValues(dataset, learner).Add(float64(n))
}

// Pass records a completed pass and its error.
func (m *Metrics) Pass(dataset, learner string, records int, err float64) {
	m.prometheus.Passes.WithLabelValues(dataset, learner).Inc()
	m.prometheus.Error.WithLabelValues(dataset, learner).Set(err)
	m.prometheus.Records.WithLabelValues(dataset, learner).Set(float64(records))
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.last[dataset+"/"+learner] = err
}

// Run records a finished training run.
func (m *Metrics) Run(dataset, learner string, halted bool) {
	m.prometheus.Runs.WithLabelValues(dataset, learner, strconv.FormatBool(halted)).Inc()
}

// Last returns the error of the last pass for the given dataset and learner.
func (m *Metrics) Last(dataset, learner string) (float64, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	err, ok := m.last[dataset+"/"+learner]
	return err, ok
}

// All returns the error of the last pass for every tracked dataset and learner.
func (m *Metrics) All() map[string]float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	all := make(map[string]float64, len(m.last))
	for k, v := range m.last {
		all[k] = v
	}
	return all
}
