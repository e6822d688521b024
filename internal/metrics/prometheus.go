package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "learn"

// Prometheus holds the training collectors.
type Prometheus struct {
	Steps   *prometheus.CounterVec
	Passes  *prometheus.CounterVec
	Runs    *prometheus.CounterVec
	Error   *prometheus.GaugeVec
	Records *prometheus.GaugeVec
}

// NewPrometheusMetrics creates the training collectors, labeled by dataset and learner.
func NewPrometheusMetrics() Prometheus {
	labels := []string{"dataset", "learner"}
	return Prometheus{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps",
				Help:      "number of records processed",
			}, labels),
		Passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "passes",
				Help:      "number of full passes over the data",
			}, labels),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs",
				Help:      "number of finished training runs",
			}, append(labels, "halted")),
		Error: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "error",
				Help:      "error of the last full pass",
			}, labels),
		Records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "records",
				Help:      "number of records in the training set",
			}, labels),
	}
}

func (p Prometheus) collectors() []prometheus.Collector {
	return []prometheus.Collector{p.Steps, p.Passes, p.Runs, p.Error, p.Records}
}
