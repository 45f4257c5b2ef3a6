// Package metrics exposes thermo output as Prometheus metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/thermo/internal/thermo"
)

const namespace = "thermo"

// Exporter is a prometheus.Collector fed by thermo rows and loop steps.
type Exporter struct {
	value    *prometheus.GaugeVec
	rows     prometheus.Counter
	warnings prometheus.Counter
	step     prometheus.Gauge
	progress prometheus.Gauge
	drift    prometheus.Gauge
	maxDrift prometheus.Gauge

	mu       sync.Mutex
	energy   *EnergyDrift
	runLast  int64
	runStart int64
}

// NewExporter tracks drift of driftColumn; an empty name disables the
// drift gauges.
func NewExporter(driftColumn string) *Exporter {
	e := &Exporter{
		value: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "value",
			Help:      "Last reported value of each thermo column",
		}, []string{"keyword"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Thermo rows reported",
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lost_warnings_total",
			Help:      "Lost atom and bond warnings emitted",
		}),
		step: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "step",
			Help:      "Current timestep",
		}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_progress",
			Help:      "Fraction of the current run completed (0.0 to 1.0)",
		}),
		drift: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_drift",
			Help:      "Relative drift of the tracked energy column from its first value",
		}),
		maxDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "energy_drift_max",
			Help:      "Largest relative drift of the tracked energy column",
		}),
	}
	if driftColumn != "" {
		e.energy = NewEnergyDrift(driftColumn)
	}
	return e
}

func (e *Exporter) collectors() []prometheus.Collector {
	return []prometheus.Collector{e.value, e.rows, e.warnings, e.step, e.progress, e.drift, e.maxDrift}
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range e.collectors() {
		c.Describe(ch)
	}
}

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	for _, c := range e.collectors() {
		c.Collect(ch)
	}
}

// OnRow implements thermo.Observer.
func (e *Exporter) OnRow(columns []string, row thermo.Row) {
	values := make([]float64, len(row.Values))
	for i, v := range row.Values {
		values[i] = v.Float64()
		if i < len(columns) {
			e.value.WithLabelValues(columns[i]).Set(values[i])
		}
	}
	e.rows.Inc()
	e.warnings.Add(float64(len(row.Diagnostics)))
	e.step.Set(float64(row.Step))

	if e.energy == nil {
		return
	}
	e.mu.Lock()
	e.energy.Observe(columns, values)
	e.drift.Set(e.energy.Current())
	e.maxDrift.Set(e.energy.Value())
	e.mu.Unlock()
}

// OnStep implements sim.Observer.
func (e *Exporter) OnStep(step, last int64) {
	e.step.Set(float64(step))

	e.mu.Lock()
	defer e.mu.Unlock()
	if last != e.runLast {
		e.runLast, e.runStart = last, step-1
	}
	if span := last - e.runStart; span > 0 {
		e.progress.Set(float64(step-e.runStart) / float64(span))
	}
}
