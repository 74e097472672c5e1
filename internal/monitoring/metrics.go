package monitoring

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunCollector holds the metrics describing one generation run. A nil
// collector accepts every call and records nothing.
type RunCollector struct {
	gatherer prometheus.Gatherer

	PulsesGenerated *prometheus.CounterVec
	MissingValues   *prometheus.CounterVec
	Rows            *prometheus.GaugeVec
	RunDuration     prometheus.Gauge
	Seed            prometheus.Gauge
}

// NewRunCollector registers run metrics against reg. A nil reg gets a fresh
// private registry so repeated runs in one process never collide.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &RunCollector{
		gatherer: gatherer,
		PulsesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdwgen_pulses_generated_total",
			Help: "Pulses generated per emitter before duplication and corruption.",
		}, []string{"emitter_id", "function"}),
		MissingValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdwgen_missing_values_total",
			Help: "Measurement fields blanked by the missing-value pass, by column.",
		}, []string{"field"}),
		Rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "pdwgen_rows",
			Help: "Row counts of the last run by stage (base, duplicate, corrupted, total).",
		}, []string{"stage"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pdwgen_run_duration_seconds",
			Help: "Wall-clock duration of the last run.",
		}),
		Seed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pdwgen_seed",
			Help: "Random seed of the last run.",
		}),
	}
	for name, col := range map[string]prometheus.Collector{
		"pdwgen_pulses_generated_total": c.PulsesGenerated,
		"pdwgen_missing_values_total":   c.MissingValues,
		"pdwgen_rows":                   c.Rows,
		"pdwgen_run_duration_seconds":   c.RunDuration,
		"pdwgen_seed":                   c.Seed,
	} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register %s: %w", name, err)
		}
	}
	return c, nil
}

// Gatherer returns the gatherer backing the collector.
func (c *RunCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// AddPulses counts n pulses for one emitter.
func (c *RunCollector) AddPulses(emitterID int, function string, n int) {
	if c == nil {
		return
	}
	c.PulsesGenerated.WithLabelValues(strconv.Itoa(emitterID), function).Add(float64(n))
}

// IncMissing counts one blanked field.
func (c *RunCollector) IncMissing(field string) {
	if c == nil {
		return
	}
	c.MissingValues.WithLabelValues(field).Inc()
}

// SetRows records the row counts of each stage.
func (c *RunCollector) SetRows(base, duplicates, corrupted, total int) {
	if c == nil {
		return
	}
	c.Rows.WithLabelValues("base").Set(float64(base))
	c.Rows.WithLabelValues("duplicate").Set(float64(duplicates))
	c.Rows.WithLabelValues("corrupted").Set(float64(corrupted))
	c.Rows.WithLabelValues("total").Set(float64(total))
}

// ObserveRun records the seed and wall-clock duration.
func (c *RunCollector) ObserveRun(seed uint64, d time.Duration) {
	if c == nil {
		return
	}
	c.Seed.Set(float64(seed))
	c.RunDuration.Set(d.Seconds())
}

// WriteTextfile writes the collected metrics in the text exposition format,
// suitable for a node_exporter textfile collector.
func (c *RunCollector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
