package metrics

import (
	"strconv"

	coremetrics "github.com/kilianp07/manmonths/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records allocation runs in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	units    *prometheus.CounterVec
	years    *prometheus.GaugeVec
	duration prometheus.Histogram
	failures *prometheus.CounterVec
}

// NewPromSink registers allocation metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_runs_total",
		Help: "Total number of allocation runs",
	}, []string{"shortfall"})
	units := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_units_total",
		Help: "Person-months processed by allocation runs",
	}, []string{"state"})
	years := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "allocation_year_units",
		Help: "Person-months allocated per calendar year in the latest run",
	}, []string{"year"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "allocation_run_duration_seconds",
		Help:    "Wall time of an allocation run",
		Buckets: prometheus.DefBuckets,
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "allocation_failures_total",
		Help: "Allocation runs that produced no result",
	}, []string{"kind"})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if units, err = register(reg, units); err != nil {
		return nil, err
	}
	if years, err = register(reg, years); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if failures, err = register(reg, failures); err != nil {
		return nil, err
	}
	return &PromSink{runs: runs, units: units, years: years, duration: duration, failures: failures}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the counters and per-year gauges for one run.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(strconv.FormatBool(ev.Shortfalls > 0)).Inc()
	s.units.WithLabelValues("requested").Add(float64(ev.Requested))
	s.units.WithLabelValues("allocated").Add(float64(ev.Allocated))
	s.units.WithLabelValues("unallocated").Add(float64(ev.Unallocated))
	for year, total := range ev.YearTotals {
		s.years.WithLabelValues(strconv.Itoa(year)).Set(float64(total))
	}
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordFailure counts a run that failed before allocation.
func (s *PromSink) RecordFailure(ev coremetrics.LoadFailure) error {
	s.failures.WithLabelValues(ev.Kind).Inc()
	return nil
}
