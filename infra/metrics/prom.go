package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
)

// PromSink exposes allocation runs as Prometheus metrics.
type PromSink struct {
	allocated   *prometheus.CounterVec
	cost        *prometheus.CounterVec
	unserved    *prometheus.CounterVec
	utilization *prometheus.GaugeVec
	runDuration prometheus.Histogram
}

// NewPromSink registers the sink metrics on the default registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on reg, reusing collectors that
// are already registered. A nil reg uses the default registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		allocated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wasteflow_allocated_kg_total",
			Help: "Waste volume routed to processors",
		}, []string{"category"}),
		cost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wasteflow_allocation_cost_total",
			Help: "Transport cost of routed waste in EUR",
		}, []string{"category"}),
		unserved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wasteflow_unserved_kg_total",
			Help: "Forecast volume left without processing capacity",
		}, []string{"category"}),
		utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wasteflow_processor_utilization_ratio",
			Help: "Share of processor capacity used by the latest run",
		}, []string{"processor_id"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wasteflow_allocation_run_seconds",
			Help:    "Wall time of allocation runs",
			Buckets: prometheus.DefBuckets,
		}),
	}
	var err error
	if s.allocated, err = register(reg, s.allocated); err != nil {
		return nil, err
	}
	if s.cost, err = register(reg, s.cost); err != nil {
		return nil, err
	}
	if s.unserved, err = register(reg, s.unserved); err != nil {
		return nil, err
	}
	if s.utilization, err = register(reg, s.utilization); err != nil {
		return nil, err
	}
	if s.runDuration, err = register(reg, s.runDuration); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun implements coremetrics.AllocationSink.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	for _, r := range ev.Records {
		cat := string(r.Category)
		s.allocated.WithLabelValues(cat).Add(r.VolumeKg)
		s.cost.WithLabelValues(cat).Add(r.TotalCost)
	}
	for _, u := range ev.Unmet {
		s.unserved.WithLabelValues(string(u.Category)).Add(u.UnservedKg)
	}
	for _, u := range ev.Summary.Utilization {
		s.utilization.WithLabelValues(u.ProcessorID).Set(u.Ratio)
	}
	if d := ev.Duration(); d > 0 {
		s.runDuration.Observe(d.Seconds())
	}
	return nil
}
