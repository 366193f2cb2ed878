package metrics

import (
	"errors"
	"io"
	"time"

	"github.com/kilianp07/wasteflow/core/aggregate"
	"github.com/kilianp07/wasteflow/core/model"
)

// RunEvent describes one completed allocation run.
type RunEvent struct {
	RunID    string                   `json:"run_id"`
	Strategy string                   `json:"strategy"`
	Started  time.Time                `json:"started_at"`
	Finished time.Time                `json:"finished_at"`
	Records  []model.AllocationRecord `json:"allocations"`
	Unmet    []model.UnmetDemand      `json:"unmet_demand"`
	Summary  aggregate.Summary        `json:"summary"`
}

// Duration is the wall time of the run.
func (e RunEvent) Duration() time.Duration { return e.Finished.Sub(e.Started) }

// AllocationSink records allocation runs for observability.
type AllocationSink interface {
	RecordRun(ev RunEvent) error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error { return nil }

// MultiSink forwards events to every sink. All sinks are called even when
// one fails; the first error is returned.
type MultiSink struct {
	Sinks []AllocationSink
}

// NewMultiSink combines sinks.
func NewMultiSink(sinks ...AllocationSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordRun(ev RunEvent) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every sink implementing io.Closer and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.Sinks {
		if err := CloseSink(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CloseSink closes s when it holds resources.
func CloseSink(s AllocationSink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
