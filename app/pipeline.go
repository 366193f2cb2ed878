package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/wasteflow/config"
	"github.com/kilianp07/wasteflow/core/aggregate"
	"github.com/kilianp07/wasteflow/core/allocation"
	"github.com/kilianp07/wasteflow/core/forecast"
	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
	"github.com/kilianp07/wasteflow/core/model"
	"github.com/kilianp07/wasteflow/core/monitoring"
	"github.com/kilianp07/wasteflow/core/network"
	"github.com/kilianp07/wasteflow/infra/logger"
	"github.com/kilianp07/wasteflow/internal/eventbus"
	"github.com/kilianp07/wasteflow/scenario"
)

// Pipeline runs one scenario end to end: forecast resolution, network
// construction, allocation, aggregation and reporting.
type Pipeline struct {
	builder    network.Builder
	engine     *allocation.Engine
	forecaster forecast.Forecaster
	sink       coremetrics.AllocationSink
	bus        eventbus.Publisher[coremetrics.RunEvent]
	log        logger.Logger
	monitor    monitoring.Monitor
	now        func() time.Time
	newID      func() string
}

// PipelineOption customises a Pipeline.
type PipelineOption func(*Pipeline)

// WithSink records every successful run in s.
func WithSink(s coremetrics.AllocationSink) PipelineOption {
	return func(p *Pipeline) {
		if s != nil {
			p.sink = s
		}
	}
}

// WithBus publishes every successful run on b.
func WithBus(b eventbus.Publisher[coremetrics.RunEvent]) PipelineOption {
	return func(p *Pipeline) { p.bus = b }
}

// WithLogger sets the pipeline and engine logger.
func WithLogger(l logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMonitor reports unexpected failures to m.
func WithMonitor(m monitoring.Monitor) PipelineOption {
	return func(p *Pipeline) {
		if m != nil {
			p.monitor = m
		}
	}
}

// WithForecaster replaces the history forecaster.
func WithForecaster(f forecast.Forecaster) PipelineOption {
	return func(p *Pipeline) { p.forecaster = f }
}

// NewPipeline builds a pipeline from cfg.
func NewPipeline(cfg *config.Config, opts ...PipelineOption) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	p := &Pipeline{
		builder:    network.NewBuilder(cfg.Network),
		forecaster: forecast.AverageForecaster{Window: cfg.Forecast.Window},
		sink:       coremetrics.NopSink{},
		log:        logger.NopLogger{},
		monitor:    monitoring.Nop{},
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, o := range opts {
		o(p)
	}
	eng, err := allocation.New(cfg.Allocation, allocation.WithLogger(p.log))
	if err != nil {
		return nil, fmt.Errorf("allocation engine: %w", err)
	}
	p.engine = eng
	return p, nil
}

// Strategy reports the configured allocation strategy.
func (p *Pipeline) Strategy() allocation.Strategy { return p.engine.Config().Strategy }

// Run executes sc. Validation failures are returned as
// *model.ValidationError. Sink and bus failures are logged and never fail
// the run.
func (p *Pipeline) Run(ctx context.Context, sc *scenario.Scenario) (coremetrics.RunEvent, error) {
	started := p.now()
	forecasts, err := sc.ResolveForecasts(p.forecaster)
	if err != nil {
		return coremetrics.RunEvent{}, err
	}
	if err := sc.Validate(forecasts); err != nil {
		return coremetrics.RunEvent{}, err
	}
	edges, err := p.edges(sc)
	if err != nil {
		return coremetrics.RunEvent{}, p.fail("build network", err)
	}
	res, err := p.engine.Allocate(ctx, forecasts, sc.Processors, edges)
	if err != nil {
		return coremetrics.RunEvent{}, p.fail("allocate", err)
	}
	ev := coremetrics.RunEvent{
		RunID:    p.newID(),
		Strategy: string(p.Strategy()),
		Started:  started,
		Finished: p.now(),
		Records:  res.Records,
		Unmet:    res.Unmet,
		Summary:  aggregate.Summarize(res.Records, sc.Processors, p.engine.Allocatable(forecasts)),
	}
	if err := p.sink.RecordRun(ev); err != nil {
		p.log.Warnf("record run %s: %v", ev.RunID, err)
		p.monitor.CaptureException(err, map[string]string{"stage": "record", "run_id": ev.RunID})
	}
	if p.bus != nil {
		p.bus.Publish(ev)
	}
	p.log.Infof("run %s: %d records, %.2f kg routed, %.2f kg short, cost %.2f",
		ev.RunID, len(ev.Records), ev.Summary.TotalVolumeKg, ev.Summary.ShortfallKg, ev.Summary.TotalCost)
	return ev, nil
}

// fail wraps err with stage and reports it unless it is a validation error
// or a cancellation.
func (p *Pipeline) fail(stage string, err error) error {
	var ve *model.ValidationError
	if !errors.As(err, &ve) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		p.monitor.CaptureException(err, map[string]string{"stage": stage, "strategy": string(p.Strategy())})
	}
	return fmt.Errorf("%s: %w", stage, err)
}

// edges returns the scenario's explicit edges, or the computed network.
func (p *Pipeline) edges(sc *scenario.Scenario) ([]model.TransportEdge, error) {
	if len(sc.Edges) == 0 {
		return p.builder.Build(sc.Producers, sc.Processors)
	}
	if err := p.builder.Validate(sc.Producers, sc.Processors); err != nil {
		return nil, err
	}
	return sc.Edges, nil
}
