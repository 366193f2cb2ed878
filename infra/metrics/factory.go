package metrics

import (
	"github.com/kilianp07/wasteflow/core/factory"
	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
)

// init registers built-in sinks.
func init() {
	_ = coremetrics.RegisterSink("nop", func(map[string]any) (coremetrics.AllocationSink, error) {
		return coremetrics.NopSink{}, nil
	})

	// The /metrics endpoint is served separately by StartPromServer.
	_ = coremetrics.RegisterSink("prometheus", func(map[string]any) (coremetrics.AllocationSink, error) {
		return NewPromSink()
	})

	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (coremetrics.AllocationSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})

	_ = coremetrics.RegisterSink("jsonl", func(conf map[string]any) (coremetrics.AllocationSink, error) {
		var c JSONLConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewJSONLSink(c)
	})
}
