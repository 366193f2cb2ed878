package metrics

import "github.com/kilianp07/wasteflow/core/factory"

var sinkRegistry = factory.NewRegistry[AllocationSink]()

// RegisterSink adds a sink factory identified by name.
func RegisterSink(name string, f factory.Factory[AllocationSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink names.
func SinkTypes() []string { return sinkRegistry.Types() }

// NewSink builds the sinks described by cfgs. No config yields NopSink and a
// single config yields that sink directly. When one sink fails, the ones
// already built are closed.
func NewSink(cfgs []factory.ModuleConfig) (AllocationSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]AllocationSink, 0, len(cfgs))
	for _, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			_ = NewMultiSink(sinks...).Close()
			return nil, err
		}
		sinks = append(sinks, s)
	}
	return NewMultiSink(sinks...), nil
}
