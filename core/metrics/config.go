package metrics

import "github.com/kilianp07/wasteflow/core/factory"

// Config lists the sinks to build. An empty list yields NopSink.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" yaml:"sinks"`
}
