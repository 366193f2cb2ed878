// Package metrics defines the sink contract for allocation runs. Sinks such
// as the Prometheus and InfluxDB implementations in infra/metrics receive one
// RunEvent per completed run. Several configured sinks are combined into a
// MultiSink by NewSink.
package metrics
