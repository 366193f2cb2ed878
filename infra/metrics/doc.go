// Package metrics provides the Prometheus and InfluxDB allocation sinks and
// registers them, with "nop", in the core sink registry.
package metrics
