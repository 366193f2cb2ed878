// Package infra holds the adapters around the allocation core: logging,
// metrics sinks, MQTT plan delivery, run history persistence and error
// monitoring. They depend on the interfaces declared under core.
package infra
