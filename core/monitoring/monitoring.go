// Package monitoring defines the error reporting hook used by the pipeline
// and the HTTP API.
package monitoring

import "time"

// Monitor reports unexpected failures to an external tracker.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	// RecoverPanic reports a recovered panic value.
	RecoverPanic(v any)
	Flush(timeout time.Duration)
}

// Nop drops everything.
type Nop struct{}

func (Nop) CaptureException(error, map[string]string) {}
func (Nop) RecoverPanic(any)                          {}
func (Nop) Flush(time.Duration)                       {}
