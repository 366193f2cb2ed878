// Package monitoring reports pipeline and API failures to Sentry.
package monitoring

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	coremon "github.com/kilianp07/wasteflow/core/monitoring"
)

// Config configures Sentry. An empty DSN disables reporting.
type Config struct {
	DSN              string  `json:"sentry_dsn"`
	Environment      string  `json:"environment"`
	Release          string  `json:"release"`
	TracesSampleRate float64 `json:"traces_sample_rate"`
}

// Validate checks the sample rate.
func (c Config) Validate() error {
	if c.TracesSampleRate < 0 || c.TracesSampleRate > 1 {
		return fmt.Errorf("traces_sample_rate must be within [0,1], got %v", c.TracesSampleRate)
	}
	return nil
}

// NewSentryMonitor returns a Monitor backed by its own Sentry hub, or a
// no-op monitor when no DSN is configured.
func NewSentryMonitor(cfg Config) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.Nop{}, nil
	}
	m, err := newSentryMonitor(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		TracesSampleRate: cfg.TracesSampleRate,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newSentryMonitor(opts sentry.ClientOptions) (*sentryMonitor, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("sentry client: %w", err)
	}
	return &sentryMonitor{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

type sentryMonitor struct {
	hub *sentry.Hub
}

func (s *sentryMonitor) CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	if len(tags) == 0 {
		s.hub.CaptureException(err)
		return
	}
	s.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		s.hub.CaptureException(err)
	})
}

func (s *sentryMonitor) RecoverPanic(v any) {
	if v != nil {
		s.hub.Recover(v)
	}
}

func (s *sentryMonitor) Flush(timeout time.Duration) { s.hub.Flush(timeout) }
