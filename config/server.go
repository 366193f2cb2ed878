package config

import (
	"fmt"
	"time"
)

// ServerConfig configures the HTTP API and the Prometheus endpoint.
type ServerConfig struct {
	Addr        string   `json:"addr"`
	MetricsAddr string   `json:"metrics_addr"`
	CORSOrigins []string `json:"cors_origins"`
	// Token, when set, is required as "Bearer <token>" on /api routes.
	Token string `json:"token"`
	// RunHistory bounds the number of runs kept for GET /api/allocations.
	RunHistory int `json:"run_history"`
	// HistoryDB, when set, persists the run history in this SQLite file.
	HistoryDB string `json:"history_db"`
	// RateLimit is the sustained number of allocation requests per second.
	// Zero disables limiting.
	RateLimit      float64       `json:"rate_limit"`
	RateBurst      int           `json:"rate_burst"`
	MaxBodyBytes   int64         `json:"max_body_bytes"`
	RequestTimeout time.Duration `json:"request_timeout"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9090"
	}
	if c.CORSOrigins == nil {
		c.CORSOrigins = []string{"http://localhost:3000"}
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		c.RateBurst = int(c.RateLimit) + 1
	}
	if c.RunHistory <= 0 {
		c.RunHistory = 100
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 4 << 20
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be >= 0, got %v", c.RateLimit)
	}
	return nil
}

// ForecastConfig configures the history-based forecaster.
type ForecastConfig struct {
	// Window is the number of most recent observations averaged per
	// producer and category. Zero averages the whole history.
	Window int `json:"window"`
}

func (c *ForecastConfig) SetDefaults() {}

func (c ForecastConfig) Validate() error {
	if c.Window < 0 {
		return fmt.Errorf("window must be >= 0, got %d", c.Window)
	}
	return nil
}
