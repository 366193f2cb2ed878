package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/wasteflow/core/allocation"
	"github.com/kilianp07/wasteflow/core/metrics"
	"github.com/kilianp07/wasteflow/core/network"
	"github.com/kilianp07/wasteflow/infra/monitoring"
	"github.com/kilianp07/wasteflow/infra/mqtt"
)

// EnvPrefix marks environment overrides. WF_NETWORK__COST_PER_KM=3 sets
// network.cost_per_km.
const EnvPrefix = "WF_"

type Config struct {
	Network    network.Config    `json:"network"`
	Allocation allocation.Config `json:"allocation"`
	Forecast   ForecastConfig    `json:"forecast"`
	Server     ServerConfig      `json:"server"`
	Metrics    metrics.Config    `json:"metrics"`
	MQTT       mqtt.Config       `json:"mqtt"`
	Monitoring monitoring.Config `json:"monitoring"`
}

// Default returns a configuration with every section defaulted.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Network.SetDefaults()
	c.Allocation.SetDefaults()
	c.Forecast.SetDefaults()
	c.Server.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	if err := c.Allocation.Validate(); err != nil {
		return fmt.Errorf("allocation: %w", err)
	}
	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.MQTT.Validate(); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := c.Monitoring.Validate(); err != nil {
		return fmt.Errorf("monitoring: %w", err)
	}
	return nil
}

// Load reads path (YAML or JSON by extension), applies WF_ environment
// overrides, then defaults and validation. An empty path loads defaults and
// environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
