// Package scenarios replays allocation fixtures and checks their expected
// totals.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/wasteflow/core/allocation"
	"github.com/kilianp07/wasteflow/scenario"
)

// Expected lists the totals a fixture must produce. Zero-valued optional
// fields are not checked.
type Expected struct {
	TotalKg     float64  `yaml:"total_allocated_kg"`
	TotalCost   float64  `yaml:"total_cost_eur"`
	ShortfallKg float64  `yaml:"shortfall_kg"`
	Records     int      `yaml:"records,omitempty"`
	Unserved    []string `yaml:"unserved_producers,omitempty"`
	// MaxCost bounds the cost from above instead of matching it exactly.
	MaxCost float64 `yaml:"max_cost_eur,omitempty"`
}

// Fixture is one replayable case.
type Fixture struct {
	scenario.Scenario `yaml:",inline"`

	Strategies     []allocation.Strategy `yaml:"strategies,omitempty"`
	SharedCapacity bool                  `yaml:"shared_capacity,omitempty"`
	CostPerKm      float64               `yaml:"cost_per_km,omitempty"`
	Expected       Expected              `yaml:"expected"`
}

// Load reads a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if fx.Name == "" {
		return nil, fmt.Errorf("%s: fixture has no name", path)
	}
	if len(fx.Strategies) == 0 {
		fx.Strategies = []allocation.Strategy{allocation.StrategyGreedy}
	}
	return &fx, nil
}
