package allocation

import (
	"errors"
	"fmt"

	"github.com/kilianp07/wasteflow/core/model"
)

// Strategy selects the per-category allocation algorithm.
type Strategy string

const (
	StrategyGreedy      Strategy = "greedy"
	StrategyMinCostFlow Strategy = "min_cost_flow"
)

// ErrUnknownStrategy is returned for unsupported strategy names.
var ErrUnknownStrategy = errors.New("unknown allocation strategy")

// Config defines allocation settings.
type Config struct {
	// Categories lists the waste categories in allocation order.
	Categories []model.Category `json:"waste_categories"`
	// SharedCapacity makes categories draw from one capacity pool instead
	// of each seeing full processor capacity.
	SharedCapacity bool     `json:"shared_capacity_across_categories"`
	Strategy       Strategy `json:"strategy"`
	// Sequential disables the per-category fan-out.
	Sequential bool `json:"sequential"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if len(c.Categories) == 0 {
		c.Categories = model.DefaultCategories()
	}
	if c.Strategy == "" {
		c.Strategy = StrategyGreedy
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Strategy {
	case StrategyGreedy, StrategyMinCostFlow:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}
	seen := make(map[model.Category]struct{}, len(c.Categories))
	for _, cat := range c.Categories {
		if cat == "" {
			return model.Invalid("waste_categories", "empty category label")
		}
		if _, ok := seen[cat]; ok {
			return model.Invalid("waste_categories", "duplicate category %s", cat)
		}
		seen[cat] = struct{}{}
	}
	return nil
}
