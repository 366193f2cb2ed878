package network

import (
	"math"

	"github.com/kilianp07/wasteflow/core/geo"
	"github.com/kilianp07/wasteflow/core/model"
)

// DefaultCostPerKm is the transport price in currency units per kilometer.
const DefaultCostPerKm = 2.0

// Config holds the network construction parameters.
type Config struct {
	// CostPerKm converts distance into a per-kilogram transport cost.
	CostPerKm float64 `json:"cost_per_km"`
	// EarthRadiusKm is the sphere radius used for distances.
	EarthRadiusKm float64 `json:"earth_radius_km"`
	// Bounds restricts accepted coordinates. Zero value disables the check.
	Bounds geo.Bounds `json:"bounds"`
}

// SetDefaults applies sane defaults. A zero cost or radius means default.
func (c *Config) SetDefaults() {
	if c.CostPerKm == 0 {
		c.CostPerKm = DefaultCostPerKm
	}
	if c.EarthRadiusKm == 0 {
		c.EarthRadiusKm = geo.EarthRadiusKm
	}
}

// Validate checks the configured values.
func (c Config) Validate() error {
	if c.CostPerKm < 0 || math.IsNaN(c.CostPerKm) || math.IsInf(c.CostPerKm, 0) {
		return model.Invalid("cost_per_km", "must be a finite value >= 0, got %v", c.CostPerKm)
	}
	if c.EarthRadiusKm <= 0 || math.IsNaN(c.EarthRadiusKm) || math.IsInf(c.EarthRadiusKm, 0) {
		return model.Invalid("earth_radius_km", "must be a finite value > 0, got %v", c.EarthRadiusKm)
	}
	if err := c.Bounds.Validate(); err != nil {
		return model.Invalid("bounds", "%v", err)
	}
	return nil
}
