package model

import "time"

// Category labels a waste stream such as organic, plastic or paper.
type Category string

// Default waste categories, in allocation order.
const (
	CategoryOrganic Category = "organic"
	CategoryPlastic Category = "plastic"
	CategoryPaper   Category = "paper"
)

// DefaultCategories returns the default category order.
func DefaultCategories() []Category {
	return []Category{CategoryOrganic, CategoryPlastic, CategoryPaper}
}

// ForecastEntry is the predicted volume for one producer and category over
// the next period. LowerKg and UpperKg are informational bounds.
type ForecastEntry struct {
	ProducerID string   `json:"producer_id" yaml:"producer_id"`
	Category   Category `json:"waste_type" yaml:"waste_type"`
	VolumeKg   float64  `json:"forecasted_volume_kg" yaml:"forecasted_volume_kg"`
	LowerKg    float64  `json:"lower_bound,omitempty" yaml:"lower_bound,omitempty"`
	UpperKg    float64  `json:"upper_bound,omitempty" yaml:"upper_bound,omitempty"`
}

// Observation is one historical measurement used for forecasting.
type Observation struct {
	ProducerID string    `json:"producer_id" yaml:"producer_id"`
	Category   Category  `json:"waste_type" yaml:"waste_type"`
	Period     time.Time `json:"date" yaml:"date"`
	VolumeKg   float64   `json:"volume_kg" yaml:"volume_kg"`
}

// ValidateForecasts rejects negative or non-finite volumes and duplicate
// (producer, category) pairs.
func ValidateForecasts(forecasts []ForecastEntry) error {
	type key struct {
		p string
		c Category
	}
	seen := make(map[key]struct{}, len(forecasts))
	for i, f := range forecasts {
		if f.ProducerID == "" {
			return Invalid("forecasts", "entry %d has an empty producer id", i)
		}
		if !NonNegative(f.VolumeKg) {
			return Invalid("forecasts", "volume for %s/%s must be finite and >= 0, got %v", f.ProducerID, f.Category, f.VolumeKg)
		}
		k := key{f.ProducerID, f.Category}
		if _, ok := seen[k]; ok {
			return Invalid("forecasts", "duplicate forecast for %s/%s", f.ProducerID, f.Category)
		}
		seen[k] = struct{}{}
	}
	return nil
}
