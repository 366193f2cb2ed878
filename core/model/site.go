package model

import "github.com/kilianp07/wasteflow/core/geo"

// Producer is a tourism business generating waste (hotel, restaurant, café).
type Producer struct {
	ID        string  `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Location returns the producer coordinates.
func (p Producer) Location() geo.Point { return geo.Point{Lat: p.Latitude, Lon: p.Longitude} }

// Processor is a facility accepting waste up to a monthly capacity.
type Processor struct {
	ID         string  `json:"id" yaml:"id"`
	Name       string  `json:"name" yaml:"name"`
	Latitude   float64 `json:"latitude" yaml:"latitude"`
	Longitude  float64 `json:"longitude" yaml:"longitude"`
	CapacityKg float64 `json:"capacity_kg_per_month" yaml:"capacity_kg_per_month"`
}

// Location returns the processor coordinates.
func (p Processor) Location() geo.Point { return geo.Point{Lat: p.Latitude, Lon: p.Longitude} }

// ValidateProducers checks IDs are present and unique.
func ValidateProducers(producers []Producer) error {
	seen := make(map[string]struct{}, len(producers))
	for i, p := range producers {
		if p.ID == "" {
			return Invalid("producers", "entry %d has an empty id", i)
		}
		if _, ok := seen[p.ID]; ok {
			return Invalid("producers", "duplicate id %s", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// ValidateProcessors checks IDs are present and unique and capacities are
// finite and non-negative.
func ValidateProcessors(processors []Processor) error {
	seen := make(map[string]struct{}, len(processors))
	for i, p := range processors {
		if p.ID == "" {
			return Invalid("processors", "entry %d has an empty id", i)
		}
		if _, ok := seen[p.ID]; ok {
			return Invalid("processors", "duplicate id %s", p.ID)
		}
		seen[p.ID] = struct{}{}
		if !NonNegative(p.CapacityKg) {
			return Invalid("processors", "capacity of %s must be finite and >= 0, got %v", p.ID, p.CapacityKg)
		}
	}
	return nil
}
