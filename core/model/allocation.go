package model

// TransportEdge links a producer to a processor with its transport cost.
type TransportEdge struct {
	ProducerID  string  `json:"producer_id" yaml:"producer_id"`
	ProcessorID string  `json:"processor_id" yaml:"processor_id"`
	DistanceKm  float64 `json:"distance_km" yaml:"distance_km"`
	UnitCost    float64 `json:"unit_cost_eur" yaml:"unit_cost_eur"`
}

// AllocationRecord is one unit of assigned flow for a category.
type AllocationRecord struct {
	Category    Category `json:"waste_type"`
	ProducerID  string   `json:"producer_id"`
	ProcessorID string   `json:"processor_id"`
	VolumeKg    float64  `json:"allocated_volume_kg"`
	DistanceKm  float64  `json:"distance_km"`
	UnitCost    float64  `json:"unit_cost_eur"`
	TotalCost   float64  `json:"total_cost_eur"`
}

// UnmetDemand reports forecasted volume that no processor could absorb.
type UnmetDemand struct {
	Category   Category `json:"waste_type"`
	ProducerID string   `json:"producer_id"`
	ForecastKg float64  `json:"forecasted_volume_kg"`
	UnservedKg float64  `json:"unserved_volume_kg"`
}
