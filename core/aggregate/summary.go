// Package aggregate summarises allocation records for reporting.
package aggregate

import (
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/wasteflow/core/model"
)

// CategoryTotals aggregates one waste category.
type CategoryTotals struct {
	Category   model.Category `json:"waste_type"`
	VolumeKg   float64        `json:"allocated_volume_kg"`
	Cost       float64        `json:"total_cost_eur"`
	Records    int            `json:"records"`
	ForecastKg float64        `json:"forecasted_volume_kg"`
	// ShortfallKg is forecast minus allocated volume, never negative.
	ShortfallKg float64 `json:"shortfall_kg"`
}

// DistanceStats describes record distances. All fields are zero when there
// are no records.
type DistanceStats struct {
	Min  float64 `json:"min_km"`
	Mean float64 `json:"mean_km"`
	Max  float64 `json:"max_km"`
}

// ProcessorUtilization is the share of nominal capacity routed to a
// processor across all categories.
type ProcessorUtilization struct {
	ProcessorID string  `json:"processor_id"`
	AllocatedKg float64 `json:"allocated_kg"`
	CapacityKg  float64 `json:"capacity_kg"`
	Ratio       float64 `json:"ratio"`
}

// Summary is the read-only view over an allocation run.
type Summary struct {
	TotalVolumeKg   float64                `json:"total_allocated_kg"`
	TotalCost       float64                `json:"total_cost_eur"`
	TotalForecastKg float64                `json:"total_forecast_kg"`
	ShortfallKg     float64                `json:"shortfall_kg"`
	Categories      []CategoryTotals       `json:"categories"`
	Distance        DistanceStats          `json:"distance"`
	Utilization     []ProcessorUtilization `json:"utilization"`
}

// Summarize computes totals, distance statistics and utilization. It never
// mutates its inputs and may be called repeatedly. Categories appear in
// order of first appearance in records, then forecasts.
func Summarize(records []model.AllocationRecord, processors []model.Processor, forecasts []model.ForecastEntry) Summary {
	var s Summary
	idx := map[model.Category]int{}
	cat := func(c model.Category) *CategoryTotals {
		i, ok := idx[c]
		if !ok {
			i = len(s.Categories)
			idx[c] = i
			s.Categories = append(s.Categories, CategoryTotals{Category: c})
		}
		return &s.Categories[i]
	}

	total := decimal.Zero
	perCat := map[model.Category]decimal.Decimal{}
	routed := make(map[string]float64, len(processors))
	distances := make([]float64, 0, len(records))
	for _, r := range records {
		c := cat(r.Category)
		c.VolumeKg += r.VolumeKg
		c.Records++
		cost := decimal.NewFromFloat(r.TotalCost)
		perCat[r.Category] = perCat[r.Category].Add(cost)
		total = total.Add(cost)
		s.TotalVolumeKg += r.VolumeKg
		routed[r.ProcessorID] += r.VolumeKg
		distances = append(distances, r.DistanceKm)
	}
	for _, f := range forecasts {
		cat(f.Category).ForecastKg += f.VolumeKg
		s.TotalForecastKg += f.VolumeKg
	}
	for i := range s.Categories {
		c := &s.Categories[i]
		c.Cost = perCat[c.Category].InexactFloat64()
		c.ShortfallKg = shortfall(c.ForecastKg, c.VolumeKg)
	}
	s.TotalCost = total.InexactFloat64()
	s.ShortfallKg = shortfall(s.TotalForecastKg, s.TotalVolumeKg)

	if len(distances) > 0 {
		s.Distance = DistanceStats{
			Min:  floats.Min(distances),
			Mean: stat.Mean(distances, nil),
			Max:  floats.Max(distances),
		}
	}

	s.Utilization = make([]ProcessorUtilization, 0, len(processors))
	for _, p := range processors {
		u := ProcessorUtilization{ProcessorID: p.ID, AllocatedKg: routed[p.ID], CapacityKg: p.CapacityKg}
		if p.CapacityKg > 0 {
			u.Ratio = u.AllocatedKg / p.CapacityKg
		}
		s.Utilization = append(s.Utilization, u)
	}
	return s
}

func shortfall(forecast, allocated float64) float64 {
	if d := forecast - allocated; d > 0 {
		return d
	}
	return 0
}

// Category returns the totals for c, if present.
func (s Summary) Category(c model.Category) (CategoryTotals, bool) {
	for _, ct := range s.Categories {
		if ct.Category == c {
			return ct, true
		}
	}
	return CategoryTotals{}, false
}
