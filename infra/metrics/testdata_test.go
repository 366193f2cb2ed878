package metrics

import (
	"time"

	"github.com/kilianp07/wasteflow/core/aggregate"
	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
	"github.com/kilianp07/wasteflow/core/model"
)

func sampleRun(finished time.Time) coremetrics.RunEvent {
	records := []model.AllocationRecord{
		{Category: model.CategoryOrganic, ProducerID: "P1", ProcessorID: "PR1", VolumeKg: 800, DistanceKm: 5, UnitCost: 10, TotalCost: 8000},
		{Category: model.CategoryPlastic, ProducerID: "P2", ProcessorID: "PR2", VolumeKg: 500, DistanceKm: 4, UnitCost: 8, TotalCost: 4000},
	}
	processors := []model.Processor{{ID: "PR1", CapacityKg: 800}, {ID: "PR2", CapacityKg: 1000}}
	unmet := []model.UnmetDemand{{Category: model.CategoryOrganic, ProducerID: "P1", ForecastKg: 1000, UnservedKg: 200}}
	return coremetrics.RunEvent{
		RunID:    "run-1",
		Strategy: "greedy",
		Started:  finished.Add(-250 * time.Millisecond),
		Finished: finished,
		Records:  records,
		Unmet:    unmet,
		Summary:  aggregate.Summarize(records, processors, nil),
	}
}
