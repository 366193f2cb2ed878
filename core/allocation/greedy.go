package allocation

import (
	"math"

	"github.com/kilianp07/wasteflow/core/model"
)

// greedy serves producers by descending supply, each along its cheapest
// edges first.
type greedy struct{}

func (greedy) name() Strategy { return StrategyGreedy }

func (greedy) allocate(cat model.Category, supplies []supply, p *pool, routes routeTable) (Result, error) {
	var res Result
	for _, s := range bySupplyDesc(supplies) {
		remaining := s.volume
		if remaining <= 0 {
			continue
		}
		for _, e := range routes[s.producerID] {
			if remaining <= 0 {
				break
			}
			available := p.remaining[e.ProcessorID]
			if available <= 0 {
				continue
			}
			amount := math.Min(remaining, available)
			res.Records = append(res.Records, newRecord(cat, e, amount))
			p.remaining[e.ProcessorID] = available - amount
			remaining -= amount
		}
		if remaining > 0 {
			res.Unmet = append(res.Unmet, model.UnmetDemand{
				Category:   cat,
				ProducerID: s.producerID,
				ForecastKg: s.volume,
				UnservedKg: remaining,
			})
		}
	}
	return res, nil
}
