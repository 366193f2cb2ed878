package forecast

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/wasteflow/core/model"
)

// Forecaster predicts next-period volumes from history.
type Forecaster interface {
	Forecast(history []model.Observation) ([]model.ForecastEntry, error)
}

// AverageForecaster predicts the mean of the most recent observations per
// (producer, category). Bounds are mean minus and plus one population
// standard deviation.
type AverageForecaster struct {
	// Window is the number of most recent observations used. Zero or
	// negative uses all of them.
	Window int
}

type seriesKey struct {
	producer string
	category model.Category
}

// Forecast implements Forecaster.
func (a AverageForecaster) Forecast(history []model.Observation) ([]model.ForecastEntry, error) {
	order, series, err := group(history)
	if err != nil {
		return nil, err
	}
	out := make([]model.ForecastEntry, 0, len(order))
	for _, k := range order {
		obs := series[k]
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].Period.Before(obs[j].Period) })
		if a.Window > 0 && len(obs) > a.Window {
			obs = obs[len(obs)-a.Window:]
		}
		vals := make([]float64, len(obs))
		for i, o := range obs {
			vals[i] = o.VolumeKg
		}
		mean, std := stat.PopMeanStdDev(vals, nil)
		out = append(out, model.ForecastEntry{
			ProducerID: k.producer,
			Category:   k.category,
			VolumeKg:   math.Max(mean, 0),
			LowerKg:    math.Max(mean-std, 0),
			UpperKg:    mean + std,
		})
	}
	return out, nil
}

// group splits history into per-pair series, preserving first-seen order.
// The returned slices are copies.
func group(history []model.Observation) ([]seriesKey, map[seriesKey][]model.Observation, error) {
	var order []seriesKey
	series := make(map[seriesKey][]model.Observation)
	for i, o := range history {
		if o.ProducerID == "" {
			return nil, nil, model.Invalid("history", "entry %d has an empty producer id", i)
		}
		if o.VolumeKg < 0 || math.IsNaN(o.VolumeKg) || math.IsInf(o.VolumeKg, 0) {
			return nil, nil, model.Invalid("history", "volume for %s/%s must be a finite value >= 0, got %v", o.ProducerID, o.Category, o.VolumeKg)
		}
		k := seriesKey{o.ProducerID, o.Category}
		if _, ok := series[k]; !ok {
			order = append(order, k)
		}
		series[k] = append(series[k], o)
	}
	return order, series, nil
}

// Static returns fixed entries regardless of history. Useful for tests and
// for replaying forecasts produced elsewhere.
type Static struct {
	Entries []model.ForecastEntry
}

// Forecast returns a copy of the configured entries.
func (s Static) Forecast([]model.Observation) ([]model.ForecastEntry, error) {
	if s.Entries == nil {
		return nil, nil
	}
	cp := make([]model.ForecastEntry, len(s.Entries))
	copy(cp, s.Entries)
	return cp, nil
}
