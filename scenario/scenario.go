// Package scenario loads allocation inputs from YAML or JSON files.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/wasteflow/core/forecast"
	"github.com/kilianp07/wasteflow/core/model"
)

// Scenario is one allocation input set.
type Scenario struct {
	Name        string                `json:"name,omitempty" yaml:"name,omitempty"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Producers   []model.Producer      `json:"producers" yaml:"producers"`
	Processors  []model.Processor     `json:"processors" yaml:"processors"`
	Forecasts   []model.ForecastEntry `json:"forecasts,omitempty" yaml:"forecasts,omitempty"`
	History     []model.Observation   `json:"history,omitempty" yaml:"history,omitempty"`
	// Edges replaces the computed transport network when set. Pairs left
	// out have no route.
	Edges []model.TransportEdge `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Load reads a scenario file. yaml.v3 accepts JSON documents as well.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a scenario document.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &sc, nil
}

// ResolveForecasts returns the explicit forecasts plus, for every
// (producer, category) pair that only appears in History, the entry produced
// by f. Explicit entries win. A nil f skips history.
func (s *Scenario) ResolveForecasts(f forecast.Forecaster) ([]model.ForecastEntry, error) {
	out := make([]model.ForecastEntry, len(s.Forecasts), len(s.Forecasts)+len(s.History))
	copy(out, s.Forecasts)
	if f == nil || len(s.History) == 0 {
		return out, nil
	}
	type key struct {
		p string
		c model.Category
	}
	explicit := make(map[key]struct{}, len(s.Forecasts))
	for _, e := range s.Forecasts {
		explicit[key{e.ProducerID, e.Category}] = struct{}{}
	}
	predicted, err := f.Forecast(s.History)
	if err != nil {
		return nil, fmt.Errorf("forecast history: %w", err)
	}
	for _, e := range predicted {
		if _, ok := explicit[key{e.ProducerID, e.Category}]; ok {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Validate checks ids and that every forecast and explicit edge references a
// known site.
func (s *Scenario) Validate(forecasts []model.ForecastEntry) error {
	if err := model.ValidateProducers(s.Producers); err != nil {
		return err
	}
	if err := model.ValidateProcessors(s.Processors); err != nil {
		return err
	}
	if err := model.ValidateForecasts(forecasts); err != nil {
		return err
	}
	known := make(map[string]struct{}, len(s.Producers))
	for _, p := range s.Producers {
		known[p.ID] = struct{}{}
	}
	for _, f := range forecasts {
		if _, ok := known[f.ProducerID]; !ok {
			return model.Invalid("forecasts", "unknown producer %s", f.ProducerID)
		}
	}
	for _, e := range s.Edges {
		if _, ok := known[e.ProducerID]; !ok {
			return model.Invalid("edges", "unknown producer %s", e.ProducerID)
		}
	}
	return nil
}
