// Package network builds the complete bipartite transport network between
// waste producers and processors. Every producer is connected to every
// processor; there is no distance cutoff.
package network

import (
	"github.com/kilianp07/wasteflow/core/geo"
	"github.com/kilianp07/wasteflow/core/model"
)

// Builder derives transport edges from producer and processor coordinates.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder for cfg with defaults applied.
func NewBuilder(cfg Config) Builder {
	cfg.SetDefaults()
	return Builder{cfg: cfg}
}

// Config returns the effective configuration.
func (b Builder) Config() Config { return b.cfg }

// Validate checks producers and processors without building anything.
func (b Builder) Validate(producers []model.Producer, processors []model.Processor) error {
	if err := b.cfg.Validate(); err != nil {
		return err
	}
	if err := model.ValidateProducers(producers); err != nil {
		return err
	}
	if err := model.ValidateProcessors(processors); err != nil {
		return err
	}
	for _, p := range producers {
		if err := b.checkPoint(p.Location()); err != nil {
			return model.Invalid("producers", "%s: %v", p.ID, err)
		}
	}
	for _, p := range processors {
		if err := b.checkPoint(p.Location()); err != nil {
			return model.Invalid("processors", "%s: %v", p.ID, err)
		}
	}
	return nil
}

func (b Builder) checkPoint(p geo.Point) error {
	if err := geo.ValidatePoint(p); err != nil {
		return err
	}
	if !b.cfg.Bounds.Contains(p) {
		return errOutsideBounds
	}
	return nil
}

// Build returns exactly len(producers)*len(processors) edges, ordered by
// producer then processor input order. Invalid input returns no edges.
func (b Builder) Build(producers []model.Producer, processors []model.Processor) ([]model.TransportEdge, error) {
	if err := b.Validate(producers, processors); err != nil {
		return nil, err
	}
	edges := make([]model.TransportEdge, 0, len(producers)*len(processors))
	for _, p := range producers {
		for _, pr := range processors {
			d := geo.DistanceWithRadius(p.Location(), pr.Location(), b.cfg.EarthRadiusKm)
			edges = append(edges, model.TransportEdge{
				ProducerID:  p.ID,
				ProcessorID: pr.ID,
				DistanceKm:  d,
				UnitCost:    d * b.cfg.CostPerKm,
			})
		}
	}
	return edges, nil
}
