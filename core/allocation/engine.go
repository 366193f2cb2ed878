package allocation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/wasteflow/core/logger"
	"github.com/kilianp07/wasteflow/core/model"
)

// Result holds the output of one allocation run.
type Result struct {
	Records []model.AllocationRecord `json:"records"`
	Unmet   []model.UnmetDemand      `json:"unmet_demand"`
}

// allocator performs the allocation of a single category against a
// capacity pool it is allowed to mutate.
type allocator interface {
	name() Strategy
	allocate(cat model.Category, supplies []supply, p *pool, routes routeTable) (Result, error)
}

// Engine allocates forecasts per waste category.
type Engine struct {
	cfg      Config
	log      logger.Logger
	strategy allocator
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an Engine from cfg. Defaults are applied to a copy of cfg.
func New(cfg Config, opts ...Option) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, log: logger.Nop{}}
	for _, o := range opts {
		o(e)
	}
	switch cfg.Strategy {
	case StrategyMinCostFlow:
		e.strategy = minCostFlow{log: e.log}
	default:
		e.strategy = greedy{}
	}
	return e, nil
}

// Config returns the effective engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Allocate routes forecasts to processors along edges. Inputs are validated
// up front and never mutated. Categories are processed in configured order;
// forecasts for other categories are ignored.
func (e *Engine) Allocate(ctx context.Context, forecasts []model.ForecastEntry, processors []model.Processor, edges []model.TransportEdge) (Result, error) {
	if err := model.ValidateProcessors(processors); err != nil {
		return Result{}, err
	}
	if err := model.ValidateForecasts(forecasts); err != nil {
		return Result{}, err
	}
	routes, err := buildRoutes(edges, processors)
	if err != nil {
		return Result{}, err
	}
	byCat := e.groupSupplies(forecasts)

	results := make([]Result, len(e.cfg.Categories))
	if e.cfg.SharedCapacity || e.cfg.Sequential {
		shared := newPool(processors)
		for i, cat := range e.cfg.Categories {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			p := shared
			if !e.cfg.SharedCapacity {
				p = newPool(processors)
			}
			res, err := e.allocateCategory(cat, byCat[cat], p, routes)
			if err != nil {
				return Result{}, err
			}
			results[i] = res
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for i, cat := range e.cfg.Categories {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := e.allocateCategory(cat, byCat[cat], newPool(processors), routes)
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
	}

	var out Result
	for _, r := range results {
		out.Records = append(out.Records, r.Records...)
		out.Unmet = append(out.Unmet, r.Unmet...)
	}
	e.log.Infof("allocated %d records across %d categories (%s), %d producers underserved",
		len(out.Records), len(e.cfg.Categories), e.strategy.name(), len(out.Unmet))
	return out, nil
}

func (e *Engine) allocateCategory(cat model.Category, supplies []supply, p *pool, routes routeTable) (Result, error) {
	start := time.Now()
	res, err := e.strategy.allocate(cat, supplies, p, routes)
	if err != nil {
		return Result{}, fmt.Errorf("allocate %s: %w", cat, err)
	}
	var volume float64
	for _, r := range res.Records {
		volume += r.VolumeKg
	}
	e.log.Debugw("category allocated", map[string]any{
		"category":  string(cat),
		"producers": len(supplies),
		"records":   len(res.Records),
		"volume_kg": volume,
		"unmet":     len(res.Unmet),
	})
	categoryDuration.WithLabelValues(string(e.strategy.name())).Observe(time.Since(start).Seconds())
	recordsTotal.WithLabelValues(string(e.strategy.name())).Add(float64(len(res.Records)))
	return res, nil
}

// Allocatable returns the forecasts whose category is configured, in input
// order. Those are the only entries Allocate routes or reports as unmet.
func (e *Engine) Allocatable(forecasts []model.ForecastEntry) []model.ForecastEntry {
	wanted := make(map[model.Category]bool, len(e.cfg.Categories))
	for _, c := range e.cfg.Categories {
		wanted[c] = true
	}
	out := make([]model.ForecastEntry, 0, len(forecasts))
	for _, f := range forecasts {
		if !wanted[f.Category] {
			e.log.Debugf("ignoring forecast for %s: category %q not configured", f.ProducerID, f.Category)
			continue
		}
		out = append(out, f)
	}
	return out
}

// groupSupplies splits forecasts per configured category keeping input order.
func (e *Engine) groupSupplies(forecasts []model.ForecastEntry) map[model.Category][]supply {
	out := make(map[model.Category][]supply, len(e.cfg.Categories))
	for _, f := range e.Allocatable(forecasts) {
		out[f.Category] = append(out[f.Category], supply{producerID: f.ProducerID, volume: f.VolumeKg})
	}
	return out
}

type supply struct {
	producerID string
	volume     float64
}

// bySupplyDesc returns a copy of supplies sorted by descending volume. Ties
// keep input order.
func bySupplyDesc(supplies []supply) []supply {
	out := make([]supply, len(supplies))
	copy(out, supplies)
	sort.SliceStable(out, func(i, j int) bool { return out[i].volume > out[j].volume })
	return out
}

// pool tracks remaining processor capacity. It is owned by one category pass
// unless capacity is shared across categories.
type pool struct {
	order     []string
	remaining map[string]float64
}

func newPool(processors []model.Processor) *pool {
	p := &pool{order: make([]string, len(processors)), remaining: make(map[string]float64, len(processors))}
	for i, pr := range processors {
		p.order[i] = pr.ID
		p.remaining[pr.ID] = pr.CapacityKg
	}
	return p
}

// routeTable lists each producer's edges sorted by unit cost, ties by
// processor input order.
type routeTable map[string][]model.TransportEdge

func buildRoutes(edges []model.TransportEdge, processors []model.Processor) (routeTable, error) {
	rank := make(map[string]int, len(processors))
	for i, p := range processors {
		rank[p.ID] = i
	}
	type pair struct{ producer, processor string }
	seen := make(map[pair]struct{}, len(edges))
	routes := make(routeTable)
	for _, e := range edges {
		if _, ok := rank[e.ProcessorID]; !ok {
			return nil, model.Invalid("edges", "unknown processor %s", e.ProcessorID)
		}
		if e.ProducerID == "" {
			return nil, model.Invalid("edges", "edge to %s has an empty producer id", e.ProcessorID)
		}
		if !model.NonNegative(e.UnitCost) || !model.NonNegative(e.DistanceKm) {
			return nil, model.Invalid("edges", "%s->%s has a negative or non-finite cost/distance", e.ProducerID, e.ProcessorID)
		}
		k := pair{e.ProducerID, e.ProcessorID}
		if _, ok := seen[k]; ok {
			return nil, model.Invalid("edges", "duplicate edge %s->%s", e.ProducerID, e.ProcessorID)
		}
		seen[k] = struct{}{}
		routes[e.ProducerID] = append(routes[e.ProducerID], e)
	}
	for _, list := range routes {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].UnitCost != list[j].UnitCost {
				return list[i].UnitCost < list[j].UnitCost
			}
			return rank[list[i].ProcessorID] < rank[list[j].ProcessorID]
		})
	}
	return routes, nil
}

func newRecord(cat model.Category, e model.TransportEdge, volume float64) model.AllocationRecord {
	return model.AllocationRecord{
		Category:    cat,
		ProducerID:  e.ProducerID,
		ProcessorID: e.ProcessorID,
		VolumeKg:    volume,
		DistanceKm:  e.DistanceKm,
		UnitCost:    e.UnitCost,
		TotalCost:   volume * e.UnitCost,
	}
}
