package allocation

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/wasteflow/core/logger"
	"github.com/kilianp07/wasteflow/core/model"
)

// LP solutions are snapped to a micro-kilogram grid; smaller flows are noise.
const (
	flowScale = 1e6
	minFlow   = 1 / flowScale
)

// minCostFlow solves the transportation problem of a category as a linear
// program:
//
//	minimise   Σ c_ij x_ij
//	s.t.       Σ_j x_ij + s_i = supply_i       (one row per producer)
//	           Σ_i x_ij + t_j = capacity_j     (one row per processor)
//	           Σ x_ij         = min(Σ supply, Σ capacity)
//	           x, s, t >= 0
//
// The slack columns keep the constraint matrix full row rank.
type minCostFlow struct {
	log logger.Logger
}

func (minCostFlow) name() Strategy { return StrategyMinCostFlow }

// lpSolve points to the standard-form solver. Tests override it to simulate
// solver failures.
var lpSolve = func(c []float64, a mat.Matrix, b []float64) ([]float64, error) {
	_, x, err := lp.Simplex(c, a, b, 1e-9, nil)
	return x, err
}

type lpColumn struct {
	supplyIdx int
	edge      model.TransportEdge
}

func (m minCostFlow) allocate(cat model.Category, supplies []supply, p *pool, routes routeTable) (Result, error) {
	order := bySupplyDesc(supplies)

	procRow := make(map[string]int)
	var procs []string
	var totalCap float64
	for _, id := range p.order {
		if p.remaining[id] > 0 {
			procRow[id] = len(procs)
			procs = append(procs, id)
			totalCap += p.remaining[id]
		}
	}

	var active []supply
	var cols []lpColumn
	var totalSupply float64
	for _, s := range order {
		if s.volume <= 0 {
			continue
		}
		idx := len(active)
		added := false
		for _, e := range routes[s.producerID] {
			if _, ok := procRow[e.ProcessorID]; !ok {
				continue
			}
			cols = append(cols, lpColumn{supplyIdx: idx, edge: e})
			added = true
		}
		if added {
			active = append(active, s)
			totalSupply += s.volume
		}
	}

	var res Result
	served := make(map[string]float64, len(active))
	target := math.Min(totalSupply, totalCap)
	if len(cols) > 0 && target > 0 {
		c, a, b := transportLP(cols, active, procs, procRow, p, target)
		x, err := lpSolve(c, a, b)
		if err != nil {
			m.log.Warnf("min cost flow for %s failed, falling back to greedy: %v", cat, err)
			fallbacksTotal.Inc()
			return greedy{}.allocate(cat, supplies, p, routes)
		}
		for k, col := range cols {
			s := active[col.supplyIdx]
			v := math.Round(x[k]*flowScale) / flowScale
			v = math.Min(v, s.volume-served[s.producerID])
			v = math.Min(v, p.remaining[col.edge.ProcessorID])
			if v < minFlow {
				continue
			}
			res.Records = append(res.Records, newRecord(cat, col.edge, v))
			served[s.producerID] += v
			p.remaining[col.edge.ProcessorID] -= v
		}
	}

	for _, s := range order {
		if s.volume <= 0 {
			continue
		}
		if left := s.volume - served[s.producerID]; left >= minFlow {
			res.Unmet = append(res.Unmet, model.UnmetDemand{
				Category:   cat,
				ProducerID: s.producerID,
				ForecastKg: s.volume,
				UnservedKg: left,
			})
		}
	}
	return res, nil
}

// transportLP builds the standard-form program described on minCostFlow.
// Column layout: edge flows, producer slacks, processor slacks.
func transportLP(cols []lpColumn, active []supply, procs []string, procRow map[string]int, p *pool, target float64) ([]float64, *mat.Dense, []float64) {
	nVar, nP, nR := len(cols), len(active), len(procs)
	rows := nP + nR + 1
	width := nVar + nP + nR

	c := make([]float64, width)
	a := mat.NewDense(rows, width, nil)
	b := make([]float64, rows)
	for k, col := range cols {
		c[k] = col.edge.UnitCost
		a.Set(col.supplyIdx, k, 1)
		a.Set(nP+procRow[col.edge.ProcessorID], k, 1)
		a.Set(rows-1, k, 1)
	}
	for i, s := range active {
		a.Set(i, nVar+i, 1)
		b[i] = s.volume
	}
	for j, id := range procs {
		a.Set(nP+j, nVar+nP+j, 1)
		b[nP+j] = p.remaining[id]
	}
	b[rows-1] = target
	return c, a, b
}
