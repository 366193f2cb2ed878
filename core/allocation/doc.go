// Package allocation assigns forecasted waste volumes to processors.
//
// Each waste category is allocated as an independent pool: by default every
// category sees the full nominal capacity of each processor. Setting
// Config.SharedCapacity threads one capacity map through the categories in
// order instead.
//
// Two strategies implement the per-category step:
//   - StrategyGreedy serves the largest producers first, each along its
//     cheapest edges, until supply or capacity runs out.
//   - StrategyMinCostFlow solves the transportation linear program with the
//     gonum simplex solver and falls back to greedy when the solver fails.
//
// Supply that cannot be routed is never an error; it is reported as
// model.UnmetDemand entries next to the allocation records.
package allocation
