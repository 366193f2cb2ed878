package scenarios

import (
	"context"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/wasteflow/app"
	"github.com/kilianp07/wasteflow/config"
	"github.com/kilianp07/wasteflow/core/allocation"
	"github.com/kilianp07/wasteflow/infra/metrics"
)

const tolerance = 1e-6

// RunFixture allocates fx once per strategy and reports mismatches.
func RunFixture(t *testing.T, fx *Fixture) {
	t.Helper()
	for _, s := range fx.Strategies {
		t.Run(string(s), func(t *testing.T) { runStrategy(t, fx, s) })
	}
}

func runStrategy(t *testing.T, fx *Fixture, strategy allocation.Strategy) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	cfg := config.Default()
	cfg.Allocation.Strategy = strategy
	cfg.Allocation.SharedCapacity = fx.SharedCapacity
	if fx.CostPerKm > 0 {
		cfg.Network.CostPerKm = fx.CostPerKm
	}
	pipe, err := app.NewPipeline(cfg, app.WithSink(sink))
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	sc := fx.Scenario
	ev, err := pipe.Run(context.Background(), &sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := fx.Expected
	sum := ev.Summary
	if !near(sum.TotalVolumeKg, want.TotalKg) {
		t.Errorf("total allocated = %v, want %v", sum.TotalVolumeKg, want.TotalKg)
	}
	if !near(sum.ShortfallKg, want.ShortfallKg) {
		t.Errorf("shortfall = %v, want %v", sum.ShortfallKg, want.ShortfallKg)
	}
	switch {
	case want.MaxCost > 0:
		if sum.TotalCost > want.MaxCost+tolerance {
			t.Errorf("total cost = %v, want <= %v", sum.TotalCost, want.MaxCost)
		}
	default:
		if !near(sum.TotalCost, want.TotalCost) {
			t.Errorf("total cost = %v, want %v", sum.TotalCost, want.TotalCost)
		}
	}
	if want.Records > 0 && len(ev.Records) != want.Records {
		t.Errorf("records = %d, want %d", len(ev.Records), want.Records)
	}
	if want.Unserved != nil {
		got := map[string]bool{}
		for _, u := range ev.Unmet {
			got[u.ProducerID] = true
		}
		for _, id := range want.Unserved {
			if !got[id] {
				t.Errorf("producer %s expected unserved", id)
			}
		}
		if len(got) != len(want.Unserved) {
			t.Errorf("unserved producers = %v, want %v", got, want.Unserved)
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 && len(ev.Records) > 0 {
		t.Errorf("no metrics recorded")
	}
}

func near(a, b float64) bool { return math.Abs(a-b) <= tolerance*math.Max(1, math.Abs(b)) }
