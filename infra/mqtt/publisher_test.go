package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
	"github.com/kilianp07/wasteflow/core/model"
)

func planRun() coremetrics.RunEvent {
	return coremetrics.RunEvent{
		RunID:    "run-7",
		Finished: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Records: []model.AllocationRecord{
			{Category: model.CategoryOrganic, ProducerID: "H1", ProcessorID: "C1", VolumeKg: 800, DistanceKm: 5, TotalCost: 8000},
			{Category: model.CategoryOrganic, ProducerID: "H1", ProcessorID: "C2", VolumeKg: 200, DistanceKm: 7.5, TotalCost: 3000},
			{Category: model.CategoryPaper, ProducerID: "R1", ProcessorID: "C1", VolumeKg: 50, DistanceKm: 6, TotalCost: 600},
		},
	}
}

func TestBuildPlans(t *testing.T) {
	plans := BuildPlans(planRun())
	if len(plans) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(plans))
	}
	if plans[0].ProcessorID != "C1" || plans[0].TotalKg != 850 || len(plans[0].Pickups) != 2 {
		t.Fatalf("unexpected C1 plan %+v", plans[0])
	}
	if plans[1].ProcessorID != "C2" || plans[1].Pickups[0].ProducerID != "H1" {
		t.Fatalf("unexpected C2 plan %+v", plans[1])
	}
	if len(BuildPlans(coremetrics.RunEvent{})) != 0 {
		t.Fatal("expected no plans for empty run")
	}
}

func TestPublishPlan_TopicsAndPayload(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	pub, err := NewPlanPublisher(Config{Broker: "tcp://localhost:1883", PlanTopic: "city/plans/", QoS: 1, Retain: true})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	if err := pub.PublishPlan(context.Background(), planRun()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(mc.published))
	}
	if mc.published[0].topic != "city/plans/C1" || mc.published[1].topic != "city/plans/C2" {
		t.Fatalf("unexpected topics %q %q", mc.published[0].topic, mc.published[1].topic)
	}
	if mc.published[0].qos != 1 || !mc.published[0].retain {
		t.Fatalf("qos/retain not applied")
	}
	var msg PlanMessage
	if err := json.Unmarshal(mc.published[0].payload, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.RunID != "run-7" || msg.TotalKg != 850 || msg.Pickups[1].Category != model.CategoryPaper {
		t.Fatalf("unexpected payload %+v", msg)
	}
	pub.Disconnect()
	if mc.disconnects != 1 {
		t.Fatalf("expected disconnect")
	}
}

func TestPublishPlan_Retry(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("net fail"), nil}}
	useMock(t, mc)
	pub, err := NewPlanPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	ev := planRun()
	ev.Records = ev.Records[:1]
	if err := pub.PublishPlan(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(mc.published) != 2 {
		t.Fatalf("expected a retry, got %d publishes", len(mc.published))
	}
}

func TestPublishPlan_GivesUp(t *testing.T) {
	fail := errors.New("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	useMock(t, mc)
	pub, err := NewPlanPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	err = pub.PublishPlan(context.Background(), planRun())
	if !errors.Is(err, fail) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if len(mc.published) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(mc.published))
	}
}

func TestPublishPlan_ContextCanceled(t *testing.T) {
	fail := errors.New("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail, fail}}
	useMock(t, mc)
	pub, err := NewPlanPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 3, BackoffMS: 1000})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pub.PublishPlan(ctx, planRun()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestForward(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	pub, err := NewPlanPublisher(Config{Broker: "tcp://localhost:1883"})
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	ch := make(chan coremetrics.RunEvent, 1)
	ch <- planRun()
	close(ch)
	pub.Forward(context.Background(), ch)
	if len(mc.published) != 2 {
		t.Fatalf("expected forwarded plan, got %d messages", len(mc.published))
	}
}
