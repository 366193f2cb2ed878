package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
	"github.com/kilianp07/wasteflow/core/model"
	"github.com/kilianp07/wasteflow/infra/logger"
)

// PlanMessage is the payload sent to one processor.
type PlanMessage struct {
	RunID       string      `json:"run_id"`
	ProcessorID string      `json:"processor_id"`
	GeneratedAt time.Time   `json:"generated_at"`
	TotalKg     float64     `json:"total_kg"`
	Pickups     []PlanEntry `json:"pickups"`
}

// PlanEntry is one producer pickup inside a plan.
type PlanEntry struct {
	Category   model.Category `json:"waste_type"`
	ProducerID string         `json:"producer_id"`
	VolumeKg   float64        `json:"allocated_volume_kg"`
	DistanceKm float64        `json:"distance_km"`
	TotalCost  float64        `json:"total_cost_eur"`
}

// PlanPublisher sends per-processor allocation plans to
// <plan_topic>/<processor_id>.
type PlanPublisher struct {
	cli        pahoClient
	topic      string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewPlanPublisher connects to the broker.
func NewPlanPublisher(cfg Config) (*PlanPublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) { log.Warnf("reconnecting to MQTT broker") }

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &PlanPublisher{
		cli:        c,
		topic:      strings.TrimSuffix(cfg.PlanTopic, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// BuildPlans groups run records by processor in order of first appearance.
func BuildPlans(ev coremetrics.RunEvent) []PlanMessage {
	idx := map[string]int{}
	var plans []PlanMessage
	for _, r := range ev.Records {
		i, ok := idx[r.ProcessorID]
		if !ok {
			i = len(plans)
			idx[r.ProcessorID] = i
			plans = append(plans, PlanMessage{RunID: ev.RunID, ProcessorID: r.ProcessorID, GeneratedAt: ev.Finished})
		}
		plans[i].TotalKg += r.VolumeKg
		plans[i].Pickups = append(plans[i].Pickups, PlanEntry{
			Category:   r.Category,
			ProducerID: r.ProducerID,
			VolumeKg:   r.VolumeKg,
			DistanceKm: r.DistanceKm,
			TotalCost:  r.TotalCost,
		})
	}
	return plans
}

// PublishPlan sends one message per processor that received waste. It
// stops at the first message that still fails after retries.
func (p *PlanPublisher) PublishPlan(ctx context.Context, ev coremetrics.RunEvent) error {
	for _, plan := range BuildPlans(ev) {
		payload, err := json.Marshal(plan)
		if err != nil {
			return err
		}
		topic := p.topic + "/" + plan.ProcessorID
		if err := p.publish(ctx, topic, payload); err != nil {
			return fmt.Errorf("publish plan %s to %s: %w", ev.RunID, topic, err)
		}
	}
	return nil
}

func (p *PlanPublisher) publish(ctx context.Context, topic string, payload []byte) error {
	var err error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		if err = token.Error(); err == nil {
			p.log.Debugf("sent plan to %s", topic)
			return nil
		}
		p.log.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, err)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return err
}

// Forward publishes every run received on sub until ctx is canceled or sub
// is closed. Failures are logged.
func (p *PlanPublisher) Forward(ctx context.Context, sub <-chan coremetrics.RunEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := p.PublishPlan(ctx, ev); err != nil {
				p.log.Errorf("%v", err)
			}
		}
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *PlanPublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
