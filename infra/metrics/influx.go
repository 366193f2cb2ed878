package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
	"github.com/kilianp07/wasteflow/infra/logger"
)

const defaultInfluxTimeout = 5 * time.Second

// InfluxSink writes allocation runs to InfluxDB: one "allocation" point per
// record and one "allocation_run" point per run.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	timeout  time.Duration
	log      logger.Logger
}

// InfluxConfig holds connection settings.
type InfluxConfig struct {
	URL     string        `json:"url"`
	Token   string        `json:"token"`
	Org     string        `json:"org"`
	Bucket  string        `json:"bucket"`
	Timeout time.Duration `json:"timeout"`
}

// NewInfluxSink creates a sink for cfg. A trailing /api/v2/write on the URL
// is accepted.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultInfluxTimeout
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout:  cfg.Timeout,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings InfluxDB and returns a NopSink when the
// health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.AllocationSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), sink.timeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordRun writes the run in a single batch.
func (s *InfluxSink) RecordRun(ev coremetrics.RunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*s.timeout)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, runPoints(ev)...)
}

// Close releases the client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func runPoints(ev coremetrics.RunEvent) []*write.Point {
	ts := ev.Finished
	points := make([]*write.Point, 0, len(ev.Records)+1)
	for _, r := range ev.Records {
		points = append(points, write.NewPointWithMeasurement("allocation").
			AddTag("run_id", ev.RunID).
			AddTag("waste_type", string(r.Category)).
			AddTag("producer_id", r.ProducerID).
			AddTag("processor_id", r.ProcessorID).
			AddField("volume_kg", round3(r.VolumeKg)).
			AddField("distance_km", round3(r.DistanceKm)).
			AddField("unit_cost_eur", round3(r.UnitCost)).
			AddField("total_cost_eur", round3(r.TotalCost)).
			SetTime(ts))
	}
	points = append(points, write.NewPointWithMeasurement("allocation_run").
		AddTag("run_id", ev.RunID).
		AddTag("strategy", ev.Strategy).
		AddField("records", len(ev.Records)).
		AddField("allocated_kg", round3(ev.Summary.TotalVolumeKg)).
		AddField("total_cost_eur", round3(ev.Summary.TotalCost)).
		AddField("shortfall_kg", round3(ev.Summary.ShortfallKg)).
		AddField("duration_ms", round3(float64(ev.Duration())/float64(time.Millisecond))).
		SetTime(ts))
	return points
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
