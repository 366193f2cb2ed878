package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/wasteflow/api"
	"github.com/kilianp07/wasteflow/config"
	coremetrics "github.com/kilianp07/wasteflow/core/metrics"
	coremon "github.com/kilianp07/wasteflow/core/monitoring"
	"github.com/kilianp07/wasteflow/core/runstore"
	"github.com/kilianp07/wasteflow/infra/history"
	"github.com/kilianp07/wasteflow/infra/logger"
	"github.com/kilianp07/wasteflow/infra/metrics"
	"github.com/kilianp07/wasteflow/infra/monitoring"
	"github.com/kilianp07/wasteflow/infra/mqtt"
	"github.com/kilianp07/wasteflow/internal/eventbus"
)

// planPublisher forwards run events to processors.
type planPublisher interface {
	Forward(ctx context.Context, sub <-chan coremetrics.RunEvent)
	Disconnect()
}

// Service serves the allocation API and its side channels.
type Service struct {
	Pipeline *Pipeline
	Store    runstore.Store

	cfg       config.ServerConfig
	sink      coremetrics.AllocationSink
	monitor   coremon.Monitor
	handler   http.Handler
	bus       *eventbus.TypedBus[coremetrics.RunEvent]
	publisher planPublisher
	planSub   <-chan coremetrics.RunEvent
	log       logger.Logger
}

var newPlanPublisher = func(cfg mqtt.Config) (planPublisher, error) {
	return mqtt.NewPlanPublisher(cfg)
}

// NewService wires configured sinks, the run history, the optional MQTT
// plan publisher and the HTTP API around one pipeline.
func NewService(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	log := logger.New("service")
	mon, err := monitoring.NewSentryMonitor(cfg.Monitoring)
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	store, err := newRunStore(cfg.Server)
	if err != nil {
		_ = coremetrics.CloseSink(sink)
		return nil, err
	}
	bus := eventbus.NewTyped[coremetrics.RunEvent]()

	sinks := coremetrics.NewMultiSink(store, sink)
	pipe, err := NewPipeline(cfg,
		WithSink(sinks),
		WithBus(bus),
		WithLogger(logger.New("pipeline")),
		WithMonitor(mon),
	)
	if err != nil {
		_ = sinks.Close()
		return nil, err
	}

	svc := &Service{
		Pipeline: pipe,
		Store:    store,
		cfg:      cfg.Server,
		sink:     sinks,
		monitor:  mon,
		bus:      bus,
		log:      log,
	}
	if cfg.MQTT.Enabled {
		pub, err := newPlanPublisher(cfg.MQTT)
		if err != nil {
			_ = sinks.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
		svc.planSub = bus.Subscribe()
	}
	svc.handler = api.NewHandler(api.Options{
		Runner:  pipe,
		Store:   store,
		Config:  cfg.Server,
		Log:     logger.New("api"),
		Monitor: mon,
	})
	return svc, nil
}

// Handler exposes the API handler, mainly for tests.
func (s *Service) Handler() http.Handler { return s.handler }

// Run serves until ctx is canceled or a server fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if s.publisher != nil {
		g.Go(func() error {
			s.publisher.Forward(ctx, s.planSub)
			return nil
		})
	}
	if s.cfg.MetricsAddr != "" && s.cfg.MetricsAddr != s.cfg.Addr {
		g.Go(func() error {
			return metrics.StartPromServer(ctx, s.cfg.MetricsAddr, nil, logger.New("prometheus"))
		})
	}
	g.Go(func() error { return s.serveAPI(ctx) })
	return g.Wait()
}

func (s *Service) serveAPI(ctx context.Context) error {
	h := s.handler
	if s.cfg.MetricsAddr == s.cfg.Addr {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(nil))
		mux.Handle("/", s.handler)
		h = mux
	}
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("api listening on %s", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	s.monitor.Flush(2 * time.Second)
	return coremetrics.CloseSink(s.sink)
}

func newRunStore(cfg config.ServerConfig) (runstore.Store, error) {
	if cfg.HistoryDB == "" {
		return runstore.NewMemoryStore(cfg.RunHistory), nil
	}
	store, err := history.NewSQLiteStore(cfg.HistoryDB, cfg.RunHistory)
	if err != nil {
		return nil, fmt.Errorf("run history: %w", err)
	}
	return store, nil
}
