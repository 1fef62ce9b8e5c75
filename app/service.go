package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/logisim/config"
	"github.com/kilianp07/logisim/core/delivery"
	"github.com/kilianp07/logisim/core/delivery/logging"
	"github.com/kilianp07/logisim/core/inventory"
	coremetrics "github.com/kilianp07/logisim/core/metrics"
	"github.com/kilianp07/logisim/core/model"
	"github.com/kilianp07/logisim/core/monitoring"
	"github.com/kilianp07/logisim/core/replenish"
	"github.com/kilianp07/logisim/core/simclock"
	"github.com/kilianp07/logisim/core/vehicle"
	"github.com/kilianp07/logisim/infra/logger"
	"github.com/kilianp07/logisim/infra/metrics"
	inframon "github.com/kilianp07/logisim/infra/monitoring"
	"github.com/kilianp07/logisim/infra/mqtt"
	"github.com/kilianp07/logisim/internal/eventbus"
)

// Service wires the clock, the hub warehouse, the nightly refill, the
// delivery orchestrator and the weekly driver.
type Service struct {
	Clock        *simclock.Engine
	Warehouse    *inventory.Warehouse
	Scheduler    *replenish.Scheduler
	Orchestrator *delivery.Orchestrator
	Simulator    *Simulator
	Fleet        Fleet

	cfg    *config.Config
	bus    eventbus.EventBus
	sink   coremetrics.MetricsSink
	store  logging.LogStore
	broker *mqtt.PahoClient
	log    logger.Logger

	mu      sync.Mutex
	reports []DayReport
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("service: nil config")
	}
	logg := logger.New("service")

	mon, err := inframon.NewSentryMonitor(cfg.Monitoring)
	if err != nil {
		return nil, fmt.Errorf("monitoring: %w", err)
	}
	monitoring.Init(mon)

	engine, err := simclock.New(cfg.Clock.Scale(), logger.New("clock"))
	if err != nil {
		return nil, fmt.Errorf("clock: %w", err)
	}
	products := model.NewFactory(cfg.Warehouse.Seed)
	wh, err := inventory.New(cfg.Warehouse.MaxCapacityKG,
		inventory.WithName(cfg.Warehouse.Name),
		inventory.WithLogger(logger.New("inventory")),
		inventory.WithFactory(products))
	if err != nil {
		return nil, fmt.Errorf("warehouse: %w", err)
	}
	filled := wh.Fill(cfg.Warehouse.InitialFillKG)
	logg.Infof("warehouse %s seeded with %d units (%.2f kg)", wh.Name(), len(filled.Added), filled.AddedWeight)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	bus := eventbus.New()

	sched, err := replenish.New(cfg.Replenish, wh,
		replenish.WithLogger(logger.New("replenish")),
		replenish.WithBus(bus))
	if err != nil {
		return nil, fmt.Errorf("replenish: %w", err)
	}

	orch, err := delivery.NewOrchestrator(wh, engine, sink, bus, logger.New("delivery"))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	store, err := logging.NewStore(cfg.DeliveryLog)
	if err != nil {
		return nil, fmt.Errorf("delivery log: %w", err)
	}
	orch.SetLogStore(store)

	fleet, err := BuildFleet(cfg.Fleet, cfg.Routes,
		vehicle.WithSleeper(vehicle.SleeperFunc(engine.Sleep)),
		vehicle.WithLogger(logger.New("vehicle")))
	if err != nil {
		_ = orch.Close()
		return nil, fmt.Errorf("fleet: %w", err)
	}
	for _, v := range fleet.All() {
		if err := orch.RegisterVehicle(v); err != nil {
			_ = orch.Close()
			return nil, err
		}
	}

	var broker *mqtt.PahoClient
	if cfg.MQTT.Broker != "" {
		if broker, err = mqtt.NewPahoClient(cfg.MQTT); err != nil {
			_ = orch.Close()
			return nil, fmt.Errorf("mqtt: %w", err)
		}
	}

	svc := &Service{
		Clock:        engine,
		Warehouse:    wh,
		Scheduler:    sched,
		Orchestrator: orch,
		Fleet:        fleet,
		cfg:          cfg,
		bus:          bus,
		sink:         sink,
		store:        store,
		broker:       broker,
		log:          logg,
	}
	sim, err := NewSimulator(cfg.Simulation, orch, engine, fleet, products, logger.New("simulator"),
		WithDayHook(svc.endOfDay))
	if err != nil {
		_ = orch.Close()
		return nil, err
	}
	svc.Simulator = sim
	return svc, nil
}

// Run starts the clock, the refill scheduler and the metrics plumbing, then
// drives the configured number of days. It returns once the days are done
// or ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if err := s.Clock.Start(runCtx); err != nil {
		return err
	}
	defer s.Clock.Stop()
	metrics.StartEventCollector(runCtx, s.bus, s.sink)
	if s.broker != nil {
		mqtt.StartEventPublisher(runCtx, s.bus, s.broker, s.cfg.MQTT.TopicPrefix)
	}

	g, gctx := errgroup.WithContext(runCtx)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		g.Go(func() error { return metrics.StartPromServer(gctx, addr) })
	}
	if addr := s.cfg.API.Addr; addr != "" {
		g.Go(func() error { return s.serveAPI(gctx, addr) })
	}
	g.Go(func() error { return ignoreCanceled(s.Scheduler.Run(gctx, s.Clock)) })
	g.Go(func() error {
		defer cancel()
		_, err := s.Simulator.Run(gctx, s.cfg.Simulation.Days)
		return ignoreCanceled(err)
	})
	err := g.Wait()
	s.logSummary(context.WithoutCancel(ctx))
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Service) endOfDay(rep DayReport) {
	s.mu.Lock()
	s.reports = append(s.reports, rep)
	s.mu.Unlock()
	if r, ok := s.sink.(coremetrics.InventoryRecorder); ok {
		if err := r.RecordInventory(coremetrics.InventoryLevel{
			Warehouse:  s.Warehouse.Name(),
			LoadKG:     s.Warehouse.CurrentLoad(),
			CapacityKG: s.Warehouse.MaxCapacity(),
			Units:      s.Warehouse.TotalUnits(),
			SimHour:    s.Clock.Now(),
			Time:       time.Now(),
		}); err != nil {
			s.log.Errorf("metrics sink: %v", err)
		}
	}
}

// Reports returns the completed day summaries.
func (s *Service) Reports() []DayReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DayReport(nil), s.reports...)
}

func (s *Service) logSummary(ctx context.Context) {
	stats, err := s.Orchestrator.Stats(ctx)
	if err != nil {
		s.log.Errorf("delivery stats: %v", err)
		return
	}
	for _, st := range stats {
		s.log.Infof("%s: %d delivered, %d cancelled, %d failed, %.2f kg",
			st.Destination, st.Delivered, st.Cancelled, st.Failed, st.WeightKG)
	}
	s.log.Infof("warehouse %s at %.1f%% (%.2f kg)", s.Warehouse.Name(), s.Warehouse.OccupancyPercent(), s.Warehouse.CurrentLoad())
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Clock.Stop()
	s.bus.Close()
	var errs []error
	if err := s.Orchestrator.Close(); err != nil {
		errs = append(errs, err)
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if s.broker != nil {
		s.broker.Disconnect()
	}
	monitoring.Flush(2 * time.Second)
	return errors.Join(errs...)
}
