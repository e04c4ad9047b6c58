package main

import (
	"context"
	"flag"
	"sync"

	"github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/broker"
	"main/internal/bus"
	"main/internal/gateway"
	"main/internal/journal"
	"main/internal/md"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/order"
	"main/internal/position"
	"main/internal/schema"
	"main/internal/transport"
)

type emptyLogger struct{}

func (emptyLogger) Infof(string, ...any)  {}
func (emptyLogger) Debugf(string, ...any) {}
func (emptyLogger) Errorf(string, ...any) {}

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	mdType := flag.String("md-type", string(schema.SubscriptionAggregated), "Market data depth model: aggregated, disaggregated, top")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		logs.Fatalf("load config, path: %s, err: %+v", *configPath, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if loaded.Profiling.Enabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: loaded.Profiling.ApplicationName,
			ServerAddress:   loaded.Profiling.ServerAddress,
			Logger:          emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			logs.Fatalf("start profiler, err: %+v", err)
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				logs.Errorf("stop profiler, err: %+v", err)
			}
		}()
	}

	metrics := obs.NewMetrics()
	dispatcher := bus.NewDispatcher(metrics)
	registry := order.NewRegistry()

	jnl, err := journal.Open(loaded.Journal, metrics)
	if err != nil {
		logs.Fatalf("open journal, err: %+v", err)
	}

	ledger := position.NewLedger(func(evt schema.PositionUpdatedEvent) {
		jnl.RecordPosition(evt)
		dispatcher.Publish(&evt)
	})

	client := transport.New(ctx, loaded.Transport.URL)
	limiter := gateway.NewRateLimiter(loaded.Execution.OrderRateBurst, loaded.Execution.OrderRatePerSecond)
	facade := gateway.NewFacade(
		client,
		registry,
		loaded.Instruments,
		limiter,
		loaded.Execution.ExecutionID,
		loaded.Execution.DeliveryRoutingKey,
	)

	machine := broker.NewStateMachine(registry, ledger, metrics, func(evt schema.TradeExecutedEvent) {
		jnl.RecordTrade(evt)
		facade.PublishTrade(evt)
	})

	router := md.NewRouter(metrics)

	dispatcher.RegisterCallback(schema.TopicExecutionReport, machine.HandleEvent)
	dispatcher.RegisterCallback(schema.TopicMarketDataSnapshot, router.HandleEvent)
	dispatcher.RegisterCallback(schema.TopicManualOrderCancel, func(evt schema.Event) {
		if cancelReq, ok := evt.(*schema.ManualOrderCancelEvent); ok {
			facade.ManualCancel(cancelReq.OrderID)
		}
	})
	dispatcher.RegisterCallback(schema.TopicStrategyStatus, func(evt schema.Event) {
		change, ok := evt.(*schema.StrategyStatusChangeEvent)
		if !ok {
			return
		}
		logs.Infof("strategy status change, status: %s", change.Status)
		if change.Status == "stopped" {
			facade.CancelAll()
		}
	})
	dispatcher.RegisterCallback(schema.TopicParameterChange, func(evt schema.Event) {
		if change, ok := evt.(*schema.ParameterChangeEvent); ok {
			logs.Infof("parameter change, parameters: %+v", change.Parameters)
		}
	})
	dispatcher.RegisterCallback(schema.TopicOrderUpdated, func(evt schema.Event) {
		if update, ok := evt.(*schema.OrderUpdatedEvent); ok {
			logs.Infof("order updated, client order id: %s, status: %s, cum qty: %v",
				update.ClientOrderID, update.OrderStatus, update.CumQty)
		}
	})
	dispatcher.RegisterCallback(schema.TopicPositionUpdated, func(evt schema.Event) {
		if update, ok := evt.(*schema.PositionUpdatedEvent); ok {
			logs.Infof("position updated, symbol: %s, size: %v, close result: %v",
				update.Symbol, update.Size, update.CloseResult)
		}
	})

	if err := client.Start(ctx); err != nil {
		logs.Fatalf("start transport, err: %+v", err)
	}
	defer client.Close()

	unsubscribe := client.Observe(ctx, dispatcher)

	var wg sync.WaitGroup

	// Order notifications flow back through the dispatcher so every
	// registered consumer sees them.
	wg.Add(1)
	go func() {
		defer wg.Done()
		machine.Notifications().Run(ctx, dispatcher.Publish)
	}()

	if jnl != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			jnl.Run(ctx)
		}()
	}

	subType := schema.SubscriptionType(*mdType)
	for _, symbol := range loaded.Instruments.Symbols() {
		sub := router.Subscribe(subType, symbol)
		feed := md.NewFeed(sub, symbol, subType, ledger)

		wg.Add(1)
		go func() {
			defer wg.Done()
			feed.Run(ctx)
		}()

		if err := facade.RequestMarketData(sub.ID, subType, symbol); err != nil {
			logs.Errorf("request market data, symbol: %s, err: %+v", symbol, err)
		}
	}

	logs.Infof("engine started, instruments: %d, execution id: %s",
		loaded.Instruments.Len(), loaded.Execution.ExecutionID)

	<-sys.Shutdown()
	logs.Info("shutting down")

	// Stop the inbound observer first so no report races the
	// shutdown cancels.
	unsubscribe()
	facade.CancelAll()
	cancel()
	wg.Wait()
	if err := jnl.Close(); err != nil {
		logs.Errorf("close journal, err: %+v", err)
	}

	snapshot := metrics.Snapshot()
	logs.Infof("metrics: topics=%v decode_errors=%d unknown_orders=%d duplicates=%d md_drops=%d notify_drops=%d",
		snapshot.TopicCounts, snapshot.DecodeErrors, snapshot.UnknownOrders,
		snapshot.DuplicateSuppressed, snapshot.MDQueueDrops, snapshot.NotifyDrops)
}
