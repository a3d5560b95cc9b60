package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/algorand/go-deadlock"
	"github.com/caarlos0/env/v11"

	"node-stats/internal/api"
	"node-stats/internal/config"
	"node-stats/internal/health"
	"node-stats/internal/logs"
	"node-stats/internal/metrics"
	"node-stats/internal/node"
	"node-stats/internal/peers"
	"node-stats/internal/sentryx"
	"node-stats/internal/stats"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.FromEnv(env.ToMap(os.Environ()))
	if err != nil {
		log.Print(err)
		return 2
	}

	// Logger
	logger := logs.NewLogger(cfg.LogCapacity, cfg.LogLevel)
	logger.SetOutput(os.Stderr)

	// Lock diagnostics for the node-state / table lock pair
	deadlock.Opts.Disable = !cfg.LockDiagnostics
	deadlock.Opts.LogBuf = os.Stderr

	// Error reporting
	if ok, err := sentryx.Init(cfg.SentryDSN, cfg.Environment, cfg.NodeID); err != nil {
		logger.Warnf("error reporting disabled: %v", err)
	} else if ok {
		logger.Info("error reporting enabled")
	}
	defer sentryx.Flush(2 * time.Second)
	defer sentryx.RecoverPanicAndCapture()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		logger.Errorf("stats output directory: %v", err)
		return 1
	}

	// Root context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Node state and peers
	metricsRegistry := metrics.NewRegistry()
	peerManager := peers.NewPeerManager(cfg.Peer, metricsRegistry)
	state := node.NewState(cfg.NodeID, metricsRegistry, peerManager)
	notifier := node.NewNotifier(state, cfg.ResyncInterval, logger)

	// Refreshing models
	format := stats.NewFormatter(cfg.LanguageTag())
	apiCallModel := stats.NewApiCallModel(state.APICalls(), cfg.OutputDir, format, logger)
	nodeMetricsModel := stats.NewNodeMetricsModel(state.Metrics(), cfg.OutputDir, format, logger)
	notifier.Subscribe(apiCallModel)
	notifier.Subscribe(nodeMetricsModel)

	for _, addr := range cfg.Peers {
		peerManager.AddPeer(addr)
	}
	heartbeat := peers.NewHeartbeatWorker(peerManager, cfg.Peer, metricsRegistry, logger)
	sentryx.Go(func() { heartbeat.Start(ctx) })

	// API
	handler := api.NewHandler(state, logger, cfg.RenderInterval, apiCallModel, nodeMetricsModel)
	handler.Start(ctx)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.RegisterRoutes(http.NewServeMux(), handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	fatal := make(chan error, 2)
	sentryx.Go(func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal <- fmt.Errorf("http server: %w", err)
		}
	})
	sentryx.Go(func() {
		if err := notifier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fatal <- fmt.Errorf("refresh cycle: %w", err)
		}
	})

	notifier.Notify("startup")
	logger.Infof("node %s serving stats on %s, writing to %s", cfg.NodeID, cfg.ListenAddr, cfg.OutputDir)

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-fatal:
		logger.Errorf("fatal: %v", err)
		sentryx.CaptureError(err, "node-stats")
		report := health.NewAnalyzer(metricsRegistry, logger).Analyze()
		logger.Errorf("health at exit: %s %v", report.OverallStatus, report.Signals)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	logger.Infof("stopped after %d refresh cycles (%d failed)",
		metricsRegistry.Get(metrics.RefreshCyclesTotal),
		metricsRegistry.Get(metrics.RefreshFailuresTotal))
	return exitCode
}
