package main

import (
	"context"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/honeycarbs/career-ledger/internal/config"
	"github.com/honeycarbs/career-ledger/internal/mcp"
	"github.com/honeycarbs/career-ledger/internal/metrics"
	"github.com/honeycarbs/career-ledger/pkg/logging"
	"github.com/honeycarbs/career-ledger/pkg/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "career-ledger",
	})
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	res, cleanup, err := mcp.InitializeResources(ctx, cfg, logger, collector)
	if err != nil {
		cancel()
		logger.Error("failed to initialize resources", "backend", cfg.Backend, "err", err)
		os.Exit(1)
	}

	if err := res.EnsureOwner(ctx, cfg); err != nil {
		cancel()
		cleanup()
		logger.Error("failed to bootstrap owner account", "err", err)
		os.Exit(1)
	}
	cancel()
	logger.Info("ledger owner ready", "account_id", res.Owner.ID(), "email", res.Owner.Email())

	srv := mcp.NewServer(logger, cfg, res, collector, reg)

	go shutdown.Graceful(
		[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
		[]shutdown.Stoppable{
			srv,
			shutdown.StopFunc(func(context.Context) error {
				cleanup()
				return nil
			}),
		},
		10*time.Second,
		logger,
	)

	logger.Info("MCP server initialized and starting", "addr", cfg.Addr(), "backend", cfg.Backend)

	if err := srv.Run(); err != nil {
		logger.Error("MCP server exited with error", "err", err)
	} else {
		logger.Info("MCP server stopped")
	}
}
