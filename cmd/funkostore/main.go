package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/funkostore/internal/logger"
	"github.com/marmos91/funkostore/internal/server"
	"github.com/marmos91/funkostore/pkg/config"
	"github.com/marmos91/funkostore/pkg/store"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	port := flag.Int("port", 0, "Override the configured TCP port")
	logLevel := flag.String("log-level", "", "Override the configured log level (DEBUG, INFO, WARN, ERROR)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger.SetLevel(cfg.Logging.Level)
	logger.SetFormat(cfg.Logging.Format)
	if err := logger.SetOutput(cfg.Logging.Output); err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	recordStore, err := config.CreateRecordStore(ctx, &cfg.Store)
	if err != nil {
		log.Fatalf("Failed to create record store: %v", err)
	}
	defer func() {
		if closer, ok := recordStore.(store.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Warn("Failed to close record store: %v", err)
			}
		}
	}()

	logger.Info("Record store backend: %s", cfg.Store.Type)

	metricsResult := config.InitializeMetrics(cfg)
	if metricsResult.Server != nil {
		go func() {
			if err := metricsResult.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
	}

	srv := server.New(server.Config{
		Port:               cfg.Server.Port,
		MaxConnections:     cfg.Server.MaxConnections,
		IdleTimeout:        cfg.Server.IdleTimeout,
		WriteTimeout:       cfg.Server.WriteTimeout,
		ShutdownTimeout:    cfg.Server.ShutdownTimeout,
		SerializeUsers:     cfg.Server.SerializeUsers,
		RequestsPerSecond:  cfg.Server.RequestsPerSecond,
		RequestBurst:       cfg.Server.RequestBurst,
		MetricsLogInterval: cfg.Server.MetricsLogInterval,
	}, recordStore, metricsResult.RequestMetrics)

	// Shut down on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received signal %v, shutting down", sig)
		cancel()
	}()

	if err := srv.Serve(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	if err := srv.Stop(); err != nil {
		logger.Warn("Shutdown error: %v", err)
	}
}
