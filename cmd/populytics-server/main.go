// Command populytics-server exposes the population proxy API over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/populytics/populytics/internal/config"
	"github.com/populytics/populytics/internal/countriesnow"
	"github.com/populytics/populytics/internal/logger"
	"github.com/populytics/populytics/internal/server"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	lg := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	lg.Info("Configuration loaded from %s", *configPath)

	client := countriesnow.NewClient(cfg.Source.APIBaseURL, cfg.Source.Timeout, cfg.Source.MaxRetries, cfg.Source.RetryDelayBase)
	e := server.NewEcho(server.NewHandler(client, lg))

	go func() {
		lg.Info("Listening on %s", cfg.Server.ListenAddr)
		if err := e.Start(cfg.Server.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("Server stopped: %v", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	lg.Info("Shutdown signal received, draining...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		lg.Error("Graceful shutdown failed: %v", err)
		os.Exit(1)
	}
	lg.Info("Server stopped")
}
