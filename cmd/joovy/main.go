package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sglre6355/joovy/internal/bot"
	_ "github.com/sglre6355/joovy/internal/modules/music_player"
	_ "github.com/sglre6355/joovy/internal/modules/ping"
	"github.com/sglre6355/joovy/internal/telemetry"
)

// version is set at build time via ldflags:
// go build -ldflags "-X main.version=1.0.0" ./cmd/joovy
var version = "dev"

// shutdownTimeout bounds the telemetry flush on exit.
const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional; real environment variables take precedence
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	// Load configuration
	cfg, err := bot.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	// Configure JSON logging
	level, _ := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("starting joovy", "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:         cfg.Telemetry.Enabled,
		ServiceName:     cfg.Telemetry.ServiceName,
		ServiceVersion:  version,
		TracesEndpoint:  cfg.Telemetry.TracesEndpoint,
		MetricsInterval: cfg.Telemetry.MetricsInterval,
	})
	if err != nil {
		slog.Error("failed to set up telemetry", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Error("failed to shut down telemetry", "error", err)
		}
	}()

	sink, err := telemetry.NewSink(nil, nil)
	if err != nil {
		slog.Error("failed to create result sink", "error", err)
		return 1
	}

	// Create and configure bot
	b := bot.NewBot(cfg, sink)
	if err := b.LoadModules(); err != nil {
		slog.Error("failed to load modules", "error", err)
		return 1
	}

	// Start bot
	if err := b.Start(ctx); err != nil {
		slog.Error("failed to start bot", "error", err)
		_ = b.Stop()
		return 1
	}

	// Wait for shutdown signal
	<-ctx.Done()

	slog.Info("received termination signal, shutting down")
	if err := b.Stop(); err != nil {
		slog.Error("failed to shutdown", "error", err)
	}

	slog.Info("completed bot shutdown")
	return 0
}
