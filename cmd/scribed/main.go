// Command scribed serves the transcription API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/scribekit/config"
	"github.com/kbukum/scribekit/logger"
	"github.com/kbukum/scribekit/observability"
	"github.com/kbukum/scribekit/process"
	"github.com/kbukum/scribekit/version"
)

const gracefulTimeout = 30 * time.Second

func main() {
	configFile := flag.String("config", "", "path to config.yml (searched in standard locations when empty)")
	envFile := flag.String("env", "", "path to a .env file")
	flag.Parse()

	if err := run(*configFile, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(configFile, envFile string) error {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	var cfg Config
	if err := config.Load(serviceName, &cfg, opts...); err != nil {
		return err
	}

	logger.Init(&cfg.Logging)
	log := logger.GetGlobalLogger()

	info := version.Get(cfg.Name)
	log.Info("Starting application", logger.Fields(
		"name", cfg.Name,
		"version", info.Short(),
		"environment", cfg.Environment,
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Observability, cfg.Name, info.Version, cfg.Environment)
	if err != nil {
		return fmt.Errorf("observability: %w", err)
	}

	svc, err := wire(&cfg, process.NewExecutor(cfg.Process), log)
	if err != nil {
		return err
	}

	readyCheck(ctx, &cfg, svc, log)

	if err := svc.server.Start(ctx); err != nil {
		return err
	}
	svc.server.LogRoutes()
	log.Info("Application ready, waiting for shutdown signal")

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()

	serverErr := svc.server.Stop(shutdownCtx)
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown failed", logger.ErrorFields("shutdown", err))
	}
	return serverErr
}

// readyCheck logs components that are not up. Missing tools only disable
// the sources that need them, so startup continues.
func readyCheck(ctx context.Context, cfg *Config, svc *services, log *logger.Logger) {
	sh := observability.CheckAll(ctx, cfg.Name, cfg.Version, svc.checkers...)
	for _, c := range sh.Components {
		if c.Status != observability.HealthStatusUp {
			log.Warn("Ready check reported issues", logger.Fields(
				"component", c.Name,
				"status", string(c.Status),
				"message", c.Message,
			))
		}
	}
}
