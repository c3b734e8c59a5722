// Command loadgen drives paced synthetic traffic against a vacancy server,
// reporting one metrics event per API call through the configured sinks.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hirelab/vacancyload/internal/config"
	"github.com/hirelab/vacancyload/internal/loadgen"
	"github.com/hirelab/vacancyload/internal/telemetry"
	"github.com/hirelab/vacancyload/sdk/go/vacancy"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	level := slog.LevelInfo
	if os.Getenv("VACANCYLOAD_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if len(creds) == 0 {
		return fmt.Errorf("%w: no CREDENTIALS_<n> variables set", config.ErrConfiguration)
	}

	slog.Info("loadgen starting",
		"version", version,
		"target", cfg.TargetURL,
		"workers", cfg.Workers,
		"pacing", cfg.Pacing)

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName+"-loadgen", version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	// Events go to the log always, and to OTel when an endpoint is set.
	reporter := vacancy.NewSlogReporter(logger)
	if cfg.OTELEndpoint != "" {
		otelReporter, err := vacancy.NewOTelReporter()
		if err != nil {
			return fmt.Errorf("otel reporter: %w", err)
		}
		reporter = vacancy.MultiReporter(reporter, otelReporter)
	}

	// The first configured credential drives the run.
	client, err := vacancy.NewClient(vacancy.Config{
		BaseURL:  cfg.TargetURL,
		Identity: creds[0].Identity,
		Secret:   creds[0].Secret,
		Reporter: reporter,
		Timeout:  cfg.CallTimeout,
	})
	if err != nil {
		return fmt.Errorf("client: %w", err)
	}

	runner, err := loadgen.NewRunner(loadgen.RunnerConfig{
		Workers:     cfg.Workers,
		Pacing:      cfg.Pacing,
		CallTimeout: cfg.CallTimeout,
	}, client, []loadgen.Behavior{
		loadgen.NewCRUDBehavior(loadgen.NewNamer("loadgen")),
		loadgen.NewObserverBehavior(cfg.ListPage, cfg.ListLimit),
	}, logger)
	if err != nil {
		return fmt.Errorf("runner: %w", err)
	}

	if err := runner.Run(ctx); err != nil {
		return err
	}

	slog.Info("loadgen stopped")
	return nil
}
