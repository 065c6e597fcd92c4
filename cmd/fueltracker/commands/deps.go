package commands

import (
	"fmt"

	"github.com/wonny/fueltracker/internal/cache"
	"github.com/wonny/fueltracker/internal/eia"
	"github.com/wonny/fueltracker/internal/panel"
	"github.com/wonny/fueltracker/internal/pipeline"
	"github.com/wonny/fueltracker/internal/validate"
	"github.com/wonny/fueltracker/pkg/config"
	"github.com/wonny/fueltracker/pkg/httputil"
	"github.com/wonny/fueltracker/pkg/logger"
)

// defaultSeries is the endpoint key pulled when no --series flag is given.
const defaultSeries = "compressor_fuel"

// loadConfig loads config and builds the logger, honoring --verbose.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, logger.New(cfg), nil
}

// initStore opens the panel store.
func initStore(cfg *config.Config, log *logger.Logger) *panel.Store {
	return panel.NewStore(cfg.Paths.PanelFile, log)
}

// initOrchestrator wires every pipeline stage from config.
func initOrchestrator(cfg *config.Config, log *logger.Logger) (*pipeline.Orchestrator, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("ensure dirs: %w", err)
	}

	endpoints, err := config.LoadEndpoints(cfg.EIA.EndpointsFile)
	if err != nil {
		return nil, fmt.Errorf("load endpoints: %w", err)
	}

	httpClient := httputil.New(log, cfg.EIA.Timeout).
		WithRetry(cfg.EIA.MaxRetries, cfg.EIA.RetryDelay).
		WithRateLimit(cfg.EIA.RatePerSecond)

	client := eia.NewClient(httpClient, log, cfg.EIA, endpoints)
	builder := panel.NewBuilder(log)
	store := initStore(cfg, log)
	snaps := panel.NewStore(cfg.Paths.SnapshotFile, log)

	gate := validate.NewGate(validate.Config{
		MaxStaleBusinessDays: cfg.Validation.MaxStaleBusinessDays,
		TolerancePct:         cfg.Validation.TolerancePct,
	}, nil)

	dataCache := cache.New(cfg.Paths.DataDir, nil, log.Zerolog())

	return pipeline.NewOrchestrator(client, builder, store, snaps, gate, dataCache, cfg, log), nil
}
