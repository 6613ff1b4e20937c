package commands

import (
	"fmt"

	"github.com/wonny/nifty50/internal/external/yahoo"
	"github.com/wonny/nifty50/internal/pipeline"
	"github.com/wonny/nifty50/internal/s0_fetch"
	"github.com/wonny/nifty50/internal/s1_clean"
	"github.com/wonny/nifty50/internal/s2_load"
	"github.com/wonny/nifty50/internal/s3_analysis"
	"github.com/wonny/nifty50/internal/s4_visualize"
	"github.com/wonny/nifty50/internal/universe"
	"github.com/wonny/nifty50/pkg/config"
	"github.com/wonny/nifty50/pkg/database"
	"github.com/wonny/nifty50/pkg/httputil"
	"github.com/wonny/nifty50/pkg/logger"
	"github.com/wonny/nifty50/pkg/metrics"
)

// app holds the dependencies every command shares
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
}

// newApp loads config, applies the global flags and builds the logger
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		switch env {
		case "development", "staging", "production":
			cfg.Env = env
		default:
			return nil, fmt.Errorf("--env must be one of: development, staging, production")
		}
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return &app{
		cfg:     cfg,
		log:     logger.New(cfg),
		metrics: metrics.New(),
	}, nil
}

// universe returns the configured symbol list
func (a *app) universe() (*universe.Universe, error) {
	u, err := universe.Resolve(a.cfg.UniverseFile)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	return u, nil
}

func (a *app) fetcher() *s0_fetch.Fetcher {
	httpClient := httputil.New(a.cfg, a.log)
	provider := yahoo.NewClient(httpClient, a.cfg.Yahoo, a.log)
	return s0_fetch.NewFetcher(provider, a.cfg.Paths.RawDir, a.log).WithProgress(printFetchProgress)
}

func (a *app) cleaner() *s1_clean.Cleaner {
	return s1_clean.NewCleaner(a.cfg.Paths.RawDir, a.cfg.Paths.CleanedDir, a.log)
}

// loader opens the SQLite store and, when DATABASE_URL is set, the Postgres mirror.
// The returned func closes both.
func (a *app) loader() (*s2_load.Loader, func(), error) {
	sqlite, err := database.OpenSQLite(a.cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	stores := []s2_load.Store{s2_load.NewSQLiteRepository(sqlite.DB)}
	closers := []func(){func() { sqlite.Close() }}

	if a.cfg.MirrorEnabled() {
		pg, err := database.New(a.cfg)
		if err != nil {
			sqlite.Close()
			return nil, nil, fmt.Errorf("connect to postgres mirror: %w", err)
		}
		stores = append(stores, s2_load.NewPostgresRepository(pg.Pool))
		closers = append(closers, pg.Close)
		a.log.Info("Postgres mirror enabled")
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	return s2_load.NewLoader(a.cfg.Paths.CleanedDir, a.log, stores...), closeAll, nil
}

func (a *app) analyzer() *s3_analysis.Analyzer {
	return s3_analysis.NewAnalyzer(a.cfg.Paths.CleanedDir, a.cfg.Paths.AnalysisDir, a.log).
		WithParquet(a.cfg.ExportParquet)
}

func (a *app) visualizer() *s4_visualize.Visualizer {
	return s4_visualize.NewVisualizer(a.cfg.Paths.AnalysisDir, a.cfg.Paths.ChartsDir, a.log).
		WithXLSX(a.cfg.ExportXLSX)
}

// orchestrator wires every stage; the returned func releases the stores
func (a *app) orchestrator() (*pipeline.Orchestrator, func(), error) {
	loader, closeStores, err := a.loader()
	if err != nil {
		return nil, nil, err
	}
	stages := pipeline.Stages{
		Fetch:     a.fetcher(),
		Clean:     a.cleaner(),
		Load:      loader,
		Analyze:   a.analyzer(),
		Visualize: a.visualizer(),
	}
	return pipeline.NewOrchestrator(stages, a.metrics, a.log), closeStores, nil
}
