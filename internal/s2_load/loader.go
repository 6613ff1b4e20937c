package s2_load

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/tabular"
	"github.com/wonny/nifty50/pkg/logger"
)

// Loader persists the combined cleaned file into every store
// ⭐ SSOT: S1 → DB 적재는 이 패키지에서만
type Loader struct {
	cleanedDir string
	stores     []Store
	logger     *logger.Logger
}

// NewLoader creates a new Loader; the first store is the primary one
func NewLoader(cleanedDir string, log *logger.Logger, stores ...Store) *Loader {
	return &Loader{
		cleanedDir: cleanedDir,
		stores:     stores,
		logger:     log.Stage(contracts.StageLoad),
	}
}

// Run replaces daily_prices and symbols in each store
func (l *Loader) Run(ctx context.Context) (*contracts.LoadReport, error) {
	path := filepath.Join(l.cleanedDir, tabular.CombinedCleanedFile)
	if err := contracts.RequireArtifact(contracts.StageLoad, path, contracts.StageClean); err != nil {
		return nil, err
	}

	bars, err := tabular.ReadBars(path)
	if err != nil {
		return nil, fmt.Errorf("read cleaned data: %w", err)
	}
	symbols := contracts.DistinctSymbols(bars)

	report := &contracts.LoadReport{
		Rows:    len(bars),
		Symbols: len(symbols),
		Targets: make([]string, 0, len(l.stores)),
	}

	for _, store := range l.stores {
		if err := store.ReplaceAll(ctx, bars, symbols); err != nil {
			return report, fmt.Errorf("load into %s: %w", store.Name(), err)
		}
		report.Targets = append(report.Targets, store.Name())

		l.logger.WithFields(map[string]interface{}{
			"target":  store.Name(),
			"rows":    len(bars),
			"symbols": len(symbols),
		}).Info("Loaded")
	}

	return report, nil
}
