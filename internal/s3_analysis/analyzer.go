package s3_analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/tabular"
	"github.com/wonny/nifty50/pkg/logger"
)

// Analyzer computes per-symbol returns and the market summary
// ⭐ SSOT: 수익률 계산은 이 패키지에서만
type Analyzer struct {
	cleanedDir    string
	analysisDir   string
	exportParquet bool
	logger        *logger.Logger
}

// NewAnalyzer creates a new Analyzer
func NewAnalyzer(cleanedDir, analysisDir string, log *logger.Logger) *Analyzer {
	return &Analyzer{
		cleanedDir:  cleanedDir,
		analysisDir: analysisDir,
		logger:      log.Stage(contracts.StageAnalyze),
	}
}

// WithParquet enables the parquet copy of the analysis file
func (a *Analyzer) WithParquet(enabled bool) *Analyzer {
	a.exportParquet = enabled
	return a
}

// Run analyzes every per-symbol cleaned file (the combined file is excluded)
func (a *Analyzer) Run(ctx context.Context) (*contracts.AnalysisReport, error) {
	files, err := tabular.SymbolFiles(a.cleanedDir, tabular.CombinedCleanedFile)
	if err != nil {
		return nil, fmt.Errorf("list cleaned files: %w", err)
	}
	if len(files) == 0 {
		return nil, &contracts.MissingArtifactError{
			Stage:    contracts.StageAnalyze,
			Path:     filepath.Join(a.cleanedDir, "*.csv"),
			Producer: contracts.StageClean,
		}
	}

	report := &contracts.AnalysisReport{Skipped: make([]contracts.FileFailure, 0)}
	all := make([]contracts.ReturnRecord, 0)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("analyze cancelled: %w", err)
		}

		name := filepath.Base(file)
		records, err := analyzeFile(file)
		if err != nil {
			report.Skipped = append(report.Skipped, contracts.FileFailure{File: name, Reason: err.Error()})
			a.logger.WithError(err).WithField("file", name).Warn("Skipping file")
			continue
		}
		all = append(all, records...)
	}

	if len(all) == 0 {
		return report, fmt.Errorf("no symbol could be analyzed (%d files skipped)", len(report.Skipped))
	}

	summary := Summarize(all)
	report.Summary = summary
	report.Symbols = summary.TotalStocks
	report.Rows = len(all)

	if err := os.MkdirAll(a.analysisDir, 0o755); err != nil {
		return report, fmt.Errorf("create analysis dir: %w", err)
	}

	analysisPath := filepath.Join(a.analysisDir, tabular.AnalysisFile)
	if err := tabular.WriteReturns(analysisPath, all); err != nil {
		return report, fmt.Errorf("write analysis: %w", err)
	}
	summaryPath := filepath.Join(a.analysisDir, tabular.SummaryFile)
	if err := tabular.WriteSummary(summaryPath, summary); err != nil {
		return report, fmt.Errorf("write summary: %w", err)
	}
	report.Outputs = []string{analysisPath, summaryPath}

	if a.exportParquet {
		parquetPath := filepath.Join(a.analysisDir, tabular.AnalysisParquetFile)
		if err := tabular.WriteReturnsParquet(parquetPath, all); err != nil {
			return report, fmt.Errorf("write parquet: %w", err)
		}
		report.Outputs = append(report.Outputs, parquetPath)
	}

	a.logger.WithFields(map[string]interface{}{
		"symbols": summary.TotalStocks,
		"rows":    len(all),
		"green":   summary.GreenStocks,
		"red":     summary.RedStocks,
		"best":    summary.BestStock,
	}).Info("Analysis completed")

	return report, nil
}

// analyzeFile computes returns for one cleaned file.
// The symbol is the first row's, falling back to the file name.
func analyzeFile(path string) ([]contracts.ReturnRecord, error) {
	bars, err := tabular.ReadBars(path)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no rows")
	}

	symbol := bars[0].Symbol
	if symbol == "" {
		symbol = tabular.SymbolFromFileName(path)
	}
	for i := range bars {
		bars[i].Symbol = symbol
	}
	return ComputeReturns(bars), nil
}
