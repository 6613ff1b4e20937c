package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/s4_visualize"
	"github.com/wonny/nifty50/internal/tabular"
)

// Files locates the artifacts the dashboard reads
type Files struct {
	AnalysisDir string
	ChartsDir   string
}

// state is one request's snapshot of the analysis outputs
type state struct {
	Summary    *contracts.MarketSummary
	Metrics    []contracts.SymbolMetrics
	Records    []contracts.ReturnRecord
	Symbols    []string
	Recomputed bool // metrics file absent, metrics derived from the analysis file
}

func (f Files) summaryPath() string  { return filepath.Join(f.AnalysisDir, tabular.SummaryFile) }
func (f Files) analysisPath() string { return filepath.Join(f.AnalysisDir, tabular.AnalysisFile) }
func (f Files) metricsPath() string  { return filepath.Join(f.AnalysisDir, tabular.MetricsFile) }

// loadRecords reads the combined analysis file
func (f Files) loadRecords() ([]contracts.ReturnRecord, error) {
	path := f.analysisPath()
	if err := contracts.RequireArtifact(contracts.StageDashboard, path, contracts.StageAnalyze); err != nil {
		return nil, err
	}
	records, err := tabular.ReadReturns(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	return s4_visualize.SortRecords(records), nil
}

// load reads every input of the page; nothing is cached between requests
func (f Files) load() (*state, error) {
	summaryPath := f.summaryPath()
	if err := contracts.RequireArtifact(contracts.StageDashboard, summaryPath, contracts.StageAnalyze); err != nil {
		return nil, err
	}
	summary, err := tabular.ReadSummary(summaryPath)
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}

	records, err := f.loadRecords()
	if err != nil {
		return nil, err
	}

	st := &state{Summary: summary, Records: records}
	st.Symbols, _ = s4_visualize.GroupBySymbol(records)

	metricsPath := f.metricsPath()
	if err := contracts.RequireArtifact(contracts.StageDashboard, metricsPath, contracts.StageVisualize); err != nil {
		st.Metrics = s4_visualize.ComputeMetrics(records)
		st.Recomputed = true
		return st, nil
	}
	if st.Metrics, err = tabular.ReadMetrics(metricsPath); err != nil {
		return nil, fmt.Errorf("read metrics: %w", err)
	}
	return st, nil
}

// staticCharts lists the PNG files in the charts directory
func (f Files) staticCharts() []string {
	entries, err := os.ReadDir(f.ChartsDir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".png") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func contains(symbols []string, symbol string) bool {
	for _, s := range symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// pick returns want when it is a known symbol, otherwise symbols[fallback]
func pick(symbols []string, want string, fallback int) string {
	if want != "" && contains(symbols, want) {
		return want
	}
	if len(symbols) == 0 {
		return ""
	}
	if fallback >= len(symbols) {
		fallback = len(symbols) - 1
	}
	return symbols[fallback]
}
