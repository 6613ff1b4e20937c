package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/pipeline"
)

func printFetchReport(r *contracts.FetchReport) {
	PrintSeparator()
	PrintKeyValue("Succeeded", strconv.Itoa(len(r.Succeeded)), 12)
	PrintKeyValue("Failed", strconv.Itoa(len(r.Failed)), 12)
	PrintKeyValue("Rows", strconv.Itoa(r.Rows), 12)
	if r.CombinedPath != "" {
		PrintKeyValue("Combined", r.CombinedPath, 12)
	}
	if len(r.Failed) > 0 {
		PrintWarning("Failed symbols: " + strings.Join(r.FailedSymbols(), ", "))
	}
}

func printCleanReport(r *contracts.CleanReport) {
	PrintSeparator()
	PrintKeyValue("Cleaned", strconv.Itoa(len(r.Cleaned)), 12)
	PrintKeyValue("Skipped", strconv.Itoa(len(r.Skipped)), 12)
	PrintKeyValue("Rows", strconv.Itoa(r.Rows), 12)
	PrintKeyValue("Dropped", strconv.Itoa(r.Dropped), 12)
	PrintKeyValue("Combined", r.CombinedPath, 12)
	for _, s := range r.Skipped {
		PrintError(fmt.Sprintf("%s: %s", s.File, s.Reason))
	}
}

func printLoadReport(r *contracts.LoadReport) {
	PrintSeparator()
	PrintKeyValue("Rows", strconv.Itoa(r.Rows), 12)
	PrintKeyValue("Symbols", strconv.Itoa(r.Symbols), 12)
	PrintKeyValue("Targets", strings.Join(r.Targets, ", "), 12)
}

func printAnalysisReport(r *contracts.AnalysisReport) {
	PrintSeparator()
	PrintKeyValue("Symbols", strconv.Itoa(r.Symbols), 12)
	PrintKeyValue("Rows", strconv.Itoa(r.Rows), 12)
	PrintKeyValue("Green / Red", fmt.Sprintf("%d / %d", r.Summary.GreenStocks, r.Summary.RedStocks), 12)
	PrintKeyValue("Best", fmt.Sprintf("%s (%s)", r.Summary.BestStock, FormatPercent(r.Summary.BestStockCumReturn)), 12)
	for _, s := range r.Skipped {
		PrintError(fmt.Sprintf("%s: %s", s.File, s.Reason))
	}
	PrintList(r.Outputs)
}

func printVisualizeReport(r *contracts.VisualizeReport) {
	PrintSeparator()
	PrintKeyValue("Symbols", strconv.Itoa(r.Symbols), 12)
	PrintKeyValue("Charts", strconv.Itoa(len(r.Charts)), 12)
	for _, s := range r.Skipped {
		PrintWarning("chart skipped: " + s)
	}
	PrintList(r.Outputs)
}

// printRunResult prints every report the run produced
func printRunResult(result *pipeline.RunResult) {
	if result.Fetch != nil {
		fmt.Println("\n[fetch]")
		printFetchReport(result.Fetch)
	}
	if result.Clean != nil {
		fmt.Println("\n[clean]")
		printCleanReport(result.Clean)
	}
	if result.Load != nil {
		fmt.Println("\n[load]")
		printLoadReport(result.Load)
	}
	if result.Analysis != nil {
		fmt.Println("\n[analyze]")
		printAnalysisReport(result.Analysis)
	}
	if result.Visualize != nil {
		fmt.Println("\n[visualize]")
		printVisualizeReport(result.Visualize)
	}
}
