package contracts

// Stage names, also used as CLI subcommand names
const (
	StageFetch     = "fetch"
	StageClean     = "clean"
	StageLoad      = "load"
	StageAnalyze   = "analyze"
	StageVisualize = "visualize"
	StageDashboard = "dashboard"
)

// Stages lists the batch stages in execution order
var Stages = []string{StageFetch, StageClean, StageLoad, StageAnalyze, StageVisualize}

// SymbolFailure records a symbol the fetcher could not retrieve
type SymbolFailure struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// FileFailure records an input file a stage skipped
type FileFailure struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// FetchReport is the outcome of one fetch run
type FetchReport struct {
	Succeeded    []string        `json:"succeeded"`
	Failed       []SymbolFailure `json:"failed"`
	Rows         int             `json:"rows"`
	CombinedPath string          `json:"combined_path,omitempty"` // empty when nothing succeeded
}

// FailedSymbols returns the symbols of every failure, in fetch order
func (r *FetchReport) FailedSymbols() []string {
	symbols := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		symbols[i] = f.Symbol
	}
	return symbols
}

// CleanReport is the outcome of one clean run
type CleanReport struct {
	Cleaned      []string      `json:"cleaned"`
	Skipped      []FileFailure `json:"skipped"`
	Rows         int           `json:"rows"`
	Dropped      int           `json:"dropped"` // rows without a date or close
	CombinedPath string        `json:"combined_path,omitempty"`
}

// LoadReport is the outcome of one load run
type LoadReport struct {
	Rows    int      `json:"rows"`
	Symbols int      `json:"symbols"`
	Targets []string `json:"targets"`
}

// AnalysisReport is the outcome of one analyze run
type AnalysisReport struct {
	Symbols int           `json:"symbols"`
	Rows    int           `json:"rows"`
	Summary MarketSummary `json:"summary"`
	Skipped []FileFailure `json:"skipped"`
	Outputs []string      `json:"outputs"`
}

// VisualizeReport is the outcome of one visualize run
type VisualizeReport struct {
	Symbols int      `json:"symbols"`
	Charts  []string `json:"charts"`
	Skipped []string `json:"skipped"`
	Outputs []string `json:"outputs"`
}
