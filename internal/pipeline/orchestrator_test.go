package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/pkg/logger"
	"github.com/wonny/nifty50/pkg/metrics"
)

type recorder struct {
	calls []string
	fail  string
}

func (r *recorder) run(stage string) error {
	r.calls = append(r.calls, stage)
	if stage == r.fail {
		return &contracts.MissingArtifactError{Stage: stage, Path: "x.csv", Producer: "prev"}
	}
	return nil
}

type fetchFn struct{ r *recorder }

func (f fetchFn) Run(ctx context.Context, symbols []string) (*contracts.FetchReport, error) {
	return &contracts.FetchReport{
		Succeeded: symbols,
		Failed:    []contracts.SymbolFailure{{Symbol: "X.NS", Reason: "404"}},
	}, f.r.run(contracts.StageFetch)
}

type cleanFn struct{ r *recorder }

func (f cleanFn) Run(context.Context) (*contracts.CleanReport, error) {
	return &contracts.CleanReport{Rows: 10}, f.r.run(contracts.StageClean)
}

type loadFn struct{ r *recorder }

func (f loadFn) Run(context.Context) (*contracts.LoadReport, error) {
	return &contracts.LoadReport{Rows: 10}, f.r.run(contracts.StageLoad)
}

type analyzeFn struct{ r *recorder }

func (f analyzeFn) Run(context.Context) (*contracts.AnalysisReport, error) {
	return &contracts.AnalysisReport{Symbols: 2}, f.r.run(contracts.StageAnalyze)
}

type visualizeFn struct{ r *recorder }

func (f visualizeFn) Run(context.Context) (*contracts.VisualizeReport, error) {
	return &contracts.VisualizeReport{Charts: []string{"a.png"}}, f.r.run(contracts.StageVisualize)
}

func newOrchestrator(r *recorder, m *metrics.Metrics) *Orchestrator {
	return NewOrchestrator(Stages{
		Fetch:     fetchFn{r},
		Clean:     cleanFn{r},
		Load:      loadFn{r},
		Analyze:   analyzeFn{r},
		Visualize: visualizeFn{r},
	}, m, logger.Nop())
}

func TestRunAllStages(t *testing.T) {
	r := &recorder{}
	m := metrics.New()

	result, err := newOrchestrator(r, m).Run(context.Background(), RunConfig{Symbols: []string{"A.NS"}})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Len(t, result.RunID, 36)
	assert.Equal(t, contracts.Stages, r.calls)
	assert.Equal(t, contracts.Stages, result.CompletedStages)
	assert.Equal(t, []string{"A.NS"}, result.Fetch.Succeeded)
	assert.Equal(t, 2, result.Analysis.Symbols)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageRuns.WithLabelValues("visualize", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StageItems.WithLabelValues("visualize", "charts")))
}

func TestRunStopsAtFirstFatalError(t *testing.T) {
	r := &recorder{fail: contracts.StageLoad}

	result, err := newOrchestrator(r, nil).Run(context.Background(), RunConfig{RunID: "run-1"})
	require.Error(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, []string{"fetch", "clean", "load"}, r.calls)
	assert.Equal(t, []string{"fetch", "clean"}, result.CompletedStages)
	assert.True(t, errors.Is(err, contracts.ErrMissingArtifact))
	assert.Contains(t, err.Error(), "load failed")
}

func TestRunFromStage(t *testing.T) {
	r := &recorder{}

	result, err := newOrchestrator(r, nil).Run(context.Background(), RunConfig{From: contracts.StageAnalyze})
	require.NoError(t, err)

	assert.Equal(t, []string{"analyze", "visualize"}, r.calls)
	assert.Nil(t, result.Fetch)
}

func TestSelectStages(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     []string
		wantErr  bool
	}{
		{"default", "", "", contracts.Stages, false},
		{"single", "clean", "clean", []string{"clean"}, false},
		{"middle", "clean", "analyze", []string{"clean", "load", "analyze"}, false},
		{"reversed", "analyze", "clean", nil, true},
		{"unknown", "dashboard", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectStages(tt.from, tt.to)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
