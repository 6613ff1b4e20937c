package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/internal/pipeline"
	"github.com/wonny/nifty50/pkg/logger"
)

type fakeRunner struct {
	got    pipeline.RunConfig
	result *pipeline.RunResult
	err    error
}

func (r *fakeRunner) Run(_ context.Context, config pipeline.RunConfig) (*pipeline.RunResult, error) {
	r.got = config
	return r.result, r.err
}

func TestPipelineJob(t *testing.T) {
	runner := &fakeRunner{result: &pipeline.RunResult{
		RunID: "abc",
		Fetch: &contracts.FetchReport{Failed: []contracts.SymbolFailure{{Symbol: "X.NS"}}},
	}}
	job := NewPipelineJob(runner, []string{"A.NS"}, "0 30 18 * * 1-5", logger.Nop())

	assert.Equal(t, "pipeline", job.Name())
	assert.Equal(t, "0 30 18 * * 1-5", job.Schedule())

	runID, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", runID)
	assert.Equal(t, []string{"A.NS"}, runner.got.Symbols)
}

func TestPipelineJobError(t *testing.T) {
	runner := &fakeRunner{result: &pipeline.RunResult{RunID: "abc"}, err: errors.New("clean failed")}
	job := NewPipelineJob(runner, nil, "@daily", logger.Nop())

	runID, err := job.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "abc", runID)

	runner.result = nil
	runID, err = job.Run(context.Background())
	assert.Error(t, err)
	assert.Empty(t, runID)
}
