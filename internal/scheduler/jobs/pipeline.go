package jobs

import (
	"context"

	"github.com/wonny/nifty50/internal/pipeline"
	"github.com/wonny/nifty50/pkg/logger"
)

// Runner is the part of the orchestrator the job needs
type Runner interface {
	Run(ctx context.Context, config pipeline.RunConfig) (*pipeline.RunResult, error)
}

// PipelineJob runs the full batch pipeline
// ⭐ SSOT: 정기 파이프라인 실행은 이 Job에서만
type PipelineJob struct {
	runner   Runner
	symbols  []string
	schedule string
	logger   *logger.Logger
}

// NewPipelineJob creates a new pipeline job
func NewPipelineJob(runner Runner, symbols []string, schedule string, log *logger.Logger) *PipelineJob {
	return &PipelineJob{
		runner:   runner,
		symbols:  symbols,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *PipelineJob) Name() string {
	return "pipeline"
}

// Schedule returns the cron schedule (default weekdays 18:30, after NSE close)
func (j *PipelineJob) Schedule() string {
	return j.schedule
}

// Run executes fetch → clean → load → analyze → visualize
func (j *PipelineJob) Run(ctx context.Context) (string, error) {
	result, err := j.runner.Run(ctx, pipeline.RunConfig{Symbols: j.symbols})
	if result == nil {
		return "", err
	}

	if result.Fetch != nil && len(result.Fetch.Failed) > 0 {
		j.logger.WithFields(map[string]interface{}{
			"run_id": result.RunID,
			"failed": result.Fetch.FailedSymbols(),
		}).Warn("Scheduled run had fetch failures")
	}
	return result.RunID, err
}
