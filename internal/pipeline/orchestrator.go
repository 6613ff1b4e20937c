package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/nifty50/internal/contracts"
	"github.com/wonny/nifty50/pkg/logger"
	"github.com/wonny/nifty50/pkg/metrics"
)

// Stage interfaces, satisfied by the s0..s4 packages
type (
	FetchStage interface {
		Run(ctx context.Context, symbols []string) (*contracts.FetchReport, error)
	}
	CleanStage interface {
		Run(ctx context.Context) (*contracts.CleanReport, error)
	}
	LoadStage interface {
		Run(ctx context.Context) (*contracts.LoadReport, error)
	}
	AnalyzeStage interface {
		Run(ctx context.Context) (*contracts.AnalysisReport, error)
	}
	VisualizeStage interface {
		Run(ctx context.Context) (*contracts.VisualizeReport, error)
	}
)

// Stages bundles one implementation per batch stage
type Stages struct {
	Fetch     FetchStage
	Clean     CleanStage
	Load      LoadStage
	Analyze   AnalyzeStage
	Visualize VisualizeStage
}

// Orchestrator runs the batch stages in order
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	stages  Stages
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID   string   // generated when empty
	Symbols []string // universe for the fetch stage
	From    string   // first stage, default fetch
	To      string   // last stage, default visualize
}

// RunResult holds the results of a pipeline run
type RunResult struct {
	RunID           string                     `json:"run_id"`
	StartedAt       time.Time                  `json:"started_at"`
	Success         bool                       `json:"success"`
	Error           error                      `json:"-"`
	CompletedStages []string                   `json:"completed_stages"`
	Fetch           *contracts.FetchReport     `json:"fetch,omitempty"`
	Clean           *contracts.CleanReport     `json:"clean,omitempty"`
	Load            *contracts.LoadReport      `json:"load,omitempty"`
	Analysis        *contracts.AnalysisReport  `json:"analysis,omitempty"`
	Visualize       *contracts.VisualizeReport `json:"visualize,omitempty"`
	Duration        time.Duration              `json:"duration"`
}

// NewOrchestrator creates a new orchestrator; m may be nil
func NewOrchestrator(stages Stages, m *metrics.Metrics, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		stages:  stages,
		metrics: m,
		logger:  log,
	}
}

// SelectStages returns the batch stages from..to, inclusive
func SelectStages(from, to string) ([]string, error) {
	if from == "" {
		from = contracts.StageFetch
	}
	if to == "" {
		to = contracts.StageVisualize
	}

	start, end := -1, -1
	for i, s := range contracts.Stages {
		if s == from {
			start = i
		}
		if s == to {
			end = i
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("unknown stage %q", from)
	}
	if end < 0 {
		return nil, fmt.Errorf("unknown stage %q", to)
	}
	if start > end {
		return nil, fmt.Errorf("stage %q comes after %q", from, to)
	}
	return contracts.Stages[start : end+1], nil
}

// Run executes the selected stages, stopping at the first fatal error
// fetch → clean → load → analyze → visualize
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	if config.RunID == "" {
		config.RunID = uuid.New().String()
	}

	result := &RunResult{
		RunID:           config.RunID,
		StartedAt:       time.Now(),
		CompletedStages: make([]string, 0, len(contracts.Stages)),
	}
	log := o.logger.WithField("run_id", config.RunID)

	stages, err := SelectStages(config.From, config.To)
	if err != nil {
		result.Error = err
		return result, err
	}

	log.WithFields(map[string]interface{}{
		"stages":  stages,
		"symbols": len(config.Symbols),
	}).Info("Starting pipeline run")

	for _, stage := range stages {
		start := time.Now()
		err := o.runStage(ctx, stage, config, result)
		o.metrics.ObserveStage(stage, start, err)

		if err != nil {
			result.Error = fmt.Errorf("%s failed: %w", stage, err)
			result.Duration = time.Since(result.StartedAt)
			log.WithError(err).WithField("stage", stage).Error("Pipeline run failed")
			return result, result.Error
		}
		result.CompletedStages = append(result.CompletedStages, stage)
		log.WithFields(map[string]interface{}{
			"stage":    stage,
			"duration": time.Since(start).String(),
		}).Info("Stage completed")
	}

	result.Success = true
	result.Duration = time.Since(result.StartedAt)

	log.WithFields(map[string]interface{}{
		"duration": result.Duration.String(),
		"stages":   result.CompletedStages,
	}).Info("Pipeline run completed")

	return result, nil
}

func (o *Orchestrator) runStage(ctx context.Context, stage string, config RunConfig, result *RunResult) error {
	switch stage {
	case contracts.StageFetch:
		report, err := o.stages.Fetch.Run(ctx, config.Symbols)
		result.Fetch = report
		if report != nil {
			o.metrics.SetItems(stage, "symbols", len(report.Succeeded))
			o.metrics.AddFetchFailures(len(report.Failed))
		}
		return err
	case contracts.StageClean:
		report, err := o.stages.Clean.Run(ctx)
		result.Clean = report
		if report != nil {
			o.metrics.SetItems(stage, "rows", report.Rows)
		}
		return err
	case contracts.StageLoad:
		report, err := o.stages.Load.Run(ctx)
		result.Load = report
		if report != nil {
			o.metrics.SetItems(stage, "rows", report.Rows)
		}
		return err
	case contracts.StageAnalyze:
		report, err := o.stages.Analyze.Run(ctx)
		result.Analysis = report
		if report != nil {
			o.metrics.SetItems(stage, "symbols", report.Symbols)
		}
		return err
	case contracts.StageVisualize:
		report, err := o.stages.Visualize.Run(ctx)
		result.Visualize = report
		if report != nil {
			o.metrics.SetItems(stage, "charts", len(report.Charts))
		}
		return err
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
}
