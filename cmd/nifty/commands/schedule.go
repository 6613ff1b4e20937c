package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/wonny/nifty50/internal/api"
	"github.com/wonny/nifty50/internal/scheduler"
	"github.com/wonny/nifty50/internal/scheduler/jobs"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline on a cron schedule",
	Long: `Starts a scheduler that runs the full pipeline on SCHEDULE
(cron with seconds, default "0 30 18 * * 1-5": weekdays 18:30).
A tick that arrives while the previous run is still going is skipped.
When METRICS_ENABLED is true, /metrics is served on METRICS_PORT.

Example:
  go run ./cmd/nifty schedule
  go run ./cmd/nifty schedule --now
  go run ./cmd/nifty schedule --cron "@every 6h"`,
	RunE: runSchedule,
}

var (
	scheduleCron string
	scheduleNow  bool
)

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", "", "cron expression (default SCHEDULE)")
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "run once immediately after starting")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if scheduleCron != "" {
		a.cfg.Schedule = scheduleCron
	}

	u, err := a.universe()
	if err != nil {
		return err
	}

	orch, closeStores, err := a.orchestrator()
	if err != nil {
		return err
	}
	defer closeStores()

	sched := scheduler.New(a.log)
	job := jobs.NewPipelineJob(orch, u.Symbols, a.cfg.Schedule, a.log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	var metricsServer *api.Server
	if a.cfg.MetricsEnabled {
		r := mux.NewRouter()
		r.Handle("/metrics", a.metrics.Handler()).Methods("GET")
		r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}).Methods("GET")
		metricsServer = api.NewOnAddr(":"+a.cfg.MetricsPort, a.cfg, a.log, r)
		go func() {
			if err := metricsServer.Start(); err != nil {
				a.log.WithError(err).Error("Metrics server stopped")
			}
		}()
	}

	sched.Start()

	next, _ := sched.NextRun(job.Name())
	fmt.Println("\n✅ Scheduler started successfully")
	PrintKeyValue("Schedule", a.cfg.Schedule, 10)
	PrintKeyValue("Next run", next.Format(time.RFC3339), 10)
	if metricsServer != nil {
		PrintKeyValue("Metrics", "http://localhost:"+a.cfg.MetricsPort+"/metrics", 10)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if scheduleNow {
		result, err := sched.RunNow(ctx, job.Name())
		switch {
		case errors.Is(err, scheduler.ErrJobRunning):
			PrintWarning("A scheduled run is already in progress; --now skipped")
		case err != nil:
			return err
		case result.Success:
			PrintSuccess(fmt.Sprintf("Run %s completed in %s", result.RunID, result.Duration.Round(time.Millisecond)))
		default:
			PrintError(fmt.Sprintf("Run %s failed: %s", result.RunID, result.Error))
		}
	}

	<-ctx.Done()

	sched.Stop()
	printJobStats(sched, a)
	if metricsServer != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// printJobStats summarizes what ran during this scheduler session
func printJobStats(sched *scheduler.Scheduler, a *app) {
	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		st := stats[name]
		a.log.Infof("Job %s: %d runs, %d failed", name, st.TotalRuns, st.FailureCount)

		fmt.Printf("\n📋 %s\n", name)
		PrintKeyValue("Runs", fmt.Sprintf("%d (%d ok, %d failed)", st.TotalRuns, st.SuccessCount, st.FailureCount), 10)
		if st.TotalRuns > 0 {
			PrintKeyValue("Success", FormatPercent(st.SuccessRate), 10)
		}
		if st.LastRun != nil {
			PrintKeyValue("Last run", st.LastRunID+" @ "+st.LastRun.Format(time.RFC3339), 10)
		}

		history, err := sched.GetJobHistory(name)
		if err != nil {
			continue
		}
		for _, res := range history.Results {
			if !res.Success {
				PrintError(fmt.Sprintf("%s %s: %s", res.StartTime.Format(time.RFC3339), res.RunID, res.Error))
			}
		}
	}
}
