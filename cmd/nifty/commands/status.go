package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/nifty50/internal/s2_load"
	"github.com/wonny/nifty50/internal/tabular"
	"github.com/wonny/nifty50/internal/universe"
	"github.com/wonny/nifty50/pkg/config"
	"github.com/wonny/nifty50/pkg/database"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which pipeline artifacts exist",
	Long: `Lists every file the stages write with its size and row count,
so a missing or short artifact is visible before a stage fails on it.

Example:
  go run ./cmd/nifty status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// artifactStatus describes one artifact on disk
type artifactStatus struct {
	Stage  string
	Name   string
	Path   string
	Exists bool
	Size   int64
	Rows   string // row count, file count or "-"
}

// collectArtifacts inspects the artifact layout of cfg without creating anything
func collectArtifacts(ctx context.Context, cfg *config.Config) []artifactStatus {
	p := cfg.Paths
	csv := func(stage, dir, name string) artifactStatus {
		st := stat(stage, name, filepath.Join(dir, name))
		if st.Exists {
			if n, err := tabular.CountRows(st.Path); err == nil {
				st.Rows = strconv.Itoa(n)
			}
		}
		return st
	}
	dirOf := func(stage, name, dir, pattern, exclude string) artifactStatus {
		st := stat(stage, name, dir)
		matches, _ := filepath.Glob(filepath.Join(dir, pattern))
		n := 0
		for _, m := range matches {
			if filepath.Base(m) != exclude {
				n++
			}
		}
		st.Rows = strconv.Itoa(n) + " files"
		return st
	}

	return []artifactStatus{
		dirOf("fetch", "raw files", p.RawDir, "*.csv", tabular.CombinedRawFile),
		csv("fetch", p.RawDir, tabular.CombinedRawFile),
		dirOf("clean", "cleaned files", p.CleanedDir, "*.csv", tabular.CombinedCleanedFile),
		csv("clean", p.CleanedDir, tabular.CombinedCleanedFile),
		dbStatus(ctx, cfg.Database.Path),
		csv("analyze", p.AnalysisDir, tabular.AnalysisFile),
		csv("analyze", p.AnalysisDir, tabular.SummaryFile),
		stat("analyze", tabular.AnalysisParquetFile, filepath.Join(p.AnalysisDir, tabular.AnalysisParquetFile)),
		csv("visualize", p.AnalysisDir, tabular.MetricsFile),
		stat("visualize", tabular.MetricsXLSXFile, filepath.Join(p.AnalysisDir, tabular.MetricsXLSXFile)),
		dirOf("visualize", "charts", p.ChartsDir, "*.png", ""),
	}
}

// universeLine names the configured universe by size and a short content hash,
// so two status outputs can be compared for the same symbol list
func universeLine(cfg *config.Config) (string, error) {
	u, err := universe.Resolve(cfg.UniverseFile)
	if err != nil {
		return "", err
	}
	hash, err := u.Hash()
	if err != nil {
		return "", fmt.Errorf("hash universe: %w", err)
	}
	return fmt.Sprintf("%d symbols (%s)", u.Len(), hash[:12]), nil
}

func stat(stage, name, path string) artifactStatus {
	st := artifactStatus{Stage: stage, Name: name, Path: path, Rows: "-"}
	if info, err := os.Stat(path); err == nil {
		st.Exists = true
		if !info.IsDir() {
			st.Size = info.Size()
		}
	}
	return st
}

// dbStatus counts the prices rows; a missing database file is not created
func dbStatus(ctx context.Context, path string) artifactStatus {
	st := stat("load", filepath.Base(path), path)
	if !st.Exists {
		return st
	}
	db, err := database.OpenSQLite(path)
	if err != nil {
		return st
	}
	defer db.Close()

	if n, err := s2_load.NewSQLiteRepository(db.DB).CountPrices(ctx); err == nil {
		st.Rows = strconv.Itoa(n)
	}
	return st
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	fmt.Println()
	PrintKeyValue("Data root", a.cfg.Paths.Root, 10)
	if line, err := universeLine(a.cfg); err == nil {
		PrintKeyValue("Universe", line, 10)
	} else {
		PrintWarning(err.Error())
	}
	fmt.Println()

	widths := []int{10, 26, 4, 10, 10}
	PrintTableHeader([]string{"STAGE", "ARTIFACT", "OK", "SIZE", "ROWS"}, widths)
	missing := 0
	for _, st := range collectArtifacts(cmd.Context(), a.cfg) {
		ok, size := "✘", "-"
		if st.Exists {
			ok = "✔"
			if st.Size > 0 {
				size = FormatBytes(st.Size)
			}
		} else {
			missing++
		}
		PrintTableRow([]string{st.Stage, st.Name, ok, size, st.Rows}, widths)
	}

	if missing > 0 {
		PrintWarning(fmt.Sprintf("%d artifacts missing (optional exports included); run `nifty run` to produce them", missing))
	}
	return nil
}
