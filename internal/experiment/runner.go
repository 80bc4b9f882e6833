package experiment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/logchange/internal/gitctx"
	"github.com/dshills/logchange/internal/output"
	"github.com/dshills/logchange/internal/summarize"
)

// ErrNoSuccess is returned when every experiment failed.
var ErrNoSuccess = errors.New("no experiments completed successfully")

// CommitSource returns up to max commits with their diffs loaded.
type CommitSource func(ctx context.Context, max int) ([]gitctx.Commit, error)

// EngineFactory returns an engine that talks to model.
type EngineFactory func(model string) (*summarize.Engine, error)

// Result is the outcome of one experiment.
type Result struct {
	Name       string            `json:"experiment_name"`
	Config     Config            `json:"config"`
	Statistics summarize.Stats   `json:"statistics"`
	Changelog  []summarize.Entry `json:"changelog"`
}

// Run is a full set of experiments.
type Run struct {
	ID          string    `json:"run_id"`
	Timestamp   time.Time `json:"timestamp"`
	Experiments []Result  `json:"experiments"`
	// Failed maps experiment names to the error that stopped them.
	Failed map[string]string `json:"failed,omitempty"`
}

// Runner executes experiments sequentially.
type Runner struct {
	Commits   CommitSource
	NewEngine EngineFactory
	// Progress, if set, is called after each commit.
	Progress func(experiment string, done, total int)

	now func() time.Time
}

// Run executes every configuration in order. A failing experiment is logged
// and skipped; cancellation stops the run.
func (r *Runner) Run(ctx context.Context, cfgs []Config) (*Run, error) {
	now := r.now
	if now == nil {
		now = time.Now
	}
	run := &Run{ID: uuid.NewString(), Timestamp: now()}

	for _, cfg := range cfgs {
		slog.Info("running experiment", "run", run.ID, "name", cfg.Name, "model", cfg.Model,
			"commits", cfg.MaxCommits, "maxTokens", cfg.MaxTokens)
		res, err := r.runOne(ctx, cfg, now)
		if err != nil {
			if ctx.Err() != nil {
				return run, ctx.Err()
			}
			slog.Error("experiment failed", "name", cfg.Name, "error", err)
			if run.Failed == nil {
				run.Failed = make(map[string]string)
			}
			run.Failed[cfg.Name] = err.Error()
			continue
		}
		slog.Info("experiment complete", "name", cfg.Name,
			"seconds", fmt.Sprintf("%.2f", res.Statistics.DurationSeconds),
			"perCommit", fmt.Sprintf("%.2f", res.Statistics.AvgSecsPerCommit))
		run.Experiments = append(run.Experiments, res)
	}

	if len(run.Experiments) == 0 {
		return run, ErrNoSuccess
	}
	return run, nil
}

func (r *Runner) runOne(ctx context.Context, cfg Config, now func() time.Time) (Result, error) {
	engine, err := r.NewEngine(cfg.Model)
	if err != nil {
		return Result{}, err
	}
	commits, err := r.Commits(ctx, cfg.MaxCommits)
	if err != nil {
		return Result{}, err
	}

	start := now()
	var progress func(done, total int)
	if r.Progress != nil {
		progress = func(done, total int) { r.Progress(cfg.Name, done, total) }
	}
	entries, err := engine.Changelog(ctx, commits, cfg.MaxTokens, progress)
	if err != nil {
		return Result{}, err
	}
	elapsed := now().Sub(start)

	return Result{
		Name:       cfg.Name,
		Config:     cfg,
		Statistics: summarize.Statistics(entries, cfg.Model, elapsed),
		Changelog:  entries,
	}, nil
}

// Summaries converts results for the comparison report.
func (run *Run) Summaries() []output.ExperimentSummary {
	s := make([]output.ExperimentSummary, len(run.Experiments))
	for i, res := range run.Experiments {
		s[i] = output.ExperimentSummary{Name: res.Name, Model: res.Config.Model, Stats: res.Statistics}
	}
	return s
}

// WriteComparison writes the plain-text comparison report to w.
func (run *Run) WriteComparison(w io.Writer) error {
	return output.WriteComparison(w, run.Summaries())
}

// Save writes experiment_results.json, comparison_report.txt, and one
// changelog_<name>.md per experiment into dir. It returns the files written.
func Save(run *Run, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	var written []string

	resultsPath := filepath.Join(dir, "experiment_results.json")
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling results: %w", err)
	}
	if err := os.WriteFile(resultsPath, append(data, '\n'), 0o644); err != nil {
		return nil, fmt.Errorf("writing results: %w", err)
	}
	written = append(written, resultsPath)

	reportPath := filepath.Join(dir, "comparison_report.txt")
	if err := output.WriteToFile(reportPath, run.WriteComparison); err != nil {
		return written, err
	}
	written = append(written, reportPath)

	summaries := run.Summaries()
	for i, res := range run.Experiments {
		path := filepath.Join(dir, "changelog_"+output.Slug(res.Name)+".md")
		err := output.WriteToFile(path, func(w io.Writer) error {
			return output.WriteExperimentChangelog(w, summaries[i], res.Changelog)
		})
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
