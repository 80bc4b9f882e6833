package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/logchange/internal/config"
	"github.com/dshills/logchange/internal/gitctx"
	"github.com/dshills/logchange/internal/output"
	"github.com/dshills/logchange/internal/summarize"
)

var (
	flagOutput    string
	flagFormat    string
	flagMaxTokens int
	flagStats     bool
)

var changelogCmd = &cobra.Command{
	Use:   "changelog",
	Short: "Generate a changelog from recent commits",
	Example: `  logchange changelog
  logchange changelog --format json --stats --output changelog.json
  logchange changelog --max-commits 100 --model gpt-4 --verbose
  logchange changelog --format csv --output results.csv --stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := buildOverrides()
		if flagFormat != "" {
			overrides["format"] = flagFormat
		}
		if flagMaxTokens > 0 {
			overrides["maxTokens"] = strconv.Itoa(flagMaxTokens)
		}
		if flagOutput != "" {
			overrides["output"] = flagOutput
		}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}
		runChangelog(cmd, cfg)
		return nil
	},
}

func runChangelog(cmd *cobra.Command, cfg config.Config) {
	ctx := cmd.Context()
	s, err := openSession(ctx, cfg)
	if err != nil {
		fail(err)
		return
	}
	defer s.close()

	model := modelFor(cfg)
	engine, err := s.engine(model)
	if err != nil {
		fail(err)
		return
	}

	if flagVerbose {
		fmt.Fprintf(os.Stderr, "Fetching up to %d commits from %s...\n", cfg.MaxCommits, s.root)
	}
	commits, err := s.commits(ctx, cfg.MaxCommits)
	if err != nil {
		if errors.Is(err, gitctx.ErrNoCommits) {
			fmt.Fprintln(os.Stderr, "No commits found.")
			exitCode = ExitRuntimeError
			return
		}
		fail(err)
		return
	}

	if flagVerbose {
		fmt.Fprintf(os.Stderr, "Generating summaries using %s...\n", model)
	}
	start := time.Now()
	entries, err := engine.Changelog(ctx, commits, cfg.MaxTokens, progressPrinter("Processing commit"))
	if err != nil {
		fail(err)
		return
	}

	cl := &output.Changelog{GeneratedAt: time.Now(), Entries: entries}
	if flagStats {
		stats := summarize.Statistics(entries, model, time.Since(start))
		cl.Stats = &stats
		if flagVerbose {
			fmt.Fprintf(os.Stderr, "\nStatistics:\n  Total commits: %d\n  Contributors: %d\n  Date range: %s\n  Model: %s\n",
				stats.TotalCommits, stats.Contributors, stats.DateRange, stats.Model)
		}
	}

	if err := output.WriteReport(cl, cfg.Format, cfg.Output); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}
	if cfg.Output != "" && cfg.Output != "-" {
		fmt.Fprintf(os.Stdout, "Changelog generated and saved to '%s'\n", cfg.Output)
	}
}

func init() {
	addSessionFlags(changelogCmd)
	changelogCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "File to write the changelog to, - for stdout (default: changelog.md)")
	changelogCmd.Flags().IntVar(&flagMaxCommits, "max-commits", 0, "Number of recent commits to include (default: 50)")
	changelogCmd.Flags().StringVar(&flagFormat, "format", "", "Output format (markdown, json, csv)")
	changelogCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "Maximum tokens per summary (default: 300)")
	changelogCmd.Flags().BoolVar(&flagStats, "stats", false, "Include statistics in the output")
}
