package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/logchange/internal/config"
	"github.com/dshills/logchange/internal/experiment"
	"github.com/dshills/logchange/internal/gitctx"
)

var (
	flagExpOutDir     string
	flagExpQuick      bool
	flagExpModels     string
	flagExpMaxCommits int
	flagExpCustom     string
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Run the changelog pipeline under several model configurations",
	Example: `  logchange experiment --quick
  logchange experiment --models gpt-3.5-turbo,gpt-4 --max-commits 20
  logchange experiment --custom '{"name": "Test", "model": "gpt-4", "max_commits": 5}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgs, err := experimentConfigs()
		if err != nil {
			return err
		}
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		runExperiments(cmd, cfg, cfgs)
		return nil
	},
}

// experimentConfigs picks the experiment set from flags. --quick wins over
// --custom, which wins over --models.
func experimentConfigs() ([]experiment.Config, error) {
	switch {
	case flagExpQuick:
		return experiment.Quick(), nil
	case flagExpCustom != "":
		c, err := experiment.ParseCustom(flagExpCustom)
		if err != nil {
			return nil, err
		}
		return []experiment.Config{c}, nil
	case flagExpModels != "":
		cfgs := experiment.ForModels(splitComma(flagExpModels), flagExpMaxCommits)
		if len(cfgs) == 0 {
			return nil, errors.New("--models needs at least one model")
		}
		return cfgs, nil
	default:
		return experiment.Defaults(flagExpMaxCommits), nil
	}
}

func runExperiments(cmd *cobra.Command, cfg config.Config, cfgs []experiment.Config) {
	ctx := cmd.Context()
	s, err := openSession(ctx, cfg)
	if err != nil {
		fail(err)
		return
	}
	defer s.close()

	runner := &experiment.Runner{
		Commits: func(ctx context.Context, max int) ([]gitctx.Commit, error) {
			return s.commits(ctx, max)
		},
		NewEngine: s.engine,
	}
	if flagVerbose {
		runner.Progress = func(name string, done, total int) {
			fmt.Fprintf(os.Stderr, "\r[%s] commit %d/%d", name, done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "Running %d experiment(s)...\n", len(cfgs))
	run, err := runner.Run(ctx, cfgs)
	if err != nil {
		fail(err)
		return
	}
	for name, msg := range run.Failed {
		fmt.Fprintf(os.Stderr, "Error in experiment '%s': %s\n", name, msg)
	}

	if err := run.WriteComparison(os.Stdout); err != nil {
		fail(err)
		return
	}
	files, err := experiment.Save(run, flagExpOutDir)
	if err != nil {
		fail(err)
		return
	}
	for _, f := range files {
		fmt.Fprintf(os.Stdout, "Saved %s\n", f)
	}
}

func init() {
	addSessionFlags(experimentCmd)
	experimentCmd.Flags().StringVar(&flagExpOutDir, "output-dir", "experiment_results", "Directory to save results")
	experimentCmd.Flags().BoolVar(&flagExpQuick, "quick", false, "Run one quick experiment (5 commits, gpt-3.5-turbo)")
	experimentCmd.Flags().StringVar(&flagExpModels, "models", "", "Comma-separated models to compare")
	experimentCmd.Flags().IntVar(&flagExpMaxCommits, "max-commits", experiment.DefaultMaxCommits, "Number of commits per experiment")
	experimentCmd.Flags().StringVar(&flagExpCustom, "custom", "", "Custom experiment as JSON")
}
