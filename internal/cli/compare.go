package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/logchange/internal/config"
	"github.com/dshills/logchange/internal/output"
	"github.com/dshills/logchange/internal/summarize"
)

var (
	flagCompareCount int
	flagCompareOut   string
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare recent commit messages with generated ones in every style",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := buildOverrides()
		if flagMaxLength > 0 {
			overrides["maxLength"] = strconv.Itoa(flagMaxLength)
		}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}
		if flagCompareCount <= 0 {
			return fmt.Errorf("--count must be positive, got %d", flagCompareCount)
		}
		runCompare(cmd, cfg)
		return nil
	},
}

func runCompare(cmd *cobra.Command, cfg config.Config) {
	ctx := cmd.Context()
	s, err := openSession(ctx, cfg)
	if err != nil {
		fail(err)
		return
	}
	defer s.close()

	engine, err := s.engine(modelFor(cfg))
	if err != nil {
		fail(err)
		return
	}
	commits, err := s.commits(ctx, flagCompareCount)
	if err != nil {
		fail(err)
		return
	}
	results, err := engine.Compare(ctx, commits, cfg.MaxLength, progressPrinter("Analyzing commit"))
	if err != nil {
		fail(err)
		return
	}

	printComparePreview(os.Stderr, results)
	err = output.WriteToFile(flagCompareOut, func(w io.Writer) error {
		return output.WriteQualityReport(w, results)
	})
	if err != nil {
		fail(err)
		return
	}
	fmt.Fprintf(os.Stdout, "Report saved to: %s\n", flagCompareOut)
}

// printComparePreview shows the first two results side by side.
func printComparePreview(w io.Writer, results []summarize.QualityResult) {
	for i, r := range results {
		if i == 2 {
			break
		}
		fmt.Fprintf(w, "Commit: %s\n", r.Hash)
		fmt.Fprintf(w, "Actual: %s\n", preview(r.Actual, 60))
		fmt.Fprintf(w, "AI (Conventional): %s\n\n", preview(r.Generated[summarize.StyleConventional], 60))
	}
}

func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

func init() {
	addSessionFlags(compareCmd)
	compareCmd.Flags().IntVar(&flagCompareCount, "count", 5, "Number of recent commits to analyze")
	compareCmd.Flags().StringVarP(&flagCompareOut, "output", "o", "COMMIT_QUALITY_REPORT.md", "Report file")
	compareCmd.Flags().IntVar(&flagMaxLength, "max-length", 0, "Maximum subject length (default: 72)")
}
