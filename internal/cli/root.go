package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/logchange/internal/config"
	"github.com/dshills/logchange/internal/providers"
)

const version = "0.1.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitInterrupted  = 130
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "logchange",
	Short: "AI-generated changelogs and commit messages",
	Long: "logchange summarizes git history into changelogs and drafts commit messages " +
		"using an LLM provider, caching responses and pacing requests.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loaded := config.LoadEnvFiles(".env")
		setupLogging(flagVerbose)
		if len(loaded) > 0 {
			slog.Debug("loaded environment files", "files", loaded)
		}
	},
}

// Run executes the root command and returns an exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode = ExitSuccess
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra already prints the error
		if ctx.Err() != nil {
			return ExitInterrupted
		}
		return ExitUsageError
	}
	if ctx.Err() != nil && exitCode != ExitSuccess {
		return ExitInterrupted
	}
	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// fail reports a runtime error and records the matching exit code.
func fail(err error) {
	switch {
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "\nOperation cancelled by user.")
		exitCode = ExitInterrupted
		return
	case providers.IsAuthError(err):
		exitCode = ExitAuthError
	default:
		exitCode = ExitRuntimeError
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print logchange version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "logchange version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Show progress and debug logging")

	rootCmd.AddCommand(changelogCmd)
	rootCmd.AddCommand(commitMsgCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(experimentCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(versionCmd)
}
