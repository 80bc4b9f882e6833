package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/logchange/internal/config"
	"github.com/dshills/logchange/internal/gitctx"
	"github.com/dshills/logchange/internal/summarize"
)

var (
	flagCommit    string
	flagStaged    bool
	flagStyle     string
	flagMaxLength int
)

var commitMsgCmd = &cobra.Command{
	Use:   "commit-msg",
	Short: "Draft a commit message for pending changes or an existing commit",
	Example: `  logchange commit-msg
  logchange commit-msg --staged --style concise
  logchange commit-msg --commit HEAD~2 --style detailed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides := buildOverrides()
		if flagStyle != "" {
			overrides["style"] = flagStyle
		}
		if flagMaxLength > 0 {
			overrides["maxLength"] = strconv.Itoa(flagMaxLength)
		}
		cfg, err := config.Load(overrides)
		if err != nil {
			return err
		}
		if flagCommit != "" && flagStaged {
			return errors.New("--commit and --staged are mutually exclusive")
		}
		runCommitMsg(cmd, cfg)
		return nil
	},
}

func runCommitMsg(cmd *cobra.Command, cfg config.Config) {
	ctx := cmd.Context()
	s, err := openSession(ctx, cfg)
	if err != nil {
		fail(err)
		return
	}
	defer s.close()

	var diff, original string
	if flagCommit != "" {
		c, err := gitctx.ShowCommit(ctx, s.root, flagCommit)
		if err != nil {
			fail(err)
			return
		}
		if diff, err = gitctx.CommitDiff(ctx, s.root, c.SHA); err != nil {
			fail(err)
			return
		}
		original = c.Message
	} else {
		if diff, err = gitctx.WorkingDiff(ctx, s.root, flagStaged); err != nil {
			fail(err)
			return
		}
	}

	engine, err := s.engine(modelFor(cfg))
	if err != nil {
		fail(err)
		return
	}
	msg, err := engine.CommitMessage(ctx, diff, original, cfg.Style, cfg.MaxLength)
	if err != nil {
		if errors.Is(err, summarize.ErrNoChanges) {
			fmt.Fprintln(os.Stderr, "No changes to generate commit message for")
			exitCode = ExitRuntimeError
			return
		}
		fail(err)
		return
	}

	fmt.Fprintln(os.Stdout, msg)
	if original != "" {
		fmt.Fprintf(os.Stdout, "\n%s\nOriginal message:\n%s\n", strings.Repeat("=", 50), original)
	}
}

func init() {
	addSessionFlags(commitMsgCmd)
	commitMsgCmd.Flags().StringVar(&flagCommit, "commit", "", "Describe an existing commit instead of pending changes")
	commitMsgCmd.Flags().BoolVar(&flagStaged, "staged", false, "Only consider staged changes")
	commitMsgCmd.Flags().StringVar(&flagStyle, "style", "", "Message style (conventional, concise, detailed)")
	commitMsgCmd.Flags().IntVar(&flagMaxLength, "max-length", 0, "Maximum subject length (default: 72)")
}
