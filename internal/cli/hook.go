package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/logchange/internal/gitctx"
)

const (
	hookMarkerStart = "# >>> logchange prepare-commit-msg hook >>>"
	hookMarkerEnd   = "# <<< logchange prepare-commit-msg hook <<<"
)

var (
	hookStyle     string
	hookMaxLength int
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git prepare-commit-msg hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Draft commit messages from staged changes when none is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath(cmd)
		if err != nil {
			fail(err)
			return nil
		}

		section := generateHookScript(hookStyle, hookMaxLength)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			fail(fmt.Errorf("reading hook file: %w", err))
			return nil
		}

		var content string
		if os.IsNotExist(err) || len(existing) == 0 {
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			fail(fmt.Errorf("creating hooks directory: %w", err))
			return nil
		}
		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fail(fmt.Errorf("writing hook file: %w", err))
			return nil
		}

		fmt.Fprintf(os.Stdout, "Installed logchange prepare-commit-msg hook at %s\n", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the logchange prepare-commit-msg hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath(cmd)
		if err != nil {
			fail(err)
			return nil
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(os.Stdout, "No prepare-commit-msg hook found.")
				return nil
			}
			fail(fmt.Errorf("reading hook file: %w", err))
			return nil
		}

		content := removeHookSection(string(existing))

		// Only a shebang left: delete the file.
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				fail(fmt.Errorf("removing hook file: %w", err))
				return nil
			}
			fmt.Fprintf(os.Stdout, "Removed logchange hook at %s\n", hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fail(fmt.Errorf("writing hook file: %w", err))
			return nil
		}
		fmt.Fprintf(os.Stdout, "Removed logchange section from %s\n", hookPath)
		return nil
	},
}

func getHookPath(cmd *cobra.Command) (string, error) {
	root, err := gitctx.RepoRoot(cmd.Context(), flagRepo)
	if err != nil {
		return "", err
	}
	gitDir, err := gitctx.GitDir(cmd.Context(), root)
	if err != nil {
		return "", err
	}
	return filepath.Join(gitDir, "hooks", "prepare-commit-msg"), nil
}

// generateHookScript drafts a message only when git did not supply one
// ($2 is set for -m, templates, merges, and amends). Failures never block
// the commit.
func generateHookScript(style string, maxLength int) string {
	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	b.WriteString("if [ -z \"$2\" ]; then\n")
	fmt.Fprintf(&b, "  LOGCHANGE_MSG=$(logchange commit-msg --staged --style %s --max-length %d 2>/dev/null)\n", style, maxLength)
	b.WriteString("  if [ $? -eq 0 ] && [ -n \"$LOGCHANGE_MSG\" ]; then\n")
	b.WriteString("    { printf '%s\\n' \"$LOGCHANGE_MSG\"; cat \"$1\"; } > \"$1.logchange\" && mv \"$1.logchange\" \"$1\"\n")
	b.WriteString("  else\n")
	b.WriteString("    echo \"logchange: could not draft a commit message, continuing\" >&2\n")
	b.WriteString("  fi\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	for _, cmd := range []*cobra.Command{hookInstallCmd, hookUninstallCmd} {
		cmd.Flags().StringVar(&flagRepo, "repo", ".", "Path to the git repository")
	}
	hookInstallCmd.Flags().StringVar(&hookStyle, "style", "conventional", "Message style (conventional, concise, detailed)")
	hookInstallCmd.Flags().IntVar(&hookMaxLength, "max-length", 72, "Maximum subject length")
}
