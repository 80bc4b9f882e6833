package summarize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dshills/logchange/internal/gitctx"
)

// Compare drafts a message in every style for each commit without showing
// the model the original message. Per-style failures are recorded in the
// result; authentication failures and cancellation abort.
func (e *Engine) Compare(ctx context.Context, commits []gitctx.Commit, maxLength int, progress func(done, total int)) ([]QualityResult, error) {
	results := make([]QualityResult, 0, len(commits))
	for i, c := range commits {
		r := QualityResult{
			Hash:      c.ShortSHA,
			Author:    c.Author,
			Date:      c.Date.Format("2006-01-02 15:04"),
			Actual:    strings.TrimSpace(c.Message),
			Generated: make(map[string]string, len(AllStyles)),
		}
		for _, style := range AllStyles {
			msg, err := e.CommitMessage(ctx, c.Diff, "", style, maxLength)
			if err != nil {
				if fatal(ctx, err) {
					return results, err
				}
				slog.Warn("generation failed", "commit", c.ShortSHA, "style", style, "error", err)
				if r.FailedWith == nil {
					r.FailedWith = make(map[string]string)
				}
				r.FailedWith[style] = err.Error()
				msg = "Generation failed"
			}
			r.Generated[style] = msg
		}
		results = append(results, r)
		if progress != nil {
			progress(i+1, len(commits))
		}
	}
	return results, nil
}
