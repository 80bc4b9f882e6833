package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/logchange/internal/gitctx"
	"github.com/dshills/logchange/internal/providers"
	"github.com/dshills/logchange/internal/redact"
)

// ResponseCache is the subset of the response cache the engine needs.
type ResponseCache interface {
	GetOrNone(content, model, style string) (string, bool)
	Store(content, model, style, text string)
}

// Admitter gates outbound calls.
type Admitter interface {
	Acquire(ctx context.Context) error
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables response caching.
func WithCache(c ResponseCache) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLimiter gates provider calls through l.
func WithLimiter(l Admitter) Option {
	return func(e *Engine) { e.limiter = l }
}

// WithRedactor scrubs messages and diffs before they are fingerprinted or sent.
func WithRedactor(r redact.Redactor) Option {
	return func(e *Engine) { e.redactor = r }
}

// Engine drives completions through cache, limiter, and provider.
type Engine struct {
	provider providers.Completer
	model    string
	cache    ResponseCache
	limiter  Admitter
	redactor redact.Redactor
}

// New returns an engine that calls provider with the given model name.
func New(provider providers.Completer, model string, opts ...Option) *Engine {
	e := &Engine{provider: provider, model: model}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Model returns the model identifier used for requests and cache keys.
func (e *Engine) Model() string { return e.model }

// Complete returns the model's response to req, serving it from the cache
// when an identical request was answered before. style distinguishes
// requests whose prompts match but whose parameters differ. The second
// return value reports a cache hit.
func (e *Engine) Complete(ctx context.Context, style string, req providers.CompletionRequest) (string, bool, error) {
	content := req.SystemPrompt + "\n\n" + req.UserPrompt
	if e.cache != nil {
		if text, ok := e.cache.GetOrNone(content, e.model, style); ok {
			slog.Debug("cache hit", "model", e.model, "style", style)
			return text, true, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if e.limiter != nil {
		if err := e.limiter.Acquire(ctx); err != nil {
			return "", false, err
		}
	}

	resp, err := e.provider.Complete(ctx, req)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", e.provider.Name(), err)
	}
	text := strings.TrimSpace(resp.Content)

	if e.cache != nil {
		e.cache.Store(content, e.model, style, text)
	}
	return text, false, nil
}

// SummarizeCommit produces the changelog entry for c. c.Diff must already be
// loaded. A provider failure yields an entry with [SummaryUnavailable] and a
// nil error; authentication failures and cancellation are returned.
func (e *Engine) SummarizeCommit(ctx context.Context, c gitctx.Commit, maxTokens int) (Entry, error) {
	entry := entryFor(c)
	req := providers.CompletionRequest{
		SystemPrompt: changelogSystemPrompt,
		UserPrompt:   BuildChangelogPrompt(e.redactor.Text(c.Message), e.redactor.Diff(c.Diff)),
		MaxTokens:    maxTokens,
	}

	text, cached, err := e.Complete(ctx, "changelog:"+strconv.Itoa(maxTokens), req)
	if err != nil {
		if fatal(ctx, err) {
			return entry, fmt.Errorf("summarizing commit %s: %w", c.ShortSHA, err)
		}
		slog.Error("summarizing commit failed", "commit", c.ShortSHA, "error", err)
		entry.Summary = SummaryUnavailable
		entry.Failed = true
		return entry, nil
	}
	entry.Summary = text
	entry.Cached = cached
	return entry, nil
}

// Changelog summarizes commits in order. progress, if non-nil, is called
// after each commit.
func (e *Engine) Changelog(ctx context.Context, commits []gitctx.Commit, maxTokens int, progress func(done, total int)) ([]Entry, error) {
	entries := make([]Entry, 0, len(commits))
	for i, c := range commits {
		entry, err := e.SummarizeCommit(ctx, c, maxTokens)
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
		if progress != nil {
			progress(i+1, len(commits))
		}
	}
	return entries, nil
}

// CommitMessage drafts a commit message for diff in the given style.
// original, when set, is shown to the model for reference.
func (e *Engine) CommitMessage(ctx context.Context, diff, original, style string, maxLength int) (string, error) {
	if strings.TrimSpace(diff) == "" {
		return "", ErrNoChanges
	}
	prompt, err := BuildCommitMessagePrompt(e.redactor.Diff(diff), e.redactor.Text(original), style, maxLength)
	if err != nil {
		return "", err
	}
	req := providers.CompletionRequest{
		SystemPrompt: commitMsgSystemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    500,
		Temperature:  0.7,
	}
	text, _, err := e.Complete(ctx, style+":"+strconv.Itoa(maxLength), req)
	if err != nil {
		return "", fmt.Errorf("generating commit message: %w", err)
	}
	if text == "" {
		return "", errors.New("generating commit message: empty response")
	}
	return text, nil
}

// ErrNoChanges is returned when there is nothing to describe.
var ErrNoChanges = errors.New("no changes detected")

func entryFor(c gitctx.Commit) Entry {
	return Entry{
		Hash:     c.ShortSHA,
		FullHash: c.SHA,
		Message:  strings.TrimSpace(c.Message),
		Date:     c.Date.Format(time.DateOnly),
		Author:   c.Author,
		Email:    c.Email,
		Files:    c.Files,
	}
}

// fatal reports errors that should stop a batch rather than be recorded
// against a single item.
func fatal(ctx context.Context, err error) bool {
	return providers.IsAuthError(err) || ctx.Err() != nil ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
