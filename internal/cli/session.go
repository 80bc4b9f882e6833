package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/logchange/internal/cache"
	"github.com/dshills/logchange/internal/config"
	"github.com/dshills/logchange/internal/gitctx"
	"github.com/dshills/logchange/internal/providers"
	"github.com/dshills/logchange/internal/ratelimit"
	"github.com/dshills/logchange/internal/redact"
	"github.com/dshills/logchange/internal/summarize"
)

// Shared flags
var (
	flagRepo       string
	flagProvider   string
	flagModel      string
	flagNoCache    bool
	flagNoRedact   bool
	flagRateLimit  int
	flagCacheDir   string
	flagMaxCommits int
)

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagRepo, "repo", ".", "Path to the git repository")
	cmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openai, anthropic, gemini, ollama)")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name (default: gpt-4, or OPENAI_MODEL)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Disable the response cache")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().IntVar(&flagRateLimit, "rate-limit", 0, "Maximum provider calls per window (0: use config)")
	cmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "Cache directory (relative paths are under the repository root)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagProvider != "" {
		m["provider"] = flagProvider
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagNoCache {
		m["cache.enabled"] = "false"
	}
	if flagNoRedact {
		m["privacy.redactSecrets"] = "false"
	}
	if flagRateLimit > 0 {
		m["rateLimit.maxCalls"] = strconv.Itoa(flagRateLimit)
	}
	if flagCacheDir != "" {
		m["cache.dir"] = flagCacheDir
	}
	if flagMaxCommits > 0 {
		m["maxCommits"] = strconv.Itoa(flagMaxCommits)
	}
	return m
}

func splitComma(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// session holds what one command invocation shares across provider calls:
// one cache and one limiter.
type session struct {
	cfg     config.Config
	root    string
	cache   *cache.Cache
	limiter *ratelimit.Limiter
}

func openSession(ctx context.Context, cfg config.Config) (*session, error) {
	root, err := gitctx.RepoRoot(ctx, flagRepo)
	if err != nil {
		return nil, err
	}
	if flagNoRedact {
		slog.Warn("secret redaction is disabled")
	}
	c, err := cache.New(cacheOptions(cfg, root))
	if err != nil {
		slog.Warn("cache unavailable, continuing without it", "error", err)
	}
	return &session{
		cfg:     cfg,
		root:    root,
		cache:   c,
		limiter: ratelimit.New(cfg.RateLimit.MaxCalls, cfg.RateLimit.Window),
	}, nil
}

// cacheOptions resolves a relative cache directory against the repository
// root so every invocation inside the repository shares one cache.
func cacheOptions(cfg config.Config, root string) cache.Options {
	dir := cfg.Cache.Dir
	if dir != "" && !filepath.IsAbs(dir) && root != "" {
		dir = filepath.Join(root, dir)
	}
	opts := cache.Options{
		Enabled:  cfg.Cache.Enabled,
		Dir:      dir,
		TTL:      cfg.Cache.TTL,
		Backend:  cfg.Cache.Backend,
		MemoSize: cfg.Cache.MemoSize,
	}
	if root != "" {
		opts.IgnoreFile = filepath.Join(root, ".gitignore")
	}
	return opts
}

// modelFor returns the model to use with the configured provider. The
// stock default model only applies to openai.
func modelFor(cfg config.Config) string {
	if cfg.Provider != "openai" && cfg.Model == config.Default().Model {
		if m, ok := providers.DefaultModels[cfg.Provider]; ok {
			return m
		}
	}
	return cfg.Model
}

func (s *session) engine(model string) (*summarize.Engine, error) {
	p, err := providers.New(s.cfg.Provider, model)
	if err != nil {
		return nil, err
	}
	return summarize.New(p, model,
		summarize.WithCache(s.cache),
		summarize.WithLimiter(s.limiter),
		summarize.WithRedactor(redact.Redactor{
			Secrets: s.cfg.Privacy.RedactSecrets,
			Paths:   s.cfg.Privacy.RedactPaths,
		}),
	), nil
}

// commits lists up to max commits with their diffs loaded.
func (s *session) commits(ctx context.Context, max int) ([]gitctx.Commit, error) {
	commits, err := gitctx.ListCommits(ctx, s.root, max)
	if err != nil {
		return nil, err
	}
	if err := gitctx.LoadDiffs(ctx, s.root, commits, 0); err != nil {
		return nil, fmt.Errorf("loading diffs: %w", err)
	}
	return commits, nil
}

func (s *session) close() {
	if s.cache == nil {
		return
	}
	if s.cache.Available() {
		hits, misses := s.cache.Usage()
		slog.Debug("cache usage", "hits", hits, "misses", misses)
	}
	if err := s.cache.Close(); err != nil {
		slog.Warn("closing cache", "error", err)
	}
}

// progressPrinter writes "label i/n" updates to stderr when verbose.
func progressPrinter(label string) func(done, total int) {
	if !flagVerbose {
		return nil
	}
	return func(done, total int) {
		fmt.Fprintf(os.Stderr, "\r%s %d/%d", label, done, total)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}
