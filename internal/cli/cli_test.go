package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/logchange/internal/cache"
	"github.com/dshills/logchange/internal/config"
	"github.com/dshills/logchange/internal/providers"
)

// resetFlags resets all package-level flag variables to their defaults.
func resetFlags() {
	flagRepo = "."
	flagProvider = ""
	flagModel = ""
	flagNoCache = false
	flagNoRedact = false
	flagRateLimit = 0
	flagCacheDir = ""
	flagMaxCommits = 0
	flagOutput = ""
	flagFormat = ""
	flagMaxTokens = 0
	flagStats = false
	flagCommit = ""
	flagStaged = false
	flagStyle = ""
	flagMaxLength = 0
	flagExpQuick = false
	flagExpModels = ""
	flagExpCustom = ""
	flagExpMaxCommits = 10
	flagExpiredOnly = false
	flagVerbose = false
	exitCode = ExitSuccess
}

// isolate points config lookup at an empty directory and clears env
// overrides that would leak in from the developer's shell.
func isolate(t *testing.T) string {
	t.Helper()
	resetFlags()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{
		"LOGCHANGE_PROVIDER", "LOGCHANGE_MODEL", "OPENAI_MODEL", "LOGCHANGE_FORMAT",
		"LOGCHANGE_MAX_COMMITS", "LOGCHANGE_CACHE_DIR", "LOGCHANGE_CACHE_TTL",
		"LOGCHANGE_CACHE_BACKEND", "LOGCHANGE_RATE_LIMIT", "LOGCHANGE_NO_CACHE",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// --- splitComma tests ---

func TestSplitComma(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", nil},
		{"single value", "foo", []string{"foo"}},
		{"multiple values", "a,b,c", []string{"a", "b", "c"}},
		{"whitespace trimmed", " a , b , c ", []string{"a", "b", "c"}},
		{"empty parts skipped", "a,,b", []string{"a", "b"}},
		{"all empty", ",,,", nil},
		{"trailing comma", "gpt-4,gpt-3.5-turbo,", []string{"gpt-4", "gpt-3.5-turbo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitComma(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitComma(%q) = %v (len %d), want %v (len %d)",
					tt.input, got, len(got), tt.want, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitComma(%q)[%d] = %q, want %q",
						tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagProvider = "anthropic"
	flagModel = "claude-sonnet-4-5"
	flagNoCache = true
	flagNoRedact = true
	flagRateLimit = 10
	flagCacheDir = "/tmp/c"
	flagMaxCommits = 20

	m := buildOverrides()

	expected := map[string]string{
		"provider":              "anthropic",
		"model":                 "claude-sonnet-4-5",
		"cache.enabled":         "false",
		"privacy.redactSecrets": "false",
		"rateLimit.maxCalls":    "10",
		"cache.dir":             "/tmp/c",
		"maxCommits":            "20",
	}
	if len(m) != len(expected) {
		t.Fatalf("buildOverrides() returned %d entries, want %d", len(m), len(expected))
	}
	for k, v := range expected {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, m[k], v)
		}
	}

	// Every override must be a key config accepts.
	cfg := config.Default()
	for k, v := range m {
		if err := config.SetField(&cfg, k, v); err != nil {
			t.Errorf("SetField(%q) error: %v", k, err)
		}
	}
}

// --- session helpers ---

func TestCacheOptions(t *testing.T) {
	cfg := config.Default()

	opts := cacheOptions(cfg, "/repo")
	if opts.Dir != filepath.Join("/repo", ".logchange_cache") {
		t.Errorf("Dir = %q", opts.Dir)
	}
	if opts.IgnoreFile != filepath.Join("/repo", ".gitignore") {
		t.Errorf("IgnoreFile = %q", opts.IgnoreFile)
	}
	if opts.TTL != 24*time.Hour || !opts.Enabled || opts.Backend != "file" {
		t.Errorf("opts = %+v", opts)
	}

	cfg.Cache.Dir = "/abs/cache"
	if opts := cacheOptions(cfg, "/repo"); opts.Dir != "/abs/cache" {
		t.Errorf("absolute Dir rewritten to %q", opts.Dir)
	}

	cfg.Cache.Dir = "rel"
	if opts := cacheOptions(cfg, ""); opts.Dir != "rel" || opts.IgnoreFile != "" {
		t.Errorf("no root: %+v", opts)
	}
}

func TestModelFor(t *testing.T) {
	cfg := config.Default()
	if got := modelFor(cfg); got != "gpt-4" {
		t.Errorf("openai default = %q", got)
	}
	cfg.Provider = "anthropic"
	if got := modelFor(cfg); got != providers.DefaultModels["anthropic"] {
		t.Errorf("anthropic default = %q", got)
	}
	cfg.Model = "claude-haiku-4-5"
	if got := modelFor(cfg); got != "claude-haiku-4-5" {
		t.Errorf("explicit model = %q", got)
	}
}

func TestExperimentConfigs(t *testing.T) {
	resetFlags()
	cfgs, err := experimentConfigs()
	if err != nil || len(cfgs) != 2 {
		t.Fatalf("defaults = %v, %v", cfgs, err)
	}

	flagExpModels = "a, b ,c"
	cfgs, _ = experimentConfigs()
	if len(cfgs) != 3 || cfgs[1].Model != "b" {
		t.Errorf("models = %+v", cfgs)
	}

	flagExpCustom = `{"model": "m"}`
	cfgs, _ = experimentConfigs()
	if len(cfgs) != 1 || cfgs[0].Name != "Custom" {
		t.Errorf("custom = %+v", cfgs)
	}

	flagExpQuick = true
	cfgs, _ = experimentConfigs()
	if len(cfgs) != 1 || cfgs[0].Name != "Quick Test" {
		t.Errorf("quick = %+v", cfgs)
	}

	resetFlags()
	flagExpModels = " , "
	if _, err := experimentConfigs(); err == nil {
		t.Error("expected error for empty model list")
	}
}

func TestFail(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, authErr := providers.New("openai", "gpt-4")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"runtime", errors.New("boom"), ExitRuntimeError},
		{"auth", authErr, ExitAuthError},
		{"wrapped auth", errors.Join(errors.New("ctx"), authErr), ExitAuthError},
		{"cancelled", context.Canceled, ExitInterrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exitCode = ExitSuccess
			fail(tt.err)
			if exitCode != tt.want {
				t.Errorf("exitCode = %d, want %d", exitCode, tt.want)
			}
		})
	}
	exitCode = ExitSuccess
}

// --- version and models ---

func TestVersionCmd_Execute(t *testing.T) {
	isolate(t)
	if err := execute(t, "version"); err != nil {
		t.Errorf("version command returned error: %v", err)
	}
}

func TestModelsListCmd_Execute(t *testing.T) {
	isolate(t)
	if err := execute(t, "models", "list"); err != nil {
		t.Errorf("models list command returned error: %v", err)
	}
}

func TestKnownModels_AllProviders(t *testing.T) {
	want := map[string]bool{}
	for _, p := range config.Providers {
		want[p] = false
	}
	for _, info := range knownModels {
		if _, ok := want[info.Provider]; ok {
			want[info.Provider] = true
		}
		if len(info.Models) == 0 {
			t.Errorf("provider %s has no models", info.Provider)
		}
	}
	for provider, found := range want {
		if !found {
			t.Errorf("expected provider %q not found in knownModels", provider)
		}
	}
}

func TestModelsDoctor_MissingKey(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "")
	if err := execute(t, "models", "doctor", "--provider", "openai"); err != nil {
		t.Fatalf("models doctor returned error: %v", err)
	}
	if exitCode != ExitAuthError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitAuthError)
	}
}

// --- config command tests ---

func readConfigFile(t *testing.T, dir string) config.Config {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "logchange", "config.yaml"))
	if err != nil {
		t.Fatalf("cannot read config file: %v", err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("config file is not valid YAML: %v", err)
	}
	return cfg
}

func TestConfigInit_CreatesFile(t *testing.T) {
	dir := isolate(t)
	if err := execute(t, "config", "init"); err != nil {
		t.Fatalf("config init returned error: %v", err)
	}
	cfg := readConfigFile(t, dir)
	if cfg.Provider != "openai" || cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("config = %+v", cfg)
	}
}

func TestConfigInit_AlreadyExists(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "logchange")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("provider: anthropic\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := execute(t, "config", "init"); err != nil {
		t.Fatalf("config init with existing file returned error: %v", err)
	}
	if cfg := readConfigFile(t, dir); cfg.Provider != "anthropic" {
		t.Errorf("config init overwrote existing file: provider = %q", cfg.Provider)
	}
}

func TestConfigSet_UpdatesFile(t *testing.T) {
	dir := isolate(t)
	if err := execute(t, "config", "set", "cache.ttl", "3600"); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}
	if err := execute(t, "config", "set", "provider", "gemini"); err != nil {
		t.Fatalf("config set returned error: %v", err)
	}
	cfg := readConfigFile(t, dir)
	if cfg.Cache.TTL != time.Hour || cfg.Provider != "gemini" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestConfigSet_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown key", []string{"config", "set", "unknownKey", "value"}},
		{"invalid value", []string{"config", "set", "provider", "nope"}},
		{"missing args", []string{"config", "set", "provider"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			if err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigShow_Execute(t *testing.T) {
	isolate(t)
	if err := execute(t, "config", "show"); err != nil {
		t.Errorf("config show returned error: %v", err)
	}
}

// --- cache command tests ---

func TestCacheShow_Execute(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	if err := execute(t, "cache", "show", "--repo", dir, "--cache-dir", dir); err != nil {
		t.Errorf("cache show returned error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d", exitCode)
	}
}

func TestCacheClear_Execute(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	now := time.Now()
	old, err := cache.New(cache.Options{Enabled: true, Dir: dir, TTL: time.Hour, Clock: func() time.Time { return now.Add(-2 * time.Hour) }})
	if err != nil {
		t.Fatal(err)
	}
	old.Store("stale", "gpt-4", "s", "x")
	old.Close()
	fresh, err := cache.New(cache.Options{Enabled: true, Dir: dir, TTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	fresh.Store("fresh", "gpt-4", "s", "y")
	fresh.Close()

	t.Setenv("LOGCHANGE_CACHE_TTL", "1h")
	if err := execute(t, "cache", "clear", "--expired", "--repo", dir, "--cache-dir", dir); err != nil {
		t.Fatalf("cache clear --expired returned error: %v", err)
	}
	if n := countJSON(t, dir); n != 1 {
		t.Errorf("entries after clear --expired = %d, want 1", n)
	}

	resetFlags()
	if err := execute(t, "cache", "clear", "--repo", dir, "--cache-dir", dir); err != nil {
		t.Fatalf("cache clear returned error: %v", err)
	}
	if n := countJSON(t, dir); n != 0 {
		t.Errorf("entries after clear = %d, want 0", n)
	}
}

func countJSON(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cannot read cache dir: %v", err)
	}
	n := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".json") {
			n++
		}
	}
	return n
}

// --- command tree ---

func TestRootCmd_HasSubcommands(t *testing.T) {
	want := []string{"changelog", "commit-msg", "compare", "experiment", "config", "models", "cache", "hook", "version"}
	have := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestCommitMsg_ConflictingFlags(t *testing.T) {
	isolate(t)
	if err := execute(t, "commit-msg", "--commit", "HEAD", "--staged"); err == nil {
		t.Error("expected error for --commit with --staged")
	}
}

func TestChangelog_BadFormat(t *testing.T) {
	isolate(t)
	if err := execute(t, "changelog", "--format", "xml"); err == nil {
		t.Error("expected config validation error")
	}
}

func TestChangelog_NotARepo(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	if err := execute(t, "changelog", "--repo", t.TempDir()); err != nil {
		t.Fatalf("changelog returned error: %v", err)
	}
	if exitCode != ExitRuntimeError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitRuntimeError)
	}
}

func TestExitCodes(t *testing.T) {
	codes := map[string]int{
		"success":     ExitSuccess,
		"runtime":     ExitRuntimeError,
		"usage":       ExitUsageError,
		"auth":        ExitAuthError,
		"interrupted": ExitInterrupted,
	}
	want := map[string]int{"success": 0, "runtime": 1, "usage": 2, "auth": 3, "interrupted": 130}
	for k, v := range want {
		if codes[k] != v {
			t.Errorf("%s exit code = %d, want %d", k, codes[k], v)
		}
	}
}

func TestVersionConstant(t *testing.T) {
	if version == "" {
		t.Error("version constant is empty")
	}
}
