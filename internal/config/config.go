package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the logchange configuration.
type Config struct {
	Provider   string          `yaml:"provider"`
	Model      string          `yaml:"model"`
	Format     string          `yaml:"format"`
	Output     string          `yaml:"output"`
	MaxCommits int             `yaml:"maxCommits"`
	MaxTokens  int             `yaml:"maxTokens"`
	Style      string          `yaml:"style"`
	MaxLength  int             `yaml:"maxLength"`
	Cache      CacheConfig     `yaml:"cache"`
	RateLimit  RateLimitConfig `yaml:"rateLimit"`
	Privacy    PrivacyConfig   `yaml:"privacy"`
}

// CacheConfig controls response caching.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Dir      string        `yaml:"dir"`
	TTL      time.Duration `yaml:"ttl"`
	Backend  string        `yaml:"backend"`
	MemoSize int           `yaml:"memoSize"`
}

// RateLimitConfig bounds outbound completion calls.
type RateLimitConfig struct {
	MaxCalls int           `yaml:"maxCalls"`
	Window   time.Duration `yaml:"window"`
}

// PrivacyConfig controls secret redaction before content leaves the machine.
type PrivacyConfig struct {
	RedactSecrets bool     `yaml:"redactSecrets"`
	RedactPaths   []string `yaml:"redactPaths,omitempty"`
}

// Recognized values.
var (
	Providers     = []string{"openai", "anthropic", "gemini", "ollama"}
	Formats       = []string{"markdown", "json", "csv"}
	Styles        = []string{"conventional", "concise", "detailed"}
	CacheBackends = []string{"file", "sqlite"}
)

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:   "openai",
		Model:      "gpt-4",
		Format:     "markdown",
		Output:     "changelog.md",
		MaxCommits: 50,
		MaxTokens:  300,
		Style:      "conventional",
		MaxLength:  72,
		Cache: CacheConfig{
			Enabled:  true,
			Dir:      ".logchange_cache",
			TTL:      24 * time.Hour,
			Backend:  "file",
			MemoSize: 256,
		},
		RateLimit: RateLimitConfig{
			MaxCalls: 60,
			Window:   time.Minute,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   []string{"**/.env", "**/*secrets*"},
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for logchange.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "logchange"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "logchange"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "logchange"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "logchange"), nil
	default:
		return filepath.Join(home, ".config", "logchange"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile reads the config file at path on top of base. A missing file
// leaves base untouched. ${VAR} references in the file are expanded.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadEnvFiles loads variables from the given .env files. Files that do not
// exist are skipped; variables already set in the environment win.
func LoadEnvFiles(files ...string) []string {
	var loaded []string
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	return loaded
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only values the user set should be present).
func Load(overrides map[string]string) (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	cfg, err := LoadFile(path, Default())
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	for key, value := range overrides {
		if err := SetField(&cfg, key, value); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envFields maps environment variables to config keys, applied in order.
var envFields = []struct{ env, key string }{
	{"LOGCHANGE_PROVIDER", "provider"},
	{"OPENAI_MODEL", "model"},
	{"LOGCHANGE_MODEL", "model"},
	{"LOGCHANGE_FORMAT", "format"},
	{"LOGCHANGE_MAX_COMMITS", "maxCommits"},
	{"LOGCHANGE_CACHE_DIR", "cache.dir"},
	{"LOGCHANGE_CACHE_TTL", "cache.ttl"},
	{"LOGCHANGE_CACHE_BACKEND", "cache.backend"},
	{"LOGCHANGE_RATE_LIMIT", "rateLimit.maxCalls"},
}

func mergeEnv(cfg *Config) error {
	for _, f := range envFields {
		v := os.Getenv(f.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, f.key, v); err != nil {
			return fmt.Errorf("%s: %w", f.env, err)
		}
	}
	if v := os.Getenv("LOGCHANGE_NO_CACHE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			cfg.Cache.Enabled = false
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "output":
		cfg.Output = value
	case "style":
		cfg.Style = value
	case "maxCommits":
		return setInt(&cfg.MaxCommits, key, value)
	case "maxTokens":
		return setInt(&cfg.MaxTokens, key, value)
	case "maxLength":
		return setInt(&cfg.MaxLength, key, value)
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be true or false: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.ttl":
		return setDuration(&cfg.Cache.TTL, key, value)
	case "cache.backend":
		cfg.Cache.Backend = value
	case "cache.memoSize":
		return setInt(&cfg.Cache.MemoSize, key, value)
	case "rateLimit.maxCalls":
		return setInt(&cfg.RateLimit.MaxCalls, key, value)
	case "rateLimit.window":
		return setDuration(&cfg.RateLimit.Window, key, value)
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be true or false: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

// setDuration accepts Go durations ("24h") or a bare number of seconds.
func setDuration(dst *time.Duration, key, value string) error {
	if n, err := strconv.Atoi(value); err == nil {
		*dst = time.Duration(n) * time.Second
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s must be a duration like 24h or a number of seconds: %w", key, err)
	}
	*dst = d
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if !contains(Providers, c.Provider) {
		errs = append(errs, fmt.Errorf("unknown provider %q (want one of %v)", c.Provider, Providers))
	}
	if c.Model == "" {
		errs = append(errs, errors.New("model must not be empty"))
	}
	if !contains(Formats, c.Format) {
		errs = append(errs, fmt.Errorf("unknown format %q (want one of %v)", c.Format, Formats))
	}
	if !contains(Styles, c.Style) {
		errs = append(errs, fmt.Errorf("unknown style %q (want one of %v)", c.Style, Styles))
	}
	if c.MaxCommits <= 0 {
		errs = append(errs, fmt.Errorf("maxCommits must be positive, got %d", c.MaxCommits))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("maxTokens must be positive, got %d", c.MaxTokens))
	}
	if c.MaxLength <= 0 {
		errs = append(errs, fmt.Errorf("maxLength must be positive, got %d", c.MaxLength))
	}
	if !contains(CacheBackends, c.Cache.Backend) {
		errs = append(errs, fmt.Errorf("unknown cache backend %q (want one of %v)", c.Cache.Backend, CacheBackends))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL))
	}
	if c.RateLimit.MaxCalls > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("rateLimit.window must be positive, got %s", c.RateLimit.Window))
	}
	return errors.Join(errs...)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
