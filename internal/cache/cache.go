package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/maypok86/otter/v2"
)

// Backend names accepted by [Options].
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// DefaultTTL is the age at which entries go stale.
const DefaultTTL = 24 * time.Hour

var (
	// ErrUnavailable reports that the backing storage could not be read or written.
	ErrUnavailable = errors.New("cache unavailable")
	// ErrCorrupt reports a stored entry that could not be decoded.
	ErrCorrupt = errors.New("cache entry corrupt")

	errNotFound = errors.New("cache entry not found")
)

// Entry is a single cached response.
type Entry struct {
	Key       string    `json:"key"`
	Model     string    `json:"model,omitempty"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}

// Options configures a Cache.
type Options struct {
	Enabled bool
	Dir     string
	TTL     time.Duration
	Backend string
	// MemoSize bounds the in-process memo. Zero disables it.
	MemoSize int
	// IgnoreFile is the ignore list that must exclude Dir. It is checked on
	// every open and Dir is appended when missing. Empty disables the update.
	IgnoreFile string
	// NoCreate opens an existing cache only. A missing directory yields an
	// empty cache that stores nothing.
	NoCreate bool
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// Stats describes the cache contents.
type Stats struct {
	Dir        string `json:"dir"`
	Backend    string `json:"backend"`
	Entries    int    `json:"entries"`
	Expired    int    `json:"expired"`
	Corrupt    int    `json:"corrupt"`
	TotalBytes int64  `json:"totalBytes"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
}

// backend is the storage layer under a Cache.
type backend interface {
	load(key string) (Entry, error)
	save(e Entry) error
	remove(key string) error
	// walk visits every stored entry. err is non-nil for entries that
	// could not be decoded; key is always set.
	walk(fn func(key string, e Entry, size int64, err error)) error
	clear() (int, error)
	close() error
}

// Cache is a TTL-bounded response cache. Construct one per process run and
// pass it to the code that needs it.
type Cache struct {
	store   backend
	memo    *otter.Cache[string, Entry]
	ttl     time.Duration
	now     func() time.Time
	dir     string
	kind    string
	enabled bool

	hits   atomic.Int64
	misses atomic.Int64
}

// New opens the cache described by opts. When the storage cannot be opened
// the returned Cache is still usable and misses on every lookup; the error
// wraps ErrUnavailable so the caller can decide whether to report it.
func New(opts Options) (*Cache, error) {
	c := &Cache{
		ttl:     opts.TTL,
		now:     opts.Clock,
		dir:     opts.Dir,
		kind:    opts.Backend,
		enabled: opts.Enabled,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.kind == "" {
		c.kind = BackendFile
	}
	if !c.enabled {
		return c, nil
	}
	if c.dir == "" {
		return c, fmt.Errorf("%w: no cache directory configured", ErrUnavailable)
	}

	if opts.NoCreate {
		if _, err := os.Stat(c.dir); os.IsNotExist(err) {
			return c, nil
		}
	}
	if err := ensureDir(c.dir); err != nil {
		return c, fmt.Errorf("%w: creating cache directory: %v", ErrUnavailable, err)
	}
	if opts.IgnoreFile != "" {
		if err := addToIgnoreFile(opts.IgnoreFile, c.dir); err != nil {
			slog.Warn("could not add cache directory to ignore file", "file", opts.IgnoreFile, "error", err)
		}
	}

	switch c.kind {
	case BackendFile:
		c.store = &fileStore{dir: c.dir}
	case BackendSQLite:
		s, err := openSQLite(c.dir)
		if err != nil {
			return c, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		c.store = s
	default:
		return c, fmt.Errorf("%w: unknown cache backend %q", ErrUnavailable, c.kind)
	}

	if opts.MemoSize > 0 {
		c.memo = otter.Must(&otter.Options[string, Entry]{
			MaximumSize: opts.MemoSize,
		})
	}
	return c, nil
}

// Fingerprint derives the cache key for a request. Each field is length
// prefixed so that moving a separator between fields changes the key.
func Fingerprint(content, model, style string) string {
	h := sha256.New()
	for _, field := range []string{content, model, style} {
		fmt.Fprintf(h, "%d:%s", len(field), field)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the stored response for key if it is present and younger
// than the TTL.
func (c *Cache) Get(key string) (string, bool) {
	if !c.Available() {
		c.misses.Add(1)
		return "", false
	}

	if c.memo != nil {
		if e, ok := c.memo.GetIfPresent(key); ok {
			if c.fresh(e) {
				c.hits.Add(1)
				return e.Response, true
			}
			c.memo.Invalidate(key)
		}
	}

	e, err := c.store.load(key)
	switch {
	case err == nil:
	case errors.Is(err, errNotFound):
		c.misses.Add(1)
		return "", false
	case errors.Is(err, ErrCorrupt):
		slog.Debug("removing corrupt cache entry", "key", key, "error", err)
		_ = c.store.remove(key)
		c.misses.Add(1)
		return "", false
	default:
		slog.Warn("cache read failed", "key", key, "error", err)
		c.misses.Add(1)
		return "", false
	}

	if !c.fresh(e) {
		_ = c.store.remove(key)
		c.misses.Add(1)
		return "", false
	}
	if c.memo != nil {
		c.memo.Set(key, e)
	}
	c.hits.Add(1)
	return e.Response, true
}

// Put stores value under key, replacing any previous entry.
func (c *Cache) Put(key, value string) error {
	return c.put(Entry{Key: key, Response: value})
}

func (c *Cache) put(e Entry) error {
	if !c.enabled {
		return nil
	}
	if c.store == nil {
		return ErrUnavailable
	}
	e.CreatedAt = c.now()
	if err := c.store.save(e); err != nil {
		return err
	}
	if c.memo != nil {
		c.memo.Set(e.Key, e)
	}
	return nil
}

// GetOrNone looks up the response for a (content, model, style) request.
func (c *Cache) GetOrNone(content, model, style string) (string, bool) {
	return c.Get(Fingerprint(content, model, style))
}

// Store records text as the response for a (content, model, style) request.
// Failures are logged and otherwise ignored. An unavailable cache was already
// reported by New, so it is skipped silently.
func (c *Cache) Store(content, model, style, text string) {
	if !c.Available() {
		return
	}
	err := c.put(Entry{
		Key:      Fingerprint(content, model, style),
		Model:    model,
		Response: text,
	})
	if err != nil {
		slog.Warn("cache write failed, continuing without cache", "error", err)
	}
}

// ClearAll removes every entry and returns how many were removed.
func (c *Cache) ClearAll() (int, error) {
	if c.memo != nil {
		c.memo.InvalidateAll()
	}
	if !c.Available() {
		return 0, nil
	}
	return c.store.clear()
}

// ClearExpired removes stale and corrupt entries only.
func (c *Cache) ClearExpired() (int, error) {
	if !c.Available() {
		return 0, nil
	}
	var stale []string
	err := c.store.walk(func(key string, e Entry, _ int64, err error) {
		if err != nil || !c.fresh(e) {
			stale = append(stale, key)
		}
	})
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, key := range stale {
		if c.memo != nil {
			c.memo.Invalidate(key)
		}
		if err := c.store.remove(key); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats reports entry counts and the hit/miss counters for this process.
func (c *Cache) Stats() (Stats, error) {
	stats := Stats{
		Dir:     c.dir,
		Backend: c.kind,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
	if !c.Available() {
		return stats, nil
	}
	err := c.store.walk(func(_ string, e Entry, size int64, err error) {
		stats.Entries++
		stats.TotalBytes += size
		switch {
		case err != nil:
			stats.Corrupt++
		case !c.fresh(e):
			stats.Expired++
		}
	})
	return stats, err
}

// Usage returns this process's hit and miss counters without reading storage.
func (c *Cache) Usage() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close releases the storage backend.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.close()
}

// Enabled reports whether caching was requested.
func (c *Cache) Enabled() bool { return c.enabled }

// Available reports whether the cache is enabled and its storage opened.
func (c *Cache) Available() bool { return c.enabled && c.store != nil }

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) fresh(e Entry) bool {
	if c.ttl <= 0 {
		return true
	}
	return c.now().Sub(e.CreatedAt) < c.ttl
}

// ensureDir creates dir if needed.
func ensureDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
