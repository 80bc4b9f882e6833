package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// addToIgnoreFile appends dir to the ignore list at ignorePath unless an
// equivalent line is already there. A missing ignore list is created.
// Directories outside the ignore list's tree are left alone.
func addToIgnoreFile(ignorePath, dir string) error {
	line, ok := ignoreLine(ignorePath, dir)
	if !ok {
		return nil
	}

	existing, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading ignore file: %w", err)
	}

	name := strings.TrimSuffix(line, "/")
	for _, l := range strings.Split(string(existing), "\n") {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "/")
		if strings.TrimSuffix(l, "/") == name {
			return nil
		}
	}

	var b strings.Builder
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteString("\n")
	}
	b.WriteString(line)
	b.WriteString("\n")

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening ignore file: %w", err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		return fmt.Errorf("writing ignore file: %w", err)
	}
	return f.Close()
}

// ignoreLine returns the ignore pattern for dir relative to the directory
// holding the ignore file, e.g. ".logchange_cache/".
func ignoreLine(ignorePath, dir string) (string, bool) {
	base, err := filepath.Abs(filepath.Dir(ignorePath))
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel) + "/", true
}
