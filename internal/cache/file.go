package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const entryExt = ".json"

// fileStore keeps one JSON document per key. Writes go to a temp file in the
// same directory and are renamed into place, so readers in other processes
// see either the old entry or the new one.
type fileStore struct {
	dir string
}

func (s *fileStore) load(key string) (Entry, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, errNotFound
		}
		return Entry{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return decodeEntry(data)
}

func (s *fileStore) save(e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, fileName(e.Key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path(e.Key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *fileStore) remove(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *fileStore) walk(fn func(key string, e Entry, size int64, err error)) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || filepath.Ext(name) != entryExt {
			continue
		}
		key := strings.TrimSuffix(name, entryExt)
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			// Removed by another process between ReadDir and ReadFile.
			continue
		}
		e, err := decodeEntry(data)
		fn(key, e, int64(len(data)), err)
	}
	return nil
}

func (s *fileStore) clear() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	removed := 0
	for _, de := range entries {
		name := de.Name()
		switch {
		case de.IsDir():
		case filepath.Ext(name) == entryExt:
			if err := os.Remove(filepath.Join(s.dir, name)); err == nil {
				removed++
			}
		case strings.HasSuffix(name, ".tmp"):
			// Leftovers from an interrupted write.
			os.Remove(filepath.Join(s.dir, name))
		}
	}
	return removed, nil
}

func (s *fileStore) close() error { return nil }

func (s *fileStore) path(key string) string {
	return filepath.Join(s.dir, fileName(key)+entryExt)
}

// fileName maps a key to a file name. Fingerprints are used as-is; any other
// key is hashed so it is always a safe path component.
func fileName(key string) string {
	if isFingerprint(key) {
		return key
	}
	return Fingerprint(key, "", "")
}

func isFingerprint(key string) bool {
	if len(key) != 64 {
		return false
	}
	_, err := hex.DecodeString(key)
	return err == nil
}

func decodeEntry(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if e.CreatedAt.IsZero() {
		return Entry{}, fmt.Errorf("%w: missing createdAt", ErrCorrupt)
	}
	return e, nil
}
