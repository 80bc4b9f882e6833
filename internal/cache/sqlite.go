package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteFile = "cache.db"

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	model TEXT NOT NULL DEFAULT '',
	response TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// sqliteStore keeps every entry in one SQLite database inside the cache
// directory. Concurrent processes rely on SQLite's own locking; the last
// INSERT OR REPLACE for a key wins.
type sqliteStore struct {
	db *sql.DB
}

func openSQLite(dir string) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", filepath.Join(dir, sqliteFile))
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure cache db: %w", err)
	}
	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) load(key string) (Entry, error) {
	var (
		e       = Entry{Key: key}
		created int64
	)
	err := s.db.QueryRow(
		`SELECT model, response, created_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&e.Model, &e.Response, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, errNotFound
		}
		return Entry{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	e.CreatedAt = time.Unix(0, created)
	return e, nil
}

func (s *sqliteStore) save(e Entry) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO cache_entries (key, model, response, created_at) VALUES (?, ?, ?, ?)`,
		e.Key, e.Model, e.Response, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *sqliteStore) remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

func (s *sqliteStore) walk(fn func(key string, e Entry, size int64, err error)) error {
	rows, err := s.db.Query(`SELECT key, model, response, created_at FROM cache_entries`)
	if err != nil {
		return fmt.Errorf("query cache db: %w", err)
	}
	defer rows.Close()

	var visited []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
		)
		if err := rows.Scan(&e.Key, &e.Model, &e.Response, &created); err != nil {
			return fmt.Errorf("scan cache db: %w", err)
		}
		e.CreatedAt = time.Unix(0, created)
		visited = append(visited, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("scan cache db: %w", err)
	}
	// fn may write to the database, which would deadlock on the single
	// connection while rows is open.
	rows.Close()
	for _, e := range visited {
		fn(e.Key, e, int64(len(e.Response)), nil)
	}
	return nil
}

func (s *sqliteStore) clear() (int, error) {
	res, err := s.db.Exec(`DELETE FROM cache_entries`)
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(n), nil
}

func (s *sqliteStore) close() error {
	return s.db.Close()
}
