// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes raw Scopus API responses in a SQLite file, one file
// per cache name. Entries are keyed by request Signature, are never expired,
// and are immutable once written: only an explicit Clear removes them.
//
// The cache assumes a single process and a single writer.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/pdiddy/scopuscite/internal/observability"
	"github.com/pdiddy/scopuscite/pkg/types"
)

const (
	// DefaultDir and DefaultName are used when CacheConfig leaves them empty.
	DefaultDir  = "local_cache"
	DefaultName = "cache"

	fileExt = ".db"
)

// FetchFunc performs the request behind a signature and returns its raw payload.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Stats reports cache contents and the lookups made through this handle.
type Stats struct {
	Path    string `json:"path" yaml:"path"`
	Entries int    `json:"entries" yaml:"entries"`
	Hits    int64  `json:"hits" yaml:"hits"`
	Misses  int64  `json:"misses" yaml:"misses"`
}

// Cache is a lazily opened handle on one cache file.
type Cache struct {
	path    string
	db      *sql.DB
	log     zerolog.Logger
	metrics *observability.Metrics

	hits   int64
	misses int64
}

// New returns a handle on <Dir>/<Name>.db. No file is touched until the
// first operation. metrics may be nil.
func New(cfg types.CacheConfig, log zerolog.Logger, metrics *observability.Metrics) (*Cache, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}
	name := cfg.Name
	if name == "" {
		name = DefaultName
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid cache name %q", name)
	}

	return &Cache{
		path:    filepath.Join(dir, name+fileExt),
		log:     log.With().Str("cache", name).Logger(),
		metrics: metrics,
	}, nil
}

// Path returns the cache file location.
func (c *Cache) Path() string { return c.path }

// Close releases the database handle if it was opened.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	return err
}

func (c *Cache) open() error {
	if c.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", c.path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("opening cache %s: %w", c.path, err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS entries (
		signature TEXT PRIMARY KEY,
		operation TEXT NOT NULL,
		payload BLOB NOT NULL,
		created_at TEXT NOT NULL
	)`)
	if err == nil {
		_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_entries_operation ON entries(operation)`)
	}
	if err != nil {
		db.Close()
		return fmt.Errorf("creating cache schema: %w", err)
	}

	c.db = db
	c.log.Debug().Str("path", c.path).Msg("cache opened")
	return nil
}

// Get returns the payload stored for sig and whether one exists.
func (c *Cache) Get(ctx context.Context, sig Signature) ([]byte, bool, error) {
	if err := c.open(); err != nil {
		return nil, false, err
	}

	var payload []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT payload FROM entries WHERE signature = ?`, sig.String(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}
	return payload, true, nil
}

// Put stores payload under sig unless an entry already exists, in which
// case the stored payload is kept. The write is committed before Put returns.
func (c *Cache) Put(ctx context.Context, sig Signature, payload []byte) error {
	if err := c.open(); err != nil {
		return err
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO entries (signature, operation, payload, created_at) VALUES (?, ?, ?, ?)`,
		sig.String(), sig.Operation, payload, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Lookup is Get with hit and miss accounting. Batched callers use it to
// find which signatures still need a fetch.
func (c *Cache) Lookup(ctx context.Context, sig Signature) ([]byte, bool, error) {
	payload, ok, err := c.Get(ctx, sig)
	if err != nil {
		return nil, false, err
	}
	if ok {
		c.hits++
		c.metrics.RecordCacheHit()
		c.log.Trace().Str("signature", sig.String()).Msg("cache hit")
		return payload, true, nil
	}

	c.misses++
	c.metrics.RecordCacheMiss()
	c.log.Debug().Str("signature", sig.String()).Msg("cache miss")
	return nil, false, nil
}

// GetOrFetch returns the cached payload for sig, calling fetch only when no
// entry exists. A failed fetch stores nothing.
func (c *Cache) GetOrFetch(ctx context.Context, sig Signature, fetch FetchFunc) ([]byte, error) {
	payload, ok, err := c.Lookup(ctx, sig)
	if err != nil || ok {
		return payload, err
	}

	payload, err = fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Put(ctx, sig, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Len returns the number of stored entries.
func (c *Cache) Len(ctx context.Context) (int, error) {
	if err := c.open(); err != nil {
		return 0, err
	}
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT count(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}

// Stats returns the entry count and the hits and misses seen by this handle.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	n, err := c.Len(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Path: c.path, Entries: n, Hits: c.hits, Misses: c.misses}, nil
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	return c.delete(ctx, `DELETE FROM entries`)
}

// ClearOperation removes the entries recorded for one logical operation.
func (c *Cache) ClearOperation(ctx context.Context, operation string) (int64, error) {
	return c.delete(ctx, `DELETE FROM entries WHERE operation = ?`, operation)
}

// Operations returns the entry count per operation.
func (c *Cache) Operations(ctx context.Context) (map[string]int, error) {
	if err := c.open(); err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, `SELECT operation, count(*) FROM entries GROUP BY operation`)
	if err != nil {
		return nil, fmt.Errorf("counting cache operations: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var op string
		var n int
		if err := rows.Scan(&op, &n); err != nil {
			return nil, fmt.Errorf("scanning cache operations: %w", err)
		}
		counts[op] = n
	}
	return counts, rows.Err()
}

func (c *Cache) delete(ctx context.Context, query string, args ...any) (int64, error) {
	if err := c.open(); err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	n, _ := res.RowsAffected()
	c.log.Info().Int64("removed", n).Msg("cache cleared")
	return n, nil
}
