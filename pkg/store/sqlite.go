// Package store persists built indexes to a SQLite database, keyed by a
// collection name, using modernc.org/sqlite (pure Go, no CGO).
package store

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/liliang-cn/hnswgo/pkg/hnsw"
)

var (
	// ErrStoreClosed is returned when an operation is attempted on a closed
	// store.
	ErrStoreClosed = fmt.Errorf("store: closed")
	// ErrCollectionNotFound is returned when a named collection has no
	// saved index.
	ErrCollectionNotFound = fmt.Errorf("store: collection not found")
)

// Config configures a Store.
type Config struct {
	Path   string
	Logger hnsw.Logger
}

// DefaultConfig returns sensible defaults for a SQLite file at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, Logger: hnsw.NopLogger()}
}

// Store persists gob-encoded index blobs to a SQLite database, one row per
// named collection.
type Store struct {
	db     *sql.DB
	config Config
	mu     sync.RWMutex
	closed bool
}

// Open opens (creating if necessary) the SQLite database at config.Path and
// ensures its schema exists.
func Open(ctx context.Context, config Config) (*Store, error) {
	if config.Logger == nil {
		config.Logger = hnsw.NopLogger()
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-2000", config.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(2 * time.Hour)

	s := &Store{db: db, config: config}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	config.Logger.Info("store opened", "path", config.Path)
	return s, nil
}

func (s *Store) createTables(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		build_id TEXT NOT NULL,
		point_count INTEGER NOT NULL,
		data BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Saveable is satisfied by *hnsw.Hnsw[P] and *hnsw.HnswMap[P, V].
type Saveable interface {
	Save(w io.Writer) error
}

// SaveIndex serializes index (an *hnsw.Hnsw[P] or *hnsw.HnswMap[P, V]) and
// upserts it under name, stamping a fresh build ID.
func SaveIndex(ctx context.Context, s *Store, name string, pointCount int, index Saveable) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrStoreClosed
	}

	var buf bytes.Buffer
	if err := index.Save(&buf); err != nil {
		return fmt.Errorf("store: encode index: %w", err)
	}

	buildID := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collections (name, build_id, point_count, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			build_id = excluded.build_id,
			point_count = excluded.point_count,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, name, buildID, pointCount, buf.Bytes())
	if err != nil {
		return fmt.Errorf("store: save collection %q: %w", name, err)
	}
	return nil
}

// LoadIndexBytes returns the raw gob blob saved for name, along with its
// build ID and point count, for the caller to decode with the matching
// concrete index type's Load method.
func LoadIndexBytes(ctx context.Context, s *Store, name string) (data []byte, buildID string, pointCount int, err error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, "", 0, ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx, `SELECT build_id, point_count, data FROM collections WHERE name = ?`, name)
	if err := row.Scan(&buildID, &pointCount, &data); err != nil {
		if err == sql.ErrNoRows {
			return nil, "", 0, ErrCollectionNotFound
		}
		return nil, "", 0, fmt.Errorf("store: load collection %q: %w", name, err)
	}
	return data, buildID, pointCount, nil
}

// DeleteCollection removes a saved index by name. It is not an error to
// delete a name that does not exist.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrStoreClosed
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("store: delete collection %q: %w", name, err)
	}
	return nil
}

// Collections lists the names of every saved collection.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM collections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("store: list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("store: scan collection name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
