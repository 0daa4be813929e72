package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"eventplanner/internal/embedcache"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS embeddings (
	key        TEXT PRIMARY KEY,
	vector     BLOB NOT NULL,
	created_at TEXT NOT NULL
)`

// Store implements embedcache.Store with SQLite.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path.
// Creates the parent directory if it does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create embeddings table: %w", err)
	}
	return &Store{db: db}, nil
}

var _ embedcache.Store = (*Store)(nil)

// Get returns the cached vector for key.
func (s *Store) Get(ctx context.Context, key string) ([]float64, bool, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT vector FROM embeddings WHERE key = ?", key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read embedding: %w", err)
	}
	vec, err := embedcache.Decode(blob)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Put stores vec under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, vec []float64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO embeddings(key, vector, created_at) VALUES(?, ?, ?)",
		key, embedcache.Encode(vec), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write embedding: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
