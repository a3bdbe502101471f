package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const DefaultPath = "results.db"

// SQLiteStore keeps the results history in a single append-only table.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens the results database at path, creating the file and the results
// table when missing.
func Open(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	// A game writes one row at a time.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("prepare results db %q: %w", path, err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
