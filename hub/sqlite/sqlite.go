// Package sqlite provides a SQLite-backed commentary history store, letting
// the surrounding layer keep the commentary log across process restarts.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vaibhavi8/autoplay/core"
	"github.com/vaibhavi8/autoplay/hub"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS commentary (
	seq       INTEGER PRIMARY KEY,
	text      TEXT NOT NULL,
	source    TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);`

// Store persists commentary entries in SQLite.
type Store struct {
	db *sql.DB
}

var _ hub.HistoryStore = (*Store)(nil)

// Open opens (or creates) the store at the given path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history db path is required")
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append implements hub.HistoryStore. The seq primary key makes a duplicate
// append fail without touching existing rows.
func (s *Store) Append(e core.CommentaryEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO commentary (seq, text, source, timestamp) VALUES (?, ?, ?, ?)`,
		e.Seq, e.Text, e.Source, e.Timestamp.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert commentary: %w", err)
	}
	return nil
}

// History implements hub.HistoryStore.
func (s *Store) History(limit int) ([]core.CommentaryEntry, error) {
	query := `SELECT seq, text, source, timestamp FROM commentary ORDER BY seq`
	var args []any
	if limit > 0 {
		query = `SELECT seq, text, source, timestamp FROM (
			SELECT seq, text, source, timestamp FROM commentary ORDER BY seq DESC LIMIT ?
		) ORDER BY seq`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query commentary: %w", err)
	}
	defer rows.Close()

	var out []core.CommentaryEntry
	for rows.Next() {
		var e core.CommentaryEntry
		var millis int64
		if err := rows.Scan(&e.Seq, &e.Text, &e.Source, &millis); err != nil {
			return nil, fmt.Errorf("scan commentary: %w", err)
		}
		e.Timestamp = time.UnixMilli(millis).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// LastSeq implements hub.HistoryStore.
func (s *Store) LastSeq() (uint64, error) {
	var last uint64
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM commentary`).Scan(&last); err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return last, nil
}
