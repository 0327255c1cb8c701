// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps the append-only log of completed generations for
// one session. The log lives in an in-memory SQLite database and is gone
// when the process exits.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/explainer/pkg/types"
)

// Log is an append-only list of HistoryEntry records. Entries are never
// updated or deleted.
type Log struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates an empty in-memory log.
func Open() (*Log, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	l := &Log{db: db, now: time.Now}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database.
func (l *Log) Close() error {
	return l.db.Close()
}

func (l *Log) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			output TEXT NOT NULL,
			created_at TEXT NOT NULL,
			source TEXT NOT NULL,
			prompt TEXT NOT NULL
		)`,
		`CREATE TRIGGER IF NOT EXISTS entries_no_update BEFORE UPDATE ON entries BEGIN
			SELECT RAISE(ABORT, 'history entries are immutable');
		END`,
		`CREATE TRIGGER IF NOT EXISTS entries_no_delete BEFORE DELETE ON entries BEGIN
			SELECT RAISE(ABORT, 'history entries are immutable');
		END`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Append records a generation. ID and CreatedAt are assigned by the log;
// the stored entry is returned.
func (l *Log) Append(ctx context.Context, output, prompt string, source types.ChainRef) (types.HistoryEntry, error) {
	created := l.now().UTC()
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO entries (output, created_at, source, prompt) VALUES (?, ?, ?, ?)`,
		output, created.Format(time.RFC3339Nano), source.Parent, prompt,
	)
	if err != nil {
		return types.HistoryEntry{}, fmt.Errorf("inserting history entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.HistoryEntry{}, fmt.Errorf("reading entry id: %w", err)
	}
	return types.HistoryEntry{
		ID:        id,
		Output:    output,
		CreatedAt: created,
		Source:    source,
		Prompt:    prompt,
	}, nil
}

// List returns every entry, oldest first.
func (l *Log) List(ctx context.Context) ([]types.HistoryEntry, error) {
	return l.query(ctx, `SELECT id, output, created_at, source, prompt FROM entries ORDER BY id`)
}

// Search returns entries whose output or prompt contains q, oldest first.
func (l *Log) Search(ctx context.Context, q string) ([]types.HistoryEntry, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return l.List(ctx)
	}
	pattern := "%" + escapeLike(q) + "%"
	return l.query(ctx,
		`SELECT id, output, created_at, source, prompt FROM entries
		 WHERE output LIKE ? ESCAPE '\' OR prompt LIKE ? ESCAPE '\'
		 ORDER BY id`,
		pattern, pattern,
	)
}

// Count returns the number of entries.
func (l *Log) Count(ctx context.Context) (int, error) {
	var n int
	if err := l.db.QueryRowContext(ctx, `SELECT count(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting history entries: %w", err)
	}
	return n, nil
}

func (l *Log) query(ctx context.Context, query string, args ...any) ([]types.HistoryEntry, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := []types.HistoryEntry{}
	for rows.Next() {
		var (
			e       types.HistoryEntry
			created string
			source  string
		)
		if err := rows.Scan(&e.ID, &e.Output, &created, &source, &e.Prompt); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at of entry %d: %w", e.ID, err)
		}
		e.Source = types.ChainRef{Parent: source}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
