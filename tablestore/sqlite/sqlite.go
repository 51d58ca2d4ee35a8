/*
Package sqlite provides a SQLite-backed implementation of tablestore.Store.

PURPOSE:
  Durable local persistence with the same table-of-text-cells shape as the
  spreadsheet. Tables are generic: one row of SQLite per spreadsheet row,
  cells encoded as a JSON array aligned with the stored header. The domain
  layer sees exactly what it would see from the hosted sheet.

KEY TABLES:
  sheet_headers: table name -> JSON header array
  sheet_rows:    (table name, seq) -> JSON cell array, seq preserves order

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/hr.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - tablestore/tablestore.go: Interface definition
  - tablestore/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cumulus-hr/cumulus/tablestore"
)

// Store implements tablestore.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sheet_headers (
		tbl    TEXT PRIMARY KEY,
		header TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sheet_rows (
		tbl  TEXT NOT NULL,
		seq  INTEGER NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (tbl, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) header(ctx context.Context, name string) ([]string, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT header FROM sheet_headers WHERE tbl = ?`, name).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, &tablestore.NotFoundError{Table: name}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
	}
	var header []string
	if err := json.Unmarshal([]byte(raw), &header); err != nil {
		return nil, fmt.Errorf("%w: corrupt header for %s: %v", tablestore.ErrUnavailable, name, err)
	}
	return header, nil
}

func (s *Store) ReadTable(ctx context.Context, name string) ([]tablestore.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	header, err := s.header(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM sheet_rows WHERE tbl = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
	}
	defer rows.Close()

	var recs []tablestore.Record
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return nil, fmt.Errorf("%w: corrupt row in %s: %v", tablestore.ErrUnavailable, name, err)
		}
		rec := make(tablestore.Record, len(header))
		for i, col := range header {
			if i < len(cells) {
				rec[col] = cells[i]
			}
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
	}
	if recs == nil {
		recs = []tablestore.Record{}
	}
	return recs, nil
}

func (s *Store) AppendRow(ctx context.Context, name string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.header(ctx, name); err != nil {
		return err
	}

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sheet_rows (tbl, seq, data)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM sheet_rows WHERE tbl = ?), ?)`,
		name, name, string(data))
	if err != nil {
		return fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) ReplaceTable(ctx context.Context, name string, header []string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
	}
	defer tx.Rollback()

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sheet_headers (tbl, header) VALUES (?, ?)
		ON CONFLICT(tbl) DO UPDATE SET header = excluded.header`,
		name, string(headerJSON)); err != nil {
		return fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE tbl = ?`, name); err != nil {
		return fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
	}

	for i, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (tbl, seq, data) VALUES (?, ?, ?)`,
			name, i+1, string(data)); err != nil {
			return fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
	}
	return nil
}

var _ tablestore.Store = (*Store)(nil)
