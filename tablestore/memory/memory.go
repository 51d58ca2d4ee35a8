// Package memory provides an in-memory tablestore.Store for tests and dev.
package memory

import (
	"context"
	"sync"

	"github.com/cumulus-hr/cumulus/tablestore"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu     sync.RWMutex
	tables map[string]*table

	// Fault injection for tests. See FailNext / ThrottleNext.
	nextErr error
}

type table struct {
	header []string
	rows   [][]string
}

func New() *Store {
	return &Store{tables: make(map[string]*table)}
}

// Seed installs a table with the given header and rows, replacing any
// existing content. Intended for test fixtures.
func (s *Store) Seed(name string, header []string, rows ...[]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	s.tables[name] = &table{header: append([]string(nil), header...), rows: copied}
}

// FailNext makes the next operation return err, then clears the fault.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextErr = err
}

// ThrottleNext makes the next operation fail with ErrThrottled.
func (s *Store) ThrottleNext() { s.FailNext(tablestore.ErrThrottled) }

func (s *Store) takeFault() error {
	err := s.nextErr
	s.nextErr = nil
	return err
}

func (s *Store) ReadTable(ctx context.Context, name string) ([]tablestore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFault(); err != nil {
		return nil, err
	}

	t, ok := s.tables[name]
	if !ok {
		return nil, &tablestore.NotFoundError{Table: name}
	}

	recs := make([]tablestore.Record, 0, len(t.rows))
	for _, row := range t.rows {
		rec := make(tablestore.Record, len(t.header))
		for i, col := range t.header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *Store) AppendRow(ctx context.Context, name string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFault(); err != nil {
		return err
	}

	t, ok := s.tables[name]
	if !ok {
		return &tablestore.NotFoundError{Table: name}
	}
	t.rows = append(t.rows, append([]string(nil), values...))
	return nil
}

func (s *Store) ReplaceTable(ctx context.Context, name string, header []string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFault(); err != nil {
		return err
	}

	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	s.tables[name] = &table{header: append([]string(nil), header...), rows: copied}
	return nil
}

var _ tablestore.Store = (*Store)(nil)
