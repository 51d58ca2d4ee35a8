/*
Package workbook implements tablestore.Store on a local .xlsx workbook.

PURPOSE:
  One worksheet per logical table, header in row 1, every cell text. This is
  the same shape the cloud spreadsheet has, so a workbook exported from it
  drops in directly. Useful for on-prem installs and offline development.

CONSISTENCY:
  Each operation opens the file, applies the change, and saves. A process
  crash mid-save can corrupt the file the way any spreadsheet app can;
  operators should keep the workbook on a snapshotting filesystem or accept
  the risk, exactly as with the hosted sheet.
*/
package workbook

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/cumulus-hr/cumulus/tablestore"
)

type Store struct {
	mu   sync.Mutex
	path string
}

// New opens or creates the workbook at path.
func New(path string) (*Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f := excelize.NewFile()
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, err
		}
	}
	return &Store{path: path}, nil
}

func (s *Store) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", tablestore.ErrUnavailable, err)
	}
	return f, nil
}

func (s *Store) sheetIndex(f *excelize.File, name string) (int, error) {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return -1, fmt.Errorf("%w: sheet lookup: %v", tablestore.ErrUnavailable, err)
	}
	return idx, nil
}

func (s *Store) ReadTable(ctx context.Context, name string) ([]tablestore.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	idx, err := s.sheetIndex(f, name)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, &tablestore.NotFoundError{Table: name}
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", tablestore.ErrUnavailable, name, err)
	}
	if len(rows) == 0 {
		return []tablestore.Record{}, nil
	}

	header := rows[0]
	recs := make([]tablestore.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(tablestore.Record, len(header))
		for i, col := range header {
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

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	idx, err := s.sheetIndex(f, name)
	if err != nil {
		return err
	}
	if idx < 0 {
		return &tablestore.NotFoundError{Table: name}
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", tablestore.ErrUnavailable, name, err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
	}
	if err := f.SetSheetRow(name, cell, &values); err != nil {
		return fmt.Errorf("%w: append to %s: %v", tablestore.ErrUnavailable, name, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: save workbook: %v", tablestore.ErrUnavailable, err)
	}
	return nil
}

func (s *Store) ReplaceTable(ctx context.Context, name string, header []string, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	idx, err := s.sheetIndex(f, name)
	if err != nil {
		return err
	}
	if idx >= 0 {
		if err := f.DeleteSheet(name); err != nil {
			return fmt.Errorf("%w: clear %s: %v", tablestore.ErrUnavailable, name, err)
		}
	}
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("%w: create %s: %v", tablestore.ErrUnavailable, name, err)
	}

	all := make([][]string, 0, len(rows)+1)
	all = append(all, header)
	all = append(all, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("%w: %v", tablestore.ErrUnavailable, err)
		}
		r := row
		if err := f.SetSheetRow(name, cell, &r); err != nil {
			return fmt.Errorf("%w: write %s: %v", tablestore.ErrUnavailable, name, err)
		}
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: save workbook: %v", tablestore.ErrUnavailable, err)
	}
	return nil
}

var _ tablestore.Store = (*Store)(nil)
