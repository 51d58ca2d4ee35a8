/*
Package tablestore defines the contract between the HR domain logic and the
remote spreadsheet that backs it.

PURPOSE:
  The production deployment keeps all company data in a cloud spreadsheet:
  one named worksheet per logical table, every cell stored as text. This
  package abstracts that into three operations so the accounting logic never
  touches a wire format:

    ReadTable:    whole-table read, ordered rows
    AppendRow:    append-only event logging (attendance, leaves, overtime)
    ReplaceTable: full destructive overwrite (the only update primitive)

WHY WHOLE-TABLE OVERWRITE?
  Spreadsheet APIs have no row-level update that survives concurrent
  re-ordering. Every mutation is therefore read -> transform in memory ->
  rewrite. Two concurrent writers can race and lose an update
  (last-writer-wins). This is an accepted limitation for a low-concurrency
  internal tool; a future implementation can swap in conditional writes
  behind this same interface.

IMPLEMENTATIONS:
  - tablestore/memory:   in-memory, for tests and dev (supports fault injection)
  - tablestore/workbook: local .xlsx workbook via excelize
  - tablestore/sqlite:   durable generic row store

SEE ALSO:
  - schema.go: schema-by-convention with default fill
  - errors.go: the NotFound/Throttled/Unavailable taxonomy
*/
package tablestore

import "context"

// Record is one row keyed by column name. All values are text; typed
// interpretation belongs to the domain packages.
type Record map[string]string

// Store is the table store adapter contract.
//
// Mutations are non-atomic read-modify-write sequences at the call site.
// A Throttled error means nothing was applied; callers advise retry.
type Store interface {
	// ReadTable returns every row of the named table in sheet order.
	// An empty table yields an empty slice; an unknown name yields ErrNotFound.
	ReadTable(ctx context.Context, name string) ([]Record, error)

	// AppendRow appends one row of ordered values. No schema validation
	// happens here; callers order values per the table's Schema.
	AppendRow(ctx context.Context, name string, values []string) error

	// ReplaceTable overwrites header and all rows. This is the only update
	// primitive; deletes and edits go through it.
	ReplaceTable(ctx context.Context, name string, header []string, rows [][]string) error
}

// Ensure creates every table in schemas that the store does not have yet,
// writing just the header row. Existing tables are left untouched, including
// ones whose header is missing columns (default fill covers those at read
// time).
func Ensure(ctx context.Context, store Store, schemas []Schema) error {
	for _, s := range schemas {
		_, err := store.ReadTable(ctx, s.Name)
		if err == nil {
			continue
		}
		if !IsNotFound(err) {
			return err
		}
		if err := store.ReplaceTable(ctx, s.Name, s.Columns, nil); err != nil {
			return err
		}
	}
	return nil
}
