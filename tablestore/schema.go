/*
schema.go - Schema-by-convention, made explicit

PURPOSE:
  The spreadsheet has no schema enforcement: columns exist by convention and
  historical rows may predate a column that was added later. Rather than
  having every domain package special-case missing columns, each table
  declares its column set here and reads normalize through it: a missing
  column becomes its default value (empty string unless stated otherwise).

  Adding a column is therefore a backward-compatible operation: declare it
  with a default, old rows fill in at read time, and the next full rewrite
  persists it.
*/
package tablestore

import "context"

// Schema declares the column set of one named table.
type Schema struct {
	Name     string
	Columns  []string
	Defaults map[string]string // per-column default; absent means ""
}

// Table names used by the HR system.
const (
	TableUsers      = "users"
	TableAttendance = "attendance"
	TableLeaves     = "leaves"
	TableBalance    = "balance"
	TableOvertime   = "overtime"
)

// Schemas lists every table the system reads or writes.
// Order of Columns is the persisted column order.
var Schemas = []Schema{
	{
		Name: TableUsers,
		Columns: []string{
			"username", "password", "name", "title", "department",
			"role", "status", "onboard_date", "resign_date", "email",
		},
		Defaults: map[string]string{"role": "employee", "status": "active"},
	},
	{
		Name:    TableAttendance,
		Columns: []string{"username", "time", "action"},
	},
	{
		Name: TableLeaves,
		Columns: []string{
			"id", "username", "category", "start_date", "days",
			"session", "reason", "status", "note",
		},
		Defaults: map[string]string{"status": "pending", "session": "full"},
	},
	{
		Name:     TableBalance,
		Columns:  []string{"username", "compensatory", "marriage", "bereavement", "maternity"},
		Defaults: map[string]string{"compensatory": "0", "marriage": "0", "bereavement": "0", "maternity": "0"},
	},
	{
		Name:    TableOvertime,
		Columns: []string{"username", "date", "days", "reason", "granted_by"},
	},
}

// SchemaFor returns the declared schema for a table name.
// Returns false for tables the system does not know about.
func SchemaFor(name string) (Schema, bool) {
	for _, s := range Schemas {
		if s.Name == name {
			return s, true
		}
	}
	return Schema{}, false
}

// Normalize fills missing columns of rec with their defaults.
// rec itself is not modified.
func (s Schema) Normalize(rec Record) Record {
	out := make(Record, len(s.Columns))
	for _, col := range s.Columns {
		if v, ok := rec[col]; ok {
			out[col] = v
			continue
		}
		out[col] = s.Defaults[col]
	}
	return out
}

// Row flattens rec into persisted column order, applying defaults for
// missing columns. Used when rewriting a whole table.
func (s Schema) Row(rec Record) []string {
	row := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		if v, ok := rec[col]; ok {
			row[i] = v
		} else {
			row[i] = s.Defaults[col]
		}
	}
	return row
}

// Rows flattens a record slice, preserving order.
func (s Schema) Rows(recs []Record) [][]string {
	rows := make([][]string, len(recs))
	for i, rec := range recs {
		rows[i] = s.Row(rec)
	}
	return rows
}

// ReadNormalized reads a table and normalizes every row through the schema,
// so domain code never sees a missing column.
func ReadNormalized(ctx context.Context, store Store, s Schema) ([]Record, error) {
	recs, err := store.ReadTable(ctx, s.Name)
	if err != nil {
		return nil, err
	}
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = s.Normalize(rec)
	}
	return out, nil
}
