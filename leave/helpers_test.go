package leave_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cumulus-hr/cumulus/leave"
	"github.com/cumulus-hr/cumulus/tablestore"
	"github.com/cumulus-hr/cumulus/tablestore/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func decimalInt(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func decimalStr(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// newTestStore returns a memory store with all five HR tables present and
// empty.
func newTestStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	require.NoError(t, tablestore.Ensure(context.Background(), store, tablestore.Schemas))
	return store
}

// leaveRow builds one leaves-table row in schema column order:
// id, username, category, start_date, days, session, reason, status, note.
func leaveRow(id, username, category, start, days, session, status string) []string {
	return []string{id, username, category, start, days, session, "", status, ""}
}

// seedLeaves replaces the leaves table with the given rows.
func seedLeaves(t *testing.T, store *memory.Store, rows ...[]string) {
	t.Helper()
	schema, ok := tablestore.SchemaFor(tablestore.TableLeaves)
	require.True(t, ok)
	store.Seed(tablestore.TableLeaves, schema.Columns, rows...)
}

// seedBalance replaces the balance table. Rows are in schema column order:
// username, compensatory, marriage, bereavement, maternity.
func seedBalance(t *testing.T, store *memory.Store, rows ...[]string) {
	t.Helper()
	schema, ok := tablestore.SchemaFor(tablestore.TableBalance)
	require.True(t, ok)
	store.Seed(tablestore.TableBalance, schema.Columns, rows...)
}

// readBalance returns the stored balance cell for (username, cat), or "0"
// when the row is absent.
func readBalance(t *testing.T, store *memory.Store, username string, cat leave.Category) string {
	t.Helper()
	recs, err := store.ReadTable(context.Background(), tablestore.TableBalance)
	require.NoError(t, err)
	for _, rec := range recs {
		if rec["username"] == username {
			return rec[string(cat)]
		}
	}
	return "0"
}

// countLeaveRows returns how many rows the leaves table holds.
func countLeaveRows(t *testing.T, store *memory.Store) int {
	t.Helper()
	recs, err := store.ReadTable(context.Background(), tablestore.TableLeaves)
	require.NoError(t, err)
	return len(recs)
}
