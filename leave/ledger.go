/*
ledger.go - Stored balances for bankable categories

PURPOSE:
  Bankable categories (compensatory, marriage, bereavement, maternity) have
  no formula; their balance is whatever managers have granted minus whatever
  approvals have debited. One row per employee in the balance table, one
  numeric column per category.

INVARIANT:
  balance = sum(grants) - sum(approved debits)

  No hard floor is enforced: a transient negative is tolerated rather than
  asserted, since the submission gate already blocks overdrafts and a
  negative that slips through is a reconciliation case to surface, not to
  mask.

CONCURRENCY CAVEAT:
  Grant/Debit is a whole-table read-modify-rewrite. Two concurrent writers
  to the same employee can race and lose an update (last-writer-wins). This
  is the accepted limitation of the spreadsheet backend; see the tablestore
  package docs.
*/
package leave

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cumulus-hr/cumulus/tablestore"
)

// Ledger manages the stored balance rows for bankable categories.
type Ledger struct {
	store tablestore.Store
}

func NewLedger(store tablestore.Store) *Ledger {
	return &Ledger{store: store}
}

// Balance returns the stored balance for (username, cat).
// Employees without a ledger row have balance 0.
func (l *Ledger) Balance(ctx context.Context, username string, cat Category) (decimal.Decimal, error) {
	if !cat.Bankable() {
		return decimal.Zero, &ValidationError{Field: "category", Message: string(cat) + " is not ledger-backed"}
	}

	schema, _ := tablestore.SchemaFor(tablestore.TableBalance)
	recs, err := tablestore.ReadNormalized(ctx, l.store, schema)
	if err != nil {
		return decimal.Zero, err
	}

	for _, rec := range recs {
		if rec["username"] != username {
			continue
		}
		return parseBalanceCell(rec[string(cat)]), nil
	}
	return decimal.Zero, nil
}

// Balances returns all bankable balances for one employee.
func (l *Ledger) Balances(ctx context.Context, username string) (map[Category]decimal.Decimal, error) {
	schema, _ := tablestore.SchemaFor(tablestore.TableBalance)
	recs, err := tablestore.ReadNormalized(ctx, l.store, schema)
	if err != nil {
		return nil, err
	}

	out := make(map[Category]decimal.Decimal, len(BankableCategories))
	for _, cat := range BankableCategories {
		out[cat] = decimal.Zero
	}
	for _, rec := range recs {
		if rec["username"] != username {
			continue
		}
		for _, cat := range BankableCategories {
			out[cat] = parseBalanceCell(rec[string(cat)])
		}
		break
	}
	return out, nil
}

// Grant increments the ledger row for (username, cat) by delta, creating a
// zero-initialized row for all categories if the employee has none yet.
// A zero delta rewrites the table with unchanged values.
//
// The read-modify-rewrite is atomic only within this process; see the
// package comment for the cross-writer caveat.
func (l *Ledger) Grant(ctx context.Context, username string, cat Category, delta decimal.Decimal) error {
	if !cat.Bankable() {
		return &ValidationError{Field: "category", Message: string(cat) + " is not ledger-backed"}
	}

	schema, _ := tablestore.SchemaFor(tablestore.TableBalance)
	recs, err := tablestore.ReadNormalized(ctx, l.store, schema)
	if err != nil {
		return err
	}

	found := false
	for _, rec := range recs {
		if rec["username"] != username {
			continue
		}
		cur := parseBalanceCell(rec[string(cat)])
		rec[string(cat)] = cur.Add(delta).String()
		found = true
		break
	}
	if !found {
		rec := schema.Normalize(tablestore.Record{"username": username})
		rec[string(cat)] = delta.String()
		recs = append(recs, rec)
	}

	return l.store.ReplaceTable(ctx, tablestore.TableBalance, schema.Columns, schema.Rows(recs))
}

// Debit is Grant with the sign flipped. Used exclusively by request
// approval.
func (l *Ledger) Debit(ctx context.Context, username string, cat Category, amount decimal.Decimal) error {
	return l.Grant(ctx, username, cat, amount.Neg())
}

// parseBalanceCell tolerates hand-edited cells: anything unparseable
// counts as zero, matching how the sheet behaved historically.
func parseBalanceCell(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
