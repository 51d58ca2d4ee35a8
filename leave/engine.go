/*
engine.go - Balance reads

PURPOSE:
  Every figure the UI shows is recomputed from raw rows on every read:
  entitlement from the onboarding date, usage from approved leave rows,
  bankable balances from the ledger. There is no cached derived state to
  drift out of sync. Acceptable at this scale; a scaling limit, not a bug.
*/
package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cumulus-hr/cumulus/tablestore"
)

// Engine answers balance questions for one employee at a time.
type Engine struct {
	store  tablestore.Store
	ledger *Ledger
}

func NewEngine(store tablestore.Store) *Engine {
	return &Engine{store: store, ledger: NewLedger(store)}
}

// Ledger exposes the bankable ledger this engine reads from.
func (e *Engine) Ledger() *Ledger { return e.ledger }

// requests loads and parses the full leaves table.
func (e *Engine) requests(ctx context.Context) ([]Request, error) {
	schema, _ := tablestore.SchemaFor(tablestore.TableLeaves)
	recs, err := tablestore.ReadNormalized(ctx, e.store, schema)
	if err != nil {
		return nil, err
	}
	reqs := make([]Request, 0, len(recs))
	for _, rec := range recs {
		req, err := requestFromRecord(rec)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// UsedByCategory sums the days of approved requests for (username, cat).
// Pending and rejected rows are excluded entirely.
func (e *Engine) UsedByCategory(ctx context.Context, username string, cat Category) (decimal.Decimal, error) {
	reqs, err := e.requests(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	used := decimal.Zero
	for _, r := range reqs {
		if r.Username == username && r.Category == cat && r.Status == StatusApproved {
			used = used.Add(r.Days)
		}
	}
	return used, nil
}

// RemainingAnnual is entitlement(tenure) minus approved annual usage.
func (e *Engine) RemainingAnnual(ctx context.Context, username string, onboard, asOf time.Time) (decimal.Decimal, error) {
	used, err := e.UsedByCategory(ctx, username, Annual)
	if err != nil {
		return decimal.Zero, err
	}
	return Entitlement(onboard, asOf).Sub(used), nil
}

// RemainingSick is the statutory cap minus approved sick usage. May go
// negative; the caller decides whether that blocks or merely warns.
func (e *Engine) RemainingSick(ctx context.Context, username string) (decimal.Decimal, error) {
	used, err := e.UsedByCategory(ctx, username, Sick)
	if err != nil {
		return decimal.Zero, err
	}
	return SickCap.Sub(used), nil
}

// BankableBalance is the stored ledger balance, 0 for employees without a
// ledger row.
func (e *Engine) BankableBalance(ctx context.Context, username string, cat Category) (decimal.Decimal, error) {
	return e.ledger.Balance(ctx, username, cat)
}

// =============================================================================
// SUMMARY - One employee's full balance picture
// =============================================================================

// Summary is what the sidebar shows: entitlement and remainders for the
// accrual categories plus every bankable balance.
type Summary struct {
	Username string
	AsOf     time.Time

	AnnualEntitled  decimal.Decimal
	AnnualUsed      decimal.Decimal
	AnnualRemaining decimal.Decimal

	SickUsed      decimal.Decimal
	SickRemaining decimal.Decimal

	Bankable map[Category]decimal.Decimal
}

// Summarize computes the full balance picture in one pass over the tables.
func (e *Engine) Summarize(ctx context.Context, username string, onboard, asOf time.Time) (Summary, error) {
	reqs, err := e.requests(ctx)
	if err != nil {
		return Summary{}, err
	}

	annualUsed, sickUsed := decimal.Zero, decimal.Zero
	for _, r := range reqs {
		if r.Username != username || r.Status != StatusApproved {
			continue
		}
		switch r.Category {
		case Annual:
			annualUsed = annualUsed.Add(r.Days)
		case Sick:
			sickUsed = sickUsed.Add(r.Days)
		}
	}

	bankable, err := e.ledger.Balances(ctx, username)
	if err != nil {
		return Summary{}, err
	}

	entitled := Entitlement(onboard, asOf)
	return Summary{
		Username:        username,
		AsOf:            asOf,
		AnnualEntitled:  entitled,
		AnnualUsed:      annualUsed,
		AnnualRemaining: entitled.Sub(annualUsed),
		SickUsed:        sickUsed,
		SickRemaining:   SickCap.Sub(sickUsed),
		Bankable:        bankable,
	}, nil
}
