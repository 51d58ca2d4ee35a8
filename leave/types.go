/*
Package leave implements the leave accounting engine and the request
lifecycle.

PURPOSE:
  Two kinds of leave exist and they are bookkept differently:

  ACCRUAL categories (annual, sick) are derived: the remaining amount is
  always entitlement-formula minus approved usage, recomputed fresh from the
  raw request log on every read. No stored balance exists that could drift.

  BANKABLE categories (compensatory, marriage, bereavement, maternity) are
  granted by managers rather than produced by a formula, so they live in a
  stored ledger: one row per employee, one numeric column per category.
  Grants credit it, approvals debit it.

  Personal leave is neither: it is unlimited and only recorded.

KEY COMPONENTS:
  Engine:  balance reads (entitlement, usage, remaining, ledger lookups)
  Ledger:  grant/debit upserts against the balance table
  Service: request submission and approval lifecycle

SEE ALSO:
  - entitlement.go: the tenure step function
  - ledger.go: bankable balance bookkeeping
  - request.go: pending -> approved | rejected lifecycle
*/
package leave

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cumulus-hr/cumulus/tablestore"
)

// =============================================================================
// CATEGORIES
// =============================================================================

// Category is a leave type.
type Category string

const (
	Annual       Category = "annual"
	Compensatory Category = "compensatory"
	Sick         Category = "sick"
	Personal     Category = "personal"
	Marriage     Category = "marriage"
	Bereavement  Category = "bereavement"
	Maternity    Category = "maternity"
)

// Categories lists every known category.
var Categories = []Category{Annual, Compensatory, Sick, Personal, Marriage, Bereavement, Maternity}

// BankableCategories are the ledger-backed categories, in the column order
// of the balance table.
var BankableCategories = []Category{Compensatory, Marriage, Bereavement, Maternity}

// Bankable reports whether the category's balance is granted and stored
// rather than derived from a formula.
func (c Category) Bankable() bool {
	switch c {
	case Compensatory, Marriage, Bereavement, Maternity:
		return true
	}
	return false
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// =============================================================================
// SESSIONS - Which part of the day a half-day request covers
// =============================================================================

type Session string

const (
	Morning   Session = "morning"
	Afternoon Session = "afternoon"
	FullDay   Session = "full"
)

func (s Session) Valid() bool {
	return s == Morning || s == Afternoon || s == FullDay
}

// =============================================================================
// REQUEST - One leave request row
// =============================================================================

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether the status can never change again.
func (s Status) Terminal() bool { return s == StatusApproved || s == StatusRejected }

type RequestID string

// Request is one row of the leaves table, typed.
type Request struct {
	ID        RequestID
	Username  string
	Category  Category
	StartDate time.Time
	Days      decimal.Decimal
	Session   Session
	Reason    string
	Status    Status
	Note      string // reviewer note, set on decision
}

// DateLayout is the stored format for calendar dates.
const DateLayout = "2006-01-02"

// requestFromRecord parses one normalized leaves row. Rows with malformed
// dates or day counts are reported, not skipped: the sheet is hand-editable
// and silent drops would corrupt balances.
func requestFromRecord(rec tablestore.Record) (Request, error) {
	start, err := time.Parse(DateLayout, rec["start_date"])
	if err != nil {
		return Request{}, fmt.Errorf("leave row %s: bad start_date %q", rec["id"], rec["start_date"])
	}
	days, err := decimal.NewFromString(rec["days"])
	if err != nil {
		return Request{}, fmt.Errorf("leave row %s: bad days %q", rec["id"], rec["days"])
	}
	return Request{
		ID:        RequestID(rec["id"]),
		Username:  rec["username"],
		Category:  Category(rec["category"]),
		StartDate: start,
		Days:      days,
		Session:   Session(rec["session"]),
		Reason:    rec["reason"],
		Status:    Status(rec["status"]),
		Note:      rec["note"],
	}, nil
}

func (r Request) record() tablestore.Record {
	return tablestore.Record{
		"id":         string(r.ID),
		"username":   r.Username,
		"category":   string(r.Category),
		"start_date": r.StartDate.Format(DateLayout),
		"days":       r.Days.String(),
		"session":    string(r.Session),
		"reason":     r.Reason,
		"status":     string(r.Status),
		"note":       r.Note,
	}
}

// halfDay is the request granularity.
var halfDay = decimal.NewFromFloat(0.5)
