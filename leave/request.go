/*
request.go - Leave request lifecycle

STATE MACHINE:
  pending -> approved | rejected

  pending is the sole initial state, both others are terminal, and terminal
  states never revert. Re-deciding a terminal request fails with
  ErrAlreadyDecided at the contract level; the approval surface additionally
  filters to pending-only before offering the action, which together protect
  against double-debit.

SUBMISSION GATES:
  bankable categories: reject when ledger balance < requested days
  sick:                never blocks; advisory when the 30-day cap would be
                       exceeded
  annual:              gated only when the EnforceAnnualCap policy flag is
                       set (historically the figure was display-only)
  personal:            unlimited, never gated

APPROVAL ORDERING:
  The debit is written before the status update is persisted. If the status
  write then fails, the debit stands without its approval row - that is
  logged loudly as a reconciliation case, never silently ignored.
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cumulus-hr/cumulus/tablestore"
)

// Policy carries the configurable gate decisions.
type Policy struct {
	// EnforceAnnualCap blocks annual requests that exceed the remaining
	// entitlement. Off by default: the historical behavior displayed the
	// figure without enforcing it.
	EnforceAnnualCap bool
}

// Service runs the request lifecycle.
type Service struct {
	store  tablestore.Store
	engine *Engine
	ledger *Ledger
	policy Policy
	log    zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewService(store tablestore.Store, engine *Engine, policy Policy, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		engine: engine,
		ledger: engine.Ledger(),
		policy: policy,
		log:    log,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

// SubmitInput is one leave request as entered by the employee.
type SubmitInput struct {
	Username  string
	Category  Category
	StartDate time.Time
	Days      decimal.Decimal
	Session   Session // required iff Days == 0.5
	Reason    string

	// Onboard is needed only when the annual cap is enforced.
	Onboard time.Time
}

// SubmitResult carries the new request id plus any non-fatal advisory.
type SubmitResult struct {
	ID RequestID

	// Advisory is set when the request proceeds but the caller should
	// relay a warning (e.g. sick leave past the statutory cap).
	Advisory string
}

// Submit validates, gates, and appends a pending request row.
// Gate failures append nothing.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (SubmitResult, error) {
	if err := validate(in); err != nil {
		return SubmitResult{}, err
	}

	in = normalizeSession(in)

	advisory, err := s.gate(ctx, in)
	if err != nil {
		return SubmitResult{}, err
	}

	req := Request{
		ID:        RequestID(s.newID()),
		Username:  in.Username,
		Category:  in.Category,
		StartDate: in.StartDate,
		Days:      in.Days,
		Session:   in.Session,
		Reason:    in.Reason,
		Status:    StatusPending,
	}

	schema, _ := tablestore.SchemaFor(tablestore.TableLeaves)
	if err := s.store.AppendRow(ctx, tablestore.TableLeaves, schema.Row(req.record())); err != nil {
		return SubmitResult{}, err
	}

	s.log.Info().
		Str("request_id", string(req.ID)).
		Str("username", req.Username).
		Str("category", string(req.Category)).
		Str("days", req.Days.String()).
		Msg("leave request submitted")

	return SubmitResult{ID: req.ID, Advisory: advisory}, nil
}

func validate(in SubmitInput) error {
	if in.Username == "" {
		return &ValidationError{Field: "username", Message: "required"}
	}
	if !in.Category.Valid() {
		return &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", in.Category)}
	}
	if in.StartDate.IsZero() {
		return &ValidationError{Field: "start_date", Message: "required"}
	}
	if !in.Days.IsPositive() {
		return &ValidationError{Field: "days", Message: "must be positive"}
	}
	if !in.Days.Mod(halfDay).IsZero() {
		return &ValidationError{Field: "days", Message: "granularity is 0.5 days"}
	}
	if in.Days.Equal(halfDay) {
		if in.Session != Morning && in.Session != Afternoon {
			return &ValidationError{Field: "session", Message: "half-day requests need a morning or afternoon session"}
		}
	} else if in.Session != "" && in.Session != FullDay {
		return &ValidationError{Field: "session", Message: "sessions apply to half-day requests only"}
	}
	return nil
}

func normalizeSession(in SubmitInput) SubmitInput {
	if !in.Days.Equal(halfDay) {
		in.Session = FullDay
	}
	return in
}

// gate applies the per-category balance checks. Returns a non-fatal
// advisory string, or an error that blocks the submission.
func (s *Service) gate(ctx context.Context, in SubmitInput) (string, error) {
	switch {
	case in.Category.Bankable():
		available, err := s.ledger.Balance(ctx, in.Username, in.Category)
		if err != nil {
			return "", err
		}
		if available.LessThan(in.Days) {
			return "", &InsufficientBalanceError{
				Username:  in.Username,
				Category:  in.Category,
				Available: available,
				Requested: in.Days,
			}
		}

	case in.Category == Sick:
		remaining, err := s.engine.RemainingSick(ctx, in.Username)
		if err != nil {
			return "", err
		}
		if remaining.Sub(in.Days).IsNegative() {
			return fmt.Sprintf("sick leave beyond the statutory %s-day allowance", SickCap), nil
		}

	case in.Category == Annual && s.policy.EnforceAnnualCap:
		remaining, err := s.engine.RemainingAnnual(ctx, in.Username, in.Onboard, s.now())
		if err != nil {
			return "", err
		}
		if remaining.LessThan(in.Days) {
			return "", &InsufficientBalanceError{
				Username:  in.Username,
				Category:  in.Category,
				Available: remaining,
				Requested: in.Days,
			}
		}
	}
	// personal, and annual without the cap flag: no gate.
	return "", nil
}

// =============================================================================
// DECISION
// =============================================================================

type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// Decide transitions a pending request to approved or rejected.
//
// Approval of a bankable category debits the ledger before the status row
// is rewritten. A debit whose status write then fails is surfaced as a
// reconciliation error, not rolled back (the store has no transactions).
func (s *Service) Decide(ctx context.Context, id RequestID, outcome Outcome, reviewer, note string) error {
	if outcome != OutcomeApproved && outcome != OutcomeRejected {
		return &ValidationError{Field: "outcome", Message: fmt.Sprintf("unknown outcome %q", outcome)}
	}

	// Re-derive the pending set from current state; no separate index.
	reqs, err := s.engine.requests(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i, r := range reqs {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	if reqs[idx].Status.Terminal() {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyDecided, id, reqs[idx].Status)
	}

	req := reqs[idx]

	if outcome == OutcomeApproved && req.Category.Bankable() {
		if err := s.ledger.Debit(ctx, req.Username, req.Category, req.Days); err != nil {
			return err
		}
	}

	reqs[idx].Status = Status(outcome)
	reqs[idx].Note = note

	schema, _ := tablestore.SchemaFor(tablestore.TableLeaves)
	rows := make([][]string, len(reqs))
	for i, r := range reqs {
		rows[i] = schema.Row(r.record())
	}
	if err := s.store.ReplaceTable(ctx, tablestore.TableLeaves, schema.Columns, rows); err != nil {
		if outcome == OutcomeApproved && req.Category.Bankable() {
			s.log.Error().
				Str("request_id", string(id)).
				Str("username", req.Username).
				Str("category", string(req.Category)).
				Str("days", req.Days.String()).
				Msg("debit recorded but status write failed; needs reconciliation")
		}
		return err
	}

	s.log.Info().
		Str("request_id", string(id)).
		Str("outcome", string(outcome)).
		Str("reviewer", reviewer).
		Msg("leave request decided")

	return nil
}

// =============================================================================
// LISTINGS
// =============================================================================

// Pending returns the pending requests in insertion order. This is the set
// the approval surface offers decisions on.
func (s *Service) Pending(ctx context.Context) ([]Request, error) {
	reqs, err := s.engine.requests(ctx)
	if err != nil {
		return nil, err
	}
	var pending []Request
	for _, r := range reqs {
		if r.Status == StatusPending {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

// For returns every request of one employee in insertion order.
func (s *Service) For(ctx context.Context, username string) ([]Request, error) {
	reqs, err := s.engine.requests(ctx)
	if err != nil {
		return nil, err
	}
	var out []Request
	for _, r := range reqs {
		if r.Username == username {
			out = append(out, r)
		}
	}
	return out, nil
}
