/*
Package attendance records clock events and compensatory-time grants.

PURPOSE:
  Two append-only event logs:

  attendance: one row per clock_in/clock_out tap, timestamped
  overtime:   one audit row per compensatory grant, with the grantor

  Neither log is ever mutated. The overtime grant is the one operation here
  that touches stored state: it credits the compensatory ledger for each
  recipient, then appends the audit row. A crash in between leaves a credit
  without its audit row - tolerated, since the ledger is authoritative and
  the audit row is bookkeeping.
*/
package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cumulus-hr/cumulus/leave"
	"github.com/cumulus-hr/cumulus/tablestore"
)

// =============================================================================
// CLOCK EVENTS
// =============================================================================

type Action string

const (
	ClockIn  Action = "clock_in"
	ClockOut Action = "clock_out"
)

// TimeLayout is the stored format for event timestamps.
const TimeLayout = "2006-01-02 15:04:05"

// Event is one attendance row, typed.
type Event struct {
	Username string
	At       time.Time
	Action   Action
}

type Service struct {
	store  tablestore.Store
	ledger *leave.Ledger
	log    zerolog.Logger
}

func NewService(store tablestore.Store, ledger *leave.Ledger, log zerolog.Logger) *Service {
	return &Service{store: store, ledger: ledger, log: log}
}

// Clock appends one attendance event.
func (s *Service) Clock(ctx context.Context, username string, action Action, at time.Time) error {
	if action != ClockIn && action != ClockOut {
		return fmt.Errorf("unknown clock action %q", action)
	}
	row := []string{username, at.Format(TimeLayout), string(action)}
	if err := s.store.AppendRow(ctx, tablestore.TableAttendance, row); err != nil {
		return err
	}
	s.log.Info().Str("username", username).Str("action", string(action)).Msg("clock event")
	return nil
}

// EventsFor returns one employee's attendance events in insertion order.
func (s *Service) EventsFor(ctx context.Context, username string) ([]Event, error) {
	schema, _ := tablestore.SchemaFor(tablestore.TableAttendance)
	recs, err := tablestore.ReadNormalized(ctx, s.store, schema)
	if err != nil {
		return nil, err
	}

	var out []Event
	for _, rec := range recs {
		if rec["username"] != username {
			continue
		}
		at, err := time.Parse(TimeLayout, rec["time"])
		if err != nil {
			return nil, fmt.Errorf("attendance row for %s: bad time %q", username, rec["time"])
		}
		out = append(out, Event{Username: username, At: at, Action: Action(rec["action"])})
	}
	return out, nil
}

// =============================================================================
// OVERTIME GRANTS - compensatory credits, batch
// =============================================================================

// Grant is one overtime audit row, typed.
type Grant struct {
	Username  string
	Date      time.Time
	Days      decimal.Decimal
	Reason    string
	GrantedBy string
}

// GrantInput credits compensatory days to a set of employees.
type GrantInput struct {
	Usernames []string
	Date      time.Time
	Days      decimal.Decimal
	Reason    string
	GrantedBy string // display name of the granting manager
}

// GrantOvertime credits each recipient's compensatory balance and appends
// one overtime audit row per recipient. Recipients are processed in order;
// an error stops the batch and reports how far it got.
func (s *Service) GrantOvertime(ctx context.Context, in GrantInput) error {
	if !in.Days.IsPositive() {
		return fmt.Errorf("grant days must be positive, got %s", in.Days)
	}
	if len(in.Usernames) == 0 {
		return fmt.Errorf("grant needs at least one recipient")
	}

	for i, username := range in.Usernames {
		if err := s.ledger.Grant(ctx, username, leave.Compensatory, in.Days); err != nil {
			return fmt.Errorf("grant to %s (%d of %d applied): %w", username, i, len(in.Usernames), err)
		}
		row := []string{
			username,
			in.Date.Format(leave.DateLayout),
			in.Days.String(),
			in.Reason,
			in.GrantedBy,
		}
		if err := s.store.AppendRow(ctx, tablestore.TableOvertime, row); err != nil {
			s.log.Error().
				Str("username", username).
				Str("days", in.Days.String()).
				Msg("compensatory credit applied but audit row failed")
			return err
		}
	}

	s.log.Info().
		Int("recipients", len(in.Usernames)).
		Str("days", in.Days.String()).
		Str("granted_by", in.GrantedBy).
		Msg("overtime granted")
	return nil
}

// OvertimeFor returns one employee's overtime audit rows in insertion order.
func (s *Service) OvertimeFor(ctx context.Context, username string) ([]Grant, error) {
	schema, _ := tablestore.SchemaFor(tablestore.TableOvertime)
	recs, err := tablestore.ReadNormalized(ctx, s.store, schema)
	if err != nil {
		return nil, err
	}

	var out []Grant
	for _, rec := range recs {
		if rec["username"] != username {
			continue
		}
		g := Grant{
			Username:  username,
			Reason:    rec["reason"],
			GrantedBy: rec["granted_by"],
		}
		if t, err := time.Parse(leave.DateLayout, rec["date"]); err == nil {
			g.Date = t
		}
		if d, err := decimal.NewFromString(rec["days"]); err == nil {
			g.Days = d
		}
		out = append(out, g)
	}
	return out, nil
}
