/*
Package report derives monthly views from the raw event logs.

PURPOSE:
  Nothing here is stored: every view is recomputed from the attendance and
  leaves tables on each read, joined against the employee directory for
  display names.

  MonthlyAttendance:     all clock events of one month, insertion order
  MonthlyLeaveOccupancy: approved leaves grouped by day-of-month, for a
                         calendar heat view

  Multi-day leaves are attributed only to their start date; there is no
  day-by-day expansion. A known simplification, not a day-span calendar.
*/
package report

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cumulus-hr/cumulus/leave"
	"github.com/cumulus-hr/cumulus/roster"
	"github.com/cumulus-hr/cumulus/tablestore"
)

// yearMonthRe matches the YYYY-MM month key.
var yearMonthRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ErrBadMonth is returned when a month key is not YYYY-MM.
var ErrBadMonth = errors.New("month must be YYYY-MM")

// Aggregator computes monthly views.
type Aggregator struct {
	store  tablestore.Store
	roster *roster.Service
}

func New(store tablestore.Store, r *roster.Service) *Aggregator {
	return &Aggregator{store: store, roster: r}
}

// =============================================================================
// MONTHLY ATTENDANCE
// =============================================================================

// AttendanceLine is one clock event with the display name joined in.
type AttendanceLine struct {
	Time     string // as stored, "2006-01-02 15:04:05"
	Username string
	Name     string
	Action   string
}

// MonthlyAttendance returns the clock events whose timestamp starts with
// the given "YYYY-MM" month, preserving insertion order.
func (a *Aggregator) MonthlyAttendance(ctx context.Context, yearMonth string) ([]AttendanceLine, error) {
	if !yearMonthRe.MatchString(yearMonth) {
		return nil, fmt.Errorf("%w, got %q", ErrBadMonth, yearMonth)
	}

	names, err := a.roster.Names(ctx)
	if err != nil {
		return nil, err
	}

	schema, _ := tablestore.SchemaFor(tablestore.TableAttendance)
	recs, err := tablestore.ReadNormalized(ctx, a.store, schema)
	if err != nil {
		return nil, err
	}

	var lines []AttendanceLine
	for _, rec := range recs {
		if !strings.HasPrefix(rec["time"], yearMonth) {
			continue
		}
		lines = append(lines, AttendanceLine{
			Time:     rec["time"],
			Username: rec["username"],
			Name:     names[rec["username"]],
			Action:   rec["action"],
		})
	}
	return lines, nil
}

// =============================================================================
// MONTHLY LEAVE OCCUPANCY
// =============================================================================

// OccupancyEntry is one approved leave on the calendar.
type OccupancyEntry struct {
	Username string
	Name     string
	Category leave.Category
	Days     decimal.Decimal
	Session  leave.Session
}

// MonthlyLeaveOccupancy groups the approved leaves starting in the given
// month by day-of-month. Requests keep their sheet order within a day.
func (a *Aggregator) MonthlyLeaveOccupancy(ctx context.Context, yearMonth string) (map[int][]OccupancyEntry, error) {
	if !yearMonthRe.MatchString(yearMonth) {
		return nil, fmt.Errorf("%w, got %q", ErrBadMonth, yearMonth)
	}

	names, err := a.roster.Names(ctx)
	if err != nil {
		return nil, err
	}

	schema, _ := tablestore.SchemaFor(tablestore.TableLeaves)
	recs, err := tablestore.ReadNormalized(ctx, a.store, schema)
	if err != nil {
		return nil, err
	}

	byDay := make(map[int][]OccupancyEntry)
	for _, rec := range recs {
		if rec["status"] != string(leave.StatusApproved) {
			continue
		}
		start := rec["start_date"]
		if !strings.HasPrefix(start, yearMonth) {
			continue
		}
		var day int
		if _, err := fmt.Sscanf(start[len(yearMonth):], "-%d", &day); err != nil {
			continue
		}
		days, err := decimal.NewFromString(rec["days"])
		if err != nil {
			days = decimal.Zero
		}
		byDay[day] = append(byDay[day], OccupancyEntry{
			Username: rec["username"],
			Name:     names[rec["username"]],
			Category: leave.Category(rec["category"]),
			Days:     days,
			Session:  leave.Session(rec["session"]),
		})
	}
	return byDay, nil
}
