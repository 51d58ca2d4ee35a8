package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cumulus-hr/cumulus/leave"
)

// =============================================================================
// USAGE AND REMAINING BALANCES
// =============================================================================

func TestEngine_UsedByCategory_CountsApprovedOnly(t *testing.T) {
	// GIVEN: one approved (1 day) and one pending (2 days) annual request,
	// plus a rejected one
	store := newTestStore(t)
	seedLeaves(t, store,
		leaveRow("r1", "alice", "annual", "2024-05-02", "1", "full", "approved"),
		leaveRow("r2", "alice", "annual", "2024-05-10", "2", "full", "pending"),
		leaveRow("r3", "alice", "annual", "2024-04-01", "3", "full", "rejected"),
	)
	engine := leave.NewEngine(store)

	// WHEN
	used, err := engine.UsedByCategory(context.Background(), "alice", leave.Annual)

	// THEN: only the approved day counts
	require.NoError(t, err)
	assert.True(t, used.Equal(decimalInt(1)), "used = %s, want 1", used)
}

func TestEngine_UsedByCategory_FiltersEmployeeAndCategory(t *testing.T) {
	store := newTestStore(t)
	seedLeaves(t, store,
		leaveRow("r1", "alice", "annual", "2024-05-02", "1", "full", "approved"),
		leaveRow("r2", "alice", "sick", "2024-05-03", "2", "full", "approved"),
		leaveRow("r3", "bob", "annual", "2024-05-04", "4", "full", "approved"),
	)
	engine := leave.NewEngine(store)

	used, err := engine.UsedByCategory(context.Background(), "alice", leave.Annual)
	require.NoError(t, err)
	assert.True(t, used.Equal(decimalInt(1)))
}

func TestEngine_UsedByCategory_HalfDays(t *testing.T) {
	store := newTestStore(t)
	seedLeaves(t, store,
		leaveRow("r1", "alice", "sick", "2024-05-02", "0.5", "morning", "approved"),
		leaveRow("r2", "alice", "sick", "2024-05-03", "0.5", "afternoon", "approved"),
	)
	engine := leave.NewEngine(store)

	used, err := engine.UsedByCategory(context.Background(), "alice", leave.Sick)
	require.NoError(t, err)
	assert.True(t, used.Equal(decimalInt(1)), "two half days sum to 1, got %s", used)
}

func TestEngine_RemainingAnnual(t *testing.T) {
	// Onboarded 3 years ago -> entitled 14; 2.5 approved -> 11.5 remaining.
	store := newTestStore(t)
	seedLeaves(t, store,
		leaveRow("r1", "alice", "annual", "2024-05-02", "2.5", "full", "approved"),
	)
	engine := leave.NewEngine(store)

	asOf := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	onboard := asOf.AddDate(-3, 0, 0)

	remaining, err := engine.RemainingAnnual(context.Background(), "alice", onboard, asOf)
	require.NoError(t, err)
	assert.True(t, remaining.Equal(decimalStr(t, "11.5")), "remaining = %s", remaining)
}

func TestEngine_RemainingSick_MayGoNegative(t *testing.T) {
	// Statutory cap is 30; 31 approved days leaves -1. The engine reports
	// it; blocking or warning is the caller's call.
	store := newTestStore(t)
	seedLeaves(t, store,
		leaveRow("r1", "alice", "sick", "2024-01-10", "31", "full", "approved"),
	)
	engine := leave.NewEngine(store)

	remaining, err := engine.RemainingSick(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, remaining.Equal(decimalInt(-1)), "remaining = %s", remaining)
}

func TestEngine_Summarize(t *testing.T) {
	store := newTestStore(t)
	seedLeaves(t, store,
		leaveRow("r1", "alice", "annual", "2024-05-02", "2", "full", "approved"),
		leaveRow("r2", "alice", "sick", "2024-05-06", "1", "full", "approved"),
		leaveRow("r3", "alice", "annual", "2024-05-20", "5", "full", "pending"),
	)
	seedBalance(t, store, []string{"alice", "3", "0", "0", "0"})
	engine := leave.NewEngine(store)

	asOf := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	onboard := asOf.AddDate(-2, 0, 0) // entitled 10

	sum, err := engine.Summarize(context.Background(), "alice", onboard, asOf)
	require.NoError(t, err)

	assert.True(t, sum.AnnualEntitled.Equal(decimalInt(10)))
	assert.True(t, sum.AnnualUsed.Equal(decimalInt(2)))
	assert.True(t, sum.AnnualRemaining.Equal(decimalInt(8)))
	assert.True(t, sum.SickUsed.Equal(decimalInt(1)))
	assert.True(t, sum.SickRemaining.Equal(decimalInt(29)))
	assert.True(t, sum.Bankable[leave.Compensatory].Equal(decimalInt(3)))
	assert.True(t, sum.Bankable[leave.Marriage].IsZero())
}

func TestEngine_MalformedRowReported(t *testing.T) {
	// Hand-edited sheets happen. A row with an unparseable day count must
	// fail the read loudly instead of being silently dropped.
	store := newTestStore(t)
	seedLeaves(t, store,
		leaveRow("r1", "alice", "annual", "2024-05-02", "a lot", "full", "approved"),
	)
	engine := leave.NewEngine(store)

	_, err := engine.UsedByCategory(context.Background(), "alice", leave.Annual)
	assert.Error(t, err)
}
