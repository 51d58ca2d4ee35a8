package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cumulus-hr/cumulus/api"
	"github.com/cumulus-hr/cumulus/attendance"
	"github.com/cumulus-hr/cumulus/leave"
	"github.com/cumulus-hr/cumulus/report"
	"github.com/cumulus-hr/cumulus/roster"
	"github.com/cumulus-hr/cumulus/tablestore"
	"github.com/cumulus-hr/cumulus/tablestore/memory"
)

// =============================================================================
// TEST SETUP - full wiring over the in-memory store
// =============================================================================

func newTestAPI(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()

	store := memory.New()
	require.NoError(t, tablestore.Ensure(context.Background(), store, tablestore.Schemas))

	// One legacy plain-text user and one manager, in sheet column order.
	schema, _ := tablestore.SchemaFor(tablestore.TableUsers)
	store.Seed(tablestore.TableUsers, schema.Columns,
		[]string{"alice", "pw", "Alice Zhang", "Engineer", "R&D", "employee", "active", "2021-03-10", "", "alice@example.com"},
		[]string{"bob", "pw", "Bob Ito", "Manager", "R&D", "manager", "active", "2018-01-02", "", ""},
	)

	log := zerolog.Nop()
	rst := roster.NewService(store)
	engine := leave.NewEngine(store)
	leaves := leave.NewService(store, engine, leave.Policy{}, log)
	att := attendance.NewService(store, engine.Ledger(), log)
	rep := report.New(store, rst)

	h := api.NewHandler(rst, engine, leaves, att, rep, log)
	return api.NewRouter(h), store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func seedBalance(t *testing.T, store *memory.Store, rows ...[]string) {
	t.Helper()
	schema, ok := tablestore.SchemaFor(tablestore.TableBalance)
	require.True(t, ok)
	store.Seed(tablestore.TableBalance, schema.Columns, rows...)
}

// =============================================================================
// LOGIN
// =============================================================================

func TestAPI_Login(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/login", map[string]string{
		"username": "alice", "password": "pw",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	emp := decode[api.EmployeeDTO](t, rec)
	assert.Equal(t, "alice", emp.Username)
	assert.Equal(t, "employee", emp.Role)
	assert.Equal(t, "2021-03-10", emp.Onboard)
}

func TestAPI_Login_WrongPassword(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/login", map[string]string{
		"username": "alice", "password": "nope",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_Login_Resigned(t *testing.T) {
	h, store := newTestAPI(t)
	schema, _ := tablestore.SchemaFor(tablestore.TableUsers)
	store.Seed(tablestore.TableUsers, schema.Columns,
		[]string{"carol", "pw", "Carol Lau", "", "", "employee", "resigned", "2019-05-01", "2024-01-31", ""},
	)

	rec := doJSON(t, h, http.MethodPost, "/api/login", map[string]string{
		"username": "carol", "password": "pw",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestAPI_CreateEmployee_ThenDuplicate(t *testing.T) {
	h, _ := newTestAPI(t)

	body := map[string]string{
		"username": "erin", "password": "secret", "name": "Erin Vale",
		"role": "employee", "onboard_date": "2024-02-01",
	}

	rec := doJSON(t, h, http.MethodPost, "/api/employees", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/employees", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_ListEmployees(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, "/api/employees", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	emps := decode[[]api.EmployeeDTO](t, rec)
	require.Len(t, emps, 2)
	assert.Equal(t, "Alice Zhang", emps[0].Name)
}

func TestAPI_Summary_UnknownEmployee(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, "/api/employees/ghost/summary", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// LEAVE LIFECYCLE - submit, list pending, approve, re-decide
// =============================================================================

func TestAPI_LeaveLifecycle(t *testing.T) {
	// GIVEN: alice holds 3 compensatory days
	h, store := newTestAPI(t)
	seedBalance(t, store, []string{"alice", "3", "0", "0", "0"})

	// WHEN: she requests 2 of them
	rec := doJSON(t, h, http.MethodPost, "/api/employees/alice/leaves", map[string]string{
		"category": "compensatory", "start_date": "2024-05-20", "days": "2", "reason": "moving day",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	submitted := decode[api.SubmitLeaveResponse](t, rec)
	require.NotEmpty(t, submitted.ID)

	// THEN: the request shows up pending
	rec = doJSON(t, h, http.MethodGet, "/api/leaves/pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decode[[]api.LeaveRequestDTO](t, rec)
	require.Len(t, pending, 1)
	assert.Equal(t, submitted.ID, pending[0].ID)
	assert.Equal(t, "pending", pending[0].Status)

	// WHEN: the manager approves
	rec = doJSON(t, h, http.MethodPost, "/api/leaves/"+submitted.ID+"/approve", map[string]string{
		"reviewer": "bob", "note": "enjoy",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	// THEN: the balance is debited on the summary
	rec = doJSON(t, h, http.MethodGet, "/api/employees/alice/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[api.SummaryDTO](t, rec)
	assert.Equal(t, "1", sum.Bankable["compensatory"])

	// AND: deciding again conflicts without a second debit
	rec = doJSON(t, h, http.MethodPost, "/api/leaves/"+submitted.ID+"/reject", map[string]string{
		"reviewer": "bob",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_SubmitLeave_InsufficientBalance(t *testing.T) {
	h, store := newTestAPI(t)
	seedBalance(t, store, []string{"alice", "1", "0", "0", "0"})

	rec := doJSON(t, h, http.MethodPost, "/api/employees/alice/leaves", map[string]string{
		"category": "compensatory", "start_date": "2024-05-20", "days": "2", "reason": "trip",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAPI_SubmitLeave_BadDate(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/employees/alice/leaves", map[string]string{
		"category": "annual", "start_date": "20/05/2024", "days": "1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_SubmitLeave_SickAdvisory(t *testing.T) {
	// GIVEN: 30 approved sick days already on record
	h, store := newTestAPI(t)
	schema, _ := tablestore.SchemaFor(tablestore.TableLeaves)
	store.Seed(tablestore.TableLeaves, schema.Columns,
		[]string{"r1", "alice", "sick", "2024-01-10", "30", "full", "", "approved", ""},
	)

	rec := doJSON(t, h, http.MethodPost, "/api/employees/alice/leaves", map[string]string{
		"category": "sick", "start_date": "2024-05-20", "days": "1", "reason": "flu",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	res := decode[api.SubmitLeaveResponse](t, rec)
	assert.NotEmpty(t, res.Advisory)
}

func TestAPI_DecideUnknownRequest(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/leaves/nope/approve", map[string]string{"reviewer": "bob"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// ATTENDANCE AND OVERTIME
// =============================================================================

func TestAPI_Clock_ThenRecords(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/employees/alice/clock", map[string]string{"action": "clock_in"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/employees/alice/records", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[api.RecordsDTO](t, rec)
	require.Len(t, records.Attendance, 1)
	assert.Equal(t, "clock_in", records.Attendance[0].Action)
	assert.Empty(t, records.Leaves)
	assert.Empty(t, records.Overtime)
}

func TestAPI_Clock_BadAction(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/employees/alice/clock", map[string]string{"action": "nap"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_GrantOvertime_ShowsUpInSummaryAndRecords(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodPost, "/api/admin/overtime", map[string]any{
		"usernames": []string{"alice", "bob"}, "date": "2024-05-11",
		"days": "0.5", "reason": "release", "granted_by": "Bob Ito",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/employees/alice/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[api.SummaryDTO](t, rec)
	assert.Equal(t, "0.5", sum.Bankable["compensatory"])

	rec = doJSON(t, h, http.MethodGet, "/api/employees/alice/records", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[api.RecordsDTO](t, rec)
	require.Len(t, records.Overtime, 1)
	assert.Equal(t, "release", records.Overtime[0].Reason)
}

// =============================================================================
// REPORTS
// =============================================================================

func TestAPI_MonthlyAttendanceReport(t *testing.T) {
	h, store := newTestAPI(t)
	schema, _ := tablestore.SchemaFor(tablestore.TableAttendance)
	store.Seed(tablestore.TableAttendance, schema.Columns,
		[]string{"alice", "2024-05-02 09:00:00", "clock_in"},
		[]string{"alice", "2024-06-02 09:00:00", "clock_in"},
	)

	rec := doJSON(t, h, http.MethodGet, "/api/reports/attendance/2024-05", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	lines := decode[[]api.AttendanceLineDTO](t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, "Alice Zhang", lines[0].Name)
}

func TestAPI_MonthlyAttendanceReport_BadMonth(t *testing.T) {
	h, _ := newTestAPI(t)

	rec := doJSON(t, h, http.MethodGet, "/api/reports/attendance/2024-13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_LeaveCalendar(t *testing.T) {
	h, store := newTestAPI(t)
	schema, _ := tablestore.SchemaFor(tablestore.TableLeaves)
	store.Seed(tablestore.TableLeaves, schema.Columns,
		[]string{"r1", "alice", "annual", "2024-05-02", "1", "full", "", "approved", ""},
		[]string{"r2", "bob", "sick", "2024-05-02", "1", "full", "", "pending", ""},
	)

	rec := doJSON(t, h, http.MethodGet, "/api/reports/leave-calendar/2024-05", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	byDay := decode[map[string][]api.OccupancyEntryDTO](t, rec)
	require.Len(t, byDay, 1)
	require.Len(t, byDay["2"], 1)
	assert.Equal(t, "Alice Zhang", byDay["2"][0].Name)
}

// =============================================================================
// STORE FAILURE MAPPING
// =============================================================================

func TestAPI_ThrottledStoreReturns429(t *testing.T) {
	h, store := newTestAPI(t)

	store.ThrottleNext()
	rec := doJSON(t, h, http.MethodGet, "/api/employees", nil)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
