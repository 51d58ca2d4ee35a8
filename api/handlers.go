/*
handlers.go - HTTP handlers for the HR self-service API

PURPOSE:
  Thin translation layer: parse input, call the domain services, serialize
  the result. No business logic lives here.

ERROR HANDLING:
  Domain errors map onto the HTTP taxonomy:
  - 400: malformed body or parameters
  - 401: bad credentials
  - 403: resigned employee
  - 404: missing table or request id
  - 409: already-decided request
  - 422: validation or balance gate failures
  - 429: store throttled (client should retry after a cool-down)
  - 503: store unavailable

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cumulus-hr/cumulus/attendance"
	"github.com/cumulus-hr/cumulus/leave"
	"github.com/cumulus-hr/cumulus/report"
	"github.com/cumulus-hr/cumulus/roster"
	"github.com/cumulus-hr/cumulus/tablestore"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Roster     *roster.Service
	Engine     *leave.Engine
	Leaves     *leave.Service
	Attendance *attendance.Service
	Reports    *report.Aggregator

	Log zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewHandler(r *roster.Service, e *leave.Engine, l *leave.Service, a *attendance.Service, rep *report.Aggregator, log zerolog.Logger) *Handler {
	return &Handler{
		Roster:     r,
		Engine:     e,
		Leaves:     l,
		Attendance: a,
		Reports:    rep,
		Log:        log,
		now:        time.Now,
	}
}

// =============================================================================
// LOGIN
// =============================================================================

// Login verifies credentials.
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	emp, err := h.Roster.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(emp))
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// ListEmployees returns the directory.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	emps, err := h.Roster.All(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]EmployeeDTO, len(emps))
	for i, e := range emps {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee adds a new employee row.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	onboard, err := time.Parse(leave.DateLayout, req.Onboard)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid onboard_date format (use YYYY-MM-DD)", err)
		return
	}

	err = h.Roster.Create(r.Context(), roster.CreateInput{
		Username:   req.Username,
		Password:   req.Password,
		Name:       req.Name,
		Title:      req.Title,
		Department: req.Department,
		Role:       roster.Role(req.Role),
		Onboard:    onboard,
		Email:      req.Email,
	})
	if err != nil {
		if errors.Is(err, roster.ErrDuplicateUsername) {
			writeError(w, http.StatusConflict, "Username already exists", err)
			return
		}
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// GetSummary returns the full balance picture for one employee.
// GET /api/employees/{username}/summary
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	emp, err := h.Roster.Get(r.Context(), username)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	sum, err := h.Engine.Summarize(r.Context(), username, emp.Onboard, h.now())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	bankable := make(map[string]string, len(sum.Bankable))
	for cat, bal := range sum.Bankable {
		bankable[string(cat)] = bal.String()
	}
	writeJSON(w, http.StatusOK, SummaryDTO{
		Username:        sum.Username,
		AsOf:            sum.AsOf.Format(leave.DateLayout),
		AnnualEntitled:  sum.AnnualEntitled.String(),
		AnnualUsed:      sum.AnnualUsed.String(),
		AnnualRemaining: sum.AnnualRemaining.String(),
		SickUsed:        sum.SickUsed.String(),
		SickRemaining:   sum.SickRemaining.String(),
		Bankable:        bankable,
	})
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// Clock records a clock_in/clock_out event.
// POST /api/employees/{username}/clock
func (h *Handler) Clock(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req ClockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	action := attendance.Action(req.Action)
	if action != attendance.ClockIn && action != attendance.ClockOut {
		writeError(w, http.StatusBadRequest, "Action must be clock_in or clock_out", nil)
		return
	}

	if err := h.Attendance.Clock(r.Context(), username, action, h.now()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRecords returns one employee's attendance, leave, and overtime history.
// GET /api/employees/{username}/records
func (h *Handler) GetRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := chi.URLParam(r, "username")

	events, err := h.Attendance.EventsFor(ctx, username)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	leaves, err := h.Leaves.For(ctx, username)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	overtime, err := h.Attendance.OvertimeFor(ctx, username)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	out := RecordsDTO{
		Attendance: make([]AttendanceEventDTO, len(events)),
		Leaves:     make([]LeaveRequestDTO, len(leaves)),
		Overtime:   make([]OvertimeDTO, len(overtime)),
	}
	for i, e := range events {
		out.Attendance[i] = AttendanceEventDTO{
			Username: e.Username,
			Time:     e.At.Format(attendance.TimeLayout),
			Action:   string(e.Action),
		}
	}
	for i, l := range leaves {
		out.Leaves[i] = toLeaveDTO(l)
	}
	for i, o := range overtime {
		out.Overtime[i] = OvertimeDTO{
			Username:  o.Username,
			Date:      o.Date.Format(leave.DateLayout),
			Days:      o.Days.String(),
			Reason:    o.Reason,
			GrantedBy: o.GrantedBy,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// SubmitLeave creates a pending leave request.
// POST /api/employees/{username}/leaves
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := time.Parse(leave.DateLayout, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	days, err := decimal.NewFromString(req.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid days", err)
		return
	}

	emp, err := h.Roster.Get(r.Context(), username)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	res, err := h.Leaves.Submit(r.Context(), leave.SubmitInput{
		Username:  username,
		Category:  leave.Category(req.Category),
		StartDate: start,
		Days:      days,
		Session:   leave.Session(req.Session),
		Reason:    req.Reason,
		Onboard:   emp.Onboard,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SubmitLeaveResponse{ID: string(res.ID), Advisory: res.Advisory})
}

// ListPendingLeaves returns the requests awaiting decision.
// GET /api/leaves/pending
func (h *Handler) ListPendingLeaves(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Leaves.Pending(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]LeaveRequestDTO, len(pending))
	for i, l := range pending {
		dtos[i] = toLeaveDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApproveLeave approves a pending request.
// POST /api/leaves/{id}/approve
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.OutcomeApproved)
}

// RejectLeave rejects a pending request.
// POST /api/leaves/{id}/reject
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.OutcomeRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, outcome leave.Outcome) {
	id := leave.RequestID(chi.URLParam(r, "id"))

	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Leaves.Decide(r.Context(), id, outcome, req.Reviewer, req.Note); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// OVERTIME GRANTS
// =============================================================================

// GrantOvertime credits compensatory days to a set of employees.
// POST /api/admin/overtime
func (h *Handler) GrantOvertime(w http.ResponseWriter, r *http.Request) {
	var req OvertimeGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := time.Parse(leave.DateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	days, err := decimal.NewFromString(req.Days)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid days", err)
		return
	}

	err = h.Attendance.GrantOvertime(r.Context(), attendance.GrantInput{
		Usernames: req.Usernames,
		Date:      date,
		Days:      days,
		Reason:    req.Reason,
		GrantedBy: req.GrantedBy,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORTS
// =============================================================================

// MonthlyAttendance returns the attendance report for one month.
// GET /api/reports/attendance/{month}
func (h *Handler) MonthlyAttendance(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")

	lines, err := h.Reports.MonthlyAttendance(r.Context(), month)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	dtos := make([]AttendanceLineDTO, len(lines))
	for i, l := range lines {
		dtos[i] = AttendanceLineDTO{Time: l.Time, Username: l.Username, Name: l.Name, Action: l.Action}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// MonthlyLeaveCalendar returns approved leaves grouped by day-of-month.
// GET /api/reports/leave-calendar/{month}
func (h *Handler) MonthlyLeaveCalendar(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")

	byDay, err := h.Reports.MonthlyLeaveOccupancy(r.Context(), month)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	out := make(map[int][]OccupancyEntryDTO, len(byDay))
	for day, entries := range byDay {
		dtos := make([]OccupancyEntryDTO, len(entries))
		for i, e := range entries {
			dtos[i] = OccupancyEntryDTO{
				Username: e.Username,
				Name:     e.Name,
				Category: string(e.Category),
				Days:     e.Days.String(),
				Session:  string(e.Session),
			}
		}
		out[day] = dtos
	}
	writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// HELPERS
// =============================================================================

func toEmployeeDTO(e roster.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		Username:   e.Username,
		Name:       e.Name,
		Title:      e.Title,
		Department: e.Department,
		Role:       string(e.Role),
		Status:     string(e.Status),
		Email:      e.Email,
	}
	if !e.Onboard.IsZero() {
		dto.Onboard = e.Onboard.Format(leave.DateLayout)
	}
	return dto
}

func toLeaveDTO(l leave.Request) LeaveRequestDTO {
	return LeaveRequestDTO{
		ID:        string(l.ID),
		Username:  l.Username,
		Category:  string(l.Category),
		StartDate: l.StartDate.Format(leave.DateLayout),
		Days:      l.Days.String(),
		Session:   string(l.Session),
		Reason:    l.Reason,
		Status:    string(l.Status),
		Note:      l.Note,
	}
}

// writeDomainError maps domain and store errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, roster.ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, "Bad credentials", nil)
	case errors.Is(err, roster.ErrResigned):
		writeError(w, http.StatusForbidden, "Employee has resigned", nil)
	case errors.Is(err, roster.ErrUnknownEmployee):
		writeError(w, http.StatusNotFound, "Unknown employee", err)
	case errors.Is(err, leave.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "Leave request not found", err)
	case errors.Is(err, leave.ErrAlreadyDecided):
		writeError(w, http.StatusConflict, "Leave request already decided", err)
	case errors.Is(err, report.ErrBadMonth):
		writeError(w, http.StatusBadRequest, "Month must be YYYY-MM", err)
	case errors.Is(err, leave.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, "Insufficient balance", err)
	case leave.IsValidation(err):
		writeError(w, http.StatusUnprocessableEntity, "Validation failed", err)
	case tablestore.IsThrottled(err):
		writeError(w, http.StatusTooManyRequests, "Store is rate limited, retry shortly", err)
	case tablestore.IsNotFound(err):
		writeError(w, http.StatusServiceUnavailable, "Backing table missing", err)
	default:
		h.Log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
