/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface. These decouple the domain model
  from the external contract: day amounts serialize as strings to keep the
  0.5-day granularity exact, dates as YYYY-MM-DD.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Shape validation happens in handlers; business validation (sessions,
  balance gates) happens in the leave package and surfaces through the
  error mapping in handlers.go.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

// =============================================================================
// EMPLOYEES / LOGIN
// =============================================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type EmployeeDTO struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Department string `json:"department"`
	Role       string `json:"role"`
	Status     string `json:"status"`
	Onboard    string `json:"onboard_date"`
	Email      string `json:"email,omitempty"`
}

type CreateEmployeeRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Department string `json:"department"`
	Role       string `json:"role"`
	Onboard    string `json:"onboard_date"` // YYYY-MM-DD
	Email      string `json:"email"`
}

// =============================================================================
// BALANCES
// =============================================================================

type SummaryDTO struct {
	Username        string            `json:"username"`
	AsOf            string            `json:"as_of"`
	AnnualEntitled  string            `json:"annual_entitled"`
	AnnualUsed      string            `json:"annual_used"`
	AnnualRemaining string            `json:"annual_remaining"`
	SickUsed        string            `json:"sick_used"`
	SickRemaining   string            `json:"sick_remaining"`
	Bankable        map[string]string `json:"bankable"`
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

type SubmitLeaveRequest struct {
	Category  string `json:"category"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	Days      string `json:"days"`       // decimal, 0.5 granularity
	Session   string `json:"session,omitempty"`
	Reason    string `json:"reason"`
}

type SubmitLeaveResponse struct {
	ID       string `json:"id"`
	Advisory string `json:"advisory,omitempty"`
}

type LeaveRequestDTO struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Category  string `json:"category"`
	StartDate string `json:"start_date"`
	Days      string `json:"days"`
	Session   string `json:"session"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
}

type DecideRequest struct {
	Reviewer string `json:"reviewer"`
	Note     string `json:"note"`
}

// =============================================================================
// ATTENDANCE / OVERTIME
// =============================================================================

type ClockRequest struct {
	Action string `json:"action"` // clock_in | clock_out
}

type AttendanceEventDTO struct {
	Username string `json:"username"`
	Time     string `json:"time"`
	Action   string `json:"action"`
}

type OvertimeGrantRequest struct {
	Usernames []string `json:"usernames"`
	Date      string   `json:"date"` // YYYY-MM-DD
	Days      string   `json:"days"`
	Reason    string   `json:"reason"`
	GrantedBy string   `json:"granted_by"`
}

type OvertimeDTO struct {
	Username  string `json:"username"`
	Date      string `json:"date"`
	Days      string `json:"days"`
	Reason    string `json:"reason"`
	GrantedBy string `json:"granted_by"`
}

// RecordsDTO bundles one employee's history for the records view.
type RecordsDTO struct {
	Attendance []AttendanceEventDTO `json:"attendance"`
	Leaves     []LeaveRequestDTO    `json:"leaves"`
	Overtime   []OvertimeDTO        `json:"overtime"`
}

// =============================================================================
// REPORTS
// =============================================================================

type AttendanceLineDTO struct {
	Time     string `json:"time"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Action   string `json:"action"`
}

type OccupancyEntryDTO struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Days     string `json:"days"`
	Session  string `json:"session"`
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
