/*
Package roster manages the employee directory and credential lookup.

PURPOSE:
  Employees live in the users table: profile fields, role, employment
  status, onboarding date. Login is a simple credential lookup against that
  table - no tokens, no sessions; the caller holds the identity it gets
  back. A resigned employee can never log in again.

PASSWORDS:
  New rows store bcrypt hashes. Rows imported from the spreadsheet era hold
  plain text; Login falls back to direct comparison for those so imports
  keep working, and SetPassword upgrades a row to bcrypt on change.
*/
package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cumulus-hr/cumulus/tablestore"
)

// =============================================================================
// MODEL
// =============================================================================

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// CanReview reports whether the role may decide leave requests and grant
// compensatory credits.
func (r Role) CanReview() bool { return r == RoleManager || r == RoleAdmin }

type EmployeeStatus string

const (
	StatusActive   EmployeeStatus = "active"
	StatusResigned EmployeeStatus = "resigned"
)

// Employee is one row of the users table, typed. Password hashes never
// leave this package.
type Employee struct {
	Username   string
	Name       string
	Title      string
	Department string
	Role       Role
	Status     EmployeeStatus
	Onboard    time.Time
	Resigned   time.Time // zero when still active
	Email      string
}

const dateLayout = "2006-01-02"

var (
	// ErrUnknownEmployee is returned when the username has no row.
	ErrUnknownEmployee = errors.New("unknown employee")

	// ErrBadCredentials is returned when the password does not match.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrResigned is returned when a resigned employee attempts to log in.
	ErrResigned = errors.New("employee has resigned")

	// ErrDuplicateUsername is returned when creating an employee whose
	// username is taken.
	ErrDuplicateUsername = errors.New("username already exists")
)

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	store tablestore.Store
}

func NewService(store tablestore.Store) *Service {
	return &Service{store: store}
}

func (s *Service) rows(ctx context.Context) ([]tablestore.Record, error) {
	schema, _ := tablestore.SchemaFor(tablestore.TableUsers)
	return tablestore.ReadNormalized(ctx, s.store, schema)
}

func employeeFromRecord(rec tablestore.Record) Employee {
	emp := Employee{
		Username:   rec["username"],
		Name:       rec["name"],
		Title:      rec["title"],
		Department: rec["department"],
		Role:       Role(rec["role"]),
		Status:     EmployeeStatus(rec["status"]),
		Email:      rec["email"],
	}
	if t, err := time.Parse(dateLayout, rec["onboard_date"]); err == nil {
		emp.Onboard = t
	}
	if t, err := time.Parse(dateLayout, rec["resign_date"]); err == nil {
		emp.Resigned = t
	}
	return emp
}

// Get returns one employee by username.
func (s *Service) Get(ctx context.Context, username string) (Employee, error) {
	recs, err := s.rows(ctx)
	if err != nil {
		return Employee{}, err
	}
	for _, rec := range recs {
		if rec["username"] == username {
			return employeeFromRecord(rec), nil
		}
	}
	return Employee{}, fmt.Errorf("%w: %s", ErrUnknownEmployee, username)
}

// All returns every employee in sheet order.
func (s *Service) All(ctx context.Context) ([]Employee, error) {
	recs, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(recs))
	for _, rec := range recs {
		out = append(out, employeeFromRecord(rec))
	}
	return out, nil
}

// Active returns employees whose status is active, in sheet order.
// Batch operations (overtime grants) target this set.
func (s *Service) Active(ctx context.Context) ([]Employee, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []Employee
	for _, e := range all {
		if e.Status == StatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

// Names returns a username -> display name index for report joins.
func (s *Service) Names(ctx context.Context) (map[string]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(all))
	for _, e := range all {
		names[e.Username] = e.Name
	}
	return names, nil
}

// =============================================================================
// LOGIN
// =============================================================================

// Login verifies credentials and returns the employee. A resigned status
// blocks with ErrResigned even when the password matches.
func (s *Service) Login(ctx context.Context, username, password string) (Employee, error) {
	recs, err := s.rows(ctx)
	if err != nil {
		return Employee{}, err
	}

	for _, rec := range recs {
		if rec["username"] != username {
			continue
		}
		if !passwordMatches(rec["password"], password) {
			return Employee{}, ErrBadCredentials
		}
		emp := employeeFromRecord(rec)
		if emp.Status == StatusResigned {
			return Employee{}, ErrResigned
		}
		return emp, nil
	}
	// Same error as a wrong password, so login cannot probe usernames.
	return Employee{}, ErrBadCredentials
}

func passwordMatches(stored, given string) bool {
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	// Legacy plain-text row from the spreadsheet import.
	return stored != "" && stored == given
}

// =============================================================================
// ADMIN MUTATIONS - whole-table rewrites
// =============================================================================

// CreateInput is a new employee as entered by an admin.
type CreateInput struct {
	Username   string
	Password   string
	Name       string
	Title      string
	Department string
	Role       Role
	Onboard    time.Time
	Email      string
}

// Create appends a new employee row with a bcrypt password hash.
func (s *Service) Create(ctx context.Context, in CreateInput) error {
	if in.Username == "" || in.Password == "" {
		return errors.New("username and password are required")
	}

	recs, err := s.rows(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec["username"] == in.Username {
			return fmt.Errorf("%w: %s", ErrDuplicateUsername, in.Username)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	role := in.Role
	if role == "" {
		role = RoleEmployee
	}

	schema, _ := tablestore.SchemaFor(tablestore.TableUsers)
	rec := tablestore.Record{
		"username":     in.Username,
		"password":     string(hash),
		"name":         in.Name,
		"title":        in.Title,
		"department":   in.Department,
		"role":         string(role),
		"status":       string(StatusActive),
		"onboard_date": in.Onboard.Format(dateLayout),
		"email":        in.Email,
	}
	return s.store.AppendRow(ctx, tablestore.TableUsers, schema.Row(rec))
}

// MarkResigned sets the resigned status and date, blocking future logins.
func (s *Service) MarkResigned(ctx context.Context, username string, on time.Time) error {
	return s.update(ctx, username, func(rec tablestore.Record) {
		rec["status"] = string(StatusResigned)
		rec["resign_date"] = on.Format(dateLayout)
	})
}

// SetPassword replaces the stored credential with a bcrypt hash, upgrading
// legacy plain-text rows as a side effect.
func (s *Service) SetPassword(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.update(ctx, username, func(rec tablestore.Record) {
		rec["password"] = string(hash)
	})
}

func (s *Service) update(ctx context.Context, username string, mutate func(tablestore.Record)) error {
	recs, err := s.rows(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, rec := range recs {
		if rec["username"] == username {
			mutate(rec)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownEmployee, username)
	}

	schema, _ := tablestore.SchemaFor(tablestore.TableUsers)
	return s.store.ReplaceTable(ctx, tablestore.TableUsers, schema.Columns, schema.Rows(recs))
}
