/*
errors.go - Error taxonomy for the table store boundary

PURPOSE:
  Every store implementation maps its native failures onto these three
  sentinels so the domain layer can branch without knowing the backend:

    ErrNotFound    - missing worksheet/table
    ErrThrottled   - upstream rate limit; retry after a cool-down
    ErrUnavailable - any other I/O or auth failure

POLICY:
  Throttled must never partially apply a mutation. NotFound/Unavailable
  during a read are fatal to the current operation - there is no cached
  fallback to serve stale data from. Retry policy belongs to the adapter,
  not to the accounting logic.
*/
package tablestore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the named table does not exist.
	ErrNotFound = errors.New("table not found")

	// ErrThrottled is returned when the upstream rate limit was hit.
	// The operation was not applied; retrying after a cool-down is safe.
	ErrThrottled = errors.New("store throttled")

	// ErrUnavailable is returned for any other I/O or auth failure.
	ErrUnavailable = errors.New("store unavailable")
)

// NotFoundError carries the table name that was missing.
type NotFoundError struct {
	Table string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("table %q not found", e.Table) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IsNotFound reports whether err indicates a missing table.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsThrottled reports whether err is an upstream rate limit. Callers should
// surface "retry later" rather than a hard failure.
func IsThrottled(err error) bool { return errors.Is(err, ErrThrottled) }

// IsUnavailable reports whether err is a generic backend failure.
func IsUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
