/*
errors.go - Error types for the leave engine and lifecycle

ERROR CATEGORIES:
  1. Validation errors - bad input shape (half-day without session, etc.)
  2. Balance errors    - category-specific gate failures
  3. Lifecycle errors  - missing or already-decided requests

Store-level failures (NotFound/Throttled/Unavailable) pass through from
the tablestore package unwrapped, so callers can use its predicates.
*/
package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientBalance is returned when a bankable-category request
	// exceeds the current ledger balance. Nothing is appended.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrRequestNotFound is returned when a decision targets an id that is
	// not in the leaves table.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrAlreadyDecided is returned when a decision targets a request that
	// is already terminal. Protects against double-debit.
	ErrAlreadyDecided = errors.New("leave request already decided")
)

// ValidationError reports invalid submission input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InsufficientBalanceError carries the shortfall details.
type InsufficientBalanceError struct {
	Username  string
	Category  Category
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance for %s: available %s, requested %s",
		e.Category, e.Username, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// IsValidation reports whether err is a submission validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
