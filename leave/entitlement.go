/*
entitlement.go - Tenure-based annual leave entitlement

PURPOSE:
  Statutory annual-leave entitlement is a step function on tenure. Tenure is
  the elapsed time between onboarding and the reference date, decomposed
  into whole years and remainder months (calendar decomposition, the same
  way HR reads "1 year 3 months" off a calendar - not day counts divided
  by 365).

THE STEPS (lower bound of each band is inclusive, no interpolation):
  tenure < 0              -> 0
  0 years, >= 6 months    -> 3
  1 year                  -> 7
  2 years                 -> 10
  3-4 years               -> 14
  5-9 years               -> 15
  >= 10 years             -> 15 + (years - 10), capped at 30
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// SickCap is the statutory yearly sick-leave allowance. Remaining sick
// leave may go negative; callers decide whether to block or warn.
var SickCap = decimal.NewFromInt(30)

// Tenure decomposes the span from onboard to asOf into whole years and
// remainder months. Negative spans yield negative years.
func Tenure(onboard, asOf time.Time) (years, months int) {
	years = asOf.Year() - onboard.Year()
	months = int(asOf.Month()) - int(onboard.Month())
	if asOf.Day() < onboard.Day() {
		months--
	}
	if months < 0 {
		years--
		months += 12
	}
	return years, months
}

// Entitlement returns the annual-leave days an employee with the given
// onboarding date is entitled to as of the reference date.
func Entitlement(onboard, asOf time.Time) decimal.Decimal {
	years, months := Tenure(onboard, asOf)

	var days int64
	switch {
	case years < 0:
		days = 0
	case years == 0 && months >= 6:
		days = 3
	case years == 1:
		days = 7
	case years == 2:
		days = 10
	case years >= 3 && years < 5:
		days = 14
	case years >= 5 && years < 10:
		days = 15
	case years >= 10:
		days = 15 + int64(years) - 10
		if days > 30 {
			days = 30
		}
	default:
		days = 0
	}
	return decimal.NewFromInt(days)
}
