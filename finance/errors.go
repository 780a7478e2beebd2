/*
errors.go - Error types for the payment engine

PURPOSE:
  The engine has almost no failure modes: malformed input text degrades to
  zero in the parser, and unknown ids are no-ops in the ledger. The one
  precondition that cannot degrade safely is the term: a loan with zero or
  negative months has no payment, so it fails fast instead of producing
  NaN or Infinity.

USAGE:
  if errors.Is(err, finance.ErrNonPositiveTerm) {
      // 422 at the HTTP boundary
  }

SEE ALSO:
  - payment.go: Returns TermError
  - schedule.go: Returns ErrScheduleTooLong
  - ledger/errors.go: Ledger and scenario errors
*/
package finance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNonPositiveTerm is returned when a payment is requested for months <= 0.
	ErrNonPositiveTerm = errors.New("term must be at least one month")

	// ErrUnknownRate is returned when a schedule is requested for a rate
	// selector that matches neither the base, the combo nor a bonus id.
	ErrUnknownRate = errors.New("unknown rate selector")

	// ErrScheduleTooLong is returned when an amortization table would have
	// more than MaxScheduleMonths rows.
	ErrScheduleTooLong = errors.New("schedule too long")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// TermError carries the offending number of months.
type TermError struct {
	Months int
}

func (e *TermError) Error() string {
	return fmt.Sprintf("invalid term: %d months", e.Months)
}

func (e *TermError) Unwrap() error {
	return ErrNonPositiveTerm
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNonPositiveTerm) ||
		errors.Is(err, ErrUnknownRate) ||
		errors.Is(err, ErrScheduleTooLong)
}
