/*
Package finance provides the mortgage payment engine.

PURPOSE:
  Pure, deterministic calculations over a snapshot of loan parameters and
  bonuses. Nothing in this package holds state: every derived figure is
  recomputed from its inputs on each call.

KEY CONCEPTS IN THIS FILE (types.go):
  - LoanParameters: capital, term, base rate and the combo discount ceiling
  - Bonus: a rate discount bought with an annual cost
  - BonusProjection / ComboProjection / View: derived values, never stored

UNITS:
  Rates and discounts are percentage points (2.7 means 2.7% per year).
  Money is currency units (EUR in the default configuration).

PRECISION:
  All arithmetic uses decimal.Decimal. Rounding is a presentation concern
  and never happens here, except inside the amortization schedule where
  balances are settled to cents.

SEE ALSO:
  - payment.go: Monthly payment formula
  - projection.go: Per-bonus and combined projections
  - parse.go: Numeric text parser
*/
package finance

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// LOAN PARAMETERS
// =============================================================================

// LoanParameters are the user-editable inputs of the loan.
type LoanParameters struct {
	Capital             decimal.Decimal
	TermYears           int
	BaseAnnualRatePct   decimal.Decimal
	MaxComboDiscountPct decimal.Decimal
}

// Months returns the number of monthly payments.
func (p LoanParameters) Months() int {
	return p.TermYears * 12
}

// =============================================================================
// BONUS
// =============================================================================

// Bonus is a product that lowers the interest rate in exchange for an annual cost.
type Bonus struct {
	ID          string
	Name        string
	DiscountPct decimal.Decimal
	AnnualCost  decimal.Decimal
	Enabled     bool
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// BonusProjection is the effect of a single bonus measured against the base rate.
type BonusProjection struct {
	BonusID       string
	NewRate       decimal.Decimal
	NewPayment    decimal.Decimal
	MonthlySaving decimal.Decimal
	AnnualSaving  decimal.Decimal
	NetAnnual     decimal.Decimal

	// NetOverTerm is the net saving across the whole term ("30 years" in the
	// default configuration).
	NetOverTerm decimal.Decimal
}

// ComboProjection is the effect of all enabled bonuses together.
type ComboProjection struct {
	SumDiscount     decimal.Decimal
	AppliedDiscount decimal.Decimal
	Capped          bool
	ComboRate       decimal.Decimal
	ComboPayment    decimal.Decimal
	MonthlySaving   decimal.Decimal
	AnnualSaving    decimal.Decimal
	AnnualCost      decimal.Decimal
	NetAnnual       decimal.Decimal
	NetOverTerm     decimal.Decimal
	EnabledCount    int
}

// View is everything a presentation layer needs to render one state.
type View struct {
	Months      int
	BasePayment decimal.Decimal
	Rows        []BonusProjection
	Combo       ComboProjection
}

// Row returns the projection for a bonus id.
func (v View) Row(bonusID string) (BonusProjection, bool) {
	for _, r := range v.Rows {
		if r.BonusID == bonusID {
			return r, true
		}
	}
	return BonusProjection{}, false
}

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	one     = decimal.NewFromInt(1)
)
