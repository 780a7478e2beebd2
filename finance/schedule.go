package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxScheduleMonths caps the rows of one amortization table (100 years).
// Payments are computed for any term; only the table is bounded.
const MaxScheduleMonths = 1200

// ScheduleRow is one month of an amortization table.
type ScheduleRow struct {
	Month     int
	Payment   decimal.Decimal
	Interest  decimal.Decimal
	Principal decimal.Decimal
	Balance   decimal.Decimal
}

// Schedule builds the month-by-month amortization table for a French loan.
//
// Each row is settled to cents. The last row pays off whatever balance the
// rounding left behind, so principal always sums to the capital and the
// final balance is zero. Terms over MaxScheduleMonths fail with
// ErrScheduleTooLong.
func Schedule(capital, annualRatePct decimal.Decimal, months int) ([]ScheduleRow, error) {
	if months > MaxScheduleMonths {
		return nil, fmt.Errorf("%w: %d months, limit %d", ErrScheduleTooLong, months, MaxScheduleMonths)
	}
	payment, err := MonthlyPayment(capital, annualRatePct, months)
	if err != nil {
		return nil, err
	}
	payment = payment.Round(2)
	r := MonthlyRate(annualRatePct)

	rows := make([]ScheduleRow, 0, months)
	balance := capital.Round(2)
	for m := 1; m <= months; m++ {
		interest := balance.Mul(r).Round(2)
		principal := payment.Sub(interest)
		if m == months {
			principal = balance
		}
		balance = balance.Sub(principal)
		rows = append(rows, ScheduleRow{
			Month:     m,
			Payment:   principal.Add(interest),
			Interest:  interest,
			Principal: principal,
			Balance:   balance,
		})
	}
	return rows, nil
}

// ScheduleFor resolves a rate selector against a view and builds its schedule.
// The selector is "base", "combo" or a bonus id.
func ScheduleFor(params LoanParameters, bonuses []Bonus, selector string) ([]ScheduleRow, error) {
	rate, err := RateFor(params, bonuses, selector)
	if err != nil {
		return nil, err
	}
	return Schedule(params.Capital, rate, params.Months())
}

// RateFor returns the annual rate a selector stands for.
func RateFor(params LoanParameters, bonuses []Bonus, selector string) (decimal.Decimal, error) {
	switch selector {
	case "", "base":
		return params.BaseAnnualRatePct, nil
	case "combo":
		_, applied := comboDiscount(params, bonuses)
		return params.BaseAnnualRatePct.Sub(applied), nil
	}
	for _, b := range bonuses {
		if b.ID == selector {
			return params.BaseAnnualRatePct.Sub(b.DiscountPct), nil
		}
	}
	return decimal.Zero, ErrUnknownRate
}
