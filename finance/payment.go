package finance

import (
	"github.com/shopspring/decimal"
)

// powPrecision bounds the digits kept while raising (1+r) to the term.
// Exact products of a 360-month term would carry thousands of digits.
const powPrecision = 28

// MonthlyRate converts an annual percentage rate to a monthly fraction.
func MonthlyRate(annualRatePct decimal.Decimal) decimal.Decimal {
	return annualRatePct.Div(hundred).Div(twelve)
}

// MonthlyPayment returns the fixed payment of a French (annuity) amortization.
//
// A zero rate amortizes linearly (P / months). Otherwise the payment is
// P*r / (1 - (1+r)^-n), evaluated as P*r*f / (f-1) with f = (1+r)^n.
// The result is not rounded. Capital is not validated; months must be > 0.
func MonthlyPayment(capital, annualRatePct decimal.Decimal, months int) (decimal.Decimal, error) {
	if months <= 0 {
		return decimal.Zero, &TermError{Months: months}
	}

	n := decimal.NewFromInt(int64(months))
	r := MonthlyRate(annualRatePct)
	if r.IsZero() {
		return capital.Div(n), nil
	}

	f := powInt(one.Add(r), months)
	denom := f.Sub(one)
	if denom.IsZero() {
		// r too small to move f at this precision
		return capital.Div(n), nil
	}
	return capital.Mul(r).Mul(f).Div(denom), nil
}

// powInt raises base to a non-negative integer power by squaring.
func powInt(base decimal.Decimal, n int) decimal.Decimal {
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(powPrecision)
		}
		base = base.Mul(base).Round(powPrecision)
		n >>= 1
	}
	return result
}
