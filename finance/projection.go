/*
projection.go - Per-bonus and combined savings

PURPOSE:
  Turns a snapshot of loan parameters and bonuses into the figures shown to
  the user: the base payment, what each bonus saves on its own, and what
  the enabled bonuses save together.

INDEPENDENT ROWS:
  Every bonus row is measured against the BASE rate, never against another
  bonus. Rows are not additive: summing two rows' savings is not the
  combined saving. Enabled/disabled does not affect a row.

COMBO CAP:
  The combined discount is min(sum of enabled discounts, ceiling). When the
  ceiling binds, the excess is dropped in aggregate. No bonus is scaled
  down individually and none is blamed for the excess.

NEGATIVE RATES:
  A discount larger than the base rate yields a negative rate. It is kept
  as-is (not floored at zero) and fed to the payment formula unchanged.

SEE ALSO:
  - payment.go: MonthlyPayment
  - types.go: Projection types
*/
package finance

import (
	"github.com/shopspring/decimal"
)

// Evaluate computes the full view for one state.
func Evaluate(params LoanParameters, bonuses []Bonus) (View, error) {
	months := params.Months()
	base, err := MonthlyPayment(params.Capital, params.BaseAnnualRatePct, months)
	if err != nil {
		return View{}, err
	}

	rows := make([]BonusProjection, 0, len(bonuses))
	for _, b := range bonuses {
		row, err := projectAgainst(params, base, b)
		if err != nil {
			return View{}, err
		}
		rows = append(rows, row)
	}

	combo, err := comboAgainst(params, base, bonuses)
	if err != nil {
		return View{}, err
	}

	return View{
		Months:      months,
		BasePayment: base,
		Rows:        rows,
		Combo:       combo,
	}, nil
}

// BasePayment is the payment at the base rate with no bonus.
func BasePayment(params LoanParameters) (decimal.Decimal, error) {
	return MonthlyPayment(params.Capital, params.BaseAnnualRatePct, params.Months())
}

// ProjectBonus measures a single bonus against the base rate.
func ProjectBonus(params LoanParameters, b Bonus) (BonusProjection, error) {
	base, err := BasePayment(params)
	if err != nil {
		return BonusProjection{}, err
	}
	return projectAgainst(params, base, b)
}

// ProjectCombo measures all enabled bonuses together, capped at the ceiling.
func ProjectCombo(params LoanParameters, bonuses []Bonus) (ComboProjection, error) {
	base, err := BasePayment(params)
	if err != nil {
		return ComboProjection{}, err
	}
	return comboAgainst(params, base, bonuses)
}

func projectAgainst(params LoanParameters, base decimal.Decimal, b Bonus) (BonusProjection, error) {
	newRate := params.BaseAnnualRatePct.Sub(b.DiscountPct)
	newPayment, err := MonthlyPayment(params.Capital, newRate, params.Months())
	if err != nil {
		return BonusProjection{}, err
	}

	s := savings(params, base, newPayment, b.AnnualCost)
	return BonusProjection{
		BonusID:       b.ID,
		NewRate:       newRate,
		NewPayment:    newPayment,
		MonthlySaving: s.monthly,
		AnnualSaving:  s.annual,
		NetAnnual:     s.netAnnual,
		NetOverTerm:   s.netTerm,
	}, nil
}

func comboAgainst(params LoanParameters, base decimal.Decimal, bonuses []Bonus) (ComboProjection, error) {
	sum, applied := comboDiscount(params, bonuses)
	cost := decimal.Zero
	enabled := 0
	for _, b := range bonuses {
		if b.Enabled {
			cost = cost.Add(b.AnnualCost)
			enabled++
		}
	}

	rate := params.BaseAnnualRatePct.Sub(applied)
	payment, err := MonthlyPayment(params.Capital, rate, params.Months())
	if err != nil {
		return ComboProjection{}, err
	}

	s := savings(params, base, payment, cost)
	return ComboProjection{
		SumDiscount:     sum,
		AppliedDiscount: applied,
		Capped:          sum.GreaterThan(params.MaxComboDiscountPct),
		ComboRate:       rate,
		ComboPayment:    payment,
		MonthlySaving:   s.monthly,
		AnnualSaving:    s.annual,
		AnnualCost:      cost,
		NetAnnual:       s.netAnnual,
		NetOverTerm:     s.netTerm,
		EnabledCount:    enabled,
	}, nil
}

// comboDiscount sums the enabled discounts and caps the total at the ceiling.
func comboDiscount(params LoanParameters, bonuses []Bonus) (sum, applied decimal.Decimal) {
	sum = decimal.Zero
	for _, b := range bonuses {
		if b.Enabled {
			sum = sum.Add(b.DiscountPct)
		}
	}
	return sum, decimal.Min(sum, params.MaxComboDiscountPct)
}

type savingFigures struct {
	monthly   decimal.Decimal
	annual    decimal.Decimal
	netAnnual decimal.Decimal
	netTerm   decimal.Decimal
}

func savings(params LoanParameters, base, payment, annualCost decimal.Decimal) savingFigures {
	monthly := base.Sub(payment)
	annual := monthly.Mul(twelve)
	months := decimal.NewFromInt(int64(params.Months()))
	years := decimal.NewFromInt(int64(params.TermYears))
	return savingFigures{
		monthly:   monthly,
		annual:    annual,
		netAnnual: annual.Sub(annualCost),
		netTerm:   monthly.Mul(months).Sub(annualCost.Mul(years)),
	}
}
