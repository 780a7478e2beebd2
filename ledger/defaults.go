package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/warp/mortgage-bonus/finance"
)

// Custom bonuses created by Add start from these values.
var (
	CustomBonusName     = "Bonificación personalizada"
	CustomBonusDiscount = decimal.RequireFromString("0.10")
)

// Defaults is the state a ledger starts from and Reset returns to.
type Defaults struct {
	Params  finance.LoanParameters
	Bonuses []finance.Bonus
}

// Clone returns a copy that shares no slice with d.
func (d Defaults) Clone() Defaults {
	return Defaults{Params: d.Params, Bonuses: cloneBonuses(d.Bonuses)}
}

// BuiltinDefaults returns the stock offer: 270,000 over 30 years at 2.7%,
// a 0.85 point combo ceiling, and seven bonuses of which five are enabled.
func BuiltinDefaults() Defaults {
	return Defaults{
		Params: finance.LoanParameters{
			Capital:             decimal.NewFromInt(270000),
			TermYears:           30,
			BaseAnnualRatePct:   decimal.RequireFromString("2.7"),
			MaxComboDiscountPct: decimal.RequireFromString("0.85"),
		},
		Bonuses: []finance.Bonus{
			builtin("nomina", "Domiciliación de nómina", "0.35", "0", true),
			builtin("hogar", "Seguro de hogar", "0.15", "660", true),
			builtin("vida50", "Seguro de vida 50% del capital (1 persona)", "0.20", "338.28", true),
			builtin("vida100_1", "Seguro de vida 100% del capital (1 persona)", "0.35", "676.35", false),
			builtin("vida100_total", "Seguro de vida 100% total 50% + 50% (2 personas)", "0.35", "700.92", false),
			builtin("salud", "Seguro de salud", "0.20", "0", true),
			builtin("alarma", "Alarma Securitas Direct", "0.15", "624.36", true),
		},
	}
}

func builtin(id, name, discount, cost string, enabled bool) finance.Bonus {
	return finance.Bonus{
		ID:          id,
		Name:        name,
		DiscountPct: decimal.RequireFromString(discount),
		AnnualCost:  decimal.RequireFromString(cost),
		Enabled:     enabled,
	}
}
