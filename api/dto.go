/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the decimal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

NUMBERS:
  Responses carry money and rates as JSON numbers. Requests carry them as
  NumberText: a JSON string or number holding the raw text a user typed.
  It goes through finance.ParseNumber, so "2,7" means 2.7 and garbage
  means 0. Bad numbers never fail a request.

SEE ALSO:
  - handlers.go: Uses these types
  - finance/parse.go: ParseNumber
*/
package api

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/mortgage-bonus/finance"
	"github.com/warp/mortgage-bonus/ledger"
	"github.com/warp/mortgage-bonus/session"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// NumberText is user-entered numeric text.
type NumberText string

// UnmarshalJSON accepts both "2,7" and 2.7.
func (n *NumberText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberText(s)
		return nil
	}
	*n = NumberText(data)
	return nil
}

// Decimal parses the text. Nil stays nil so absent fields are left untouched.
func (n *NumberText) Decimal() *decimal.Decimal {
	if n == nil {
		return nil
	}
	d := finance.ParseNumber(string(*n))
	return &d
}

// UpdateParamsRequest edits loan parameters. Absent fields are unchanged.
type UpdateParamsRequest struct {
	Capital             *NumberText `json:"capital"`
	TermYears           *NumberText `json:"term_years"`
	BaseRatePct         *NumberText `json:"base_rate_pct"`
	MaxComboDiscountPct *NumberText `json:"max_combo_discount_pct"`
}

func (r UpdateParamsRequest) patch() ledger.ParamsPatch {
	return ledger.ParamsPatch{
		Capital:             r.Capital.Decimal(),
		TermYears:           r.TermYears.Decimal(),
		BaseAnnualRatePct:   r.BaseRatePct.Decimal(),
		MaxComboDiscountPct: r.MaxComboDiscountPct.Decimal(),
	}
}

// UpdateBonusRequest edits one bonus. Absent fields are unchanged.
type UpdateBonusRequest struct {
	Name        *string     `json:"name"`
	DiscountPct *NumberText `json:"discount_pct"`
	AnnualCost  *NumberText `json:"annual_cost"`
	Enabled     *bool       `json:"enabled"`
}

func (r UpdateBonusRequest) patch() ledger.BonusPatch {
	return ledger.BonusPatch{
		Name:        r.Name,
		DiscountPct: r.DiscountPct.Decimal(),
		AnnualCost:  r.AnnualCost.Decimal(),
		Enabled:     r.Enabled,
	}
}

// SaveScenarioRequest names the snapshot being saved.
type SaveScenarioRequest struct {
	Name string `json:"name"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ParamsDTO represents loan parameters.
type ParamsDTO struct {
	Capital             float64 `json:"capital"`
	TermYears           int     `json:"term_years"`
	Months              int     `json:"months"`
	BaseRatePct         float64 `json:"base_rate_pct"`
	MaxComboDiscountPct float64 `json:"max_combo_discount_pct"`
}

// BonusDTO represents a bonus.
type BonusDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	DiscountPct float64 `json:"discount_pct"`
	AnnualCost  float64 `json:"annual_cost"`
	Enabled     bool    `json:"enabled"`
}

// BonusProjectionDTO is one row of the per-bonus table.
type BonusProjectionDTO struct {
	BonusID       string  `json:"bonus_id"`
	NewRate       float64 `json:"new_rate"`
	NewPayment    float64 `json:"new_payment"`
	MonthlySaving float64 `json:"monthly_saving"`
	AnnualSaving  float64 `json:"annual_saving"`
	NetAnnual     float64 `json:"net_annual"`
	Net30y        float64 `json:"net_30y"`
}

// ComboDTO is the combined effect of the enabled bonuses.
type ComboDTO struct {
	SumDiscount     float64 `json:"sum_discount"`
	AppliedDiscount float64 `json:"applied_discount"`
	Capped          bool    `json:"capped"`
	ComboRate       float64 `json:"combo_rate"`
	ComboPayment    float64 `json:"combo_payment"`
	MonthlySaving   float64 `json:"monthly_saving"`
	AnnualSaving    float64 `json:"annual_saving"`
	AnnualCost      float64 `json:"annual_cost"`
	NetAnnual       float64 `json:"net_annual"`
	Net30y          float64 `json:"net_30y"`
	EnabledCount    int     `json:"enabled_count"`
}

// ViewDTO is everything derived from one state.
type ViewDTO struct {
	Months      int                  `json:"months"`
	BasePayment float64              `json:"base_payment"`
	Rows        []BonusProjectionDTO `json:"rows"`
	Combo       ComboDTO             `json:"combo"`
}

// PendingDTO is the bonus that can still be restored with undo.
type PendingDTO struct {
	Bonus     BonusDTO `json:"bonus"`
	ExpiresAt string   `json:"expires_at"`
}

// SessionDTO is a session's full state.
type SessionDTO struct {
	ID      string      `json:"id"`
	Params  ParamsDTO   `json:"params"`
	Bonuses []BonusDTO  `json:"bonuses"`
	Pending *PendingDTO `json:"pending,omitempty"`
	View    *ViewDTO    `json:"view,omitempty"`
}

// ScenarioDTO represents a saved scenario.
type ScenarioDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Params    ParamsDTO  `json:"params"`
	Bonuses   []BonusDTO `json:"bonuses"`
	CreatedAt string     `json:"created_at"`
}

// ScheduleRowDTO is one month of an amortization table.
type ScheduleRowDTO struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
	Balance   float64 `json:"balance"`
}

// ScheduleDTO is an amortization table for one rate.
type ScheduleDTO struct {
	Rate     string           `json:"rate"`
	RatePct  float64          `json:"rate_pct"`
	Months   int              `json:"months"`
	Interest float64          `json:"total_interest"`
	Rows     []ScheduleRowDTO `json:"rows"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func toParamsDTO(p finance.LoanParameters) ParamsDTO {
	return ParamsDTO{
		Capital:             num(p.Capital),
		TermYears:           p.TermYears,
		Months:              p.Months(),
		BaseRatePct:         num(p.BaseAnnualRatePct),
		MaxComboDiscountPct: num(p.MaxComboDiscountPct),
	}
}

func toBonusDTO(b finance.Bonus) BonusDTO {
	return BonusDTO{
		ID:          b.ID,
		Name:        b.Name,
		DiscountPct: num(b.DiscountPct),
		AnnualCost:  num(b.AnnualCost),
		Enabled:     b.Enabled,
	}
}

func toBonusDTOs(bonuses []finance.Bonus) []BonusDTO {
	dtos := make([]BonusDTO, len(bonuses))
	for i, b := range bonuses {
		dtos[i] = toBonusDTO(b)
	}
	return dtos
}

func toViewDTO(v finance.View) ViewDTO {
	dto := ViewDTO{
		Months:      v.Months,
		BasePayment: num(v.BasePayment),
		Rows:        make([]BonusProjectionDTO, len(v.Rows)),
		Combo: ComboDTO{
			SumDiscount:     num(v.Combo.SumDiscount),
			AppliedDiscount: num(v.Combo.AppliedDiscount),
			Capped:          v.Combo.Capped,
			ComboRate:       num(v.Combo.ComboRate),
			ComboPayment:    num(v.Combo.ComboPayment),
			MonthlySaving:   num(v.Combo.MonthlySaving),
			AnnualSaving:    num(v.Combo.AnnualSaving),
			AnnualCost:      num(v.Combo.AnnualCost),
			NetAnnual:       num(v.Combo.NetAnnual),
			Net30y:          num(v.Combo.NetOverTerm),
			EnabledCount:    v.Combo.EnabledCount,
		},
	}
	for i, r := range v.Rows {
		dto.Rows[i] = BonusProjectionDTO{
			BonusID:       r.BonusID,
			NewRate:       num(r.NewRate),
			NewPayment:    num(r.NewPayment),
			MonthlySaving: num(r.MonthlySaving),
			AnnualSaving:  num(r.AnnualSaving),
			NetAnnual:     num(r.NetAnnual),
			Net30y:        num(r.NetOverTerm),
		}
	}
	return dto
}

func toSessionDTO(st session.State) SessionDTO {
	dto := SessionDTO{
		ID:      st.SessionID,
		Params:  toParamsDTO(st.Params),
		Bonuses: toBonusDTOs(st.Bonuses),
	}
	if st.Pending != nil {
		dto.Pending = &PendingDTO{
			Bonus:     toBonusDTO(st.Pending.Bonus),
			ExpiresAt: st.PendingExpiresAt.Format(time.RFC3339Nano),
		}
	}
	return dto
}

func toScenarioDTO(sc ledger.Scenario) ScenarioDTO {
	return ScenarioDTO{
		ID:        sc.ID,
		Name:      sc.Name,
		Params:    toParamsDTO(sc.Params),
		Bonuses:   toBonusDTOs(sc.Bonuses),
		CreatedAt: sc.CreatedAt.Format(time.RFC3339),
	}
}

func toScheduleDTO(selector string, rate decimal.Decimal, rows []finance.ScheduleRow) ScheduleDTO {
	dto := ScheduleDTO{
		Rate:    selector,
		RatePct: num(rate),
		Months:  len(rows),
		Rows:    make([]ScheduleRowDTO, len(rows)),
	}
	interest := decimal.Zero
	for i, r := range rows {
		interest = interest.Add(r.Interest)
		dto.Rows[i] = ScheduleRowDTO{
			Month:     r.Month,
			Payment:   num(r.Payment),
			Interest:  num(r.Interest),
			Principal: num(r.Principal),
			Balance:   num(r.Balance),
		}
	}
	dto.Interest = num(interest)
	return dto
}
