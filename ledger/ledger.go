/*
Package ledger owns the editable state of the calculator.

PURPOSE:
  The Ledger holds the loan parameters and the ordered bonus collection,
  and applies every user edit to them. It never computes payments: the
  finance package derives all figures from a Snapshot.

MUTATIONS:
  Update(id, patch)  shallow merge; unknown id is a no-op
  Remove(id)         drop the bonus and hold it as the pending undo
  Undo()             put the pending bonus back at the FRONT of the list
  Add()              append a custom bonus with a collision-free id
  Reset()            restore the defaults, drop the pending undo
  SetCapital, SetTermYears, SetBaseRate, SetMaxComboDiscount, ApplyParams
                     loan parameter setters

EFFECTS:
  Mutations that touch the pending undo return an Effect telling the owner
  what to do with the expiry timer. The ledger itself never starts timers:

    Remove  -> EffectScheduleExpiry{token}  (cancel any prior timer first)
    Undo    -> EffectCancelExpiry
    Reset   -> EffectCancelExpiry

  When the timer fires, the owner calls Expire(token). A token that no
  longer matches the pending removal is ignored, so a stale timer can never
  clear a newer removal.

CONCURRENCY:
  Not safe for concurrent use. session.Session serialises access.

SEE ALSO:
  - defaults.go: Built-in loan and bonus defaults
  - session/session.go: Applies Effects with time.AfterFunc
*/
package ledger

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/warp/mortgage-bonus/finance"
)

// =============================================================================
// EFFECTS
// =============================================================================

// UndoToken identifies one removal. Tokens are never reused within a Ledger.
type UndoToken uint64

// EffectKind tells the owner what to do with the undo-expiry timer.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectScheduleExpiry
	EffectCancelExpiry
)

func (k EffectKind) String() string {
	switch k {
	case EffectScheduleExpiry:
		return "schedule_expiry"
	case EffectCancelExpiry:
		return "cancel_expiry"
	default:
		return "none"
	}
}

// Effect is the side effect a mutation asks its owner to perform.
type Effect struct {
	Kind  EffectKind
	Token UndoToken
}

// Pending is a removed bonus that can still be restored.
type Pending struct {
	Bonus finance.Bonus
	Token UndoToken
}

// =============================================================================
// PATCHES
// =============================================================================

// BonusPatch holds the fields to overwrite. Nil fields are left untouched.
// The id is not patchable.
type BonusPatch struct {
	Name        *string
	DiscountPct *decimal.Decimal
	AnnualCost  *decimal.Decimal
	Enabled     *bool
}

// ParamsPatch holds loan parameter edits. Nil fields are left untouched.
type ParamsPatch struct {
	Capital             *decimal.Decimal
	TermYears           *decimal.Decimal
	BaseAnnualRatePct   *decimal.Decimal
	MaxComboDiscountPct *decimal.Decimal
}

// =============================================================================
// LEDGER
// =============================================================================

// Ledger is the calculator state: loan parameters, bonuses and pending undo.
type Ledger struct {
	defaults Defaults

	params  finance.LoanParameters
	bonuses []finance.Bonus
	pending *Pending

	lastToken UndoToken
	customSeq int
}

// New creates a ledger initialised with the given defaults.
func New(defaults Defaults) *Ledger {
	l := &Ledger{defaults: defaults.Clone()}
	l.params = defaults.Params
	l.bonuses = cloneBonuses(defaults.Bonuses)
	return l
}

// Params returns the current loan parameters.
func (l *Ledger) Params() finance.LoanParameters {
	return l.params
}

// Bonuses returns a copy of the bonus collection in display order.
func (l *Ledger) Bonuses() []finance.Bonus {
	return cloneBonuses(l.bonuses)
}

// Pending returns the pending undo, if any.
func (l *Ledger) Pending() (Pending, bool) {
	if l.pending == nil {
		return Pending{}, false
	}
	return *l.pending, true
}

// Evaluate derives the view of the current state.
func (l *Ledger) Evaluate() (finance.View, error) {
	return finance.Evaluate(l.params, l.bonuses)
}

// Update merges patch into the bonus with the given id.
// Returns false if no bonus has that id.
func (l *Ledger) Update(id string, patch BonusPatch) bool {
	i := l.indexOf(id)
	if i < 0 {
		return false
	}
	b := &l.bonuses[i]
	if patch.Name != nil {
		b.Name = *patch.Name
	}
	if patch.DiscountPct != nil {
		b.DiscountPct = *patch.DiscountPct
	}
	if patch.AnnualCost != nil {
		b.AnnualCost = *patch.AnnualCost
	}
	if patch.Enabled != nil {
		b.Enabled = *patch.Enabled
	}
	return true
}

// Remove deletes the bonus with the given id and holds it as the pending undo,
// replacing any earlier pending removal.
func (l *Ledger) Remove(id string) (Effect, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return Effect{Kind: EffectNone}, false
	}
	removed := l.bonuses[i]
	l.bonuses = append(l.bonuses[:i:i], l.bonuses[i+1:]...)

	l.lastToken++
	l.pending = &Pending{Bonus: removed, Token: l.lastToken}
	return Effect{Kind: EffectScheduleExpiry, Token: l.lastToken}, true
}

// Undo restores the pending bonus at the front of the collection.
//
// The original position is not remembered. If another bonus with the same
// id was added since the removal, the restored bonus is dropped instead of
// breaking id uniqueness.
func (l *Ledger) Undo() (Effect, bool) {
	if l.pending == nil {
		return Effect{Kind: EffectNone}, false
	}
	restored := l.pending.Bonus
	l.pending = nil
	if l.indexOf(restored.ID) >= 0 {
		return Effect{Kind: EffectCancelExpiry}, false
	}
	l.bonuses = append([]finance.Bonus{restored}, l.bonuses...)
	return Effect{Kind: EffectCancelExpiry}, true
}

// Expire clears the pending undo if token still identifies it.
func (l *Ledger) Expire(token UndoToken) bool {
	if l.pending == nil || l.pending.Token != token {
		return false
	}
	l.pending = nil
	return true
}

// Add appends a custom bonus and returns it.
func (l *Ledger) Add() finance.Bonus {
	var id string
	for {
		l.customSeq++
		id = fmt.Sprintf("custom_%d", l.customSeq)
		if l.indexOf(id) < 0 && (l.pending == nil || l.pending.Bonus.ID != id) {
			break
		}
	}
	b := finance.Bonus{
		ID:          id,
		Name:        fmt.Sprintf("%s %d", CustomBonusName, l.customSeq),
		DiscountPct: CustomBonusDiscount,
		AnnualCost:  decimal.Zero,
		Enabled:     true,
	}
	l.bonuses = append(l.bonuses, b)
	return b
}

// Reset restores the defaults verbatim and drops the pending undo.
func (l *Ledger) Reset() Effect {
	l.params = l.defaults.Params
	l.bonuses = cloneBonuses(l.defaults.Bonuses)
	l.pending = nil
	return Effect{Kind: EffectCancelExpiry}
}

// Defaults returns the defaults Reset restores.
func (l *Ledger) Defaults() Defaults {
	return l.defaults.Clone()
}

// =============================================================================
// PARAMETER SETTERS
// =============================================================================

// SetCapital sets the loan capital. Negative values are accepted as typed.
func (l *Ledger) SetCapital(v decimal.Decimal) {
	l.params.Capital = v
}

// SetTermYears rounds v to whole years with a floor of one year.
func (l *Ledger) SetTermYears(v decimal.Decimal) {
	// Clamp by magnitude before comparing or rounding: both rescale to a
	// common exponent, which for "1e2000000000" means building every digit.
	intDigits := v.NumDigits() + int(v.Exponent())
	switch {
	case v.Sign() <= 0 || intDigits <= 0:
		l.params.TermYears = 1
		return
	case intDigits > 10 || v.GreaterThanOrEqual(maxTermYears):
		l.params.TermYears = math.MaxInt32
		return
	case v.LessThan(minTermYears):
		l.params.TermYears = 1
		return
	}
	years := v.Round(0).IntPart()
	if years < 1 {
		years = 1
	}
	l.params.TermYears = int(years)
}

var (
	minTermYears = decimal.NewFromInt(1)
	maxTermYears = decimal.NewFromInt(math.MaxInt32)
)

// SetBaseRate sets the base annual rate in percentage points.
func (l *Ledger) SetBaseRate(v decimal.Decimal) {
	l.params.BaseAnnualRatePct = v
}

// SetMaxComboDiscount sets the combo discount ceiling in percentage points.
func (l *Ledger) SetMaxComboDiscount(v decimal.Decimal) {
	l.params.MaxComboDiscountPct = v
}

// ApplyParams applies every non-nil field of patch.
func (l *Ledger) ApplyParams(patch ParamsPatch) {
	if patch.Capital != nil {
		l.SetCapital(*patch.Capital)
	}
	if patch.TermYears != nil {
		l.SetTermYears(*patch.TermYears)
	}
	if patch.BaseAnnualRatePct != nil {
		l.SetBaseRate(*patch.BaseAnnualRatePct)
	}
	if patch.MaxComboDiscountPct != nil {
		l.SetMaxComboDiscount(*patch.MaxComboDiscountPct)
	}
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Snapshot copies the current parameters and bonuses into a scenario body.
func (l *Ledger) Snapshot() Scenario {
	return Scenario{
		Params:  l.params,
		Bonuses: cloneBonuses(l.bonuses),
	}
}

// Restore replaces parameters and bonuses with a saved scenario.
// The pending undo belongs to the replaced state and is dropped.
func (l *Ledger) Restore(s Scenario) Effect {
	l.params = s.Params
	l.bonuses = cloneBonuses(s.Bonuses)
	l.pending = nil
	return Effect{Kind: EffectCancelExpiry}
}

func (l *Ledger) indexOf(id string) int {
	for i, b := range l.bonuses {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func cloneBonuses(in []finance.Bonus) []finance.Bonus {
	out := make([]finance.Bonus, len(in))
	copy(out, in)
	return out
}
