package ledger_test

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/mortgage-bonus/finance"
	"github.com/warp/mortgage-bonus/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestLedger() *ledger.Ledger {
	return ledger.New(ledger.BuiltinDefaults())
}

func ids(bonuses []finance.Bonus) []string {
	out := make([]string, len(bonuses))
	for i, b := range bonuses {
		out[i] = b.ID
	}
	return out
}

func dec(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func find(t *testing.T, l *ledger.Ledger, id string) finance.Bonus {
	t.Helper()
	for _, b := range l.Bonuses() {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("bonus %s not found", id)
	return finance.Bonus{}
}

// =============================================================================
// DEFAULTS
// =============================================================================

func TestNew_BuiltinDefaults(t *testing.T) {
	l := newTestLedger()

	p := l.Params()
	assert.True(t, decimal.NewFromInt(270000).Equal(p.Capital))
	assert.Equal(t, 30, p.TermYears)
	assert.Equal(t, []string{"nomina", "hogar", "vida50", "vida100_1", "vida100_total", "salud", "alarma"}, ids(l.Bonuses()))

	_, pending := l.Pending()
	assert.False(t, pending)
}

func TestBonuses_ReturnsCopy(t *testing.T) {
	l := newTestLedger()
	bs := l.Bonuses()
	bs[0].Name = "changed"
	assert.Equal(t, "Domiciliación de nómina", l.Bonuses()[0].Name)
}

// =============================================================================
// UPDATE
// =============================================================================

func TestUpdate_MergesOnlyGivenFields(t *testing.T) {
	l := newTestLedger()
	before := find(t, l, "hogar")

	ok := l.Update("hogar", ledger.BonusPatch{AnnualCost: dec("500"), Enabled: boolPtr(false)})
	require.True(t, ok)

	after := find(t, l, "hogar")
	assert.Equal(t, before.Name, after.Name)
	assert.True(t, before.DiscountPct.Equal(after.DiscountPct))
	assert.True(t, decimal.NewFromInt(500).Equal(after.AnnualCost))
	assert.False(t, after.Enabled)
}

func TestUpdate_PreservesOrderAndOthers(t *testing.T) {
	l := newTestLedger()
	before := l.Bonuses()

	l.Update("vida50", ledger.BonusPatch{Name: strPtr("Vida"), DiscountPct: dec("0.3")})

	after := l.Bonuses()
	assert.Equal(t, ids(before), ids(after))
	for i := range before {
		if before[i].ID == "vida50" {
			continue
		}
		assert.Equal(t, before[i], after[i])
	}
}

func TestUpdate_UnknownID_NoOp(t *testing.T) {
	l := newTestLedger()
	before := l.Bonuses()

	ok := l.Update("nope", ledger.BonusPatch{Name: strPtr("x")})

	assert.False(t, ok)
	assert.Equal(t, before, l.Bonuses())
}

// =============================================================================
// REMOVE / UNDO / EXPIRE
// =============================================================================

func TestRemove_ThenUndo_RestoresAtFront(t *testing.T) {
	// GIVEN: the default ledger
	l := newTestLedger()
	original := find(t, l, "salud")

	// WHEN: removing a bonus in the middle and undoing right away
	eff, ok := l.Remove("salud")
	require.True(t, ok)
	assert.Equal(t, ledger.EffectScheduleExpiry, eff.Kind)
	assert.NotContains(t, ids(l.Bonuses()), "salud")

	pending, has := l.Pending()
	require.True(t, has)
	assert.Equal(t, eff.Token, pending.Token)
	assert.Equal(t, original, pending.Bonus)

	eff, ok = l.Undo()
	require.True(t, ok)

	// THEN: the same record comes back, first in the list
	assert.Equal(t, ledger.EffectCancelExpiry, eff.Kind)
	bs := l.Bonuses()
	assert.Equal(t, original, bs[0])
	assert.Len(t, bs, 7)
	_, has = l.Pending()
	assert.False(t, has)
}

func TestRemove_UnknownID_KeepsPending(t *testing.T) {
	l := newTestLedger()
	first, _ := l.Remove("hogar")

	eff, ok := l.Remove("nope")

	assert.False(t, ok)
	assert.Equal(t, ledger.EffectNone, eff.Kind)
	pending, has := l.Pending()
	require.True(t, has)
	assert.Equal(t, first.Token, pending.Token)
	assert.Len(t, l.Bonuses(), 6)
}

func TestRemove_ReplacesPriorPending(t *testing.T) {
	l := newTestLedger()
	first, _ := l.Remove("hogar")
	second, _ := l.Remove("alarma")

	assert.NotEqual(t, first.Token, second.Token)
	pending, _ := l.Pending()
	assert.Equal(t, "alarma", pending.Bonus.ID)

	// Only the latest removal can be undone
	l.Undo()
	assert.Contains(t, ids(l.Bonuses()), "alarma")
	assert.NotContains(t, ids(l.Bonuses()), "hogar")
}

func TestUndo_NothingPending_NoOp(t *testing.T) {
	l := newTestLedger()
	eff, ok := l.Undo()
	assert.False(t, ok)
	assert.Equal(t, ledger.EffectNone, eff.Kind)
	assert.Len(t, l.Bonuses(), 7)
}

func TestExpire_MatchingToken(t *testing.T) {
	l := newTestLedger()
	eff, _ := l.Remove("hogar")

	assert.True(t, l.Expire(eff.Token))
	_, has := l.Pending()
	assert.False(t, has)

	// Undo after expiry does nothing
	_, ok := l.Undo()
	assert.False(t, ok)
	assert.NotContains(t, ids(l.Bonuses()), "hogar")
}

func TestExpire_StaleToken_Ignored(t *testing.T) {
	// GIVEN: two removals in a row
	l := newTestLedger()
	stale, _ := l.Remove("hogar")
	fresh, _ := l.Remove("alarma")

	// WHEN: the timer of the first removal fires late
	cleared := l.Expire(stale.Token)

	// THEN: the newer pending removal survives
	assert.False(t, cleared)
	pending, has := l.Pending()
	require.True(t, has)
	assert.Equal(t, fresh.Token, pending.Token)
}

// =============================================================================
// ADD
// =============================================================================

func TestAdd_TwiceDistinctIDs(t *testing.T) {
	l := newTestLedger()
	a := l.Add()
	b := l.Add()

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, []string{a.ID, b.ID}, ids(l.Bonuses())[7:])
	assert.True(t, a.Enabled)
	assert.True(t, decimal.RequireFromString("0.1").Equal(a.DiscountPct))
	assert.True(t, a.AnnualCost.IsZero())
}

func TestAdd_AfterRemovals_NeverCollides(t *testing.T) {
	l := newTestLedger()
	a := l.Add()
	l.Remove("nomina")
	l.Remove("hogar")
	b := l.Add()
	l.Remove(a.ID)
	c := l.Add()

	seen := map[string]bool{}
	for _, id := range ids(l.Bonuses()) {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.NotEqual(t, b.ID, c.ID)

	// The pending removal of a can come back without clashing with c
	_, ok := l.Undo()
	assert.True(t, ok)
	assert.Equal(t, a.ID, l.Bonuses()[0].ID)
}

// =============================================================================
// RESET
// =============================================================================

func TestReset_RestoresDefaultsAndDropsPending(t *testing.T) {
	l := newTestLedger()
	l.Update("nomina", ledger.BonusPatch{Enabled: boolPtr(false)})
	l.Add()
	l.Remove("salud")
	l.SetCapital(decimal.NewFromInt(1))
	l.SetTermYears(decimal.NewFromInt(5))

	eff := l.Reset()

	assert.Equal(t, ledger.EffectCancelExpiry, eff.Kind)
	defaults := ledger.BuiltinDefaults()
	assert.Equal(t, defaults.Bonuses, l.Bonuses())
	assert.Equal(t, defaults.Params, l.Params())
	_, has := l.Pending()
	assert.False(t, has)
}

func TestReset_DefaultsNotAliased(t *testing.T) {
	l := newTestLedger()
	l.Update("nomina", ledger.BonusPatch{Name: strPtr("edited")})
	l.Reset()
	assert.Equal(t, "Domiciliación de nómina", find(t, l, "nomina").Name)
}

// =============================================================================
// PARAMETERS
// =============================================================================

func TestSetTermYears_RoundsAndFloors(t *testing.T) {
	cases := map[string]int{
		"30":   30,
		"29.6": 30,
		"29.4": 29,
		"0":    1,
		"-5":   1,
		"0.4":  1,
	}
	for in, want := range cases {
		l := newTestLedger()
		l.SetTermYears(decimal.RequireFromString(in))
		assert.Equal(t, want, l.Params().TermYears, "input %s", in)
	}
}

func TestSetTermYears_ExtremeMagnitudes_Clamp(t *testing.T) {
	// GIVEN: exponents far beyond any term, in both directions
	cases := map[string]int{
		"1e2000000000":  math.MaxInt32,
		"-1e2000000000": 1,
		"1e-2000000000": 1,
		"2147483647":    math.MaxInt32,
		"2147483648":    math.MaxInt32,
		"2147483646.6":  math.MaxInt32,
		"1e11":          math.MaxInt32,
	}
	for in, want := range cases {
		l := newTestLedger()

		// WHEN: setting the term
		done := make(chan struct{})
		go func() {
			l.SetTermYears(decimal.RequireFromString(in))
			close(done)
		}()

		// THEN: it returns promptly with a clamped value
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("SetTermYears(%s) did not return", in)
		}
		assert.Equal(t, want, l.Params().TermYears, "input %s", in)
	}
}

func TestApplyParams_OnlyGivenFields(t *testing.T) {
	l := newTestLedger()
	l.ApplyParams(ledger.ParamsPatch{BaseAnnualRatePct: dec("3.1")})

	p := l.Params()
	assert.True(t, decimal.RequireFromString("3.1").Equal(p.BaseAnnualRatePct))
	assert.True(t, decimal.NewFromInt(270000).Equal(p.Capital))
	assert.Equal(t, 30, p.TermYears)
}

func TestEvaluate_DefaultComboCapped(t *testing.T) {
	l := newTestLedger()
	view, err := l.Evaluate()
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.85").Equal(view.Combo.AppliedDiscount))
	assert.Len(t, view.Rows, 7)
}

// =============================================================================
// SNAPSHOT / RESTORE
// =============================================================================

func TestSnapshotRestore(t *testing.T) {
	l := newTestLedger()
	l.Add()
	l.SetBaseRate(decimal.RequireFromString("3"))
	snap := l.Snapshot()

	l.Reset()
	l.Remove("nomina")
	eff := l.Restore(snap)

	assert.Equal(t, ledger.EffectCancelExpiry, eff.Kind)
	assert.Equal(t, snap.Bonuses, l.Bonuses())
	assert.Equal(t, snap.Params, l.Params())
	_, has := l.Pending()
	assert.False(t, has)
}
