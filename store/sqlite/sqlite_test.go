package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/mortgage-bonus/ledger"
	"github.com/warp/mortgage-bonus/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleScenario(id, name string, at time.Time) ledger.Scenario {
	d := ledger.BuiltinDefaults()
	return ledger.Scenario{
		ID:        id,
		Name:      name,
		Params:    d.Params,
		Bonuses:   d.Bonuses,
		CreatedAt: at,
	}
}

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestSaveScenario_RoundTrip(t *testing.T) {
	// GIVEN: a scenario with the stock bonuses and exact decimals
	store := newTestStore(t)
	ctx := context.Background()
	sc := sampleScenario("sc-1", "Oferta banco", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	// WHEN: saving and loading it back
	require.NoError(t, store.SaveScenario(ctx, sc))
	got, err := store.GetScenario(ctx, "sc-1")
	require.NoError(t, err)

	// THEN: every field survives, in order
	assert.Equal(t, "Oferta banco", got.Name)
	assert.True(t, sc.Params.Capital.Equal(got.Params.Capital))
	assert.Equal(t, 30, got.Params.TermYears)
	assert.True(t, decimal.RequireFromString("2.7").Equal(got.Params.BaseAnnualRatePct))
	assert.True(t, decimal.RequireFromString("0.85").Equal(got.Params.MaxComboDiscountPct))
	assert.True(t, sc.CreatedAt.Equal(got.CreatedAt))

	require.Len(t, got.Bonuses, len(sc.Bonuses))
	for i, b := range sc.Bonuses {
		assert.Equal(t, b.ID, got.Bonuses[i].ID)
		assert.Equal(t, b.Name, got.Bonuses[i].Name)
		assert.Equal(t, b.Enabled, got.Bonuses[i].Enabled)
		assert.True(t, b.DiscountPct.Equal(got.Bonuses[i].DiscountPct), "discount of %s", b.ID)
		assert.True(t, b.AnnualCost.Equal(got.Bonuses[i].AnnualCost), "cost of %s", b.ID)
	}
}

func TestSaveScenario_ReplacesBonuses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sc := sampleScenario("sc-1", "v1", time.Now())
	require.NoError(t, store.SaveScenario(ctx, sc))

	sc.Name = "v2"
	sc.Bonuses = sc.Bonuses[:2]
	require.NoError(t, store.SaveScenario(ctx, sc))

	got, err := store.GetScenario(ctx, "sc-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Name)
	assert.Len(t, got.Bonuses, 2)
}

func TestSaveScenario_NoBonuses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sc := sampleScenario("empty", "Sin bonificaciones", time.Now())
	sc.Bonuses = nil

	require.NoError(t, store.SaveScenario(ctx, sc))
	got, err := store.GetScenario(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, got.Bonuses)
}

// =============================================================================
// LIST / DELETE / NOT FOUND
// =============================================================================

func TestListScenarios_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveScenario(ctx, sampleScenario("old", "Old", base)))
	require.NoError(t, store.SaveScenario(ctx, sampleScenario("new", "New", base.Add(time.Hour))))

	list, err := store.ListScenarios(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
	assert.Len(t, list[0].Bonuses, 7)
}

func TestDeleteScenario(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveScenario(ctx, sampleScenario("sc-1", "x", time.Now())))

	require.NoError(t, store.DeleteScenario(ctx, "sc-1"))

	_, err := store.GetScenario(ctx, "sc-1")
	assert.ErrorIs(t, err, ledger.ErrScenarioNotFound)
	assert.ErrorIs(t, store.DeleteScenario(ctx, "sc-1"), ledger.ErrScenarioNotFound)
}

func TestGetScenario_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetScenario(context.Background(), "missing")
	assert.ErrorIs(t, err, ledger.ErrScenarioNotFound)
	assert.True(t, ledger.IsNotFound(err))
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveScenario(ctx, sampleScenario("sc-1", "x", time.Now())))

	require.NoError(t, store.Reset(ctx))

	list, err := store.ListScenarios(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
