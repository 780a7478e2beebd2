/*
Package sqlite provides a SQLite-backed ScenarioStore.

PURPOSE:
  Persists saved scenarios: named copies of loan parameters and bonuses.
  Live calculator state is NOT stored here; it only lives in sessions.

KEY TABLES:
  scenarios:         One row per saved scenario (loan parameters inline)
  scenario_bonuses:  Bonuses of a scenario, ordered by position

PRECISION:
  Money and rates are stored as TEXT holding the exact decimal string, so
  a scenario loads back with the same digits it was saved with.

ATOMIC SAVES:
  SaveScenario replaces the scenario row and all of its bonuses inside one
  SQL transaction. Either the whole scenario is visible or none of it.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.

USAGE:
  store, err := sqlite.New("./data/scenarios.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: Interface definition
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/mortgage-bonus/finance"
	"github.com/warp/mortgage-bonus/ledger"
)

// timeLayout is fixed-width so created_at sorts correctly as TEXT.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements ledger.ScenarioStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		capital TEXT NOT NULL,
		term_years INTEGER NOT NULL,
		base_rate_pct TEXT NOT NULL,
		max_combo_discount_pct TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scenarios_created_at
		ON scenarios(created_at);

	CREATE TABLE IF NOT EXISTS scenario_bonuses (
		scenario_id TEXT NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		bonus_id TEXT NOT NULL,
		name TEXT NOT NULL,
		discount_pct TEXT NOT NULL,
		annual_cost TEXT NOT NULL,
		enabled INTEGER NOT NULL,
		PRIMARY KEY (scenario_id, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SCENARIO STORE (ledger.ScenarioStore interface)
// =============================================================================

// SaveScenario inserts or replaces a scenario and its bonuses atomically.
func (s *Store) SaveScenario(ctx context.Context, sc ledger.Scenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	createdAt := sc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scenarios (id, name, capital, term_years, base_rate_pct, max_combo_discount_pct, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			capital = excluded.capital,
			term_years = excluded.term_years,
			base_rate_pct = excluded.base_rate_pct,
			max_combo_discount_pct = excluded.max_combo_discount_pct
	`,
		sc.ID, sc.Name,
		sc.Params.Capital.String(), sc.Params.TermYears,
		sc.Params.BaseAnnualRatePct.String(), sc.Params.MaxComboDiscountPct.String(),
		createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM scenario_bonuses WHERE scenario_id = ?", sc.ID); err != nil {
		return err
	}
	for i, b := range sc.Bonuses {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scenario_bonuses (scenario_id, position, bonus_id, name, discount_pct, annual_cost, enabled)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, sc.ID, i, b.ID, b.Name, b.DiscountPct.String(), b.AnnualCost.String(), b.Enabled)
		if err != nil {
			return fmt.Errorf("failed to save bonus %s: %w", b.ID, err)
		}
	}

	return tx.Commit()
}

// GetScenario retrieves a scenario by ID.
func (s *Store) GetScenario(ctx context.Context, id string) (*ledger.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, capital, term_years, base_rate_pct, max_combo_discount_pct, created_at
		FROM scenarios WHERE id = ?
	`, id)
	sc, err := scanScenario(row)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrScenarioNotFound
	}
	if err != nil {
		return nil, err
	}

	sc.Bonuses, err = s.loadBonuses(ctx, sc.ID)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

// ListScenarios returns all scenarios, newest first.
func (s *Store) ListScenarios(ctx context.Context) ([]ledger.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, capital, term_years, base_rate_pct, max_combo_discount_pct, created_at
		FROM scenarios ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}

	var scenarios []ledger.Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range scenarios {
		scenarios[i].Bonuses, err = s.loadBonuses(ctx, scenarios[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return scenarios, nil
}

// DeleteScenario removes a scenario and, by cascade, its bonuses.
func (s *Store) DeleteScenario(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM scenarios WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ledger.ErrScenarioNotFound
	}
	return nil
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"scenario_bonuses", "scenarios"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) loadBonuses(ctx context.Context, scenarioID string) ([]finance.Bonus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bonus_id, name, discount_pct, annual_cost, enabled
		FROM scenario_bonuses WHERE scenario_id = ? ORDER BY position
	`, scenarioID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bonuses := []finance.Bonus{}
	for rows.Next() {
		var b finance.Bonus
		var discount, cost string
		if err := rows.Scan(&b.ID, &b.Name, &discount, &cost, &b.Enabled); err != nil {
			return nil, err
		}
		b.DiscountPct = parseDecimal(discount)
		b.AnnualCost = parseDecimal(cost)
		bonuses = append(bonuses, b)
	}
	return bonuses, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScenario(row scanner) (ledger.Scenario, error) {
	var sc ledger.Scenario
	var capital, rate, ceiling, createdAt string
	err := row.Scan(&sc.ID, &sc.Name, &capital, &sc.Params.TermYears, &rate, &ceiling, &createdAt)
	if err != nil {
		return ledger.Scenario{}, err
	}
	sc.Params.Capital = parseDecimal(capital)
	sc.Params.BaseAnnualRatePct = parseDecimal(rate)
	sc.Params.MaxComboDiscountPct = parseDecimal(ceiling)
	sc.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return sc, nil
}

// parseDecimal reads a stored decimal. Stored values were written by
// decimal.String, so failures mean a hand-edited database; they read as zero.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
