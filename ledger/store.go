/*
store.go - Persistence interface for saved scenarios

PURPOSE:
  The live calculator state is never persisted: it lives in a session and
  is gone when the session ends. A user can however save the current
  parameters and bonuses under a name and load them back later. Those
  named snapshots are Scenarios, and ScenarioStore persists them.

IMPLEMENTATIONS:
  - ledger/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite

SEE ALSO:
  - ledger.go: Snapshot / Restore
*/
package ledger

import (
	"context"
	"time"

	"github.com/warp/mortgage-bonus/finance"
)

// Scenario is a named copy of loan parameters and bonuses.
type Scenario struct {
	ID        string
	Name      string
	Params    finance.LoanParameters
	Bonuses   []finance.Bonus
	CreatedAt time.Time
}

// ScenarioStore persists saved scenarios.
type ScenarioStore interface {
	// SaveScenario inserts or replaces a scenario by id.
	SaveScenario(ctx context.Context, s Scenario) error

	// GetScenario returns ErrScenarioNotFound for unknown ids.
	GetScenario(ctx context.Context, id string) (*Scenario, error)

	// ListScenarios returns all scenarios, newest first.
	ListScenarios(ctx context.Context) ([]Scenario, error)

	// DeleteScenario returns ErrScenarioNotFound for unknown ids.
	DeleteScenario(ctx context.Context, id string) error
}
