/*
errors.go - Error types for ledgers, sessions and saved scenarios

PURPOSE:
  Ledger mutations themselves never fail: an unknown bonus id is a no-op.
  Errors only arise around the ledger: looking up a session that expired,
  loading a scenario that was deleted, or a store that cannot persist.

SEE ALSO:
  - store.go: ScenarioStore uses ErrScenarioNotFound
  - session/manager.go: Returns ErrSessionNotFound
*/
package ledger

import (
	"errors"

	"github.com/warp/mortgage-bonus/finance"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSessionNotFound is returned when a session id is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrScenarioNotFound is returned when a saved scenario doesn't exist.
	ErrScenarioNotFound = errors.New("scenario not found")

	// ErrScenarioName is returned when a scenario is saved without a name.
	ErrScenarioName = errors.New("scenario name is required")
)

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrScenarioNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrScenarioName) ||
		finance.IsClientError(err)
}
