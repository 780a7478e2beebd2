// Package store provides ScenarioStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/mortgage-bonus/finance"
	"github.com/warp/mortgage-bonus/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	scenarios map[string]ledger.Scenario
}

func NewMemory() *Memory {
	return &Memory{
		scenarios: make(map[string]ledger.Scenario),
	}
}

// SaveScenario inserts or replaces a scenario.
func (m *Memory) SaveScenario(_ context.Context, s ledger.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenarios[s.ID] = copyScenario(s)
	return nil
}

func (m *Memory) GetScenario(_ context.Context, id string) (*ledger.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scenarios[id]
	if !ok {
		return nil, ledger.ErrScenarioNotFound
	}
	out := copyScenario(s)
	return &out, nil
}

func (m *Memory) ListScenarios(_ context.Context) ([]ledger.Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Scenario, 0, len(m.scenarios))
	for _, s := range m.scenarios {
		result = append(result, copyScenario(s))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *Memory) DeleteScenario(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scenarios[id]; !ok {
		return ledger.ErrScenarioNotFound
	}
	delete(m.scenarios, id)
	return nil
}

func copyScenario(s ledger.Scenario) ledger.Scenario {
	s.Bonuses = append([]finance.Bonus(nil), s.Bonuses...)
	return s
}
