/*
manager.go - Session registry and idle reaper

PURPOSE:
  Keeps every live session by id and closes the ones nobody has touched
  for IdleTTL. Closing a session cancels its undo timer, so nothing fires
  against a state that is gone.

DESIGN:
  - Session ids are random UUIDs
  - The reaper is a background goroutine driven by a ticker
  - Stop() halts the reaper and closes every session (used on shutdown)

USAGE:
  m := session.NewManager(ledger.BuiltinDefaults(), session.Options{})
  m.Start()
  defer m.Stop()

  s := m.Create()
  s.Remove("hogar")
*/
package session

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/mortgage-bonus/ledger"
)

// Options configures a Manager. Zero values fall back to defaults.
type Options struct {
	UndoTTL      time.Duration
	IdleTTL      time.Duration
	ReapInterval time.Duration
}

const (
	DefaultIdleTTL      = 30 * time.Minute
	DefaultReapInterval = time.Minute
)

// Manager creates, finds and reaps sessions.
type Manager struct {
	defaults ledger.Defaults
	opts     Options

	mu       sync.RWMutex
	sessions map[string]*Session

	runMu   sync.Mutex
	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// NewManager creates a manager whose sessions start from defaults.
func NewManager(defaults ledger.Defaults, opts Options) *Manager {
	if opts.UndoTTL <= 0 {
		opts.UndoTTL = DefaultUndoTTL
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.ReapInterval <= 0 {
		opts.ReapInterval = DefaultReapInterval
	}
	return &Manager{
		defaults: defaults.Clone(),
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Defaults returns the defaults new sessions start from.
func (m *Manager) Defaults() ledger.Defaults {
	return m.defaults.Clone()
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	s := New(uuid.New().String(), m.defaults, m.opts.UndoTTL)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Printf("[Session] created %s", s.ID)
	return s
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ledger.ErrSessionNotFound
	}
	return s, nil
}

// Close removes a session and cancels its timer.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ledger.ErrSessionNotFound
	}
	s.Close()
	log.Printf("[Session] closed %s", id)
	return nil
}

// List returns the ids of live sessions, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Start begins reaping idle sessions.
func (m *Manager) Start() {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.running {
		return
	}

	m.ticker = time.NewTicker(m.opts.ReapInterval)
	m.stop = make(chan struct{})
	m.running = true
	m.wg.Add(1)
	go m.run()

	log.Printf("[Reaper] Started: idle ttl %v, check interval %v", m.opts.IdleTTL, m.opts.ReapInterval)
}

// Stop halts the reaper and closes every session.
func (m *Manager) Stop() {
	m.runMu.Lock()
	if m.running {
		m.ticker.Stop()
		close(m.stop)
		m.wg.Wait()
		m.running = false
		log.Println("[Reaper] Stopped")
	}
	m.runMu.Unlock()

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

func (m *Manager) run() {
	defer m.wg.Done()
	for {
		select {
		case <-m.ticker.C:
			m.Reap(time.Now())
		case <-m.stop:
			return
		}
	}
}

// Reap closes sessions idle since before now-IdleTTL and returns how many.
func (m *Manager) Reap(now time.Time) int {
	cutoff := now.Add(-m.opts.IdleTTL)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		log.Printf("[Reaper] Closed %d idle sessions", len(stale))
	}
	return len(stale)
}
