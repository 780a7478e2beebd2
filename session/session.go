/*
Package session hosts live calculator states.

PURPOSE:
  A Session is one calculator as seen by one browser tab: a ledger plus
  the undo-expiry timer the ledger asks for. All state is in memory and
  is lost when the session is closed or reaped.

UNDO EXPIRY:
  Remove returns EffectScheduleExpiry{token}. The session stops whatever
  timer is armed and arms a new one-shot time.AfterFunc. When it fires it
  only calls ledger.Expire(token), which is a no-op unless that same
  removal is still pending. Undo, Reset and Restore cancel the timer.
  Close cancels it for good.

CONCURRENCY:
  HTTP handlers may call a session from several goroutines. Every method
  takes the session mutex, so the ledger sees one edit at a time, in the
  order they were received.

SEE ALSO:
  - ledger/ledger.go: Effects and tokens
  - manager.go: Session registry and idle reaper
*/
package session

import (
	"log"
	"sync"
	"time"

	"github.com/warp/mortgage-bonus/finance"
	"github.com/warp/mortgage-bonus/ledger"
)

// DefaultUndoTTL is how long a removed bonus can be restored.
const DefaultUndoTTL = 6 * time.Second

// Session is a live, in-memory calculator state.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	ledger    *ledger.Ledger
	undoTTL   time.Duration
	timer     *time.Timer
	expiresAt time.Time
	lastSeen  time.Time
	closed    bool
}

// State is a read-only copy of a session for rendering.
type State struct {
	SessionID string
	Params    finance.LoanParameters
	Bonuses   []finance.Bonus
	Pending   *ledger.Pending

	// PendingExpiresAt is zero when nothing is pending.
	PendingExpiresAt time.Time
}

// New creates a session around a fresh ledger.
func New(id string, defaults ledger.Defaults, undoTTL time.Duration) *Session {
	if undoTTL <= 0 {
		undoTTL = DefaultUndoTTL
	}
	now := time.Now()
	return &Session{
		ID:        id,
		CreatedAt: now,
		ledger:    ledger.New(defaults),
		undoTTL:   undoTTL,
		lastSeen:  now,
	}
}

// State returns a copy of the current state. Reading counts as activity,
// so a session that is only being viewed is not reaped as idle.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	st := State{
		SessionID: s.ID,
		Params:    s.ledger.Params(),
		Bonuses:   s.ledger.Bonuses(),
	}
	if p, ok := s.ledger.Pending(); ok {
		st.Pending = &p
		st.PendingExpiresAt = s.expiresAt
	}
	return st
}

// Update merges a patch into a bonus. Unknown ids are ignored.
func (s *Session) Update(id string, patch ledger.BonusPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.ledger.Update(id, patch)
}

// Remove deletes a bonus and arms the undo-expiry timer.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	eff, ok := s.ledger.Remove(id)
	s.applyLocked(eff)
	return ok
}

// Undo restores the last removed bonus.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	eff, ok := s.ledger.Undo()
	s.applyLocked(eff)
	return ok
}

// Add appends a custom bonus.
func (s *Session) Add() finance.Bonus {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.ledger.Add()
}

// Reset restores the defaults and cancels any pending undo.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.applyLocked(s.ledger.Reset())
}

// ApplyParams edits the loan parameters.
func (s *Session) ApplyParams(patch ledger.ParamsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.ledger.ApplyParams(patch)
}

// Snapshot copies parameters and bonuses for saving as a scenario.
func (s *Session) Snapshot() ledger.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return s.ledger.Snapshot()
}

// Restore replaces the state with a saved scenario.
func (s *Session) Restore(sc ledger.Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.applyLocked(s.ledger.Restore(sc))
}

// Close stops the undo timer. A closed session ignores late timer callbacks.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.closed = true
}

// IdleSince reports the last time the session was used.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touchLocked() {
	s.lastSeen = time.Now()
}

func (s *Session) applyLocked(eff ledger.Effect) {
	switch eff.Kind {
	case ledger.EffectScheduleExpiry:
		s.stopTimerLocked()
		token := eff.Token
		s.expiresAt = time.Now().Add(s.undoTTL)
		s.timer = time.AfterFunc(s.undoTTL, func() { s.expire(token) })
	case ledger.EffectCancelExpiry:
		s.stopTimerLocked()
	}
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.expiresAt = time.Time{}
}

func (s *Session) expire(token ledger.UndoToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.ledger.Expire(token) {
		s.timer = nil
		s.expiresAt = time.Time{}
		log.Printf("[Session] %s: undo window closed", s.ID)
	}
}
