/*
scenarios.go - Saved scenario handlers

PURPOSE:
  A scenario is a named snapshot of a session's parameters and bonuses.
  Users save one to compare offers later and load it back into any
  session. Loading replaces the session state and drops its pending undo.

ENDPOINTS:
  GET    /api/scenarios                            List saved scenarios
  POST   /api/sessions/{id}/scenarios              Save the session as a scenario
  POST   /api/sessions/{id}/scenarios/{sid}/load   Load a scenario into the session
  DELETE /api/scenarios/{sid}                      Delete a scenario

SEE ALSO:
  - ledger/store.go: ScenarioStore interface
  - store/sqlite/sqlite.go: Persistent implementation
*/
package api

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/mortgage-bonus/ledger"
)

// ListScenarios returns all saved scenarios, newest first.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := h.Scenarios.ListScenarios(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list scenarios", err)
		return
	}

	dtos := make([]ScenarioDTO, len(scenarios))
	for i, sc := range scenarios {
		dtos[i] = toScenarioDTO(sc)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveScenario stores the session's current parameters and bonuses under a name.
func (h *Handler) SaveScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SaveScenarioRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeDomainError(w, ledger.ErrScenarioName)
		return
	}

	sc := s.Snapshot()
	sc.ID = uuid.New().String()
	sc.Name = name
	sc.CreatedAt = time.Now().UTC()

	if err := h.Scenarios.SaveScenario(r.Context(), sc); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save scenario", err)
		return
	}
	log.Printf("[Scenario] saved %s (%q) from session %s", sc.ID, sc.Name, s.ID)
	writeJSON(w, http.StatusCreated, toScenarioDTO(sc))
}

// LoadScenario replaces the session state with a saved scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	sc, err := h.Scenarios.GetScenario(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.Restore(*sc)
	h.writeSession(w, http.StatusOK, s)
}

// DeleteScenario removes a saved scenario.
func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.Scenarios.DeleteScenario(r.Context(), chi.URLParam(r, "sid")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
