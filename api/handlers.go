/*
handlers.go - HTTP API handlers for the bonus calculator

PURPOSE:
  Exposes calculator sessions via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the session and ledger.

ENDPOINTS:
  Sessions:
    POST   /api/sessions                        Create session with configured defaults
    GET    /api/sessions/{id}                   State, pending undo and view
    DELETE /api/sessions/{id}                   Close session

  Editing:
    PUT    /api/sessions/{id}/params            Edit loan parameters
    POST   /api/sessions/{id}/bonuses           Add a custom bonus
    PATCH  /api/sessions/{id}/bonuses/{bonusID} Edit a bonus
    DELETE /api/sessions/{id}/bonuses/{bonusID} Remove a bonus (undoable)
    POST   /api/sessions/{id}/undo              Restore the last removed bonus
    POST   /api/sessions/{id}/reset             Back to the configured defaults

  Derived:
    GET    /api/sessions/{id}/view              Per-bonus and combo projections
    GET    /api/sessions/{id}/schedule          Amortization table (?rate=base|combo|<bonusID>)
    GET    /api/sessions/{id}/report            Markdown report (?format=html)

REQUEST FLOW:
  1. Look up the session
  2. Decode the body (numbers arrive as text, see dto.go)
  3. Apply the mutation through the session
  4. Respond with the new state and its view

Editing an unknown bonus id is not an error: the state is returned unchanged.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON, unknown rate selector, missing scenario name
  - 404: Unknown session or scenario
  - 422: Loan term of zero months, schedule over 1200 months
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Saved scenario handlers
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/mortgage-bonus/cache"
	"github.com/warp/mortgage-bonus/finance"
	"github.com/warp/mortgage-bonus/ledger"
	"github.com/warp/mortgage-bonus/report"
	"github.com/warp/mortgage-bonus/session"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Sessions  *session.Manager
	Scenarios ledger.ScenarioStore

	// Views caches encoded views by their input. Nil disables caching.
	Views cache.Cache
}

// NewHandler creates a new handler.
func NewHandler(sessions *session.Manager, scenarios ledger.ScenarioStore, views cache.Cache) *Handler {
	return &Handler{
		Sessions:  sessions,
		Scenarios: scenarios,
		Views:     views,
	}
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// CreateSession starts a calculator from the configured defaults.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Create()
	h.writeSession(w, http.StatusCreated, s)
}

// GetSession returns the state, pending undo and view.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeSession(w, http.StatusOK, s)
}

// CloseSession discards a session.
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Close(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EDITING HANDLERS
// =============================================================================

// UpdateParams edits the loan parameters.
func (h *Handler) UpdateParams(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req UpdateParamsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.ApplyParams(req.patch())
	h.writeSession(w, http.StatusOK, s)
}

// AddBonus appends a custom bonus.
func (h *Handler) AddBonus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Add()
	h.writeSession(w, http.StatusCreated, s)
}

// UpdateBonus merges the given fields into a bonus.
func (h *Handler) UpdateBonus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req UpdateBonusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.Update(chi.URLParam(r, "bonusID"), req.patch())
	h.writeSession(w, http.StatusOK, s)
}

// RemoveBonus removes a bonus. It can be restored with Undo until the window closes.
func (h *Handler) RemoveBonus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Remove(chi.URLParam(r, "bonusID"))
	h.writeSession(w, http.StatusOK, s)
}

// Undo restores the last removed bonus at the top of the list.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Undo()
	h.writeSession(w, http.StatusOK, s)
}

// Reset restores the configured defaults.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.Reset()
	h.writeSession(w, http.StatusOK, s)
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// viewInput is the canonical input a view is derived from.
type viewInput struct {
	Params  finance.LoanParameters
	Bonuses []finance.Bonus
}

// GetView returns the projections of the current state.
// Views are memoised by input, so a repeated GET skips the arithmetic.
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	st := s.State()

	var key string
	if h.Views != nil {
		payload, err := json.Marshal(viewInput{Params: st.Params, Bonuses: st.Bonuses})
		if err == nil {
			key = cache.Key("view", payload)
			if cached, hit := h.Views.Get(r.Context(), key); hit {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(cached))
				return
			}
		}
	}

	view, err := finance.Evaluate(st.Params, st.Bonuses)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	body, err := json.Marshal(toViewDTO(view))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode view", err)
		return
	}

	if key != "" {
		if err := h.Views.Set(r.Context(), key, string(body)); err != nil {
			log.Printf("[Cache] set %s: %v", key, err)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// GetSchedule returns the amortization table for one rate.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	st := s.State()

	selector := r.URL.Query().Get("rate")
	if selector == "" {
		selector = "base"
	}
	rate, err := finance.RateFor(st.Params, st.Bonuses, selector)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	rows, err := finance.Schedule(st.Params.Capital, rate, st.Params.Months())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(selector, rate, rows))
}

// GetReport renders the summary report as Markdown, or HTML with ?format=html.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	st := s.State()
	view, err := finance.Evaluate(st.Params, st.Bonuses)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	md := report.Markdown(st.Params, st.Bonuses, view)

	if r.URL.Query().Get("format") == "html" {
		html, err := report.HTML(md)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to render report", err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(html))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(md))
}

// =============================================================================
// HELPERS
// =============================================================================

// session resolves {id}, writing a 404 when it is unknown.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) writeSession(w http.ResponseWriter, status int, s *session.Session) {
	st := s.State()
	view, err := finance.Evaluate(st.Params, st.Bonuses)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dto := toSessionDTO(st)
	v := toViewDTO(view)
	dto.View = &v
	writeJSON(w, status, dto)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	return true
}

// writeJSON encodes before writing the status, so an encoding failure still
// reaches the client as a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		log.Printf("[API] encode response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal error","code":"encode_failed"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case ledger.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, finance.ErrNonPositiveTerm):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "invalid_term"})
	case errors.Is(err, finance.ErrScheduleTooLong):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "schedule_too_long"})
	case ledger.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "invalid_request"})
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
