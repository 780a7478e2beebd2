package api_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/mortgage-bonus/api"
)

func TestScenarios_SaveListLoadDelete(t *testing.T) {
	// GIVEN: a session with an edited capital
	ts := newTestServer(t)
	src := ts.createSession(t)
	ts.do(t, http.MethodPut, "/api/sessions/"+src.ID+"/params", `{"capital":"180000"}`)
	ts.do(t, http.MethodDelete, "/api/sessions/"+src.ID+"/bonuses/alarma", "")

	// WHEN: saving it as a scenario
	rec := ts.do(t, http.MethodPost, "/api/sessions/"+src.ID+"/scenarios", `{"name":" Oferta A "}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	saved := decode[api.ScenarioDTO](t, rec)

	// THEN: it is listed with the session's values
	assert.Equal(t, "Oferta A", saved.Name)
	assert.Equal(t, 180000.0, saved.Params.Capital)
	assert.Len(t, saved.Bonuses, 6)

	rec = ts.do(t, http.MethodGet, "/api/scenarios", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.ScenarioDTO](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)

	// WHEN: loading it into another session
	dst := ts.createSession(t)
	rec = ts.do(t, http.MethodPost, "/api/sessions/"+dst.ID+"/scenarios/"+saved.ID+"/load", "")
	require.Equal(t, http.StatusOK, rec.Code)
	loaded := decode[api.SessionDTO](t, rec)
	assert.Equal(t, 180000.0, loaded.Params.Capital)
	assert.NotContains(t, bonusIDs(loaded.Bonuses), "alarma")
	assert.Nil(t, loaded.Pending)

	// WHEN: deleting it twice
	rec = ts.do(t, http.MethodDelete, "/api/scenarios/"+saved.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodDelete, "/api/scenarios/"+saved.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveScenario_RequiresName(t *testing.T) {
	ts := newTestServer(t)
	sess := ts.createSession(t)

	rec := ts.do(t, http.MethodPost, "/api/sessions/"+sess.ID+"/scenarios", `{"name":"  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoadScenario_Unknown_404(t *testing.T) {
	ts := newTestServer(t)
	sess := ts.createSession(t)

	rec := ts.do(t, http.MethodPost, "/api/sessions/"+sess.ID+"/scenarios/missing/load", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoadScenario_DropsPendingUndo(t *testing.T) {
	ts := newTestServer(t)
	sess := ts.createSession(t)
	rec := ts.do(t, http.MethodPost, "/api/sessions/"+sess.ID+"/scenarios", `{"name":"base"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	saved := decode[api.ScenarioDTO](t, rec)

	ts.do(t, http.MethodDelete, "/api/sessions/"+sess.ID+"/bonuses/nomina", "")
	rec = ts.do(t, http.MethodPost, "/api/sessions/"+sess.ID+"/scenarios/"+saved.ID+"/load", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[api.SessionDTO](t, rec)
	assert.Nil(t, got.Pending)
	assert.Len(t, got.Bonuses, 7)
}
