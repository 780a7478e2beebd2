package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_EncodeFailure_500WithBody(t *testing.T) {
	// GIVEN: a value encoding/json refuses
	rec := httptest.NewRecorder()

	// WHEN: writing it
	writeJSON(rec, http.StatusOK, ParamsDTO{Capital: math.Inf(1)})

	// THEN: the client gets a 500 with an error body, not an empty 200
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "encode_failed", resp.Code)
}

func TestWriteJSON_OK(t *testing.T) {
	rec := httptest.NewRecorder()

	writeJSON(rec, http.StatusCreated, ParamsDTO{Capital: 1000})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"capital":1000,"term_years":0,"months":0,"base_rate_pct":0,"max_combo_discount_pct":0}`, rec.Body.String())
}
