package respond

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medication-adherence/internal/platform/apperr"
)

func TestJSON_SetsEnvelopeHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]float64{"adherenceRate": 0.812})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"adherenceRate":0.812}`, rec.Body.String())
}

func TestJSON_UnencodableValueKeepsStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]float64{"rate": math.Inf(1)})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestError_UsesErrorShape(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/patients/p-1", nil)

	rec := httptest.NewRecorder()
	Error(rec, req, apperr.NotFound("Patient not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Patient not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	Error(rec, req, errors.New("store unavailable"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"store unavailable"}`, rec.Body.String())
}

func TestDecode(t *testing.T) {
	var body struct {
		Author string `json:"author"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"author":"Dr. Ruiz"}`))
	require.NoError(t, Decode(req, &body))
	assert.Equal(t, "Dr. Ruiz", body.Author)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, Decode(req, &body))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"author":`))
	err := Decode(req, &body)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusCode(err))
}

func TestFallbacks(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	MethodNotAllowed(rec, httptest.NewRequest(http.MethodGet, "/predictions/batch", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "Method not allowed", out["error"])
}
