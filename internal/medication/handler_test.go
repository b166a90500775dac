package medication

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medication-adherence/internal/adherence"
)

type stubPatients []adherence.Patient

func (s stubPatients) List(context.Context) ([]adherence.Patient, error) { return s, nil }

func newRouter(patients ...adherence.Patient) chi.Router {
	svc := NewService(stubPatients(patients), adherence.FlatHistory{})
	svc.(*service).now = func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(svc))
	return r
}

func get(t *testing.T, r chi.Router, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec.Code
}

func pt(id string, rate float64, age int, conditions []string, meds ...string) adherence.Patient {
	p := adherence.Patient{ID: id, AdherenceRate: adherence.Float(rate), Age: adherence.Int(age), ChronicConditions: conditions}
	for _, m := range meds {
		p.Medications = append(p.Medications, adherence.Medication{Name: m})
	}
	return p
}

var cohort = []adherence.Patient{
	pt("1", 0.5, 25, []string{"Diabetes"}, "Metformin", "Lisinopril"),
	pt("2", 0.9, 45, []string{"Diabetes", "Hypertension"}, "Metformin"),
	pt("3", 0.8, 70, []string{"Hypertension"}, "Lisinopril"),
}

func TestList(t *testing.T) {
	var res struct {
		Medications []string `json:"medications"`
	}
	require.Equal(t, http.StatusOK, get(t, newRouter(cohort...), "/medications", &res))
	assert.Equal(t, []string{"Lisinopril", "Metformin"}, res.Medications)
}

func TestAnalytics(t *testing.T) {
	var a Analytics
	require.Equal(t, http.StatusOK, get(t, newRouter(cohort...), "/medications/Metformin/analytics", &a))

	assert.Equal(t, "Metformin", a.MedicationName)
	assert.Equal(t, 2, a.PatientCount)
	assert.Equal(t, 0.7, a.AdherenceRate)
	assert.Len(t, a.WeeklyTrends, 12)
	assert.Len(t, a.MonthlyTrends, 6)
	assert.Len(t, a.Forecast, 30)
	assert.Equal(t, map[string]int{"<30": 1, "30-49": 1}, a.Demographics.AgeGroups)
	require.Len(t, a.ConditionComparison, 2)
	assert.Equal(t, "Diabetes", a.ConditionComparison[0].Condition)
	assert.Equal(t, 1, a.MPRDistribution[adherence.MPRHigh])
	assert.Equal(t, 1, a.MPRDistribution[adherence.MPRLow])
	assert.True(t, a.Synthetic)
}

func TestAnalytics_UnknownMedication(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, get(t, newRouter(cohort...), "/medications/Aspirin/analytics", nil))
}

func TestAnalytics_EscapedName(t *testing.T) {
	r := newRouter(pt("1", 0.6, 50, nil, "Metformin ER"))
	var a Analytics
	require.Equal(t, http.StatusOK, get(t, r, "/medications/Metformin%20ER/analytics", &a))
	assert.Equal(t, "Metformin ER", a.MedicationName)
}

func TestTrends_Period(t *testing.T) {
	r := newRouter(cohort...)
	var tr Trends
	require.Equal(t, http.StatusOK, get(t, r, "/medications/Metformin/trends?period=weekly", &tr))
	require.Len(t, tr.Trends, 12)
	assert.Equal(t, "2026-10-08", tr.Trends[10].Date)

	require.Equal(t, http.StatusOK, get(t, r, "/medications/Metformin/trends", &tr))
	require.Len(t, tr.Trends, 12)
	assert.Equal(t, "2026-09-15", tr.Trends[10].Date)
	assert.Equal(t, 0.7, tr.Trends[11].MPR)
}

func TestDemographicsAndForecast_EmptyCohort(t *testing.T) {
	r := newRouter(cohort...)

	var d adherence.Demographics
	require.Equal(t, http.StatusOK, get(t, r, "/medications/Aspirin/demographics", &d))
	assert.Empty(t, d.AgeGroups)

	var f struct {
		Forecast []adherence.ForecastPoint `json:"forecast"`
	}
	require.Equal(t, http.StatusOK, get(t, r, "/medications/Aspirin/forecast", &f))
	require.Len(t, f.Forecast, 30)
	assert.Zero(t, f.Forecast[0].PredictedAdherence)
	assert.Zero(t, f.Forecast[0].ConfidenceLower)
}

func TestCompare_StaticRouteWins(t *testing.T) {
	var res struct {
		Comparison []adherence.MedicationComparison `json:"comparison"`
	}
	require.Equal(t, http.StatusOK, get(t, newRouter(cohort...), "/medications/compare?ids=Metformin,,Lisinopril,Aspirin", &res))
	require.Len(t, res.Comparison, 2)
	assert.Equal(t, "Lisinopril", res.Comparison[0].MedicationName)
	assert.Equal(t, 0.35, res.Comparison[0].NonAdherenceRate)
	assert.Equal(t, "Metformin", res.Comparison[1].MedicationName)
}
