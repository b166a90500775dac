package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/platform/store"
)

type stubPatients []adherence.Patient

func (s stubPatients) List(context.Context) ([]adherence.Patient, error) { return s, nil }

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (n *recordingNotifier) SendMessage(_ context.Context, _ int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return n.err
}

type fixture struct {
	st       *store.Memory
	notifier *recordingNotifier
	clock    time.Time
	router   chi.Router
}

func newFixture(t *testing.T, patients ...adherence.Patient) *fixture {
	t.Helper()
	f := &fixture{
		st:       store.NewMemory(0, zerolog.Nop()),
		notifier: &recordingNotifier{},
		clock:    time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
	svc := NewService(stubPatients(patients), NewAlertRepository(f.st, "alerts"), adherence.FlatHistory{}, f.notifier, 100, zerolog.Nop())
	svc.(*service).now = func() time.Time { return f.clock }

	f.router = chi.NewRouter()
	RegisterRoutes(f.router, NewHandler(svc))
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func p(id string, adherenceRate, risk float64, meds ...string) adherence.Patient {
	pt := adherence.Patient{ID: id, AdherenceRate: adherence.Float(adherenceRate), RiskScore: adherence.Float(risk)}
	for _, m := range meds {
		pt.Medications = append(pt.Medications, adherence.Medication{Name: m})
	}
	return pt
}

func TestMetrics(t *testing.T) {
	f := newFixture(t,
		p("1", 0.5, 0.8, "A", "B"),
		p("2", 0.9, 0.75, "A"),
		p("3", 0.7, 0.5, "C", "D", "E", "F"),
		adherence.Patient{ID: "4"},
	)

	rec := f.do(t, http.MethodGet, "/dashboard/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var m Metrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, 4, m.TotalPatients)
	assert.Equal(t, 2, m.HighRiskCount)
	assert.Equal(t, 1, m.MediumRiskCount)
	assert.Equal(t, 0.7, m.AdherenceRate)
	assert.Len(t, m.AdherenceTrend, 6)
	assert.Equal(t, "2026-10", m.AdherenceTrend[5].Date)
	assert.Len(t, m.TopMedications, 5)
	assert.Equal(t, "B", m.TopMedications[0].MedicationName)
	assert.True(t, m.Synthetic)
}

func TestMetrics_Empty(t *testing.T) {
	f := newFixture(t)
	var m Metrics
	require.NoError(t, json.Unmarshal(f.do(t, http.MethodGet, "/dashboard/metrics", "").Body.Bytes(), &m))
	assert.Zero(t, m.TotalPatients)
	assert.Zero(t, m.AdherenceRate)
	assert.NotNil(t, m.TopMedications)
}

func TestTrends_Range(t *testing.T) {
	f := newFixture(t, p("1", 0.8, 0.1))

	var tr Trends
	require.NoError(t, json.Unmarshal(f.do(t, http.MethodGet, "/dashboard/trends?range=12months", "").Body.Bytes(), &tr))
	assert.Len(t, tr.Trends, 12)
	assert.True(t, tr.Synthetic)

	require.NoError(t, json.Unmarshal(f.do(t, http.MethodGet, "/dashboard/trends?range=bogus", "").Body.Bytes(), &tr))
	assert.Len(t, tr.Trends, 6)
}

func TestTopMedications_Unrestricted(t *testing.T) {
	f := newFixture(t, p("1", 0.5, 0, "A", "B", "C", "D", "E", "F", "G"))
	var res struct {
		Medications []adherence.MedicationRisk `json:"medications"`
	}
	require.NoError(t, json.Unmarshal(f.do(t, http.MethodGet, "/dashboard/top-medications", "").Body.Bytes(), &res))
	assert.Len(t, res.Medications, 7)
}

func TestCreateAlert_Validation(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/dashboard/alerts", `{"type":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/dashboard/alerts", `{"type":"x","severity":"urgent","message":"m"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/dashboard/alerts", `not json`).Code)
}

func TestCreateAlert_CriticalIsPushed(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/dashboard/alerts", `{"type":"missed_refill","severity":"critical","patientId":"P9","message":"No refill in 30 days"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var a Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.True(t, strings.HasPrefix(a.ID, "alert-"))
	assert.Empty(t, a.AcknowledgedAt)

	require.Len(t, f.notifier.messages, 1)
	assert.Contains(t, f.notifier.messages[0], "No refill in 30 days")
	assert.Contains(t, f.notifier.messages[0], "P9")

	f.do(t, http.MethodPost, "/dashboard/alerts", `{"type":"x","severity":"info","message":"fyi"}`)
	assert.Len(t, f.notifier.messages, 1)
}

func TestCreateAlert_NotifierFailureIsSoft(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("telegram down")

	rec := f.do(t, http.MethodPost, "/dashboard/alerts", `{"type":"x","severity":"critical","message":"m"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestActiveAlerts_Ordering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, a := range []Alert{
		{ID: "a1", Severity: SeverityInfo, CreatedAt: "2026-10-01T00:00:00Z"},
		{ID: "a2", Severity: SeverityCritical, CreatedAt: "2026-10-03T00:00:00Z"},
		{ID: "a3", Severity: SeverityWarning, CreatedAt: "2026-10-02T00:00:00Z"},
		{ID: "a4", Severity: SeverityCritical, CreatedAt: "2026-10-02T00:00:00Z"},
		{ID: "a5", Severity: SeverityCritical, CreatedAt: "2026-10-01T00:00:00Z", AcknowledgedAt: "2026-10-01T01:00:00Z"},
	} {
		require.NoError(t, f.st.Put(ctx, "alerts", a.ID, a))
	}

	var res struct {
		Alerts []Alert `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(f.do(t, http.MethodGet, "/dashboard/alerts", "").Body.Bytes(), &res))
	var ids []string
	for _, a := range res.Alerts {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a4", "a2", "a3", "a1"}, ids)
}

func TestAcknowledge_TwiceOverwrites(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.st.Put(context.Background(), "alerts", "a1", Alert{ID: "a1", Severity: SeverityWarning, Message: "m"}))

	rec := f.do(t, http.MethodPost, "/dashboard/alerts/a1/acknowledge", `{"acknowledgedBy":"dr.lee"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var first Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.Equal(t, "dr.lee", first.AcknowledgedBy)

	f.clock = f.clock.Add(time.Hour)
	rec = f.do(t, http.MethodPost, "/dashboard/alerts/a1/acknowledge", `{"acknowledgedBy":"nurse.kim"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var second Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, "nurse.kim", second.AcknowledgedBy)
	assert.NotEqual(t, first.AcknowledgedAt, second.AcknowledgedAt)
	assert.Equal(t, "m", second.Message)

	var res struct {
		Alerts []Alert `json:"alerts"`
	}
	require.NoError(t, json.Unmarshal(f.do(t, http.MethodGet, "/dashboard/alerts", "").Body.Bytes(), &res))
	assert.Empty(t, res.Alerts)
}

func TestAcknowledge_Missing(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/dashboard/alerts/nope/acknowledge", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
