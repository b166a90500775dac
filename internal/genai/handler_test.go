package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/platform/apperr"
	"medication-adherence/internal/platform/store"
)

type echoAssistant struct {
	prompts []string
}

func (e *echoAssistant) Complete(_ context.Context, prompt string) string {
	e.prompts = append(e.prompts, prompt)
	return "answer"
}

type stubPatients map[string]adherence.Patient

func (s stubPatients) GetByID(_ context.Context, id string) (adherence.Patient, error) {
	p, ok := s[id]
	if !ok {
		return p, apperr.NotFound("Patient not found")
	}
	return p, nil
}

type fixture struct {
	repo      Repository
	assistant *echoAssistant
	router    chi.Router
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := NewRepository(store.NewMemory(0, zerolog.Nop()), "conversations")
	patients := stubPatients{"P1": {
		ID:                "P1",
		Name:              "Ana",
		Age:               adherence.Int(72),
		ChronicConditions: []string{"COPD"},
		AdherenceRate:     adherence.Float(0.55),
		AvgRefillGap:      adherence.Float(9),
		Medications:       []adherence.Medication{{Name: "Tiotropium"}},
	}}
	asst := &echoAssistant{}
	svc := NewService(repo, patients, asst, zerolog.Nop())
	svc.(*service).now = func() time.Time { return time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(svc))
	return &fixture{repo: repo, assistant: asst, router: r}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestChat_PersistsConversation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/genai/chat", `{"message":"Who is at risk?","conversationId":"c1","context":{"patientId":"P1","pageContext":"dashboard"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "answer", resp.Message)
	assert.Equal(t, 0.85, resp.Confidence)
	require.NotNil(t, resp.ConversationID)
	assert.Equal(t, "c1", *resp.ConversationID)
	require.Len(t, resp.Citations, 2)
	assert.Equal(t, "Patient Record", resp.Citations[0].Source)

	prompt := f.assistant.prompts[0]
	assert.Contains(t, prompt, "Current patient context: P1")
	assert.Contains(t, prompt, "Current page: dashboard")
	assert.True(t, strings.HasSuffix(prompt, "User: Who is at risk?"))

	var ctxResp ContextResponse
	require.NoError(t, json.Unmarshal(f.do(t, http.MethodGet, "/genai/context?conversationId=c1", "").Body.Bytes(), &ctxResp))
	require.Len(t, ctxResp.Messages, 2)
	assert.Equal(t, "user", ctxResp.Messages[0].Role)
	assert.Equal(t, "assistant", ctxResp.Messages[1].Role)
}

func TestChat_WithoutConversation(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/genai/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"conversationId":null`)
	assert.Contains(t, rec.Body.String(), `"citations":[]`)
}

func TestChatPrompt_KeepsLastFiveMessages(t *testing.T) {
	var history []Message
	for _, c := range []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7"} {
		history = append(history, Message{Role: "user", Content: c})
	}
	prompt := buildChatPrompt("next", history, ChatContext{})
	assert.NotContains(t, prompt, "User: m2\n")
	assert.Contains(t, prompt, "User: m3\n")
	assert.Contains(t, prompt, "User: m7\n")
}

func TestContextAndReset_RequireID(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/genai/context", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/genai/context/reset", `{}`).Code)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.Append(context.Background(), "c9", Message{Role: "user", Content: "x"}))

	rec := f.do(t, http.MethodPost, "/genai/context/reset", `{"conversationId":"c9"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Context reset successfully"}`, rec.Body.String())

	msgs, err := f.repo.History(context.Background(), "c9")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestExplain(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/genai/explain", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/genai/explain", `{"patientId":"nobody"}`).Code)

	rec := f.do(t, http.MethodPost, "/genai/explain", `{"patientId":"P1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var e Explanation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	assert.Equal(t, "answer", e.Explanation)
	assert.Equal(t, []string{"Refill gap: 9 days", "Low adherence rate (55.00%)"}, e.RiskFactors)
	assert.Len(t, e.Citations, 2)
	assert.Contains(t, f.assistant.prompts[0], "- Age: 72")
}

func TestScript(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/genai/script", `{"patientId":"P1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var s Script
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.Equal(t, "Ana", s.PatientName)
	assert.Equal(t, "follow_up_call", s.InterventionType)
	assert.Equal(t, "2026-10-15T10:00:00Z", s.GeneratedAt)
	assert.Contains(t, f.assistant.prompts[0], "outreach script for a follow up call")
	assert.Contains(t, f.assistant.prompts[0], "- Medications: Tiotropium")
}
