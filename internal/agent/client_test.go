package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SendsDecodingParameters(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Refill gaps drive the risk."}}]}`))
	}))
	defer srv.Close()

	gen := NewDeepSeekClient("secret", srv.URL+"/", "")
	text, err := gen.Generate(context.Background(), "Explain")
	require.NoError(t, err)
	assert.Equal(t, "Refill gaps drive the risk.", text)

	assert.Equal(t, "deepseek-chat", got.Model)
	assert.Equal(t, 2000, got.MaxTokens)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, 0.9, got.TopP)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "Explain", got.Messages[0].Content)
}

func TestGenerate_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Authorization"), "bad") {
			http.Error(w, "invalid key", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewDeepSeekClient("bad", srv.URL, "").Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = NewDeepSeekClient("ok", srv.URL, "").Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) { return s.text, s.err }

func TestAssistant_NeverFails(t *testing.T) {
	ctx := context.Background()

	a := NewAssistant(stubGenerator{text: "hello"}, zerolog.Nop())
	assert.Equal(t, "hello", a.Complete(ctx, "p"))

	a = NewAssistant(stubGenerator{err: ErrEmptyCompletion}, zerolog.Nop())
	assert.Equal(t, noResponseMessage, a.Complete(ctx, "p"))

	a = NewAssistant(stubGenerator{err: errors.New("throttled")}, zerolog.Nop())
	assert.Equal(t, "I encountered an error: throttled. Please try again.", a.Complete(ctx, "p"))
}
