package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/platform/apperr"
)

type recordingSender struct {
	chatID   int64
	data     []byte
	fileName string
}

func (r *recordingSender) SendDocument(_ context.Context, chatID int64, data []byte, name string) error {
	r.chatID, r.data, r.fileName = chatID, data, name
	return nil
}

func fontAvailable() bool {
	for _, p := range DefaultFontPaths {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

func samplePatient() adherence.Patient {
	return adherence.Patient{
		ID:                "P001",
		Name:              "Jane Roe",
		Age:               adherence.Int(70),
		ChronicConditions: []string{"Diabetes", "Hypertension"},
		AdherenceRate:     adherence.Float(0.62),
		RiskScore:         adherence.Float(0.81),
		AvgRefillGap:      adherence.Float(9),
		Medications: []adherence.Medication{{
			Name: "Metformin",
			RefillHistory: []adherence.Refill{
				{RefillDate: "2026-01-01", NextExpectedDate: "2026-01-31"},
				{RefillDate: "2026-02-12", NextExpectedDate: "2026-03-14"},
			},
		}},
	}
}

func TestRender_MissingFont(t *testing.T) {
	svc := NewService(nil, 0, "", zerolog.Nop())
	svc.fontPaths = []string{"/nonexistent/font.ttf"}

	_, err := svc.Render(samplePatient())
	assert.ErrorIs(t, err, ErrFontUnavailable)
}

func TestSend(t *testing.T) {
	if !fontAvailable() {
		t.Skip("DejaVuSans.ttf not installed")
	}
	sender := &recordingSender{}
	svc := NewService(sender, 99, "", zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) }

	require.NoError(t, svc.Send(context.Background(), samplePatient()))
	assert.Equal(t, int64(99), sender.chatID)
	assert.Equal(t, "adherence_report_P001.pdf", sender.fileName)
	assert.True(t, bytes.HasPrefix(sender.data, []byte("%PDF")))
}

func TestSend_NotConfigured(t *testing.T) {
	err := NewService(nil, 0, "", zerolog.Nop()).Send(context.Background(), samplePatient())
	require.Error(t, err)
	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperr.KindBadRequest, appErr.Kind)
}
