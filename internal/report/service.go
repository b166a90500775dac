package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/signintech/gopdf"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/platform/apperr"
)

// DefaultFontPaths are tried in order when no font path is configured.
var DefaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

var ErrFontUnavailable = errors.New("no usable TTF font for PDF rendering")

// DocumentSender delivers a rendered file to a chat.
type DocumentSender interface {
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

// Service renders patient adherence reports and sends them to the care team.
type Service struct {
	sender    DocumentSender
	chatID    int64
	fontPaths []string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewService builds a report service. A nil sender disables delivery; fontPath
// overrides the default font search when non-empty.
func NewService(sender DocumentSender, chatID int64, fontPath string, logger zerolog.Logger) *Service {
	paths := DefaultFontPaths
	if fontPath != "" {
		paths = append([]string{fontPath}, DefaultFontPaths...)
	}
	return &Service{
		sender:    sender,
		chatID:    chatID,
		fontPaths: paths,
		logger:    logger.With().Str("component", "report").Logger(),
		now:       time.Now,
	}
}

// FileName is the attachment name for a patient's report.
func FileName(patientID string) string {
	return fmt.Sprintf("adherence_report_%s.pdf", patientID)
}

func (s *Service) loadFont(pdf *gopdf.GoPdf) error {
	var lastErr error
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont("DejaVu", path); err == nil {
			s.logger.Debug().Str("path", path).Msg("loaded report font")
			return nil
		} else {
			lastErr = err
		}
	}
	return fmt.Errorf("%w: %v", ErrFontUnavailable, lastErr)
}

// Render produces the PDF for one patient.
func (s *Service) Render(p adherence.Patient) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := s.loadFont(&pdf); err != nil {
		return nil, err
	}

	w := &writer{pdf: &pdf}
	w.heading(20, "Medication Adherence Report")
	w.br(30)

	w.font(12)
	w.line(fmt.Sprintf("Generated: %s", s.now().UTC().Format("2006-01-02 15:04 UTC")))
	w.line(fmt.Sprintf("Patient: %s (%s)", p.NameOrDefault(), p.ID))
	w.line(fmt.Sprintf("Age: %d   Gender: %s", p.AgeOrDefault(), p.GenderOrDefault()))
	if len(p.ChronicConditions) > 0 {
		w.wrapped(fmt.Sprintf("Chronic conditions: %s", strings.Join(p.ChronicConditions, ", ")))
	}
	w.br(10)

	risk := p.Risk()
	w.heading(14, "Adherence and Risk")
	w.font(11)
	w.line(fmt.Sprintf("Adherence rate (MPR): %.1f%%", p.Adherence()*100))
	w.line(fmt.Sprintf("Risk score: %.2f (%s)", risk, adherence.RiskCategory(risk)))
	for _, v := range adherence.ExplainRisk(p) {
		w.wrapped(fmt.Sprintf("- %s (%+.2f)", v.Description, v.Contribution))
	}
	w.br(10)

	w.heading(14, "Medications")
	w.font(11)
	if len(p.Medications) == 0 {
		w.line("- No medications on record.")
	}
	for _, m := range p.Medications {
		tl, err := adherence.BuildTimeline(m)
		if err != nil {
			s.logger.Warn().Err(err).Str("patient_id", p.ID).Msg("skipping refill timeline")
			w.line(fmt.Sprintf("- %s", m.DisplayName()))
			continue
		}
		entry := fmt.Sprintf("- %s: %d refills", m.DisplayName(), len(tl.RefillHistory))
		anomalies := 0
		for _, ev := range tl.RefillHistory {
			if ev.IsAnomaly {
				anomalies++
			}
		}
		if anomalies > 0 {
			entry += fmt.Sprintf(", %d late", anomalies)
		}
		if tl.NextExpected != nil {
			entry += fmt.Sprintf(", next expected %s", *tl.NextExpected)
		}
		w.wrapped(entry)
	}
	w.br(10)

	if recs := adherence.RecommendInterventions(p); len(recs) > 0 {
		w.heading(14, "Recommended Interventions")
		w.font(11)
		for _, r := range recs {
			w.wrapped(fmt.Sprintf("%d. %s", r.PriorityOrDefault(), r.Description))
		}
	}

	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Send renders the report and delivers it to the configured chat.
func (s *Service) Send(ctx context.Context, p adherence.Patient) error {
	if s.sender == nil || s.chatID == 0 {
		return apperr.BadRequest("report delivery is not configured")
	}
	data, err := s.Render(p)
	if err != nil {
		return err
	}
	s.logger.Info().Str("patient_id", p.ID).Int64("chat_id", s.chatID).Msg("sending adherence report")
	if err := s.sender.SendDocument(ctx, s.chatID, data, FileName(p.ID)); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

// writer keeps the first gopdf error so layout code stays linear.
type writer struct {
	pdf *gopdf.GoPdf
	err error
}

func (w *writer) font(size float64) {
	if w.err == nil {
		w.err = w.pdf.SetFont("DejaVu", "", size)
	}
}

func (w *writer) br(h float64) { w.pdf.Br(h) }

func (w *writer) heading(size float64, text string) {
	w.font(size)
	w.line(text)
}

func (w *writer) line(text string) {
	if w.err != nil {
		return
	}
	w.err = w.pdf.Cell(nil, text)
	w.pdf.Br(15)
}

func (w *writer) wrapped(text string) {
	if w.err != nil {
		return
	}
	lines, err := w.pdf.SplitText(text, 500)
	if err != nil {
		w.err = err
		return
	}
	for _, l := range lines {
		if w.err = w.pdf.Cell(nil, l); w.err != nil {
			return
		}
		w.pdf.Br(13)
	}
}
