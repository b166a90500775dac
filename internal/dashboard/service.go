package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/platform/apperr"
)

// Notifier pushes a text message to a chat.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type Service interface {
	Metrics(ctx context.Context) (Metrics, error)
	Trends(ctx context.Context, months int) (Trends, error)
	TopMedications(ctx context.Context) ([]adherence.MedicationRisk, error)
	ActiveAlerts(ctx context.Context) ([]Alert, error)
	CreateAlert(ctx context.Context, req CreateAlertRequest) (Alert, error)
	AcknowledgeAlert(ctx context.Context, id, by string) (Alert, error)
}

type service struct {
	patients PatientLister
	alerts   AlertRepository
	history  adherence.HistorySource
	notifier Notifier
	chatID   int64
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService wires the dashboard. notifier may be nil, in which case critical
// alerts are stored without being pushed.
func NewService(patients PatientLister, alerts AlertRepository, history adherence.HistorySource, notifier Notifier, chatID int64, logger zerolog.Logger) Service {
	return &service{
		patients: patients,
		alerts:   alerts,
		history:  history,
		notifier: notifier,
		chatID:   chatID,
		logger:   logger.With().Str("component", "dashboard").Logger(),
		now:      time.Now,
	}
}

func (s *service) Metrics(ctx context.Context) (Metrics, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return Metrics{}, err
	}
	high, medium := adherence.RiskCounts(patients)
	return Metrics{
		TotalPatients:   len(patients),
		HighRiskCount:   high,
		MediumRiskCount: medium,
		AdherenceRate:   adherence.Round3(adherence.OverallAdherence(patients)),
		AdherenceTrend:  adherence.AdherenceTrend(patients, MetricsTrendMonths, s.now(), s.history),
		TopMedications:  adherence.TopMedicationRisks(patients, TopMedicationCount),
		Synthetic:       s.history.Synthetic(),
	}, nil
}

func (s *service) Trends(ctx context.Context, months int) (Trends, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return Trends{}, err
	}
	return Trends{
		Trends:    adherence.AdherenceTrend(patients, months, s.now(), s.history),
		Synthetic: s.history.Synthetic(),
	}, nil
}

func (s *service) TopMedications(ctx context.Context) ([]adherence.MedicationRisk, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	return adherence.MedicationRisks(patients), nil
}

// ActiveAlerts orders critical before warning before info, oldest first
// within a severity.
func (s *service) ActiveAlerts(ctx context.Context) ([]Alert, error) {
	alerts, err := s.alerts.Active(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.rank(), alerts[j].Severity.rank()
		if ri != rj {
			return ri < rj
		}
		return alerts[i].CreatedAt < alerts[j].CreatedAt
	})
	return alerts, nil
}

func (s *service) CreateAlert(ctx context.Context, req CreateAlertRequest) (Alert, error) {
	if req.Type == "" || req.Severity == "" || req.Message == "" {
		return Alert{}, apperr.BadRequest("type, severity and message are required")
	}
	if !req.Severity.valid() {
		return Alert{}, apperr.BadRequest("severity must be critical, warning or info")
	}

	a := Alert{
		ID:        "alert-" + uuid.NewString(),
		Type:      req.Type,
		Severity:  req.Severity,
		PatientID: req.PatientID,
		Message:   req.Message,
		CreatedAt: s.now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.alerts.Save(ctx, a); err != nil {
		return Alert{}, err
	}
	s.logger.Info().Str("alert_id", a.ID).Str("severity", string(a.Severity)).Msg("alert created")

	if a.Severity == SeverityCritical {
		s.notify(ctx, a)
	}
	return a, nil
}

// notify is best effort; the alert is already stored.
func (s *service) notify(ctx context.Context, a Alert) {
	if s.notifier == nil || s.chatID == 0 {
		return
	}
	text := fmt.Sprintf("CRITICAL %s: %s", a.Type, a.Message)
	if a.PatientID != "" {
		text += fmt.Sprintf(" (patient %s)", a.PatientID)
	}
	if err := s.notifier.SendMessage(ctx, s.chatID, text); err != nil {
		s.logger.Warn().Err(err).Str("alert_id", a.ID).Msg("failed to push critical alert")
	}
}

// AcknowledgeAlert stamps the alert. Repeating it overwrites the previous
// acknowledgment.
func (s *service) AcknowledgeAlert(ctx context.Context, id, by string) (Alert, error) {
	if by == "" {
		by = "Unknown"
	}
	return s.alerts.Acknowledge(ctx, id, by, s.now().UTC().Format(time.RFC3339Nano))
}
