package medication

import (
	"context"
	"strings"
	"time"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/platform/apperr"
)

// PatientLister reads the full patient table.
type PatientLister interface {
	List(ctx context.Context) ([]adherence.Patient, error)
}

type Service interface {
	List(ctx context.Context) ([]string, error)
	Analytics(ctx context.Context, name string) (Analytics, error)
	Trends(ctx context.Context, name string, period adherence.Period) (Trends, error)
	Demographics(ctx context.Context, name string) (adherence.Demographics, error)
	Forecast(ctx context.Context, name string) ([]adherence.ForecastPoint, error)
	Compare(ctx context.Context, names []string) ([]adherence.MedicationComparison, error)
}

type service struct {
	patients PatientLister
	history  adherence.HistorySource
	now      func() time.Time
}

func NewService(patients PatientLister, history adherence.HistorySource) Service {
	return &service{patients: patients, history: history, now: time.Now}
}

func (s *service) taking(ctx context.Context, name string) ([]adherence.Patient, error) {
	all, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	return adherence.TakingMedication(all, name), nil
}

func (s *service) List(ctx context.Context) ([]string, error) {
	all, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	return adherence.MedicationNames(all), nil
}

// Analytics fails with NotFound when no patient takes the medication.
func (s *service) Analytics(ctx context.Context, name string) (Analytics, error) {
	on, err := s.taking(ctx, name)
	if err != nil {
		return Analytics{}, err
	}
	if len(on) == 0 {
		return Analytics{}, apperr.NotFound("Medication not found")
	}

	now := s.now()
	mean := adherence.MeanAdherence(on)
	return Analytics{
		MedicationName:      name,
		AdherenceRate:       adherence.Round3(mean),
		PatientCount:        len(on),
		WeeklyTrends:        adherence.PeriodTrends(on, adherence.Weekly, WeeklyTrendPoints, now, s.history),
		MonthlyTrends:       adherence.PeriodTrends(on, adherence.Monthly, AnalyticsMonthlyTrendPoints, now, s.history),
		Demographics:        adherence.ComputeDemographics(on),
		ConditionComparison: adherence.ConditionComparison(on),
		MPRDistribution:     adherence.MPRDistribution(on),
		Forecast:            adherence.Forecast(mean, ForecastDays, now),
		Synthetic:           s.history.Synthetic(),
	}, nil
}

func (s *service) Trends(ctx context.Context, name string, period adherence.Period) (Trends, error) {
	on, err := s.taking(ctx, name)
	if err != nil {
		return Trends{}, err
	}
	count := MonthlyTrendPoints
	if period == adherence.Weekly {
		count = WeeklyTrendPoints
	}
	return Trends{
		Trends:    adherence.PeriodTrends(on, period, count, s.now(), s.history),
		Synthetic: s.history.Synthetic(),
	}, nil
}

func (s *service) Demographics(ctx context.Context, name string) (adherence.Demographics, error) {
	on, err := s.taking(ctx, name)
	if err != nil {
		return adherence.Demographics{}, err
	}
	return adherence.ComputeDemographics(on), nil
}

func (s *service) Forecast(ctx context.Context, name string) ([]adherence.ForecastPoint, error) {
	on, err := s.taking(ctx, name)
	if err != nil {
		return nil, err
	}
	return adherence.Forecast(adherence.MeanAdherence(on), ForecastDays, s.now()), nil
}

func (s *service) Compare(ctx context.Context, names []string) ([]adherence.MedicationComparison, error) {
	all, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	trimmed := make([]string, 0, len(names))
	for _, n := range names {
		trimmed = append(trimmed, strings.TrimSpace(n))
	}
	return adherence.CompareMedications(all, trimmed), nil
}
