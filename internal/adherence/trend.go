package adherence

import (
	"math/rand/v2"
	"time"
)

// HistorySource supplies the adherence rate for a past period. There is no
// historical adherence store yet, so the default source is synthetic.
type HistorySource interface {
	Rate(current float64, periodEnd time.Time) float64
	// Synthetic reports whether rates are generated rather than observed.
	Synthetic() bool
}

// SyntheticHistory perturbs the current mean by a uniform value in
// [-0.05, 0.05]. Output differs between calls.
type SyntheticHistory struct {
	// Jitter returns the perturbation. Nil uses math/rand/v2.
	Jitter func() float64
}

func (s SyntheticHistory) Rate(current float64, _ time.Time) float64 {
	jitter := s.Jitter
	if jitter == nil {
		jitter = func() float64 { return rand.Float64()*0.1 - 0.05 }
	}
	return clamp01(current + jitter())
}

func (SyntheticHistory) Synthetic() bool { return true }

// FlatHistory reports the current mean for every period.
type FlatHistory struct{}

func (FlatHistory) Rate(current float64, _ time.Time) float64 { return clamp01(current) }
func (FlatHistory) Synthetic() bool                           { return true }

type TrendPoint struct {
	Date          string  `json:"date"`
	AdherenceRate float64 `json:"adherenceRate"`
	PatientCount  int     `json:"patientCount"`
}

// AdherenceTrend returns one point per month for the last months months,
// stepping back from now in 30-day intervals, oldest first.
func AdherenceTrend(patients []Patient, months int, now time.Time, src HistorySource) []TrendPoint {
	if months < 0 {
		months = 0
	}
	current := OverallAdherence(patients)
	points := make([]TrendPoint, months)
	for i := 0; i < months; i++ {
		at := now.AddDate(0, 0, -30*i)
		points[months-1-i] = TrendPoint{
			Date:          at.Format("2006-01"),
			AdherenceRate: Round3(src.Rate(current, at)),
			PatientCount:  len(patients),
		}
	}
	return points
}

type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

// ParsePeriod treats anything other than "weekly" as monthly.
func ParsePeriod(s string) Period {
	if normalizeLevel(s) == string(Weekly) {
		return Weekly
	}
	return Monthly
}

func (p Period) days() int {
	if p == Weekly {
		return 7
	}
	return 30
}

type MPRPoint struct {
	Date         string  `json:"date"`
	MPR          float64 `json:"mpr"`
	PatientCount int     `json:"patientCount"`
}

// PeriodTrends returns count medication possession ratio points at weekly or
// monthly spacing, oldest first.
func PeriodTrends(patients []Patient, period Period, count int, now time.Time, src HistorySource) []MPRPoint {
	if count < 0 {
		count = 0
	}
	current := MeanAdherence(patients)
	step := period.days()
	points := make([]MPRPoint, count)
	for i := 0; i < count; i++ {
		at := now.AddDate(0, 0, -step*i)
		points[count-1-i] = MPRPoint{
			Date:         at.Format("2006-01-02"),
			MPR:          Round3(src.Rate(current, at)),
			PatientCount: len(patients),
		}
	}
	return points
}

type ForecastPoint struct {
	Date               string  `json:"date"`
	PredictedAdherence float64 `json:"predictedAdherence"`
	ConfidenceLower    float64 `json:"confidenceLower"`
	ConfidenceUpper    float64 `json:"confidenceUpper"`
}

// Forecast decays the current mean by 0.001 per day with a confidence band
// that widens by 0.001 per day from 0.05. Day 0 is today.
func Forecast(current float64, days int, now time.Time) []ForecastPoint {
	points := make([]ForecastPoint, 0, max(days, 0))
	for i := 0; i < days; i++ {
		predicted := clamp01(current - 0.001*float64(i))
		width := 0.05 + 0.001*float64(i)
		points = append(points, ForecastPoint{
			Date:               now.AddDate(0, 0, i).Format("2006-01-02"),
			PredictedAdherence: Round3(predicted),
			ConfidenceLower:    Round3(clamp01(predicted - width)),
			ConfidenceUpper:    Round3(clamp01(predicted + width)),
		})
	}
	return points
}
