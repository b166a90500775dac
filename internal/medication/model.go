package medication

import "medication-adherence/internal/adherence"

// Analytics is the full per-medication summary.
type Analytics struct {
	MedicationName      string                         `json:"medicationName"`
	AdherenceRate       float64                        `json:"adherenceRate"`
	PatientCount        int                            `json:"patientCount"`
	WeeklyTrends        []adherence.MPRPoint           `json:"weeklyTrends"`
	MonthlyTrends       []adherence.MPRPoint           `json:"monthlyTrends"`
	Demographics        adherence.Demographics         `json:"demographics"`
	ConditionComparison []adherence.ConditionAdherence `json:"conditionComparison"`
	MPRDistribution     map[string]int                 `json:"mprDistribution"`
	Forecast            []adherence.ForecastPoint      `json:"forecast"`
	Synthetic           bool                           `json:"synthetic"`
}

type Trends struct {
	Trends    []adherence.MPRPoint `json:"trends"`
	Synthetic bool                 `json:"synthetic"`
}

const (
	WeeklyTrendPoints           = 12
	MonthlyTrendPoints          = 12
	AnalyticsMonthlyTrendPoints = 6
	ForecastDays                = 30
)
