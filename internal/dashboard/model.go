package dashboard

import "medication-adherence/internal/adherence"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// rank orders severities for the active alert list; unknown values sort last.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

func (s Severity) valid() bool { return s.rank() < 3 }

// Alert is terminal once AcknowledgedAt is set.
type Alert struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	PatientID      string   `json:"patientId,omitempty"`
	Message        string   `json:"message"`
	CreatedAt      string   `json:"createdAt"`
	AcknowledgedAt string   `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy string   `json:"acknowledgedBy,omitempty"`
}

type CreateAlertRequest struct {
	Type      string   `json:"type"`
	Severity  Severity `json:"severity"`
	PatientID string   `json:"patientId"`
	Message   string   `json:"message"`
}

type AcknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledgedBy"`
}

// Metrics is the dashboard summary.
type Metrics struct {
	TotalPatients   int                        `json:"totalPatients"`
	HighRiskCount   int                        `json:"highRiskCount"`
	MediumRiskCount int                        `json:"mediumRiskCount"`
	AdherenceRate   float64                    `json:"adherenceRate"`
	AdherenceTrend  []adherence.TrendPoint     `json:"adherenceTrend"`
	TopMedications  []adherence.MedicationRisk `json:"topMedications"`
	Synthetic       bool                       `json:"synthetic"`
}

type Trends struct {
	Trends    []adherence.TrendPoint `json:"trends"`
	Synthetic bool                   `json:"synthetic"`
}

const (
	MetricsTrendMonths = 6
	TopMedicationCount = 5
)
