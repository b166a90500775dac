// Package adherence holds the patient record schema and the aggregation
// functions computed over it: risk bucketing, adherence means and trends,
// medication risk ranking, demographics, forecasts and the risk explanation
// stub. Every function accepts empty input and records with missing fields.
package adherence

import "strings"

// DefaultAge is assumed for records without an age.
const DefaultAge = 50

// Patient is a patient record as ingested into the patients table. Optional
// numeric fields are pointers; use the accessor methods for resolved values.
type Patient struct {
	ID                string       `json:"id"`
	Name              string       `json:"name,omitempty"`
	Age               *int         `json:"age,omitempty"`
	Gender            string       `json:"gender,omitempty"`
	ChronicConditions []string     `json:"chronicConditions,omitempty"`
	Medications       []Medication `json:"medications,omitempty"`
	AdherenceRate     *float64     `json:"adherenceRate,omitempty"`
	RiskScore         *float64     `json:"riskScore,omitempty"`
	AvgRefillGap      *float64     `json:"avgRefillGap,omitempty"`
}

type Medication struct {
	Name          string   `json:"name,omitempty"`
	RefillHistory []Refill `json:"refillHistory,omitempty"`
}

// Refill is one dispensing event. Dates are ISO-8601 strings.
type Refill struct {
	RefillDate       string `json:"refillDate"`
	NextExpectedDate string `json:"nextExpectedDate"`
}

func (m Medication) DisplayName() string {
	if m.Name == "" {
		return "Unknown"
	}
	return m.Name
}

func (p Patient) HasAdherence() bool { return p.AdherenceRate != nil }

func (p Patient) Adherence() float64 {
	if p.AdherenceRate == nil {
		return 0
	}
	return *p.AdherenceRate
}

func (p Patient) Risk() float64 {
	if p.RiskScore == nil {
		return 0
	}
	return *p.RiskScore
}

func (p Patient) AgeOrDefault() int {
	if p.Age == nil {
		return DefaultAge
	}
	return *p.Age
}

func (p Patient) GenderOrDefault() string {
	if p.Gender == "" {
		return "Unknown"
	}
	return p.Gender
}

func (p Patient) RefillGap() float64 {
	if p.AvgRefillGap == nil {
		return 0
	}
	return *p.AvgRefillGap
}

func (p Patient) NameOrDefault() string {
	if p.Name == "" {
		return "Patient"
	}
	return p.Name
}

// Takes reports whether the patient has a medication with exactly this name.
func (p Patient) Takes(medication string) bool {
	for _, m := range p.Medications {
		if m.Name == medication {
			return true
		}
	}
	return false
}

func (p Patient) HasCondition(condition string) bool {
	for _, c := range p.ChronicConditions {
		if c == condition {
			return true
		}
	}
	return false
}

// MedicationNames lists medication names in record order.
func (p Patient) MedicationNames() []string {
	names := make([]string, 0, len(p.Medications))
	for _, m := range p.Medications {
		names = append(names, m.Name)
	}
	return names
}

// TakingMedication filters patients on the named medication.
func TakingMedication(patients []Patient, medication string) []Patient {
	var out []Patient
	for _, p := range patients {
		if p.Takes(medication) {
			out = append(out, p)
		}
	}
	return out
}

// Float and Int build optional fields.
func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }

func normalizeLevel(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
