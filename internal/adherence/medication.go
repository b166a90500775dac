package adherence

import "sort"

// Non-adherence cut points for medication risk levels.
const (
	MedicationHighRisk   = 0.30
	MedicationMediumRisk = 0.15
)

type MedicationRisk struct {
	MedicationName   string  `json:"medicationName"`
	NonAdherenceRate float64 `json:"nonAdherenceRate"`
	PatientCount     int     `json:"patientCount"`
	RiskLevel        string  `json:"riskLevel"`
}

func medicationRiskLevel(nonAdherence float64) string {
	switch {
	case nonAdherence >= MedicationHighRisk:
		return string(RiskHigh)
	case nonAdherence >= MedicationMediumRisk:
		return string(RiskMedium)
	default:
		return string(RiskLow)
	}
}

// MedicationRisks groups patients by medication and ranks medications by
// non-adherence (1 - mean adherence), highest first.
func MedicationRisks(patients []Patient) []MedicationRisk {
	type stats struct {
		total int
		sum   float64
	}
	byName := map[string]*stats{}
	for _, p := range patients {
		for _, m := range p.Medications {
			s, ok := byName[m.DisplayName()]
			if !ok {
				s = &stats{}
				byName[m.DisplayName()] = s
			}
			s.total++
			s.sum += p.Adherence()
		}
	}

	risks := make([]MedicationRisk, 0, len(byName))
	for name, s := range byName {
		non := 1 - s.sum/float64(s.total)
		risks = append(risks, MedicationRisk{
			MedicationName:   name,
			NonAdherenceRate: Round3(non),
			PatientCount:     s.total,
			RiskLevel:        medicationRiskLevel(non),
		})
	}
	sort.SliceStable(risks, func(i, j int) bool {
		if risks[i].NonAdherenceRate != risks[j].NonAdherenceRate {
			return risks[i].NonAdherenceRate > risks[j].NonAdherenceRate
		}
		return risks[i].MedicationName < risks[j].MedicationName
	})
	return risks
}

// TopMedicationRisks truncates MedicationRisks to n entries.
func TopMedicationRisks(patients []Patient, n int) []MedicationRisk {
	risks := MedicationRisks(patients)
	if len(risks) > n {
		risks = risks[:n]
	}
	return risks
}

// MedicationNames returns the sorted set of medication names.
func MedicationNames(patients []Patient) []string {
	seen := map[string]struct{}{}
	for _, p := range patients {
		for _, m := range p.Medications {
			seen[m.DisplayName()] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type MedicationComparison struct {
	MedicationName   string  `json:"medicationName"`
	AdherenceRate    float64 `json:"adherenceRate"`
	PatientCount     int     `json:"patientCount"`
	NonAdherenceRate float64 `json:"nonAdherenceRate"`
}

// CompareMedications summarizes each named medication that has patients,
// sorted by non-adherence descending. Blank names are skipped.
func CompareMedications(patients []Patient, names []string) []MedicationComparison {
	out := make([]MedicationComparison, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		on := TakingMedication(patients, name)
		if len(on) == 0 {
			continue
		}
		mean := MeanAdherence(on)
		out = append(out, MedicationComparison{
			MedicationName:   name,
			AdherenceRate:    Round3(mean),
			PatientCount:     len(on),
			NonAdherenceRate: Round3(1 - mean),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].NonAdherenceRate > out[j].NonAdherenceRate
	})
	return out
}
