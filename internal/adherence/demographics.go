package adherence

import "sort"

type Demographics struct {
	AgeGroups             map[string]int `json:"ageGroups"`
	GenderDistribution    map[string]int `json:"genderDistribution"`
	ConditionDistribution map[string]int `json:"conditionDistribution"`
}

// AgeGroup buckets an age into <30, 30-49, 50-64 or 65+.
func AgeGroup(age int) string {
	switch {
	case age < 30:
		return "<30"
	case age < 50:
		return "30-49"
	case age < 65:
		return "50-64"
	default:
		return "65+"
	}
}

// ComputeDemographics tallies age groups, genders and chronic conditions.
// Only buckets with at least one patient appear.
func ComputeDemographics(patients []Patient) Demographics {
	d := Demographics{
		AgeGroups:             map[string]int{},
		GenderDistribution:    map[string]int{},
		ConditionDistribution: map[string]int{},
	}
	for _, p := range patients {
		d.AgeGroups[AgeGroup(p.AgeOrDefault())]++
		d.GenderDistribution[p.GenderOrDefault()]++
		for _, c := range p.ChronicConditions {
			d.ConditionDistribution[c]++
		}
	}
	return d
}

type ConditionAdherence struct {
	Condition     string  `json:"condition"`
	AdherenceRate float64 `json:"adherenceRate"`
	PatientCount  int     `json:"patientCount"`
}

// ConditionComparison averages adherence per chronic condition, worst first.
func ConditionComparison(patients []Patient) []ConditionAdherence {
	type stats struct {
		total int
		sum   float64
	}
	byCondition := map[string]*stats{}
	for _, p := range patients {
		for _, c := range p.ChronicConditions {
			s, ok := byCondition[c]
			if !ok {
				s = &stats{}
				byCondition[c] = s
			}
			s.total++
			s.sum += p.Adherence()
		}
	}

	out := make([]ConditionAdherence, 0, len(byCondition))
	for c, s := range byCondition {
		out = append(out, ConditionAdherence{
			Condition:     c,
			AdherenceRate: Round3(s.sum / float64(s.total)),
			PatientCount:  s.total,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AdherenceRate != out[j].AdherenceRate {
			return out[i].AdherenceRate < out[j].AdherenceRate
		}
		return out[i].Condition < out[j].Condition
	})
	return out
}

// MPR distribution buckets.
const (
	MPRHigh   = "High (>0.8)"
	MPRMedium = "Medium (0.6-0.8)"
	MPRLow    = "Low (<0.6)"
)

// MPRDistribution counts patients per adherence band. All three bands are
// always present.
func MPRDistribution(patients []Patient) map[string]int {
	dist := map[string]int{MPRHigh: 0, MPRMedium: 0, MPRLow: 0}
	for _, p := range patients {
		switch mpr := p.Adherence(); {
		case mpr > 0.8:
			dist[MPRHigh]++
		case mpr >= 0.6:
			dist[MPRMedium]++
		default:
			dist[MPRLow]++
		}
	}
	return dist
}
