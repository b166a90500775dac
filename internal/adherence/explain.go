package adherence

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ShapValue is one feature contribution to a risk prediction.
type ShapValue struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
	Description  string  `json:"description"`
}

// ExplainRisk produces placeholder feature contributions from simple
// thresholds on the record. Contributions are fixed weights, not model output.
// Result is ordered by absolute contribution and capped at five entries.
func ExplainRisk(p Patient) []ShapValue {
	var values []ShapValue

	if gap := p.RefillGap(); gap > 5 {
		values = append(values, ShapValue{
			Feature:      "refill_gap",
			Value:        gap,
			Contribution: 0.32,
			Description:  fmt.Sprintf("Long refill gap (%s days average)", formatNumber(gap)),
		})
	}
	if n := len(p.Medications); n > 3 {
		values = append(values, ShapValue{
			Feature:      "medication_count",
			Value:        float64(n),
			Contribution: 0.12,
			Description:  fmt.Sprintf("Multiple medications (%d active)", n),
		})
	}
	if mpr := p.Adherence(); mpr > 0.8 {
		values = append(values, ShapValue{
			Feature:      "mpr_trend",
			Value:        mpr,
			Contribution: -0.15,
			Description:  fmt.Sprintf("Stable MPR trend (%.2f)", mpr),
		})
	}
	if age := p.AgeOrDefault(); age > 65 {
		values = append(values, ShapValue{
			Feature:      "age",
			Value:        float64(age),
			Contribution: 0.08,
			Description:  fmt.Sprintf("Age factor (%d years)", age),
		})
	}
	if n := len(p.ChronicConditions); n > 2 {
		values = append(values, ShapValue{
			Feature:      "chronic_conditions",
			Value:        float64(n),
			Contribution: 0.10,
			Description:  fmt.Sprintf("Multiple chronic conditions (%d)", n),
		})
	}

	sort.SliceStable(values, func(i, j int) bool {
		return math.Abs(values[i].Contribution) > math.Abs(values[j].Contribution)
	})
	if len(values) > 5 {
		values = values[:5]
	}
	if values == nil {
		values = []ShapValue{}
	}
	return values
}

// RiskFactors lists human-readable risk drivers used in explanations.
func RiskFactors(p Patient) []string {
	factors := []string{}
	if gap := p.RefillGap(); gap > 5 {
		factors = append(factors, fmt.Sprintf("Refill gap: %s days", formatNumber(gap)))
	}
	if n := len(p.Medications); n > 3 {
		factors = append(factors, fmt.Sprintf("Multiple medications (%d)", n))
	}
	if mpr := p.Adherence(); mpr < 0.7 {
		factors = append(factors, fmt.Sprintf("Low adherence rate (%.2f%%)", mpr*100))
	}
	return factors
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
