package adherence

import (
	"math"

	"github.com/cockroachdb/apd/v3"
)

// Patient risk cut points. All handlers bucket through RiskCategory.
const (
	HighRiskThreshold   = 0.7
	MediumRiskThreshold = 0.4
)

type RiskLevel string

const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

func RiskCategory(score float64) RiskLevel {
	switch {
	case score >= HighRiskThreshold:
		return RiskHigh
	case score >= MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ParseRiskLevel accepts "high", "medium" or "low" in any case.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch normalizeLevel(s) {
	case "high":
		return RiskHigh, true
	case "medium":
		return RiskMedium, true
	case "low":
		return RiskLow, true
	}
	return "", false
}

// RiskCounts counts high (>= 0.7) and medium ([0.4, 0.7)) risk patients.
func RiskCounts(patients []Patient) (high, medium int) {
	for _, p := range patients {
		switch RiskCategory(p.Risk()) {
		case RiskHigh:
			high++
		case RiskMedium:
			medium++
		}
	}
	return high, medium
}

// OverallAdherence is the mean adherence of patients that report one.
func OverallAdherence(patients []Patient) float64 {
	var sum float64
	var n int
	for _, p := range patients {
		if !p.HasAdherence() {
			continue
		}
		sum += p.Adherence()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// MeanAdherence averages over every patient, counting a missing rate as 0.
func MeanAdherence(patients []Patient) float64 {
	if len(patients) == 0 {
		return 0
	}
	var sum float64
	for _, p := range patients {
		sum += p.Adherence()
	}
	return sum / float64(len(patients))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

var decimalCtx = apd.Context{
	Precision:   34,
	MaxExponent: apd.MaxExponent,
	MinExponent: apd.MinExponent,
	Traps:       apd.DefaultTraps,
	Rounding:    apd.RoundHalfEven,
}

// Round3 rounds to three decimal places in decimal arithmetic so that values
// like 0.7900000000000001 serialize as 0.79.
func Round3(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	var d apd.Decimal
	if _, err := d.SetFloat64(x); err != nil {
		return x
	}
	if _, err := decimalCtx.Quantize(&d, &d, -3); err != nil {
		return x
	}
	f, err := d.Float64()
	if err != nil {
		return x
	}
	return f
}
