package adherence

import (
	"fmt"
	"math"
	"time"
)

// AnomalyGapDays is the refill gap beyond which a refill is flagged.
const AnomalyGapDays = 7

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseISO accepts the ISO-8601 shapes written by ingestion.
func ParseISO(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO date %q", s)
}

type RefillEvent struct {
	Refill
	RefillGap int  `json:"refillGap"`
	IsAnomaly bool `json:"isAnomaly"`
}

type MedicationTimeline struct {
	Medication    Medication    `json:"medication"`
	RefillHistory []RefillEvent `json:"refillHistory"`
	LastRefill    *RefillEvent  `json:"lastRefill"`
	NextExpected  *string       `json:"nextExpected"`
}

// BuildTimeline annotates each refill with the gap in whole days between the
// previous refill's expected date and the actual refill date. The first refill
// has gap 0.
func BuildTimeline(m Medication) (MedicationTimeline, error) {
	events := make([]RefillEvent, 0, len(m.RefillHistory))
	for i, r := range m.RefillHistory {
		ev := RefillEvent{Refill: r}
		if i > 0 {
			expected, err := ParseISO(m.RefillHistory[i-1].NextExpectedDate)
			if err != nil {
				return MedicationTimeline{}, fmt.Errorf("medication %s: %w", m.DisplayName(), err)
			}
			actual, err := ParseISO(r.RefillDate)
			if err != nil {
				return MedicationTimeline{}, fmt.Errorf("medication %s: %w", m.DisplayName(), err)
			}
			ev.RefillGap = int(math.Floor(actual.Sub(expected).Hours() / 24))
			ev.IsAnomaly = abs(ev.RefillGap) > AnomalyGapDays
		}
		events = append(events, ev)
	}

	tl := MedicationTimeline{Medication: m, RefillHistory: events}
	if n := len(events); n > 0 {
		last := events[n-1]
		next := last.NextExpectedDate
		tl.LastRefill = &last
		tl.NextExpected = &next
	}
	return tl, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
