package adherence

import "sort"

// MissingPriority ranks interventions without a priority last.
const MissingPriority = 999

// Intervention is a recommended action for a patient. Lower priority is more
// urgent.
type Intervention struct {
	ID            string   `json:"id,omitempty"`
	PatientID     string   `json:"patientId,omitempty"`
	Type          string   `json:"type"`
	Priority      *int     `json:"priority,omitempty"`
	Effectiveness *float64 `json:"effectiveness,omitempty"`
	Description   string   `json:"description"`
	CreatedAt     string   `json:"createdAt,omitempty"`
}

func (i Intervention) PriorityOrDefault() int {
	if i.Priority == nil {
		return MissingPriority
	}
	return *i.Priority
}

func (i Intervention) EffectivenessOrDefault() float64 {
	if i.Effectiveness == nil {
		return 0
	}
	return *i.Effectiveness
}

// SortInterventions orders by priority ascending, then effectiveness descending.
func SortInterventions(items []Intervention) {
	sort.SliceStable(items, func(a, b int) bool {
		pa, pb := items[a].PriorityOrDefault(), items[b].PriorityOrDefault()
		if pa != pb {
			return pa < pb
		}
		return items[a].EffectivenessOrDefault() > items[b].EffectivenessOrDefault()
	})
}

func recommend(kind string, priority int, effectiveness float64, description string) Intervention {
	return Intervention{Type: kind, Priority: Int(priority), Effectiveness: Float(effectiveness), Description: description}
}

// RecommendInterventions derives standard interventions from the risk score.
// Low risk patients get none.
func RecommendInterventions(p Patient) []Intervention {
	switch RiskCategory(p.Risk()) {
	case RiskHigh:
		return []Intervention{
			recommend("follow_up_call", 1, 0.85, "Immediate follow-up call to assess barriers"),
			recommend("refill_reminder", 2, 0.75, "Set up automated refill reminders"),
			recommend("teleconsultation", 3, 0.70, "Schedule teleconsultation with physician"),
		}
	case RiskMedium:
		return []Intervention{
			recommend("refill_reminder", 1, 0.80, "Enable refill reminder notifications"),
			recommend("follow_up_call", 2, 0.65, "Scheduled check-in call"),
		}
	default:
		return []Intervention{}
	}
}
