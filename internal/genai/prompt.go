package genai

import (
	"fmt"
	"strings"

	"medication-adherence/internal/adherence"
)

const systemPrompt = `You are a helpful AI assistant for a medication adherence prediction system.
You help healthcare providers understand patient adherence patterns, risk predictions, and intervention strategies.
Be professional, compassionate, and data-driven in your responses. Always cite your sources and indicate confidence levels.`

// buildChatPrompt assembles the system prompt, UI context and the last
// HistoryWindow messages ahead of the new user message.
func buildChatPrompt(message string, history []Message, c ChatContext) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n")

	if c.PatientID != "" {
		fmt.Fprintf(&b, "\nCurrent patient context: %s", c.PatientID)
	}
	if c.MedicationID != "" {
		fmt.Fprintf(&b, "\nCurrent medication context: %s", c.MedicationID)
	}
	if c.PageContext != "" {
		fmt.Fprintf(&b, "\nCurrent page: %s", c.PageContext)
	}
	b.WriteString("\n")

	if len(history) > 0 {
		b.WriteString("\n\nConversation history:\n")
		start := max(len(history)-HistoryWindow, 0)
		for _, m := range history[start:] {
			fmt.Fprintf(&b, "%s: %s\n", capitalize(orDefault(m.Role, "user")), m.Content)
		}
	}

	fmt.Fprintf(&b, "\nUser: %s", message)
	return b.String()
}

// citations lists the data sources implied by the chat context.
func citations(c ChatContext) []Citation {
	out := []Citation{}
	if c.PatientID != "" {
		out = append(out,
			Citation{Source: patientRecordSource, Confidence: 1.0},
			Citation{Source: riskModelSource, Confidence: ResponseConfidence},
		)
	}
	if c.MedicationID != "" {
		out = append(out, Citation{Source: medicationDataSource, Confidence: ResponseConfidence})
	}
	return out
}

func buildExplainPrompt(p adherence.Patient) string {
	return fmt.Sprintf(`Explain why this patient is predicted to be non-adherent to their medication:

Patient Information:
- Age: %s
- Gender: %s
- Chronic Conditions: %s
- Current Adherence Rate: %.2f%%
- Risk Score: %.2f
- Average Refill Gap: %g days
- Number of Medications: %d

Provide a clear, compassionate explanation that a healthcare provider can use to understand the patient's situation and plan interventions.`,
		ageText(p), p.GenderOrDefault(), strings.Join(p.ChronicConditions, ", "),
		p.Adherence()*100, p.Risk(), p.RefillGap(), len(p.Medications))
}

func buildScriptPrompt(p adherence.Patient, interventionType string) string {
	return fmt.Sprintf(`Generate a compassionate, professional outreach script for a %s with this patient:

Patient Information:
- Name: %s
- Age: %s
- Medications: %s
- Chronic Conditions: %s
- Recent Adherence Issues: %g day average refill gap

The script should:
1. Be warm and empathetic
2. Address specific adherence concerns
3. Offer support and resources
4. Be culturally sensitive
5. Include open-ended questions to understand barriers
6. Suggest practical solutions

Format the script with clear sections for introduction, main discussion points, and closing.`,
		strings.ReplaceAll(interventionType, "_", " "), p.NameOrDefault(), ageText(p),
		strings.Join(p.MedicationNames(), ", "), strings.Join(p.ChronicConditions, ", "), p.RefillGap())
}

func ageText(p adherence.Patient) string {
	if p.Age == nil {
		return "Unknown"
	}
	return fmt.Sprint(*p.Age)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
