package genai

import "time"

type Message struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the stored chat history for one conversation id.
type Conversation struct {
	ConversationID string    `json:"conversationId"`
	Messages       []Message `json:"messages"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ChatContext is what the UI was showing when the question was asked.
type ChatContext struct {
	PatientID    string `json:"patientId,omitempty"`
	MedicationID string `json:"medicationId,omitempty"`
	PageContext  string `json:"pageContext,omitempty"`
}

type ChatRequest struct {
	Message        string      `json:"message"`
	ConversationID string      `json:"conversationId"`
	Context        ChatContext `json:"context"`
}

type Citation struct {
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

type ChatResponse struct {
	Message        string     `json:"message"`
	Citations      []Citation `json:"citations"`
	Confidence     float64    `json:"confidence"`
	ConversationID *string    `json:"conversationId"`
}

type ContextResponse struct {
	ConversationID string    `json:"conversationId"`
	Messages       []Message `json:"messages"`
}

type PatientRequest struct {
	PatientID        string `json:"patientId"`
	InterventionType string `json:"interventionType"`
}

type Explanation struct {
	Explanation string     `json:"explanation"`
	RiskFactors []string   `json:"riskFactors"`
	Citations   []Citation `json:"citations"`
}

type Script struct {
	Script           string `json:"script"`
	PatientName      string `json:"patientName"`
	InterventionType string `json:"interventionType"`
	GeneratedAt      string `json:"generatedAt"`
}

const (
	// ResponseConfidence is reported on every chat answer.
	ResponseConfidence   = 0.85
	HistoryWindow        = 5
	DefaultIntervention  = "follow_up_call"
	patientRecordSource  = "Patient Record"
	riskModelSource      = "Risk Prediction Model"
	medicationDataSource = "Medication Analytics"
)
