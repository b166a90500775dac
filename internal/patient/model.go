package patient

import "medication-adherence/internal/adherence"

// Note is an append-only care note.
type Note struct {
	ID         string `json:"id"`
	PatientID  string `json:"patientId"`
	Author     string `json:"author"`
	AuthorRole string `json:"authorRole"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	CreatedAt  string `json:"createdAt"`
}

type NoteRequest struct {
	Author     string `json:"author"`
	AuthorRole string `json:"authorRole"`
	Content    string `json:"content"`
	Type       string `json:"type"`
}

// ListParams filters and pages the patient list.
type ListParams struct {
	Risk      string
	Condition string
	Limit     int
	Offset    int
}

const (
	DefaultLimit  = 50
	DefaultOffset = 0
)

type ListResult struct {
	Patients []adherence.Patient `json:"patients"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
}

// RiskPrediction is the stored risk score decorated with explanations.
type RiskPrediction struct {
	ID             string                `json:"id"`
	PatientID      string                `json:"patientId"`
	RiskScore      float64               `json:"riskScore"`
	RiskCategory   adherence.RiskLevel   `json:"riskCategory"`
	PredictionDate string                `json:"predictionDate"`
	ShapValues     []adherence.ShapValue `json:"shapValues"`
	Confidence     float64               `json:"confidence"`
	ModelVersion   string                `json:"modelVersion"`
}

const (
	PredictionConfidence = 0.85
	ModelVersion         = "v1.0.0"
)

type InterventionsResult struct {
	Interventions []adherence.Intervention `json:"interventions"`
	Recommended   []adherence.Intervention `json:"recommended"`
}
