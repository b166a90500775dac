package prediction

type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job is a batch prediction run. Status moves pending -> running ->
// completed or failed.
type Job struct {
	JobID          string    `json:"jobId"`
	Status         JobStatus `json:"status"`
	Cohort         string    `json:"cohort"`
	DateRangeStart *string   `json:"dateRangeStart"`
	DateRangeEnd   *string   `json:"dateRangeEnd"`
	Progress       int       `json:"progress"`
	CreatedAt      string    `json:"createdAt"`
	StartedAt      string    `json:"startedAt,omitempty"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
}

type BatchRequest struct {
	Cohort         string  `json:"cohort"`
	DateRangeStart *string `json:"dateRangeStart"`
	DateRangeEnd   *string `json:"dateRangeEnd"`
}

type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

type Schedule struct {
	ScheduleID string    `json:"scheduleId"`
	Name       string    `json:"name"`
	Frequency  Frequency `json:"frequency"`
	Cohort     string    `json:"cohort"`
	Enabled    bool      `json:"enabled"`
	NextRun    string    `json:"nextRun"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  string    `json:"createdAt"`
}

type ScheduleRequest struct {
	Name      string    `json:"name"`
	Frequency Frequency `json:"frequency"`
	Cohort    string    `json:"cohort"`
	Enabled   *bool     `json:"enabled"`
	CreatedBy string    `json:"createdBy"`
}

// ScheduleUpdate carries only the fields present in the request body.
type ScheduleUpdate struct {
	Name      *string    `json:"name"`
	Frequency *Frequency `json:"frequency"`
	Enabled   *bool      `json:"enabled"`
}

type TrainingRequest struct {
	DatasetURI string `json:"datasetUri"`
	ModelName  string `json:"modelName"`
	Algorithm  string `json:"algorithm"`
}

type TrainingJob struct {
	TrainingJobID string `json:"trainingJobId"`
	Status        string `json:"status"`
	Algorithm     string `json:"algorithm"`
	OutputURI     string `json:"outputUri,omitempty"`
	Message       string `json:"message"`
}

type InferenceRequest struct {
	InputDataURI string `json:"inputDataUri"`
	ModelVersion string `json:"modelVersion"`
}

type InferenceJob struct {
	InferenceJobID string  `json:"inferenceJobId"`
	Status         string  `json:"status"`
	ModelVersion   string  `json:"modelVersion"`
	Predictions    []any   `json:"predictions"`
	DriftScore     float64 `json:"driftScore"`
	ResultsURI     string  `json:"resultsUri"`
	Timestamp      string  `json:"timestamp"`
}

const (
	DefaultCohort       = "all"
	DefaultModelName    = "medication-adherence-model"
	DefaultAlgorithm    = "RandomForest"
	DefaultModelVersion = "latest"
	maxModelNameLength  = 50
	simulatedDriftScore = 0.05
)
