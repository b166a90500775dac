package prediction

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"medication-adherence/internal/platform/apperr"
)

// Buckets locate model artifacts and inference output.
type Buckets struct {
	Models string
	Data   string
}

type Service interface {
	StartBatch(ctx context.Context, req BatchRequest) (Job, error)
	Job(ctx context.Context, id string) (Job, error)
	Jobs(ctx context.Context) ([]Job, error)

	CreateSchedule(ctx context.Context, req ScheduleRequest) (Schedule, error)
	Schedule(ctx context.Context, id string) (Schedule, error)
	Schedules(ctx context.Context) ([]Schedule, error)
	UpdateSchedule(ctx context.Context, id string, upd ScheduleUpdate) (Schedule, error)
	DeleteSchedule(ctx context.Context, id string) error

	StartTraining(ctx context.Context, req TrainingRequest) (TrainingJob, error)
	RunInference(ctx context.Context, req InferenceRequest) (InferenceJob, error)
}

type service struct {
	jobs      JobRepository
	schedules ScheduleRepository
	runner    BatchRunner
	rules     RuleManager
	buckets   Buckets
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(jobs JobRepository, schedules ScheduleRepository, runner BatchRunner, rules RuleManager, buckets Buckets, logger zerolog.Logger) Service {
	return &service{
		jobs:      jobs,
		schedules: schedules,
		runner:    runner,
		rules:     rules,
		buckets:   buckets,
		logger:    logger.With().Str("component", "prediction").Logger(),
		now:       time.Now,
	}
}

func shortID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (s *service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func (s *service) StartBatch(ctx context.Context, req BatchRequest) (Job, error) {
	job := Job{
		JobID:          shortID("job-"),
		Status:         StatusPending,
		Cohort:         req.Cohort,
		DateRangeStart: req.DateRangeStart,
		DateRangeEnd:   req.DateRangeEnd,
		CreatedAt:      s.timestamp(),
	}
	if job.Cohort == "" {
		job.Cohort = DefaultCohort
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return Job{}, err
	}

	log := s.logger.With().Str("job_id", job.JobID).Logger()
	if err := s.runner.Submit(ctx, job); err != nil {
		log.Error().Err(err).Msg("batch submission failed")
		if _, uerr := s.jobs.Update(ctx, job.JobID, map[string]any{
			"status":       StatusFailed,
			"errorMessage": err.Error(),
		}); uerr != nil {
			log.Error().Err(uerr).Msg("failed to mark job failed")
		}
		return Job{}, fmt.Errorf("submit batch job: %w", err)
	}

	started := s.timestamp()
	if _, err := s.jobs.Update(ctx, job.JobID, map[string]any{
		"status":    StatusRunning,
		"startedAt": started,
	}); err != nil {
		return Job{}, err
	}
	log.Info().Str("cohort", job.Cohort).Msg("batch prediction started")

	// The response carries the record as first written.
	return job, nil
}

// Job returns the job, refreshing running jobs from the batch platform.
// A failed refresh is logged and the stored record returned as is.
func (s *service) Job(ctx context.Context, id string) (Job, error) {
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return Job{}, err
	}
	if job.Status != StatusRunning {
		return job, nil
	}

	st, err := s.runner.Status(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", id).Msg("failed to refresh job status")
		return job, nil
	}
	if st.Status == job.Status && st.Progress == job.Progress {
		return job, nil
	}
	updated, err := s.jobs.Update(ctx, id, map[string]any{
		"status":   st.Status,
		"progress": st.Progress,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("job_id", id).Msg("failed to persist job status")
		job.Status, job.Progress = st.Status, st.Progress
		return job, nil
	}
	return updated, nil
}

func (s *service) Jobs(ctx context.Context) ([]Job, error) {
	return s.jobs.List(ctx)
}

func (s *service) nextRun(f Frequency) string {
	days := 1
	switch f {
	case Weekly:
		days = 7
	case Monthly:
		days = 30
	}
	return s.now().UTC().AddDate(0, 0, days).Format(time.RFC3339)
}

func (s *service) CreateSchedule(ctx context.Context, req ScheduleRequest) (Schedule, error) {
	id := shortID("schedule-")
	sch := Schedule{
		ScheduleID: id,
		Name:       req.Name,
		Frequency:  req.Frequency,
		Cohort:     req.Cohort,
		Enabled:    true,
		CreatedBy:  req.CreatedBy,
		CreatedAt:  s.timestamp(),
	}
	if sch.Name == "" {
		sch.Name = "Schedule " + id
	}
	if sch.Frequency == "" {
		sch.Frequency = Daily
	}
	if sch.Cohort == "" {
		sch.Cohort = DefaultCohort
	}
	if req.Enabled != nil {
		sch.Enabled = *req.Enabled
	}
	if sch.CreatedBy == "" {
		sch.CreatedBy = "system"
	}
	sch.NextRun = s.nextRun(sch.Frequency)

	if err := s.schedules.Save(ctx, sch); err != nil {
		return Schedule{}, err
	}
	if err := s.rules.PutRule(ctx, RuleName(id), CronExpression(sch.Frequency)); err != nil {
		s.logger.Error().Err(err).Str("schedule_id", id).Msg("failed to create schedule rule")
	}
	return sch, nil
}

func (s *service) Schedule(ctx context.Context, id string) (Schedule, error) {
	return s.schedules.Get(ctx, id)
}

func (s *service) Schedules(ctx context.Context) ([]Schedule, error) {
	return s.schedules.List(ctx)
}

func (s *service) UpdateSchedule(ctx context.Context, id string, upd ScheduleUpdate) (Schedule, error) {
	fields := map[string]any{}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Frequency != nil {
		fields["frequency"] = *upd.Frequency
		fields["nextRun"] = s.nextRun(*upd.Frequency)
	}
	if upd.Enabled != nil {
		fields["enabled"] = *upd.Enabled
	}
	if len(fields) == 0 {
		return Schedule{}, apperr.BadRequest("No valid updates provided")
	}
	return s.schedules.Update(ctx, id, fields)
}

func (s *service) DeleteSchedule(ctx context.Context, id string) error {
	if err := s.rules.DeleteRule(ctx, RuleName(id)); err != nil {
		s.logger.Error().Err(err).Str("schedule_id", id).Msg("failed to delete schedule rule")
	}
	return s.schedules.Delete(ctx, id)
}

var invalidModelChars = regexp.MustCompile(`[^a-zA-Z0-9-]`)

// SanitizeModelName replaces characters the training platform rejects and
// truncates to its name limit.
func SanitizeModelName(name string) string {
	name = invalidModelChars.ReplaceAllString(name, "-")
	if len(name) > maxModelNameLength {
		name = name[:maxModelNameLength]
	}
	return name
}

func (s *service) StartTraining(_ context.Context, req TrainingRequest) (TrainingJob, error) {
	if req.DatasetURI == "" {
		return TrainingJob{}, apperr.BadRequest("datasetUri is required")
	}
	name := req.ModelName
	if name == "" {
		name = DefaultModelName
	}
	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}

	id := fmt.Sprintf("%s-%s", SanitizeModelName(name), s.now().UTC().Format("20060102-150405"))
	s.logger.Info().Str("training_job_id", id).Str("dataset", req.DatasetURI).Str("algorithm", algorithm).Msg("training job started")

	tj := TrainingJob{
		TrainingJobID: id,
		Status:        "InProgress",
		Algorithm:     algorithm,
		Message:       "Training job started successfully",
	}
	if s.buckets.Models != "" {
		tj.OutputURI = fmt.Sprintf("s3://%s/models/%s/", s.buckets.Models, id)
	}
	return tj, nil
}

func (s *service) RunInference(_ context.Context, req InferenceRequest) (InferenceJob, error) {
	if req.InputDataURI == "" {
		return InferenceJob{}, apperr.BadRequest("inputDataUri is required")
	}
	version := req.ModelVersion
	if version == "" {
		version = DefaultModelVersion
	}
	id := uuid.NewString()
	s.logger.Info().Str("inference_job_id", id).Str("input", req.InputDataURI).Str("model_version", version).Msg("inference completed")

	return InferenceJob{
		InferenceJobID: id,
		Status:         string(StatusCompleted),
		ModelVersion:   version,
		Predictions:    []any{},
		DriftScore:     simulatedDriftScore,
		ResultsURI:     fmt.Sprintf("s3://%s/inference-results/%s.json", s.buckets.Data, id),
		Timestamp:      s.timestamp(),
	}, nil
}
