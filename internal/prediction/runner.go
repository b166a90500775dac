package prediction

import (
	"context"

	"github.com/rs/zerolog"
)

// RunStatus is what the batch platform reports for a job.
type RunStatus struct {
	Status   JobStatus
	Progress int
}

// BatchRunner submits batch prediction jobs to the ML platform.
type BatchRunner interface {
	Submit(ctx context.Context, job Job) error
	Status(ctx context.Context, jobID string) (RunStatus, error)
}

// SimulatedRunner accepts every job and reports it half done.
type SimulatedRunner struct {
	logger zerolog.Logger
}

func NewSimulatedRunner(logger zerolog.Logger) *SimulatedRunner {
	return &SimulatedRunner{logger: logger.With().Str("component", "batch_runner").Logger()}
}

func (r *SimulatedRunner) Submit(_ context.Context, job Job) error {
	r.logger.Info().Str("job_id", job.JobID).Str("cohort", job.Cohort).Msg("batch job submitted")
	return nil
}

func (r *SimulatedRunner) Status(context.Context, string) (RunStatus, error) {
	return RunStatus{Status: StatusRunning, Progress: 50}, nil
}

// RuleManager registers recurring triggers for schedules.
type RuleManager interface {
	PutRule(ctx context.Context, name, cronExpr string) error
	DeleteRule(ctx context.Context, name string) error
}

// LogRuleManager records rule changes in the log only.
type LogRuleManager struct {
	logger zerolog.Logger
}

func NewLogRuleManager(logger zerolog.Logger) *LogRuleManager {
	return &LogRuleManager{logger: logger.With().Str("component", "rule_manager").Logger()}
}

func (m *LogRuleManager) PutRule(_ context.Context, name, cronExpr string) error {
	m.logger.Info().Str("rule", name).Str("cron", cronExpr).Msg("schedule rule created")
	return nil
}

func (m *LogRuleManager) DeleteRule(_ context.Context, name string) error {
	m.logger.Info().Str("rule", name).Msg("schedule rule deleted")
	return nil
}

// RuleName is the trigger name for a schedule.
func RuleName(scheduleID string) string {
	return "adherence-prediction-" + scheduleID
}

// CronExpression maps a frequency to a five-field cron expression firing at
// midnight UTC. Unknown frequencies run daily.
func CronExpression(f Frequency) string {
	switch f {
	case Weekly:
		return "0 0 * * 1"
	case Monthly:
		return "0 0 1 * *"
	default:
		return "0 0 * * *"
	}
}
