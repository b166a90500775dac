package patient

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/platform/apperr"
)

// Reporter renders and delivers the patient PDF report.
type Reporter interface {
	Render(p adherence.Patient) ([]byte, error)
	Send(ctx context.Context, p adherence.Patient) error
}

type Service interface {
	List(ctx context.Context, params ListParams) (ListResult, error)
	Get(ctx context.Context, id string) (adherence.Patient, error)
	Medications(ctx context.Context, id string) ([]adherence.MedicationTimeline, error)
	Risk(ctx context.Context, id string) (RiskPrediction, error)
	Interventions(ctx context.Context, id string) (InterventionsResult, error)
	Notes(ctx context.Context, id string) ([]Note, error)
	AddNote(ctx context.Context, id string, req NoteRequest) (Note, error)
	Report(ctx context.Context, id string) ([]byte, error)
	SendReport(ctx context.Context, id string) error
}

type service struct {
	repo     Repository
	reporter Reporter
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, reporter Reporter, logger zerolog.Logger) Service {
	return &service{
		repo:     repo,
		reporter: reporter,
		logger:   logger.With().Str("component", "patient").Logger(),
		now:      time.Now,
	}
}

func (s *service) List(ctx context.Context, params ListParams) (ListResult, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return ListResult{}, err
	}

	var risk adherence.RiskLevel
	if params.Risk != "" {
		level, ok := adherence.ParseRiskLevel(params.Risk)
		if !ok {
			return ListResult{}, apperr.BadRequest("risk must be high, medium or low")
		}
		risk = level
	}

	filtered := make([]adherence.Patient, 0, len(patients))
	for _, p := range patients {
		if risk != "" && adherence.RiskCategory(p.Risk()) != risk {
			continue
		}
		if params.Condition != "" && !p.HasCondition(params.Condition) {
			continue
		}
		filtered = append(filtered, p)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Risk() > filtered[j].Risk()
	})

	start := min(params.Offset, len(filtered))
	end := start + min(params.Limit, len(filtered)-start)
	return ListResult{
		Patients: filtered[start:end],
		Total:    len(filtered),
		Limit:    params.Limit,
		Offset:   params.Offset,
	}, nil
}

func (s *service) Get(ctx context.Context, id string) (adherence.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Medications(ctx context.Context, id string) ([]adherence.MedicationTimeline, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	timelines := make([]adherence.MedicationTimeline, 0, len(p.Medications))
	for _, m := range p.Medications {
		tl, err := adherence.BuildTimeline(m)
		if err != nil {
			return nil, fmt.Errorf("patient %s: %w", id, err)
		}
		timelines = append(timelines, tl)
	}
	return timelines, nil
}

func (s *service) Risk(ctx context.Context, id string) (RiskPrediction, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return RiskPrediction{}, err
	}
	now := s.now()
	score := p.Risk()
	return RiskPrediction{
		ID:             fmt.Sprintf("pred-%s-%s", id, now.Format("20060102")),
		PatientID:      id,
		RiskScore:      score,
		RiskCategory:   adherence.RiskCategory(score),
		PredictionDate: now.Format(time.RFC3339),
		ShapValues:     adherence.ExplainRisk(p),
		Confidence:     PredictionConfidence,
		ModelVersion:   ModelVersion,
	}, nil
}

// Interventions returns stored interventions plus recommendations derived
// from the current risk score. A missing patient yields no recommendations.
func (s *service) Interventions(ctx context.Context, id string) (InterventionsResult, error) {
	items, err := s.repo.Interventions(ctx, id)
	if err != nil {
		return InterventionsResult{}, err
	}
	adherence.SortInterventions(items)

	recommended := []adherence.Intervention{}
	p, err := s.repo.GetByID(ctx, id)
	switch {
	case err == nil:
		recommended = adherence.RecommendInterventions(p)
	case !apperr.IsNotFound(err):
		return InterventionsResult{}, err
	}
	return InterventionsResult{Interventions: items, Recommended: recommended}, nil
}

func (s *service) Notes(ctx context.Context, id string) ([]Note, error) {
	return s.repo.Notes(ctx, id)
}

func (s *service) AddNote(ctx context.Context, id string, req NoteRequest) (Note, error) {
	n := Note{
		ID:         "note-" + uuid.NewString(),
		PatientID:  id,
		Author:     orDefault(req.Author, "Unknown"),
		AuthorRole: orDefault(req.AuthorRole, "clinician"),
		Content:    req.Content,
		Type:       orDefault(req.Type, "clinical_note"),
		CreatedAt:  s.now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.repo.SaveNote(ctx, n); err != nil {
		return Note{}, err
	}
	s.logger.Info().Str("patient_id", id).Str("note_id", n.ID).Msg("care note added")
	return n, nil
}

func (s *service) Report(ctx context.Context, id string) ([]byte, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.reporter.Render(p)
}

func (s *service) SendReport(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.reporter.Send(ctx, p)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
