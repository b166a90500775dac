package genai

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/platform/apperr"
)

// Completer produces text for a prompt. It reports failures in-band.
type Completer interface {
	Complete(ctx context.Context, prompt string) string
}

// PatientGetter loads one patient record.
type PatientGetter interface {
	GetByID(ctx context.Context, id string) (adherence.Patient, error)
}

type Service interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Context(ctx context.Context, conversationID string) (ContextResponse, error)
	Reset(ctx context.Context, conversationID string) error
	Explain(ctx context.Context, patientID string) (Explanation, error)
	Script(ctx context.Context, patientID, interventionType string) (Script, error)
}

type service struct {
	repo      Repository
	patients  PatientGetter
	assistant Completer
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(repo Repository, patients PatientGetter, assistant Completer, logger zerolog.Logger) Service {
	return &service{
		repo:      repo,
		patients:  patients,
		assistant: assistant,
		logger:    logger.With().Str("component", "genai").Logger(),
		now:       time.Now,
	}
}

// Chat answers a message. History is loaded and saved only when a
// conversation id is supplied.
func (s *service) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	var history []Message
	if req.ConversationID != "" {
		h, err := s.repo.History(ctx, req.ConversationID)
		if err != nil {
			return ChatResponse{}, err
		}
		history = h
	}

	answer := s.assistant.Complete(ctx, buildChatPrompt(req.Message, history, req.Context))

	resp := ChatResponse{
		Message:    answer,
		Citations:  citations(req.Context),
		Confidence: ResponseConfidence,
	}
	if req.ConversationID != "" {
		now := s.now().UTC()
		err := s.repo.Append(ctx, req.ConversationID,
			Message{Role: "user", Content: req.Message, Timestamp: now},
			Message{Role: "assistant", Content: answer, Timestamp: now},
		)
		if err != nil {
			return ChatResponse{}, err
		}
		id := req.ConversationID
		resp.ConversationID = &id
	}
	return resp, nil
}

func (s *service) Context(ctx context.Context, conversationID string) (ContextResponse, error) {
	if conversationID == "" {
		return ContextResponse{}, apperr.BadRequest("Conversation ID required")
	}
	msgs, err := s.repo.History(ctx, conversationID)
	if err != nil {
		return ContextResponse{}, err
	}
	return ContextResponse{ConversationID: conversationID, Messages: msgs}, nil
}

func (s *service) Reset(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return apperr.BadRequest("Conversation ID required")
	}
	if err := s.repo.Delete(ctx, conversationID); err != nil {
		return err
	}
	s.logger.Info().Str("conversation_id", conversationID).Msg("conversation reset")
	return nil
}

func (s *service) patient(ctx context.Context, id string) (adherence.Patient, error) {
	if id == "" {
		return adherence.Patient{}, apperr.BadRequest("Patient ID required")
	}
	return s.patients.GetByID(ctx, id)
}

func (s *service) Explain(ctx context.Context, patientID string) (Explanation, error) {
	p, err := s.patient(ctx, patientID)
	if err != nil {
		return Explanation{}, err
	}
	return Explanation{
		Explanation: s.assistant.Complete(ctx, buildExplainPrompt(p)),
		RiskFactors: adherence.RiskFactors(p),
		Citations: []Citation{
			{Source: patientRecordSource, Confidence: 1.0},
			{Source: riskModelSource, Confidence: ResponseConfidence},
		},
	}, nil
}

func (s *service) Script(ctx context.Context, patientID, interventionType string) (Script, error) {
	p, err := s.patient(ctx, patientID)
	if err != nil {
		return Script{}, err
	}
	interventionType = orDefault(interventionType, DefaultIntervention)
	return Script{
		Script:           s.assistant.Complete(ctx, buildScriptPrompt(p, interventionType)),
		PatientName:      p.NameOrDefault(),
		InterventionType: interventionType,
		GeneratedAt:      s.now().UTC().Format(time.RFC3339),
	}, nil
}
