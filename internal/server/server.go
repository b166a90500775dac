// Package server assembles the HTTP API from the domain packages.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/agent"
	"medication-adherence/internal/config"
	"medication-adherence/internal/dashboard"
	"medication-adherence/internal/genai"
	"medication-adherence/internal/medication"
	"medication-adherence/internal/patient"
	"medication-adherence/internal/platform/middleware"
	"medication-adherence/internal/platform/respond"
	"medication-adherence/internal/platform/store"
	"medication-adherence/internal/platform/telegram"
	"medication-adherence/internal/prediction"
	"medication-adherence/internal/report"
)

// Services are the domain services behind the routes.
type Services struct {
	Patients    patient.Service
	Dashboard   dashboard.Service
	Medications medication.Service
	GenAI       genai.Service
	Predictions prediction.Service
}

// Clients are the outbound integrations. A nil Text generator is built from
// the LLM settings; the other nil fields fall back to disabled or simulated
// integrations.
type Clients struct {
	Text     agent.TextGenerator
	Telegram *telegram.Client
	Runner   prediction.BatchRunner
	Rules    prediction.RuleManager
}

// NewServices wires every domain service over one record store.
func NewServices(cfg *config.Config, st store.Store, clients Clients, logger zerolog.Logger) Services {
	var (
		notifier dashboard.Notifier
		sender   report.DocumentSender
	)
	if clients.Telegram.Enabled() {
		notifier = clients.Telegram
		sender = clients.Telegram
	} else {
		logger.Warn().Msg("TELEGRAM_BOT_TOKEN not set, alerts and reports will not be pushed")
	}
	if clients.Text == nil {
		clients.Text = agent.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	}
	if clients.Runner == nil {
		clients.Runner = prediction.NewSimulatedRunner(logger)
	}
	if clients.Rules == nil {
		clients.Rules = prediction.NewLogRuleManager(logger)
	}

	patients := patient.NewRepository(st, patient.Tables{
		Patients:      cfg.PatientsTable,
		Interventions: cfg.InterventionsTable,
		Notes:         cfg.NotesTable,
	})
	history := adherence.SyntheticHistory{}
	reports := report.NewService(sender, cfg.DoctorChatID, cfg.ReportFontPath, logger)
	assistant := agent.NewAssistant(clients.Text, logger)

	return Services{
		Patients:    patient.NewService(patients, reports, logger),
		Dashboard:   dashboard.NewService(patients, dashboard.NewAlertRepository(st, cfg.AlertsTable), history, notifier, cfg.DoctorChatID, logger),
		Medications: medication.NewService(patients, history),
		GenAI:       genai.NewService(genai.NewRepository(st, cfg.ConversationsTable), patients, assistant, logger),
		Predictions: prediction.NewService(
			prediction.NewJobRepository(st, cfg.JobsTable),
			prediction.NewScheduleRepository(st, cfg.SchedulesTable),
			clients.Runner, clients.Rules,
			prediction.Buckets{Models: cfg.ModelBucket, Data: cfg.DataBucket},
			logger,
		),
	}
}

// NewRouter builds the chi router with the shared middleware stack.
func NewRouter(svcs Services, timeout time.Duration, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS)
	if timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	r.NotFound(respond.NotFound)
	r.MethodNotAllowed(respond.MethodNotAllowed)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	patient.RegisterRoutes(r, patient.NewHandler(svcs.Patients))
	dashboard.RegisterRoutes(r, dashboard.NewHandler(svcs.Dashboard))
	medication.RegisterRoutes(r, medication.NewHandler(svcs.Medications))
	genai.RegisterRoutes(r, genai.NewHandler(svcs.GenAI))
	prediction.RegisterRoutes(r, prediction.NewHandler(svcs.Predictions))

	return r
}
