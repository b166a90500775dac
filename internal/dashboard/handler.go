package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"medication-adherence/internal/platform/respond"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Metrics(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, m)
}

// Trends accepts range=6months (default) or range=12months.
func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	months := 6
	if r.URL.Query().Get("range") == "12months" {
		months = 12
	}
	t, err := h.svc.Trends(r.Context(), months)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, t)
}

func (h *Handler) TopMedications(w http.ResponseWriter, r *http.Request) {
	meds, err := h.svc.TopMedications(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"medications": meds})
}

func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.svc.ActiveAlerts(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	a, err := h.svc.CreateAlert(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, a)
}

func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	var req AcknowledgeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	a, err := h.svc.AcknowledgeAlert(r.Context(), chi.URLParam(r, "id"), req.AcknowledgedBy)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, a)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/dashboard/metrics", h.Metrics)
	r.Get("/dashboard/trends", h.Trends)
	r.Get("/dashboard/top-medications", h.TopMedications)
	r.Get("/dashboard/alerts", h.Alerts)
	r.Post("/dashboard/alerts", h.CreateAlert)
	r.Post("/dashboard/alerts/{id}/acknowledge", h.AcknowledgeAlert)
}
