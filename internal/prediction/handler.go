package prediction

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

func (h *Handler) StartBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	job, err := h.svc.StartBatch(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, job)
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Jobs(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.Job(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, job)
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	sch, err := h.svc.CreateSchedule(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, sch)
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.svc.Schedules(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"schedules": schedules})
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	sch, err := h.svc.Schedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, sch)
}

func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var upd ScheduleUpdate
	if err := respond.Decode(r, &upd); err != nil {
		respond.Error(w, r, err)
		return
	}
	sch, err := h.svc.UpdateSchedule(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, sch)
}

func (h *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSchedule(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handler) StartTraining(w http.ResponseWriter, r *http.Request) {
	var req TrainingRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	tj, err := h.svc.StartTraining(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, tj)
}

func (h *Handler) RunInference(w http.ResponseWriter, r *http.Request) {
	var req InferenceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	ij, err := h.svc.RunInference(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, ij)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/predictions/batch", h.StartBatch)
	r.Get("/predictions/jobs", h.ListJobs)
	r.Get("/predictions/jobs/{id}", h.GetJob)
	r.Get("/predictions/schedules", h.ListSchedules)
	r.Post("/predictions/schedules", h.CreateSchedule)
	r.Get("/predictions/schedules/{id}", h.GetSchedule)
	r.Put("/predictions/schedules/{id}", h.UpdateSchedule)
	r.Delete("/predictions/schedules/{id}", h.DeleteSchedule)

	r.Post("/training/jobs", h.StartTraining)
	r.Post("/inference/jobs", h.RunInference)
}
