package patient

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"medication-adherence/internal/platform/apperr"
	"medication-adherence/internal/platform/respond"
	"medication-adherence/internal/report"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), DefaultLimit)
	if err != nil {
		respond.Error(w, r, apperr.BadRequest("invalid limit: %s", q.Get("limit")))
		return
	}
	offset, err := intParam(q.Get("offset"), DefaultOffset)
	if err != nil {
		respond.Error(w, r, apperr.BadRequest("invalid offset: %s", q.Get("offset")))
		return
	}

	res, err := h.svc.List(r.Context(), ListParams{
		Risk:      q.Get("risk"),
		Condition: q.Get("condition"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

func (h *Handler) Medications(w http.ResponseWriter, r *http.Request) {
	meds, err := h.svc.Medications(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"medications": meds})
}

func (h *Handler) Risk(w http.ResponseWriter, r *http.Request) {
	pred, err := h.svc.Risk(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, pred)
}

func (h *Handler) Interventions(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Interventions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.Notes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	n, err := h.svc.AddNote(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, n)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, err := h.svc.Report(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+report.FileName(id)+`"`)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) SendReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.SendReport(r.Context(), id); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Report sent", "patientId": id})
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/patients", h.List)
	r.Get("/patients/{id}", h.Get)
	r.Get("/patients/{id}/medications", h.Medications)
	r.Get("/patients/{id}/risk", h.Risk)
	r.Get("/patients/{id}/interventions", h.Interventions)
	r.Get("/patients/{id}/notes", h.Notes)
	r.Post("/patients/{id}/notes", h.AddNote)
	r.Get("/patients/{id}/report", h.Report)
	r.Post("/patients/{id}/report/send", h.SendReport)
}
