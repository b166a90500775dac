package genai

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

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	resp, err := h.svc.Chat(r.Context(), req)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Context(r.Context(), r.URL.Query().Get("conversationId"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConversationID string `json:"conversationId"`
	}
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.svc.Reset(r.Context(), req.ConversationID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Context reset successfully"})
}

func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	var req PatientRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	resp, err := h.svc.Explain(r.Context(), req.PatientID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Script(w http.ResponseWriter, r *http.Request) {
	var req PatientRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	resp, err := h.svc.Script(r.Context(), req.PatientID, req.InterventionType)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, resp)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/genai/chat", h.Chat)
	r.Get("/genai/context", h.Context)
	r.Post("/genai/context/reset", h.Reset)
	r.Post("/genai/explain", h.Explain)
	r.Post("/genai/script", h.Script)
}
