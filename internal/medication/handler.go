package medication

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"medication-adherence/internal/adherence"
	"medication-adherence/internal/platform/apperr"
	"medication-adherence/internal/platform/respond"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// medicationName reads the {id} segment, which is the medication name and
// may carry escaped spaces.
func medicationName(r *http.Request) (string, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		return "", apperr.BadRequest("invalid medication id")
	}
	return name, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"medications": names})
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	name, err := medicationName(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	a, err := h.svc.Analytics(r.Context(), name)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, a)
}

func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	name, err := medicationName(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	t, err := h.svc.Trends(r.Context(), name, adherence.ParsePeriod(r.URL.Query().Get("period")))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, t)
}

func (h *Handler) Demographics(w http.ResponseWriter, r *http.Request) {
	name, err := medicationName(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	d, err := h.svc.Demographics(r.Context(), name)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, d)
}

func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	name, err := medicationName(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	f, err := h.svc.Forecast(r.Context(), name)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"forecast": f})
}

func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Compare(r.Context(), strings.Split(r.URL.Query().Get("ids"), ","))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"comparison": c})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/medications", h.List)
	r.Get("/medications/compare", h.Compare)
	r.Get("/medications/{id}/analytics", h.Analytics)
	r.Get("/medications/{id}/trends", h.Trends)
	r.Get("/medications/{id}/demographics", h.Demographics)
	r.Get("/medications/{id}/forecast", h.Forecast)
}
