package activityhandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"erm/internal/domain/activity"
	"erm/internal/transport/http/api"
	"erm/internal/transport/http/middleware"
	"erm/internal/transport/http/shared"
)

type Handler struct {
	Activity *activity.Service
}

func NewHandler(act *activity.Service) *Handler {
	return &Handler{Activity: act}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/activities", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireAuth).Get("/{activityID}", h.handleGet)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	query := r.URL.Query()

	filter := activity.Filter{
		Type:        query.Get("type"),
		ActorUser:   query.Get("actor"),
		RelatedKind: query.Get("relatedKind"),
	}

	total, err := h.Activity.Count(r.Context(), filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "activities_failed", "failed to count activities", reqID)
		return
	}
	entries, err := h.Activity.List(r.Context(), filter, page.Limit, page.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "activities_failed", "failed to list activities", reqID)
		return
	}
	api.SuccessPaged(w, entries, api.Pagination{Page: page.Page, Limit: page.Limit, Total: total}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	entry, err := h.Activity.Get(r.Context(), chi.URLParam(r, "activityID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "activity entry not found", reqID)
		return
	}
	api.Success(w, entry, reqID)
}
