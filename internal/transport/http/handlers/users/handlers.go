package usershandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"erm/internal/domain/activity"
	"erm/internal/domain/auth"
	"erm/internal/transport/http/api"
	"erm/internal/transport/http/middleware"
	"erm/internal/transport/http/shared"
)

type Handler struct {
	Users    *auth.Store
	Activity *activity.Service
}

func NewHandler(users *auth.Store, act *activity.Service) *Handler {
	return &Handler{Users: users, Activity: act}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(auth.RoleAdmin)

	r.Route("/users", func(r chi.Router) {
		r.With(admin).Get("/", h.handleList)
		r.With(admin).Get("/{userID}", h.handleGet)
		r.With(admin).Put("/{userID}", h.handleUpdate)
		r.With(admin).Delete("/{userID}", h.handleDelete)
	})
}

type userUpdateRequest struct {
	Name                  string `json:"name"`
	Role                  string `json:"role"`
	Status                string `json:"status"`
	Phone                 string `json:"phone"`
	Address               string `json:"address"`
	EmergencyName         string `json:"emergencyName"`
	EmergencyRelationship string `json:"emergencyRelationship"`
	EmergencyPhone        string `json:"emergencyPhone"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)
	query := r.URL.Query()

	filter := auth.UserFilter{
		Role:   query.Get("role"),
		Status: query.Get("status"),
		Search: query.Get("search"),
	}

	users, total, err := h.Users.ListUsers(r.Context(), filter, page.Limit, page.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "users_failed", "failed to list users", reqID)
		return
	}
	api.SuccessPaged(w, users, api.Pagination{Page: page.Page, Limit: page.Limit, Total: total}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, err := h.Users.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	}
	api.Success(w, user, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	existing, err := h.Users.GetUser(r.Context(), userID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Enum("role", payload.Role, auth.Roles, "must be a known role")
	v.Enum("status", payload.Status, []string{auth.UserStatusActive, auth.UserStatusDisabled}, "must be active or disabled")
	if v.Reject(w, reqID) {
		return
	}

	updated := existing
	updated.Name = payload.Name
	if payload.Role != "" {
		updated.Role = payload.Role
	}
	if payload.Status != "" {
		updated.Status = payload.Status
	}
	updated.Phone = payload.Phone
	updated.Address = payload.Address
	updated.EmergencyName = payload.EmergencyName
	updated.EmergencyRelationship = payload.EmergencyRelationship
	updated.EmergencyPhone = payload.EmergencyPhone

	if err := h.Users.UpdateUser(r.Context(), userID, updated); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to update user", reqID)
		return
	}

	h.record(r, activity.Entry{
		Type:      activity.TypeUserUpdated,
		Subject:   "User updated",
		RelatedTo: &activity.RelatedRef{Kind: activity.KindUser, ID: userID},
	})

	refreshed, err := h.Users.GetUser(r.Context(), userID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "user_update_failed", "failed to load updated user", reqID)
		return
	}
	api.Success(w, refreshed, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())
	userID := chi.URLParam(r, "userID")

	if userID == caller.UserID {
		api.Fail(w, http.StatusConflict, "conflict", "cannot delete your own account", reqID)
		return
	}

	if err := h.Users.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "user_delete_failed", "failed to delete user", reqID)
		return
	}

	h.record(r, activity.Entry{
		Type:      activity.TypeUserDeleted,
		Subject:   "User deleted",
		RelatedTo: &activity.RelatedRef{Kind: activity.KindUser, ID: userID},
	})

	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) record(r *http.Request, entry activity.Entry) {
	caller, _ := middleware.GetUser(r.Context())
	entry.ActorUserID = caller.UserID
	entry.RequestID = middleware.GetRequestID(r.Context())
	entry.IP = shared.ClientIP(r)
	_ = h.Activity.Record(r.Context(), entry)
}
