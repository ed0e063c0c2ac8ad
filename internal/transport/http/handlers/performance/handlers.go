package performancehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"erm/internal/domain/activity"
	"erm/internal/domain/auth"
	"erm/internal/domain/core"
	"erm/internal/domain/performance"
	"erm/internal/transport/http/api"
	"erm/internal/transport/http/middleware"
	"erm/internal/transport/http/shared"
)

type Handler struct {
	Service  *performance.Service
	Core     *core.Store
	Activity *activity.Service
}

func NewHandler(service *performance.Service, coreStore *core.Store, act *activity.Service) *Handler {
	return &Handler{Service: service, Core: coreStore, Activity: act}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/performance", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireAuth).Get("/stats", h.handleStats)
		r.With(middleware.RequireAuth).Get("/{reviewID}", h.handleGet)
		r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleEmployee)).Post("/", h.handleCreate)
		r.With(middleware.RequireAuth).Put("/{reviewID}", h.handleUpdate)
		r.With(middleware.RequireAuth).Delete("/{reviewID}", h.handleDelete)
		r.With(middleware.RequireAuth).Post("/{reviewID}/acknowledge", h.handleAcknowledge)
	})
}

type reviewRequest struct {
	EmployeeID  string              `json:"employeeId"`
	PeriodStart string              `json:"periodStart"`
	PeriodEnd   string              `json:"periodEnd"`
	Ratings     performance.Ratings `json:"ratings"`
	Feedback    string              `json:"feedback"`
	Goals       []performance.Goal  `json:"goals"`
	Status      string              `json:"status"`
}

type acknowledgeRequest struct {
	Comments string `json:"comments"`
}

func (h *Handler) validateReview(v *shared.Validator, payload reviewRequest) (time.Time, time.Time) {
	v.Required("periodStart", payload.PeriodStart, "is required")
	v.Required("periodEnd", payload.PeriodEnd, "is required")
	start, _ := v.Date("periodStart", payload.PeriodStart)
	end, _ := v.Date("periodEnd", payload.PeriodEnd)
	v.DateOrder("periodStart", start, "periodEnd", end)
	v.Enum("status", payload.Status, performance.Statuses, "must be a known review status")
	v.Range("ratings.productivity", payload.Ratings.Productivity, performance.RatingMin, performance.RatingMax)
	v.Range("ratings.quality", payload.Ratings.Quality, performance.RatingMin, performance.RatingMax)
	v.Range("ratings.jobKnowledge", payload.Ratings.JobKnowledge, performance.RatingMin, performance.RatingMax)
	v.Range("ratings.communication", payload.Ratings.Communication, performance.RatingMin, performance.RatingMax)
	v.Range("ratings.teamwork", payload.Ratings.Teamwork, performance.RatingMin, performance.RatingMax)
	v.Range("ratings.initiative", payload.Ratings.Initiative, performance.RatingMin, performance.RatingMax)
	for i, goal := range payload.Goals {
		v.Required(fmt.Sprintf("goals[%d].title", i), goal.Title, "is required")
		v.Enum(fmt.Sprintf("goals[%d].status", i), goal.Status, performance.GoalStatuses, "must be a known goal status")
	}
	return start, end
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	start, end := h.validateReview(v, payload)
	if v.Reject(w, reqID) {
		return
	}

	emp, err := h.Core.ResolveEmployee(r.Context(), payload.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}

	rev, err := h.Service.Create(r.Context(), performance.Review{
		EmployeeID:  emp.ID,
		ReviewerID:  caller.UserID,
		PeriodStart: start,
		PeriodEnd:   end,
		Ratings:     payload.Ratings,
		Feedback:    payload.Feedback,
		Goals:       payload.Goals,
		Status:      payload.Status,
	})
	if err != nil {
		if errors.Is(err, performance.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "review_create_failed", "failed to create review", reqID)
		return
	}

	h.record(r, activity.Entry{
		Type:        activity.TypeReviewCreated,
		Subject:     "Performance review created",
		Description: fmt.Sprintf("review for %s %s (overall %.1f)", emp.FirstName, emp.LastName, rev.OverallRating),
		RelatedTo:   &activity.RelatedRef{Kind: activity.KindPerformance, ID: rev.ID},
	})

	api.Created(w, rev, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)
	query := r.URL.Query()

	v := shared.NewValidator()
	filter := performance.Filter{
		ReviewerID: query.Get("reviewer"),
		Status:     query.Get("status"),
	}
	if ref := query.Get("employee"); ref != "" {
		emp, err := h.Core.ResolveEmployee(r.Context(), ref)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		filter.EmployeeID = emp.ID
	}
	if raw := query.Get("from"); raw != "" {
		filter.From, _ = v.Date("from", raw)
	}
	if raw := query.Get("to"); raw != "" {
		filter.To, _ = v.Date("to", raw)
	}
	if v.Reject(w, reqID) {
		return
	}

	reviews, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reviews_failed", "failed to list reviews", reqID)
		return
	}
	api.SuccessPaged(w, reviews, api.Pagination{Page: page.Page, Limit: page.Limit, Total: total}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	rev, err := h.Service.Get(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "performance review not found", reqID)
		return
	}
	api.Success(w, rev, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())
	reviewID := chi.URLParam(r, "reviewID")

	var payload reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	// Employee reference is fixed at creation; only period and content move.
	v := shared.NewValidator()
	start, end := h.validateReview(v, payload)
	if v.Reject(w, reqID) {
		return
	}

	rev, err := h.Service.Update(r.Context(), reviewID, performance.Review{
		PeriodStart: start,
		PeriodEnd:   end,
		Ratings:     payload.Ratings,
		Feedback:    payload.Feedback,
		Goals:       payload.Goals,
		Status:      payload.Status,
	}, caller.UserID, caller.Role == auth.RoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, performance.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "performance review not found", reqID)
		case errors.Is(err, performance.ErrNotReviewer):
			api.Fail(w, http.StatusForbidden, "forbidden", "only the reviewer or an admin may modify this review", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "review_update_failed", "failed to update review", reqID)
		}
		return
	}
	api.Success(w, rev, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	err := h.Service.Delete(r.Context(), chi.URLParam(r, "reviewID"), caller.UserID, caller.Role == auth.RoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, performance.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "performance review not found", reqID)
		case errors.Is(err, performance.ErrNotReviewer):
			api.Fail(w, http.StatusForbidden, "forbidden", "only the reviewer or an admin may delete this review", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "review_delete_failed", "failed to delete review", reqID)
		}
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload acknowledgeRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	rev, err := h.Service.Acknowledge(r.Context(), chi.URLParam(r, "reviewID"), caller.UserID, payload.Comments)
	if err != nil {
		switch {
		case errors.Is(err, performance.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "performance review not found", reqID)
		case errors.Is(err, performance.ErrNotReviewedEmployee):
			api.Fail(w, http.StatusForbidden, "forbidden", "only the reviewed employee may acknowledge", reqID)
		case errors.Is(err, performance.ErrAlreadyAcknowledged):
			api.Fail(w, http.StatusConflict, "conflict", "review already acknowledged", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "review_ack_failed", "failed to acknowledge review", reqID)
		}
		return
	}

	h.record(r, activity.Entry{
		Type:      activity.TypeReviewAcknowledged,
		Subject:   "Performance review acknowledged",
		RelatedTo: &activity.RelatedRef{Kind: activity.KindPerformance, ID: rev.ID},
	})

	api.Success(w, rev, reqID)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	v := shared.NewValidator()
	var from, to time.Time
	if raw := query.Get("quarter"); raw != "" {
		var ok bool
		from, to, ok = parseQuarter(raw)
		if !ok {
			v.Add("quarter", "must look like 2025-Q1")
		}
	} else {
		if raw := query.Get("from"); raw != "" {
			from, _ = v.Date("from", raw)
		}
		if raw := query.Get("to"); raw != "" {
			to, _ = v.Date("to", raw)
		}
		if !from.IsZero() && !to.IsZero() {
			v.DateOrder("from", from, "to", to)
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	stats, err := h.Service.StatsWindow(r.Context(), from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "performance_stats_failed", "failed to compute performance stats", reqID)
		return
	}
	api.Success(w, stats, reqID)
}

// parseQuarter resolves a "2025-Q1" style value to its calendar window.
func parseQuarter(raw string) (time.Time, time.Time, bool) {
	parts := strings.SplitN(strings.ToUpper(strings.TrimSpace(raw)), "-Q", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return time.Time{}, time.Time{}, false
	}
	quarter, err := strconv.Atoi(parts[1])
	if err != nil || quarter < 1 || quarter > 4 {
		return time.Time{}, time.Time{}, false
	}
	from := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 3, 0).Add(-time.Nanosecond)
	return from, to, true
}

func (h *Handler) record(r *http.Request, entry activity.Entry) {
	caller, _ := middleware.GetUser(r.Context())
	entry.ActorUserID = caller.UserID
	entry.RequestID = middleware.GetRequestID(r.Context())
	entry.IP = shared.ClientIP(r)
	if err := h.Activity.Record(r.Context(), entry); err != nil {
		slog.Warn("activity record failed", "type", entry.Type, "err", err)
	}
}
