package attendancehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"erm/internal/domain/activity"
	"erm/internal/domain/attendance"
	"erm/internal/domain/auth"
	"erm/internal/domain/core"
	"erm/internal/transport/http/api"
	"erm/internal/transport/http/middleware"
	"erm/internal/transport/http/shared"
)

type Handler struct {
	Service  *attendance.Service
	Core     *core.Store
	Activity *activity.Service
}

func NewHandler(service *attendance.Service, coreStore *core.Store, act *activity.Service) *Handler {
	return &Handler{Service: service, Core: coreStore, Activity: act}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(auth.RoleAdmin)

	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequireAuth).Post("/check-in", h.handleCheckIn)
		r.With(middleware.RequireAuth).Post("/check-out", h.handleCheckOut)
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireAuth).Get("/stats", h.handleStats)
		r.With(middleware.RequireAuth).Get("/{recordID}", h.handleGet)
		r.With(admin).Post("/", h.handleMark)
		r.With(admin).Put("/{recordID}", h.handleUpdate)
		r.With(admin).Delete("/{recordID}", h.handleDelete)
	})
}

type checkRequest struct {
	EmployeeID string `json:"employeeId"`
}

type markRequest struct {
	EmployeeID string `json:"employeeId"`
	Date       string `json:"date"`
	CheckIn    string `json:"checkIn"`
	CheckOut   string `json:"checkOut"`
	Status     string `json:"status"`
	Notes      string `json:"notes"`
}

// resolveTarget finds the employee a check-in/out applies to: the explicit
// reference when given (internal id or EMPnnnn number), otherwise the
// caller's own employee record.
func (h *Handler) resolveTarget(r *http.Request, ref string) (core.Employee, error) {
	if ref != "" {
		return h.Core.ResolveEmployee(r.Context(), ref)
	}
	caller, _ := middleware.GetUser(r.Context())
	return h.Core.GetEmployeeByUserID(r.Context(), caller.UserID)
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload checkRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	emp, err := h.resolveTarget(r, payload.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}

	rec, err := h.Service.CheckIn(r.Context(), emp.ID, time.Now())
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			api.Fail(w, http.StatusConflict, "conflict", "already checked in today", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "check_in_failed", "failed to record check-in", reqID)
		return
	}

	h.record(r, activity.Entry{
		Type:        activity.TypeAttendanceCheckIn,
		Subject:     "Attendance check-in",
		Description: fmt.Sprintf("%s %s checked in (%s)", emp.FirstName, emp.LastName, rec.Status),
		RelatedTo:   &activity.RelatedRef{Kind: activity.KindAttendance, ID: rec.ID},
	})

	api.Created(w, rec, reqID)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload checkRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}

	emp, err := h.resolveTarget(r, payload.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}

	rec, err := h.Service.CheckOut(r.Context(), emp.ID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrNoRecordToday):
			api.Fail(w, http.StatusNotFound, "not_found", "no check-in found for today", reqID)
		case errors.Is(err, attendance.ErrAlreadyCheckedOut):
			api.Fail(w, http.StatusConflict, "conflict", "already checked out today", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "check_out_failed", "failed to record check-out", reqID)
		}
		return
	}

	h.record(r, activity.Entry{
		Type:        activity.TypeAttendanceCheckOut,
		Subject:     "Attendance check-out",
		Description: fmt.Sprintf("%s %s checked out (%.2f hours)", emp.FirstName, emp.LastName, rec.WorkHours),
		RelatedTo:   &activity.RelatedRef{Kind: activity.KindAttendance, ID: rec.ID},
	})

	api.Success(w, rec, reqID)
}

func (h *Handler) handleMark(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload markRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	v.Required("date", payload.Date, "is required")
	v.Enum("status", payload.Status, attendance.Statuses, "must be a known attendance status")
	day, _ := v.Date("date", payload.Date)
	checkIn := h.parseOptionalTime(v, "checkIn", payload.CheckIn)
	checkOut := h.parseOptionalTime(v, "checkOut", payload.CheckOut)
	if v.Reject(w, reqID) {
		return
	}

	emp, err := h.Core.ResolveEmployee(r.Context(), payload.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}

	status := payload.Status
	if status == "" {
		status = attendance.StatusPresent
	}

	rec, err := h.Service.Mark(r.Context(), attendance.Record{
		EmployeeID: emp.ID,
		Date:       day,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     status,
		Notes:      payload.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrDuplicateDay):
			api.Fail(w, http.StatusConflict, "conflict", "attendance already recorded for this day", reqID)
		case errors.Is(err, attendance.ErrCheckOutBeforeIn):
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
				[]api.FieldError{{Field: "checkOut", Message: "must be after checkIn"}}, reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "attendance_mark_failed", "failed to record attendance", reqID)
		}
		return
	}

	h.record(r, activity.Entry{
		Type:        activity.TypeAttendanceMarked,
		Subject:     "Attendance marked",
		Description: fmt.Sprintf("%s %s marked %s", emp.FirstName, emp.LastName, rec.Status),
		RelatedTo:   &activity.RelatedRef{Kind: activity.KindAttendance, ID: rec.ID},
	})

	api.Created(w, rec, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)
	query := r.URL.Query()

	v := shared.NewValidator()
	filter := attendance.Filter{
		DepartmentID: query.Get("department"),
		Status:       query.Get("status"),
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

	records, total, err := h.Service.Store.List(r.Context(), filter, page.Limit, page.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_failed", "failed to list attendance", reqID)
		return
	}
	api.SuccessPaged(w, records, api.Pagination{Page: page.Page, Limit: page.Limit, Total: total}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	rec, err := h.Service.Store.Get(r.Context(), chi.URLParam(r, "recordID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", reqID)
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	recordID := chi.URLParam(r, "recordID")

	existing, err := h.Service.Store.Get(r.Context(), recordID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", reqID)
		return
	}

	var payload markRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Enum("status", payload.Status, attendance.Statuses, "must be a known attendance status")
	day := existing.Date
	if payload.Date != "" {
		day, _ = v.Date("date", payload.Date)
	}
	checkIn := existing.CheckIn
	if payload.CheckIn != "" {
		checkIn = h.parseOptionalTime(v, "checkIn", payload.CheckIn)
	}
	checkOut := existing.CheckOut
	if payload.CheckOut != "" {
		checkOut = h.parseOptionalTime(v, "checkOut", payload.CheckOut)
	}
	if v.Reject(w, reqID) {
		return
	}

	status := payload.Status
	if status == "" {
		status = existing.Status
	}

	rec, err := h.Service.Update(r.Context(), recordID, attendance.Record{
		EmployeeID: existing.EmployeeID,
		Date:       day,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     status,
		Notes:      payload.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", reqID)
		case errors.Is(err, attendance.ErrCheckOutBeforeIn):
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
				[]api.FieldError{{Field: "checkOut", Message: "must be after checkIn"}}, reqID)
		case errors.Is(err, attendance.ErrDuplicateDay):
			api.Fail(w, http.StatusConflict, "conflict", "attendance already recorded for this day", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "attendance_update_failed", "failed to update attendance", reqID)
		}
		return
	}
	api.Success(w, rec, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	if err := h.Service.Store.Delete(r.Context(), chi.URLParam(r, "recordID")); err != nil {
		if errors.Is(err, attendance.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "attendance record not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "attendance_delete_failed", "failed to delete attendance", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	query := r.URL.Query()

	v := shared.NewValidator()
	var from, to time.Time
	if raw := query.Get("from"); raw != "" {
		from, _ = v.Date("from", raw)
	}
	if raw := query.Get("to"); raw != "" {
		to, _ = v.Date("to", raw)
	}
	if !from.IsZero() && !to.IsZero() {
		v.DateOrder("from", from, "to", to)
	}
	if v.Reject(w, reqID) {
		return
	}

	stats, err := h.Service.StatsWindow(r.Context(), from, to, time.Now())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_stats_failed", "failed to compute attendance stats", reqID)
		return
	}
	api.Success(w, stats, reqID)
}

func (h *Handler) parseOptionalTime(v *shared.Validator, field, raw string) *time.Time {
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		v.Add(field, "must be an RFC3339 timestamp")
		return nil
	}
	return &parsed
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
