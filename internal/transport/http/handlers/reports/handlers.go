package reportshandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"erm/internal/domain/auth"
	"erm/internal/domain/reports"
	"erm/internal/transport/http/api"
	"erm/internal/transport/http/middleware"
	"erm/internal/transport/http/shared"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(auth.RoleAdmin)

	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleList)
		r.With(middleware.RequireAuth).Get("/{reportID}", h.handleGet)
		r.With(middleware.RequireAuth).Get("/{reportID}/download", h.handleDownload)
		r.With(admin).Post("/", h.handleCreate)
		r.With(admin).Put("/{reportID}", h.handleUpdate)
		r.With(admin).Delete("/{reportID}", h.handleDelete)
		r.With(admin).Post("/{reportID}/generate", h.handleGenerate)
	})
}

type reportRequest struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Parameters struct {
		StartDate    string   `json:"startDate"`
		EndDate      string   `json:"endDate"`
		DepartmentID string   `json:"departmentId"`
		EmployeeIDs  []string `json:"employeeIds"`
		Status       string   `json:"status"`
	} `json:"parameters"`
	Recurring bool   `json:"recurring"`
	Frequency string `json:"frequency"`
}

func (h *Handler) decodeReport(w http.ResponseWriter, r *http.Request, reqID string) (reports.Report, bool) {
	var payload reportRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return reports.Report{}, false
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("type", payload.Type, "is required")
	params := reports.Parameters{
		DepartmentID: payload.Parameters.DepartmentID,
		EmployeeIDs:  payload.Parameters.EmployeeIDs,
		Status:       payload.Parameters.Status,
	}
	if raw := payload.Parameters.StartDate; raw != "" {
		if parsed, ok := v.Date("parameters.startDate", raw); ok {
			params.StartDate = &parsed
		}
	}
	if raw := payload.Parameters.EndDate; raw != "" {
		if parsed, ok := v.Date("parameters.endDate", raw); ok {
			params.EndDate = &parsed
		}
	}
	if params.StartDate != nil && params.EndDate != nil {
		v.DateOrder("parameters.startDate", *params.StartDate, "parameters.endDate", *params.EndDate)
	}
	if v.Reject(w, reqID) {
		return reports.Report{}, false
	}

	return reports.Report{
		Name:       payload.Name,
		Type:       payload.Type,
		Parameters: params,
		Recurring:  payload.Recurring,
		Frequency:  payload.Frequency,
	}, true
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	rep, ok := h.decodeReport(w, r, reqID)
	if !ok {
		return
	}
	rep.CreatedBy = caller.UserID

	created, err := h.Service.Create(r.Context(), rep)
	if err != nil {
		h.failFromErr(w, err, reqID, "report_create_failed", "failed to create report")
		return
	}
	api.Created(w, created, reqID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)
	query := r.URL.Query()

	filter := reports.Filter{
		Type:      query.Get("type"),
		Status:    query.Get("status"),
		CreatedBy: query.Get("createdBy"),
	}
	if raw := query.Get("recurring"); raw != "" {
		recurring, err := strconv.ParseBool(raw)
		if err != nil {
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
				[]api.FieldError{{Field: "recurring", Message: "must be true or false"}}, reqID)
			return
		}
		filter.Recurring = &recurring
	}

	list, total, err := h.Service.List(r.Context(), filter, page.Limit, page.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reports_failed", "failed to list reports", reqID)
		return
	}
	api.SuccessPaged(w, list, api.Pagination{Page: page.Page, Limit: page.Limit, Total: total}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	rep, err := h.Service.Get(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "report not found", reqID)
		return
	}
	api.Success(w, rep, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	rep, ok := h.decodeReport(w, r, reqID)
	if !ok {
		return
	}

	updated, err := h.Service.Update(r.Context(), chi.URLParam(r, "reportID"), rep)
	if err != nil {
		h.failFromErr(w, err, reqID, "report_update_failed", "failed to update report")
		return
	}
	api.Success(w, updated, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "reportID")); err != nil {
		if errors.Is(err, reports.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "report not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "report_delete_failed", "failed to delete report", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	rep, err := h.Service.Generate(r.Context(), chi.URLParam(r, "reportID"), caller.UserID, reqID)
	if err != nil {
		if errors.Is(err, reports.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "report not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "report_generate_failed", "failed to generate report", reqID)
		return
	}
	api.Success(w, rep, reqID)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	rep, err := h.Service.Get(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "report not found", reqID)
		return
	}

	pdf, err := reports.RenderPDF(rep)
	if err != nil {
		if errors.Is(err, reports.ErrNotGenerated) {
			api.Fail(w, http.StatusConflict, "not_generated", "report has not been generated yet", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "report_render_failed", "failed to render report", reqID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Name+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) failFromErr(w http.ResponseWriter, err error, reqID, code, message string) {
	switch {
	case errors.Is(err, reports.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "report not found", reqID)
	case errors.Is(err, reports.ErrUnknownType):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
			[]api.FieldError{{Field: "type", Message: "must be a known report type"}}, reqID)
	case errors.Is(err, reports.ErrInvalidFrequency):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
			[]api.FieldError{{Field: "frequency", Message: "must be daily, weekly or monthly"}}, reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, reqID)
	}
}
