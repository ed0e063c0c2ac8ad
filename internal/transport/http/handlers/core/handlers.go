package corehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"erm/internal/domain/activity"
	"erm/internal/domain/auth"
	"erm/internal/domain/core"
	"erm/internal/platform/config"
	"erm/internal/transport/http/api"
	"erm/internal/transport/http/middleware"
	"erm/internal/transport/http/shared"
)

type Handler struct {
	Store    *core.Store
	Activity *activity.Service
	Cfg      config.Config
}

func NewHandler(store *core.Store, act *activity.Service, cfg config.Config) *Handler {
	return &Handler{Store: store, Activity: act, Cfg: cfg}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	admin := middleware.RequireRole(auth.RoleAdmin)

	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListEmployees)
		r.With(middleware.RequireAuth).Get("/{employeeID}", h.handleGetEmployee)
		r.With(admin).Post("/", h.handleCreateEmployee)
		r.With(admin).Put("/{employeeID}", h.handleUpdateEmployee)
		r.With(admin).Delete("/{employeeID}", h.handleDeleteEmployee)
	})

	r.Route("/departments", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListDepartments)
		r.With(middleware.RequireAuth).Get("/{departmentID}", h.handleGetDepartment)
		r.With(admin).Post("/", h.handleCreateDepartment)
		r.With(admin).Put("/{departmentID}", h.handleUpdateDepartment)
		r.With(admin).Delete("/{departmentID}", h.handleDeleteDepartment)
	})

	r.Route("/teams", func(r chi.Router) {
		r.With(middleware.RequireAuth).Get("/", h.handleListTeams)
		r.With(middleware.RequireAuth).Get("/{teamID}", h.handleGetTeam)
		r.With(admin).Post("/", h.handleCreateTeam)
		r.With(admin).Put("/{teamID}", h.handleUpdateTeam)
		r.With(admin).Delete("/{teamID}", h.handleDeleteTeam)
		r.With(admin).Post("/{teamID}/members", h.handleAddMember)
		r.With(admin).Delete("/{teamID}/members/{employeeID}", h.handleRemoveMember)
		r.With(admin).Post("/{teamID}/projects", h.handleCreateProject)
		r.With(admin).Put("/{teamID}/projects/{projectID}", h.handleUpdateProject)
		r.With(admin).Delete("/{teamID}/projects/{projectID}", h.handleDeleteProject)
	})
}

type employeeRequest struct {
	FirstName             string   `json:"firstName"`
	LastName              string   `json:"lastName"`
	Email                 string   `json:"email"`
	Phone                 string   `json:"phone"`
	DepartmentID          string   `json:"departmentId"`
	Position              string   `json:"position"`
	JoinDate              string   `json:"joinDate"`
	Status                string   `json:"status"`
	Salary                *float64 `json:"salary"`
	Address               string   `json:"address"`
	EmergencyName         string   `json:"emergencyName"`
	EmergencyRelationship string   `json:"emergencyRelationship"`
	EmergencyPhone        string   `json:"emergencyPhone"`
	Password              string   `json:"password"`
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)

	filter := core.EmployeeFilter{
		DepartmentID: r.URL.Query().Get("department"),
		Status:       r.URL.Query().Get("status"),
		Search:       r.URL.Query().Get("search"),
	}
	employees, total, err := h.Store.ListEmployees(r.Context(), filter, page.Limit, page.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", reqID)
		return
	}
	api.SuccessPaged(w, employees, api.Pagination{Page: page.Page, Limit: page.Limit, Total: total}, reqID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	emp, err := h.Store.ResolveEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "is required")
	v.Required("lastName", payload.LastName, "is required")
	v.Required("email", payload.Email, "is required")
	v.Required("departmentId", payload.DepartmentID, "is required")
	v.Enum("status", payload.Status, core.EmployeeStatuses, "must be a known employee status")
	var joinDate *time.Time
	if payload.JoinDate != "" {
		if parsed, ok := v.Date("joinDate", payload.JoinDate); ok {
			joinDate = &parsed
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	password := payload.Password
	if password == "" {
		password = h.Cfg.DefaultPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", reqID)
		return
	}

	status := payload.Status
	if status == "" {
		status = core.EmployeeStatusActive
	}

	emp, user, err := h.Store.CreateEmployee(r.Context(), core.CreateEmployeeInput{
		FirstName:             strings.TrimSpace(payload.FirstName),
		LastName:              strings.TrimSpace(payload.LastName),
		Email:                 strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:                 payload.Phone,
		DepartmentID:          payload.DepartmentID,
		Position:              payload.Position,
		JoinDate:              joinDate,
		Status:                status,
		Salary:                payload.Salary,
		Address:               payload.Address,
		EmergencyName:         payload.EmergencyName,
		EmergencyRelationship: payload.EmergencyRelationship,
		EmergencyPhone:        payload.EmergencyPhone,
		PasswordHash:          hash,
		ActorUserID:           caller.UserID,
		RequestID:             reqID,
		IP:                    shared.ClientIP(r),
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrDepartmentNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "department not found", reqID)
		case errors.Is(err, core.ErrEmailTaken):
			api.Fail(w, http.StatusConflict, "conflict", "a user with this email already exists", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", reqID)
		}
		return
	}

	api.Created(w, map[string]any{"employee": emp, "user": user}, reqID)
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	existing, err := h.Store.ResolveEmployee(r.Context(), employeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}

	var payload employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "is required")
	v.Required("lastName", payload.LastName, "is required")
	v.Required("email", payload.Email, "is required")
	v.Required("departmentId", payload.DepartmentID, "is required")
	v.Enum("status", payload.Status, core.EmployeeStatuses, "must be a known employee status")
	var joinDate *time.Time
	if payload.JoinDate != "" {
		if parsed, ok := v.Date("joinDate", payload.JoinDate); ok {
			joinDate = &parsed
		}
	}
	if v.Reject(w, reqID) {
		return
	}

	updated := existing
	updated.FirstName = strings.TrimSpace(payload.FirstName)
	updated.LastName = strings.TrimSpace(payload.LastName)
	updated.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	updated.Phone = payload.Phone
	updated.DepartmentID = payload.DepartmentID
	updated.Position = payload.Position
	updated.JoinDate = joinDate
	if payload.Status != "" {
		updated.Status = payload.Status
	}
	updated.Salary = payload.Salary
	updated.Address = payload.Address
	updated.EmergencyName = payload.EmergencyName
	updated.EmergencyRelationship = payload.EmergencyRelationship
	updated.EmergencyPhone = payload.EmergencyPhone

	if err := h.Store.UpdateEmployee(r.Context(), existing.ID, updated); err != nil {
		switch {
		case errors.Is(err, core.ErrEmployeeNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		case errors.Is(err, core.ErrDepartmentNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "department not found", reqID)
		case errors.Is(err, core.ErrEmailTaken):
			api.Fail(w, http.StatusConflict, "conflict", "a user with this email already exists", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", reqID)
		}
		return
	}

	h.record(r, activity.Entry{
		Type:        activity.TypeEmployeeUpdated,
		Subject:     "Employee updated",
		Description: fmt.Sprintf("%s %s updated", updated.FirstName, updated.LastName),
		RelatedTo:   &activity.RelatedRef{Kind: activity.KindEmployee, ID: existing.ID},
	})

	emp, err := h.Store.GetEmployee(r.Context(), existing.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to load employee", reqID)
		return
	}
	api.Success(w, emp, reqID)
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	caller, _ := middleware.GetUser(r.Context())

	emp, err := h.Store.ResolveEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}

	if _, err := h.Store.DeleteEmployee(r.Context(), emp.ID, caller.UserID, reqID, shared.ClientIP(r)); err != nil {
		switch {
		case errors.Is(err, core.ErrEmployeeNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		case errors.Is(err, core.ErrEmployeeIsReviewer):
			api.Fail(w, http.StatusConflict, "conflict", "employee's account authored performance reviews; reassign them first", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "employee_delete_failed", "failed to delete employee", reqID)
		}
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

type departmentRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ManagerID   string   `json:"managerId"`
	Budget      *float64 `json:"budget"`
	Location    string   `json:"location"`
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)

	departments, total, err := h.Store.ListDepartments(r.Context(), page.Limit, page.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "departments_failed", "failed to list departments", reqID)
		return
	}
	api.SuccessPaged(w, departments, api.Pagination{Page: page.Page, Limit: page.Limit, Total: total}, reqID)
}

func (h *Handler) handleGetDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	dep, err := h.Store.GetDepartment(r.Context(), chi.URLParam(r, "departmentID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "department not found", reqID)
		return
	}
	api.Success(w, dep, reqID)
}

func (h *Handler) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	if v.Reject(w, reqID) {
		return
	}

	dep, err := h.Store.CreateDepartment(r.Context(), core.Department{
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		ManagerID:   payload.ManagerID,
		Budget:      payload.Budget,
		Location:    payload.Location,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrDepartmentNameTaken):
			api.Fail(w, http.StatusConflict, "conflict", "department name already in use", reqID)
		case errors.Is(err, core.ErrEmployeeNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "manager employee not found", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "department_create_failed", "failed to create department", reqID)
		}
		return
	}

	h.record(r, activity.Entry{
		Type:        activity.TypeDepartmentCreated,
		Subject:     "Department created",
		Description: fmt.Sprintf("department %q created", dep.Name),
		RelatedTo:   &activity.RelatedRef{Kind: activity.KindDepartment, ID: dep.ID},
	})

	api.Created(w, dep, reqID)
}

func (h *Handler) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	var payload departmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	if v.Reject(w, reqID) {
		return
	}

	err := h.Store.UpdateDepartment(r.Context(), departmentID, core.Department{
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		ManagerID:   payload.ManagerID,
		Budget:      payload.Budget,
		Location:    payload.Location,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrDepartmentNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "department not found", reqID)
		case errors.Is(err, core.ErrDepartmentNameTaken):
			api.Fail(w, http.StatusConflict, "conflict", "department name already in use", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "department_update_failed", "failed to update department", reqID)
		}
		return
	}

	h.record(r, activity.Entry{
		Type:      activity.TypeDepartmentUpdated,
		Subject:   "Department updated",
		RelatedTo: &activity.RelatedRef{Kind: activity.KindDepartment, ID: departmentID},
	})

	dep, err := h.Store.GetDepartment(r.Context(), departmentID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "department_update_failed", "failed to load department", reqID)
		return
	}
	api.Success(w, dep, reqID)
}

func (h *Handler) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	departmentID := chi.URLParam(r, "departmentID")

	if err := h.Store.DeleteDepartment(r.Context(), departmentID); err != nil {
		switch {
		case errors.Is(err, core.ErrDepartmentNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "department not found", reqID)
		case errors.Is(err, core.ErrDepartmentNotEmpty):
			api.Fail(w, http.StatusConflict, "conflict", "department still has employees assigned", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "department_delete_failed", "failed to delete department", reqID)
		}
		return
	}

	h.record(r, activity.Entry{
		Type:      activity.TypeDepartmentDeleted,
		Subject:   "Department deleted",
		RelatedTo: &activity.RelatedRef{Kind: activity.KindDepartment, ID: departmentID},
	})

	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

type teamRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DepartmentID string `json:"departmentId"`
	LeaderID     string `json:"leaderId"`
}

type memberRequest struct {
	EmployeeID string `json:"employeeId"`
}

type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

func (h *Handler) handleListTeams(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 20, 100)

	teams, total, err := h.Store.ListTeams(r.Context(), r.URL.Query().Get("department"), page.Limit, page.Offset())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "teams_failed", "failed to list teams", reqID)
		return
	}
	api.SuccessPaged(w, teams, api.Pagination{Page: page.Page, Limit: page.Limit, Total: total}, reqID)
}

func (h *Handler) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	team, err := h.Store.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "team not found", reqID)
		return
	}
	api.Success(w, team, reqID)
}

func (h *Handler) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload teamRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("departmentId", payload.DepartmentID, "is required")
	if v.Reject(w, reqID) {
		return
	}

	team, err := h.Store.CreateTeam(r.Context(), core.Team{
		Name:         strings.TrimSpace(payload.Name),
		Description:  payload.Description,
		DepartmentID: payload.DepartmentID,
		LeaderID:     payload.LeaderID,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrTeamNameTaken):
			api.Fail(w, http.StatusConflict, "conflict", "team name already in use", reqID)
		case errors.Is(err, core.ErrDepartmentNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "department not found", reqID)
		case errors.Is(err, core.ErrEmployeeNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "leader employee not found", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "team_create_failed", "failed to create team", reqID)
		}
		return
	}

	h.record(r, activity.Entry{
		Type:        activity.TypeTeamCreated,
		Subject:     "Team created",
		Description: fmt.Sprintf("team %q created", team.Name),
		RelatedTo:   &activity.RelatedRef{Kind: activity.KindTeam, ID: team.ID},
	})

	api.Created(w, team, reqID)
}

func (h *Handler) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	teamID := chi.URLParam(r, "teamID")

	var payload teamRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("departmentId", payload.DepartmentID, "is required")
	if v.Reject(w, reqID) {
		return
	}

	err := h.Store.UpdateTeam(r.Context(), teamID, core.Team{
		Name:         strings.TrimSpace(payload.Name),
		Description:  payload.Description,
		DepartmentID: payload.DepartmentID,
		LeaderID:     payload.LeaderID,
	})
	if err != nil {
		switch {
		case errors.Is(err, core.ErrTeamNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "team not found", reqID)
		case errors.Is(err, core.ErrTeamNameTaken):
			api.Fail(w, http.StatusConflict, "conflict", "team name already in use", reqID)
		case errors.Is(err, core.ErrDepartmentNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "department not found", reqID)
		case errors.Is(err, core.ErrEmployeeNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "leader employee not found", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "team_update_failed", "failed to update team", reqID)
		}
		return
	}

	h.record(r, activity.Entry{
		Type:      activity.TypeTeamUpdated,
		Subject:   "Team updated",
		RelatedTo: &activity.RelatedRef{Kind: activity.KindTeam, ID: teamID},
	})

	team, err := h.Store.GetTeam(r.Context(), teamID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_update_failed", "failed to load team", reqID)
		return
	}
	api.Success(w, team, reqID)
}

func (h *Handler) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	teamID := chi.URLParam(r, "teamID")

	if err := h.Store.DeleteTeam(r.Context(), teamID); err != nil {
		if errors.Is(err, core.ErrTeamNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "team not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "team_delete_failed", "failed to delete team", reqID)
		return
	}

	h.record(r, activity.Entry{
		Type:      activity.TypeTeamDeleted,
		Subject:   "Team deleted",
		RelatedTo: &activity.RelatedRef{Kind: activity.KindTeam, ID: teamID},
	})

	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	teamID := chi.URLParam(r, "teamID")

	var payload memberRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "is required")
	if v.Reject(w, reqID) {
		return
	}

	emp, err := h.Store.ResolveEmployee(r.Context(), payload.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}

	if err := h.Store.AddTeamMember(r.Context(), teamID, emp.ID); err != nil {
		if errors.Is(err, core.ErrTeamNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "team not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "team_member_failed", "failed to add team member", reqID)
		return
	}

	team, err := h.Store.GetTeam(r.Context(), teamID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "team_member_failed", "failed to load team", reqID)
		return
	}
	api.Success(w, team, reqID)
}

func (h *Handler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	teamID := chi.URLParam(r, "teamID")

	emp, err := h.Store.ResolveEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		return
	}

	if err := h.Store.RemoveTeamMember(r.Context(), teamID, emp.ID); err != nil {
		if errors.Is(err, core.ErrTeamNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "team not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "team_member_failed", "failed to remove team member", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "removed"}, reqID)
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	teamID := chi.URLParam(r, "teamID")

	var payload projectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Enum("status", payload.Status, core.ProjectStatuses, "must be a known project status")
	start, end := h.parseProjectDates(v, payload)
	if v.Reject(w, reqID) {
		return
	}

	status := payload.Status
	if status == "" {
		status = core.ProjectStatusPlanning
	}

	project, err := h.Store.CreateProject(r.Context(), core.Project{
		TeamID:      teamID,
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		Status:      status,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		if errors.Is(err, core.ErrTeamNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "team not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "project_create_failed", "failed to create project", reqID)
		return
	}
	api.Created(w, project, reqID)
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	projectID := chi.URLParam(r, "projectID")

	var payload projectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Enum("status", payload.Status, core.ProjectStatuses, "must be a known project status")
	start, end := h.parseProjectDates(v, payload)
	if v.Reject(w, reqID) {
		return
	}

	err := h.Store.UpdateProject(r.Context(), projectID, core.Project{
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		Status:      payload.Status,
		StartDate:   start,
		EndDate:     end,
	})
	if err != nil {
		if errors.Is(err, core.ErrProjectNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "project not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "project_update_failed", "failed to update project", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, reqID)
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	if err := h.Store.DeleteProject(r.Context(), chi.URLParam(r, "projectID")); err != nil {
		if errors.Is(err, core.ErrProjectNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "project not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "project_delete_failed", "failed to delete project", reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) parseProjectDates(v *shared.Validator, payload projectRequest) (*time.Time, *time.Time) {
	var start, end *time.Time
	if payload.StartDate != "" {
		if parsed, ok := v.Date("startDate", payload.StartDate); ok {
			start = &parsed
		}
	}
	if payload.EndDate != "" {
		if parsed, ok := v.Date("endDate", payload.EndDate); ok {
			end = &parsed
		}
	}
	if start != nil && end != nil {
		v.DateOrder("startDate", *start, "endDate", *end)
	}
	return start, end
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
