package authhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"erm/internal/domain/activity"
	"erm/internal/domain/auth"
	"erm/internal/domain/core"
	"erm/internal/platform/config"
	"erm/internal/platform/email"
	"erm/internal/transport/http/api"
	"erm/internal/transport/http/middleware"
	"erm/internal/transport/http/shared"
)

type Handler struct {
	Users    *auth.Store
	Core     *core.Store
	Activity *activity.Service
	Mailer   email.Mailer
	Cfg      config.Config
}

func NewHandler(users *auth.Store, coreStore *core.Store, act *activity.Service, mailer email.Mailer, cfg config.Config) *Handler {
	return &Handler{Users: users, Core: coreStore, Activity: act, Mailer: mailer, Cfg: cfg}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.handleRegister)
		r.Post("/login", h.handleLogin)
		r.Post("/request-reset", h.handleRequestReset)
		r.Post("/reset", h.handleResetPassword)

		r.With(middleware.RequireAuth).Post("/logout", h.handleLogout)
		r.With(middleware.RequireAuth).Post("/mfa/setup", h.handleMFASetup)
		r.With(middleware.RequireAuth).Post("/mfa/enable", h.handleMFAEnable)
		r.With(middleware.RequireAuth).Post("/mfa/disable", h.handleMFADisable)
	})
	r.With(middleware.RequireAuth).Get("/me", h.handleMe)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfaCode"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type mfaCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload registerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "is required")
	v.Required("email", payload.Email, "is required")
	for _, issue := range validatePassword(payload.Password) {
		v.Add("password", issue)
	}
	if v.Reject(w, reqID) {
		return
	}

	// Only an admin caller may pick a role; everyone else registers as user.
	role := auth.RoleUser
	if caller, ok := middleware.GetUser(r.Context()); ok && caller.Role == auth.RoleAdmin && payload.Role != "" {
		if !auth.ValidRole(payload.Role) {
			api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
				[]api.FieldError{{Field: "role", Message: "must be one of admin, employee, user"}}, reqID)
			return
		}
		role = payload.Role
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register user", reqID)
		return
	}

	user, err := h.Users.CreateUser(r.Context(), payload.Name, strings.ToLower(strings.TrimSpace(payload.Email)), hash, role)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			api.Fail(w, http.StatusConflict, "conflict", "email already in use", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "register_failed", "failed to register user", reqID)
		return
	}

	token, err := auth.GenerateToken(h.Cfg.JWTSecret, auth.Claims{UserID: user.ID, Role: user.Role, Name: user.Name}, h.Cfg.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	h.record(r, activity.Entry{
		Type:        activity.TypeUserRegistered,
		ActorUserID: user.ID,
		Subject:     "User registered",
		Description: fmt.Sprintf("%s registered", user.Email),
		RelatedTo:   &activity.RelatedRef{Kind: activity.KindUser, ID: user.ID},
	})

	api.Created(w, map[string]any{"token": token, "user": user}, reqID)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	creds, err := h.Users.FindCredentialsByEmail(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err := auth.VerifyLogin(creds, payload.Password, payload.MFACode); err != nil {
		switch {
		case errors.Is(err, auth.ErrMFARequired):
			api.Fail(w, http.StatusUnauthorized, "mfa_required", "mfa code required", reqID)
		case errors.Is(err, auth.ErrInvalidMFACode):
			api.Fail(w, http.StatusUnauthorized, "mfa_invalid", "invalid mfa code", reqID)
		default:
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		}
		return
	}

	token, err := auth.GenerateToken(h.Cfg.JWTSecret, auth.Claims{UserID: creds.User.ID, Role: creds.User.Role, Name: creds.User.Name}, h.Cfg.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	if err := h.Users.UpdateLastLogin(r.Context(), creds.User.ID); err != nil {
		slog.Warn("update last_login failed", "userId", creds.User.ID, "err", err)
	}

	h.record(r, activity.Entry{
		Type:        activity.TypeUserLogin,
		ActorUserID: creds.User.ID,
		Subject:     "User logged in",
		RelatedTo:   &activity.RelatedRef{Kind: activity.KindUser, ID: creds.User.ID},
	})

	api.Success(w, map[string]any{"token": token, "user": creds.User}, reqID)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if user, ok := middleware.GetUser(r.Context()); ok {
		h.record(r, activity.Entry{
			Type:        activity.TypeUserLogout,
			ActorUserID: user.UserID,
			Subject:     "User logged out",
			RelatedTo:   &activity.RelatedRef{Kind: activity.KindUser, ID: user.UserID},
		})
	}
	api.Success(w, map[string]string{"status": "logged_out"}, reqID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	userCtx, _ := middleware.GetUser(r.Context())

	user, err := h.Users.GetUser(r.Context(), userCtx.UserID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", reqID)
		return
	}

	response := map[string]any{"user": user}
	if emp, err := h.Core.GetEmployeeByUserID(r.Context(), user.ID); err == nil {
		response["employee"] = emp
	}
	api.Success(w, response, reqID)
}

func (h *Handler) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "ERM",
		AccountName: user.UserID,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to generate mfa secret", reqID)
		return
	}

	if err := h.Users.SetMFASecret(r.Context(), user.UserID, key.Secret()); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_setup_failed", "failed to store mfa secret", reqID)
		return
	}

	api.Success(w, map[string]string{"secret": key.Secret(), "otpauthUrl": key.URL()}, reqID)
}

func (h *Handler) handleMFAEnable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, true)
}

func (h *Handler) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	h.toggleMFA(w, r, false)
}

func (h *Handler) toggleMFA(w http.ResponseWriter, r *http.Request, enable bool) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload mfaCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	secret, err := h.Users.MFASecret(r.Context(), user.UserID)
	if err != nil || secret == "" {
		api.Fail(w, http.StatusBadRequest, "mfa_missing", "mfa setup required", reqID)
		return
	}
	if !totp.Validate(payload.Code, secret) {
		api.Fail(w, http.StatusBadRequest, "mfa_invalid", "invalid mfa code", reqID)
		return
	}

	if err := h.Users.SetMFAEnabled(r.Context(), user.UserID, enable); err != nil {
		api.Fail(w, http.StatusInternalServerError, "mfa_update_failed", "failed to update mfa state", reqID)
		return
	}
	status := "disabled"
	if enable {
		status = "enabled"
	}
	api.Success(w, map[string]string{"status": status}, reqID)
}

func (h *Handler) handleRequestReset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload resetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	// Response never reveals whether the email exists.
	creds, err := h.Users.FindCredentialsByEmail(r.Context(), strings.ToLower(strings.TrimSpace(payload.Email)))
	if err == nil {
		token, tokenErr := auth.NewResetToken()
		if tokenErr != nil {
			slog.Warn("reset token generation failed", "userId", creds.User.ID, "err", tokenErr)
		} else {
			expires := time.Now().Add(h.Cfg.ResetTokenTTL)
			if err := h.Users.CreatePasswordReset(r.Context(), creds.User.ID, auth.HashToken(token), expires); err != nil {
				slog.Warn("password reset insert failed", "userId", creds.User.ID, "err", err)
			} else if h.Mailer != nil {
				link := buildResetLink(h.Cfg.ResetBaseURL, token)
				body := fmt.Sprintf("A password reset was requested for your account.\n\nReset link: %s\n\nThe link expires in %s.", link, h.Cfg.ResetTokenTTL)
				if err := h.Mailer.Send(r.Context(), h.Cfg.EmailFrom, creds.User.Email, "Password reset", body); err != nil {
					slog.Warn("reset email send failed", "userId", creds.User.ID, "err", err)
				}
			}
		}
	}

	api.Success(w, map[string]string{"status": "reset_requested"}, reqID)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	v.Required("token", payload.Token, "is required")
	for _, issue := range validatePassword(payload.NewPassword) {
		v.Add("newPassword", issue)
	}
	if v.Reject(w, reqID) {
		return
	}

	userID, err := h.Users.PasswordResetUserID(r.Context(), auth.HashToken(payload.Token))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_token", "invalid or expired token", reqID)
		return
	}

	hash, err := auth.HashPassword(payload.NewPassword)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "reset_failed", "failed to update password", reqID)
		return
	}
	if err := h.Users.UpdatePassword(r.Context(), userID, hash); err != nil {
		api.Fail(w, http.StatusInternalServerError, "reset_failed", "failed to update password", reqID)
		return
	}
	if err := h.Users.MarkPasswordResetUsed(r.Context(), auth.HashToken(payload.Token)); err != nil {
		slog.Warn("password reset mark used failed", "err", err)
	}

	api.Success(w, map[string]string{"status": "password_reset"}, reqID)
}

func (h *Handler) record(r *http.Request, entry activity.Entry) {
	entry.RequestID = middleware.GetRequestID(r.Context())
	entry.IP = shared.ClientIP(r)
	if err := h.Activity.Record(r.Context(), entry); err != nil {
		slog.Warn("activity record failed", "type", entry.Type, "err", err)
	}
}

// validatePassword lists the strength rules the password breaks.
func validatePassword(password string) []string {
	var issues []string
	if len(password) < 8 {
		issues = append(issues, "must be at least 8 characters")
	}
	hasLetter, hasDigit := false, false
	for _, c := range password {
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		issues = append(issues, "must contain both letters and digits")
	}
	return issues
}

func buildResetLink(base, token string) string {
	return strings.TrimRight(base, "/") + "/reset-password?token=" + token
}
