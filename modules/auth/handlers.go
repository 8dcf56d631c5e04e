package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Router mounts the account endpoints. Routes under /2fa, plus change-password
// and me, require an authenticated session.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", s.handleRegister)
	r.Get("/confirm-email", s.handleConfirmEmail)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Post("/forgot-password", s.handleForgotPassword)
	r.Post("/reset-password", s.handleResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(s.Middleware())
		r.Get("/me", s.handleMe)
		r.Post("/change-password", s.handleChangePassword)
		r.Post("/2fa/setup", s.handleSetupTwoFactor)
		r.Post("/2fa/verify", s.handleVerifyTwoFactor)
		r.Post("/2fa/disable", s.handleDisableTwoFactor)
	})

	return r
}

type userResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	IsEmailConfirmed bool      `json:"is_email_confirmed"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

func toUserResponse(u *User) userResponse {
	return userResponse{
		ID:               u.ID.String(),
		Email:            u.Email,
		IsEmailConfirmed: u.IsEmailConfirmed,
		TwoFactorEnabled: u.TwoFactorEnabled(),
		CreatedAt:        u.CreatedAt,
	}
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}

	user, err := s.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *Service) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := s.ConfirmEmail(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "email confirmed"})
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Code     string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}

	token, user, err := s.Login(r.Context(), req.Email, req.Password, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, SessionCookie(s.cfg, token, int(s.cfg.SessionTTL.Seconds())))
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         toUserResponse(user),
	})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, SessionCookie(s.cfg, "", -1))
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, ErrNoToken)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Service) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}

	if err := s.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	// Identical response whether or not the email is registered.
	writeJSON(w, http.StatusOK, map[string]string{"message": "if the email is registered, a reset link has been sent"})
}

func (s *Service) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}

	if err := s.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (s *Service) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, ErrNoToken)
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}

	if err := s.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (s *Service) handleSetupTwoFactor(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, ErrNoToken)
		return
	}

	setup, err := s.SetupTwoFactor(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, setup)
}

func (s *Service) handleVerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, ErrNoToken)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}

	if err := s.VerifyTwoFactor(r.Context(), user.ID, req.Code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "two-factor code verified"})
}

func (s *Service) handleDisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, ErrNoToken)
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed request body"))
		return
	}

	if err := s.DisableTwoFactor(r.Context(), user.ID, req.Code); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "two-factor authentication disabled"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps service errors onto HTTP statuses. Unrecognized errors are
// reported as opaque 500s so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrNoToken),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrPurposeMismatch),
		errors.Is(err, ErrTwoFactorRequired),
		errors.Is(err, ErrUserInactive):
		writeJSON(w, http.StatusUnauthorized, errorBody(err.Error()))
	case errors.Is(err, ErrEmailNotConfirmed),
		errors.Is(err, ErrTwoFactorInvalid):
		writeJSON(w, http.StatusForbidden, errorBody(err.Error()))
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrTwoFactorNotEnabled):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
	}
}
