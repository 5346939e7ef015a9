package handler

import (
	"context"
	"net/http"

	"github.com/llmezi/auth-service/internal/logger"
	"github.com/llmezi/auth-service/internal/model"
)

// AuthService defines the authentication operations the handler needs.
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (model.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (model.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) (bool, error)
	RequestAuthCode(ctx context.Context, email string, purpose model.AuthCodePurpose) error
	LoginWithAuthCode(ctx context.Context, email, code string) (model.AuthResult, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// UserService defines the setup operations the handler needs.
type UserService interface {
	IsFirstAdminCreated(ctx context.Context) (bool, error)
	CreateFirstAdmin(ctx context.Context, name, email, password string) (model.AuthResult, error)
}

// Auth handles the HTTP endpoints for authentication and setup.
type Auth struct {
	authService AuthService
	userService UserService
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, userService UserService, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		userService: userService,
		logger:      logger,
	}
}

type userResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type authResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         userResponse `json:"user"`
}

func toAuthResponse(result model.AuthResult) authResponse {
	return authResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User: userResponse{
			ID:      result.User.ID.String(),
			Name:    result.User.Name,
			Email:   result.User.Email,
			IsAdmin: result.User.IsAdmin,
		},
	}
}

// SetupStatus reports whether the first admin account exists yet.
func (h *Auth) SetupStatus(w http.ResponseWriter, r *http.Request) {
	created, err := h.userService.IsFirstAdminCreated(r.Context())
	if err != nil {
		h.logger.Error("Auth handler: setup status failed", "error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"isFirstAdminCreated": created})
}

// Setup creates the first admin account and returns its session.
func (h *Auth) Setup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	result, err := h.userService.CreateFirstAdmin(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: setup failed", "error", err.Error())
		writeError(w, err)
		return
	}

	h.logger.Info("Auth handler: first admin created", "user_id", result.User.ID.String())

	writeJSON(w, http.StatusCreated, toAuthResponse(result))
}

// Login authenticates an email/password pair.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	result, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

// Refresh exchanges a refresh token for a new token pair.
func (h *Auth) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "refresh token is required"})
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

// Logout invalidates the presented refresh token.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	invalidated, err := h.authService.Logout(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Error("Auth handler: logout failed", "error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"invalidated": invalidated})
}

// RequestAuthCode requests a one-time code. The response is identical
// whether or not the address is registered.
func (h *Auth) RequestAuthCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email   string `json:"email"`
		Purpose string `json:"purpose"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email is required"})
		return
	}

	purpose := model.AuthCodePurpose(req.Purpose)
	if purpose == "" {
		purpose = model.AuthCodePurposeLogin
	}
	if purpose != model.AuthCodePurposeLogin && purpose != model.AuthCodePurposePasswordReset {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown purpose"})
		return
	}

	if err := h.authService.RequestAuthCode(r.Context(), req.Email, purpose); err != nil {
		h.logger.Error("Auth handler: auth code request failed", "error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LoginWithAuthCode authenticates with a one-time login code.
func (h *Auth) LoginWithAuthCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and code are required"})
		return
	}

	result, err := h.authService.LoginWithAuthCode(r.Context(), req.Email, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

// ResetPassword sets a new password after verifying a reset code.
func (h *Auth) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email, code and newPassword are required"})
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
