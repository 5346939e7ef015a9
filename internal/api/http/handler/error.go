package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/llmezi/auth-service/internal/model"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

// statusFromError maps service errors to HTTP status codes. Anything
// unmapped is an internal error and its message is not exposed.
func statusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrAuthenticationFailed):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, model.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, "refresh token expired"
	case errors.Is(err, model.ErrRefreshTokenInvalid):
		return http.StatusUnauthorized, "refresh token invalid"
	case errors.Is(err, model.ErrAuthCodeExpired):
		return http.StatusUnauthorized, "code expired"
	case errors.Is(err, model.ErrAuthCodeInvalid), errors.Is(err, model.ErrAuthCodeUsed):
		return http.StatusUnauthorized, "code invalid"
	case errors.Is(err, model.ErrTokenExpired), errors.Is(err, model.ErrTokenInvalid):
		return http.StatusUnauthorized, "token invalid"
	case errors.Is(err, model.ErrPasswordPolicyViolation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrUserAlreadyExists):
		return http.StatusConflict, "setup already completed"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, model.ErrRateLimited):
		return http.StatusTooManyRequests, "too many requests"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, message := statusFromError(err)
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// decodeJSON parses the request body into dst and reports whether it
// succeeded, replying 400 when it did not.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}
