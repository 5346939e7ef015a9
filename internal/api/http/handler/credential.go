package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/llmezi/auth-service/internal/logger"
	"github.com/llmezi/auth-service/internal/model"
)

// CredentialService defines the credential operations the handler
// needs.
type CredentialService interface {
	Get(ctx context.Context, key string) (model.Credential, error)
	GetValue(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, shouldEncrypt bool, description *string) (model.Credential, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, includeValues bool) ([]model.Credential, error)
}

// UserStore resolves the requesting user for the admin check.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (model.User, error)
}

// Credential handles the HTTP endpoints for credential management.
// Every endpoint requires an authenticated admin.
type Credential struct {
	service        CredentialService
	users          UserStore
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewCredential creates a new Credential handler.
func NewCredential(service CredentialService, users UserStore, contextManager model.ContextManager, logger *logger.Logger) *Credential {
	return &Credential{
		service:        service,
		users:          users,
		contextManager: contextManager,
		logger:         logger,
	}
}

type credentialResponse struct {
	Key              string    `json:"key"`
	Value            string    `json:"value,omitempty"`
	IsValueEncrypted bool      `json:"isValueEncrypted"`
	Description      *string   `json:"description"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toCredentialResponse(c model.Credential) credentialResponse {
	return credentialResponse{
		Key:              c.Key,
		Value:            c.Value,
		IsValueEncrypted: c.IsValueEncrypted,
		Description:      c.Description,
		UpdatedAt:        c.UpdatedAt,
	}
}

// requireAdmin resolves the authenticated user and replies 403 unless
// they are an active admin.
func (h *Credential) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return false
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("Credential handler: failed to resolve user", "user_id", userID.String(), "error", err.Error())
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return false
	}

	if !user.IsActive || !user.IsAdmin {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin access required"})
		return false
	}

	return true
}

// List returns all credentials. Values are only included when the
// includeValues query parameter is set, and encrypted values stay
// ciphertext even then.
func (h *Credential) List(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	includeValues := r.URL.Query().Get("includeValues") == "true"

	creds, err := h.service.List(r.Context(), includeValues)
	if err != nil {
		h.logger.Error("Credential handler: list failed", "error", err.Error())
		writeError(w, err)
		return
	}

	response := make([]credentialResponse, 0, len(creds))
	for _, c := range creds {
		response = append(response, toCredentialResponse(c))
	}

	writeJSON(w, http.StatusOK, response)
}

// Get returns a single credential record. The stored value is returned
// as is; use GetValue for plaintext.
func (h *Credential) Get(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	key := mux.Vars(r)["key"]

	cred, err := h.service.Get(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCredentialResponse(cred))
}

// GetValue returns the plaintext value of a credential.
func (h *Credential) GetValue(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	key := mux.Vars(r)["key"]

	value, err := h.service.GetValue(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"key": key, "value": value})
}

// Set creates or overwrites a credential.
func (h *Credential) Set(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req struct {
		Key           string  `json:"key"`
		Value         string  `json:"value"`
		ShouldEncrypt bool    `json:"shouldEncrypt"`
		Description   *string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "key is required"})
		return
	}

	cred, err := h.service.Set(r.Context(), req.Key, req.Value, req.ShouldEncrypt, req.Description)
	if err != nil {
		h.logger.Error("Credential handler: set failed", "key", req.Key, "error", err.Error())
		writeError(w, err)
		return
	}

	// Never echo the stored value back from a write.
	cred.Value = ""

	writeJSON(w, http.StatusOK, toCredentialResponse(cred))
}

// Delete removes a credential by key.
func (h *Credential) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	key := mux.Vars(r)["key"]

	existed, err := h.service.Delete(r.Context(), key)
	if err != nil {
		h.logger.Error("Credential handler: delete failed", "key", key, "error", err.Error())
		writeError(w, err)
		return
	}
	if !existed {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
