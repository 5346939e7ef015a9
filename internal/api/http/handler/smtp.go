package handler

import (
	"context"
	"net/http"

	"github.com/llmezi/auth-service/internal/logger"
)

// SMTPStatus reports whether the mail relay is ready to send.
type SMTPStatus interface {
	Healthy(ctx context.Context) bool
}

// SMTP handles the HTTP endpoint for relay readiness. The result is
// cached upstream so polling clients do not open a connection per
// request.
type SMTP struct {
	status SMTPStatus
	logger *logger.Logger
}

// NewSMTP creates a new SMTP handler.
func NewSMTP(status SMTPStatus, logger *logger.Logger) *SMTP {
	return &SMTP{status: status, logger: logger}
}

// Status reports relay readiness, e.g. for setup screens that need to
// know whether auth codes can be delivered.
func (h *SMTP) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"isSmtpReady": h.status.Healthy(r.Context())})
}
