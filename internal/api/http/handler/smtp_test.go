package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/llmezi/auth-service/internal/testutil"
)

type smtpStatusStub struct {
	healthy bool
}

func (s *smtpStatusStub) Healthy(_ context.Context) bool {
	return s.healthy
}

func TestSMTP_Status(t *testing.T) {
	tests := []struct {
		name    string
		healthy bool
		want    string
	}{
		{name: "relay ready", healthy: true, want: `{"isSmtpReady":true}`},
		{name: "relay unreachable", healthy: false, want: `{"isSmtpReady":false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSMTP(&smtpStatusStub{healthy: tt.healthy}, testutil.MakeNoopLogger())

			req := httptest.NewRequest(http.MethodGet, "/api/smtp/status", nil)
			rec := httptest.NewRecorder()
			h.Status(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}
