package password

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llmezi/auth-service/internal/model"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse 1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse 1", hash)

	assert.True(t, Verify("correct horse 1", hash))
	assert.False(t, Verify("wrong horse 1", hash))
	assert.False(t, Verify("correct horse 1", "not a hash"))
}

func TestHash_NotDeterministic(t *testing.T) {
	a, err := Hash("correct horse 1")
	require.NoError(t, err)
	b, err := Hash("correct horse 1")
	require.NoError(t, err)

	// bcrypt salts every hash.
	assert.NotEqual(t, a, b)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "letters and digits", password: "abcdef12", wantErr: false},
		{name: "letters and symbols", password: "abcdef!?", wantErr: false},
		{name: "digits and symbols", password: "123456!?", wantErr: false},
		{name: "too short", password: "ab12", wantErr: true},
		{name: "single category", password: "abcdefgh", wantErr: true},
		{name: "leading space", password: " abcdef12", wantErr: true},
		{name: "trailing space", password: "abcdef12 ", wantErr: true},
		{name: "inner space allowed", password: "abc def 12", wantErr: false},
		{name: "empty", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, model.ErrPasswordPolicyViolation))
			} else {
				require.NoError(t, err)
			}
		})
	}
}
