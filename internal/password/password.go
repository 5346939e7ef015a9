// Package password covers password hashing and policy validation.
// Hashing is intentionally expensive; it sits on the critical path of
// every login attempt.
package password

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/llmezi/auth-service/internal/model"
)

const bcryptCost = 12

// Hash generates a bcrypt hash of the password.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored hash.
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Validate checks a password against the policy: at least 8
// characters, no leading or trailing space, and at least two of the
// three categories letters / digits / symbols. Violations are wrapped
// in model.ErrPasswordPolicyViolation.
func Validate(password string) error {
	var errs []string

	if len(password) < 8 {
		errs = append(errs, "password must be at least 8 characters long")
	}

	if strings.HasPrefix(password, " ") || strings.HasSuffix(password, " ") {
		errs = append(errs, "password cannot begin or end with a blank space")
	}

	var hasLetter, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsSpace(r):
			hasSymbol = true
		}
	}

	categories := 0
	for _, ok := range []bool{hasLetter, hasDigit, hasSymbol} {
		if ok {
			categories++
		}
	}
	if categories < 2 {
		errs = append(errs, "password must contain a combination of letters, numbers, and/or symbols")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", model.ErrPasswordPolicyViolation, strings.Join(errs, "; "))
	}
	return nil
}
