/*
Package password validates and hashes account credentials.

Secrets are stored only as salted bcrypt hashes inside the shared document.
*/
package password

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"messenger/internal/pkg/errs"
)

const (
	MinLength = 3
	MaxLength = 72
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.]{2,32}$`)

// ValidateUsername checks the login key format. Comparison is case-insensitive
// elsewhere, so mixed case is allowed here.
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return errs.NewError(errs.ErrInvalidUsername)
	}
	return nil
}

// Hash validates the secret and returns its bcrypt hash.
func Hash(secret string) (string, error) {
	secret = strings.TrimSpace(secret)

	n := utf8.RuneCountInString(secret)
	if n < MinLength || len(secret) > MaxLength {
		return "", errs.NewError(errs.ErrInvalidPassword)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.NewError(errs.ErrUnknown, err)
	}

	return string(hashed), nil
}

// Verify reports whether secret matches hash.
func Verify(hash, secret string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(secret))) == nil
}
