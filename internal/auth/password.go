package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

const (
	MinPasswordLength = 8
	// MaxPasswordLength is bcrypt's input limit, in bytes.
	MaxPasswordLength = 72
)

func HashPassword(password string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", passwordLengthError()
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword compares in constant time. $2a$, $2b$ and $2y$ hashes are
// all accepted.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return passwordLengthError()
	}
	return nil
}

func passwordLengthError() error {
	return utils.Validation(fmt.Sprintf("password must be between %d and %d bytes", MinPasswordLength, MaxPasswordLength))
}

// newDummyHash returns a hash at cost for the unknown-user path, so both
// login failures cost one comparison at the same work factor.
func newDummyHash(cost int) string {
	h, err := bcrypt.GenerateFromPassword([]byte("portal-dummy-password"), cost)
	if err != nil {
		h, _ = bcrypt.GenerateFromPassword([]byte("portal-dummy-password"), bcrypt.DefaultCost)
	}
	return string(h)
}
