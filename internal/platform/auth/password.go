package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/arashmdn/student-portal/internal/domain"
)

// MaxPasswordBytes is bcrypt's hard input limit. Oversize passwords are
// rejected, never truncated: an earlier revision silently truncated and
// two distinct passwords could collide on the same digest.
const MaxPasswordBytes = 72

const msgPasswordTooLong = "رمز عبور نباید بیشتر از ۷۲ بایت باشد"

// PasswordHasher wraps bcrypt with the portal's input-length policy.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash digests password with a fresh random salt. Input over 72 UTF-8
// bytes fails with a ValidationError.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", domain.NewValidationError("password", msgPasswordTooLong)
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether password matches digest. It never fails: oversize
// candidates and malformed digests both report false.
func (h *PasswordHasher) Verify(password, digest string) bool {
	if len(password) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
