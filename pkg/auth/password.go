package auth

import (
	"github.com/uth-confms/confms/pkg/errdefs"
	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt cost factor used when none is configured.
// Cost 12 keeps a single hash in the tens of milliseconds on current hardware.
const DefaultHashCost = 12

// PasswordHasher hashes and verifies passwords with bcrypt. The produced hash
// is self-describing (salt and cost are embedded), so verification needs no
// side channel.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the given bcrypt cost. Costs outside
// bcrypt's supported range fall back to DefaultHashCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password. Empty input is rejected.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errdefs.Validation("password must not be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errdefs.Wrap(errdefs.KindValidation, "password not hashable", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash. It never returns an error:
// malformed hashes and mismatches both come back false. bcrypt's comparison
// is constant-time with respect to the password bytes.
func (h *PasswordHasher) Verify(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
