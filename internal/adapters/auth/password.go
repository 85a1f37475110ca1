package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"partyhaus/internal/domain"
)

// bcryptHasher runs bcrypt over a hex-encoded SHA-256 digest of
// salt+password. The pre-hash keeps arbitrarily long passwords inside
// bcrypt's 72-byte input limit.
type bcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) domain.PasswordHasher {
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) GenerateSalt() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (h *bcryptHasher) Hash(salt, password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(digest(salt, password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptHasher) Compare(hash, salt, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), digest(salt, password))
}

// digest is the canonical bcrypt input for a salt/password pair. Changing it
// invalidates every stored hash.
func digest(salt, password string) []byte {
	sum := sha256.Sum256([]byte(salt + password))
	return []byte(hex.EncodeToString(sum[:]))
}
