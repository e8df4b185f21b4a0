package users

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a plaintext password into a stored verifier and checks it back.
type Hasher interface {
	Hash(password string) string
	Verify(password, verifier string) bool
}

// SHA256Hasher stores the unsalted hex SHA-256 digest of the password.
// The same password always yields the same verifier.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (h SHA256Hasher) Verify(password, verifier string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(password)), []byte(verifier)) == 1
}

// bcryptMaxPassword is the longest input bcrypt accepts.
const bcryptMaxPassword = 72

// BcryptHasher stores salted bcrypt hashes. Hash is not deterministic.
type BcryptHasher struct {
	Cost int
}

// MaxPasswordBytes reports the bcrypt input limit.
func (BcryptHasher) MaxPasswordBytes() int { return bcryptMaxPassword }

func (h BcryptHasher) Hash(password string) string {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		// Passwords over the limit are refused by ValidatePassword, leaving an
		// out-of-range cost. An empty verifier never verifies.
		return ""
	}
	return string(b)
}

func (BcryptHasher) Verify(password, verifier string) bool {
	if verifier == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(verifier), []byte(password)) == nil
}

// ValidatePassword rejects passwords h cannot store faithfully. Hashers
// with an input limit expose it through MaxPasswordBytes.
func ValidatePassword(h Hasher, password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if l, ok := h.(interface{ MaxPasswordBytes() int }); ok && len(password) > l.MaxPasswordBytes() {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, l.MaxPasswordBytes())
	}
	return nil
}

// NewHasher returns the hasher registered under name ("sha256" or "bcrypt").
func NewHasher(name string) (Hasher, error) {
	switch name {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "bcrypt":
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}
