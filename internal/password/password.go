// Package password hashes and checks student passwords.
//
// Digest is the deterministic secret-peppered SHA-256 the directory has
// always stored. New hashes wrap the digest in bcrypt so every student gets
// their own salt; bare digests still verify and report NeedsRehash.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 12

// Digest returns hex(sha256(password + secret)).
func Digest(password, secret string) string {
	sum := sha256.Sum256([]byte(password + secret))
	return hex.EncodeToString(sum[:])
}

type Hasher struct {
	secret string
	cost   int
}

func NewHasher(secret string, cost int) *Hasher {
	if cost == 0 {
		cost = DefaultCost
	}
	return &Hasher{secret: secret, cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(Digest(password, h.secret)), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

func (h *Hasher) Compare(password, stored string) bool {
	if stored == "" {
		return false
	}
	digest := Digest(password, h.secret)
	if isBcrypt(stored) {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(digest))
		return err == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(digest)) == 1
}

// NeedsRehash is true for legacy bare digests and for bcrypt hashes made
// with a different cost.
func (h *Hasher) NeedsRehash(stored string) bool {
	if !isBcrypt(stored) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(stored))
	if err != nil {
		return true
	}
	return cost != h.cost
}

func isBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$")
}
