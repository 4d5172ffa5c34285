package password_test

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/ErlanBelekov/student-portal/internal/password"
	"golang.org/x/crypto/bcrypt"
)

const secret = "password-test-secret-at-least-32!!"

func TestDigest_Deterministic(t *testing.T) {
	a := password.Digest("hunter22", secret)
	b := password.Digest("hunter22", secret)
	if a != b {
		t.Errorf("digest not deterministic: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64", len(a))
	}
}

func TestDigest_SecretChangesHash(t *testing.T) {
	if password.Digest("hunter22", secret) == password.Digest("hunter22", secret+"x") {
		t.Error("changing the secret must change the digest")
	}
}

func TestDigest_PasswordThenSecret(t *testing.T) {
	sum := sha256.Sum256([]byte("pw" + "s"))
	if got, want := password.Digest("pw", "s"), hex.EncodeToString(sum[:]); got != want {
		t.Errorf("digest = %q, want %q", got, want)
	}
}

func TestHasher_HashAndCompare(t *testing.T) {
	h := password.NewHasher(secret, bcrypt.MinCost)

	stored, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(stored, "$2") {
		t.Errorf("stored hash %q is not bcrypt", stored)
	}
	if !h.Compare("correct horse", stored) {
		t.Error("correct password rejected")
	}
	if h.Compare("correct horsf", stored) {
		t.Error("wrong password accepted")
	}
}

func TestHasher_SaltedPerHash(t *testing.T) {
	h := password.NewHasher(secret, bcrypt.MinCost)
	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Error("two hashes of the same password must differ")
	}
}

func TestHasher_LegacyDigest(t *testing.T) {
	h := password.NewHasher(secret, bcrypt.MinCost)
	legacy := password.Digest("old-password", secret)

	if !h.Compare("old-password", legacy) {
		t.Error("legacy digest should verify")
	}
	if h.Compare("other-password", legacy) {
		t.Error("wrong password accepted against legacy digest")
	}
	if !h.NeedsRehash(legacy) {
		t.Error("legacy digest should need rehash")
	}
}

func TestHasher_NeedsRehash(t *testing.T) {
	h := password.NewHasher(secret, bcrypt.MinCost)
	current, _ := h.Hash("pw-12345678")
	if h.NeedsRehash(current) {
		t.Error("fresh hash should not need rehash")
	}

	stronger := password.NewHasher(secret, bcrypt.MinCost+1)
	if !stronger.NeedsRehash(current) {
		t.Error("hash with a different cost should need rehash")
	}
}

func TestHasher_EmptyStored(t *testing.T) {
	h := password.NewHasher(secret, bcrypt.MinCost)
	if h.Compare("anything", "") {
		t.Error("empty stored hash must never match")
	}
}
