// Package token issues and verifies the portal's self-contained bearer tokens.
//
// Wire format: base64(email:issued_at_ms:nonce_hex:signature_hex) where
// signature = HMAC-SHA256(secret, "email:issued_at_ms:nonce_hex").
// There is no server-side token table; a token dies only by expiry or by
// losing the cookie that carries it.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/student-portal/internal/domain"
)

const (
	DefaultTTL = 24 * time.Hour
	nonceSize  = 16
)

var ErrMalformedEmail = errors.New("email must not contain ':'")

// Claims is what a verified token proves.
type Claims struct {
	Email    string
	IssuedAt time.Time
}

type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	rand   io.Reader
}

type Option func(*Codec)

// WithClock replaces time.Now; used by tests to age tokens.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// WithRandom replaces crypto/rand as the nonce source.
func WithRandom(r io.Reader) Option {
	return func(c *Codec) { c.rand = r }
}

func NewCodec(secret []byte, ttl time.Duration, opts ...Option) *Codec {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Codec{
		secret: secret,
		ttl:    ttl,
		now:    time.Now,
		rand:   rand.Reader,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

func (c *Codec) Generate(email string) (string, error) {
	if strings.Contains(email, ":") {
		return "", ErrMalformedEmail
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(c.rand, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	payload := email + ":" + strconv.FormatInt(c.now().UnixMilli(), 10) + ":" + hex.EncodeToString(nonce)
	raw := payload + ":" + c.sign(payload)
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// Verify never panics; every failure is domain.ErrTokenInvalid wrapped with
// the cause so callers can log it.
func (c *Codec) Verify(tok string) (Claims, error) {
	decoded, err := base64.StdEncoding.DecodeString(tok)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: decode: %v", domain.ErrTokenInvalid, err)
	}

	parts := strings.Split(string(decoded), ":")
	if len(parts) != 4 {
		return Claims{}, fmt.Errorf("%w: want 4 fields, got %d", domain.ErrTokenInvalid, len(parts))
	}
	email, ts, nonce, sig := parts[0], parts[1], parts[2], parts[3]
	if email == "" || nonce == "" || sig == "" {
		return Claims{}, fmt.Errorf("%w: empty field", domain.ErrTokenInvalid)
	}

	ms, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: timestamp: %v", domain.ErrTokenInvalid, err)
	}
	issuedAt := time.UnixMilli(ms)
	if c.now().Sub(issuedAt) > c.ttl {
		return Claims{}, fmt.Errorf("%w: expired", domain.ErrTokenInvalid)
	}

	expected := c.sign(email + ":" + ts + ":" + nonce)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return Claims{}, fmt.Errorf("%w: signature mismatch", domain.ErrTokenInvalid)
	}

	return Claims{Email: email, IssuedAt: issuedAt}, nil
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
