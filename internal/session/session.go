// Package session moves the auth token and the redirect-loop counter in and
// out of cookies. It never interprets the token; verification lives in the
// auth usecase.
package session

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	TokenCookie    = "auth_token"
	RedirectCookie = "redirect_count"

	DefaultMaxAge  = 7 * 24 * time.Hour
	redirectMaxAge = 60 * time.Second
)

type Options struct {
	Secure bool
	Domain string
	MaxAge time.Duration
}

type Store struct {
	secure bool
	domain string
	maxAge time.Duration
}

func NewStore(opts Options) *Store {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	return &Store{secure: opts.Secure, domain: opts.Domain, maxAge: opts.MaxAge}
}

// Set stores tok as the session cookie.
func (s *Store) Set(c *gin.Context, tok string) {
	http.SetCookie(c.Writer, s.cookie(TokenCookie, tok, int(s.maxAge.Seconds())))
}

// Token returns the raw cookie value. Presence says nothing about validity.
func (s *Store) Token(c *gin.Context) (string, bool) {
	ck, err := c.Request.Cookie(TokenCookie)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// Clear deletes the session cookie and also overwrites it with an empty,
// already-expired value. Browsers disagree on deletion edge cases; both
// Set-Cookie lines are intentional.
func (s *Store) Clear(c *gin.Context) {
	http.SetCookie(c.Writer, s.cookie(TokenCookie, "", -1))

	expired := s.cookie(TokenCookie, "", 0)
	expired.Expires = time.Unix(0, 0).UTC()
	http.SetCookie(c.Writer, expired)
}

// ForceClear is Clear plus resetting the redirect-loop counter.
func (s *Store) ForceClear(c *gin.Context) {
	s.Clear(c)
	s.ClearRedirectCount(c)
}

// RedirectCount returns the loop counter, 0 when absent or unparsable.
func (s *Store) RedirectCount(c *gin.Context) int {
	ck, err := c.Request.Cookie(RedirectCookie)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(ck.Value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (s *Store) SetRedirectCount(c *gin.Context, n int) {
	http.SetCookie(c.Writer, s.cookie(RedirectCookie, strconv.Itoa(n), int(redirectMaxAge.Seconds())))
}

func (s *Store) ClearRedirectCount(c *gin.Context) {
	http.SetCookie(c.Writer, s.cookie(RedirectCookie, "", -1))
}

func (s *Store) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
