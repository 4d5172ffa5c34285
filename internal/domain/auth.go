package domain

import (
	"errors"
	"time"
)

var (
	ErrTokenInvalid     = errors.New("token is invalid or expired")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserRetired      = errors.New("user is retired")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrUnauthorized     = errors.New("unauthorized")
)

// MinPasswordLength is the shortest password SetupPassword accepts.
const MinPasswordLength = 8

// Reason codes surfaced to clients, e.g. as ?error=<reason> on /login.
const (
	ReasonInvalidToken     = "invalid_token"
	ReasonUserNotFound     = "user_not_found"
	ReasonUserRetired      = "user_retired"
	ReasonInvalidPassword  = "invalid_password"
	ReasonPasswordTooShort = "password_too_short"
	ReasonServerError      = "server_error"
)

// Reason maps an auth error to its client-facing reason code.
// Anything unrecognised is a server error.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrTokenInvalid):
		return ReasonInvalidToken
	case errors.Is(err, ErrUserNotFound):
		return ReasonUserNotFound
	case errors.Is(err, ErrUserRetired):
		return ReasonUserRetired
	case errors.Is(err, ErrInvalidPassword):
		return ReasonInvalidPassword
	case errors.Is(err, ErrPasswordTooShort):
		return ReasonPasswordTooShort
	default:
		return ReasonServerError
	}
}

type SessionState string

const (
	StateAnonymous                  SessionState = "anonymous"
	StatePendingVerification        SessionState = "pending-verification"
	StateAuthenticated              SessionState = "authenticated"
	StateAuthenticatedNeedsPassword SessionState = "authenticated-needs-password"
	StateAuthenticatedComplete      SessionState = "authenticated-complete"
)

// Student is the directory's identity record. The portal never creates or
// deletes students; it reads them, writes PasswordHash and touches LastViewedAt.
type Student struct {
	ID           string
	Name         string
	Email        string
	Retired      bool
	PasswordHash string // empty until the student completes password setup
	PersonalPage string
	Progress     string
	LastViewedAt *time.Time
}

func (s *Student) HasPassword() bool {
	return s.PasswordHash != ""
}

// Session is a verified token bound to a live, non-retired student.
type Session struct {
	Email    string
	IssuedAt time.Time
	Student  *Student
}
