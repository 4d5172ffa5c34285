package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/email"
	"github.com/ErlanBelekov/student-portal/internal/metrics"
	"github.com/ErlanBelekov/student-portal/internal/token"
)

// CallbackPath is where magic links land.
const CallbackPath = "/api/auth/callback"

// tokenCodec is satisfied by *token.Codec.
type tokenCodec interface {
	Generate(email string) (string, error)
	Verify(tok string) (token.Claims, error)
	TTL() time.Duration
}

// passwordHasher is satisfied by *password.Hasher.
type passwordHasher interface {
	Hash(password string) (string, error)
	Compare(password, stored string) bool
	NeedsRehash(stored string) bool
}

type AuthUsecase struct {
	identities *IdentityResolver
	tokens     tokenCodec
	hasher     passwordHasher
	email      email.Sender
	appURL     string
	logger     *slog.Logger
}

func NewAuthUsecase(
	identities *IdentityResolver,
	tokens tokenCodec,
	hasher passwordHasher,
	emailSender email.Sender,
	appURL string,
	logger *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		identities: identities,
		tokens:     tokens,
		hasher:     hasher,
		email:      emailSender,
		appURL:     appURL,
		logger:     logger.With("component", "auth_usecase"),
	}
}

type LoginLink struct {
	State       domain.SessionState
	HasPassword bool
}

// RequestLogin emails a magic link. With reset set, the link routes the
// student to password setup. Delivery failures are logged, never returned.
func (u *AuthUsecase) RequestLogin(ctx context.Context, emailAddr string, reset bool) (result LoginLink, err error) {
	flow := "magic_link"
	if reset {
		flow = "password_reset"
	}
	defer func() { observe(flow, err) }()

	student, err := u.identities.ResolveActive(ctx, emailAddr)
	if err != nil {
		return LoginLink{State: domain.StateAnonymous}, err
	}

	tok, err := u.tokens.Generate(student.Email)
	if err != nil {
		return LoginLink{State: domain.StateAnonymous}, fmt.Errorf("issue token: %w", err)
	}

	msg := email.MagicLink(u.callbackURL(tok, reset), reset, u.tokens.TTL())
	if sendErr := u.email.Send(ctx, student.Email, msg); sendErr != nil {
		u.logger.WarnContext(ctx, "magic link delivery failed, continuing", "email", student.Email, "error", sendErr)
	}

	return LoginLink{State: domain.StatePendingVerification, HasPassword: student.HasPassword()}, nil
}

type CallbackResult struct {
	Token   string
	State   domain.SessionState
	Student *domain.Student
}

// HandleCallback exchanges a magic-link token for a fresh session token.
func (u *AuthUsecase) HandleCallback(ctx context.Context, tok string, reset bool) (result CallbackResult, err error) {
	defer func() { observe("callback", err) }()

	claims, err := u.tokens.Verify(tok)
	if err != nil {
		u.logger.InfoContext(ctx, "callback token rejected", "error", err)
		return CallbackResult{State: domain.StateAnonymous}, domain.ErrTokenInvalid
	}

	student, err := u.identities.ResolveActive(ctx, claims.Email)
	if err != nil {
		return CallbackResult{State: domain.StateAnonymous}, err
	}

	sessionToken, err := u.tokens.Generate(student.Email)
	if err != nil {
		return CallbackResult{State: domain.StateAnonymous}, fmt.Errorf("issue session token: %w", err)
	}

	state := domain.StateAuthenticatedComplete
	if reset || !student.HasPassword() {
		state = domain.StateAuthenticatedNeedsPassword
	}
	return CallbackResult{Token: sessionToken, State: state, Student: student}, nil
}

// LoginWithPassword returns a session token. Retired students are rejected
// before their password is looked at.
func (u *AuthUsecase) LoginWithPassword(ctx context.Context, emailAddr, pw string) (tok string, err error) {
	defer func() { observe("password", err) }()

	student, err := u.identities.ResolveActive(ctx, emailAddr)
	if err != nil {
		return "", err
	}

	if !u.hasher.Compare(pw, student.PasswordHash) {
		u.logger.InfoContext(ctx, "invalid password", "email", emailAddr)
		return "", domain.ErrInvalidPassword
	}

	if u.hasher.NeedsRehash(student.PasswordHash) {
		u.rehash(ctx, student, pw)
	}

	tok, err = u.tokens.Generate(student.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

// SetupPassword stores a new password for the session's student. Length is
// checked before anything is hashed.
func (u *AuthUsecase) SetupPassword(ctx context.Context, sess *domain.Session, pw string) (err error) {
	defer func() { observe("setup_password", err) }()

	if sess == nil || sess.Student == nil {
		return domain.ErrUnauthorized
	}
	if utf8.RuneCountInString(pw) < domain.MinPasswordLength {
		return domain.ErrPasswordTooShort
	}

	hash, err := u.hasher.Hash(pw)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := u.identities.SavePasswordHash(ctx, sess.Student.ID, hash); err != nil {
		return fmt.Errorf("save password hash: %w", err)
	}
	return nil
}

// Session verifies tok and resolves its student. Any failure means "no
// session"; the reason is only logged.
func (u *AuthUsecase) Session(ctx context.Context, tok string) (*domain.Session, bool) {
	claims, err := u.tokens.Verify(tok)
	if err != nil {
		u.logger.DebugContext(ctx, "session token rejected", "error", err)
		return nil, false
	}

	student, err := u.identities.ResolveActive(ctx, claims.Email)
	if err != nil {
		u.logger.InfoContext(ctx, "session identity rejected", "email", claims.Email, "reason", domain.Reason(err))
		return nil, false
	}

	return &domain.Session{Email: claims.Email, IssuedAt: claims.IssuedAt, Student: student}, true
}

func (u *AuthUsecase) callbackURL(tok string, reset bool) string {
	q := url.Values{}
	q.Set("token", tok)
	if reset {
		q.Set("reset", "true")
	}
	return u.appURL + CallbackPath + "?" + q.Encode()
}

// rehash upgrades a legacy or outdated hash after a successful login.
func (u *AuthUsecase) rehash(ctx context.Context, student *domain.Student, pw string) {
	hash, err := u.hasher.Hash(pw)
	if err == nil {
		err = u.identities.SavePasswordHash(ctx, student.ID, hash)
	}
	if err != nil {
		u.logger.WarnContext(ctx, "password rehash failed", "student_id", student.ID, "error", err)
		return
	}
	u.logger.InfoContext(ctx, "password hash upgraded", "student_id", student.ID)
}

func observe(flow string, err error) {
	outcome := "success"
	if err != nil {
		outcome = domain.Reason(err)
		if errors.Is(err, domain.ErrUnauthorized) {
			outcome = "unauthorized"
		}
	}
	metrics.AuthAttemptsTotal.WithLabelValues(flow, outcome).Inc()
}
