package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/guard"
	"github.com/ErlanBelekov/student-portal/internal/session"
	"github.com/ErlanBelekov/student-portal/internal/transport/http/middleware"
	"github.com/ErlanBelekov/student-portal/internal/usecase"
	"github.com/gin-gonic/gin"
)

const (
	SetupPasswordPath  = "/dashboard/setup-password"
	sessionInvalidPath = "/login?session_invalid=true"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	RequestLogin(ctx context.Context, email string, reset bool) (usecase.LoginLink, error)
	HandleCallback(ctx context.Context, tok string, reset bool) (usecase.CallbackResult, error)
	LoginWithPassword(ctx context.Context, email, password string) (string, error)
	SetupPassword(ctx context.Context, sess *domain.Session, password string) error
	Session(ctx context.Context, tok string) (*domain.Session, bool)
}

type AuthHandler struct {
	authUsecase authUsecaser
	sessions    *session.Store
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, sessions *session.Store, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		sessions:    sessions,
		logger:      logger.With("component", "auth_handler"),
	}
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

type passwordLoginRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type setupPasswordRequest struct {
	Password string `json:"password"`
}

type sessionUser struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// POST /api/auth/login
// Always reports success so the response says nothing about which emails
// belong to students.
func (h *AuthHandler) Login(c *gin.Context) {
	h.requestLink(c, false)
}

// POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	h.requestLink(c, true)
}

func (h *AuthHandler) requestLink(c *gin.Context, reset bool) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errEmailRequired})
		return
	}

	if _, err := h.authUsecase.RequestLogin(c.Request.Context(), strings.TrimSpace(req.Email), reset); err != nil {
		level := slog.LevelInfo
		if domain.Reason(err) == domain.ReasonServerError {
			level = slog.LevelError
		}
		h.logger.Log(c.Request.Context(), level, "request login link", "reset", reset, "reason", domain.Reason(err), "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/auth/password-login
func (h *AuthHandler) PasswordLogin(c *gin.Context) {
	var req passwordLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errCredentialsMissing})
		return
	}

	tok, err := h.authUsecase.LoginWithPassword(c.Request.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		reason := domain.Reason(err)
		if reason == domain.ReasonServerError {
			h.logger.ErrorContext(c.Request.Context(), "password login", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": reason})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": reason})
		return
	}

	h.sessions.Set(c, tok)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/auth/setup-password (RequireSession)
func (h *AuthHandler) SetupPassword(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": errUnauthorized})
		return
	}

	var req setupPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errInvalidBody})
		return
	}

	err := h.authUsecase.SetupPassword(c.Request.Context(), sess, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, domain.ErrPasswordTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errPasswordTooShort})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": errUnauthorized})
	default:
		h.logger.ErrorContext(c.Request.Context(), "setup password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errInternalServer})
	}
}

// GET /api/auth/callback?token=<tok>[&reset=true]
// Sets the session cookie and redirects according to the resulting state.
// Failures land on /login with an error reason.
func (h *AuthHandler) Callback(c *gin.Context) {
	tok := c.Query("token")
	if tok == "" {
		c.Redirect(http.StatusFound, loginWithError(domain.ReasonInvalidToken))
		return
	}
	reset := c.Query("reset") == "true"

	res, err := h.authUsecase.HandleCallback(c.Request.Context(), tok, reset)
	if err != nil {
		reason := domain.Reason(err)
		if reason == domain.ReasonServerError {
			h.logger.ErrorContext(c.Request.Context(), "magic link callback", "error", err)
		}
		c.Redirect(http.StatusFound, loginWithError(reason))
		return
	}

	h.sessions.Set(c, res.Token)
	h.sessions.ClearRedirectCount(c)
	if res.State == domain.StateAuthenticatedNeedsPassword {
		c.Redirect(http.StatusFound, SetupPasswordPath)
		return
	}
	c.Redirect(http.StatusFound, guard.DefaultLanding)
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/auth/force-logout
func (h *AuthHandler) ForceLogout(c *gin.Context) {
	h.sessions.ForceClear(c)
	c.Redirect(http.StatusFound, guard.ForcedLogoutPath)
}

// GET /api/auth/clear-cookies
func (h *AuthHandler) ClearCookies(c *gin.Context) {
	h.sessions.ForceClear(c)
	c.Redirect(http.StatusFound, guard.LoginPath)
}

// GET /api/auth/check-session
func (h *AuthHandler) CheckSession(c *gin.Context) {
	sess, ok := middleware.LoadSession(c, h.sessions, h.authUsecase)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"valid": false, "user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  sessionUser{Email: sess.Email, Name: sess.Student.Name},
	})
}

// GET /api/auth/validate-session?redirect=<path>
// Valid sessions continue to redirect (a local path); invalid ones are wiped.
func (h *AuthHandler) ValidateSession(c *gin.Context) {
	if _, ok := middleware.LoadSession(c, h.sessions, h.authUsecase); !ok {
		h.sessions.ForceClear(c)
		c.Redirect(http.StatusFound, sessionInvalidPath)
		return
	}
	c.Redirect(http.StatusFound, localPath(c.Query("redirect")))
}

func loginWithError(reason string) string {
	return guard.LoginPath + "?" + url.Values{"error": {reason}}.Encode()
}

// localPath only allows same-origin absolute paths.
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return guard.DefaultLanding
	}
	return p
}
