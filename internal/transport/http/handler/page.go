package handler

import (
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/guard"
	"github.com/ErlanBelekov/student-portal/internal/session"
	"github.com/ErlanBelekov/student-portal/internal/transport/http/middleware"
	"github.com/ErlanBelekov/student-portal/internal/usecase"
	"github.com/gin-gonic/gin"
)

// PageHandler renders the guarded pages as JSON page models. Routes run
// behind middleware.Guard, which only checked cookie presence, so every
// dashboard page verifies the session itself.
type PageHandler struct {
	sessions *session.Store
	resolver middleware.SessionResolver
	portal   portalUsecaser
	logger   *slog.Logger
}

func NewPageHandler(sessions *session.Store, resolver middleware.SessionResolver, portal portalUsecaser, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		sessions: sessions,
		resolver: resolver,
		portal:   portal,
		logger:   logger.With("component", "page_handler"),
	}
}

type pageUser struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Progress    string `json:"progress,omitempty"`
	HasPassword bool   `json:"has_password"`
}

func toPageUser(s *domain.Student) pageUser {
	return pageUser{Name: s.Name, Email: s.Email, Progress: s.Progress, HasPassword: s.HasPassword()}
}

// GET / and /login
func (h *PageHandler) Login(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":            "login",
		"forced_logout":   c.Query("forced_logout") == "true",
		"session_invalid": c.Query("session_invalid") == "true",
		"error":           c.Query("error"),
	})
}

// GET /login/check-email
func (h *PageHandler) CheckEmail(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"page": "check-email"})
}

// GET /dashboard
func (h *PageHandler) Dashboard(c *gin.Context) {
	if _, ok := h.verify(c); !ok {
		return
	}
	c.Redirect(http.StatusFound, guard.DefaultLanding)
}

// GET /dashboard/schedule
func (h *PageHandler) Schedule(c *gin.Context) {
	sess, ok := h.verify(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	schedules, err := h.portal.ListSchedules(ctx, usecase.ScheduleFilter{})
	if err != nil {
		h.logger.ErrorContext(ctx, "schedule page: list schedules", "error", err)
		schedules = nil
	}
	reservations, err := h.portal.ListReservations(ctx, sess.Student)
	if err != nil {
		h.logger.ErrorContext(ctx, "schedule page: list reservations", "error", err)
		reservations = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"page":         "schedule",
		"user":         toPageUser(sess.Student),
		"schedules":    toScheduleResponses(schedules, sess.Email),
		"reservations": toScheduleResponses(reservations, sess.Email),
	})
}

// GET /dashboard/task
func (h *PageHandler) Task(c *gin.Context) {
	sess, ok := h.verify(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	tasks, err := h.portal.ListTasks(ctx, sess.Student)
	if err != nil {
		h.logger.ErrorContext(ctx, "task page: list tasks", "error", err)
		tasks = nil
	}
	subs, err := h.portal.ListSubmissions(ctx, sess.Student)
	if err != nil {
		h.logger.ErrorContext(ctx, "task page: list submissions", "error", err)
		subs = nil
	}

	c.JSON(http.StatusOK, gin.H{
		"page":        "task",
		"user":        toPageUser(sess.Student),
		"tasks":       toTaskResponses(tasks),
		"submissions": toSubmissionResponses(subs),
	})
}

// GET /dashboard/setup-password
func (h *PageHandler) SetupPassword(c *gin.Context) {
	sess, ok := h.verify(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": "setup-password", "user": toPageUser(sess.Student)})
}

// verify resolves the session for a dashboard page. A cookie that does not
// verify is wiped and the student is sent back to /login.
func (h *PageHandler) verify(c *gin.Context) (*domain.Session, bool) {
	sess, ok := middleware.LoadSession(c, h.sessions, h.resolver)
	if !ok {
		h.sessions.Clear(c)
		c.Redirect(http.StatusFound, sessionInvalidPath)
		return nil, false
	}
	h.portal.TouchLastViewed(c.Request.Context(), sess.Student)
	return sess, true
}
