package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/transport/http/middleware"
	"github.com/ErlanBelekov/student-portal/internal/usecase"
	"github.com/gin-gonic/gin"
)

type portalUsecaser interface {
	ListTasks(ctx context.Context, student *domain.Student) ([]*domain.Task, error)
	SetTaskCompleted(ctx context.Context, student *domain.Student, taskID string, completed bool) error
	ListSubmissions(ctx context.Context, student *domain.Student) ([]*domain.Submission, error)
	AddSubmission(ctx context.Context, student *domain.Student, input usecase.AddSubmissionInput) (*domain.Submission, error)
	ListSchedules(ctx context.Context, filter usecase.ScheduleFilter) ([]*domain.Schedule, error)
	Reserve(ctx context.Context, student *domain.Student, scheduleID string) (*domain.Schedule, error)
	ListReservations(ctx context.Context, student *domain.Student) ([]*domain.Schedule, error)
	TouchLastViewed(ctx context.Context, student *domain.Student)
}

// PortalHandler serves the JSON API behind the dashboard. Every route runs
// after middleware.RequireSession.
type PortalHandler struct {
	portal portalUsecaser
	logger *slog.Logger
}

func NewPortalHandler(portal portalUsecaser, logger *slog.Logger) *PortalHandler {
	return &PortalHandler{portal: portal, logger: logger.With("component", "portal_handler")}
}

type taskResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

type submissionResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type scheduleResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	URL        *string   `json:"url,omitempty"`
	Password   *string   `json:"password,omitempty"`
	Instructor *string   `json:"instructor,omitempty"`
	Date       time.Time `json:"date"`
	Theme      *string   `json:"theme,omitempty"`
	IsArchive  bool      `json:"is_archive"`
	Completed  bool      `json:"completed"`
	Reserved   bool      `json:"reserved"`
	// ReservedByMe is only set on the requesting student's own slots.
	ReservedByMe bool `json:"reserved_by_me"`
}

func toTaskResponses(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse{ID: t.ID, Name: t.Name, Completed: t.Completed})
	}
	return out
}

func toSubmissionResponse(s *domain.Submission) submissionResponse {
	return submissionResponse{ID: s.ID, Name: s.Name, URL: s.URL, SubmittedAt: s.SubmittedAt}
}

func toSubmissionResponses(subs []*domain.Submission) []submissionResponse {
	out := make([]submissionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, toSubmissionResponse(s))
	}
	return out
}

// toScheduleResponses hides other students' identities; viewerEmail only
// marks which reserved slots belong to the viewer.
func toScheduleResponses(schedules []*domain.Schedule, viewerEmail string) []scheduleResponse {
	out := make([]scheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, scheduleResponse{
			ID:           s.ID,
			Name:         s.Name,
			Type:         string(s.Kind),
			URL:          s.URL,
			Password:     s.Password,
			Instructor:   s.Instructor,
			Date:         s.Date,
			Theme:        s.Theme,
			IsArchive:    s.Archive,
			Completed:    s.Completed,
			Reserved:     s.Reserved(),
			ReservedByMe: s.Reserved() && *s.ReservedByEmail == viewerEmail,
		})
	}
	return out
}

// GET /api/tasks
func (h *PortalHandler) ListTasks(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	tasks, err := h.portal.ListTasks(c.Request.Context(), sess.Student)
	if err != nil {
		h.internalError(c, "list tasks", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": toTaskResponses(tasks)})
}

type setTaskRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// PATCH /api/tasks/:id
func (h *PortalHandler) SetTaskCompleted(c *gin.Context) {
	var req setTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	sess, _ := middleware.CurrentSession(c)
	err := h.portal.SetTaskCompleted(c.Request.Context(), sess.Student, c.Param("id"), *req.Completed)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": errTaskNotFound})
			return
		}
		h.internalError(c, "set task completed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/submissions
func (h *PortalHandler) ListSubmissions(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	subs, err := h.portal.ListSubmissions(c.Request.Context(), sess.Student)
	if err != nil {
		h.internalError(c, "list submissions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submissions": toSubmissionResponses(subs)})
}

type addSubmissionRequest struct {
	Name string `json:"name" binding:"required"`
	URL  string `json:"url"  binding:"required"`
}

// POST /api/submissions
func (h *PortalHandler) AddSubmission(c *gin.Context) {
	var req addSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errInvalidSubmission})
		return
	}

	sess, _ := middleware.CurrentSession(c)
	sub, err := h.portal.AddSubmission(c.Request.Context(), sess.Student, usecase.AddSubmissionInput{Name: req.Name, URL: req.URL})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidSubmission) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errInvalidSubmission})
			return
		}
		h.internalError(c, "add submission", err)
		return
	}
	c.JSON(http.StatusCreated, toSubmissionResponse(sub))
}

// GET /api/schedules?year=&month=&type=
func (h *PortalHandler) ListSchedules(c *gin.Context) {
	filter, ok := scheduleFilter(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidFilter})
		return
	}

	sess, _ := middleware.CurrentSession(c)
	schedules, err := h.portal.ListSchedules(c.Request.Context(), filter)
	if err != nil {
		h.internalError(c, "list schedules", err)
		return
	}
	c.JSON(http.StatusOK, toScheduleResponses(schedules, sess.Email))
}

func scheduleFilter(c *gin.Context) (usecase.ScheduleFilter, bool) {
	f := usecase.ScheduleFilter{Type: c.Query("type")}
	year, month := c.Query("year"), c.Query("month")
	if year == "" || month == "" {
		return f, true
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return f, false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return f, false
	}
	f.Year, f.Month = y, m
	return f, true
}

type reserveRequest struct {
	ScheduleID string `json:"schedule_id" binding:"required"`
}

// POST /api/consultation/reserve
func (h *PortalHandler) Reserve(c *gin.Context) {
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": errScheduleIDRequired})
		return
	}

	sess, _ := middleware.CurrentSession(c)
	_, err := h.portal.Reserve(c.Request.Context(), sess.Student, req.ScheduleID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, domain.ErrScheduleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": errScheduleNotFound})
	case errors.Is(err, domain.ErrScheduleUnavailable):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": errScheduleTaken})
	default:
		h.internalError(c, "reserve consultation", err)
	}
}

// GET /api/consultation/user-reservations
func (h *PortalHandler) UserReservations(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	schedules, err := h.portal.ListReservations(c.Request.Context(), sess.Student)
	if err != nil {
		h.internalError(c, "list reservations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": toScheduleResponses(schedules, sess.Email)})
}

func (h *PortalHandler) internalError(c *gin.Context, op string, err error) {
	h.logger.ErrorContext(c.Request.Context(), op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": errInternalServer})
}
