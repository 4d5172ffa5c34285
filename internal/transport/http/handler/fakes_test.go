package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/session"
	"github.com/ErlanBelekov/student-portal/internal/usecase"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	requestLogin      func(ctx context.Context, email string, reset bool) (usecase.LoginLink, error)
	handleCallback    func(ctx context.Context, tok string, reset bool) (usecase.CallbackResult, error)
	loginWithPassword func(ctx context.Context, email, password string) (string, error)
	setupPassword     func(ctx context.Context, sess *domain.Session, password string) error
	session           func(ctx context.Context, tok string) (*domain.Session, bool)
}

func (f *fakeAuthUsecase) RequestLogin(ctx context.Context, email string, reset bool) (usecase.LoginLink, error) {
	return f.requestLogin(ctx, email, reset)
}

func (f *fakeAuthUsecase) HandleCallback(ctx context.Context, tok string, reset bool) (usecase.CallbackResult, error) {
	return f.handleCallback(ctx, tok, reset)
}

func (f *fakeAuthUsecase) LoginWithPassword(ctx context.Context, email, password string) (string, error) {
	return f.loginWithPassword(ctx, email, password)
}

func (f *fakeAuthUsecase) SetupPassword(ctx context.Context, sess *domain.Session, password string) error {
	return f.setupPassword(ctx, sess, password)
}

func (f *fakeAuthUsecase) Session(ctx context.Context, tok string) (*domain.Session, bool) {
	if f.session == nil {
		return validSession(tok)
	}
	return f.session(ctx, tok)
}

type fakePortalUsecase struct {
	listTasks        func(ctx context.Context, student *domain.Student) ([]*domain.Task, error)
	setTaskCompleted func(ctx context.Context, student *domain.Student, taskID string, completed bool) error
	listSubmissions  func(ctx context.Context, student *domain.Student) ([]*domain.Submission, error)
	addSubmission    func(ctx context.Context, student *domain.Student, input usecase.AddSubmissionInput) (*domain.Submission, error)
	listSchedules    func(ctx context.Context, filter usecase.ScheduleFilter) ([]*domain.Schedule, error)
	reserve          func(ctx context.Context, student *domain.Student, scheduleID string) (*domain.Schedule, error)
	listReservations func(ctx context.Context, student *domain.Student) ([]*domain.Schedule, error)
	touched          int
}

func (f *fakePortalUsecase) ListTasks(ctx context.Context, student *domain.Student) ([]*domain.Task, error) {
	return f.listTasks(ctx, student)
}

func (f *fakePortalUsecase) SetTaskCompleted(ctx context.Context, student *domain.Student, taskID string, completed bool) error {
	return f.setTaskCompleted(ctx, student, taskID, completed)
}

func (f *fakePortalUsecase) ListSubmissions(ctx context.Context, student *domain.Student) ([]*domain.Submission, error) {
	return f.listSubmissions(ctx, student)
}

func (f *fakePortalUsecase) AddSubmission(ctx context.Context, student *domain.Student, input usecase.AddSubmissionInput) (*domain.Submission, error) {
	return f.addSubmission(ctx, student, input)
}

func (f *fakePortalUsecase) ListSchedules(ctx context.Context, filter usecase.ScheduleFilter) ([]*domain.Schedule, error) {
	return f.listSchedules(ctx, filter)
}

func (f *fakePortalUsecase) Reserve(ctx context.Context, student *domain.Student, scheduleID string) (*domain.Schedule, error) {
	return f.reserve(ctx, student, scheduleID)
}

func (f *fakePortalUsecase) ListReservations(ctx context.Context, student *domain.Student) ([]*domain.Schedule, error) {
	return f.listReservations(ctx, student)
}

func (f *fakePortalUsecase) TouchLastViewed(_ context.Context, _ *domain.Student) {
	f.touched++
}

// ---- helpers ----

const goodToken = "good-token"

func testStudent() *domain.Student {
	return &domain.Student{ID: "stu-1", Name: "Aiko", Email: "aiko@example.com", PersonalPage: "page-1"}
}

// validSession accepts only goodToken.
func validSession(tok string) (*domain.Session, bool) {
	if tok != goodToken {
		return nil, false
	}
	return &domain.Session{Email: "aiko@example.com", Student: testStudent()}, true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore() *session.Store {
	return session.NewStore(session.Options{})
}

func jsonRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: session.TokenCookie, Value: goodToken})
	return req
}

// responseCookie returns the first Set-Cookie for name.
func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
