package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/email"
	"github.com/ErlanBelekov/student-portal/internal/password"
	"github.com/ErlanBelekov/student-portal/internal/repository"
	"github.com/ErlanBelekov/student-portal/internal/token"
)

// ---- fakes ----

type fakeStudentRepo struct {
	findByEmail      func(ctx context.Context, email string) (*domain.Student, error)
	savePasswordHash func(ctx context.Context, studentID, hash string) error
	touchLastViewed  func(ctx context.Context, studentID string) error
}

func (r *fakeStudentRepo) FindByEmail(ctx context.Context, email string) (*domain.Student, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeStudentRepo) SavePasswordHash(ctx context.Context, studentID, hash string) error {
	return r.savePasswordHash(ctx, studentID, hash)
}

func (r *fakeStudentRepo) TouchLastViewed(ctx context.Context, studentID string) error {
	return r.touchLastViewed(ctx, studentID)
}

// memStudents is a one-table directory backed by a map keyed on email.
func memStudents(students ...*domain.Student) *fakeStudentRepo {
	byEmail := map[string]*domain.Student{}
	for _, s := range students {
		byEmail[s.Email] = s
	}
	return &fakeStudentRepo{
		findByEmail: func(_ context.Context, email string) (*domain.Student, error) {
			s, ok := byEmail[email]
			if !ok {
				return nil, domain.ErrUserNotFound
			}
			cp := *s
			return &cp, nil
		},
		savePasswordHash: func(_ context.Context, studentID, hash string) error {
			for _, s := range byEmail {
				if s.ID == studentID {
					s.PasswordHash = hash
					return nil
				}
			}
			return domain.ErrUserNotFound
		},
		touchLastViewed: func(_ context.Context, studentID string) error {
			now := time.Now()
			for _, s := range byEmail {
				if s.ID == studentID {
					s.LastViewedAt = &now
					return nil
				}
			}
			return domain.ErrUserNotFound
		},
	}
}

type sentEmail struct {
	to   string
	kind email.Kind
	body string
}

type fakeEmailSender struct {
	send func(ctx context.Context, to string, msg email.Message) error
	sent []sentEmail
}

func (s *fakeEmailSender) Send(ctx context.Context, to string, msg email.Message) error {
	s.sent = append(s.sent, sentEmail{to: to, kind: msg.Kind, body: msg.HTML})
	if s.send == nil {
		return nil
	}
	return s.send(ctx, to, msg)
}

// countingCodec wraps a real codec and counts issued tokens.
type countingCodec struct {
	*token.Codec
	generated int
}

func (c *countingCodec) Generate(email string) (string, error) {
	c.generated++
	return c.Codec.Generate(email)
}

// countingHasher wraps a real hasher and counts each operation.
type countingHasher struct {
	*password.Hasher
	hashed   int
	compared int
}

func (h *countingHasher) Hash(pw string) (string, error) {
	h.hashed++
	return h.Hasher.Hash(pw)
}

func (h *countingHasher) Compare(pw, stored string) bool {
	h.compared++
	return h.Hasher.Compare(pw, stored)
}

type fakeTaskRepo struct {
	listByAssignee func(ctx context.Context, personalPage string) ([]*domain.Task, error)
	setCompleted   func(ctx context.Context, taskID, personalPage string, completed bool) error
}

func (r *fakeTaskRepo) ListByAssignee(ctx context.Context, personalPage string) ([]*domain.Task, error) {
	return r.listByAssignee(ctx, personalPage)
}

func (r *fakeTaskRepo) SetCompleted(ctx context.Context, taskID, personalPage string, completed bool) error {
	return r.setCompleted(ctx, taskID, personalPage, completed)
}

type fakeSubmissionRepo struct {
	listByPersonalPage func(ctx context.Context, personalPage string) ([]*domain.Submission, error)
	create             func(ctx context.Context, s *domain.Submission) (*domain.Submission, error)
}

func (r *fakeSubmissionRepo) ListByPersonalPage(ctx context.Context, personalPage string) ([]*domain.Submission, error) {
	return r.listByPersonalPage(ctx, personalPage)
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, s *domain.Submission) (*domain.Submission, error) {
	return r.create(ctx, s)
}

type fakeScheduleRepo struct {
	listUpcoming   func(ctx context.Context, input repository.ListSchedulesInput) ([]*domain.Schedule, error)
	getByID        func(ctx context.Context, id string) (*domain.Schedule, error)
	reserve        func(ctx context.Context, id, name, email string) (*domain.Schedule, error)
	listReservedBy func(ctx context.Context, email string) ([]*domain.Schedule, error)
}

func (r *fakeScheduleRepo) ListUpcoming(ctx context.Context, input repository.ListSchedulesInput) ([]*domain.Schedule, error) {
	return r.listUpcoming(ctx, input)
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	return r.getByID(ctx, id)
}

func (r *fakeScheduleRepo) Reserve(ctx context.Context, id, name, email string) (*domain.Schedule, error) {
	return r.reserve(ctx, id, name, email)
}

func (r *fakeScheduleRepo) ListReservedBy(ctx context.Context, email string) ([]*domain.Schedule, error) {
	return r.listReservedBy(ctx, email)
}

// ---- helpers ----

const (
	testSecret = "test-secret-key-at-least-32-characters"
	testAppURL = "http://localhost:8080"
)

var errDirectoryDown = errors.New("directory unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
