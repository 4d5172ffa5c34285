package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/email"
	"github.com/ErlanBelekov/student-portal/internal/metrics"
	"github.com/ErlanBelekov/student-portal/internal/repository"
)

var ErrInvalidSubmission = errors.New("submission needs a name and an http(s) url")

type PortalUsecase struct {
	students    repository.StudentRepository
	tasks       repository.TaskRepository
	submissions repository.SubmissionRepository
	schedules   repository.ScheduleRepository
	email       email.Sender
	ownerEmail  string
	logger      *slog.Logger
}

func NewPortalUsecase(
	students repository.StudentRepository,
	tasks repository.TaskRepository,
	submissions repository.SubmissionRepository,
	schedules repository.ScheduleRepository,
	emailSender email.Sender,
	ownerEmail string,
	logger *slog.Logger,
) *PortalUsecase {
	return &PortalUsecase{
		students:    students,
		tasks:       tasks,
		submissions: submissions,
		schedules:   schedules,
		email:       emailSender,
		ownerEmail:  ownerEmail,
		logger:      logger.With("component", "portal_usecase"),
	}
}

// ListTasks returns the tasks assigned to student's personal page. A student
// without a personal page has no tasks.
func (u *PortalUsecase) ListTasks(ctx context.Context, student *domain.Student) ([]*domain.Task, error) {
	if student.PersonalPage == "" {
		return []*domain.Task{}, nil
	}
	tasks, err := u.tasks.ListByAssignee(ctx, student.PersonalPage)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// SetTaskCompleted only touches tasks assigned to student.
func (u *PortalUsecase) SetTaskCompleted(ctx context.Context, student *domain.Student, taskID string, completed bool) error {
	if student.PersonalPage == "" {
		return domain.ErrTaskNotFound
	}
	if err := u.tasks.SetCompleted(ctx, taskID, student.PersonalPage, completed); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		return fmt.Errorf("set task completed: %w", err)
	}
	return nil
}

func (u *PortalUsecase) ListSubmissions(ctx context.Context, student *domain.Student) ([]*domain.Submission, error) {
	if student.PersonalPage == "" {
		return []*domain.Submission{}, nil
	}
	subs, err := u.submissions.ListByPersonalPage(ctx, student.PersonalPage)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

type AddSubmissionInput struct {
	Name string
	URL  string
}

func (u *PortalUsecase) AddSubmission(ctx context.Context, student *domain.Student, input AddSubmissionInput) (*domain.Submission, error) {
	name := strings.TrimSpace(input.Name)
	link := strings.TrimSpace(input.URL)
	if name == "" || !(strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")) {
		return nil, ErrInvalidSubmission
	}

	sub, err := u.submissions.Create(ctx, &domain.Submission{
		Name:         name,
		PersonalPage: student.PersonalPage,
		URL:          link,
	})
	if err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	u.logger.InfoContext(ctx, "submission added", "student_id", student.ID, "submission_id", sub.ID)
	return sub, nil
}

// ScheduleFilter mirrors the schedule query parameters. Year and Month only
// apply together; Type is "regular", "consultation" or "archive", anything
// else means no type filter.
type ScheduleFilter struct {
	Year  int
	Month int
	Type  string
}

func (f ScheduleFilter) input() repository.ListSchedulesInput {
	var in repository.ListSchedulesInput
	if f.Year > 0 && f.Month >= 1 && f.Month <= 12 {
		in.From = time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
		in.To = in.From.AddDate(0, 1, 0)
	}
	switch f.Type {
	case string(domain.KindRegular), string(domain.KindConsultation):
		in.Kind = domain.ScheduleKind(f.Type)
		live := false
		in.Archive = &live
	case "archive":
		archived := true
		in.Archive = &archived
	}
	return in
}

func (u *PortalUsecase) ListSchedules(ctx context.Context, filter ScheduleFilter) ([]*domain.Schedule, error) {
	schedules, err := u.schedules.ListUpcoming(ctx, filter.input())
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return schedules, nil
}

// Reserve claims a consultation slot for student, then notifies the student
// and the owner. Notification failures are logged only.
func (u *PortalUsecase) Reserve(ctx context.Context, student *domain.Student, scheduleID string) (*domain.Schedule, error) {
	schedule, err := u.schedules.Reserve(ctx, scheduleID, student.Name, student.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrScheduleNotFound):
			metrics.ReservationsTotal.WithLabelValues("not_found").Inc()
			return nil, err
		case errors.Is(err, domain.ErrScheduleUnavailable):
			metrics.ReservationsTotal.WithLabelValues("unavailable").Inc()
			return nil, err
		}
		metrics.ReservationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("reserve schedule: %w", err)
	}
	metrics.ReservationsTotal.WithLabelValues("reserved").Inc()
	u.logger.InfoContext(ctx, "consultation reserved", "student_id", student.ID, "schedule_id", schedule.ID)

	r := email.Reservation{
		StudentName:  student.Name,
		StudentEmail: student.Email,
		ScheduleName: schedule.Name,
		Date:         schedule.Date,
		Instructor:   schedule.Instructor,
	}
	u.notify(ctx, student.Email, email.ReservationConfirmation(r))
	if u.ownerEmail != "" {
		u.notify(ctx, u.ownerEmail, email.ReservationNotice(r))
	}
	return schedule, nil
}

func (u *PortalUsecase) ListReservations(ctx context.Context, student *domain.Student) ([]*domain.Schedule, error) {
	schedules, err := u.schedules.ListReservedBy(ctx, student.Email)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return schedules, nil
}

// TouchLastViewed records a dashboard visit. Failures are logged only.
func (u *PortalUsecase) TouchLastViewed(ctx context.Context, student *domain.Student) {
	if err := u.students.TouchLastViewed(ctx, student.ID); err != nil {
		u.logger.WarnContext(ctx, "touch last viewed failed", "student_id", student.ID, "error", err)
	}
}

func (u *PortalUsecase) notify(ctx context.Context, to string, msg email.Message) {
	if err := u.email.Send(ctx, to, msg); err != nil {
		metrics.EmailFailuresTotal.WithLabelValues(string(msg.Kind)).Inc()
		u.logger.WarnContext(ctx, "notification failed", "kind", msg.Kind, "to", to, "error", err)
	}
}
