package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/student-portal/internal/domain"
)

type ListSchedulesInput struct {
	From time.Time // inclusive; zero = no lower bound
	To   time.Time // exclusive; zero = no upper bound
	Kind domain.ScheduleKind
	// Archive selects archived (true) or live (false) slots; nil = both.
	Archive *bool
}

type TaskRepository interface {
	ListByAssignee(ctx context.Context, personalPage string) ([]*domain.Task, error)
	// SetCompleted returns domain.ErrTaskNotFound unless the task exists and
	// belongs to personalPage.
	SetCompleted(ctx context.Context, taskID, personalPage string, completed bool) error
}

type SubmissionRepository interface {
	// ListByPersonalPage returns newest first.
	ListByPersonalPage(ctx context.Context, personalPage string) ([]*domain.Submission, error)
	Create(ctx context.Context, s *domain.Submission) (*domain.Submission, error)
}

type ScheduleRepository interface {
	// ListUpcoming returns schedules that are not completed, ordered by date.
	ListUpcoming(ctx context.Context, input ListSchedulesInput) ([]*domain.Schedule, error)
	GetByID(ctx context.Context, id string) (*domain.Schedule, error)
	// Reserve claims an unreserved consultation slot. Returns
	// domain.ErrScheduleUnavailable when the slot is taken, completed,
	// archived or not a consultation.
	Reserve(ctx context.Context, id, name, email string) (*domain.Schedule, error)
	ListReservedBy(ctx context.Context, email string) ([]*domain.Schedule, error)
}
