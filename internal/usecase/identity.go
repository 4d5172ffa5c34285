package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/repository"
)

// IdentityResolver maps an email to a live student record.
type IdentityResolver struct {
	students repository.StudentRepository
	logger   *slog.Logger
}

func NewIdentityResolver(students repository.StudentRepository, logger *slog.Logger) *IdentityResolver {
	return &IdentityResolver{
		students: students,
		logger:   logger.With("component", "identity_resolver"),
	}
}

// ResolveByEmail returns domain.ErrUserNotFound both when no student matches
// and when the directory call fails; the latter is logged for operators.
func (r *IdentityResolver) ResolveByEmail(ctx context.Context, email string) (*domain.Student, error) {
	s, err := r.students.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			r.logger.ErrorContext(ctx, "directory lookup failed", "email", email, "error", err)
		}
		return nil, domain.ErrUserNotFound
	}
	return s, nil
}

// ResolveActive additionally rejects retired students with domain.ErrUserRetired.
func (r *IdentityResolver) ResolveActive(ctx context.Context, email string) (*domain.Student, error) {
	s, err := r.ResolveByEmail(ctx, email)
	if err != nil {
		r.logger.InfoContext(ctx, "identity not found", "email", email)
		return nil, err
	}
	if s.Retired {
		r.logger.InfoContext(ctx, "identity retired", "email", email, "student_id", s.ID)
		return nil, domain.ErrUserRetired
	}
	return s, nil
}

func (r *IdentityResolver) SavePasswordHash(ctx context.Context, studentID, hash string) error {
	return r.students.SavePasswordHash(ctx, studentID, hash)
}
