package repository

import (
	"context"

	"github.com/ErlanBelekov/student-portal/internal/domain"
)

// StudentRepository is the portal's view of the external student directory.
type StudentRepository interface {
	// FindByEmail returns domain.ErrUserNotFound when no student matches exactly.
	FindByEmail(ctx context.Context, email string) (*domain.Student, error)
	SavePasswordHash(ctx context.Context, studentID, hash string) error
	TouchLastViewed(ctx context.Context, studentID string) error
}
