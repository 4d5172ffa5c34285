package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StudentRepository struct {
	pool *pgxpool.Pool
}

func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*domain.Student, error) {
	query := `
		SELECT id, name, email, retired, COALESCE(password_hash, ''),
		       personal_page, progress, last_viewed_at
		FROM students
		WHERE email = $1`

	return scanStudent(r.pool.QueryRow(ctx, query, email))
}

func (r *StudentRepository) SavePasswordHash(ctx context.Context, studentID, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		studentID, hash,
	)
	if err != nil {
		return fmt.Errorf("save password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *StudentRepository) TouchLastViewed(ctx context.Context, studentID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET last_viewed_at = NOW() WHERE id = $1`,
		studentID,
	)
	if err != nil {
		return fmt.Errorf("touch last viewed: %w", err)
	}
	return nil
}

func scanStudent(row pgx.Row) (*domain.Student, error) {
	var s domain.Student
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Retired, &s.PasswordHash,
		&s.PersonalPage, &s.Progress, &s.LastViewedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan student: %w", err)
	}
	return &s, nil
}
