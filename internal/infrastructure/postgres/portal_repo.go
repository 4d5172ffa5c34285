package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) ListByAssignee(ctx context.Context, personalPage string) ([]*domain.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, assigned_to, completed
		FROM tasks
		WHERE assigned_to = $1
		ORDER BY created_at ASC, id ASC`,
		personalPage,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Name, &t.AssignedTo, &t.Completed); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) SetCompleted(ctx context.Context, taskID, personalPage string, completed bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks SET completed = $3, updated_at = NOW()
		WHERE id = $1 AND assigned_to = $2`,
		taskID, personalPage, completed,
	)
	if err != nil {
		return fmt.Errorf("set task completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

func (r *SubmissionRepository) ListByPersonalPage(ctx context.Context, personalPage string) ([]*domain.Submission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, personal_page, url, created_at
		FROM submissions
		WHERE personal_page = $1
		ORDER BY created_at DESC, id DESC`,
		personalPage,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.Submission
	for rows.Next() {
		var s domain.Submission
		if err := rows.Scan(&s.ID, &s.Name, &s.PersonalPage, &s.URL, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

func (r *SubmissionRepository) Create(ctx context.Context, s *domain.Submission) (*domain.Submission, error) {
	var out domain.Submission
	err := r.pool.QueryRow(ctx, `
		INSERT INTO submissions (name, personal_page, url)
		VALUES ($1, $2, $3)
		RETURNING id, name, personal_page, url, created_at`,
		s.Name, s.PersonalPage, s.URL,
	).Scan(&out.ID, &out.Name, &out.PersonalPage, &out.URL, &out.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return &out, nil
}

type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `id, name, kind, url, password, instructor, starts_at, theme,
		       archive, completed, reserved_by_name, reserved_by_email`

func (r *ScheduleRepository) ListUpcoming(ctx context.Context, input repository.ListSchedulesInput) ([]*domain.Schedule, error) {
	args := []any{}
	where := []string{"completed = FALSE"}

	if !input.From.IsZero() {
		args = append(args, input.From)
		where = append(where, fmt.Sprintf("starts_at >= $%d", len(args)))
	}
	if !input.To.IsZero() {
		args = append(args, input.To)
		where = append(where, fmt.Sprintf("starts_at < $%d", len(args)))
	}
	if input.Kind != "" {
		args = append(args, input.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if input.Archive != nil {
		args = append(args, *input.Archive)
		where = append(where, fmt.Sprintf("archive = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM schedules
		WHERE %s
		ORDER BY starts_at ASC, id ASC`, scheduleColumns, strings.Join(where, " AND "))

	return r.query(ctx, query, args...)
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	return scanSchedule(r.pool.QueryRow(ctx, query, id))
}

// Reserve is a single conditional UPDATE so two students racing for one slot
// cannot both win.
func (r *ScheduleRepository) Reserve(ctx context.Context, id, name, email string) (*domain.Schedule, error) {
	query := `
		UPDATE schedules
		SET reserved_by_name = $2, reserved_by_email = $3, reserved_at = NOW(), updated_at = NOW()
		WHERE id = $1
		  AND kind = 'consultation'
		  AND completed = FALSE
		  AND archive = FALSE
		  AND reserved_by_email IS NULL
		RETURNING ` + scheduleColumns

	s, err := scanSchedule(r.pool.QueryRow(ctx, query, id, name, email))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, domain.ErrScheduleNotFound) {
		return nil, err
	}

	// Nothing updated: tell "no such slot" apart from "slot not available".
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrScheduleUnavailable
}

func (r *ScheduleRepository) ListReservedBy(ctx context.Context, email string) ([]*domain.Schedule, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE reserved_by_email = $1
		ORDER BY starts_at ASC, id ASC`
	return r.query(ctx, query, email)
}

func (r *ScheduleRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Schedule, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var out []*domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var s domain.Schedule
	err := row.Scan(&s.ID, &s.Name, &s.Kind, &s.URL, &s.Password, &s.Instructor,
		&s.Date, &s.Theme, &s.Archive, &s.Completed, &s.ReservedByName, &s.ReservedByEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("scan schedule: %w", err)
	}
	return &s, nil
}
