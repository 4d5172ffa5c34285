// seed inserts a demo student with tasks and schedule slots into the local
// dev database. Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ErlanBelekov/student-portal/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/student-portal/internal/password"
)

const (
	seedEmail    = "seed@test.local"
	seedPage     = "seed-student"
	seedPassword = "password123"
)

var tasks = []string{
	"Read the course handbook",
	"Set up your development environment",
	"Submit week 1 assignment",
	"Watch the recorded kickoff lecture",
	"Book your first consultation",
}

type scheduleSpec struct {
	name       string
	kind       string
	instructor string
	inDays     int
	theme      string
	archive    bool
}

var schedules = []scheduleSpec{
	// Regular lectures
	{"Week 1 lecture", "regular", "Tanaka", 1, "Foundations", false},
	{"Week 2 lecture", "regular", "Tanaka", 8, "Data modelling", false},
	{"Week 3 lecture", "regular", "Suzuki", 15, "Deployment", false},

	// Open consultation slots
	{"Consultation A", "consultation", "Sato", 2, "", false},
	{"Consultation B", "consultation", "Sato", 3, "", false},
	{"Consultation C", "consultation", "Suzuki", 9, "", false},

	// Archived recording
	{"Orientation (recording)", "regular", "Tanaka", -7, "Orientation", true},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		log.Fatal("SECRET_KEY is not set; the seeded password hash depends on it")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	hash, err := password.NewHasher(secret, password.DefaultCost).Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert the demo student
	var studentID string
	err = pool.QueryRow(ctx, `
		INSERT INTO students (name, email, password_hash, personal_page, progress)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = NOW()
		RETURNING id`,
		"Seed Student", seedEmail, hash, seedPage, "Week 1",
	).Scan(&studentID)
	if err != nil {
		log.Fatalf("upsert student: %v", err)
	}
	fmt.Printf("student: %s (%s / %s)\n", studentID, seedEmail, seedPassword)

	for i, name := range tasks {
		if _, err := pool.Exec(ctx, `
			INSERT INTO tasks (name, assigned_to, completed)
			VALUES ($1, $2, $3)`,
			name, seedPage, i == 0,
		); err != nil {
			log.Fatalf("insert task %q: %v", name, err)
		}
	}
	fmt.Printf("tasks: %d\n", len(tasks))

	start := time.Now().Truncate(time.Hour)
	for _, s := range schedules {
		var theme *string
		if s.theme != "" {
			theme = &s.theme
		}
		if _, err := pool.Exec(ctx, `
			INSERT INTO schedules (name, kind, instructor, starts_at, theme, archive, url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			s.name, s.kind, s.instructor, start.AddDate(0, 0, s.inDays), theme, s.archive, "https://meet.example.com/"+seedPage,
		); err != nil {
			log.Fatalf("insert schedule %q: %v", s.name, err)
		}
	}
	fmt.Printf("schedules: %d\n", len(schedules))
}
