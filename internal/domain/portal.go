package domain

import (
	"errors"
	"time"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrScheduleNotFound    = errors.New("schedule not found")
	ErrScheduleUnavailable = errors.New("schedule cannot be reserved")
)

type Task struct {
	ID         string
	Name       string
	AssignedTo string // personal page key of the owning student
	Completed  bool
}

type Submission struct {
	ID           string
	Name         string
	PersonalPage string
	URL          string
	SubmittedAt  time.Time
}

type ScheduleKind string

const (
	KindRegular      ScheduleKind = "regular"
	KindConsultation ScheduleKind = "consultation"
)

type Schedule struct {
	ID              string
	Name            string
	Kind            ScheduleKind
	URL             *string
	Password        *string
	Instructor      *string
	Date            time.Time
	Theme           *string
	Archive         bool
	Completed       bool
	ReservedByName  *string
	ReservedByEmail *string
}

func (s *Schedule) Reserved() bool {
	return s.ReservedByEmail != nil && *s.ReservedByEmail != ""
}

// Reservable reports whether a student may claim this slot.
func (s *Schedule) Reservable() bool {
	return s.Kind == KindConsultation && !s.Completed && !s.Archive && !s.Reserved()
}
