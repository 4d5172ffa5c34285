package mongodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// An unreserved slot must not carry reserved_by_email at all: the reserve
// filter matches {reserved_by_email: nil}, i.e. a missing or null field.
func TestScheduleDoc_UnreservedOmitsReserver(t *testing.T) {
	raw, err := bson.Marshal(scheduleDoc{
		ID:       primitive.NewObjectID(),
		Name:     "Consultation A",
		Kind:     domain.KindConsultation,
		StartsAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := bson.Raw(raw).LookupErr("reserved_by_email"); err == nil {
		t.Error("reserved_by_email should be omitted for an open slot")
	}
}

func TestScheduleDoc_ToDomain(t *testing.T) {
	email := "aiko@example.com"
	doc := scheduleDoc{
		ID:              primitive.NewObjectID(),
		Name:            "Consultation A",
		Kind:            domain.KindConsultation,
		StartsAt:        time.Date(2026, 11, 2, 10, 0, 0, 0, time.UTC),
		ReservedByEmail: &email,
	}
	s := doc.toDomain()
	if s.ID != doc.ID.Hex() || !s.Date.Equal(doc.StartsAt) {
		t.Errorf("unexpected schedule %+v", s)
	}
	if !s.Reserved() || s.Reservable() {
		t.Error("reserved slot should not be reservable")
	}
}

func TestStudentDoc_ToDomain(t *testing.T) {
	doc := studentDoc{ID: primitive.NewObjectID(), Email: "aiko@example.com", PersonalPage: "p1"}
	s := doc.toDomain()
	if s.ID != doc.ID.Hex() || s.HasPassword() {
		t.Errorf("unexpected student %+v", s)
	}
}

func TestInvalidIDsAreNotFound(t *testing.T) {
	schedules := &ScheduleRepository{}
	if _, err := schedules.Reserve(context.Background(), "not-hex", "Aiko", "aiko@example.com"); !errors.Is(err, domain.ErrScheduleNotFound) {
		t.Errorf("Reserve: expected ErrScheduleNotFound, got %v", err)
	}
	if _, err := schedules.GetByID(context.Background(), "not-hex"); !errors.Is(err, domain.ErrScheduleNotFound) {
		t.Errorf("GetByID: expected ErrScheduleNotFound, got %v", err)
	}
	tasks := &TaskRepository{}
	if err := tasks.SetCompleted(context.Background(), "not-hex", "p1", true); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("SetCompleted: expected ErrTaskNotFound, got %v", err)
	}
}
