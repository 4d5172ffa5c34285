package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"github.com/ErlanBelekov/student-portal/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type taskDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Name       string             `bson:"name"`
	AssignedTo string             `bson:"assigned_to"`
	Completed  bool               `bson:"completed"`
	CreatedAt  time.Time          `bson:"created_at"`
}

type submissionDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	PersonalPage string             `bson:"personal_page"`
	URL          string             `bson:"url"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type scheduleDoc struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty"`
	Name            string              `bson:"name"`
	Kind            domain.ScheduleKind `bson:"kind"`
	URL             *string             `bson:"url,omitempty"`
	Password        *string             `bson:"password,omitempty"`
	Instructor      *string             `bson:"instructor,omitempty"`
	StartsAt        time.Time           `bson:"starts_at"`
	Theme           *string             `bson:"theme,omitempty"`
	Archive         bool                `bson:"archive"`
	Completed       bool                `bson:"completed"`
	ReservedByName  *string             `bson:"reserved_by_name,omitempty"`
	ReservedByEmail *string             `bson:"reserved_by_email,omitempty"`
}

func (d *scheduleDoc) toDomain() *domain.Schedule {
	return &domain.Schedule{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Kind:            d.Kind,
		URL:             d.URL,
		Password:        d.Password,
		Instructor:      d.Instructor,
		Date:            d.StartsAt,
		Theme:           d.Theme,
		Archive:         d.Archive,
		Completed:       d.Completed,
		ReservedByName:  d.ReservedByName,
		ReservedByEmail: d.ReservedByEmail,
	}
}

type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection)}
}

func (r *TaskRepository) ListByAssignee(ctx context.Context, personalPage string) ([]*domain.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"assigned_to": personalPage}, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, len(docs))
	for i, d := range docs {
		tasks[i] = &domain.Task{ID: d.ID.Hex(), Name: d.Name, AssignedTo: d.AssignedTo, Completed: d.Completed}
	}
	return tasks, nil
}

func (r *TaskRepository) SetCompleted(ctx context.Context, taskID, personalPage string, completed bool) error {
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return domain.ErrTaskNotFound
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "assigned_to": personalPage},
		bson.M{"$set": bson.M{"completed": completed}},
	)
	if err != nil {
		return fmt.Errorf("set task completed: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

type SubmissionRepository struct {
	coll *mongo.Collection
}

func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{coll: db.Collection(submissionsCollection)}
}

func (r *SubmissionRepository) ListByPersonalPage(ctx context.Context, personalPage string) ([]*domain.Submission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"personal_page": personalPage}, opts)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	var docs []submissionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}

	subs := make([]*domain.Submission, len(docs))
	for i, d := range docs {
		subs[i] = &domain.Submission{
			ID:           d.ID.Hex(),
			Name:         d.Name,
			PersonalPage: d.PersonalPage,
			URL:          d.URL,
			SubmittedAt:  d.CreatedAt,
		}
	}
	return subs, nil
}

func (r *SubmissionRepository) Create(ctx context.Context, s *domain.Submission) (*domain.Submission, error) {
	doc := submissionDoc{
		ID:           primitive.NewObjectID(),
		Name:         s.Name,
		PersonalPage: s.PersonalPage,
		URL:          s.URL,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert submission: %w", err)
	}
	return &domain.Submission{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		PersonalPage: doc.PersonalPage,
		URL:          doc.URL,
		SubmittedAt:  doc.CreatedAt,
	}, nil
}

type ScheduleRepository struct {
	coll *mongo.Collection
}

func NewScheduleRepository(db *mongo.Database) *ScheduleRepository {
	return &ScheduleRepository{coll: db.Collection(schedulesCollection)}
}

func (r *ScheduleRepository) ListUpcoming(ctx context.Context, input repository.ListSchedulesInput) ([]*domain.Schedule, error) {
	filter := bson.M{"completed": false}

	startsAt := bson.M{}
	if !input.From.IsZero() {
		startsAt["$gte"] = input.From
	}
	if !input.To.IsZero() {
		startsAt["$lt"] = input.To
	}
	if len(startsAt) > 0 {
		filter["starts_at"] = startsAt
	}
	if input.Kind != "" {
		filter["kind"] = input.Kind
	}
	if input.Archive != nil {
		filter["archive"] = *input.Archive
	}

	return r.find(ctx, filter)
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*domain.Schedule, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrScheduleNotFound
	}

	var doc scheduleDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return doc.toDomain(), nil
}

// Reserve uses FindOneAndUpdate with the availability conditions in the
// filter, so only one concurrent reservation can match.
func (r *ScheduleRepository) Reserve(ctx context.Context, id, name, email string) (*domain.Schedule, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrScheduleNotFound
	}

	filter := bson.M{
		"_id":               oid,
		"kind":              domain.KindConsultation,
		"completed":         false,
		"archive":           false,
		"reserved_by_email": nil,
	}
	update := bson.M{"$set": bson.M{
		"reserved_by_name":  name,
		"reserved_by_email": email,
		"reserved_at":       time.Now().UTC(),
	}}

	var doc scheduleDoc
	err = r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("reserve schedule: %w", err)
	}

	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrScheduleUnavailable
}

func (r *ScheduleRepository) ListReservedBy(ctx context.Context, email string) ([]*domain.Schedule, error) {
	return r.find(ctx, bson.M{"reserved_by_email": email})
}

func (r *ScheduleRepository) find(ctx context.Context, filter bson.M) ([]*domain.Schedule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	var docs []scheduleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode schedules: %w", err)
	}

	out := make([]*domain.Schedule, len(docs))
	for i := range docs {
		out[i] = docs[i].toDomain()
	}
	return out, nil
}
