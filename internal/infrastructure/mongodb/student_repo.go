package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/student-portal/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type studentDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	Retired      bool               `bson:"retired"`
	PasswordHash string             `bson:"password_hash,omitempty"`
	PersonalPage string             `bson:"personal_page"`
	Progress     string             `bson:"progress"`
	LastViewedAt *time.Time         `bson:"last_viewed_at,omitempty"`
}

func (d *studentDoc) toDomain() *domain.Student {
	return &domain.Student{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		Retired:      d.Retired,
		PasswordHash: d.PasswordHash,
		PersonalPage: d.PersonalPage,
		Progress:     d.Progress,
		LastViewedAt: d.LastViewedAt,
	}
}

type StudentRepository struct {
	coll *mongo.Collection
}

func NewStudentRepository(db *mongo.Database) *StudentRepository {
	return &StudentRepository{coll: db.Collection(studentsCollection)}
}

func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*domain.Student, error) {
	var doc studentDoc
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *StudentRepository) SavePasswordHash(ctx context.Context, studentID, hash string) error {
	id, err := primitive.ObjectIDFromHex(studentID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"password_hash": hash}})
	if err != nil {
		return fmt.Errorf("save password hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *StudentRepository) TouchLastViewed(ctx context.Context, studentID string) error {
	id, err := primitive.ObjectIDFromHex(studentID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	if _, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_viewed_at": time.Now().UTC()}}); err != nil {
		return fmt.Errorf("touch last viewed: %w", err)
	}
	return nil
}
