package labs

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JPostigo48/TI2project-backend/internal/models"
)

// MongoCommitter writes accepted assignments through to the store: one
// enrollment record plus the section's enrolledCount increment.
type MongoCommitter struct {
	enrollments *mongo.Collection
	sections    *mongo.Collection
}

func NewMongoCommitter(client *mongo.Client, dbName string) *MongoCommitter {
	db := client.Database(dbName)
	return &MongoCommitter{
		enrollments: db.Collection("enrollments"),
		sections:    db.Collection("sections"),
	}
}

// Commit inserts the enrollment and increments the seat count. A record
// already present for (student, section) makes the call a no-op, so re-runs
// after a partial failure do not double-count seats.
func (m *MongoCommitter) Commit(ctx context.Context, rec models.Enrollment) error {
	err := m.enrollments.FindOne(ctx, bson.M{
		"student": rec.StudentID,
		"section": rec.SectionID,
	}).Err()
	if err == nil {
		return nil // already committed by an earlier run
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("duplicate check: %w", err)
	}

	if _, err := m.enrollments.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}

	// Guarded increment: never push enrolledCount past capacity even if the
	// snapshot the run saw was stale.
	res, err := m.sections.UpdateOne(ctx,
		bson.M{
			"_id":   rec.SectionID,
			"$expr": bson.M{"$lt": bson.A{"$enrolledCount", "$capacity"}},
		},
		bson.M{"$inc": bson.M{"enrolledCount": 1}},
	)
	if err != nil {
		return fmt.Errorf("increment enrolled count: %w", err)
	}
	if res.MatchedCount == 0 {
		// Roll the record back so the pair can be retried on a later run.
		_, _ = m.enrollments.DeleteOne(ctx, bson.M{"student": rec.StudentID, "section": rec.SectionID})
		return fmt.Errorf("%w: section %s is full in the store", ErrCapacityExceeded, rec.SectionID.Hex())
	}
	return nil
}
