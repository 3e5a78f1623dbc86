// internal/repository/mongo/routine_repo.go
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"befit/fitness-app/internal/domain"
	"befit/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const routineCollectionName = "routines"

// mongoRoutineRepository implements repository.RoutineRepository
type mongoRoutineRepository struct {
	collection *mongo.Collection
}

// NewMongoRoutineRepository creates a new instance of mongoRoutineRepository.
func NewMongoRoutineRepository(db *mongo.Database) repository.RoutineRepository {
	return &mongoRoutineRepository{
		collection: db.Collection(routineCollectionName),
	}
}

// Create deactivates every active routine of the user, then inserts routine as
// the active one.
func (r *mongoRoutineRepository) Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	if routine.UserID == primitive.NilObjectID || len(routine.Plan.WeekPlan) == 0 {
		return primitive.NilObjectID, errors.New("routine requires userId and a week plan")
	}
	now := time.Now().UTC()

	// --- Archive the previous active routines ---
	deactivate := bson.M{"$set": bson.M{"isActive": false, "updatedAt": now}}
	if _, err := r.collection.UpdateMany(ctx, bson.M{"userId": routine.UserID, "isActive": true}, deactivate); err != nil {
		return primitive.NilObjectID, err
	}

	// --- Insert the new one as active ---
	routine.ID = primitive.NewObjectID()
	routine.IsActive = true
	routine.CreatedAt = now
	routine.UpdatedAt = now
	if routine.Progress == nil {
		routine.Progress = domain.Progress{}
	}

	result, err := r.collection.InsertOne(ctx, routine)
	if err != nil {
		return primitive.NilObjectID, err
	}
	// Assert the type of the inserted ID
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted routine ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single routine by its ObjectID.
func (r *mongoRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	var routine domain.Routine
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// GetActive returns the newest active routine of the user.
func (r *mongoRoutineRepository) GetActive(ctx context.Context, userID primitive.ObjectID) (*domain.Routine, error) {
	var routine domain.Routine
	// Newest first, in case an interrupted Create left two active routines
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"userId": userID, "isActive": true}, opts).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &routine, nil
}

// SetProgress sets progress.<day>.<index> on the active routine in a single
// update. Concurrent writes to the same cell resolve last-write-wins.
func (r *mongoRoutineRepository) SetProgress(ctx context.Context, userID primitive.ObjectID, day string, exerciseIndex int, completed bool) (*domain.Routine, error) {
	if exerciseIndex < 0 {
		return nil, fmt.Errorf("invalid exercise index %d", exerciseIndex)
	}
	// Dotted path into the progress map, e.g. "progress.Lunes.2"
	field := "progress." + day + "." + strconv.Itoa(exerciseIndex)
	update := bson.M{"$set": bson.M{field: completed, "updatedAt": time.Now().UTC()}}
	// Return the routine as it is after the update
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var routine domain.Routine
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"userId": userID, "isActive": true}, update, opts).Decode(&routine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound // No active routine
		}
		return nil, err
	}
	return &routine, nil
}

// ListByUser returns the user's routines, newest first.
func (r *mongoRoutineRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Routine, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx) // Ensure cursor is closed

	// Initialize to empty slice so JSON renders [] instead of null
	routines := []domain.Routine{}
	if err = cursor.All(ctx, &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

func routineIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// Active routine lookup and history listing
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
}
