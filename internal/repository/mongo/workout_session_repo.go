// internal/repository/mongo/workout_session_repo.go
package mongo

import (
	"context"
	"errors"
	"math"
	"time"

	"befit/fitness-app/internal/domain"
	"befit/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutSessionCollectionName = "workout_sessions"

// mongoWorkoutSessionRepository implements repository.WorkoutSessionRepository
type mongoWorkoutSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutSessionRepository creates a new instance of mongoWorkoutSessionRepository.
func NewMongoWorkoutSessionRepository(db *mongo.Database) repository.WorkoutSessionRepository {
	return &mongoWorkoutSessionRepository{
		collection: db.Collection(workoutSessionCollectionName),
	}
}

// Create inserts a new open session.
func (r *mongoWorkoutSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.UserID == primitive.NilObjectID || session.RoutineID == primitive.NilObjectID || session.DayName == "" {
		return primitive.NilObjectID, errors.New("session requires userId, routineId, and dayName")
	}
	session.ID = primitive.NewObjectID() // Generate new ObjectID
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	// Store an empty array rather than null
	if session.ExerciseData == nil {
		session.ExerciseData = []domain.ExerciseSessionData{}
	}

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID") // Should not happen
	}
	return insertedID, nil
}

// GetByID retrieves a single session by its ObjectID.
func (r *mongoWorkoutSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Return the custom repository error for not found
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Complete only matches open sessions, so endTime and totalDuration are
// written once.
func (r *mongoWorkoutSessionRepository) Complete(ctx context.Context, session *domain.WorkoutSession) error {
	filter := bson.M{"_id": session.ID, "status": domain.SessionOpen}
	session.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"endTime":            session.EndTime,
			"totalDuration":      session.TotalDuration,
			"exerciseData":       session.ExerciseData,
			"exercisesCompleted": session.ExercisesCompleted,
			"isCompleted":        true,
			"status":             domain.SessionCompleted,
			"updatedAt":          session.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	// Nothing matched: the session is gone or no longer open
	if result.MatchedCount == 0 {
		return repository.ErrUpdateFailed
	}
	return nil
}

// ListCompleted returns completed sessions, newest first.
func (r *mongoWorkoutSessionRepository) ListCompleted(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutSession, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}
	// Open and abandoned sessions are not history
	filter := bson.M{"userId": userID, "status": domain.SessionCompleted}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx) // Ensure cursor is closed

	// Initialize to empty slice so JSON renders [] instead of null
	sessions := []domain.WorkoutSession{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

type statsRow struct {
	Total              int `bson:"total"`
	TotalTime          int `bson:"totalTime"`
	ExercisesCompleted int `bson:"exercisesCompleted"`
	ThisWeek           int `bson:"thisWeek"`
	ThisMonth          int `bson:"thisMonth"`
}

// Stats aggregates the completed sessions of a user. The week starts Monday
// 00:00 UTC, the month on day 1 00:00 UTC.
func (r *mongoWorkoutSessionRepository) Stats(ctx context.Context, userID primitive.ObjectID, now time.Time) (*domain.SessionStats, error) {
	cursor, err := r.collection.Aggregate(ctx, statsPipeline(userID, now))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	// At most one row comes back from the $group stage
	var rows []statsRow
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return statsFromRows(rows), nil
}

// statsPipeline groups every completed session of userID into one row.
func statsPipeline(userID primitive.ObjectID, now time.Time) mongo.Pipeline {
	weekStart := domain.WeekStart(now)
	n := now.UTC()
	monthStart := time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC)

	// Counts sessions started at or after t.
	since := func(t time.Time) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$gte": bson.A{"$startTime", t}}, 1, 0}}}
	}
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID, "status": domain.SessionCompleted}}},
		{{Key: "$group", Value: bson.M{
			"_id":                nil,
			"total":              bson.M{"$sum": 1},
			"totalTime":          bson.M{"$sum": bson.M{"$ifNull": bson.A{"$totalDuration", 0}}},
			"exercisesCompleted": bson.M{"$sum": "$exercisesCompleted"},
			"thisWeek":           since(weekStart),
			"thisMonth":          since(monthStart),
		}}},
	}
}

// statsFromRows maps the aggregation result. No rows means no completed sessions.
func statsFromRows(rows []statsRow) *domain.SessionStats {
	stats := &domain.SessionStats{}
	if len(rows) == 0 {
		return stats
	}
	row := rows[0]
	stats.TotalSessions = row.Total
	stats.TotalTime = row.TotalTime
	stats.ExercisesCompleted = row.ExercisesCompleted
	stats.ThisWeek = row.ThisWeek
	stats.ThisMonth = row.ThisMonth
	if row.Total > 0 {
		// Rounded to the nearest second.
		stats.AvgSessionDuration = int(math.Round(float64(row.TotalTime) / float64(row.Total)))
	}
	return stats
}

// MarkAbandoned flags open sessions started before cutoff as abandoned.
func (r *mongoWorkoutSessionRepository) MarkAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	filter := bson.M{"status": domain.SessionOpen, "startTime": bson.M{"$lt": cutoff}}
	update := bson.M{"$set": bson.M{"status": domain.SessionAbandoned, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil // Number of sessions closed
}

// SetReportKey records the object storage key of the archived report.
func (r *mongoWorkoutSessionRepository) SetReportKey(ctx context.Context, id primitive.ObjectID, key string) error {
	update := bson.M{"$set": bson.M{"reportKey": key, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func workoutSessionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// History and stats per user
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}, {Key: "startTime", Value: -1}},
			Options: options.Index(),
		},
		{
			// Abandoned-session sweep
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index(),
		},
	}
}
