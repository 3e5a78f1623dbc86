package repository

import (
	"context"
	"time"

	"befit/fitness-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDuplicate    = RepositoryError("already exists")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	SetOnboardingCompleted(ctx context.Context, id primitive.ObjectID) error
}

// RoutineRepository stores weekly routines. A user has at most one active routine.
type RoutineRepository interface {
	// Create deactivates the user's other routines and inserts routine as active.
	Create(ctx context.Context, routine *domain.Routine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Routine, error)
	GetActive(ctx context.Context, userID primitive.ObjectID) (*domain.Routine, error)
	// SetProgress writes one cell of the active routine's progress matrix and
	// returns the updated routine.
	SetProgress(ctx context.Context, userID primitive.ObjectID, day string, exerciseIndex int, completed bool) (*domain.Routine, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Routine, error)
}

// WorkoutSessionRepository stores workout sessions.
type WorkoutSessionRepository interface {
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	// Complete writes the completion fields of an open session. It fails with
	// ErrUpdateFailed when the session is no longer open.
	Complete(ctx context.Context, session *domain.WorkoutSession) error
	ListCompleted(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutSession, error)
	Stats(ctx context.Context, userID primitive.ObjectID, now time.Time) (*domain.SessionStats, error)
	// MarkAbandoned closes sessions still open that started before cutoff.
	MarkAbandoned(ctx context.Context, cutoff time.Time) (int64, error)
	SetReportKey(ctx context.Context, id primitive.ObjectID, key string) error
}
