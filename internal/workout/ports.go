package workout

import (
	"context"

	"befit/fitness-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionGateway persists the session record. Only Start and Complete reach it.
type SessionGateway interface {
	StartSession(ctx context.Context, routineID primitive.ObjectID, dayName string, restSeconds int) (*domain.WorkoutSession, error)
	CompleteSession(ctx context.Context, sessionID primitive.ObjectID, exerciseData []domain.ExerciseSessionData, exercisesCompleted int) (*domain.WorkoutSession, error)
}

// RoutineProgressUpdater marks exercises of the routine's progress matrix.
// Implementations update local state immediately and sync in the background;
// they never fail the caller.
type RoutineProgressUpdater interface {
	UpdateProgress(day string, exerciseIndex int, completed bool)
}

// NotificationPort plays the rest-complete cue (haptics, sound). Errors are
// logged and dropped. It is called while the machine holds its lock, so it
// must not call back into the machine.
type NotificationPort interface {
	NotifyRestComplete() error
}

// NotifierFunc adapts a function to NotificationPort.
type NotifierFunc func() error

func (f NotifierFunc) NotifyRestComplete() error { return f() }
