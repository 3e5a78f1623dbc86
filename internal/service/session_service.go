package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/domain"
	"befit/fitness-app/internal/logger"
	"befit/fitness-app/internal/repository"
	"befit/fitness-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultSessionListLimit = 20
	MaxSessionListLimit     = 100
)

// SessionService is the server side of the workout session lifecycle.
type SessionService interface {
	Start(ctx context.Context, userID, routineID primitive.ObjectID, dayName string, restSeconds int) (*domain.WorkoutSession, error)
	// Complete closes an open session. The duration is computed here from the
	// stored start time; the client never supplies it.
	Complete(ctx context.Context, userID, sessionID primitive.ObjectID, exerciseData []domain.ExerciseSessionData, exercisesCompleted int) (*domain.WorkoutSession, error)
	List(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutSession, error)
	Stats(ctx context.Context, userID primitive.ObjectID) (*domain.SessionStats, error)
	ReportURL(ctx context.Context, userID, sessionID primitive.ObjectID) (string, error)
	// AbandonStale marks sessions left open longer than the configured window.
	AbandonStale(ctx context.Context) (int64, error)
}

type sessionService struct {
	sessionRepo  repository.WorkoutSessionRepository
	routineRepo  repository.RoutineRepository
	reports      storage.ReportStorage // nil disables the archive
	abandonAfter time.Duration
	now          func() time.Time
}

func NewSessionService(
	sessionRepo repository.WorkoutSessionRepository,
	routineRepo repository.RoutineRepository,
	reports storage.ReportStorage,
	abandonAfter time.Duration,
) SessionService {
	if abandonAfter <= 0 {
		abandonAfter = 24 * time.Hour
	}
	return &sessionService{
		sessionRepo:  sessionRepo,
		routineRepo:  routineRepo,
		reports:      reports,
		abandonAfter: abandonAfter,
		now:          time.Now,
	}
}

func (s *sessionService) Start(ctx context.Context, userID, routineID primitive.ObjectID, dayName string, restSeconds int) (*domain.WorkoutSession, error) {
	const op = "session.start"
	if !domain.ValidRestSeconds(restSeconds) {
		return nil, apperrors.Validation(op, fmt.Sprintf("rest must be between %d and %d seconds", domain.MinRestSeconds, domain.MaxRestSeconds))
	}
	if dayName == "" {
		return nil, apperrors.Validation(op, "day name is required")
	}

	routine, err := s.routineRepo.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Validation(op, "routine not found")
		}
		return nil, apperrors.Transient(op, err)
	}
	// A foreign routine is reported the same way as a missing one.
	if routine.UserID != userID {
		return nil, apperrors.Validation(op, "routine not found")
	}
	if _, ok := routine.Day(dayName); !ok {
		return nil, apperrors.Validation(op, fmt.Sprintf("routine has no day %q", dayName))
	}

	session := &domain.WorkoutSession{
		UserID:       userID,
		RoutineID:    routineID,
		DayName:      dayName,
		StartTime:    s.now().UTC(),
		RestTimeUsed: restSeconds,
		Status:       domain.SessionOpen,
	}
	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, apperrors.Transient(op, err)
	}
	session.ID = id
	logger.Info("session opened", "user", userID.Hex(), "session", id.Hex(), "day", dayName)
	return session, nil
}

func (s *sessionService) Complete(ctx context.Context, userID, sessionID primitive.ObjectID, exerciseData []domain.ExerciseSessionData, exercisesCompleted int) (*domain.WorkoutSession, error) {
	const op = "session.complete"
	if exercisesCompleted < 0 {
		return nil, apperrors.Validation(op, "exercisesCompleted cannot be negative")
	}

	session, err := s.owned(ctx, op, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionOpen {
		return nil, apperrors.Validation(op, fmt.Sprintf("session is %s", session.Status))
	}

	// The records must describe the day the session was opened for.
	routine, err := s.routineRepo.GetByID(ctx, session.RoutineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Validation(op, "routine of this session no longer exists")
		}
		return nil, apperrors.Transient(op, err)
	}
	day, ok := routine.Day(session.DayName)
	if !ok {
		return nil, apperrors.Validation(op, fmt.Sprintf("routine has no day %q", session.DayName))
	}
	if err := checkExerciseData(op, day, exerciseData, exercisesCompleted); err != nil {
		return nil, err
	}

	end := s.now().UTC()
	duration := domain.DurationSeconds(session.StartTime, end)
	session.EndTime = &end
	session.TotalDuration = &duration
	session.ExerciseData = exerciseData
	session.ExercisesCompleted = exercisesCompleted
	session.IsCompleted = true
	session.Status = domain.SessionCompleted

	if err := s.sessionRepo.Complete(ctx, session); err != nil {
		if errors.Is(err, repository.ErrUpdateFailed) {
			return nil, apperrors.Validation(op, "session is no longer open")
		}
		return nil, translate(op, "session not found", err)
	}
	logger.Info("session completed", "user", userID.Hex(), "session", sessionID.Hex(), "duration", duration, "exercises_completed", exercisesCompleted)

	s.archive(ctx, session)
	return session, nil
}

// checkExerciseData requires one record per exercise of day, in order, with
// set counts bounded by the plan and a completed count that matches the records.
func checkExerciseData(op string, day domain.DayPlan, data []domain.ExerciseSessionData, exercisesCompleted int) error {
	if len(data) != len(day.Exercises) {
		return apperrors.Validation(op, fmt.Sprintf("expected %d exercise records, got %d", len(day.Exercises), len(data)))
	}
	started := 0
	for i, d := range data {
		if d.ExerciseIndex != i {
			return apperrors.Validation(op, fmt.Sprintf("exercise record %d has index %d", i, d.ExerciseIndex))
		}
		if sets := day.Exercises[i].Sets; d.SetsCompleted < 0 || d.SetsCompleted > sets {
			return apperrors.Validation(op, fmt.Sprintf("exercise %d: setsCompleted must be between 0 and %d", i, sets))
		}
		if d.TimeSpent < 0 || d.EstimatedTime < 0 {
			return apperrors.Validation(op, fmt.Sprintf("exercise %d: times cannot be negative", i))
		}
		if d.SetsCompleted > 0 {
			started++
		}
	}
	if exercisesCompleted != started {
		return apperrors.Validation(op, fmt.Sprintf("exercisesCompleted is %d but %d exercises have sets done", exercisesCompleted, started))
	}
	return nil
}

// archive uploads the session report. Failures are logged and never fail the
// completion.
func (s *sessionService) archive(ctx context.Context, session *domain.WorkoutSession) {
	if s.reports == nil {
		return
	}
	body, err := json.Marshal(domain.NewSessionReport(session, s.now().UTC()))
	if err != nil {
		logger.Warn("failed to encode session report", "session", session.ID.Hex(), "error", err)
		return
	}
	key := storage.ReportKey(session.UserID.Hex(), session.ID.Hex())
	if err := s.reports.PutObject(ctx, key, "application/json", body); err != nil {
		logger.Warn("failed to archive session report", "session", session.ID.Hex(), "error", err)
		return
	}
	if err := s.sessionRepo.SetReportKey(ctx, session.ID, key); err != nil {
		logger.Warn("failed to record report key", "session", session.ID.Hex(), "error", err)
		if err := s.reports.DeleteObject(ctx, key); err != nil {
			logger.Warn("failed to remove orphaned report", "key", key, "error", err)
		}
		return
	}
	session.ReportKey = key
}

// owned loads a session of userID. Foreign sessions are reported as not found.
func (s *sessionService) owned(ctx context.Context, op string, userID, sessionID primitive.ObjectID) (*domain.WorkoutSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, translate(op, "session not found", err)
	}
	if session.UserID != userID {
		return nil, apperrors.NotFound(op, "session not found")
	}
	return session, nil
}

func (s *sessionService) List(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutSession, error) {
	switch {
	case limit <= 0:
		limit = DefaultSessionListLimit
	case limit > MaxSessionListLimit:
		limit = MaxSessionListLimit
	}
	sessions, err := s.sessionRepo.ListCompleted(ctx, userID, limit)
	if err != nil {
		return nil, translate("session.list", "", err)
	}
	return sessions, nil
}

func (s *sessionService) Stats(ctx context.Context, userID primitive.ObjectID) (*domain.SessionStats, error) {
	stats, err := s.sessionRepo.Stats(ctx, userID, s.now())
	if err != nil {
		return nil, translate("session.stats", "", err)
	}
	return stats, nil
}

func (s *sessionService) ReportURL(ctx context.Context, userID, sessionID primitive.ObjectID) (string, error) {
	const op = "session.report"
	if s.reports == nil {
		return "", apperrors.NotFound(op, "report archive is disabled")
	}
	session, err := s.owned(ctx, op, userID, sessionID)
	if err != nil {
		return "", err
	}
	if session.ReportKey == "" {
		return "", apperrors.NotFound(op, "no report archived for this session")
	}
	url, err := s.reports.GeneratePresignedDownloadURL(ctx, session.ReportKey, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", apperrors.Transient(op, err)
	}
	return url, nil
}

func (s *sessionService) AbandonStale(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.abandonAfter)
	n, err := s.sessionRepo.MarkAbandoned(ctx, cutoff)
	if err != nil {
		return 0, apperrors.Transient("session.sweep", err)
	}
	return n, nil
}
