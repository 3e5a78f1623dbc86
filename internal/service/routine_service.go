package service

import (
	"context"
	"time"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/domain"
	"befit/fitness-app/internal/generator"
	"befit/fitness-app/internal/logger"
	"befit/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HistoryLimit is the number of routines returned by History.
const HistoryLimit = 10

// ProgressResult is returned after a progress write.
type ProgressResult struct {
	Progress             domain.Progress `json:"progress"`
	CompletionPercentage int             `json:"completionPercentage"`
}

type RoutineService interface {
	// Generate asks the content generator for a plan and stores it as the
	// user's new active routine.
	Generate(ctx context.Context, userID primitive.ObjectID, profile generator.Profile) (*domain.Routine, error)
	Create(ctx context.Context, userID primitive.ObjectID, plan domain.RoutinePlan) (*domain.Routine, error)
	Current(ctx context.Context, userID primitive.ObjectID) (*domain.Routine, error)
	UpdateProgress(ctx context.Context, userID primitive.ObjectID, day string, exerciseIndex int, completed bool) (*ProgressResult, error)
	History(ctx context.Context, userID primitive.ObjectID) ([]domain.Routine, error)
}

type routineService struct {
	routineRepo repository.RoutineRepository
	userRepo    repository.UserRepository
	generator   generator.ContentGenerator
	now         func() time.Time
}

func NewRoutineService(routineRepo repository.RoutineRepository, userRepo repository.UserRepository, gen generator.ContentGenerator) RoutineService {
	return &routineService{
		routineRepo: routineRepo,
		userRepo:    userRepo,
		generator:   gen,
		now:         time.Now,
	}
}

func (s *routineService) Generate(ctx context.Context, userID primitive.ObjectID, profile generator.Profile) (*domain.Routine, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	plan, err := s.generator.GenerateRoutine(ctx, profile)
	if err != nil {
		if apperrors.KindOf(err) != "" {
			return nil, err
		}
		return nil, apperrors.Transient("routine.generate", err)
	}
	routine, err := s.Create(ctx, userID, plan)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetOnboardingCompleted(ctx, userID); err != nil {
		logger.Warn("failed to flag onboarding", "user", userID.Hex(), "error", err)
	}
	return routine, nil
}

// Create stores plan as the active routine for the current week. Older
// routines are deactivated by the repository.
func (s *routineService) Create(ctx context.Context, userID primitive.ObjectID, plan domain.RoutinePlan) (*domain.Routine, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	routine := &domain.Routine{
		UserID:    userID,
		WeekStart: domain.WeekStart(s.now()).Format("2006-01-02"),
		Plan:      plan,
		Progress:  domain.Progress{},
	}
	id, err := s.routineRepo.Create(ctx, routine)
	if err != nil {
		return nil, translate("routine.create", "routine not found", err)
	}
	routine.ID = id
	logger.Info("routine created", "user", userID.Hex(), "routine", id.Hex(), "days", len(plan.WeekPlan))
	return routine, nil
}

func (s *routineService) Current(ctx context.Context, userID primitive.ObjectID) (*domain.Routine, error) {
	routine, err := s.routineRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, translate("routine.current", "no active routine found", err)
	}
	return routine, nil
}

// UpdateProgress writes one cell of the active routine's progress matrix.
// Writing the same value twice is a no-op.
func (s *routineService) UpdateProgress(ctx context.Context, userID primitive.ObjectID, day string, exerciseIndex int, completed bool) (*ProgressResult, error) {
	active, err := s.routineRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, translate("routine.progress", "no active routine found", err)
	}
	if err := active.CheckExercise(day, exerciseIndex); err != nil {
		return nil, err
	}

	updated, err := s.routineRepo.SetProgress(ctx, userID, day, exerciseIndex, completed)
	if err != nil {
		return nil, translate("routine.progress", "no active routine found", err)
	}
	if updated.Progress == nil {
		updated.Progress = domain.Progress{}
	}
	return &ProgressResult{
		Progress:             updated.Progress,
		CompletionPercentage: updated.CompletionPercentage(),
	}, nil
}

func (s *routineService) History(ctx context.Context, userID primitive.ObjectID) ([]domain.Routine, error) {
	routines, err := s.routineRepo.ListByUser(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, translate("routine.history", "", err)
	}
	return routines, nil
}
