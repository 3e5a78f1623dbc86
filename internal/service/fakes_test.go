package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"befit/fitness-app/internal/domain"
	"befit/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[primitive.ObjectID]*domain.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	cp := *user
	r.users[user.ID] = &cp
	return user.ID, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) SetOnboardingCompleted(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.OnboardingCompleted = true
	return nil
}

type memRoutineRepo struct {
	mu       sync.Mutex
	routines []*domain.Routine
	seq      int
	err      error
}

func (r *memRoutineRepo) Create(_ context.Context, routine *domain.Routine) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return primitive.NilObjectID, r.err
	}
	for _, old := range r.routines {
		if old.UserID == routine.UserID {
			old.IsActive = false
		}
	}
	r.seq++
	routine.ID = primitive.NewObjectID()
	routine.IsActive = true
	routine.CreatedAt = time.Unix(int64(r.seq), 0)
	cp := *routine
	cp.Progress = routine.Progress.Clone()
	r.routines = append(r.routines, &cp)
	return routine.ID, nil
}

func (r *memRoutineRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rt := range r.routines {
		if rt.ID == id {
			cp := *rt
			cp.Progress = rt.Progress.Clone()
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memRoutineRepo) active(userID primitive.ObjectID) *domain.Routine {
	for i := len(r.routines) - 1; i >= 0; i-- {
		if rt := r.routines[i]; rt.UserID == userID && rt.IsActive {
			return rt
		}
	}
	return nil
}

func (r *memRoutineRepo) GetActive(_ context.Context, userID primitive.ObjectID) (*domain.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	rt := r.active(userID)
	if rt == nil {
		return nil, repository.ErrNotFound
	}
	cp := *rt
	cp.Progress = rt.Progress.Clone()
	return &cp, nil
}

func (r *memRoutineRepo) SetProgress(_ context.Context, userID primitive.ObjectID, day string, exerciseIndex int, completed bool) (*domain.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt := r.active(userID)
	if rt == nil {
		return nil, repository.ErrNotFound
	}
	if rt.Progress == nil {
		rt.Progress = domain.Progress{}
	}
	rt.Progress.Set(day, exerciseIndex, completed)
	cp := *rt
	cp.Progress = rt.Progress.Clone()
	return &cp, nil
}

func (r *memRoutineRepo) ListByUser(_ context.Context, userID primitive.ObjectID, limit int) ([]domain.Routine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Routine{}
	for i := len(r.routines) - 1; i >= 0 && len(out) < limit; i-- {
		if r.routines[i].UserID == userID {
			out = append(out, *r.routines[i])
		}
	}
	return out, nil
}

type memSessionRepo struct {
	mu          sync.Mutex
	sessions    map[primitive.ObjectID]*domain.WorkoutSession
	reportErr   error
	lastLimit   int
	statsNow    time.Time
	stats       domain.SessionStats
	abandonedAt time.Time
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[primitive.ObjectID]*domain.WorkoutSession{}}
}

func (r *memSessionRepo) Create(_ context.Context, s *domain.WorkoutSession) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = primitive.NewObjectID()
	cp := *s
	r.sessions[s.ID] = &cp
	return s.ID, nil
}

func (r *memSessionRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) Complete(_ context.Context, s *domain.WorkoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[s.ID]
	if !ok || stored.Status != domain.SessionOpen {
		return repository.ErrUpdateFailed
	}
	cp := *s
	r.sessions[s.ID] = &cp
	return nil
}

func (r *memSessionRepo) ListCompleted(_ context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	out := []domain.WorkoutSession{}
	for _, s := range r.sessions {
		if s.UserID == userID && s.Status == domain.SessionCompleted {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memSessionRepo) Stats(_ context.Context, _ primitive.ObjectID, now time.Time) (*domain.SessionStats, error) {
	r.statsNow = now
	st := r.stats
	return &st, nil
}

func (r *memSessionRepo) MarkAbandoned(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abandonedAt = cutoff
	var n int64
	for _, s := range r.sessions {
		if s.Status == domain.SessionOpen && s.StartTime.Before(cutoff) {
			s.Status = domain.SessionAbandoned
			n++
		}
	}
	return n, nil
}

func (r *memSessionRepo) SetReportKey(_ context.Context, id primitive.ObjectID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reportErr != nil {
		return r.reportErr
	}
	s, ok := r.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.ReportKey = key
	return nil
}

type fakeReports struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	deleted []string
}

func newFakeReports() *fakeReports {
	return &fakeReports{objects: map[string][]byte{}}
}

func (f *fakeReports) PutObject(_ context.Context, key, _ string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[key] = body
	return nil
}

func (f *fakeReports) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://reports.example/" + key + "?sig=1", nil
}

func (f *fakeReports) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

var errDatabaseDown = errors.New("connection refused")

func sampleDays() []domain.DayPlan {
	return []domain.DayPlan{
		{Day: "Lunes", Focus: "Pierna", Exercises: []domain.Exercise{{Name: "Sentadilla", Sets: 3}, {Name: "Zancadas", Sets: 3}}},
		{Day: "Miércoles", Focus: "Torso", Exercises: []domain.Exercise{{Name: "Remo", Sets: 3}, {Name: "Press", Sets: 3}}},
	}
}
