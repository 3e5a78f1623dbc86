package localstore

import (
	"context"
	"fmt"
	"time"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/logger"
	"befit/fitness-app/internal/workout"

	"github.com/google/uuid"
)

const (
	DefaultBaseDelay = 2 * time.Second
	DefaultMaxDelay  = 5 * time.Minute
	syncTimeout      = 10 * time.Second
)

var _ workout.SyncDispatcher = (*Outbox)(nil)

// Outbox queues progress writes in SQLite and retries them with capped
// exponential backoff. A newer write for the same exercise replaces a pending one.
type Outbox struct {
	store     *Store
	syncer    workout.ProgressSyncer
	now       func() time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	wake      chan struct{}
}

func (s *Store) Outbox(syncer workout.ProgressSyncer) *Outbox {
	return &Outbox{
		store:     s,
		syncer:    syncer,
		now:       time.Now,
		baseDelay: DefaultBaseDelay,
		maxDelay:  DefaultMaxDelay,
		wake:      make(chan struct{}, 1),
	}
}

// Entry is one queued progress write.
type Entry struct {
	ID            string
	Day           string
	ExerciseIndex int
	Completed     bool
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
}

// Dispatch implements workout.SyncDispatcher. It never blocks on the network.
func (o *Outbox) Dispatch(day string, exerciseIndex int, completed bool) {
	if err := o.Enqueue(context.Background(), day, exerciseIndex, completed); err != nil {
		logger.Warn("outbox enqueue failed", "day", day, "exercise", exerciseIndex, "error", err)
		return
	}
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *Outbox) Enqueue(ctx context.Context, day string, exerciseIndex int, completed bool) error {
	tx, err := o.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM progress_outbox WHERE day = ? AND exercise_index = ?`,
		day, exerciseIndex,
	); err != nil {
		return fmt.Errorf("superseding pending write: %w", err)
	}

	now := o.now().UnixMilli()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO progress_outbox (id, day, exercise_index, completed, next_attempt_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), day, exerciseIndex, boolToInt(completed), now, now,
	); err != nil {
		return fmt.Errorf("queueing write: %w", err)
	}
	return tx.Commit()
}

// Pending lists queued writes in the order they were made.
func (o *Outbox) Pending(ctx context.Context) ([]Entry, error) {
	return o.query(ctx, `SELECT id, day, exercise_index, completed, attempts, next_attempt_at, last_error
		FROM progress_outbox ORDER BY created_at, rowid`)
}

// ProcessDue sends every write whose retry time has passed. It stops at the
// first transient failure and returns how many writes were delivered. Writes
// the backend rejects as invalid or unknown are dropped.
func (o *Outbox) ProcessDue(ctx context.Context) (int, error) {
	due, err := o.query(ctx, `SELECT id, day, exercise_index, completed, attempts, next_attempt_at, last_error
		FROM progress_outbox WHERE next_attempt_at <= ? ORDER BY created_at, rowid`, o.now().UnixMilli())
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, e := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		sctx, cancel := context.WithTimeout(ctx, syncTimeout)
		_, serr := o.syncer.SyncProgress(sctx, e.Day, e.ExerciseIndex, e.Completed)
		cancel()

		switch {
		case serr == nil:
			sent++
			if err := o.remove(ctx, e.ID); err != nil {
				return sent, err
			}
		case !retryable(serr):
			logger.Warn("dropping rejected progress write", "day", e.Day, "exercise", e.ExerciseIndex, "error", serr)
			if err := o.remove(ctx, e.ID); err != nil {
				return sent, err
			}
		default:
			attempts := e.Attempts + 1
			next := o.now().Add(o.backoff(attempts))
			logger.Debug("progress write failed, will retry", "day", e.Day, "exercise", e.ExerciseIndex, "attempts", attempts, "next", next)
			if _, err := o.store.db.ExecContext(ctx,
				`UPDATE progress_outbox SET attempts = ?, next_attempt_at = ?, last_error = ? WHERE id = ?`,
				attempts, next.UnixMilli(), serr.Error(), e.ID,
			); err != nil {
				return sent, fmt.Errorf("rescheduling write: %w", err)
			}
			return sent, nil
		}
	}
	return sent, nil
}

// Run processes the queue every interval and whenever a write is dispatched,
// until ctx is done.
func (o *Outbox) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := o.ProcessDue(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("outbox processing failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-o.wake:
		}
	}
}

func (o *Outbox) backoff(attempts int) time.Duration {
	d := o.baseDelay
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= o.maxDelay {
			return o.maxDelay
		}
	}
	return d
}

func retryable(err error) bool {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindNotFound:
		return false
	}
	return true
}

func (o *Outbox) remove(ctx context.Context, id string) error {
	if _, err := o.store.db.ExecContext(ctx, `DELETE FROM progress_outbox WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing write %s: %w", id, err)
	}
	return nil
}

func (o *Outbox) query(ctx context.Context, q string, args ...interface{}) ([]Entry, error) {
	rows, err := o.store.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("reading outbox: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e         Entry
			completed int
			next      int64
		)
		if err := rows.Scan(&e.ID, &e.Day, &e.ExerciseIndex, &completed, &e.Attempts, &next, &e.LastError); err != nil {
			return nil, fmt.Errorf("scanning outbox row: %w", err)
		}
		e.Completed = completed != 0
		e.NextAttemptAt = time.UnixMilli(next)
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
