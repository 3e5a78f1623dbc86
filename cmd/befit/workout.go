package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"befit/fitness-app/internal/apperrors"
	"befit/fitness-app/internal/config"
	"befit/fitness-app/internal/logger"
	"befit/fitness-app/internal/workout"

	"github.com/spf13/cobra"
)

const outboxInterval = 30 * time.Second

const workoutHelp = `commands:
  d        set done
  s        skip rest
  p        pause / resume
  n        next exercise
  e <sec>  change the time estimate of this exercise
  r <sec>  change the rest time
  f        finish and save the session
  q        quit without saving
`

func newWorkoutCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "workout <day>",
		Short: "Run a live workout session for a day of the active routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*configDir, func(a *app) error {
				return runWorkout(cmd.Context(), a, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
}

func runWorkout(ctx context.Context, a *app, dayName string, in io.Reader, out io.Writer) error {
	routine, err := a.api.CurrentRoutine(ctx)
	if err != nil {
		return err
	}
	day, ok := routine.Day(dayName)
	if !ok {
		return apperrors.Validation("workout", fmt.Sprintf("day %q is not in the active routine", dayName))
	}
	restSeconds, err := a.store.RestSeconds(ctx)
	if err != nil {
		return err
	}

	var dispatcher workout.SyncDispatcher
	if a.cfg.Sync.Mode == config.SyncModeOutbox {
		outbox := a.store.Outbox(a.api)
		syncCtx, stopSync := context.WithCancel(ctx)
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			outbox.Run(syncCtx, outboxInterval)
		}()
		defer func() {
			stopSync()
			wg.Wait()
		}()
		dispatcher = outbox
	} else {
		ff := workout.NewFireAndForget(a.api, a.cfg.API.Timeout)
		defer ff.Wait()
		dispatcher = ff
	}

	r := &renderer{out: out}
	progress := workout.NewRoutineProgress(routine, dispatcher)
	bell := workout.NotifierFunc(r.bell)
	machine := workout.NewMachine(a.api, progress, workout.WithRestSeconds(restSeconds), workout.WithNotifier(bell))

	if err := machine.Start(ctx, routine, day); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "%s  %s  %d exercises, rest %ds\n%s\n", day.Day, day.Focus, len(day.Exercises), restSeconds, workoutHelp)

	driveCtx, stopDriver := context.WithCancel(ctx)
	defer stopDriver()
	driverDone := make(chan struct{})
	go func() {
		defer close(driverDone)
		_ = workout.NewDriver(machine, r.render).Run(driveCtx)
	}()

	inputDone := make(chan struct{})
	defer close(inputDone)
	lines := readLines(in, inputDone)

	for {
		select {
		case <-ctx.Done():
			machine.Cancel()
			return ctx.Err()
		case <-driverDone:
			return nil
		case line, ok := <-lines:
			if !ok {
				machine.Cancel()
				r.println("input closed, session discarded")
				return nil
			}
			done, err := handleWorkoutCommand(ctx, machine, progress, a.store, r, line)
			if err != nil {
				return err
			}
			if done {
				stopDriver()
				<-driverDone
				return nil
			}
			r.render(machine.State())
		}
	}
}

// readLines delivers trimmed input lines until in is exhausted or done is
// closed. The channel is closed when the reader stops.
func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-done:
				return
			}
		}
	}()
	return lines
}

// restSetting saves the rest time for later sessions.
type restSetting interface {
	SetRestSeconds(ctx context.Context, seconds int) error
}

// handleWorkoutCommand applies one input line. It reports true once the
// session has ended.
func handleWorkoutCommand(ctx context.Context, m *workout.Machine, progress *workout.RoutineProgress, settings restSetting, r *renderer, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "":
		return false, nil
	case "d":
		m.CompleteSet()
	case "s":
		m.SkipRest()
	case "p":
		m.TogglePause()
	case "n":
		m.NextExercise()
	case "e":
		seconds, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || seconds <= 0 {
			r.println("usage: e <seconds>")
			return false, nil
		}
		if !m.UpdateEstimatedTime(m.State().ExerciseIndex, seconds) {
			r.println("could not change the estimate")
		}
	case "r":
		seconds, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			r.println("usage: r <seconds>")
			return false, nil
		}
		if err := m.SetRestSeconds(seconds); err != nil {
			r.println(apperrors.Message(err))
			return false, nil
		}
		// The session keeps the new value even if it cannot be saved.
		if err := settings.SetRestSeconds(ctx, seconds); err != nil {
			logger.Warn("could not save rest time", "seconds", seconds, "error", err)
		}
	case "f":
		saved, err := m.Complete(ctx)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindTransientIO {
				r.println("could not save the session, try f again: " + apperrors.Message(err))
				return false, nil
			}
			return false, err
		}
		total := 0
		if saved.TotalDuration != nil {
			total = *saved.TotalDuration
		}
		r.println(fmt.Sprintf("session saved: %s, %d exercises, week %d%% complete",
			clockText(total), saved.ExercisesCompleted, progress.CompletionPercentage()))
		return true, nil
	case "q":
		m.Cancel()
		r.println("session discarded")
		return true, nil
	case "?", "h", "help":
		r.println(workoutHelp)
	default:
		r.println(fmt.Sprintf("unknown command %q, ? for help", cmd))
	}
	return false, nil
}

// renderer redraws a single status line. The driver and the input loop both
// write through it.
type renderer struct {
	mu  sync.Mutex
	out io.Writer
}

func (r *renderer) render(s workout.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, "\r%-78s", statusLine(s))
}

func (r *renderer) bell() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := fmt.Fprint(r.out, "\a")
	return err
}

func (r *renderer) println(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, "\r%-78s\r%s\n", "", msg)
}

func statusLine(s workout.Snapshot) string {
	var b strings.Builder
	if s.Paused {
		b.WriteString("[paused] ")
	}
	switch s.Phase {
	case workout.PhaseResting:
		fmt.Fprintf(&b, "rest %s | next: %s set %d/%d", clockText(s.RestRemaining), s.ExerciseName, s.CurrentSet, s.TotalSets)
	case workout.PhaseActive:
		fmt.Fprintf(&b, "%d/%d %s | set %d/%d | %s / %s",
			s.ExerciseIndex+1, s.ExerciseCount, s.ExerciseName, s.CurrentSet, s.TotalSets, clockText(s.Elapsed), clockText(s.Estimated))
		if s.OverEstimate {
			b.WriteString(" over")
		}
		if s.AwaitingCompletion {
			b.WriteString(" | all sets done, f to finish")
		}
	default:
		b.WriteString(s.Phase.String())
	}
	return b.String()
}
