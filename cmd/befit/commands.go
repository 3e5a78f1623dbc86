package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"befit/fitness-app/internal/domain"
	"befit/fitness-app/internal/generator"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRegisterCmd(configDir *string) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configDir, func(a *app) error {
				user, err := a.api.Register(cmd.Context(), name, email, password)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s), now run `befit login`\n", user.Email, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (min 6 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(configDir *string) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configDir, func(a *app) error {
				user, err := a.api.Login(cmd.Context(), email, password)
				if err != nil {
					return err
				}
				if err := a.store.SetToken(cmd.Context(), a.api.Token()); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", user.Email)
				if !user.OnboardingCompleted {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no routine yet, run `befit generate --goal <goal>`")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configDir, func(a *app) error {
				return a.store.SetToken(cmd.Context(), "")
			})
		},
	}
}

func newRoutineCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "routine",
		Short: "Show the active routine and this week's progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configDir, func(a *app) error {
				routine, err := a.api.CurrentRoutine(cmd.Context())
				if err != nil {
					return err
				}
				printRoutine(cmd.OutOrStdout(), routine)
				return nil
			})
		},
	}
}

func newGenerateCmd(configDir *string) *cobra.Command {
	var p generator.Profile
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new weekly routine",
		Long:  "Generate a new weekly routine. The previous active routine is archived.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := p.Validate(); err != nil {
				return err
			}
			return withApp(*configDir, func(a *app) error {
				routine, err := a.api.Generate(cmd.Context(), p)
				if err != nil {
					return err
				}
				printRoutine(cmd.OutOrStdout(), routine)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&p.Goal, "goal", "", "lose_fat|gain_muscle|maintain|improve_health")
	cmd.Flags().StringVar(&p.ActivityLevel, "level", "", "sedentary|light|moderate|active|very_active")
	cmd.Flags().IntVar(&p.Age, "age", 0, "age in years")
	cmd.Flags().Float64Var(&p.WeightKg, "weight", 0, "weight in kg")
	cmd.Flags().Float64Var(&p.HeightCm, "height", 0, "height in cm")
	cmd.Flags().StringVar(&p.Gender, "gender", "", "gender")
	_ = cmd.MarkFlagRequired("goal")
	return cmd
}

func newRestCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rest [seconds]",
		Short: "Show or set the rest time between sets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*configDir, func(a *app) error {
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					seconds, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("rest must be a number of seconds: %q", args[0])
					}
					if err := a.store.SetRestSeconds(cmd.Context(), seconds); err != nil {
						return err
					}
				}
				seconds, err := a.store.RestSeconds(cmd.Context())
				if err != nil {
					return err
				}
				presets := make([]string, len(domain.RestPresets))
				for i, p := range domain.RestPresets {
					presets[i] = strconv.Itoa(p)
				}
				_, _ = fmt.Fprintf(out, "rest time: %ds (presets: %s)\n", seconds, strings.Join(presets, ", "))
				return nil
			})
		},
	}
}

func newHistoryCmd(configDir *string) *cobra.Command {
	var limit int
	var routines bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List completed workout sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configDir, func(a *app) error {
				out := cmd.OutOrStdout()
				if routines {
					list, err := a.api.History(cmd.Context())
					if err != nil {
						return err
					}
					for _, r := range list {
						active := ""
						if r.IsActive {
							active = " (active)"
						}
						_, _ = fmt.Fprintf(out, "week of %s  %3d%%  %s%s\n", r.WeekStart, r.CompletionPercentage(), r.ID.Hex(), active)
					}
					return nil
				}

				sessions, err := a.api.Sessions(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(out, "no completed sessions")
					return nil
				}
				for _, s := range sessions {
					total := 0
					if s.TotalDuration != nil {
						total = *s.TotalDuration
					}
					_, _ = fmt.Fprintf(out, "%s  %-10s %s  %d exercises  %s\n",
						s.StartTime.Local().Format("2006-01-02 15:04"), s.DayName, clockText(total), s.ExercisesCompleted, s.ID.Hex())
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum sessions to list (server default when 0)")
	cmd.Flags().BoolVar(&routines, "routines", false, "list past routines instead of sessions")
	return cmd
}

func newStatsCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show workout totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configDir, func(a *app) error {
				st, err := a.api.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "sessions:     %d (this week %d, this month %d)\n", st.TotalSessions, st.ThisWeek, st.ThisMonth)
				_, _ = fmt.Fprintf(out, "total time:   %s\n", clockText(st.TotalTime))
				_, _ = fmt.Fprintf(out, "average:      %s\n", clockText(st.AvgSessionDuration))
				_, _ = fmt.Fprintf(out, "exercises:    %d\n", st.ExercisesCompleted)
				return nil
			})
		},
	}
}

func newReportCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "report <session-id>",
		Short: "Print a download link for an archived session report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := primitive.ObjectIDFromHex(args[0])
			if err != nil {
				return fmt.Errorf("invalid session id %q", args[0])
			}
			return withApp(*configDir, func(a *app) error {
				url, err := a.api.ReportURL(cmd.Context(), id)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}
}

func newSyncCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send queued progress updates to the backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*configDir, func(a *app) error {
				return flushOutbox(cmd.Context(), cmd.OutOrStdout(), a)
			})
		},
	}
}

// flushOutbox delivers every queued progress write that is due and reports
// what is left.
func flushOutbox(ctx context.Context, out io.Writer, a *app) error {
	outbox := a.store.Outbox(a.api)
	sent, err := outbox.ProcessDue(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	pending, err := outbox.Pending(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "synced %d, pending %d\n", sent, len(pending))
	for _, e := range pending {
		_, _ = fmt.Fprintf(out, "  %s #%d  attempts %d  next %s  %s\n",
			e.Day, e.ExerciseIndex, e.Attempts, e.NextAttemptAt.Local().Format("15:04:05"), e.LastError)
	}
	return nil
}

func printRoutine(out io.Writer, r *domain.Routine) {
	_, _ = fmt.Fprintf(out, "week of %s  %d%% complete\n", r.WeekStart, r.CompletionPercentage())
	for _, day := range r.Plan.WeekPlan {
		_, _ = fmt.Fprintf(out, "\n%s  %s\n", day.Day, day.Focus)
		for i, ex := range day.Exercises {
			mark := " "
			if r.Progress.IsCompleted(day.Day, i) {
				mark = "x"
			}
			_, _ = fmt.Fprintf(out, "  [%s] %d. %s  %dx%s  rest %s\n", mark, i, ex.Name, ex.Sets, ex.Reps, ex.Rest)
		}
	}
	if r.Plan.WeeklyGoal != "" {
		_, _ = fmt.Fprintf(out, "\ngoal: %s\n", r.Plan.WeeklyGoal)
	}
}

// clockText renders seconds as m:ss, or h:mm:ss past an hour.
func clockText(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
