package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/planner"
	"github.com/abhisek/voxtutor/internal/store"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Recommend the next topic and difficulty for a learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		engagementScore, _ := cmd.Flags().GetFloat64("engagement")
		todFlag, _ := cmd.Flags().GetString("time-of-day")
		asJSON, _ := cmd.Flags().GetBool("json")

		tod := planner.TimeOfDayAt(time.Now())
		if todFlag != "" {
			var ok bool
			if tod, ok = planner.ParseTimeOfDay(todFlag); !ok {
				return fmt.Errorf("invalid --time-of-day %q (want morning, afternoon, evening or night)", todFlag)
			}
		}
		if engagementScore < 0 || engagementScore > 1 {
			return fmt.Errorf("--engagement must be between 0 and 1")
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		profile, history, err := loadLearner(cmd, e.store, userID)
		if err != nil {
			return err
		}

		topic := e.planner.SelectTopic(profile, history, engagementScore, tod)
		diff := e.planner.AdjustDifficulty(profile, nil, planner.Performance{History: history, Now: time.Now()})

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, map[string]any{"topic": topic, "difficulty": diff})
		}

		fmt.Fprintf(out, "Plan for %s (%s)\n", userID, profile.Level().DisplayName())
		rule(out)
		fmt.Fprintf(out, "Topic:       %s\n", planner.DisplayTopic(topic.Topic))
		fmt.Fprintf(out, "Difficulty:  %s\n", topic.Difficulty.DisplayName())
		fmt.Fprintf(out, "Duration:    %d min\n", topic.EstimatedDurationMinutes)
		fmt.Fprintf(out, "Confidence:  %s\n", percent(topic.Confidence))
		fmt.Fprintf(out, "Why:         %s\n", topic.Reason)
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Level:       %s -> %s (%s)\n",
			diff.CurrentDifficulty.DisplayName(), diff.RecommendedDifficulty.DisplayName(), diff.Strength)
		fmt.Fprintf(out, "Trend:       %s\n", diff.Trend)
		if len(diff.StruggleAreas) > 0 {
			fmt.Fprintf(out, "Struggles:   %s\n", strings.Join(diff.StruggleAreas, ", "))
		}
		fmt.Fprintf(out, "Why:         %s\n", diff.Reason)
		return nil
	},
}

// loadLearner returns the stored profile (or the default one) and history.
func loadLearner(cmd *cobra.Command, st *store.Store, userID string) (*learner.Profile, []learner.SessionRecord, error) {
	ctx := cmd.Context()
	profile, err := st.ProfileRepo().GetUserProfile(ctx, userID)
	if errors.Is(err, store.ErrProfileNotFound) {
		p := learner.DefaultProfile(userID)
		profile, err = &p, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load profile: %w", err)
	}
	history, err := st.SessionRepo().GetSessionHistory(ctx, userID, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("load history: %w", err)
	}
	return profile, history, nil
}

func init() {
	planCmd.Flags().StringP("user", "u", "", "Learner ID")
	planCmd.Flags().Float64("engagement", 0.6, "Current engagement score (0-1)")
	planCmd.Flags().String("time-of-day", "", "morning, afternoon, evening or night (default: now)")
	planCmd.Flags().Bool("json", false, "Print results as JSON")
	_ = planCmd.MarkFlagRequired("user")
}
