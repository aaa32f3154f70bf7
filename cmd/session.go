package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/voxtutor/internal/learner"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Record and list completed sessions",
}

var sessionRecordCmd = &cobra.Command{
	Use:   "record <sessions.json>",
	Short: "Append one session record or an array of them to the history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		records, err := decodeSessions(r)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		repo := st.SessionRepo()
		for _, rec := range records {
			if err := repo.AppendSession(cmd.Context(), rec); err != nil {
				return fmt.Errorf("record %s: %w", rec.SessionID, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d session(s).\n", len(records))
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a learner's recent sessions, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		history, err := st.SessionRepo().GetSessionHistory(cmd.Context(), userID, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, history)
		}
		if len(history) == 0 {
			fmt.Fprintln(out, "No sessions recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-20s  %-18s  %-6s  %-7s  %-7s  %s\n",
			"Started", "Topic", "Persona", "Min", "Grammar", "Fluency", "Score")
		rule(out)
		for _, s := range history {
			fmt.Fprintf(out, "%-16s  %-20s  %-18s  %-6d  %-7s  %-7s  %.0f\n",
				s.StartedAt.Local().Format("2006-01-02 15:04"),
				truncate(s.Topic, 20),
				truncate(s.Persona, 18),
				s.Metrics.DurationSec/60,
				percent(s.Metrics.GrammarAccuracy),
				percent(s.Metrics.FluencyScore),
				s.Metrics.PerformanceScore(),
			)
		}
		return nil
	},
}

// decodeSessions accepts a single record or an array of them.
func decodeSessions(r io.Reader) ([]learner.SessionRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	data = bytes.TrimSpace(data)

	var records []learner.SessionRecord
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &records)
	} else {
		var rec learner.SessionRecord
		err = json.Unmarshal(data, &rec)
		records = []learner.SessionRecord{rec}
	}
	if err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}

	for i, rec := range records {
		if rec.SessionID == "" || rec.UserID == "" {
			return nil, fmt.Errorf("session %d: session_id and user_id are required", i)
		}
		if rec.StartedAt.IsZero() {
			return nil, fmt.Errorf("session %s: started_at is required", rec.SessionID)
		}
	}
	return records, nil
}

func init() {
	sessionListCmd.Flags().StringP("user", "u", "", "Learner ID")
	sessionListCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show (0 = all)")
	sessionListCmd.Flags().Bool("json", false, "Print sessions as JSON")
	_ = sessionListCmd.MarkFlagRequired("user")

	sessionCmd.AddCommand(sessionRecordCmd)
	sessionCmd.AddCommand(sessionListCmd)
}
