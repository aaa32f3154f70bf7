package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/engagement"
	"github.com/abhisek/voxtutor/internal/orchestrator"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <transcript.json>...",
	Short: "Analyse engagement for one or more conversation transcripts",
	Long: "Reads JSON transcripts ({session_id, user_id, topic, duration_sec, turns}) and reports\n" +
		"engagement score, risk, detected patterns and recommended interventions. Use - for stdin.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		showPatterns, _ := cmd.Flags().GetBool("patterns")

		transcripts := make([]conversation.Transcript, 0, len(args))
		for _, path := range args {
			tr, err := readTranscript(path)
			if err != nil {
				return err
			}
			transcripts = append(transcripts, *tr)
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		results, err := e.orch.AnalyzeBatch(cmd.Context(), transcripts)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, results)
		}
		for i, res := range results {
			if i > 0 {
				fmt.Fprintln(out)
			}
			var matches []engagement.PatternMatch
			if showPatterns {
				matches = e.analyzer.Weights.DetectPatterns(transcripts[i].Turns)
			}
			printAnalysis(out, res, matches)
		}
		return nil
	},
}

func readTranscript(path string) (*conversation.Transcript, error) {
	r, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	tr, err := conversation.DecodeTranscript(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

func printAnalysis(w io.Writer, res orchestrator.BatchResult, matches []engagement.PatternMatch) {
	fmt.Fprintf(w, "Session %s  (learner %s)\n", res.SessionID, res.UserID)
	rule(w)
	if res.Error != "" {
		fmt.Fprintf(w, "error: %s\n", res.Error)
		return
	}
	an := res.Analysis
	fmt.Fprintf(w, "Engagement:  %s\n", percent(an.OverallEngagement))
	fmt.Fprintf(w, "Risk:        %s\n", an.RiskLevel)
	fmt.Fprintf(w, "Urgency:     %s\n", an.InterventionUrgency)
	fmt.Fprintf(w, "Tone:        %s   participation %s   latency %.0fms   confidence %s\n",
		an.Signals.EmotionalTone, an.Signals.ParticipationLevel,
		an.Signals.ResponseLatencyMs, percent(an.Signals.ConfidenceLevel))
	if len(an.Signals.FrustrationIndicators) > 0 {
		fmt.Fprintf(w, "Frustration: %s\n", strings.Join(an.Signals.FrustrationIndicators, ", "))
	}
	if len(an.DetectedPatterns) > 0 {
		fmt.Fprintf(w, "Patterns:    %s\n", strings.Join(an.DetectedPatterns, ", "))
	}
	for _, m := range matches {
		fmt.Fprintf(w, "  %-24s %s  %s\n", m.Pattern, percent(m.Confidence), m.Description)
	}

	if len(an.RecommendedActions) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-10s  %-18s  %-6s  %-6s  %s\n", "Horizon", "Action", "Prio", "Impact", "Description")
	for _, a := range an.RecommendedActions {
		fmt.Fprintf(w, "%-10s  %-18s  %-6s  %-6s  %s\n",
			a.Horizon, a.Type, a.Priority, percent(a.ExpectedImpact), a.Description)
	}
}

func init() {
	analyzeCmd.Flags().Bool("json", false, "Print results as JSON")
	analyzeCmd.Flags().BoolP("patterns", "p", false, "Show pattern confidence and descriptions")
}
