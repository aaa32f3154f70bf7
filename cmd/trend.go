package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/voxtutor/internal/trend"
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show a learner's performance trend",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		tfFlag, _ := cmd.Flags().GetString("timeframe")
		asJSON, _ := cmd.Flags().GetBool("json")

		tf, err := trend.ParseTimeframe(tfFlag)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		history, err := st.SessionRepo().GetSessionHistory(cmd.Context(), userID, 0)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		res := trend.Analyze(history, tf, time.Now())

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, res)
		}

		fmt.Fprintf(out, "Trend for %s over %s\n", userID, tf)
		rule(out)
		fmt.Fprintf(out, "Direction:   %s\n", res.Trend)
		fmt.Fprintf(out, "Confidence:  %s\n", percent(res.Confidence))
		fmt.Fprintf(out, "Sessions:    %d\n", res.Sessions)
		if res.Sessions > 0 {
			fmt.Fprintf(out, "Change:      %+.1f points (%.1f -> %.1f)\n",
				res.Change, res.FirstHalfMean, res.SecondHalfMean)
		}
		for _, r := range res.Recommendations {
			fmt.Fprintf(out, "  - %s\n", r)
		}
		return nil
	},
}

func init() {
	trendCmd.Flags().StringP("user", "u", "", "Learner ID")
	trendCmd.Flags().StringP("timeframe", "t", "all", "week, month or all")
	trendCmd.Flags().Bool("json", false, "Print results as JSON")
	_ = trendCmd.MarkFlagRequired("user")
}
