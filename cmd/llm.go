package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/voxtutor/internal/llm"
	"github.com/abhisek/voxtutor/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls and their cost",
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failed, _ := cmd.Flags().GetBool("failed")
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{
			Limit:      limit,
			Purpose:    purpose,
			FailedOnly: failed,
		})
		if err != nil {
			return fmt.Errorf("query llm events: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, events)
		}
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM calls recorded.")
			return nil
		}
		tw := table(out)
		fmt.Fprintln(tw, "ID\tWHEN\tPURPOSE\tMODEL\tTOKENS\tMS\tSTATUS")
		for _, e := range events {
			status := "ok"
			if !e.Success {
				status = "failed"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d/%d\t%d\t%s\n",
				e.ID, e.Timestamp.Local().Format("01-02 15:04:05"), e.Purpose, truncate(e.Model, 28),
				e.InputTokens, e.OutputTokens, e.LatencyMs, status)
		}
		return tw.Flush()
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("event id %q is not a number", args[0])
		}
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd.OutOrStdout(), e)
		}

		out := cmd.OutOrStdout()
		tw := table(out)
		fmt.Fprintf(tw, "Call\t#%d at %s\n", e.ID, e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(tw, "Model\t%s via %s\n", e.Model, e.Provider)
		fmt.Fprintf(tw, "Purpose\t%s\n", e.Purpose)
		fmt.Fprintf(tw, "Tokens\t%d in, %d out\n", e.InputTokens, e.OutputTokens)
		if c := llm.LookupCost(e.Model); c != nil {
			fmt.Fprintf(tw, "Cost\t%s\n", formatCost(c.Cost(e.InputTokens, e.OutputTokens)))
		}
		fmt.Fprintf(tw, "Latency\t%dms\n", e.LatencyMs)
		if !e.Success {
			fmt.Fprintf(tw, "Error\t%s\n", e.ErrorMessage)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		section(out, "Prompt", e.RequestBody)
		section(out, "Reply", e.ResponseBody)
		return nil
	},
}

func section(w io.Writer, title, body string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	rule(w)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintln(w, strings.TrimRight(body, "\n"))
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage per purpose and estimated cost per model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("usage by purpose: %w", err)
		}
		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM calls recorded.")
			return nil
		}

		tw := table(out)
		fmt.Fprintln(tw, "PURPOSE\tCALLS\tIN\tOUT\tAVG MS")
		var calls, in, outTok int
		for _, u := range byPurpose {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
			calls += u.Calls
			in += u.InputTokens
			outTok += u.OutputTokens
		}
		fmt.Fprintf(tw, "total\t%d\t%d\t%d\t\n", calls, in, outTok)
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(out)
		tw = table(out)
		fmt.Fprintln(tw, "MODEL\tCALLS\tCOST")
		var total float64
		var unpriced []string
		for _, u := range byModel {
			c := llm.LookupCost(u.Model)
			if c == nil {
				unpriced = append(unpriced, u.Model)
				fmt.Fprintf(tw, "%s\t%d\t-\n", truncate(u.Model, 32), u.Calls)
				continue
			}
			cost := c.Cost(u.InputTokens, u.OutputTokens)
			total += cost
			fmt.Fprintf(tw, "%s\t%d\t%s\n", truncate(u.Model, 32), u.Calls, formatCost(cost))
		}
		fmt.Fprintf(tw, "total\t\t%s\n", formatCost(total))
		if err := tw.Flush(); err != nil {
			return err
		}
		if len(unpriced) > 0 {
			fmt.Fprintf(out, "\nNo pricing for %s; the total leaves them out.\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

var llmModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models with known per-million-token prices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		tw := table(cmd.OutOrStdout())
		fmt.Fprintln(tw, "MODEL\tIN $/MTOK\tOUT $/MTOK")
		for _, m := range llm.PricedModels() {
			fmt.Fprintf(tw, "%s\t%.3g\t%.3g\n", m.Model, m.Cost.InputPerMTok, m.Cost.OutputPerMTok)
		}
		return tw.Flush()
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "maximum calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "only calls with this purpose, e.g. coach-encourage")
	llmListCmd.Flags().Bool("failed", false, "only failed calls")
	llmListCmd.Flags().Bool("json", false, "print JSON")
	llmViewCmd.Flags().Bool("json", false, "print JSON")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd, llmModelsCmd)
}
