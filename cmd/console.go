package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/voxtutor/internal/console"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Practise a typed conversation against the tutor pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		topic, _ := cmd.Flags().GetString("topic")
		persona, _ := cmd.Flags().GetString("persona")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		return console.Run(cmd.Context(), e.orch, console.Options{
			UserID:  userID,
			Topic:   topic,
			Persona: persona,
		})
	},
}

func init() {
	consoleCmd.Flags().StringP("user", "u", "console", "Learner ID")
	consoleCmd.Flags().StringP("topic", "t", "", "Opening topic")
	consoleCmd.Flags().String("persona", "", "Opening persona (default: chosen from the learner's goals)")
}
