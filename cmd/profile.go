package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/voxtutor/internal/learner"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage learner profiles",
}

var profileImportCmd = &cobra.Command{
	Use:   "import <profiles.json>",
	Short: "Import one profile or an array of profiles from JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		profiles, err := decodeProfiles(r)
		if err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		repo := st.ProfileRepo()
		for _, p := range profiles {
			if err := repo.SaveUserProfile(cmd.Context(), p); err != nil {
				return fmt.Errorf("save %s: %w", p.UserID, err)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d profile(s).\n", len(profiles))
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show <user-id>",
	Short: "Show a stored learner profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		p, err := st.ProfileRepo().GetUserProfile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, p)
		}

		goals := make([]string, len(p.LearningGoals))
		for i, g := range p.LearningGoals {
			goals[i] = string(g)
		}
		fmt.Fprintf(out, "Learner %s\n", p.UserID)
		rule(out)
		fmt.Fprintf(out, "Level:       %s\n", p.Level().DisplayName())
		fmt.Fprintf(out, "Goals:       %s\n", strings.Join(goals, ", "))
		fmt.Fprintf(out, "Topics:      %s\n", strings.Join(p.PreferredTopics, ", "))
		fmt.Fprintf(out, "Grammar:     %s\n", percent(p.Progress.GrammarProgress))
		fmt.Fprintf(out, "Fluency:     %s\n", percent(p.Progress.FluencyProgress))
		fmt.Fprintf(out, "Vocabulary:  %s\n", percent(p.Progress.VocabularyGrowth))
		fmt.Fprintf(out, "Confidence:  %s\n", percent(p.Progress.ConfidenceLevel))
		fmt.Fprintf(out, "Sessions:    %d   streak %d day(s)\n", p.Progress.SessionsCompleted, p.Progress.StreakDays)
		return nil
	},
}

// decodeProfiles accepts a single profile object or an array of them.
func decodeProfiles(r io.Reader) ([]learner.Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	data = bytes.TrimSpace(data)

	var profiles []learner.Profile
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &profiles)
	} else {
		var p learner.Profile
		err = json.Unmarshal(data, &p)
		profiles = []learner.Profile{p}
	}
	if err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}

	for i, p := range profiles {
		if p.UserID == "" {
			return nil, fmt.Errorf("profile %d: user_id is required", i)
		}
		if p.CurrentLevel != "" && !p.CurrentLevel.Valid() {
			return nil, fmt.Errorf("profile %s: unknown level %q", p.UserID, p.CurrentLevel)
		}
	}
	return profiles, nil
}

func init() {
	profileShowCmd.Flags().Bool("json", false, "Print the profile as JSON")

	profileCmd.AddCommand(profileImportCmd)
	profileCmd.AddCommand(profileShowCmd)
}
