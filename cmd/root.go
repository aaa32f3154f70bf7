package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/voxtutor/internal/config"
	"github.com/abhisek/voxtutor/internal/logging"
	"github.com/abhisek/voxtutor/internal/store"
)

var (
	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "voxtutor",
	Short: "Decision engine for a voice language tutor",
	Long: "voxtutor analyses learner engagement, plans topics and difficulty, tracks progress trends\n" +
		"and coordinates tutor personas. Run it as an HTTP service or use the subcommands directly.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.DefaultPath()
		}
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			c.Log.Level = "debug"
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		l, err := logging.New(c.Log.Level, c.Log.Format)
		if err != nil {
			return err
		}
		cfg, log = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/voxtutor/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides VOXTUTOR_DB env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(consoleCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file or VOXTUTOR_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, nil
	}
	if cfg != nil && cfg.Store.Path != "" {
		return cfg.Store.Path, nil
	}
	return store.DefaultDBPath()
}

// openStore opens the SQLite store for cmd.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(cmd.Context(), dbPath, store.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
