// Package cmd implements the qflow command line interface.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smkim/qflow/internal/config"
	"github.com/smkim/qflow/internal/logging"
	"github.com/smkim/qflow/internal/queue"
	"github.com/smkim/qflow/internal/scope"
)

var rootCmd = &cobra.Command{
	Use:   "qflow",
	Short: "Context-aware task queue for Claude Code sessions",
	Long: `Qflow queues follow-up tasks for Claude Code sessions, analyzes their
modification scopes for conflicts, orders them by dependencies, and plans
which tasks can safely run in parallel. Session hooks match queued work
against what the current session actually touched.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/qflow/config.yaml)")
	rootCmd.PersistentFlags().String("queue-dir", "", "queue state directory (default is ~/.claude/queue)")
	rootCmd.PersistentFlags().Bool("pretty", false, "render human-readable output instead of JSON")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("paths.queue_dir", rootCmd.PersistentFlags().Lookup("queue-dir"))
	_ = viper.BindPFlag("output.pretty", rootCmd.PersistentFlags().Lookup("pretty"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/qflow")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("QFLOW")
	// Replace dots with underscores for nested keys in env vars
	// e.g., QFLOW_MATCHER_THRESHOLD for matcher.threshold
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newManager builds the queue manager from the active configuration. The
// returned logger must be closed by the caller.
func newManager() (*queue.Manager, *logging.Logger, error) {
	cfg := config.Get()

	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	store := queue.NewStore(cfg.Paths.ResolveTasksFile(), cfg.Paths.ResolveHistoryFile(), log.Logger)
	return queue.NewManager(store, scope.Default(), log.Logger), log, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	if !cfg.Logging.Enabled {
		return logging.Discard(), nil
	}
	log, err := logging.NewLogger(cfg.Paths.ResolveQueueDir(), cfg.Logging.Level)
	if err != nil {
		// Logging must not block queue operations.
		return logging.Discard(), nil
	}
	return log, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func prettyOutput() bool {
	return viper.GetBool("output.pretty")
}
