package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smkim/qflow/internal/format"
)

var startCmd = &cobra.Command{
	Use:   "start [task-id]",
	Short: "Mark a queued task as running",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.Start(args[0])
	if err != nil {
		return fmt.Errorf("failed to start task: %w", err)
	}

	if prettyOutput() {
		if result.Error != "" {
			fmt.Println(format.Message(result.Error, "error"))
			return nil
		}
		fmt.Println(format.Message("started "+result.Started, "success"))
		return nil
	}
	return printJSON(result)
}
