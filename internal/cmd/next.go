package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smkim/qflow/internal/format"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the next executable task",
	Long: `Show the highest-priority queued task whose dependencies are all
satisfied. Distinguishes an empty queue from one where every task is
blocked on incomplete dependencies.`,
	RunE: runNext,
}

func init() {
	rootCmd.AddCommand(nextCmd)
}

func runNext(cmd *cobra.Command, args []string) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.Next()
	if err != nil {
		return fmt.Errorf("failed to determine next task: %w", err)
	}

	if prettyOutput() {
		if result.Task != nil {
			fmt.Print(format.Task(result.Task))
			return nil
		}
		fmt.Println(format.Message(result.Message, "info"))
		return nil
	}
	return printJSON(result)
}
