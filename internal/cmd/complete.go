package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smkim/qflow/internal/format"
)

var (
	completeFailed bool
	completeError  string
)

var completeCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task as completed or failed",
	Long: `Mark a task as completed (default) or failed (--failed). The task moves
to history, any on-success/on-fail chain command is enqueued, and the
result names the next executable task for auto-continuation.`,
	Args: cobra.ExactArgs(1),
	RunE: runComplete,
}

func init() {
	completeCmd.Flags().BoolVar(&completeFailed, "failed", false, "mark the task as failed instead of completed")
	completeCmd.Flags().StringVar(&completeError, "error", "", "error message to record with a failure")
	rootCmd.AddCommand(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.Complete(args[0], !completeFailed, completeError)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}

	if prettyOutput() {
		if result.Error != "" {
			fmt.Println(format.Message(result.Error, "error"))
			return nil
		}
		level := "success"
		if completeFailed {
			level = "warning"
		}
		fmt.Println(format.Message(fmt.Sprintf("%s %s", result.Status, result.TaskID), level))
		if result.NextTask != nil {
			fmt.Print(format.Task(result.NextTask))
		}
		return nil
	}
	return printJSON(result)
}
