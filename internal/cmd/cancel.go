package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smkim/qflow/internal/format"
	"github.com/smkim/qflow/internal/queue"
)

var cancelAll bool

var cancelCmd = &cobra.Command{
	Use:   "cancel [task-id]",
	Short: "Cancel a queued or running task",
	Long: `Cancel a task by id, or every active task with --all. Cancelled tasks
are recorded in history and removed from the active queue.`,
	RunE: runCancel,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Cancel all active tasks",
	RunE:  runClear,
}

func init() {
	cancelCmd.Flags().BoolVar(&cancelAll, "all", false, "cancel every active task")
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(clearCmd)
}

func runCancel(cmd *cobra.Command, args []string) error {
	if !cancelAll && len(args) == 0 {
		return fmt.Errorf("task id required (or use --all)")
	}

	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	var result queue.CancelResult
	if cancelAll {
		result, err = mgr.CancelAll()
	} else {
		result, err = mgr.Cancel(args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to cancel: %w", err)
	}

	if prettyOutput() {
		fmt.Println(format.Message(fmt.Sprintf("cancelled %d task(s), %d remaining", len(result.Cancelled), result.Remaining), "success"))
		return nil
	}
	return printJSON(result)
}

func runClear(cmd *cobra.Command, args []string) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear queue: %w", err)
	}

	if prettyOutput() {
		fmt.Println(format.Message(fmt.Sprintf("cleared %d task(s)", len(result.Cancelled)), "success"))
		return nil
	}
	return printJSON(result)
}
