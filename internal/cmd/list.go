package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smkim/qflow/internal/format"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks in dependency-aware execution order",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status (queued, running, completed, failed, cancelled)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.List(listStatus)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}

	if prettyOutput() {
		fmt.Print(format.List(&result))
		return nil
	}
	return printJSON(result)
}
