package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smkim/qflow/internal/format"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queue counters",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.Status()
	if err != nil {
		return fmt.Errorf("failed to read queue status: %w", err)
	}

	if prettyOutput() {
		fmt.Print(format.Status(&result))
		return nil
	}
	return printJSON(result)
}
