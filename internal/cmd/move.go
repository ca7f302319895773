package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smkim/qflow/internal/format"
)

var moveCmd = &cobra.Command{
	Use:   "move [task-id] [first|last]",
	Short: "Move a task to the front or back of the queue",
	Long: `Move a task to the front (first) or back (last) of the queue by
rewriting its priority. Dependency order still wins over priority.`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.Move(args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to move task: %w", err)
	}

	if prettyOutput() {
		if result.Error != "" {
			fmt.Println(format.Message(result.Error, "error"))
			return nil
		}
		fmt.Println(format.Message(fmt.Sprintf("moved %s (priority %s)", result.Moved, result.NewPriority), "success"))
		return nil
	}
	return printJSON(result)
}
