package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smkim/qflow/internal/format"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the parallel execution plan",
	Long: `Group queued tasks into parallel execution groups. Tasks in the same
group have no dependency relationship and no hard conflict between them;
soft conflicts are allowed but flagged.`,
	RunE: runPlan,
}

var groupCmd = &cobra.Command{
	Use:   "group [number]",
	Short: "Show the tasks in one parallel group",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroup,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [task-id-a] [task-id-b]",
	Short: "Analyze the conflict level between two tasks",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.ParallelPlan()
	if err != nil {
		return fmt.Errorf("failed to build plan: %w", err)
	}

	if prettyOutput() {
		fmt.Print(format.Plan(&result))
		return nil
	}
	return printJSON(result)
}

func runGroup(cmd *cobra.Command, args []string) error {
	groupNum, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("group number must be an integer: %q", args[0])
	}

	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.ParallelGroup(groupNum)
	if err != nil {
		return fmt.Errorf("failed to read group: %w", err)
	}

	if prettyOutput() && result.Error != "" {
		fmt.Println(format.Message(result.Error, "error"))
		return nil
	}
	return printJSON(result)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.AnalyzeConflict(args[0], args[1])
	if err != nil {
		return fmt.Errorf("failed to analyze conflict: %w", err)
	}

	if prettyOutput() {
		fmt.Print(format.Analyze(&result))
		return nil
	}
	return printJSON(result)
}
