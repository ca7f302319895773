package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smkim/qflow/internal/format"
	"github.com/smkim/qflow/internal/queue"
	"github.com/smkim/qflow/internal/task"
)

var (
	addPriority  string
	addDependsOn []string
	addOnSuccess string
	addOnFail    string
	addNote      string
)

var addCmd = &cobra.Command{
	Use:   "add [command]",
	Short: "Add a task to the queue",
	Long: `Add a task to the queue. The command text is analyzed for its
modification scope (files, modules, directories) and checked for conflicts
against every active task. When conflicts are found the task is NOT
enqueued; re-run with 'add-resolved' and a chosen resolution.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var addResolvedCmd = &cobra.Command{
	Use:   "add-resolved [command]",
	Short: "Add a task with a conflict resolution applied",
	Long: `Add a task that previously reported conflicts, applying a resolution:
  parallel - enqueue anyway, ignoring the conflicts
  depend   - enqueue with dependencies on the conflicting tasks
  cancel   - do not enqueue`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAddResolved,
}

var (
	addResolution  string
	addConflictIDs []string
)

func init() {
	for _, c := range []*cobra.Command{addCmd, addResolvedCmd} {
		c.Flags().StringVarP(&addPriority, "priority", "p", "normal", "task priority (critical, high, normal, low)")
		c.Flags().StringSliceVar(&addDependsOn, "depends-on", nil, "task ids that must complete first")
		c.Flags().StringVar(&addOnSuccess, "on-success", "", "follow-up command to enqueue on success")
		c.Flags().StringVar(&addOnFail, "on-fail", "", "follow-up command to enqueue on failure")
		c.Flags().StringVar(&addNote, "note", "", "free-text annotation")
	}
	addResolvedCmd.Flags().StringVar(&addResolution, "resolution", queue.ResolutionParallel, "conflict resolution (parallel, depend, cancel)")
	addResolvedCmd.Flags().StringSliceVar(&addConflictIDs, "conflicts-with", nil, "conflicting task ids (used by the depend resolution)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(addResolvedCmd)
}

func addOptions() task.Options {
	return task.Options{
		Priority:  task.ParsePriority(addPriority),
		DependsOn: addDependsOn,
		OnSuccess: addOnSuccess,
		OnFail:    addOnFail,
		Note:      addNote,
	}
}

func runAdd(cmd *cobra.Command, args []string) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.Add(strings.Join(args, " "), addOptions())
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	if prettyOutput() {
		if result.ActionRequired {
			fmt.Print(format.Conflicts(&result))
			return nil
		}
		fmt.Println(format.Message(fmt.Sprintf("added %s at position %d", result.Task.ID, result.Position), "success"))
		return nil
	}
	return printJSON(result)
}

func runAddResolved(cmd *cobra.Command, args []string) error {
	mgr, log, err := newManager()
	if err != nil {
		return err
	}
	defer log.Close()

	result, err := mgr.AddResolved(strings.Join(args, " "), addResolution, addConflictIDs, addOptions())
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}

	if prettyOutput() {
		if result.Message == "TASK_CANCELLED" {
			fmt.Println(format.Message("task cancelled, nothing enqueued", "info"))
			return nil
		}
		fmt.Println(format.Message(fmt.Sprintf("added %s (%s)", result.Task.ID, result.ResolutionApplied), "success"))
		return nil
	}
	return printJSON(result)
}
