// Package format renders queue results for human consumption. The JSON
// surface is the default CLI output; these renderers back the --pretty
// flag with lipgloss styling.
package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smkim/qflow/internal/queue"
	"github.com/smkim/qflow/internal/task"
)

var (
	primaryColor = lipgloss.Color("#A78BFA") // Purple
	greenColor   = lipgloss.Color("#10B981")
	yellowColor  = lipgloss.Color("#FBBF24")
	redColor     = lipgloss.Color("#F87171")
	blueColor    = lipgloss.Color("#60A5FA")
	mutedColor   = lipgloss.Color("#9CA3AF")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	boldStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)
	greenStyle = lipgloss.NewStyle().Foreground(greenColor)
	redStyle   = lipgloss.NewStyle().Foreground(redColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 2)

	priorityStyles = map[task.Priority]lipgloss.Style{
		task.PriorityCritical: lipgloss.NewStyle().Foreground(redColor),
		task.PriorityHigh:     lipgloss.NewStyle().Foreground(yellowColor),
		task.PriorityNormal:   lipgloss.NewStyle(),
		task.PriorityLow:      mutedStyle,
	}

	statusIcons = map[task.Status]string{
		task.StatusQueued:    "⏳",
		task.StatusRunning:   "🔄",
		task.StatusCompleted: "✅",
		task.StatusFailed:    "❌",
		task.StatusCancelled: "🚫",
		task.StatusBlocked:   "🔒",
	}
)

func statusIcon(s task.Status) string {
	if icon, ok := statusIcons[s]; ok {
		return icon
	}
	return "❓"
}

func priorityStyle(p task.Priority) lipgloss.Style {
	if style, ok := priorityStyles[p]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Status renders the aggregate queue snapshot as a bordered summary box.
func Status(result *queue.StatusResult) string {
	body := fmt.Sprintf("🚀 %s\n\nQueued: %s  │  Running: %s  │  Today: ✅ %d  ❌ %d",
		titleStyle.Render("Queue Status"),
		lipgloss.NewStyle().Foreground(yellowColor).Render(fmt.Sprintf("%d", result.Queued)),
		greenStyle.Render(fmt.Sprintf("%d", result.Running)),
		result.CompletedToday,
		result.FailedToday,
	)
	return "\n" + boxStyle.Render(body) + "\n"
}

// List renders the task listing as a table ordered the way the queue
// would execute.
func List(result *queue.ListResult) string {
	if len(result.Tasks) == 0 {
		return "\n" + mutedStyle.Render("  📭 Queue is empty") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(boldStyle.Render("  #   ID           Command                              Priority   Status"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(" " + strings.Repeat("─", 75)))
	b.WriteString("\n")

	for i, t := range result.Tasks {
		command := t.Command
		if len(command) > 35 {
			command = command[:35] + "..."
		}
		priority := priorityStyle(t.Priority).Render(fmt.Sprintf("%-10s", t.Priority))
		fmt.Fprintf(&b, "  %-3d %-12s %-38s %s %s %s\n",
			i+1, clip(t.ID, 12), command, priority, statusIcon(t.Status), t.Status)
	}
	return b.String()
}

// Task renders one task's details.
func Task(t *task.Task) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(boldStyle.Render("  Task: " + t.ID))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Command:  %s\n", t.Command)
	fmt.Fprintf(&b, "  Priority: %s\n", priorityStyle(t.Priority).Render(t.Priority.String()))
	fmt.Fprintf(&b, "  Status:   %s %s\n", statusIcon(t.Status), t.Status)
	fmt.Fprintf(&b, "  Created:  %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	if t.StartedAt != nil {
		fmt.Fprintf(&b, "  Started:  %s\n", t.StartedAt.Format("2006-01-02 15:04:05"))
	}
	if len(t.DependsOn) > 0 {
		fmt.Fprintf(&b, "  Depends:  %s\n", strings.Join(t.DependsOn, ", "))
	}
	return b.String()
}

// Plan renders a parallel execution plan with its group breakdown.
func Plan(result *queue.PlanResult) string {
	if result.Error != "" {
		return Message(result.Error, "warning")
	}

	summary := result.ParallelPlan
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  Parallel Execution Plan"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "  Tasks: %d  Groups: %d  Max parallelism: %d\n",
		summary.TotalTasks, summary.TotalGroups, summary.MaxParallelism)
	fmt.Fprintf(&b, "  Sequential: %d units  Parallel: %d units  Savings: %s\n",
		summary.SequentialUnits, summary.ParallelUnits,
		greenStyle.Render(fmt.Sprintf("%.1f%%", summary.TimeSavingsPercent)))
	fmt.Fprintf(&b, "  Sessions needed: %d\n", summary.SessionsNeeded)
	if summary.CycleWarning {
		b.WriteString(redStyle.Render("  ⚠ dependency cycle detected, some tasks not grouped"))
		b.WriteString("\n")
	}
	if len(summary.UngroupedTaskIDs) > 0 {
		fmt.Fprintf(&b, "  Ungrouped: %s\n", strings.Join(summary.UngroupedTaskIDs, ", "))
	}

	for _, g := range result.Groups {
		b.WriteString("\n")
		label := fmt.Sprintf("  Group %d (%d task(s))", g.GroupID, g.TaskCount)
		if g.HasSoftConflicts {
			label += " " + lipgloss.NewStyle().Foreground(yellowColor).Render("⚠ soft conflicts")
		}
		b.WriteString(boldStyle.Render(label))
		b.WriteString("\n")
		for i, cmd := range g.TaskCommands {
			id := ""
			if i < len(g.TaskIDs) {
				id = g.TaskIDs[i]
			}
			fmt.Fprintf(&b, "    • %s  %s\n", clip(id, 12), cmd)
		}
	}
	b.WriteString("\n")
	return b.String()
}

// Conflicts renders the conflict section of an add result along with the
// resolution options.
func Conflicts(result *queue.AddResult) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(redStyle.Render(fmt.Sprintf("  ⚠ %d conflict(s) detected", len(result.Conflicts))))
	b.WriteString("\n\n")
	for _, c := range result.Conflicts {
		command := c.TaskCommand
		if len(command) > 40 {
			command = command[:40] + "..."
		}
		fmt.Fprintf(&b, "  %s  %s\n", clip(c.TaskID, 12), command)
		for _, reason := range c.Reasons {
			fmt.Fprintf(&b, "      %s\n", mutedStyle.Render(reason))
		}
	}
	if len(result.Options) > 0 {
		b.WriteString("\n")
		b.WriteString(boldStyle.Render("  Options:"))
		b.WriteString("\n")
		for _, opt := range result.Options {
			fmt.Fprintf(&b, "    %s\n", opt)
		}
	}
	return b.String()
}

// Analyze renders a pairwise conflict analysis.
func Analyze(result *queue.AnalyzeResult) string {
	if result.Error != "" {
		return Message(result.Error, "error")
	}

	levelStyle := greenStyle
	switch result.ConflictLevel {
	case "HARD":
		levelStyle = redStyle
	case "SOFT":
		levelStyle = lipgloss.NewStyle().Foreground(yellowColor)
	}

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s ↔ %s: %s\n", result.TaskA, result.TaskB, levelStyle.Render(result.ConflictLevel))
	fmt.Fprintf(&b, "  %s\n", result.Description)
	if result.CanParallel {
		b.WriteString(greenStyle.Render("  ✓ safe to run in parallel"))
	} else {
		b.WriteString(redStyle.Render("  ✗ must run sequentially"))
	}
	b.WriteString("\n")
	return b.String()
}

// Message renders a one-line message with a level marker.
func Message(message, level string) string {
	var prefix string
	switch level {
	case "success":
		prefix = greenStyle.Render("[✓]")
	case "warning":
		prefix = lipgloss.NewStyle().Foreground(yellowColor).Render("[!]")
	case "error":
		prefix = redStyle.Render("[✗]")
	default:
		prefix = lipgloss.NewStyle().Foreground(blueColor).Render("[i]")
	}
	return fmt.Sprintf("%s %s", prefix, message)
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
