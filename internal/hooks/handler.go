package hooks

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/smkim/qflow/internal/queue"
	"github.com/smkim/qflow/internal/session"
	"github.com/smkim/qflow/internal/task"
)

// Stop hook statuses.
const (
	StatusNoContext     = "no_context"
	StatusNoWorkTracked = "no_work_tracked"
	StatusNoQueuedTasks = "no_queued_tasks"
	StatusNoMatches     = "no_matches"
	StatusMatchesFound  = "matches_found"
)

// ContextSummary condenses the session context for hook output.
type ContextSummary struct {
	FilesCount  int      `json:"files_count"`
	Modules     []string `json:"modules"`
	Directories []string `json:"directories"`
}

// StopResult is the outcome of the Stop hook.
type StopResult struct {
	Status         string          `json:"status"`
	MatchingTasks  []*task.Task    `json:"matching_tasks"`
	ContextSummary *ContextSummary `json:"context_summary,omitempty"`
}

// Handler wires the hook events to the queue and session context.
type Handler struct {
	queue        *queue.Manager
	contexts     *session.ContextStore
	matcher      *session.Matcher
	continuation *ContinuationManager
	threshold    float64
	trackReads   bool
	log          *slog.Logger
}

// Options configures optional Handler behavior.
type Options struct {
	// Threshold is the minimum match score; zero means the default.
	Threshold float64
	// TrackReads also records files from Read tool uses.
	TrackReads bool
}

// NewHandler creates a hook handler.
func NewHandler(q *queue.Manager, contexts *session.ContextStore, cont *ContinuationManager, opts Options, log *slog.Logger) *Handler {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = session.DefaultMatchThreshold
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		queue:        q,
		contexts:     contexts,
		matcher:      session.NewMatcher(),
		continuation: cont,
		threshold:    threshold,
		trackReads:   opts.TrackReads,
		log:          log,
	}
}

// PostToolUse records file activity from a tool use. Only Write and Edit
// count by default; Read counts when TrackReads is on. Anything else is
// ignored, as other tools carry no useful file context.
func (h *Handler) PostToolUse(in *PostToolUseInput) error {
	switch in.ToolName {
	case "Write", "Edit":
	case "Read":
		if !h.trackReads {
			return nil
		}
	default:
		return nil
	}

	path := in.FilePath()
	if path == "" {
		return nil
	}

	ctx, err := h.contexts.Load()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = session.NewContext(in.SessionID)
	}
	ctx.AddFile(path)
	return h.contexts.Save(ctx)
}

// Stop finds queued tasks matching the session's work, arms the
// auto-continuation flag when the queue still has runnable work, and
// discards the consumed context. The context is deleted in every branch
// past the no_context check so the next session starts clean.
func (h *Handler) Stop() (*StopResult, error) {
	ctx, err := h.contexts.Load()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		h.armContinuation()
		return &StopResult{Status: StatusNoContext, MatchingTasks: []*task.Task{}}, nil
	}

	defer func() {
		if err := h.contexts.Cleanup(); err != nil {
			h.log.Warn("failed to remove session context", "error", err)
		}
	}()

	if !ctx.HasWork() {
		h.armContinuation()
		return &StopResult{Status: StatusNoWorkTracked, MatchingTasks: []*task.Task{}}, nil
	}

	queued, err := h.queue.QueuedTasks()
	if err != nil {
		return nil, err
	}
	if len(queued) == 0 {
		return &StopResult{Status: StatusNoQueuedTasks, MatchingTasks: []*task.Task{}}, nil
	}

	h.armContinuation()

	matching := h.matcher.FindMatching(queued, ctx, h.threshold)
	if len(matching) == 0 {
		return &StopResult{Status: StatusNoMatches, MatchingTasks: []*task.Task{}}, nil
	}

	modules := ctx.ModuleList()
	if len(modules) > 5 {
		modules = modules[:5]
	}
	dirs := ctx.DirectoryList()
	if len(dirs) > 3 {
		dirs = dirs[:3]
	}

	return &StopResult{
		Status:        StatusMatchesFound,
		MatchingTasks: matching,
		ContextSummary: &ContextSummary{
			FilesCount:  len(ctx.Files),
			Modules:     modules,
			Directories: dirs,
		},
	}, nil
}

// armContinuation sets the continuation flag when an executable queued
// task exists. Failures are logged only; the hook must not fail the
// session over a flag file.
func (h *Handler) armContinuation() {
	if h.continuation == nil {
		return
	}

	next, err := h.queue.Next()
	if err != nil {
		h.log.Warn("failed to load queue for continuation", "error", err)
		return
	}
	if next.Task == nil {
		return
	}

	info := ContinuationInfo{
		TaskID:    next.Task.ID,
		Command:   next.Task.Command,
		Priority:  next.Task.Priority.String(),
		Remaining: next.Remaining,
	}
	if err := h.continuation.Set(info); err != nil {
		h.log.Warn("failed to set continuation flag", "error", err)
	}
}

// UserPrompt consumes a pending continuation flag and returns the system
// reminder to inject, or "" when nothing is pending.
func (h *Handler) UserPrompt() string {
	if h.continuation == nil {
		return ""
	}
	info := h.continuation.Get()
	if info == nil {
		return ""
	}
	h.continuation.Clear()
	return FormatReminder(info)
}

// FormatMatches renders a Stop result for console output. Only
// matches_found produces output; everything else renders empty.
func FormatMatches(result *StopResult, maxDisplay int) string {
	if result == nil || result.Status != StatusMatchesFound || len(result.MatchingTasks) == 0 {
		return ""
	}
	if maxDisplay <= 0 {
		maxDisplay = 3
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n🔄 Found %d queued task(s) matching your session:\n", len(result.MatchingTasks))

	shown := result.MatchingTasks
	if len(shown) > maxDisplay {
		shown = shown[:maxDisplay]
	}
	for _, t := range shown {
		command := t.Command
		if runes := []rune(command); len(runes) > 50 {
			command = string(runes[:47]) + "..."
		}
		fmt.Fprintf(&b, "   • %s\n", command)
	}
	if remaining := len(result.MatchingTasks) - maxDisplay; remaining > 0 {
		fmt.Fprintf(&b, "   ... and %d more\n", remaining)
	}

	b.WriteString("\nRun `/queue:next` to continue with queued tasks.\n")
	return b.String()
}
