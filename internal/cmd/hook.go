package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smkim/qflow/internal/config"
	"github.com/smkim/qflow/internal/hooks"
	"github.com/smkim/qflow/internal/logging"
	"github.com/smkim/qflow/internal/session"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Claude Code hook entry points",
	Long: `Hook entry points wired into Claude Code's settings. Each reads its
event payload from stdin. Hooks never exit non-zero for domain
conditions; a broken hook must not break the host session.`,
}

var hookPostToolUseCmd = &cobra.Command{
	Use:   "post-tool-use",
	Short: "Record file activity from a tool use (PostToolUse event)",
	RunE:  runHookPostToolUse,
}

var hookStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Match queued tasks against the session context (Stop event)",
	RunE:  runHookStop,
}

var hookUserPromptCmd = &cobra.Command{
	Use:   "user-prompt",
	Short: "Replay a pending continuation (UserPromptSubmit event)",
	RunE:  runHookUserPrompt,
}

func init() {
	hookCmd.AddCommand(hookPostToolUseCmd)
	hookCmd.AddCommand(hookStopCmd)
	hookCmd.AddCommand(hookUserPromptCmd)
	rootCmd.AddCommand(hookCmd)
}

// newHookHandler builds the hook handler from the active configuration.
func newHookHandler() (*hooks.Handler, *logging.Logger, error) {
	mgr, log, err := newManager()
	if err != nil {
		return nil, nil, err
	}

	cfg := config.Get()
	contexts := session.NewContextStore(cfg.Paths.ResolveContextFile(), log.Logger)
	continuation := hooks.NewContinuationManager(cfg.Paths.ResolveFlagFile(), cfg.Continuation.TTL())

	handler := hooks.NewHandler(mgr, contexts, continuation, hooks.Options{
		Threshold:  cfg.Matcher.Threshold,
		TrackReads: cfg.Hooks.TrackReads,
	}, log.Logger)
	return handler, log, nil
}

func runHookPostToolUse(cmd *cobra.Command, args []string) error {
	handler, log, err := newHookHandler()
	if err != nil {
		return nil // see hookCmd doc: never fail the session
	}
	defer log.Close()

	in, err := hooks.ParseInput[hooks.PostToolUseInput](os.Stdin)
	if err != nil {
		log.Warn("failed to parse hook input", "error", err)
		return nil
	}
	if err := handler.PostToolUse(&in); err != nil {
		log.Warn("post-tool-use hook failed", "error", err)
	}
	return nil
}

func runHookStop(cmd *cobra.Command, args []string) error {
	handler, log, err := newHookHandler()
	if err != nil {
		return nil
	}
	defer log.Close()

	// Stop payload is read for protocol compliance; the handler works
	// from persisted state alone.
	if _, err := hooks.ParseInput[hooks.StopInput](os.Stdin); err != nil {
		log.Warn("failed to parse hook input", "error", err)
	}

	result, err := handler.Stop()
	if err != nil {
		log.Warn("stop hook failed", "error", err)
		return nil
	}

	if output := hooks.FormatMatches(result, 3); output != "" {
		fmt.Print(output)
	}
	return nil
}

func runHookUserPrompt(cmd *cobra.Command, args []string) error {
	handler, log, err := newHookHandler()
	if err != nil {
		return nil
	}
	defer log.Close()

	if _, err := hooks.ParseInput[hooks.UserPromptInput](os.Stdin); err != nil {
		log.Warn("failed to parse hook input", "error", err)
	}

	if reminder := handler.UserPrompt(); reminder != "" {
		fmt.Println(reminder)
	}
	return nil
}
