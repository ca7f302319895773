package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/smkim/qflow/internal/config"
	"github.com/smkim/qflow/internal/session"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Session context tracking",
}

var sessionWatchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Track session activity from filesystem events",
	Long: `Watch a directory tree and record every written file into the session
context, as an alternative to hook-based tracking. Runs until
interrupted. Defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessionWatch,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current session context",
	RunE:  runSessionShow,
}

func init() {
	sessionCmd.AddCommand(sessionWatchCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	cfg := config.Get()
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	store := session.NewContextStore(cfg.Paths.ResolveContextFile(), log.Logger)
	ctx, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load session context: %w", err)
	}
	if ctx == nil {
		ctx = session.NewContext("")
	}

	watcher, err := session.NewWatcher(ctx, store, log.Logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.AddRoot(root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}

	watcher.Start()
	fmt.Printf("Watching %s (session %s). Press Ctrl-C to stop.\n", root, ctx.SessionID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	watcher.Stop()
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	store := session.NewContextStore(cfg.Paths.ResolveContextFile(), log.Logger)
	ctx, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load session context: %w", err)
	}
	if ctx == nil {
		return printJSON(map[string]any{"status": "no_context"})
	}

	return printJSON(map[string]any{
		"session_id":   ctx.SessionID,
		"files":        ctx.FileList(),
		"modules":      ctx.ModuleList(),
		"directories":  ctx.DirectoryList(),
		"started_at":   ctx.StartedAt,
		"last_updated": ctx.LastUpdated,
	})
}
