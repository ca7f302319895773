package hooks

import (
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/smkim/qflow/internal/logging"
	"github.com/smkim/qflow/internal/queue"
	"github.com/smkim/qflow/internal/scope"
	"github.com/smkim/qflow/internal/session"
	"github.com/smkim/qflow/internal/task"
)

type hookFixture struct {
	handler  *Handler
	manager  *queue.Manager
	contexts *session.ContextStore
	flags    *ContinuationManager
}

func newFixture(t *testing.T, opts Options) *hookFixture {
	t.Helper()
	dir := t.TempDir()
	log := logging.Discard()

	store := queue.NewStore(
		filepath.Join(dir, "tasks.json"),
		filepath.Join(dir, "history.json"),
		log.Logger,
	)
	manager := queue.NewManager(store, scope.Default(), log.Logger)
	contexts := session.NewContextStore(filepath.Join(dir, "session_context.json"), log.Logger)
	flags := NewContinuationManager(filepath.Join(dir, ".auto_continue"), 0)

	return &hookFixture{
		handler:  NewHandler(manager, contexts, flags, opts, log.Logger),
		manager:  manager,
		contexts: contexts,
		flags:    flags,
	}
}

func enqueue(t *testing.T, f *hookFixture, command string) *task.Task {
	t.Helper()
	result, err := f.manager.AddResolved(command, queue.ResolutionParallel, nil, task.Options{})
	if err != nil {
		t.Fatalf("AddResolved(%q) error = %v", command, err)
	}
	return result.Task
}

func TestPostToolUseTracksWrites(t *testing.T) {
	f := newFixture(t, Options{})

	err := f.handler.PostToolUse(&PostToolUseInput{
		SessionID: "session-test",
		ToolName:  "Edit",
		ToolInput: map[string]any{"file_path": "src/auth/login.ts"},
	})
	if err != nil {
		t.Fatalf("PostToolUse() error = %v", err)
	}

	ctx, err := f.contexts.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ctx == nil {
		t.Fatal("no context was persisted")
	}
	if _, ok := ctx.Files["src/auth/login.ts"]; !ok {
		t.Errorf("Files = %v, want the edited file tracked", ctx.FileList())
	}
}

func TestPostToolUseIgnoresReadsByDefault(t *testing.T) {
	f := newFixture(t, Options{})

	err := f.handler.PostToolUse(&PostToolUseInput{
		ToolName:  "Read",
		ToolInput: map[string]any{"file_path": "src/auth/login.ts"},
	})
	if err != nil {
		t.Fatalf("PostToolUse() error = %v", err)
	}
	if ctx, _ := f.contexts.Load(); ctx != nil {
		t.Errorf("context = %+v, want Read ignored", ctx)
	}

	f2 := newFixture(t, Options{TrackReads: true})
	if err := f2.handler.PostToolUse(&PostToolUseInput{
		ToolName:  "Read",
		ToolInput: map[string]any{"file_path": "src/auth/login.ts"},
	}); err != nil {
		t.Fatalf("PostToolUse() error = %v", err)
	}
	if ctx, _ := f2.contexts.Load(); ctx == nil {
		t.Error("TrackReads should persist Read activity")
	}
}

func TestPostToolUseIgnoresOtherTools(t *testing.T) {
	f := newFixture(t, Options{})
	err := f.handler.PostToolUse(&PostToolUseInput{
		ToolName:  "Bash",
		ToolInput: map[string]any{"command": "ls"},
	})
	if err != nil {
		t.Fatalf("PostToolUse() error = %v", err)
	}
	if ctx, _ := f.contexts.Load(); ctx != nil {
		t.Error("Bash tool use should not create a context")
	}
}

func TestStopStatuses(t *testing.T) {
	t.Run("no context", func(t *testing.T) {
		f := newFixture(t, Options{})
		result, err := f.handler.Stop()
		if err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
		if result.Status != StatusNoContext {
			t.Errorf("Status = %q, want %q", result.Status, StatusNoContext)
		}
	})

	t.Run("no work tracked", func(t *testing.T) {
		f := newFixture(t, Options{})
		if err := f.contexts.Save(session.NewContext("session-test")); err != nil {
			t.Fatal(err)
		}
		result, err := f.handler.Stop()
		if err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
		if result.Status != StatusNoWorkTracked {
			t.Errorf("Status = %q, want %q", result.Status, StatusNoWorkTracked)
		}
	})

	t.Run("no queued tasks", func(t *testing.T) {
		f := newFixture(t, Options{})
		ctx := session.NewContext("session-test")
		ctx.AddFile("src/auth/login.ts")
		if err := f.contexts.Save(ctx); err != nil {
			t.Fatal(err)
		}
		result, err := f.handler.Stop()
		if err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
		if result.Status != StatusNoQueuedTasks {
			t.Errorf("Status = %q, want %q", result.Status, StatusNoQueuedTasks)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		f := newFixture(t, Options{})
		enqueue(t, f, "update billing.go totals")
		ctx := session.NewContext("session-test")
		ctx.AddFile("src/auth/login.ts")
		if err := f.contexts.Save(ctx); err != nil {
			t.Fatal(err)
		}
		result, err := f.handler.Stop()
		if err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
		if result.Status != StatusNoMatches {
			t.Errorf("Status = %q, want %q", result.Status, StatusNoMatches)
		}
	})

	t.Run("matches found", func(t *testing.T) {
		f := newFixture(t, Options{})
		match := enqueue(t, f, "refactor login.ts validation")
		enqueue(t, f, "update billing.go totals")

		ctx := session.NewContext("session-test")
		ctx.AddFile("src/auth/login.ts")
		if err := f.contexts.Save(ctx); err != nil {
			t.Fatal(err)
		}

		result, err := f.handler.Stop()
		if err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
		if result.Status != StatusMatchesFound {
			t.Fatalf("Status = %q, want %q", result.Status, StatusMatchesFound)
		}
		if len(result.MatchingTasks) != 1 || result.MatchingTasks[0].ID != match.ID {
			t.Errorf("MatchingTasks = %+v, want [%s]", result.MatchingTasks, match.ID)
		}
		if result.ContextSummary == nil || result.ContextSummary.FilesCount != 1 {
			t.Errorf("ContextSummary = %+v, want 1 file", result.ContextSummary)
		}
	})
}

func TestStopConsumesContext(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := session.NewContext("session-test")
	ctx.AddFile("src/auth/login.ts")
	if err := f.contexts.Save(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := f.handler.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got, _ := f.contexts.Load(); got != nil {
		t.Error("context should be removed after Stop")
	}
}

func TestStopArmsContinuation(t *testing.T) {
	f := newFixture(t, Options{})
	queued := enqueue(t, f, "update billing.go totals")

	ctx := session.NewContext("session-test")
	ctx.AddFile("src/auth/login.ts")
	if err := f.contexts.Save(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := f.handler.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	info := f.flags.Get()
	if info == nil {
		t.Fatal("continuation flag was not armed")
	}
	if info.TaskID != queued.ID {
		t.Errorf("flag TaskID = %q, want %q", info.TaskID, queued.ID)
	}
}

func TestUserPromptConsumesFlag(t *testing.T) {
	f := newFixture(t, Options{})
	if err := f.flags.Set(ContinuationInfo{TaskID: "task-abc", Command: "fix the login bug"}); err != nil {
		t.Fatal(err)
	}

	got := f.handler.UserPrompt()
	if !strings.Contains(got, "task-abc") {
		t.Errorf("reminder = %q, want the task id", got)
	}
	if again := f.handler.UserPrompt(); again != "" {
		t.Errorf("second UserPrompt() = %q, want empty after consumption", again)
	}
}

func TestFormatMatches(t *testing.T) {
	longCommand := strings.Repeat("x", 60)
	result := &StopResult{
		Status: StatusMatchesFound,
		MatchingTasks: []*task.Task{
			task.New("fix the login bug", task.Options{}),
			task.New(longCommand, task.Options{}),
			task.New("update checkout module", task.Options{}),
			task.New("tidy readme.md", task.Options{}),
		},
	}

	got := FormatMatches(result, 3)
	if !strings.Contains(got, "Found 4 queued task(s)") {
		t.Errorf("output missing count header:\n%s", got)
	}
	if !strings.Contains(got, strings.Repeat("x", 47)+"...") {
		t.Errorf("long command not truncated:\n%s", got)
	}
	if !strings.Contains(got, "... and 1 more") {
		t.Errorf("overflow line missing:\n%s", got)
	}
	if !strings.Contains(got, "/queue:next") {
		t.Errorf("output missing continue hint:\n%s", got)
	}

	koreanCommand := strings.Repeat("회원가입 모듈 마이그레이션 ", 5)
	got = FormatMatches(&StopResult{
		Status:        StatusMatchesFound,
		MatchingTasks: []*task.Task{task.New(koreanCommand, task.Options{})},
	}, 3)
	if !utf8.ValidString(got) {
		t.Errorf("truncated Korean command produced invalid UTF-8:\n%s", got)
	}

	if FormatMatches(&StopResult{Status: StatusNoMatches}, 3) != "" {
		t.Error("non-match statuses should render empty")
	}
	if FormatMatches(nil, 3) != "" {
		t.Error("nil result should render empty")
	}
}

func TestParseInput(t *testing.T) {
	in, err := ParseInput[PostToolUseInput](strings.NewReader(
		`{"session_id":"s1","tool_name":"Edit","tool_input":{"file_path":"a.go"}}`))
	if err != nil {
		t.Fatalf("ParseInput() error = %v", err)
	}
	if in.ToolName != "Edit" || in.FilePath() != "a.go" {
		t.Errorf("parsed = %+v", in)
	}

	empty, err := ParseInput[StopInput](strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseInput(empty) error = %v", err)
	}
	if empty.SessionID != "" {
		t.Errorf("empty stream should yield zero value, got %+v", empty)
	}

	if _, err := ParseInput[StopInput](strings.NewReader("{bad")); err == nil {
		t.Error("malformed JSON should error")
	}
}
