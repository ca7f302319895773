package session

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/smkim/qflow/internal/logging"
)

func newTestContextStore(t *testing.T) *ContextStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session_context.json")
	return NewContextStore(path, logging.Discard().Logger)
}

func TestContextStoreRoundTrip(t *testing.T) {
	s := newTestContextStore(t)

	c := NewContext("session-roundtrip")
	c.AddFile("src/auth/login.ts")
	c.AddModule("payment")
	if err := s.Save(c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("Load() = nil, want the saved context")
	}
	if got.SessionID != "session-roundtrip" {
		t.Errorf("SessionID = %q, want session-roundtrip", got.SessionID)
	}
	if !reflect.DeepEqual(got.FileList(), c.FileList()) {
		t.Errorf("FileList() = %v, want %v", got.FileList(), c.FileList())
	}
	if !reflect.DeepEqual(got.ModuleList(), c.ModuleList()) {
		t.Errorf("ModuleList() = %v, want %v", got.ModuleList(), c.ModuleList())
	}
	if !reflect.DeepEqual(got.DirectoryList(), c.DirectoryList()) {
		t.Errorf("DirectoryList() = %v, want %v", got.DirectoryList(), c.DirectoryList())
	}
}

func TestContextStoreLoadMissing(t *testing.T) {
	s := newTestContextStore(t)

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != nil {
		t.Errorf("Load() = %+v, want nil for a missing file", got)
	}
}

func TestContextStoreLoadCorrupt(t *testing.T) {
	s := newTestContextStore(t)
	if err := os.WriteFile(s.Path(), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != nil {
		t.Errorf("Load() = %+v, want nil for a corrupt file", got)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("corrupt context file was not deleted")
	}
}

func TestContextStoreCleanup(t *testing.T) {
	s := newTestContextStore(t)
	if err := s.Save(NewContext("session-x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("context file still present after cleanup")
	}

	// Cleaning up twice is fine.
	if err := s.Cleanup(); err != nil {
		t.Errorf("second Cleanup() error = %v", err)
	}
}
