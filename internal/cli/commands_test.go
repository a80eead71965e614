package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"samplerun/internal/session"
)

func TestBuildApp_RegistersAllSessions(t *testing.T) {
	app := BuildApp("test", Deps{Root: t.TempDir()})

	for _, name := range []string{"tests", "lint", "gae", "grpc", "travis", "reqcheck", "list", "watch", "version"} {
		if _, ok := app.commands[name]; !ok {
			t.Errorf("session %q not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	app := BuildApp("1.2.3", Deps{Root: t.TempDir()})
	if code := app.Execute([]string{"version"}); code != 0 {
		t.Errorf("version exit code: got %d, want 0", code)
	}
}

func TestListCommand(t *testing.T) {
	root := t.TempDir()
	sample := filepath.Join(root, "speech")
	if err := os.MkdirAll(sample, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sample, "api_test.py"), []byte("# t"), 0644); err != nil {
		t.Fatal(err)
	}

	app := BuildApp("test", Deps{Root: root})
	if code := app.Execute([]string{"list"}); code != 0 {
		t.Errorf("list exit code: got %d, want 0", code)
	}
}

func TestWithSession_BadConfigFails(t *testing.T) {
	root := t.TempDir()
	configPath := filepath.Join(root, "samplerun.yaml")
	if err := os.WriteFile(configPath, []byte("interpreters: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	deps := Deps{Root: root}
	err := deps.withSession(false, func(context.Context, *session.Session) error {
		t.Fatal("session must not start with malformed config")
		return nil
	})
	if err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestWithSession_LockConflict(t *testing.T) {
	root := t.TempDir()
	deps := Deps{Root: root}

	// Re-enter withSession while the outer one still holds the run lock
	err := deps.withSession(true, func(ctx context.Context, s *session.Session) error {
		if inner := deps.withSession(true, func(context.Context, *session.Session) error {
			return nil
		}); inner == nil {
			t.Error("expected inner withSession to fail while lock is held")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withSession failed: %v", err)
	}
}
