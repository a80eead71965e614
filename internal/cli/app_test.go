package cli

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestExecute_NoArgsPrintsHelp(t *testing.T) {
	app := NewApp("test")
	if code := app.Execute(nil); code != 2 {
		t.Errorf("exit code: got %d, want 2", code)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	app := NewApp("test")
	app.AddCommand(&Command{Name: "tests", Run: func([]string) error { return nil }})

	if code := app.Execute([]string{"bogus"}); code != 2 {
		t.Errorf("exit code: got %d, want 2", code)
	}
}

func TestExecute_RunsCommandWithArgs(t *testing.T) {
	var gotArgs []string
	app := NewApp("test")
	app.AddCommand(&Command{
		Name: "tests",
		Run: func(args []string) error {
			gotArgs = args
			return nil
		},
	})

	code := app.Execute([]string{"tests", "speech", "bigtable"})
	if code != 0 {
		t.Errorf("exit code: got %d, want 0", code)
	}
	if !slices.Equal(gotArgs, []string{"speech", "bigtable"}) {
		t.Errorf("args: got %v", gotArgs)
	}
}

func TestExecute_CommandError(t *testing.T) {
	app := NewApp("test")
	app.AddCommand(&Command{
		Name: "tests",
		Run:  func([]string) error { return errors.New("sample failed") },
	})

	if code := app.Execute([]string{"tests"}); code != 1 {
		t.Errorf("exit code: got %d, want 1", code)
	}
}

func TestExecute_HelpFlagSkipsRun(t *testing.T) {
	ran := false
	app := NewApp("test")
	app.AddCommand(&Command{
		Name:  "lint",
		Usage: "Usage: samplerun lint",
		Run: func([]string) error {
			ran = true
			return nil
		},
	})

	if code := app.Execute([]string{"lint", "--help"}); code != 0 {
		t.Errorf("exit code: got %d, want 0", code)
	}
	if ran {
		t.Error("command must not run when --help is given")
	}
}

func TestPrintHelp_ListsCommandsInOrder(t *testing.T) {
	app := NewApp("test")
	app.AddCommand(&Command{Name: "tests", Summary: "Run tests"})
	app.AddCommand(&Command{Name: "lint", Summary: "Lint samples"})

	var buf bytes.Buffer
	app.PrintHelp(&buf)
	out := buf.String()

	testsIdx := strings.Index(out, "tests")
	lintIdx := strings.Index(out, "lint")
	if testsIdx < 0 || lintIdx < 0 {
		t.Fatalf("help missing commands:\n%s", out)
	}
	if testsIdx > lintIdx {
		t.Error("help should list commands in registration order")
	}
}
