package logging

import (
	"strings"
	"testing"
)

func TestParseEntry(t *testing.T) {
	line := `{"level":"warn","ts":1700000000.5,"logger":"changeset","msg":"missing CI environment","pr":"","commit":""}`
	entry, err := ParseEntry([]byte(line))
	if err != nil {
		t.Fatalf("ParseEntry failed: %v", err)
	}

	if entry.Level != "WARN" {
		t.Errorf("Level: got %q, want WARN", entry.Level)
	}
	if entry.Scope != "changeset" {
		t.Errorf("Scope: got %q, want changeset", entry.Scope)
	}
	if entry.Message != "missing CI environment" {
		t.Errorf("Message: got %q", entry.Message)
	}
	if entry.Timestamp.Unix() != 1700000000 {
		t.Errorf("Timestamp: got %v", entry.Timestamp)
	}
	if _, ok := entry.Fields["pr"]; !ok {
		t.Errorf("expected pr field, got %v", entry.Fields)
	}
	if _, ok := entry.Fields["msg"]; ok {
		t.Error("msg should not remain in Fields")
	}
}

func TestParseEntry_Defaults(t *testing.T) {
	entry, err := ParseEntry([]byte(`{"msg":"hello"}`))
	if err != nil {
		t.Fatalf("ParseEntry failed: %v", err)
	}
	if entry.Level != "INFO" {
		t.Errorf("Level default: got %q, want INFO", entry.Level)
	}
	if entry.Scope != "app" {
		t.Errorf("Scope default: got %q, want app", entry.Scope)
	}
}

func TestParseEntry_Invalid(t *testing.T) {
	if _, err := ParseEntry([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLogEntryString(t *testing.T) {
	entry := LogEntry{
		Level:   "ERROR",
		Scope:   "runner",
		Message: "process failed",
		Fields:  map[string]any{"exit_code": 1},
	}
	s := entry.String()
	if !strings.Contains(s, "ERROR") || !strings.Contains(s, "[runner]") {
		t.Errorf("String missing level or scope: %q", s)
	}
	if !strings.Contains(s, "exit_code=1") {
		t.Errorf("String missing field: %q", s)
	}
}

func TestMatchesScope(t *testing.T) {
	entry := LogEntry{Scope: "session.tests"}
	if !entry.MatchesScope("") {
		t.Error("empty prefix should match")
	}
	if !entry.MatchesScope("session") {
		t.Error("prefix should match")
	}
	if entry.MatchesScope("runner") {
		t.Error("unrelated prefix should not match")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "DEBUG",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %q, want %q", in, got, want)
		}
	}
}
