package report

import (
	"errors"
	"strings"
	"testing"
)

func TestReportRender(t *testing.T) {
	r := New("tests", "mocha")
	r.Pass("speech/api")
	r.Fail("bigtable/hello", errors.New("py.test exited with code 1"))
	r.Skip("appengine/standard")

	out := r.Render()

	for _, want := range []string{
		"session tests",
		"speech/api",
		"bigtable/hello",
		"appengine/standard",
		"1 passed, 1 failed, 1 skipped",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render missing %q:\n%s", want, out)
		}
	}
}

func TestReportFailed(t *testing.T) {
	r := New("lint", "mocha")
	if r.Failed() {
		t.Error("empty report should not be failed")
	}

	r.Pass("foo")
	if r.Failed() {
		t.Error("all-pass report should not be failed")
	}

	r.Fail("bar", errors.New("boom"))
	if !r.Failed() {
		t.Error("report with a failure should be failed")
	}
}

func TestReportResultsOrder(t *testing.T) {
	r := New("tests", "latte")
	r.Pass("a")
	r.Fail("b", errors.New("x"))
	r.Pass("c")

	results := r.Results()
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Sample != "a" || results[1].Sample != "b" || results[2].Sample != "c" {
		t.Errorf("results out of order: %v", results)
	}
}

func TestFlavorFromName(t *testing.T) {
	for _, name := range []string{"latte", "frappe", "macchiato", "mocha", "unknown"} {
		s := NewStyles(name)
		if got := s.HeaderStyle().Render("session tests"); !strings.Contains(got, "session tests") {
			t.Errorf("NewStyles(%q): header render lost text: %q", name, got)
		}
	}
}
