// pattern: Functional Core

package report

import (
	"fmt"
	"strings"
)

// Status of one sample within a session run.
type Status int

const (
	Passed Status = iota
	Failed
	Skipped
)

// Result records the outcome for one sample directory.
type Result struct {
	Sample string
	Status Status
	Err    error
}

// Report accumulates per-sample outcomes for a session and renders a
// summary. Samples are reported in the order they ran.
type Report struct {
	Session string
	results []Result
	styles  *Styles
}

// New creates an empty report for the named session using the given theme.
func New(session, theme string) *Report {
	return &Report{Session: session, styles: NewStyles(theme)}
}

// Pass records a successful sample.
func (r *Report) Pass(sample string) {
	r.results = append(r.results, Result{Sample: sample, Status: Passed})
}

// Fail records a failed sample with its error.
func (r *Report) Fail(sample string, err error) {
	r.results = append(r.results, Result{Sample: sample, Status: Failed, Err: err})
}

// Skip records a sample that was filtered out of the run.
func (r *Report) Skip(sample string) {
	r.results = append(r.results, Result{Sample: sample, Status: Skipped})
}

// Failed reports whether any sample failed.
func (r *Report) Failed() bool {
	for _, res := range r.results {
		if res.Status == Failed {
			return true
		}
	}
	return false
}

// Results returns the recorded results in run order.
func (r *Report) Results() []Result {
	return r.results
}

// Render returns the styled summary block.
func (r *Report) Render() string {
	var sb strings.Builder

	sb.WriteString(r.styles.HeaderStyle().Render(fmt.Sprintf("session %s", r.Session)))
	sb.WriteString("\n")

	passed, failed, skipped := 0, 0, 0
	for _, res := range r.results {
		switch res.Status {
		case Passed:
			passed++
			sb.WriteString(r.styles.PassStyle().Render("  ok   " + res.Sample))
		case Failed:
			failed++
			line := fmt.Sprintf("  FAIL %s (%v)", res.Sample, res.Err)
			sb.WriteString(r.styles.FailStyle().Render(line))
		case Skipped:
			skipped++
			sb.WriteString(r.styles.SkipStyle().Render("  skip " + res.Sample))
		}
		sb.WriteString("\n")
	}

	totals := fmt.Sprintf("%d passed, %d failed, %d skipped", passed, failed, skipped)
	sb.WriteString(r.styles.TotalStyle().Render(totals))
	sb.WriteString("\n")

	return sb.String()
}
