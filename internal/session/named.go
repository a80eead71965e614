package session

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"

	"samplerun/internal/discovery"
	"samplerun/internal/report"
)

// The named sessions below are configuration, not logic: each one maps a
// run name onto Options and hands off to RunTests.

// explicit converts trailing CLI arguments into a sample override. Empty
// means "no override": nil makes SampleDirs fall through to discovery.
func explicit(posargs []string) []string {
	if len(posargs) == 0 {
		return nil
	}
	return posargs
}

// Tests runs the default test session once per configured interpreter.
func (s *Session) Tests(ctx context.Context, posargs []string, changedOnly, skipFlaky bool) ([]*report.Report, error) {
	var reports []*report.Report
	for _, interp := range s.cfg.Interpreters {
		rep, err := s.RunTests(ctx, Options{
			Name:        fmt.Sprintf("tests[%s]", interp),
			Interpreter: interp,
			SkipFlaky:   skipFlaky,
			ChangedOnly: changedOnly,
			SampleDirs:  explicit(posargs),
			Blacklist:   s.cfg.TestBlacklist,
		})
		reports = append(reports, rep)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// GAE runs tests for App Engine Standard samples: legacy interpreter,
// legacy SDK, discovery rooted under the App Engine tree with its own
// blacklist.
func (s *Session) GAE(ctx context.Context, posargs []string, changedOnly, skipFlaky bool) (*report.Report, error) {
	return s.RunTests(ctx, Options{
		Name:         "gae",
		Interpreter:  s.cfg.LegacyInterpreter(),
		UseAppEngine: true,
		SkipFlaky:    skipFlaky,
		ChangedOnly:  changedOnly,
		SampleDirs:   explicit(posargs),
		DiscoverRoot: filepath.Join(s.root, s.cfg.AppEngineRoot),
		Blacklist:    s.cfg.AppEngineBlacklist,
	})
}

// GRPC runs tests for the sample trees that still need the deprecated RPC
// library, pinned to the legacy interpreter. No blacklist applies inside
// those trees.
func (s *Session) GRPC(ctx context.Context, posargs []string) (*report.Report, error) {
	dirs := explicit(posargs)
	if dirs == nil {
		dirs = []string{}
		scanner := discovery.NewScanner(s.cfg.TestSuffix, nil)
		for _, root := range s.cfg.GRPCDirs {
			dirs = append(dirs, slices.Collect(scanner.Samples(filepath.Join(s.root, root)))...)
		}
	}

	return s.RunTests(ctx, Options{
		Name:        "grpc",
		Interpreter: s.cfg.LegacyInterpreter(),
		SampleDirs:  dirs,
	})
}

// Travis runs the CI flavor of a subsession: changed-only, flaky tests
// skipped, and for plain tests only the CI interpreter.
func (s *Session) Travis(ctx context.Context, subsession string, posargs []string) ([]*report.Report, error) {
	switch subsession {
	case "tests":
		rep, err := s.RunTests(ctx, Options{
			Name:        "travis[tests]",
			Interpreter: s.cfg.CIInterpreter(),
			SkipFlaky:   true,
			ChangedOnly: true,
			SampleDirs:  explicit(posargs),
			Blacklist:   s.cfg.TestBlacklist,
		})
		return []*report.Report{rep}, err
	case "gae":
		rep, err := s.GAE(ctx, posargs, true, true)
		return []*report.Report{rep}, err
	default:
		return nil, fmt.Errorf("unknown travis subsession %q (want tests or gae)", subsession)
	}
}

// TravisAll runs every travis subsession in order, as an unqualified CI
// invocation does. The first failing subsession stops the batch.
func (s *Session) TravisAll(ctx context.Context, posargs []string) ([]*report.Report, error) {
	var all []*report.Report
	for _, subsession := range []string{"gae", "tests"} {
		reports, err := s.Travis(ctx, subsession, posargs)
		all = append(all, reports...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}

// ReqCheckArgs interprets reqcheck trailing arguments: the word "update"
// switches from checking to updating manifests.
func ReqCheckArgs(posargs []string) bool {
	return slices.Contains(posargs, "update")
}

// ListSamples backs the list command: discovery with the tests blacklist,
// optionally narrowed to the change set.
func (s *Session) ListSamples(changedOnly bool) []string {
	return s.SampleDirs(Options{
		Name:        "list",
		ChangedOnly: changedOnly,
		Blacklist:   s.cfg.TestBlacklist,
	})
}
