// pattern: Imperative Shell

package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"samplerun/internal/changeset"
	"samplerun/internal/config"
	"samplerun/internal/discovery"
	"samplerun/internal/logging"
	"samplerun/internal/report"
	"samplerun/internal/runner"
	"samplerun/internal/sdk"
)

// noTestsExitCode is the test-runner status for "zero tests collected".
// Treated as success alongside 0. This can mask a sample whose tests
// vanished; the policy is preserved deliberately, not endorsed.
const noTestsExitCode = 5

// Options configures one test session run. It is pure configuration data;
// all decision logic lives in discovery and changeset.
type Options struct {
	Name         string   // session name, used for logging and the report
	Interpreter  string   // interpreter the dev requirements are keyed on
	UseAppEngine bool     // install the legacy App Engine SDK first
	SkipFlaky    bool     // skip tests marked slow or flaky
	ChangedOnly  bool     // restrict to samples touched by the CI change set
	SampleDirs   []string // explicit sample list; nil means discover
	DiscoverRoot string   // discovery root when SampleDirs is nil; "" means the repo root
	Blacklist    []string // discovery blacklist
}

// Session executes named runs against one repository. The process is
// expected to run from the repository root: sample paths are passed to
// external tools exactly as discovered. Everything is sequential, one
// external process at a time, and the first failure stops the batch.
type Session struct {
	cfg  config.Config
	logs logging.LoggerProvider
	root string
	env  changeset.Env
	git  changeset.GitRunner
}

// New creates a session executor rooted at the repository root.
func New(cfg config.Config, logs logging.LoggerProvider, root string) *Session {
	return &Session{
		cfg:  cfg,
		logs: logs,
		root: root,
		env:  changeset.EnvFromCI(),
	}
}

// WithCIEnv overrides the CI environment snapshot (tests).
func (s *Session) WithCIEnv(env changeset.Env) *Session {
	s.env = env
	return s
}

// WithGitRunner overrides the git invocation used for change detection (tests).
func (s *Session) WithGitRunner(git changeset.GitRunner) *Session {
	s.git = git
	return s
}

// Logs exposes the session's logger provider for collaborators that log
// under their own scope.
func (s *Session) Logs() logging.LoggerProvider {
	return s.logs
}

// Config returns the session's configuration snapshot.
func (s *Session) Config() config.Config {
	return s.cfg
}

func (s *Session) runner(scope string) *runner.Runner {
	return runner.New(s.logs.For(scope))
}

// SampleDirs resolves the sample directories for the given options:
// explicit list if set, otherwise discovery, then the changed-only filter.
// The result is a slice because every consumer needs the full set.
//
// Blacklist entries and git-reported paths are repository-relative, while
// discovery yields paths joined onto the repository root. Both are resolved
// against s.root here so a run rooted outside the working directory still
// honors them.
func (s *Session) SampleDirs(opts Options) []string {
	dirs := opts.SampleDirs
	if dirs == nil {
		blacklist := make(map[string]bool, len(opts.Blacklist))
		for _, entry := range opts.Blacklist {
			blacklist[filepath.Join(s.root, entry)] = true
		}
		scanner := discovery.NewScanner(s.cfg.TestSuffix, blacklist)
		root := opts.DiscoverRoot
		if root == "" {
			root = s.root
		}
		dirs = slices.Collect(scanner.Samples(root))
	}

	if opts.ChangedOnly {
		logger := s.logs.For("changeset")
		changed := s.changedFiles(logger)
		dirs = changeset.Filter(s.root, dirs, changed)
		logger.Info("running on a subset of samples", "samples", dirs)
	}

	return dirs
}

func (s *Session) changedFiles(logger *logging.ScopedLogger) map[string]bool {
	if s.git != nil {
		return changeset.ChangedFilesWith(s.root, s.env, s.git, logger)
	}
	return changeset.ChangedFiles(s.root, s.env, logger)
}

// RunTests executes a full test session: shared tooling install, dev
// requirements, optional App Engine SDK setup, then per sample a
// requirements install and one test-runner invocation.
//
// The returned report covers every sample attempted. The first failing
// external process aborts the batch and is returned as the error.
func (s *Session) RunTests(ctx context.Context, opts Options) (*report.Report, error) {
	logger := s.logs.For("session." + opts.Name)
	run := s.runner("runner")
	rep := report.New(opts.Name, s.cfg.Theme)

	logger.Info("session starting", "interpreter", opts.Interpreter)

	// Shared testing utilities
	if err := s.install(ctx, run, s.cfg.RepoToolsReq); err != nil {
		return rep, err
	}

	// Interpreter-specific dev requirements
	devReq := filepath.Join(s.root, config.DevRequirements(opts.Interpreter))
	if err := s.installManifest(ctx, run, devReq); err != nil {
		return rep, err
	}

	var extraEnv []string
	if opts.UseAppEngine {
		env, err := sdk.SetupAppEngine(ctx, run, s.cfg.RepoTools, s.cfg.ResolveSDKRoot(), s.root)
		if err != nil {
			return rep, err
		}
		extraEnv = env
	}

	testArgs, err := s.cfg.TestArgs()
	if err != nil {
		return rep, err
	}
	if opts.SkipFlaky {
		testArgs = append(testArgs, config.FlakyFilter)
	}

	for _, sample := range s.SampleDirs(opts) {
		if err := s.runSample(ctx, run, sample, testArgs, extraEnv); err != nil {
			rep.Fail(sample, err)
			logger.Error("sample failed", "sample", sample, "error", err)
			return rep, fmt.Errorf("sample %s: %w", sample, err)
		}
		rep.Pass(sample)
		logger.Info("sample passed", "sample", sample)
	}

	return rep, nil
}

// runSample installs the sample's dependency manifests and invokes the
// test runner once.
func (s *Session) runSample(ctx context.Context, run *runner.Runner, sample string, testArgs, extraEnv []string) error {
	// An explicit argument may name a file inside a sample
	dir := sample
	if fi, err := os.Stat(sample); err == nil && !fi.IsDir() {
		dir = filepath.Dir(sample)
	}

	for reqFile := range discovery.ListFiles(dir, config.RequirementsPattern) {
		if err := s.installManifest(ctx, run, reqFile); err != nil {
			return err
		}
	}

	// Vendored lib/ and virtualenv env/ dirs are not the sample's tests
	args := append([]string{sample}, testArgs...)
	args = append(args,
		"--ignore", filepath.Join(sample, "lib"),
		"--ignore", filepath.Join(sample, "env"),
	)

	return run.Run(ctx, runner.Invocation{
		Binary:       s.cfg.TestRunner,
		Args:         args,
		Env:          extraEnv,
		SuccessCodes: []int{0, noTestsExitCode},
	})
}

// Lint installs the linter packages and runs the linter once over the
// given targets, or the whole tree when none are given.
func (s *Session) Lint(ctx context.Context, targets []string) error {
	run := s.runner("runner")
	s.logs.For("session.lint").Info("session starting")

	if err := s.install(ctx, run, s.cfg.LintInstall()...); err != nil {
		return err
	}

	lintArgs, err := s.cfg.LintArgs()
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		targets = []string{"."}
	}

	return run.Run(ctx, runner.Invocation{
		Binary: s.cfg.Linter,
		Args:   append(lintArgs, targets...),
	})
}

// ReqCheck checks (or with update=true, rewrites) every dependency
// manifest under the repository for out-of-date requirements.
func (s *Session) ReqCheck(ctx context.Context, update bool) error {
	run := s.runner("runner")
	s.logs.For("session.reqcheck").Info("session starting", "update", update)

	if err := s.install(ctx, run, s.cfg.RepoToolsReq); err != nil {
		return err
	}

	command := "check-requirements"
	if update {
		command = "update-requirements"
	}

	for reqFile := range discovery.ListFiles(s.root, config.RequirementsPattern) {
		err := run.Run(ctx, runner.Invocation{
			Binary: s.cfg.RepoTools,
			Args:   []string{command, reqFile},
		})
		if err != nil {
			return fmt.Errorf("%s %s: %w", command, reqFile, err)
		}
	}
	return nil
}

func (s *Session) install(ctx context.Context, run *runner.Runner, packages ...string) error {
	args := append([]string{"install"}, packages...)
	err := run.Run(ctx, runner.Invocation{
		Binary: s.cfg.Installer,
		Args:   args,
	})
	if err != nil {
		return fmt.Errorf("installing %v: %w", packages, err)
	}
	return nil
}

// installManifest installs from a requirements file. A missing manifest is
// fine: not every interpreter or sample declares one.
func (s *Session) installManifest(ctx context.Context, run *runner.Runner, reqFile string) error {
	if _, err := os.Stat(reqFile); err != nil {
		return nil
	}
	err := run.Run(ctx, runner.Invocation{
		Binary: s.cfg.Installer,
		Args:   []string{"install", "-r", reqFile},
	})
	if err != nil {
		return fmt.Errorf("installing %s: %w", reqFile, err)
	}
	return nil
}
