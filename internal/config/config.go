package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the per-repository configuration file, looked up at the
// repository root.
const ConfigFileName = "samplerun.yaml"

// Defaults mirroring the conventions this tool orchestrates. The argument
// lists are load-bearing: samples rely on them exactly.
var (
	// defaultTestArgs is passed to every test-runner invocation.
	defaultTestArgs = []string{
		"-x", "--no-success-flaky-report", "--cov", "--cov-config",
		".coveragerc", "--cov-append", "--cov-report=",
	}

	// defaultTestBlacklist excludes samples that cannot run in the default
	// session: App Engine samples need the legacy SDK, bigtable and speech
	// need the grpc session, and testing holds shared fixtures.
	defaultTestBlacklist = []string{
		"./appengine/standard", "./bigtable", "./speech", "./testing",
	}

	defaultInterpreters = []string{"python2.7", "python3.4"}

	defaultLintArgs = []string{
		"--builtin=gettext", "--max-complexity=15",
		"--import-order-style=google",
		"--exclude",
		"container_engine/django_tutorial/polls/migrations/*,.nox,.cache,env,lib",
	}

	defaultLintInstall = []string{"flake8", "flake8-import-order"}
)

const (
	// defaultRepoToolsReq is the shared testing-utilities package installed
	// before every test session. Not published to a registry.
	defaultRepoToolsReq = "git+https://github.com/GoogleCloudPlatform/python-repo-tools.git"

	// FlakyFilter is appended to the test-runner args when a session skips
	// flaky-marked tests. It is a single marker-expression argument.
	FlakyFilter = "-m not slow and not flaky"

	// RequirementsPattern matches dependency manifests inside a sample.
	RequirementsPattern = "requirements*.txt"

	defaultTestSuffix = "_test.py"
	defaultInstaller  = "pip"
	defaultTestRunner = "py.test"
	defaultLinter     = "flake8"
	defaultRepoTools  = "gcprepotools"
)

// Config holds all per-repository settings. Everything has a default that
// matches the stock sample-repository layout, so an absent config file is
// fine. The config is passed explicitly into discovery and filtering; there
// is no process-global state.
type Config struct {
	Theme    string `yaml:"theme"`
	LogLevel string `yaml:"log_level"`

	Installer  string `yaml:"installer"`   // package installer binary
	TestRunner string `yaml:"test_runner"` // test runner binary
	Linter     string `yaml:"linter"`      // linter binary
	RepoTools  string `yaml:"repo_tools"`  // repo-tools helper binary

	RepoToolsReq string   `yaml:"repo_tools_req"` // installable requirement for repo tools
	Interpreters []string `yaml:"interpreters"`   // interpreters the tests session runs under

	TestSuffix         string   `yaml:"test_suffix"`         // file suffix marking a sample dir
	TestBlacklist      []string `yaml:"test_blacklist"`      // dirs excluded from the tests session
	AppEngineBlacklist []string `yaml:"appengine_blacklist"` // dirs excluded from the gae session

	ExtraTestArgs string   `yaml:"extra_test_args"` // shell-style string, appended to test args
	ExtraLintArgs string   `yaml:"extra_lint_args"` // shell-style string, appended to lint args
	SDKRoot       string   `yaml:"sdk_root"`        // App Engine SDK install root
	AppEngineRoot string   `yaml:"appengine_root"`  // discovery root for the gae session
	GRPCDirs      []string `yaml:"grpc_dirs"`       // roots for the grpc session
}

// LegacyInterpreter returns the interpreter the App Engine and grpc
// sessions are pinned to: the first configured one.
func (c *Config) LegacyInterpreter() string {
	if len(c.Interpreters) == 0 {
		return defaultInterpreters[0]
	}
	return c.Interpreters[0]
}

// CIInterpreter returns the interpreter CI test runs use: the last
// configured one.
func (c *Config) CIInterpreter() string {
	if len(c.Interpreters) == 0 {
		return defaultInterpreters[len(defaultInterpreters)-1]
	}
	return c.Interpreters[len(c.Interpreters)-1]
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Theme:         "mocha",
		Installer:     defaultInstaller,
		TestRunner:    defaultTestRunner,
		Linter:        defaultLinter,
		RepoTools:     defaultRepoTools,
		RepoToolsReq:  defaultRepoToolsReq,
		Interpreters:  append([]string(nil), defaultInterpreters...),
		TestSuffix:    defaultTestSuffix,
		TestBlacklist: append([]string(nil), defaultTestBlacklist...),
		AppEngineRoot: "appengine/standard",
		GRPCDirs:      []string{"speech", "bigtable"},
	}
}

// Load reads the config file from the given repository root, falling back
// to defaults when the file does not exist.
func Load(root string) (Config, error) {
	return LoadFrom(filepath.Join(root, ConfigFileName))
}

// LoadFrom reads the config from an explicit path.
func LoadFrom(configPath string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}

	// Re-fill anything the file explicitly blanked
	if cfg.Theme == "" {
		cfg.Theme = "mocha"
	}
	if cfg.Installer == "" {
		cfg.Installer = defaultInstaller
	}
	if cfg.TestRunner == "" {
		cfg.TestRunner = defaultTestRunner
	}
	if cfg.Linter == "" {
		cfg.Linter = defaultLinter
	}
	if cfg.RepoTools == "" {
		cfg.RepoTools = defaultRepoTools
	}
	if cfg.RepoToolsReq == "" {
		cfg.RepoToolsReq = defaultRepoToolsReq
	}
	if len(cfg.Interpreters) == 0 {
		cfg.Interpreters = append([]string(nil), defaultInterpreters...)
	}
	if cfg.TestSuffix == "" {
		cfg.TestSuffix = defaultTestSuffix
	}
	if cfg.AppEngineRoot == "" {
		cfg.AppEngineRoot = "appengine/standard"
	}

	return cfg, nil
}

// TestArgs returns the full test-runner argument list: the fixed common
// arguments plus any configured extras. The extras string is parsed with
// shell quoting rules, so marker expressions with spaces survive intact.
func (c *Config) TestArgs() ([]string, error) {
	args := append([]string(nil), defaultTestArgs...)
	extra, err := shlex.Split(c.ExtraTestArgs)
	if err != nil {
		return nil, fmt.Errorf("parsing extra_test_args: %w", err)
	}
	return append(args, extra...), nil
}

// LintArgs returns the linter argument list plus configured extras.
func (c *Config) LintArgs() ([]string, error) {
	args := append([]string(nil), defaultLintArgs...)
	extra, err := shlex.Split(c.ExtraLintArgs)
	if err != nil {
		return nil, fmt.Errorf("parsing extra_lint_args: %w", err)
	}
	return append(args, extra...), nil
}

// LintInstall returns the packages installed before a lint session.
func (c *Config) LintInstall() []string {
	return append([]string(nil), defaultLintInstall...)
}

// DevRequirements returns the interpreter-specific dev manifest name,
// e.g. requirements-python3.4-dev.txt.
func DevRequirements(interpreter string) string {
	return fmt.Sprintf("requirements-%s-dev.txt", interpreter)
}

// ResolveSDKRoot returns the App Engine SDK root: the GAE_ROOT environment
// variable wins, then the configured sdk_root, then the system temp dir.
func (c *Config) ResolveSDKRoot() string {
	if env := os.Getenv("GAE_ROOT"); env != "" {
		return env
	}
	if c.SDKRoot != "" {
		return c.SDKRoot
	}
	return os.TempDir()
}
