package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TestRunner != "py.test" {
		t.Errorf("TestRunner: got %q, want py.test", cfg.TestRunner)
	}
	if cfg.Installer != "pip" {
		t.Errorf("Installer: got %q, want pip", cfg.Installer)
	}
	if cfg.TestSuffix != "_test.py" {
		t.Errorf("TestSuffix: got %q, want _test.py", cfg.TestSuffix)
	}
	if !slices.Equal(cfg.Interpreters, []string{"python2.7", "python3.4"}) {
		t.Errorf("Interpreters: got %v", cfg.Interpreters)
	}
	if !slices.Contains(cfg.TestBlacklist, "./appengine/standard") {
		t.Errorf("TestBlacklist missing appengine/standard: %v", cfg.TestBlacklist)
	}
	if !slices.Equal(cfg.GRPCDirs, []string{"speech", "bigtable"}) {
		t.Errorf("GRPCDirs: got %v", cfg.GRPCDirs)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.TestRunner != "py.test" {
		t.Errorf("expected default test runner, got %q", cfg.TestRunner)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)
	content := `
test_runner: pytest
installer: pip3
interpreters:
  - python3.9
test_blacklist:
  - ./broken
extra_test_args: "-m 'not slow'"
log_level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.TestRunner != "pytest" {
		t.Errorf("TestRunner: got %q, want pytest", cfg.TestRunner)
	}
	if cfg.Installer != "pip3" {
		t.Errorf("Installer: got %q, want pip3", cfg.Installer)
	}
	if !slices.Equal(cfg.Interpreters, []string{"python3.9"}) {
		t.Errorf("Interpreters: got %v", cfg.Interpreters)
	}
	if !slices.Equal(cfg.TestBlacklist, []string{"./broken"}) {
		t.Errorf("TestBlacklist: got %v", cfg.TestBlacklist)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
	// Unset fields keep defaults
	if cfg.Linter != "flake8" {
		t.Errorf("Linter default lost: got %q", cfg.Linter)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte("test_runner: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestTestArgs(t *testing.T) {
	cfg := DefaultConfig()
	args, err := cfg.TestArgs()
	if err != nil {
		t.Fatalf("TestArgs failed: %v", err)
	}
	if args[0] != "-x" {
		t.Errorf("first arg: got %q, want -x", args[0])
	}
	if !slices.Contains(args, "--cov-report=") {
		t.Errorf("missing --cov-report=: %v", args)
	}
}

func TestTestArgs_ExtraShlex(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExtraTestArgs = `-m 'not slow and not flaky' --verbose`

	args, err := cfg.TestArgs()
	if err != nil {
		t.Fatalf("TestArgs failed: %v", err)
	}
	if !slices.Contains(args, "not slow and not flaky") {
		t.Errorf("quoted marker expression not preserved: %v", args)
	}
	if !slices.Contains(args, "--verbose") {
		t.Errorf("missing --verbose: %v", args)
	}
}

func TestTestArgs_BadQuoting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExtraTestArgs = `-m 'unterminated`
	if _, err := cfg.TestArgs(); err == nil {
		t.Fatal("expected error for unterminated quote")
	}
}

func TestLintArgs(t *testing.T) {
	cfg := DefaultConfig()
	args, err := cfg.LintArgs()
	if err != nil {
		t.Fatalf("LintArgs failed: %v", err)
	}
	if !slices.Contains(args, "--builtin=gettext") {
		t.Errorf("missing builtin arg: %v", args)
	}
	if !slices.Contains(args, "--max-complexity=15") {
		t.Errorf("missing complexity arg: %v", args)
	}
}

func TestDevRequirements(t *testing.T) {
	got := DevRequirements("python3.4")
	if got != "requirements-python3.4-dev.txt" {
		t.Errorf("DevRequirements: got %q", got)
	}
}

func TestResolveSDKRoot(t *testing.T) {
	t.Setenv("GAE_ROOT", "")

	cfg := DefaultConfig()
	if got := cfg.ResolveSDKRoot(); got != os.TempDir() {
		t.Errorf("expected temp dir fallback, got %q", got)
	}

	cfg.SDKRoot = "/opt/gae"
	if got := cfg.ResolveSDKRoot(); got != "/opt/gae" {
		t.Errorf("expected configured root, got %q", got)
	}

	t.Setenv("GAE_ROOT", "/env/gae")
	if got := cfg.ResolveSDKRoot(); got != "/env/gae" {
		t.Errorf("expected env override, got %q", got)
	}
}
