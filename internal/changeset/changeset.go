// pattern: Imperative Shell

package changeset

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"samplerun/internal/logging"
)

// Env holds the CI-provided variables used to compute the changed-file set.
// On Travis-style CI, PullRequest is "false" for plain pushes and the PR
// number when building a pull request.
type Env struct {
	PullRequest string
	Commit      string
	Branch      string
}

// EnvFromCI reads the Travis environment variables. The variable names are
// a load-bearing convention.
func EnvFromCI() Env {
	return Env{
		PullRequest: os.Getenv("TRAVIS_PULL_REQUEST"),
		Commit:      os.Getenv("TRAVIS_COMMIT"),
		Branch:      os.Getenv("TRAVIS_BRANCH"),
	}
}

// GitRunner runs a git command in dir and returns its stdout.
// Injectable for testing.
type GitRunner func(dir string, args ...string) ([]byte, error)

func runGit(dir string, args ...string) ([]byte, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	return cmd.Output()
}

// ChangedFiles computes the set of file paths altered in the current CI
// change request, by diffing against the revisions named in env.
//
// This path is best-effort CI integration: a missing or ill-formed
// environment degrades to an empty set with a diagnostic, never an error.
// Callers must treat an empty set as "run nothing".
func ChangedFiles(dir string, env Env, logger *logging.ScopedLogger) map[string]bool {
	return ChangedFilesWith(dir, env, runGit, logger)
}

// ChangedFilesWith is ChangedFiles with an injectable git runner.
func ChangedFilesWith(dir string, env Env, git GitRunner, logger *logging.ScopedLogger) map[string]bool {
	logger.Debug("computing changed files",
		"pull_request", env.PullRequest,
		"commit", env.Commit,
		"branch", env.Branch)

	var out []byte
	var err error
	switch {
	case env.PullRequest == "false":
		// A plain push: the commit itself is the change
		out, err = git(dir, "show", "--pretty=format:", "--name-only", env.Commit)
	case env.PullRequest != "":
		out, err = git(dir, "diff", "--name-only", env.Commit, env.Branch)
	default:
		logger.Warn("no CI change context; treating change set as empty")
		return map[string]bool{}
	}

	if err != nil {
		logger.Warn("git diff failed; treating change set as empty", "error", err)
		return map[string]bool{}
	}

	changed := make(map[string]bool)
	for _, line := range strings.Split(string(out), "\n") {
		if line != "" {
			changed[line] = true
		}
	}
	return changed
}

// Filter narrows candidate directories to those containing at least one
// changed file. Git reports paths relative to the repository root, so each
// candidate is rebased onto root before the string-prefix match; a leading
// "./" is trimmed the same way. Candidates are returned as given, so
// root-joined discovery output stays runnable. Output is deduplicated by
// the rebased name; order is unspecified.
//
// An empty changed set yields an empty result: a push without pull-request
// context legitimately has nothing to run.
func Filter(root string, sampleDirs []string, changedFiles map[string]bool) []string {
	seen := make(map[string]bool)
	var result []string
	for _, dir := range sampleDirs {
		key := dir
		if rel, err := filepath.Rel(root, dir); err == nil && !strings.HasPrefix(rel, "..") {
			key = rel
		}
		key = strings.TrimPrefix(key, "./")
		if seen[key] {
			continue
		}
		for file := range changedFiles {
			if strings.HasPrefix(file, key) {
				seen[key] = true
				result = append(result, dir)
				break
			}
		}
	}
	return result
}
