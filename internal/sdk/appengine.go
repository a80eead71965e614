// pattern: Imperative Shell

package sdk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"samplerun/internal/runner"
)

// AppEngineDir is the directory name the SDK download helper creates under
// the install root.
const AppEngineDir = "google_appengine"

// SetupAppEngine installs the legacy App Engine SDK under sdkRoot by
// invoking the repo-tools download helper, and creates a lib/ directory at
// the repository root so the SDK's vendor helper stops complaining.
//
// It returns the extra environment entries (PYTHONPATH) that App Engine
// sample test processes need.
func SetupAppEngine(ctx context.Context, run *runner.Runner, repoTools, sdkRoot, repoRoot string) ([]string, error) {
	env := []string{"PYTHONPATH=" + filepath.Join(sdkRoot, AppEngineDir)}

	err := run.Run(ctx, runner.Invocation{
		Binary: repoTools,
		Args:   []string{"download-appengine-sdk", sdkRoot},
		Dir:    repoRoot,
	})
	if err != nil {
		return nil, fmt.Errorf("downloading App Engine SDK: %w", err)
	}

	libDir := filepath.Join(repoRoot, "lib")
	if _, statErr := os.Stat(libDir); os.IsNotExist(statErr) {
		if err := os.MkdirAll(libDir, 0755); err != nil {
			return nil, fmt.Errorf("creating lib directory: %w", err)
		}
	}

	return env, nil
}
