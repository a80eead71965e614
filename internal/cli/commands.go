// pattern: Imperative Shell
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"samplerun/internal/config"
	"samplerun/internal/logging"
	"samplerun/internal/report"
	"samplerun/internal/runlock"
	"samplerun/internal/session"
	"samplerun/internal/watch"
)

// Deps carries the process-level context every command shares.
type Deps struct {
	Ctx        context.Context
	Root       string // repository root
	ConfigPath string // explicit config file; empty means <root>/samplerun.yaml
	Verbose    bool
}

// logDir is where the rotating log file lives, under the repository root.
const logDir = ".samplerun"

// BuildApp creates and configures the CLI application with all sessions.
func BuildApp(version string, deps Deps) *App {
	app := NewApp(version)

	app.AddCommand(&Command{
		Name:    "tests",
		Summary: "Run tests across all samples, once per interpreter",
		Usage:   "Usage: samplerun tests [sample dirs...]",
		Run: func(args []string) error {
			return deps.withSession(true, func(ctx context.Context, s *session.Session) error {
				reports, err := s.Tests(ctx, args, false, false)
				renderReports(reports)
				return err
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "lint",
		Summary: "Lint each sample",
		Usage:   "Usage: samplerun lint [targets...]",
		Run: func(args []string) error {
			return deps.withSession(true, func(ctx context.Context, s *session.Session) error {
				return s.Lint(ctx, args)
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "gae",
		Summary: "Run tests for App Engine Standard samples (legacy SDK)",
		Usage:   "Usage: samplerun gae [sample dirs...]",
		Run: func(args []string) error {
			return deps.withSession(true, func(ctx context.Context, s *session.Session) error {
				rep, err := s.GAE(ctx, args, false, false)
				renderReports([]*report.Report{rep})
				return err
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "grpc",
		Summary: "Run tests for samples that need the deprecated RPC library",
		Usage:   "Usage: samplerun grpc [sample dirs...]",
		Run: func(args []string) error {
			return deps.withSession(true, func(ctx context.Context, s *session.Session) error {
				rep, err := s.GRPC(ctx, args)
				renderReports([]*report.Report{rep})
				return err
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "travis",
		Summary: "CI entry point: changed-only, flaky tests skipped",
		Usage:   "Usage: samplerun travis [tests|gae] [sample dirs...]\nWithout a subsession both gae and tests run.",
		Run: func(args []string) error {
			return deps.withSession(true, func(ctx context.Context, s *session.Session) error {
				var reports []*report.Report
				var err error
				if len(args) == 0 {
					reports, err = s.TravisAll(ctx, nil)
				} else {
					reports, err = s.Travis(ctx, args[0], args[1:])
				}
				renderReports(reports)
				return err
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "reqcheck",
		Summary: "Check dependency manifests for out-of-date requirements",
		Usage:   "Usage: samplerun reqcheck [update]",
		Run: func(args []string) error {
			return deps.withSession(true, func(ctx context.Context, s *session.Session) error {
				return s.ReqCheck(ctx, session.ReqCheckArgs(args))
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "list",
		Summary: "Print discovered sample directories",
		Usage:   "Usage: samplerun list [--changed]",
		Run: func(args []string) error {
			changedOnly := false
			for _, arg := range args {
				if arg == "--changed" {
					changedOnly = true
				}
			}
			// Read-only: no run lock needed
			return deps.withSession(false, func(_ context.Context, s *session.Session) error {
				for _, dir := range s.ListSamples(changedOnly) {
					fmt.Println(dir)
				}
				return nil
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "watch",
		Summary: "Re-run a sample's tests when its files change",
		Usage:   "Usage: samplerun watch [sample dirs...]",
		Run: func(args []string) error {
			return deps.withSession(true, func(ctx context.Context, s *session.Session) error {
				return runWatch(ctx, deps, s, args)
			})
		},
	})

	app.AddCommand(&Command{
		Name:    "version",
		Summary: "Print version and exit",
		Usage:   "Usage: samplerun version",
		Run: func(args []string) error {
			fmt.Println(app.Version())
			return nil
		},
	})

	return app
}

// withSession loads configuration, sets up logging and (for mutating
// sessions) the run lock, then hands a ready Session to fn.
func (d Deps) withSession(lock bool, fn func(ctx context.Context, s *session.Session) error) error {
	cfg, err := d.loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logMgr, err := logging.NewManager(logging.Config{
		FilePath: filepath.Join(d.Root, logDir, "samplerun.log"),
		Level:    cfg.LogLevel,
		Verbose:  d.Verbose,
	})
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	defer func() { _ = logMgr.Close() }()

	if lock {
		fl, err := runlock.Acquire(d.Root)
		if err != nil {
			return err
		}
		defer runlock.Release(fl)
	}

	ctx := d.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	logMgr.For("app").Info("session invoked", "root", d.Root)
	return fn(ctx, session.New(cfg, logMgr, d.Root))
}

func (d Deps) loadConfig() (config.Config, error) {
	if d.ConfigPath != "" {
		return config.LoadFrom(d.ConfigPath)
	}
	return config.Load(d.Root)
}

// runWatch discovers (or takes) the samples and re-runs each one's tests
// when its files change. Each re-run is a normal sequential session over a
// single sample.
func runWatch(ctx context.Context, deps Deps, s *session.Session, posargs []string) error {
	samples := posargs
	if len(samples) == 0 {
		samples = s.ListSamples(false)
	}
	if len(samples) == 0 {
		return fmt.Errorf("no samples to watch under %s", deps.Root)
	}

	w := watch.New(samples, watch.DefaultDebounce, s.Logs().For("watch"))
	return w.Run(ctx, func(sample string) {
		cfg := s.Config()
		rep, err := s.RunTests(ctx, session.Options{
			Name:        "watch",
			Interpreter: cfg.CIInterpreter(),
			SampleDirs:  []string{sample},
		})
		renderReports([]*report.Report{rep})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	})
}

func renderReports(reports []*report.Report) {
	for _, rep := range reports {
		if rep != nil {
			fmt.Print(rep.Render())
		}
	}
}
