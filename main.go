// pattern: Imperative Shell
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"samplerun/internal/cli"
)

var version = "dev"

func main() {
	// Stop parsing flags after the first non-flag arg (the session name),
	// so trailing directories flow to the session untouched.
	flag.CommandLine.SetInterspersed(false)

	configPath := flag.StringP("config", "c", "", "config file (default: <root>/samplerun.yaml)")
	root := flag.StringP("root", "r", ".", "repository root to run in")
	verbose := flag.BoolP("verbose", "v", false, "mirror all log levels to the console")

	flag.Usage = func() {
		app := cli.BuildApp(version, cli.Deps{})
		app.PrintHelp(os.Stderr)
		flag.PrintDefaults()
	}

	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.BuildApp(version, cli.Deps{
		Ctx:        ctx,
		Root:       *root,
		ConfigPath: *configPath,
		Verbose:    *verbose,
	})

	code := app.Execute(flag.Args())
	stop()
	os.Exit(code)
}
