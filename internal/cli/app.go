// pattern: Functional Core
package cli

import (
	"fmt"
	"io"
	"os"
)

// Command represents a single named session or utility command.
type Command struct {
	Name    string
	Summary string
	Usage   string
	Run     func(args []string) error
}

// App is the top-level CLI: a flat set of named commands. Trailing
// arguments after the command name are passed through to it untouched,
// usually as an explicit sample directory list.
type App struct {
	commands map[string]*Command
	order    []string
	version  string
}

// NewApp creates a new CLI application with the given version.
func NewApp(version string) *App {
	return &App{
		commands: make(map[string]*Command),
		version:  version,
	}
}

// AddCommand registers a command. Registration order is help order.
func (a *App) AddCommand(cmd *Command) {
	if _, exists := a.commands[cmd.Name]; !exists {
		a.order = append(a.order, cmd.Name)
	}
	a.commands[cmd.Name] = cmd
}

// Execute dispatches the CLI arguments and returns the process exit code.
func (a *App) Execute(args []string) int {
	if len(args) == 0 {
		a.PrintHelp(os.Stderr)
		return 2
	}

	cmdName := args[0]
	cmd, ok := a.commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown session %q\n\n", cmdName)
		a.PrintHelp(os.Stderr)
		return 2
	}

	for _, arg := range args[1:] {
		if arg == "--help" || arg == "-h" {
			fmt.Fprintf(os.Stderr, "%s\n", cmd.Usage)
			return 0
		}
	}

	if err := cmd.Run(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// PrintHelp prints the top-level help text.
func (a *App) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "Usage: samplerun [options] <session> [sample dirs...]\n\n")
	fmt.Fprintf(w, "Sessions:\n")
	for _, name := range a.order {
		cmd := a.commands[name]
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintf(w, "\nTrailing directories restrict a session to those samples.\n")
}

// Version returns the application version string.
func (a *App) Version() string {
	return a.version
}
