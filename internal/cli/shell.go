package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func newShellCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session; the print queue and search survive between commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "librarian> ",
				HistoryFile:     a.cfg.HistoryFile,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("failed to initialize readline: %w", err)
			}
			defer rl.Close()
			return runShell(cmd, a, rl)
		},
	}
}

func runShell(cmd *cobra.Command, a *app, rl *readline.Instance) error {
	a.readPassword = rl.ReadPassword
	defer func() { a.readPassword = a.terminalPassword }()

	if err := a.resume(cmd.Context()); err != nil {
		fmt.Fprintln(rl.Stderr(), err)
	}
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			fmt.Fprintln(rl.Stderr(), "Use 'exit' or 'quit' to leave the shell.")
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		args := parseArgs(strings.TrimSpace(line))
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "exit", "quit":
			return nil
		case "shell":
			fmt.Fprintln(rl.Stderr(), "already in the shell")
			continue
		}

		root := newRootCommand(a)
		root.SetArgs(args)
		root.SetOut(rl.Stdout())
		root.SetErr(rl.Stderr())
		if err := root.ExecuteContext(cmd.Context()); err != nil {
			fmt.Fprintln(rl.Stderr(), "Error:", err)
		}
	}
}

// parseArgs splits a shell line on spaces and tabs. Double quotes group
// words into one argument.
func parseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes, quoted := false, false

	flush := func() {
		if current.Len() > 0 || quoted {
			args = append(args, current.String())
			current.Reset()
		}
		quoted = false
	}
	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			quoted = true
		case (r == ' ' || r == '\t') && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return args
}
