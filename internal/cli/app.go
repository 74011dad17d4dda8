// Package cli is the librarian command line: one-shot cobra commands, an
// interactive shell running the same commands, and the local console API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/config"
	"github.com/georgemunganga/librarian/internal/modules/auth"
	"github.com/georgemunganga/librarian/internal/session"
)

// app is the state shared by every command of one process.
type app struct {
	configPath string
	stdin      io.Reader
	stderr     io.Writer

	// readPassword prompts without echo. The shell replaces it with its
	// readline instance.
	readPassword func(prompt string) ([]byte, error)

	cfg     *config.Config
	logger  *slog.Logger
	session *session.Session
	started bool
}

func newApp() *app {
	a := &app{stdin: os.Stdin, stderr: os.Stderr}
	a.readPassword = a.terminalPassword
	return a
}

// init loads the configuration and wires the session once.
func (a *app) init() error {
	if a.session != nil {
		return nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(a.stderr)

	tokens, err := auth.NewFileStore(cfg.TokenFile)
	if err != nil {
		return err
	}
	client := apiclient.New(cfg.APIURL, cfg.Timeout, tokens, a.logger)
	a.session = session.New(client, tokens, session.Options{
		PageSize: cfg.PageSize,
		MaxPages: cfg.MaxPages,
	}, a.logger)
	return nil
}

// resume starts the session from the stored token. Reference data that
// fails to load is reported but does not stop the command.
func (a *app) resume(ctx context.Context) error {
	if err := a.init(); err != nil {
		return err
	}
	if a.started {
		return nil
	}
	u, err := a.session.Start(ctx)
	if errors.Is(err, session.ErrNotAuthenticated) {
		return fmt.Errorf("%w: run `librarian login` first", err)
	}
	if u == nil {
		return err
	}
	if err != nil {
		a.logger.Warn("session started without reference data", "error", err)
	}
	a.started = true
	return nil
}

func (a *app) terminalPassword(prompt string) ([]byte, error) {
	fmt.Fprint(a.stderr, prompt)
	defer fmt.Fprintln(a.stderr)
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return term.ReadPassword(int(f.Fd()))
	}
	return readLine(a.stdin)
}

// readLine reads up to the next newline without buffering past it.
func readLine(r io.Reader) ([]byte, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				break
			}
			line = append(line, buf[0])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return line, nil
}
