package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/georgemunganga/librarian/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the console API for a local front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}
			// A stored token resumes the session; otherwise the front end
			// signs in through the API.
			if err := a.resume(cmd.Context()); err != nil {
				a.logger.Info("serving without a session", "reason", err)
			}
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, addr, server.NewRouter(a.session), a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
