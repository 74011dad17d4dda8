package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the librarian command line.
func Execute() {
	a := newApp()
	root := newRootCommand(a)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "librarian",
		Short:         "Catalog console for the library backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", a.configPath, "path to a YAML config file")

	root.AddCommand(
		newLoginCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newSearchCommand(a),
		newAddCommand(a),
		newLocationsCommand(a),
		newPrintCommand(a),
		newServeCommand(a),
		newShellCommand(a),
	)
	return root
}
