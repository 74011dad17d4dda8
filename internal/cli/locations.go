package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/georgemunganga/librarian/internal/modules/location"
)

func newLocationsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Show the location tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.resume(cmd.Context()); err != nil {
				return err
			}
			return showTree(cmd, a)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "expand <id>",
		Short: "Expand or collapse a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.resume(cmd.Context()); err != nil {
				return err
			}
			tree := a.session.Tree
			if _, err := tree.EnsureTopLevel(cmd.Context(), location.Building); err != nil {
				return err
			}
			node, ok := tree.Find(args[0])
			if !ok {
				return fmt.Errorf("location %s is not loaded", args[0])
			}
			if err := tree.ToggleExpand(cmd.Context(), node); err != nil {
				return err
			}
			return showTree(cmd, a)
		},
	})
	return cmd
}

func showTree(cmd *cobra.Command, a *app) error {
	tree := a.session.Tree
	roots, err := tree.EnsureTopLevel(cmd.Context(), location.Building)
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No buildings yet.")
		return nil
	}
	printNodes(cmd.OutOrStdout(), tree, roots, 0)
	return nil
}

func printNodes(out io.Writer, tree *location.Tree, nodes []*location.Location, depth int) {
	for _, n := range nodes {
		marker := " "
		if _, ok := n.Type.Child(); ok {
			marker = "+"
			if tree.IsExpanded(n.ID) {
				marker = "-"
			}
		}
		fmt.Fprintf(out, "%s%s %s  [%s %s]\n", strings.Repeat("  ", depth), marker, n.Name, n.Type.Label(), n.ID)
		if tree.IsExpanded(n.ID) {
			printNodes(out, tree, tree.Children(n.ID), depth+1)
		}
	}
}
