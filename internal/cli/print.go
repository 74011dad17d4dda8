package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/georgemunganga/librarian/internal/modules/book"
	"github.com/georgemunganga/librarian/internal/modules/location"
	"github.com/georgemunganga/librarian/internal/modules/printqueue"
)

func newPrintCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Manage the label print queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}
			printQueue(cmd.OutOrStdout(), a.session.Print.Items())
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "book <barcode|id>",
			Short: "Queue a book label from the last search",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.resume(cmd.Context()); err != nil {
					return err
				}
				b := findBook(a.session.Search.State().Books, args[0])
				if b == nil {
					a.session.Search.Search(cmd.Context(), args[0])
					if err := a.session.Search.Wait(cmd.Context()); err != nil {
						return err
					}
					b = findBook(a.session.Search.State().Books, args[0])
				}
				if b == nil {
					return fmt.Errorf("no book with barcode or id %s", args[0])
				}
				added, err := a.session.Print.AddBook(b)
				if err != nil {
					return err
				}
				reportAdded(cmd.OutOrStdout(), added, b.Barcode)
				return nil
			},
		},
		&cobra.Command{
			Use:   "location <id>",
			Short: "Queue a location label",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.resume(cmd.Context()); err != nil {
					return err
				}
				loc, err := findLocation(cmd, a, args[0])
				if err != nil {
					return err
				}
				added, err := a.session.Print.AddLocation(loc)
				if err != nil {
					return err
				}
				reportAdded(cmd.OutOrStdout(), added, loc.Barcode)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <barcode>",
			Short: "Remove a label from the queue",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.init(); err != nil {
					return err
				}
				a.session.Print.Remove(args[0])
				printQueue(cmd.OutOrStdout(), a.session.Print.Items())
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the queue",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.init(); err != nil {
					return err
				}
				a.session.Print.Clear()
				return nil
			},
		},
		&cobra.Command{
			Use:   "send",
			Short: "Print every queued label",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.resume(cmd.Context()); err != nil {
					return err
				}
				sent, err := a.session.Print.SendAll(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "%d label(s) sent\n", sent)
				if err != nil {
					printQueue(cmd.OutOrStdout(), a.session.Print.Items())
				}
				return err
			},
		},
	)
	return cmd
}

func findBook(books []book.Book, key string) *book.Book {
	for i := range books {
		if books[i].Barcode == key || books[i].ID == key {
			return &books[i]
		}
	}
	return nil
}

// findLocation looks id up in the tree, loading every top-level list first.
func findLocation(cmd *cobra.Command, a *app, id string) (*location.Location, error) {
	tree := a.session.Tree
	if loc, ok := tree.Find(id); ok {
		return loc, nil
	}
	for _, t := range location.Types {
		if _, err := tree.EnsureTopLevel(cmd.Context(), t); err != nil {
			return nil, err
		}
	}
	if loc, ok := tree.Find(id); ok {
		return loc, nil
	}
	return nil, fmt.Errorf("no location with id %s", id)
}

func reportAdded(out io.Writer, added bool, barcode string) {
	if added {
		fmt.Fprintf(out, "Queued %s\n", barcode)
		return
	}
	fmt.Fprintf(out, "%s is already queued\n", barcode)
}

func printQueue(out io.Writer, items []printqueue.Item) {
	if len(items) == 0 {
		fmt.Fprintln(out, "Print queue is empty.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BARCODE\tLINE 1\tLINE 2\tSTATUS")
	for _, it := range items {
		task := it.Task()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Barcode, task.Str1, task.Str2, it.Status)
	}
	tw.Flush()
}
