package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/georgemunganga/librarian/internal/modules/book"
)

func newSearchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search [query...]",
		Short: "Search books; without a query every book is listed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.resume(cmd.Context()); err != nil {
				return err
			}
			a.session.Search.Search(cmd.Context(), strings.Join(args, " "))
			if err := a.session.Search.Wait(cmd.Context()); err != nil {
				return err
			}
			state := a.session.Search.State()
			if state.Err != "" {
				return errors.New(state.Err)
			}
			printBooks(cmd.OutOrStdout(), state.Books, a.session.IsPrivileged())
			return nil
		},
	}
}

func printBooks(out io.Writer, books []book.Book, withLocation bool) {
	if len(books) == 0 {
		fmt.Fprintln(out, "No books found.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := "BARCODE\tTITLE\tAUTHORS\tYEAR"
	if withLocation {
		header += "\tLOCATION"
	}
	fmt.Fprintln(tw, header)
	for i := range books {
		b := &books[i]
		year := "-"
		if b.Year != nil {
			year = fmt.Sprint(*b.Year)
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s", b.Barcode, b.Title, orDash(book.AuthorsLine(b)), year)
		if withLocation {
			row += "\t" + b.Location.String()
		}
		fmt.Fprintln(tw, row)
	}
	tw.Flush()
	fmt.Fprintf(out, "%d book(s)\n", len(books))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
