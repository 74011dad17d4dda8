package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/modules/book"
	"github.com/georgemunganga/librarian/internal/modules/location"
	"github.com/georgemunganga/librarian/internal/modules/reference"
)

func newAddCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create catalog entries",
	}
	cmd.AddCommand(
		newAddAuthorCommand(a),
		newAddPublisherCommand(a),
		newAddWorkCommand(a),
		newAddBookCommand(a),
		newAddLocationCommand(a),
	)
	return cmd
}

func newAddAuthorCommand(a *app) *cobra.Command {
	var d reference.AuthorDraft
	var photo string
	cmd := &cobra.Command{
		Use:   "author",
		Short: "Create an author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.resume(cmd.Context()); err != nil {
				return err
			}
			file, closeFile, err := openImage(photo)
			if err != nil {
				return err
			}
			defer closeFile()
			d.Photo = file

			ws := a.session.Workspace
			ws.OpenAuthor()
			defer ws.CloseAuthor()
			if err := ws.EditAuthorDraft(func(draft *reference.AuthorDraft) { *draft = d }); err != nil {
				return err
			}
			out, err := ws.SubmitAuthor(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created author %s (%s)\n", reference.AuthorName(out.Entity.AuthorSummary), out.Entity.ID)
			warn(cmd.ErrOrStderr(), out.Warning())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.LastName, "last", "", "last name (required)")
	f.StringVar(&d.FirstName, "first", "", "first name")
	f.StringVar(&d.MiddleName, "middle", "", "middle name")
	f.StringVar(&d.BirthDate, "born", "", "birth date, YYYY-MM-DD")
	f.StringVar(&d.DeathDate, "died", "", "death date, YYYY-MM-DD")
	f.StringVar(&d.Bio, "bio", "", "short biography")
	f.StringVar(&d.PhotoURL, "photo-url", "", "photo URL when no file is uploaded")
	f.StringVar(&photo, "photo", "", "photo file to upload")
	return cmd
}

func newAddPublisherCommand(a *app) *cobra.Command {
	var d reference.PublisherDraft
	var logo string
	cmd := &cobra.Command{
		Use:   "publisher",
		Short: "Create a publisher",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.resume(cmd.Context()); err != nil {
				return err
			}
			file, closeFile, err := openImage(logo)
			if err != nil {
				return err
			}
			defer closeFile()
			d.Logo = file

			ws := a.session.Workspace
			ws.OpenPublisher()
			defer ws.ClosePublisher()
			if err := ws.EditPublisherDraft(func(draft *reference.PublisherDraft) { *draft = d }); err != nil {
				return err
			}
			out, err := ws.SubmitPublisher(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created publisher %s (%s)\n", out.Entity.Name, out.Entity.ID)
			warn(cmd.ErrOrStderr(), out.Warning())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.Name, "name", "", "publisher name (required)")
	f.StringVar(&d.WebURL, "web", "", "web site")
	f.StringVar(&d.LogoURL, "logo-url", "", "logo URL when no file is uploaded")
	f.StringVar(&logo, "logo", "", "logo file to upload")
	return cmd
}

func newAddWorkCommand(a *app) *cobra.Command {
	var d reference.WorkDraft
	var authors []string
	cmd := &cobra.Command{
		Use:   "work",
		Short: "Create a work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.resume(cmd.Context()); err != nil {
				return err
			}
			ws := a.session.Workspace
			ws.OpenWork()
			defer ws.CloseWork()
			err := ws.EditWorkDraft(func(draft *reference.WorkDraft) {
				*draft = d
				for _, id := range authors {
					draft.AddAuthor(id)
				}
			})
			if err != nil {
				return err
			}
			w, err := ws.SubmitWork(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created work %s (%s)\n", w.Title, w.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.Title, "title", "", "title (required)")
	f.StringVar(&d.Description, "description", "", "description")
	f.StringVar(&d.Year, "year", "", "year written")
	f.StringSliceVar(&authors, "author", nil, "author id, repeatable")
	return cmd
}

func newAddBookCommand(a *app) *cobra.Command {
	var d book.Draft
	var works []string
	var shelf, cover string
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Create a book and queue its label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.resume(cmd.Context()); err != nil {
				return err
			}
			file, closeFile, err := openImage(cover)
			if err != nil {
				return err
			}
			defer closeFile()

			ws := a.session.Workspace
			if _, err := ws.OpenBook(cmd.Context()); err != nil {
				return err
			}
			defer ws.CloseBook()
			err = ws.EditBookDraft(func(draft *book.Draft) {
				*draft = d
				draft.Cover = file
				for _, id := range works {
					draft.AddWork(id)
				}
			})
			if err != nil {
				return err
			}
			if shelf != "" {
				if err := ws.SelectLocation(cmd.Context(), location.Shelf, shelf); err != nil {
					return err
				}
			}
			res, err := ws.SubmitBook(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created book %s (%s), barcode %s\n", res.Entity.Title, res.Entity.ID, orDash(res.Entity.Barcode))
			warn(cmd.ErrOrStderr(), res.Warning())
			switch {
			case res.Queued:
				fmt.Fprintln(out, "Label queued; run `librarian print send` to print it.")
			case res.PrintErr != nil:
				warn(cmd.ErrOrStderr(), res.PrintErr)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.Title, "title", "", "title (required)")
	f.StringSliceVar(&works, "work", nil, "work id in position order, repeatable (at least one)")
	f.StringVar(&d.PublisherID, "publisher", "", "publisher id")
	f.StringVar(&d.Year, "year", "", "publication year")
	f.StringVar(&d.Description, "description", "", "description")
	f.StringVar(&d.FactoryBarcode, "factory-barcode", "", "barcode printed by the publisher")
	f.StringVar(&shelf, "shelf", "", "shelf id")
	f.StringVar(&cover, "cover", "", "cover image to upload")
	return cmd
}

func newAddLocationCommand(a *app) *cobra.Command {
	var d location.Draft
	cmd := &cobra.Command{
		Use:   "location <building|room|cabinet|shelf>",
		Short: "Create a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := location.ParseType(args[0])
			if err != nil {
				return err
			}
			if err := a.resume(cmd.Context()); err != nil {
				return err
			}
			ws := a.session.Workspace
			if _, err := ws.OpenLocation(cmd.Context(), t, d.ParentID); err != nil {
				return err
			}
			defer ws.CloseLocation()
			err = ws.EditLocationDraft(func(draft *location.Draft) {
				draft.Name = d.Name
				draft.Address = d.Address
				draft.Description = d.Description
			})
			if err != nil {
				return err
			}
			loc, err := ws.SubmitLocation(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s), barcode %s\n", loc.Type, loc.Name, loc.ID, orDash(loc.Barcode))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&d.Name, "name", "", "name (required)")
	f.StringVar(&d.ParentID, "parent", "", "parent location id, required below building")
	f.StringVar(&d.Address, "address", "", "street address, buildings only")
	f.StringVar(&d.Description, "description", "", "description")
	return cmd
}

// openImage opens path for upload. An empty path yields no file.
func openImage(path string) (*apiclient.File, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open image: %w", err)
	}
	return &apiclient.File{Name: filepath.Base(path), Body: f}, func() { f.Close() }, nil
}

func warn(w io.Writer, err error) {
	if err != nil {
		fmt.Fprintln(w, "Warning:", err)
	}
}
