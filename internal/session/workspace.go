package session

import (
	"context"

	"github.com/georgemunganga/librarian/internal/modules/asset"
	"github.com/georgemunganga/librarian/internal/modules/book"
	"github.com/georgemunganga/librarian/internal/modules/location"
	"github.com/georgemunganga/librarian/internal/modules/reference"
)

// Workspace holds the open drafts, at most one per entity kind. Drafts stay
// open while a nested draft is composed, and a nested entity created from
// the workspace is merged into the open parent draft without touching its
// other fields: a new author joins the work draft, a new work joins the
// book draft, a new publisher becomes the book's publisher and a new
// location is selected in the book's location picker.
type Workspace struct {
	s *Session

	book      slot[book.Draft]
	work      slot[reference.WorkDraft]
	author    slot[reference.AuthorDraft]
	publisher slot[reference.PublisherDraft]
	location  slot[location.Draft]
}

func newWorkspace(s *Session) *Workspace { return &Workspace{s: s} }

// Reset closes every draft.
func (w *Workspace) Reset() {
	w.book.close()
	w.work.close()
	w.author.close()
	w.publisher.close()
	w.location.close()
}

// ── Books ───────────────────────────────────────────────

// OpenBook starts a new book draft with an empty location selection.
func (w *Workspace) OpenBook(ctx context.Context) (book.Draft, error) {
	w.s.Selector.Clear()
	d := w.book.open(book.Draft{})
	_, err := w.s.Tree.EnsureTopLevel(ctx, location.Building)
	return d, err
}

// EditBook opens a draft for b. When b carries no location the privileged
// listing is searched for it; a failed lookup keeps the data at hand. The
// location selector is pre-selected from the book's location.
func (w *Workspace) EditBook(ctx context.Context, b *book.Book) (book.Draft, error) {
	if !w.s.IsPrivileged() {
		return book.Draft{}, ErrNotPrivileged
	}
	if b.Location == nil {
		if found, err := w.s.Books.FindInternal(ctx, b.ID); err == nil {
			b = found
		} else {
			w.s.logger.Debug("book location lookup failed", "book", b.ID, "error", err)
		}
	}
	if _, err := w.s.Tree.EnsureTopLevel(ctx, location.Building); err != nil {
		w.s.logger.Warn("building list unavailable", "error", err)
	}
	locationID, err := w.s.Selector.Apply(ctx, b.Location.Path())
	d := w.book.open(book.Edit(b, locationID))
	return d, err
}

// Book returns the open book draft.
func (w *Workspace) Book() (book.Draft, bool) { return w.book.get() }

// EditBookDraft applies fn to the open book draft.
func (w *Workspace) EditBookDraft(fn func(*book.Draft)) error {
	if !w.book.edit(fn) {
		return ErrNoDraft
	}
	return nil
}

// SelectLocation changes one level of the book's location picker. Only a
// shelf is a valid placement, so choosing any higher level clears the
// draft's location before the options below it are reloaded.
func (w *Workspace) SelectLocation(ctx context.Context, level location.Type, id string) error {
	switch level {
	case location.Building, location.Room, location.Cabinet, location.Shelf:
	default:
		return location.ErrInvalidType
	}
	locationID := ""
	if level == location.Shelf {
		locationID = id
	}
	w.book.edit(func(d *book.Draft) { d.LocationID = locationID })

	switch level {
	case location.Building:
		return w.s.Selector.SelectBuilding(ctx, id)
	case location.Room:
		return w.s.Selector.SelectRoom(ctx, id)
	case location.Cabinet:
		return w.s.Selector.SelectCabinet(ctx, id)
	default:
		w.s.Selector.SelectShelf(id)
		return nil
	}
}

// BookResult is the outcome of a book submission.
type BookResult struct {
	asset.Outcome[*book.Book]
	// Queued is set when a new book was added to the print queue.
	Queued bool
	// PrintErr explains why a new book could not be queued.
	PrintErr error
}

// SubmitBook saves the open book draft. A new book is queued for label
// printing. The current search is refreshed and the draft closed. On error
// the draft stays open.
func (w *Workspace) SubmitBook(ctx context.Context) (*BookResult, error) {
	d, ok := w.book.get()
	if !ok {
		return nil, ErrNoDraft
	}
	out, err := w.s.Books.Save(ctx, d)
	if err != nil {
		return nil, err
	}
	res := &BookResult{Outcome: *out}
	if d.ID == "" {
		res.Queued, res.PrintErr = w.s.Print.AddBook(out.Entity)
	}
	w.book.close()
	w.s.Search.Refresh(ctx)
	return res, nil
}

func (w *Workspace) CloseBook() { w.book.close() }

// ── Works ───────────────────────────────────────────────

func (w *Workspace) OpenWork() reference.WorkDraft {
	return w.work.open(reference.WorkDraft{})
}

// EditWork opens a draft for the work with id. When the details cannot be
// fetched the cached summary is used.
func (w *Workspace) EditWork(ctx context.Context, id string) (reference.WorkDraft, error) {
	detail, err := w.s.Reference.Work(ctx, id)
	if err != nil {
		cached := w.s.References.WorksByIDs([]string{id})
		if len(cached) == 0 {
			return reference.WorkDraft{}, err
		}
		short := cached[0]
		detail = &reference.WorkDetailed{ID: short.ID, Title: short.Title, Year: short.Year, Authors: short.Authors}
	}
	return w.work.open(reference.EditWork(detail)), nil
}

func (w *Workspace) Work() (reference.WorkDraft, bool) { return w.work.get() }

func (w *Workspace) EditWorkDraft(fn func(*reference.WorkDraft)) error {
	if !w.work.edit(fn) {
		return ErrNoDraft
	}
	return nil
}

// SubmitWork saves the open work draft. A new work joins the open book draft.
func (w *Workspace) SubmitWork(ctx context.Context) (*reference.WorkDetailed, error) {
	d, ok := w.work.get()
	if !ok {
		return nil, ErrNoDraft
	}
	saved, err := w.s.Reference.SaveWork(ctx, d)
	if err != nil {
		return nil, err
	}
	if d.ID == "" {
		w.book.edit(func(b *book.Draft) { b.AddWork(saved.ID) })
	}
	w.work.close()
	return saved, nil
}

func (w *Workspace) CloseWork() { w.work.close() }

// ── Authors ─────────────────────────────────────────────

func (w *Workspace) OpenAuthor() reference.AuthorDraft {
	return w.author.open(reference.AuthorDraft{})
}

func (w *Workspace) EditAuthor(ctx context.Context, id string) (reference.AuthorDraft, error) {
	a, err := w.s.Reference.Author(ctx, id)
	if err != nil {
		return reference.AuthorDraft{}, err
	}
	return w.author.open(reference.EditAuthor(a)), nil
}

func (w *Workspace) Author() (reference.AuthorDraft, bool) { return w.author.get() }

func (w *Workspace) EditAuthorDraft(fn func(*reference.AuthorDraft)) error {
	if !w.author.edit(fn) {
		return ErrNoDraft
	}
	return nil
}

// SubmitAuthor saves the open author draft. A new author joins the open
// work draft.
func (w *Workspace) SubmitAuthor(ctx context.Context) (*asset.Outcome[*reference.Author], error) {
	d, ok := w.author.get()
	if !ok {
		return nil, ErrNoDraft
	}
	out, err := w.s.Reference.SaveAuthor(ctx, d)
	if err != nil {
		return nil, err
	}
	if d.ID == "" {
		w.work.edit(func(wd *reference.WorkDraft) { wd.AddAuthor(out.Entity.ID) })
	}
	w.author.close()
	return out, nil
}

func (w *Workspace) CloseAuthor() { w.author.close() }

// ── Publishers ──────────────────────────────────────────

func (w *Workspace) OpenPublisher() reference.PublisherDraft {
	return w.publisher.open(reference.PublisherDraft{})
}

func (w *Workspace) EditPublisher(ctx context.Context, id string) (reference.PublisherDraft, error) {
	p, err := w.s.Reference.Publisher(ctx, id)
	if err != nil {
		return reference.PublisherDraft{}, err
	}
	return w.publisher.open(reference.EditPublisher(p)), nil
}

func (w *Workspace) Publisher() (reference.PublisherDraft, bool) { return w.publisher.get() }

func (w *Workspace) EditPublisherDraft(fn func(*reference.PublisherDraft)) error {
	if !w.publisher.edit(fn) {
		return ErrNoDraft
	}
	return nil
}

// SubmitPublisher saves the open publisher draft. A new publisher becomes
// the publisher of the open book draft.
func (w *Workspace) SubmitPublisher(ctx context.Context) (*asset.Outcome[*reference.Publisher], error) {
	d, ok := w.publisher.get()
	if !ok {
		return nil, ErrNoDraft
	}
	out, err := w.s.Reference.SavePublisher(ctx, d)
	if err != nil {
		return nil, err
	}
	if d.ID == "" {
		w.book.edit(func(b *book.Draft) { b.PublisherID = out.Entity.ID })
	}
	w.publisher.close()
	return out, nil
}

func (w *Workspace) ClosePublisher() { w.publisher.close() }

// ── Locations ───────────────────────────────────────────

// OpenLocation starts a location draft. Passing a type or parent locks it.
func (w *Workspace) OpenLocation(ctx context.Context, t location.Type, parentID string) (location.Draft, error) {
	d, err := w.s.Locations.OpenDraft(ctx, t, parentID)
	w.location.open(d)
	return d, err
}

func (w *Workspace) Location() (location.Draft, bool) { return w.location.get() }

// EditLocationDraft applies fn to the open location draft. Locked fields
// are restored afterwards.
func (w *Workspace) EditLocationDraft(fn func(*location.Draft)) error {
	if !w.location.edit(func(d *location.Draft) {
		locked := *d
		fn(d)
		d.LockParent, d.LockType = locked.LockParent, locked.LockType
		if d.LockParent {
			d.ParentID = locked.ParentID
		}
		if d.LockType {
			d.Type = locked.Type
		}
	}) {
		return ErrNoDraft
	}
	return nil
}

// SubmitLocation creates the open location. When a book draft is open the
// new location is selected in its picker, and a new shelf becomes the
// book's location.
func (w *Workspace) SubmitLocation(ctx context.Context) (*location.Location, error) {
	d, ok := w.location.get()
	if !ok {
		return nil, ErrNoDraft
	}
	loc, err := w.s.Locations.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	w.book.edit(func(b *book.Draft) {
		w.s.Selector.Pick(loc)
		if loc.Type == location.Shelf {
			b.LocationID = loc.ID
		}
	})
	w.location.close()
	return loc, nil
}

func (w *Workspace) CloseLocation() { w.location.close() }
