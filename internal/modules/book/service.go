package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/modules/asset"
	"github.com/georgemunganga/librarian/internal/modules/reference"
)

var ErrNotFound = errors.New("book not found")

// Service defines book listing and composition.
type Service interface {
	// Search fetches every page matching query. A blank query lists all books.
	Search(ctx context.Context, scope Scope, query string) ([]Book, error)
	// FindInternal returns the privileged representation of the book with id.
	FindInternal(ctx context.Context, id string) (*Book, error)
	// Save creates the book when d has no ID and updates it otherwise.
	Save(ctx context.Context, d Draft) (*asset.Outcome[*Book], error)
}

type service struct {
	repo     Repository
	refs     *reference.Store
	assets   *asset.Submitter
	pageSize int
	maxPages int
}

func NewService(repo Repository, refs *reference.Store, assets *asset.Submitter, pageSize, maxPages int) Service {
	return &service{repo: repo, refs: refs, assets: assets, pageSize: pageSize, maxPages: maxPages}
}

func (s *service) Search(ctx context.Context, scope Scope, query string) ([]Book, error) {
	books, err := FetchAllPages(ctx, s.pageSize, s.maxPages, func(ctx context.Context, limit, offset int) (Page[Book], error) {
		return s.repo.List(ctx, scope, query, limit, offset)
	})
	if err != nil {
		return nil, fmt.Errorf("list %s books: %w", scope, err)
	}
	return books, nil
}

func (s *service) FindInternal(ctx context.Context, id string) (*Book, error) {
	books, err := s.Search(ctx, Internal, "")
	if err != nil {
		return nil, err
	}
	for i := range books {
		if books[i].ID == id {
			return &books[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *service) Save(ctx context.Context, d Draft) (*asset.Outcome[*Book], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if d.ID == "" {
		return s.create(ctx, d)
	}
	return s.update(ctx, d)
}

func (s *service) create(ctx context.Context, d Draft) (*asset.Outcome[*Book], error) {
	b, err := s.repo.Create(ctx, d.CreateRequest())
	if err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	if len(b.Works) == 0 {
		b.Works = s.refs.WorksByIDs(d.WorkIDs)
	}
	res := s.attachCover(ctx, b.ID, b.Extra, d.Cover)
	if res.State == asset.Attached {
		b.Extra = withCover(b.Extra, res.URL)
	}
	return &asset.Outcome[*Book]{Entity: b, Asset: res}, nil
}

func (s *service) update(ctx context.Context, d Draft) (*asset.Outcome[*Book], error) {
	req := d.UpdateRequest()
	if err := s.repo.Update(ctx, d.ID, req); err != nil {
		return nil, fmt.Errorf("update book %s: %w", d.ID, err)
	}
	b := &Book{
		ID:             d.ID,
		Title:          req.Title,
		FactoryBarcode: req.FactoryBarcode,
		Works:          s.refs.WorksByIDs(d.WorkIDs),
		Year:           req.Year,
		Description:    req.Description,
		Extra:          d.Extra,
	}
	if p, ok := s.refs.Publisher(d.PublisherID); ok {
		b.Publisher = &p
	}
	res := s.attachCover(ctx, d.ID, d.Extra, d.Cover)
	if res.State == asset.Attached {
		b.Extra = withCover(b.Extra, res.URL)
	}
	return &asset.Outcome[*Book]{Entity: b, Asset: res}, nil
}

func (s *service) attachCover(ctx context.Context, id string, extra map[string]interface{}, cover *apiclient.File) asset.Result {
	return s.assets.Attach(ctx, asset.Book, id, cover, func(ctx context.Context, url string) error {
		return s.repo.Update(ctx, id, UpdateRequest{Extra: withCover(extra, url)})
	})
}

// withCover copies extra and sets cover_url.
func withCover(extra map[string]interface{}, url string) map[string]interface{} {
	out := make(map[string]interface{}, len(extra)+1)
	for k, v := range extra {
		out[k] = v
	}
	out["cover_url"] = url
	return out
}
