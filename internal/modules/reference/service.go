package reference

import (
	"context"
	"fmt"

	"github.com/georgemunganga/librarian/internal/modules/asset"
)

// Service defines author, work and publisher composition. Saves create when
// the draft has no ID and update otherwise, then merge the result into the
// Store without a re-fetch.
type Service interface {
	Author(ctx context.Context, id string) (*Author, error)
	Work(ctx context.Context, id string) (*WorkDetailed, error)
	Publisher(ctx context.Context, id string) (*Publisher, error)

	SaveAuthor(ctx context.Context, d AuthorDraft) (*asset.Outcome[*Author], error)
	SaveWork(ctx context.Context, d WorkDraft) (*WorkDetailed, error)
	SavePublisher(ctx context.Context, d PublisherDraft) (*asset.Outcome[*Publisher], error)

	DeleteWork(ctx context.Context, id string) error
	DeletePublisher(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	store  *Store
	assets *asset.Submitter
}

func NewService(repo Repository, store *Store, assets *asset.Submitter) Service {
	return &service{repo: repo, store: store, assets: assets}
}

func (s *service) Author(ctx context.Context, id string) (*Author, error) {
	return s.repo.GetAuthor(ctx, id)
}

func (s *service) Work(ctx context.Context, id string) (*WorkDetailed, error) {
	w, err := s.repo.GetWork(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Authors == nil {
		w.Authors = []AuthorSummary{}
	}
	return w, nil
}

func (s *service) Publisher(ctx context.Context, id string) (*Publisher, error) {
	return s.repo.GetPublisher(ctx, id)
}

func (s *service) SaveAuthor(ctx context.Context, d AuthorDraft) (*asset.Outcome[*Author], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	req := d.Request()

	var a *Author
	if d.ID == "" {
		created, err := s.repo.CreateAuthor(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("create author: %w", err)
		}
		a = created
	} else {
		if err := s.repo.UpdateAuthor(ctx, d.ID, req); err != nil {
			return nil, fmt.Errorf("update author %s: %w", d.ID, err)
		}
		a = &Author{
			AuthorSummary: AuthorSummary{
				ID:         d.ID,
				LastName:   req.LastName,
				FirstName:  deref(req.FirstName),
				MiddleName: deref(req.MiddleName),
				PhotoURL:   d.PhotoURL,
			},
			BirthDate: deref(req.BirthDate),
			DeathDate: deref(req.DeathDate),
			Bio:       deref(req.Bio),
		}
	}

	res := s.assets.Attach(ctx, asset.Author, a.ID, d.Photo, func(ctx context.Context, url string) error {
		return s.repo.UpdateAuthor(ctx, a.ID, AuthorRequest{PhotoURL: &url})
	})
	if res.State == asset.Attached {
		a.PhotoURL = res.URL
	}

	if d.ID == "" {
		s.store.PrependAuthor(a.AuthorSummary)
	} else {
		s.store.ReplaceAuthor(a.AuthorSummary)
	}
	return &asset.Outcome[*Author]{Entity: a, Asset: res}, nil
}

func (s *service) SaveWork(ctx context.Context, d WorkDraft) (*WorkDetailed, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	authors := s.store.AuthorsByIDs(d.AuthorIDs)

	if d.ID == "" {
		req := d.CreateRequest()
		created, err := s.repo.CreateWork(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("create work: %w", err)
		}
		if len(created.Authors) == 0 {
			created.Authors = authors
		}
		s.store.PrependWork(WorkShort{
			ID:      created.ID,
			Title:   created.Title,
			Authors: authors,
			Year:    req.Work.Year,
		})
		return created, nil
	}

	req := d.UpdateRequest()
	if err := s.repo.UpdateWork(ctx, d.ID, req); err != nil {
		return nil, fmt.Errorf("update work %s: %w", d.ID, err)
	}
	updated := &WorkDetailed{
		ID:          d.ID,
		Title:       req.Title,
		Description: req.Description,
		Year:        req.Year,
		Authors:     authors,
	}
	s.store.ReplaceWork(updated.Short())
	return updated, nil
}

func (s *service) SavePublisher(ctx context.Context, d PublisherDraft) (*asset.Outcome[*Publisher], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	req := d.Request()

	var p *Publisher
	if d.ID == "" {
		created, err := s.repo.CreatePublisher(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}
		p = created
	} else {
		if err := s.repo.UpdatePublisher(ctx, d.ID, req); err != nil {
			return nil, fmt.Errorf("update publisher %s: %w", d.ID, err)
		}
		p = &Publisher{ID: d.ID, Name: req.Name, LogoURL: d.LogoURL, WebURL: deref(req.WebURL)}
	}

	res := s.assets.Attach(ctx, asset.Publisher, p.ID, d.Logo, func(ctx context.Context, url string) error {
		return s.repo.UpdatePublisher(ctx, p.ID, PublisherRequest{LogoURL: &url})
	})
	if res.State == asset.Attached {
		p.LogoURL = res.URL
	}

	if d.ID == "" {
		s.store.PrependPublisher(*p)
	} else {
		s.store.ReplacePublisher(*p)
	}
	return &asset.Outcome[*Publisher]{Entity: p, Asset: res}, nil
}

func (s *service) DeleteWork(ctx context.Context, id string) error {
	if err := s.repo.DeleteWork(ctx, id); err != nil {
		return fmt.Errorf("delete work %s: %w", id, err)
	}
	s.store.RemoveWork(id)
	return nil
}

func (s *service) DeletePublisher(ctx context.Context, id string) error {
	if err := s.repo.DeletePublisher(ctx, id); err != nil {
		return fmt.Errorf("delete publisher %s: %w", id, err)
	}
	s.store.RemovePublisher(id)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
