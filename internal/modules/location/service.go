package location

import (
	"context"
	"fmt"
)

// Service defines location composition on top of the tree cache.
type Service interface {
	// OpenDraft starts a draft and warms the parent type's list so the
	// parent picker can render.
	OpenDraft(ctx context.Context, t Type, parentID string) (Draft, error)
	// Create validates d, creates it and merges the result into the tree.
	Create(ctx context.Context, d Draft) (*Location, error)
}

type service struct {
	repo Repository
	tree *Tree
}

func NewService(repo Repository, tree *Tree) Service { return &service{repo: repo, tree: tree} }

func (s *service) OpenDraft(ctx context.Context, t Type, parentID string) (Draft, error) {
	d := NewDraft(t, parentID)
	if parent, ok := t.Parent(); ok {
		if _, err := s.tree.EnsureTopLevel(ctx, parent); err != nil {
			return d, err
		}
	}
	return d, nil
}

func (s *service) Create(ctx context.Context, d Draft) (*Location, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	loc, err := s.repo.Create(ctx, d.Request())
	if err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	s.tree.Created(loc)
	return loc, nil
}
