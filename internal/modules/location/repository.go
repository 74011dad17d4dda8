package location

import "context"

// Repository defines how locations are fetched from and created on the backend.
type Repository interface {
	ListByType(ctx context.Context, t Type) ([]*Location, error)
	// ListChildren returns an empty list, not an error, when the parent has
	// no children of childType.
	ListChildren(ctx context.Context, parentID string, childType Type) ([]*Location, error)
	Create(ctx context.Context, req CreateRequest) (*Location, error)
}
