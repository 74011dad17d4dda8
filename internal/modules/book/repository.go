package book

import "context"

// Scope selects the public or the privileged book listing.
type Scope string

const (
	Public   Scope = "public"
	Internal Scope = "internal"
)

// Repository defines backend access for books.
type Repository interface {
	List(ctx context.Context, scope Scope, query string, limit, offset int) (Page[Book], error)
	Create(ctx context.Context, req CreateRequest) (*Book, error)
	Update(ctx context.Context, id string, req UpdateRequest) error
}

// WorkRef places a work in a book.
type WorkRef struct {
	WorkID   string `json:"work_id"`
	Position int    `json:"position"`
}

// Fields are the scalar book fields of a create payload.
type Fields struct {
	Title          string                 `json:"title"`
	PublisherID    string                 `json:"publisher_id,omitempty"`
	Year           *int                   `json:"year,omitempty"`
	Description    string                 `json:"description,omitempty"`
	LocationID     string                 `json:"location_id,omitempty"`
	FactoryBarcode string                 `json:"factory_barcode,omitempty"`
	Extra          map[string]interface{} `json:"extra,omitempty"`
}

// CreateRequest is the payload of POST /admin/books.
type CreateRequest struct {
	Book  Fields    `json:"book"`
	Works []WorkRef `json:"works"`
}

// UpdateRequest is the partial payload of PUT /admin/books/{id}.
type UpdateRequest struct {
	Title          string                 `json:"title,omitempty"`
	PublisherID    string                 `json:"publisher_id,omitempty"`
	Year           *int                   `json:"year,omitempty"`
	Description    string                 `json:"description,omitempty"`
	LocationID     string                 `json:"location_id,omitempty"`
	FactoryBarcode string                 `json:"factory_barcode,omitempty"`
	Extra          map[string]interface{} `json:"extra,omitempty"`
	Works          []WorkRef              `json:"works,omitempty"`
}
