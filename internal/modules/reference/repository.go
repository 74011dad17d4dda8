package reference

import "context"

// Repository defines backend access for authors, works and publishers.
type Repository interface {
	ListAuthors(ctx context.Context) ([]AuthorSummary, error)
	ListWorks(ctx context.Context) ([]WorkShort, error)
	ListPublishers(ctx context.Context) ([]Publisher, error)

	GetAuthor(ctx context.Context, id string) (*Author, error)
	CreateAuthor(ctx context.Context, req AuthorRequest) (*Author, error)
	UpdateAuthor(ctx context.Context, id string, req AuthorRequest) error

	GetWork(ctx context.Context, id string) (*WorkDetailed, error)
	CreateWork(ctx context.Context, req CreateWorkRequest) (*WorkDetailed, error)
	UpdateWork(ctx context.Context, id string, req UpdateWorkRequest) error
	DeleteWork(ctx context.Context, id string) error

	GetPublisher(ctx context.Context, id string) (*Publisher, error)
	CreatePublisher(ctx context.Context, req PublisherRequest) (*Publisher, error)
	UpdatePublisher(ctx context.Context, id string, req PublisherRequest) error
	DeletePublisher(ctx context.Context, id string) error
}

// AuthorRequest is the create/update payload of an author. Updates are
// partial: omitted fields are left unchanged.
type AuthorRequest struct {
	LastName   string  `json:"last_name,omitempty"`
	FirstName  *string `json:"first_name,omitempty"`
	MiddleName *string `json:"middle_name,omitempty"`
	BirthDate  *string `json:"birth_date,omitempty"`
	DeathDate  *string `json:"death_date,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	PhotoURL   *string `json:"photo_url,omitempty"`
}

// WorkFields are the scalar fields of a new work.
type WorkFields struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Year        *int    `json:"year,omitempty"`
}

// CreateWorkRequest is the payload of POST /admin/works.
type CreateWorkRequest struct {
	Work    WorkFields `json:"work"`
	Authors []string   `json:"authors"`
}

// UpdateWorkRequest is the payload of PUT /admin/works/{id}.
type UpdateWorkRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Year        *int     `json:"year,omitempty"`
	Authors     []string `json:"authors"`
}

// PublisherRequest is the create/update payload of a publisher.
type PublisherRequest struct {
	Name    string  `json:"name,omitempty"`
	LogoURL *string `json:"logo_url,omitempty"`
	WebURL  *string `json:"web_url,omitempty"`
}
