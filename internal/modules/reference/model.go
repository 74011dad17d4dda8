package reference

import "strings"

// AuthorSummary is the picker/list shape of an author.
type AuthorSummary struct {
	ID         string `json:"id"`
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
}

// Author is the detailed author view, fetched fresh on every open.
type Author struct {
	AuthorSummary
	BirthDate string `json:"birth_date,omitempty"`
	DeathDate string `json:"death_date,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

// Publisher has a single shape for lists and details.
type Publisher struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
	WebURL  string `json:"web_url,omitempty"`
}

// WorkShort is the picker/list shape of a work.
type WorkShort struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Authors []AuthorSummary `json:"authors"`
	Year    *int            `json:"year,omitempty"`
}

// WorkDetailed is the detailed work view.
type WorkDetailed struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Year        *int            `json:"year,omitempty"`
	Authors     []AuthorSummary `json:"authors"`
}

// Short converts the detailed view to the list shape.
func (w *WorkDetailed) Short() WorkShort {
	return WorkShort{ID: w.ID, Title: w.Title, Authors: w.Authors, Year: w.Year}
}

// AuthorName formats an author for display: "First Last" without a middle
// name, "Last First Middle" with one.
func AuthorName(a AuthorSummary) string {
	last := strings.TrimSpace(a.LastName)
	first := strings.TrimSpace(a.FirstName)
	middle := strings.TrimSpace(a.MiddleName)
	if last == "" {
		return joinNonEmpty(first, middle)
	}
	if middle == "" {
		return joinNonEmpty(first, last)
	}
	return joinNonEmpty(last, first, middle)
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
