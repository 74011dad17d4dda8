package reference

import (
	"strconv"
	"strings"
	"time"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/validation"
)

const dateLayout = "2006-01-02"

// AuthorDraft is the form state of an author. ID is empty for a new author.
// Photo, when set, is uploaded after the author is saved and replaces PhotoURL.
type AuthorDraft struct {
	ID         string          `json:"id"`
	LastName   string          `json:"last_name"`
	FirstName  string          `json:"first_name"`
	MiddleName string          `json:"middle_name"`
	BirthDate  string          `json:"birth_date"`
	DeathDate  string          `json:"death_date"`
	Bio        string          `json:"bio"`
	PhotoURL   string          `json:"photo_url"`
	Photo      *apiclient.File `json:"-"`
}

// EditAuthor opens a draft populated from a.
func EditAuthor(a *Author) AuthorDraft {
	return AuthorDraft{
		ID:         a.ID,
		LastName:   a.LastName,
		FirstName:  a.FirstName,
		MiddleName: a.MiddleName,
		BirthDate:  datePart(a.BirthDate),
		DeathDate:  datePart(a.DeathDate),
		Bio:        a.Bio,
		PhotoURL:   a.PhotoURL,
	}
}

func (d AuthorDraft) Validate() error {
	if err := validation.Required("last_name", d.LastName); err != nil {
		return err
	}
	if _, err := normalizeDate("birth_date", d.BirthDate); err != nil {
		return err
	}
	if _, err := normalizeDate("death_date", d.DeathDate); err != nil {
		return err
	}
	return nil
}

// Request builds the payload. A typed photo URL is only sent on create and
// only when no file is attached; edits change the photo through uploads.
func (d AuthorDraft) Request() AuthorRequest {
	birth, _ := normalizeDate("birth_date", d.BirthDate)
	death, _ := normalizeDate("death_date", d.DeathDate)
	req := AuthorRequest{
		LastName:   strings.TrimSpace(d.LastName),
		FirstName:  validation.OptionalString(d.FirstName),
		MiddleName: validation.OptionalString(d.MiddleName),
		BirthDate:  birth,
		DeathDate:  death,
		Bio:        validation.OptionalString(d.Bio),
	}
	if d.ID == "" && d.Photo == nil {
		req.PhotoURL = validation.OptionalString(d.PhotoURL)
	}
	return req
}

// normalizeDate turns a YYYY-MM-DD form value into the midnight UTC
// timestamp the backend expects.
func normalizeDate(field, value string) (*string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return nil, &validation.FieldError{Field: field, Message: "must be a date like 2006-01-02"}
	}
	out := value + "T00:00:00Z"
	return &out, nil
}

func datePart(value string) string {
	if len(value) > len(dateLayout) {
		return value[:len(dateLayout)]
	}
	return value
}

// WorkDraft is the form state of a work. AuthorIDs keeps selection order.
type WorkDraft struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Year        string   `json:"year"`
	AuthorIDs   []string `json:"author_ids"`
}

// EditWork opens a draft populated from w.
func EditWork(w *WorkDetailed) WorkDraft {
	d := WorkDraft{ID: w.ID, Title: w.Title, Description: w.Description}
	if w.Year != nil {
		d.Year = strconv.Itoa(*w.Year)
	}
	for _, a := range w.Authors {
		d.AuthorIDs = append(d.AuthorIDs, a.ID)
	}
	return d
}

// AddAuthor appends id to the selection unless it is already selected.
func (d *WorkDraft) AddAuthor(id string) {
	d.AuthorIDs = appendUnique(d.AuthorIDs, id)
}

func (d *WorkDraft) RemoveAuthor(id string) {
	d.AuthorIDs = removeBy(d.AuthorIDs, func(v string) bool { return v == id })
}

func (d WorkDraft) Validate() error {
	if err := validation.Required("title", d.Title); err != nil {
		return err
	}
	_, err := validation.OptionalInt("year", d.Year)
	return err
}

func (d WorkDraft) CreateRequest() CreateWorkRequest {
	year, _ := validation.OptionalInt("year", d.Year)
	return CreateWorkRequest{
		Work: WorkFields{
			Title:       strings.TrimSpace(d.Title),
			Description: validation.OptionalString(d.Description),
			Year:        year,
		},
		Authors: orEmpty(append([]string(nil), d.AuthorIDs...)),
	}
}

func (d WorkDraft) UpdateRequest() UpdateWorkRequest {
	year, _ := validation.OptionalInt("year", d.Year)
	return UpdateWorkRequest{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Year:        year,
		Authors:     orEmpty(append([]string(nil), d.AuthorIDs...)),
	}
}

// PublisherDraft is the form state of a publisher. Logo, when set, is
// uploaded after the publisher is saved.
type PublisherDraft struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	LogoURL string          `json:"logo_url"`
	WebURL  string          `json:"web_url"`
	Logo    *apiclient.File `json:"-"`
}

func EditPublisher(p *Publisher) PublisherDraft {
	return PublisherDraft{ID: p.ID, Name: p.Name, LogoURL: p.LogoURL, WebURL: p.WebURL}
}

func (d PublisherDraft) Validate() error {
	return validation.Required("name", d.Name)
}

func (d PublisherDraft) Request() PublisherRequest {
	req := PublisherRequest{
		Name:   strings.TrimSpace(d.Name),
		WebURL: validation.OptionalString(d.WebURL),
	}
	if d.ID == "" && d.Logo == nil {
		req.LogoURL = validation.OptionalString(d.LogoURL)
	}
	return req
}

func appendUnique(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}
