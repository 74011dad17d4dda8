package book

import (
	"strconv"
	"strings"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/validation"
)

// Draft is the form state of a book. WorkIDs keeps position order. Cover,
// when set, is uploaded after the book is saved.
type Draft struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	PublisherID    string                 `json:"publisher_id"`
	Year           string                 `json:"year"`
	Description    string                 `json:"description"`
	LocationID     string                 `json:"location_id"`
	FactoryBarcode string                 `json:"factory_barcode"`
	WorkIDs        []string               `json:"work_ids"`
	Extra          map[string]interface{} `json:"extra"`
	Cover          *apiclient.File        `json:"-"`
}

// Edit opens a draft populated from b. locationID is the effective id the
// location selector resolved for the book.
func Edit(b *Book, locationID string) Draft {
	d := Draft{
		ID:             b.ID,
		Title:          b.Title,
		Description:    b.Description,
		LocationID:     locationID,
		FactoryBarcode: b.FactoryBarcode,
		WorkIDs:        b.WorkIDs(),
		Extra:          b.Extra,
	}
	if b.Publisher != nil {
		d.PublisherID = b.Publisher.ID
	}
	if b.Year != nil {
		d.Year = strconv.Itoa(*b.Year)
	}
	return d
}

// AddWork appends id unless it is already part of the book.
func (d *Draft) AddWork(id string) {
	for _, v := range d.WorkIDs {
		if v == id {
			return
		}
	}
	d.WorkIDs = append(d.WorkIDs, id)
}

func (d *Draft) RemoveWork(id string) {
	out := d.WorkIDs[:0:0]
	for _, v := range d.WorkIDs {
		if v != id {
			out = append(out, v)
		}
	}
	d.WorkIDs = out
}

// Validate requires a title and at least one work.
func (d Draft) Validate() error {
	if err := validation.Required("title", d.Title); err != nil {
		return err
	}
	if len(d.WorkIDs) == 0 {
		return &validation.FieldError{Field: "works", Message: "select at least one work"}
	}
	_, err := validation.OptionalInt("year", d.Year)
	return err
}

func (d Draft) works() []WorkRef {
	refs := make([]WorkRef, 0, len(d.WorkIDs))
	for i, id := range d.WorkIDs {
		refs = append(refs, WorkRef{WorkID: id, Position: i + 1})
	}
	return refs
}

func (d Draft) fields() Fields {
	year, _ := validation.OptionalInt("year", d.Year)
	return Fields{
		Title:          strings.TrimSpace(d.Title),
		PublisherID:    d.PublisherID,
		Year:           year,
		Description:    strings.TrimSpace(d.Description),
		LocationID:     d.LocationID,
		FactoryBarcode: strings.TrimSpace(d.FactoryBarcode),
	}
}

// CreateRequest builds the create payload. Extra is never sent on create;
// the cover URL is attached afterwards.
func (d Draft) CreateRequest() CreateRequest {
	return CreateRequest{Book: d.fields(), Works: d.works()}
}

func (d Draft) UpdateRequest() UpdateRequest {
	f := d.fields()
	return UpdateRequest{
		Title:          f.Title,
		PublisherID:    f.PublisherID,
		Year:           f.Year,
		Description:    f.Description,
		LocationID:     f.LocationID,
		FactoryBarcode: f.FactoryBarcode,
		Works:          d.works(),
	}
}
