package printqueue

import "github.com/google/uuid"

// Placeholder fills the author line of books without authors.
const Placeholder = "—"

// Kind tells what a queued label is for.
type Kind string

const (
	KindBook     Kind = "book"
	KindLocation Kind = "location"
)

// Status is the delivery state of a queued item.
type Status string

const (
	Pending Status = "pending"
	Sent    Status = "sent"
)

// Item is one queued label. Barcode is the dedup key; ID is the id of the
// book or location the label was made for.
type Item struct {
	ID      string    `json:"id"`
	Key     uuid.UUID `json:"key"`
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Authors string    `json:"authors,omitempty"`
	Caption string    `json:"caption,omitempty"`
	Barcode string    `json:"barcode"`
	Status  Status    `json:"status"`
}

// Task is the payload of POST /admin/print.
type Task struct {
	Str1    string `json:"str1"`
	Str2    string `json:"str2"`
	Barcode string `json:"barcode"`
}

// Task renders the two label lines.
func (it Item) Task() Task {
	if it.Kind == KindLocation {
		return Task{Str1: it.Title, Str2: it.Caption, Barcode: it.Barcode}
	}
	line := it.Authors
	if line == "" {
		line = Placeholder
	}
	return Task{Str1: line, Str2: it.Title, Barcode: it.Barcode}
}
