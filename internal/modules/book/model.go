package book

import (
	"strings"
	"time"

	"github.com/georgemunganga/librarian/internal/modules/location"
	"github.com/georgemunganga/librarian/internal/modules/reference"
)

// Book is a catalog copy. Location is only present in privileged results.
type Book struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Barcode        string                 `json:"barcode"`
	FactoryBarcode string                 `json:"factory_barcode,omitempty"`
	Publisher      *reference.Publisher   `json:"publisher,omitempty"`
	Works          []reference.WorkShort  `json:"works,omitempty"`
	Year           *int                   `json:"year,omitempty"`
	Description    string                 `json:"description,omitempty"`
	Extra          map[string]interface{} `json:"extra,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
	Location       *Location              `json:"location,omitempty"`
}

// CoverURL returns extra.cover_url, or "".
func (b *Book) CoverURL() string {
	if b.Extra == nil {
		return ""
	}
	url, _ := b.Extra["cover_url"].(string)
	return url
}

// WorkIDs lists the ids of the book's works in position order.
func (b *Book) WorkIDs() []string {
	ids := make([]string, 0, len(b.Works))
	for _, w := range b.Works {
		ids = append(ids, w.ID)
	}
	return ids
}

// AuthorsLine joins the distinct author names across all works, in order
// of first appearance.
func AuthorsLine(b *Book) string {
	seen := make(map[string]bool)
	var names []string
	for _, w := range b.Works {
		for _, a := range w.Authors {
			name := reference.AuthorName(a)
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

// Location is the denormalized placement of a book, from shelf up to building.
type Location struct {
	ShelfID      string `json:"shelf_id"`
	ShelfName    string `json:"shelf_name"`
	CabinetID    string `json:"cabinet_id"`
	CabinetName  string `json:"cabinet_name"`
	RoomID       string `json:"room_id"`
	RoomName     string `json:"room_name"`
	BuildingID   string `json:"building_id"`
	BuildingName string `json:"building_name"`
	Address      string `json:"address"`
}

// Path converts the snapshot into selector ids.
func (l *Location) Path() location.Path {
	if l == nil {
		return location.Path{}
	}
	return location.Path{
		BuildingID: l.BuildingID,
		RoomID:     l.RoomID,
		CabinetID:  l.CabinetID,
		ShelfID:    l.ShelfID,
	}
}

// String renders "building · room · cabinet · shelf, address".
func (l *Location) String() string {
	if l == nil {
		return "-"
	}
	var parts []string
	for _, name := range []string{l.BuildingName, l.RoomName, l.CabinetName, l.ShelfName} {
		if name != "" {
			parts = append(parts, name)
		}
	}
	out := strings.Join(parts, " · ")
	if l.Address != "" {
		out += ", " + l.Address
	}
	return out
}
