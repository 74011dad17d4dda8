package location

import (
	"errors"
	"time"
)

// ErrInvalidType is returned for a location type outside the four known levels.
var ErrInvalidType = errors.New("invalid location type")

// Type is a level of the physical hierarchy.
type Type string

const (
	Building Type = "building"
	Room     Type = "room"
	Cabinet  Type = "cabinet"
	Shelf    Type = "shelf"
)

// Types lists the levels from the root down.
var Types = []Type{Building, Room, Cabinet, Shelf}

// ParseType validates s as a location type.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case Building, Room, Cabinet, Shelf:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}

// Parent returns the type a location of type t must hang under.
// Buildings are roots.
func (t Type) Parent() (Type, bool) {
	switch t {
	case Room:
		return Building, true
	case Cabinet:
		return Room, true
	case Shelf:
		return Cabinet, true
	default:
		return "", false
	}
}

// Child returns the type of t's direct children. Shelves are leaves.
func (t Type) Child() (Type, bool) {
	switch t {
	case Building:
		return Room, true
	case Room:
		return Cabinet, true
	case Cabinet:
		return Shelf, true
	default:
		return "", false
	}
}

// Label is the display name of the level.
func (t Type) Label() string {
	switch t {
	case Building:
		return "Building"
	case Room:
		return "Room"
	case Cabinet:
		return "Cabinet"
	case Shelf:
		return "Shelf"
	default:
		return "Location"
	}
}

// Location is one node of the physical hierarchy as the backend returns it.
type Location struct {
	ID          string    `json:"id"`
	ParentID    string    `json:"parent_id,omitempty"`
	Type        Type      `json:"type"`
	Name        string    `json:"name"`
	Barcode     string    `json:"barcode"`
	Address     string    `json:"address,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PrintLine is the second label line of a location print job.
func PrintLine(loc *Location) string {
	label := loc.Type.Label()
	if loc.Type == Building && loc.Address != "" {
		return label + ": " + loc.Address
	}
	return label
}

// Path identifies a location by the ids of each level, as carried in a
// book's location snapshot. Missing levels are empty.
type Path struct {
	BuildingID string
	RoomID     string
	CabinetID  string
	ShelfID    string
}

// EffectiveID is the most specific non-empty id of the path.
func (p Path) EffectiveID() string {
	switch {
	case p.ShelfID != "":
		return p.ShelfID
	case p.CabinetID != "":
		return p.CabinetID
	case p.RoomID != "":
		return p.RoomID
	default:
		return p.BuildingID
	}
}
