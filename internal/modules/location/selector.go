package location

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Selector is the building -> room -> cabinet -> shelf cascade used by the
// book editor. Changing a level clears every level below it before the
// children of the new selection are reloaded.
type Selector struct {
	tree *Tree

	mu   sync.Mutex
	path Path
}

// NewSelector creates a Selector reading options from tree.
func NewSelector(tree *Tree) *Selector { return &Selector{tree: tree} }

// Selection returns the current ids of the four levels.
func (s *Selector) Selection() Path {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Clear empties every level.
func (s *Selector) Clear() {
	s.mu.Lock()
	s.path = Path{}
	s.mu.Unlock()
}

// SelectBuilding selects id and forces a reload of its rooms.
func (s *Selector) SelectBuilding(ctx context.Context, id string) error {
	s.mu.Lock()
	s.path = Path{BuildingID: id}
	s.mu.Unlock()
	return s.reload(ctx, id, Room)
}

// SelectRoom selects id and forces a reload of its cabinets.
func (s *Selector) SelectRoom(ctx context.Context, id string) error {
	s.mu.Lock()
	s.path.RoomID = id
	s.path.CabinetID = ""
	s.path.ShelfID = ""
	s.mu.Unlock()
	return s.reload(ctx, id, Cabinet)
}

// SelectCabinet selects id and forces a reload of its shelves.
func (s *Selector) SelectCabinet(ctx context.Context, id string) error {
	s.mu.Lock()
	s.path.CabinetID = id
	s.path.ShelfID = ""
	s.mu.Unlock()
	return s.reload(ctx, id, Shelf)
}

// SelectShelf selects id. Shelves have no children to load.
func (s *Selector) SelectShelf(id string) {
	s.mu.Lock()
	s.path.ShelfID = id
	s.mu.Unlock()
}

// Pick selects a location at its own level without reloading, clearing the
// levels below it. Used when a location was just created from the editor.
func (s *Selector) Pick(loc *Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch loc.Type {
	case Building:
		s.path = Path{BuildingID: loc.ID}
	case Room:
		s.path.RoomID = loc.ID
		s.path.CabinetID = ""
		s.path.ShelfID = ""
	case Cabinet:
		s.path.CabinetID = loc.ID
		s.path.ShelfID = ""
	case Shelf:
		s.path.ShelfID = loc.ID
	}
}

// Apply pre-selects every level from a book's location snapshot and warms
// the children of each selected level so all four lists can render. It
// returns the effective location id.
func (s *Selector) Apply(ctx context.Context, p Path) (string, error) {
	s.mu.Lock()
	s.path = p
	s.mu.Unlock()

	var g errgroup.Group
	warm := func(parentID string, childType Type) {
		if parentID == "" {
			return
		}
		g.Go(func() error {
			_, err := s.tree.LoadChildren(ctx, parentID, childType, true)
			return err
		})
	}
	warm(p.BuildingID, Room)
	warm(p.RoomID, Cabinet)
	warm(p.CabinetID, Shelf)
	return p.EffectiveID(), g.Wait()
}

// Buildings lists the building options.
func (s *Selector) Buildings() []*Location { return s.tree.TopLevel(Building) }

// Rooms lists the rooms of the selected building.
func (s *Selector) Rooms() []*Location { return s.options(s.Selection().BuildingID) }

// Cabinets lists the cabinets of the selected room.
func (s *Selector) Cabinets() []*Location { return s.options(s.Selection().RoomID) }

// Shelves lists the shelves of the selected cabinet.
func (s *Selector) Shelves() []*Location { return s.options(s.Selection().CabinetID) }

func (s *Selector) options(parentID string) []*Location {
	if parentID == "" {
		return nil
	}
	return s.tree.Children(parentID)
}

func (s *Selector) reload(ctx context.Context, parentID string, childType Type) error {
	if parentID == "" {
		return nil
	}
	_, err := s.tree.LoadChildren(ctx, parentID, childType, true)
	return err
}
