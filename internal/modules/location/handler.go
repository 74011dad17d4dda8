package location

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/validation"
)

// Handler exposes the location cache to the console front end.
type Handler struct {
	service  Service
	tree     *Tree
	selector *Selector
}

func NewHandler(service Service, tree *Tree, selector *Selector) *Handler {
	return &Handler{service: service, tree: tree, selector: selector}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/locations", func(r chi.Router) {
		r.Get("/tree", h.getTree)
		r.Get("/types/{type}", h.listByType)
		r.Get("/{id}/children", h.listChildren)
		r.Post("/{id}/toggle", h.toggle)
		r.Post("/", h.create)

		r.Get("/selection", h.getSelection)
		r.Put("/selection", h.setSelection)
	})
}

// Node is a tree row with its view state. Children are only included for
// expanded nodes.
type Node struct {
	*Location
	Expanded bool    `json:"expanded"`
	Loading  bool    `json:"loading"`
	Children []*Node `json:"children,omitempty"`
}

func (h *Handler) getTree(w http.ResponseWriter, r *http.Request) {
	roots, err := h.tree.EnsureTopLevel(r.Context(), Building)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"nodes": h.nodes(roots),
		"error": h.tree.Err(),
	})
}

func (h *Handler) nodes(list []*Location) []*Node {
	out := make([]*Node, 0, len(list))
	for _, loc := range list {
		n := &Node{
			Location: loc,
			Expanded: h.tree.IsExpanded(loc.ID),
			Loading:  h.tree.IsLoading(loc.ID),
		}
		if n.Expanded {
			n.Children = h.nodes(h.tree.Children(loc.ID))
		}
		out = append(out, n)
	}
	return out
}

func (h *Handler) listByType(w http.ResponseWriter, r *http.Request) {
	t, err := ParseType(chi.URLParam(r, "type"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	list, err := h.tree.EnsureTopLevel(r.Context(), t)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, list)
}

func (h *Handler) listChildren(w http.ResponseWriter, r *http.Request) {
	t, err := ParseType(r.URL.Query().Get("type"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	reset := r.URL.Query().Get("reset") == "true"
	list, err := h.tree.LoadChildren(r.Context(), chi.URLParam(r, "id"), t, reset)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, list)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	node, ok := h.tree.Find(chi.URLParam(r, "id"))
	if !ok {
		respond(w, http.StatusNotFound, map[string]string{"error": "location is not loaded"})
		return
	}
	if err := h.tree.ToggleExpand(r.Context(), node); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, h.nodes([]*Location{node})[0])
}

type createRequest struct {
	ParentID    string `json:"parent_id"`
	Type        Type   `json:"type"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	loc, err := h.service.Create(r.Context(), Draft{
		ParentID:    req.ParentID,
		Type:        req.Type,
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, loc)
}

type selectionView struct {
	Path        Path        `json:"path"`
	EffectiveID string      `json:"effective_id"`
	Buildings   []*Location `json:"buildings"`
	Rooms       []*Location `json:"rooms"`
	Cabinets    []*Location `json:"cabinets"`
	Shelves     []*Location `json:"shelves"`
}

func (h *Handler) getSelection(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.selection())
}

func (h *Handler) selection() selectionView {
	p := h.selector.Selection()
	return selectionView{
		Path:        p,
		EffectiveID: p.EffectiveID(),
		Buildings:   h.selector.Buildings(),
		Rooms:       h.selector.Rooms(),
		Cabinets:    h.selector.Cabinets(),
		Shelves:     h.selector.Shelves(),
	}
}

type selectRequest struct {
	Level Type   `json:"level"`
	ID    string `json:"id"`
}

func (h *Handler) setSelection(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var err error
	switch req.Level {
	case Building:
		if _, err = h.tree.EnsureTopLevel(r.Context(), Building); err == nil {
			err = h.selector.SelectBuilding(r.Context(), req.ID)
		}
	case Room:
		err = h.selector.SelectRoom(r.Context(), req.ID)
	case Cabinet:
		err = h.selector.SelectCabinet(r.Context(), req.ID)
	case Shelf:
		h.selector.SelectShelf(req.ID)
	default:
		respond(w, http.StatusBadRequest, map[string]string{"error": ErrInvalidType.Error()})
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, h.selection())
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case validation.IsFieldError(err):
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrInvalidType):
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		respond(w, http.StatusBadGateway, map[string]string{"error": apiclient.Message(err)})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
