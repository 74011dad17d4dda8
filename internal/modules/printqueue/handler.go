package printqueue

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/modules/book"
	"github.com/georgemunganga/librarian/internal/modules/location"
)

// Handler exposes the print queue to the console front end.
type Handler struct {
	queue *Queue
	tree  *location.Tree
}

func NewHandler(queue *Queue, tree *location.Tree) *Handler {
	return &Handler{queue: queue, tree: tree}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/print", func(r chi.Router) {
		r.Get("/", h.list)
		r.Delete("/", h.clear)
		r.Post("/books", h.addBook)
		r.Post("/locations/{id}", h.addLocation)
		r.Delete("/{barcode}", h.remove)
		r.Post("/send", h.send)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.queue.Items())
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	h.queue.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addBook(w http.ResponseWriter, r *http.Request) {
	var b book.Book
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	added, err := h.queue.AddBook(&b)
	h.added(w, added, err)
}

func (h *Handler) addLocation(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.tree.Find(chi.URLParam(r, "id"))
	if !ok {
		respond(w, http.StatusNotFound, map[string]string{"error": "location is not loaded"})
		return
	}
	added, err := h.queue.AddLocation(loc)
	h.added(w, added, err)
}

func (h *Handler) added(w http.ResponseWriter, added bool, err error) {
	if err != nil {
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	respond(w, status, h.queue.Items())
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	h.queue.Remove(chi.URLParam(r, "barcode"))
	respond(w, http.StatusOK, h.queue.Items())
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	sent, err := h.queue.SendAll(r.Context())
	if err != nil {
		code := http.StatusBadGateway
		msg := apiclient.Message(err)
		switch {
		case errors.Is(err, ErrEmptyQueue):
			code, msg = http.StatusUnprocessableEntity, err.Error()
		case errors.Is(err, ErrSending):
			code, msg = http.StatusConflict, err.Error()
		}
		respond(w, code, map[string]interface{}{"error": msg, "sent": sent, "items": h.queue.Items()})
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"sent": sent, "items": h.queue.Items()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
