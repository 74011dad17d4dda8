package book

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/librarian/internal/apiclient"
)

// Handler exposes book search to the console front end. Book drafts are
// submitted through the workspace endpoints.
type Handler struct {
	service Service
	search  *Controller
}

func NewHandler(service Service, search *Controller) *Handler {
	return &Handler{service: service, search: search}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/books", func(r chi.Router) {
		r.Get("/", h.list)                  // GET  /api/v1/books?q=
		r.Get("/state", h.state)            // GET  /api/v1/books/state
		r.Post("/refresh", h.refresh)       // POST /api/v1/books/refresh
		r.Get("/{id}/internal", h.internal) // GET  /api/v1/books/{id}/internal
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.search.Search(r.Context(), r.URL.Query().Get("q"))
	h.settled(w, r)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	h.search.Refresh(r.Context())
	h.settled(w, r)
}

func (h *Handler) settled(w http.ResponseWriter, r *http.Request) {
	if err := h.search.Wait(r.Context()); err != nil {
		respond(w, http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
		return
	}
	h.state(w, r)
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.search.State())
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.FindInternal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		code := http.StatusBadGateway
		msg := apiclient.Message(err)
		if errors.Is(err, ErrNotFound) {
			code = http.StatusNotFound
			msg = err.Error()
		}
		respond(w, code, map[string]string{"error": msg})
		return
	}
	respond(w, http.StatusOK, b)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
