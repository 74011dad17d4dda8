package reference

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/modules/asset"
	"github.com/georgemunganga/librarian/internal/validation"
)

type Handler struct {
	service Service
	store   *Store
}

func NewHandler(service Service, store *Store) *Handler {
	return &Handler{service: service, store: store}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/reference", func(r chi.Router) {
		r.Get("/authors", h.listAuthors)
		r.Post("/authors", h.saveAuthor)
		r.Get("/authors/{id}", h.getAuthor)
		r.Put("/authors/{id}", h.saveAuthor)

		r.Get("/works", h.listWorks)
		r.Post("/works", h.saveWork)
		r.Get("/works/{id}", h.getWork)
		r.Put("/works/{id}", h.saveWork)
		r.Delete("/works/{id}", h.deleteWork)

		r.Get("/publishers", h.listPublishers)
		r.Post("/publishers", h.savePublisher)
		r.Get("/publishers/{id}", h.getPublisher)
		r.Put("/publishers/{id}", h.savePublisher)
		r.Delete("/publishers/{id}", h.deletePublisher)
	})
}

func (h *Handler) ensureLoaded(w http.ResponseWriter, r *http.Request) bool {
	if err := h.store.LoadAll(r.Context()); err != nil {
		respondError(w, err)
		return false
	}
	return true
}

func (h *Handler) listAuthors(w http.ResponseWriter, r *http.Request) {
	if !h.ensureLoaded(w, r) {
		return
	}
	respond(w, http.StatusOK, FilterAuthors(r.URL.Query().Get("q"), h.store.Authors()))
}

func (h *Handler) listWorks(w http.ResponseWriter, r *http.Request) {
	if !h.ensureLoaded(w, r) {
		return
	}
	works := h.store.Works()
	if author := r.URL.Query().Get("author"); author != "" {
		works = WorksByAuthor(author, works)
	}
	respond(w, http.StatusOK, FilterWorks(r.URL.Query().Get("q"), works))
}

func (h *Handler) listPublishers(w http.ResponseWriter, r *http.Request) {
	if !h.ensureLoaded(w, r) {
		return
	}
	respond(w, http.StatusOK, FilterPublishers(r.URL.Query().Get("q"), h.store.Publishers()))
}

func (h *Handler) getAuthor(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Author(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, a)
}

func (h *Handler) getWork(w http.ResponseWriter, r *http.Request) {
	work, err := h.service.Work(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, work)
}

func (h *Handler) getPublisher(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Publisher(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

type authorForm struct {
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name"`
	BirthDate  string `json:"birth_date"`
	DeathDate  string `json:"death_date"`
	Bio        string `json:"bio"`
	PhotoURL   string `json:"photo_url"`
}

func (h *Handler) saveAuthor(w http.ResponseWriter, r *http.Request) {
	var form authorForm
	file, err := asset.DecodeForm(r, &form)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	out, err := h.service.SaveAuthor(r.Context(), AuthorDraft{
		ID:         chi.URLParam(r, "id"),
		LastName:   form.LastName,
		FirstName:  form.FirstName,
		MiddleName: form.MiddleName,
		BirthDate:  form.BirthDate,
		DeathDate:  form.DeathDate,
		Bio:        form.Bio,
		PhotoURL:   form.PhotoURL,
		Photo:      file,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondSaved(w, r, out.Entity, out.Warning())
}

type workForm struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Year        string   `json:"year"`
	Authors     []string `json:"authors"`
}

func (h *Handler) saveWork(w http.ResponseWriter, r *http.Request) {
	var form workForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	work, err := h.service.SaveWork(r.Context(), WorkDraft{
		ID:          chi.URLParam(r, "id"),
		Title:       form.Title,
		Description: form.Description,
		Year:        form.Year,
		AuthorIDs:   form.Authors,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondSaved(w, r, work, nil)
}

type publisherForm struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url"`
	WebURL  string `json:"web_url"`
}

func (h *Handler) savePublisher(w http.ResponseWriter, r *http.Request) {
	var form publisherForm
	file, err := asset.DecodeForm(r, &form)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	id := chi.URLParam(r, "id")
	d := PublisherDraft{ID: id, Name: form.Name, LogoURL: form.LogoURL, WebURL: form.WebURL, Logo: file}
	if id != "" {
		if cached, ok := h.store.Publisher(id); ok && d.LogoURL == "" {
			d.LogoURL = cached.LogoURL
		}
	}
	out, err := h.service.SavePublisher(r.Context(), d)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSaved(w, r, out.Entity, out.Warning())
}

func (h *Handler) deleteWork(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteWork(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deletePublisher(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeletePublisher(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondSaved(w http.ResponseWriter, r *http.Request, entity interface{}, warning error) {
	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	body := map[string]interface{}{"data": entity}
	if warning != nil {
		body["warning"] = warning.Error()
	}
	respond(w, status, body)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case validation.IsFieldError(err):
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case apiclient.IsNotFound(err):
		respond(w, http.StatusNotFound, map[string]string{"error": apiclient.Message(err)})
	default:
		respond(w, http.StatusBadGateway, map[string]string{"error": apiclient.Message(err)})
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
