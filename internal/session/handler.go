package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/modules/asset"
	"github.com/georgemunganga/librarian/internal/modules/auth"
	"github.com/georgemunganga/librarian/internal/modules/book"
	"github.com/georgemunganga/librarian/internal/modules/location"
	"github.com/georgemunganga/librarian/internal/modules/reference"
	"github.com/georgemunganga/librarian/internal/modules/user"
	"github.com/georgemunganga/librarian/internal/validation"
)

// Handler exposes sign-in, the profile and the draft workspace.
type Handler struct{ s *Session }

func NewHandler(s *Session) *Handler { return &Handler{s: s} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/session", func(r chi.Router) {
		r.Post("/login", h.login)   // POST /api/v1/session/login
		r.Post("/logout", h.logout) // POST /api/v1/session/logout
		r.Get("/me", h.me)          // GET  /api/v1/session/me
		r.Put("/me", h.saveProfile) // PUT  /api/v1/session/me
	})

	r.Route("/api/v1/workspace", func(r chi.Router) {
		r.Post("/book", h.openBook)
		r.Get("/book", h.getBook)
		r.Patch("/book", h.patchBook)
		r.Put("/book/location", h.selectLocation)
		r.Post("/book/cover", h.attachCover)
		r.Post("/book/submit", h.submitBook)
		r.Delete("/book", h.closeBook)

		r.Post("/work", h.openWork)
		r.Get("/work", h.getWork)
		r.Patch("/work", h.patchWork)
		r.Post("/work/submit", h.submitWork)
		r.Delete("/work", h.closeWork)

		r.Post("/author", h.openAuthor)
		r.Get("/author", h.getAuthor)
		r.Patch("/author", h.patchAuthor)
		r.Post("/author/photo", h.attachPhoto)
		r.Post("/author/submit", h.submitAuthor)
		r.Delete("/author", h.closeAuthor)

		r.Post("/publisher", h.openPublisher)
		r.Get("/publisher", h.getPublisher)
		r.Patch("/publisher", h.patchPublisher)
		r.Post("/publisher/logo", h.attachLogo)
		r.Post("/publisher/submit", h.submitPublisher)
		r.Delete("/publisher", h.closePublisher)

		r.Post("/location", h.openLocation)
		r.Get("/location", h.getLocation)
		r.Patch("/location", h.patchLocation)
		r.Post("/location/submit", h.submitLocation)
		r.Delete("/location", h.closeLocation)
	})
}

// ── Session ─────────────────────────────────────────────

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	u, err := h.s.Login(r.Context(), req.Login, req.Password)
	if err != nil && u == nil {
		respondError(w, err)
		return
	}
	body := map[string]interface{}{"user": u, "admin": u.IsAdmin()}
	if err != nil {
		body["warning"] = apiclient.Message(err)
	}
	respond(w, http.StatusOK, body)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.s.Logout(); err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u := h.s.User()
	if u == nil {
		respondError(w, ErrNotAuthenticated)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"user": u, "admin": u.IsAdmin()})
}

func (h *Handler) saveProfile(w http.ResponseWriter, r *http.Request) {
	var d user.ProfileDraft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	u, err := h.s.SaveProfile(r.Context(), d)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}

// ── Books ───────────────────────────────────────────────

func (h *Handler) openBook(w http.ResponseWriter, r *http.Request) {
	var b book.Book
	if err := decodeOptional(r, &b); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var (
		d   book.Draft
		err error
	)
	if b.ID == "" {
		d, err = h.s.Workspace.OpenBook(r.Context())
	} else {
		d, err = h.s.Workspace.EditBook(r.Context(), &b)
	}
	if errors.Is(err, ErrNotPrivileged) {
		respondError(w, err)
		return
	}
	respondDraft(w, d, err)
}

func (h *Handler) getBook(w http.ResponseWriter, r *http.Request) {
	d, ok := h.s.Workspace.Book()
	respondOpen(w, d, ok)
}

func (h *Handler) patchBook(w http.ResponseWriter, r *http.Request) {
	patch(w, r, h.s.Workspace.EditBookDraft, h.s.Workspace.Book)
}

type selectRequest struct {
	Level location.Type `json:"level"`
	ID    string        `json:"id"`
}

func (h *Handler) selectLocation(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := h.s.Workspace.SelectLocation(r.Context(), req.Level, req.ID); err != nil {
		respondError(w, err)
		return
	}
	d, _ := h.s.Workspace.Book()
	respond(w, http.StatusOK, map[string]interface{}{"draft": d, "selection": h.s.Selector.Selection()})
}

func (h *Handler) attachCover(w http.ResponseWriter, r *http.Request) {
	file, ok := imageUpload(w, r)
	if !ok {
		return
	}
	if err := h.s.Workspace.EditBookDraft(func(d *book.Draft) { d.Cover = file }); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submitBook(w http.ResponseWriter, r *http.Request) {
	res, err := h.s.Workspace.SubmitBook(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	body := map[string]interface{}{"data": res.Entity, "queued": res.Queued}
	if warn := res.Warning(); warn != nil {
		body["warning"] = warn.Error()
	}
	if res.PrintErr != nil {
		body["print_error"] = res.PrintErr.Error()
	}
	respond(w, http.StatusCreated, body)
}

func (h *Handler) closeBook(w http.ResponseWriter, r *http.Request) {
	h.s.Workspace.CloseBook()
	w.WriteHeader(http.StatusNoContent)
}

// ── Works ───────────────────────────────────────────────

type openRequest struct {
	ID string `json:"id"`
}

func (h *Handler) openWork(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decodeOptional(r, &req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.ID == "" {
		respond(w, http.StatusCreated, h.s.Workspace.OpenWork())
		return
	}
	d, err := h.s.Workspace.EditWork(r.Context(), req.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, d)
}

func (h *Handler) getWork(w http.ResponseWriter, r *http.Request) {
	d, ok := h.s.Workspace.Work()
	respondOpen(w, d, ok)
}

func (h *Handler) patchWork(w http.ResponseWriter, r *http.Request) {
	patch(w, r, h.s.Workspace.EditWorkDraft, h.s.Workspace.Work)
}

func (h *Handler) submitWork(w http.ResponseWriter, r *http.Request) {
	saved, err := h.s.Workspace.SubmitWork(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"data": saved})
}

func (h *Handler) closeWork(w http.ResponseWriter, r *http.Request) {
	h.s.Workspace.CloseWork()
	w.WriteHeader(http.StatusNoContent)
}

// ── Authors ─────────────────────────────────────────────

func (h *Handler) openAuthor(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decodeOptional(r, &req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.ID == "" {
		respond(w, http.StatusCreated, h.s.Workspace.OpenAuthor())
		return
	}
	d, err := h.s.Workspace.EditAuthor(r.Context(), req.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, d)
}

func (h *Handler) getAuthor(w http.ResponseWriter, r *http.Request) {
	d, ok := h.s.Workspace.Author()
	respondOpen(w, d, ok)
}

func (h *Handler) patchAuthor(w http.ResponseWriter, r *http.Request) {
	patch(w, r, h.s.Workspace.EditAuthorDraft, h.s.Workspace.Author)
}

func (h *Handler) attachPhoto(w http.ResponseWriter, r *http.Request) {
	file, ok := imageUpload(w, r)
	if !ok {
		return
	}
	if err := h.s.Workspace.EditAuthorDraft(func(d *reference.AuthorDraft) { d.Photo = file }); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submitAuthor(w http.ResponseWriter, r *http.Request) {
	out, err := h.s.Workspace.SubmitAuthor(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOutcome(w, out.Entity, out.Warning())
}

func (h *Handler) closeAuthor(w http.ResponseWriter, r *http.Request) {
	h.s.Workspace.CloseAuthor()
	w.WriteHeader(http.StatusNoContent)
}

// ── Publishers ──────────────────────────────────────────

func (h *Handler) openPublisher(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decodeOptional(r, &req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.ID == "" {
		respond(w, http.StatusCreated, h.s.Workspace.OpenPublisher())
		return
	}
	d, err := h.s.Workspace.EditPublisher(r.Context(), req.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, d)
}

func (h *Handler) getPublisher(w http.ResponseWriter, r *http.Request) {
	d, ok := h.s.Workspace.Publisher()
	respondOpen(w, d, ok)
}

func (h *Handler) patchPublisher(w http.ResponseWriter, r *http.Request) {
	patch(w, r, h.s.Workspace.EditPublisherDraft, h.s.Workspace.Publisher)
}

func (h *Handler) attachLogo(w http.ResponseWriter, r *http.Request) {
	file, ok := imageUpload(w, r)
	if !ok {
		return
	}
	if err := h.s.Workspace.EditPublisherDraft(func(d *reference.PublisherDraft) { d.Logo = file }); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submitPublisher(w http.ResponseWriter, r *http.Request) {
	out, err := h.s.Workspace.SubmitPublisher(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOutcome(w, out.Entity, out.Warning())
}

func (h *Handler) closePublisher(w http.ResponseWriter, r *http.Request) {
	h.s.Workspace.ClosePublisher()
	w.WriteHeader(http.StatusNoContent)
}

// ── Locations ───────────────────────────────────────────

type openLocationRequest struct {
	Type     location.Type `json:"type"`
	ParentID string        `json:"parent_id"`
}

func (h *Handler) openLocation(w http.ResponseWriter, r *http.Request) {
	var req openLocationRequest
	if err := decodeOptional(r, &req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	d, err := h.s.Workspace.OpenLocation(r.Context(), req.Type, req.ParentID)
	respondDraft(w, d, err)
}

func (h *Handler) getLocation(w http.ResponseWriter, r *http.Request) {
	d, ok := h.s.Workspace.Location()
	respondOpen(w, d, ok)
}

func (h *Handler) patchLocation(w http.ResponseWriter, r *http.Request) {
	patch(w, r, h.s.Workspace.EditLocationDraft, h.s.Workspace.Location)
}

func (h *Handler) submitLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := h.s.Workspace.SubmitLocation(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"data": loc})
}

func (h *Handler) closeLocation(w http.ResponseWriter, r *http.Request) {
	h.s.Workspace.CloseLocation()
	w.WriteHeader(http.StatusNoContent)
}

// ── Helpers ─────────────────────────────────────────────

// patch decodes the body over the open draft, so fields absent from the
// JSON keep their values.
func patch[T any](w http.ResponseWriter, r *http.Request, edit func(func(*T)) error, get func() (T, bool)) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var decodeErr error
	if err := edit(func(d *T) {
		next := *d
		if decodeErr = json.Unmarshal(body, &next); decodeErr == nil {
			*d = next
		}
	}); err != nil {
		respondError(w, err)
		return
	}
	if decodeErr != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": decodeErr.Error()})
		return
	}
	d, _ := get()
	respond(w, http.StatusOK, d)
}

func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func imageUpload(w http.ResponseWriter, r *http.Request) (*apiclient.File, bool) {
	var ignored struct{}
	file, err := asset.DecodeForm(r, &ignored)
	if err == nil && file == nil {
		err = errors.New("image part is missing")
	}
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	return file, true
}

// respondDraft answers an open request. A draft that opened but could not
// warm its pickers is returned with a warning.
func respondDraft(w http.ResponseWriter, d interface{}, err error) {
	body := map[string]interface{}{"draft": d}
	if err != nil {
		body["warning"] = apiclient.Message(err)
	}
	respond(w, http.StatusCreated, body)
}

func respondOpen(w http.ResponseWriter, d interface{}, ok bool) {
	if !ok {
		respondError(w, ErrNoDraft)
		return
	}
	respond(w, http.StatusOK, d)
}

func respondOutcome(w http.ResponseWriter, entity interface{}, warning error) {
	body := map[string]interface{}{"data": entity}
	if warning != nil {
		body["warning"] = warning.Error()
	}
	respond(w, http.StatusCreated, body)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case validation.IsFieldError(err):
		respond(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNoDraft):
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		respond(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotPrivileged):
		respond(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, location.ErrInvalidType):
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
