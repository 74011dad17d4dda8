// Package backendtest runs an in-memory catalog backend for tests.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/georgemunganga/librarian/internal/modules/book"
	"github.com/georgemunganga/librarian/internal/modules/location"
	"github.com/georgemunganga/librarian/internal/modules/printqueue"
	"github.com/georgemunganga/librarian/internal/modules/reference"
	"github.com/georgemunganga/librarian/internal/modules/user"
)

// Backend is a fake catalog API. Exported fields may be seeded before the
// first request and inspected afterwards under Lock/Unlock.
type Backend struct {
	mu sync.Mutex

	Users      map[string]*user.User
	Passwords  map[string]string // login -> password
	Locations  []*location.Location
	Authors    []*reference.Author
	Works      []*reference.WorkDetailed
	Publishers []*reference.Publisher
	Books      []*book.Book
	Printed    []printqueue.Task

	// FailImages makes every image upload fail with 500.
	FailImages bool
	// FailPrintAt fails the print request with this 1-based index; zero disables.
	FailPrintAt int
	// HideProfiles answers 403 on user profile reads.
	HideProfiles bool

	printCalls int
	requests   []string
	seq        int
}

// New returns an empty Backend.
func New() *Backend {
	return &Backend{
		Users:     make(map[string]*user.User),
		Passwords: make(map[string]string),
	}
}

func (b *Backend) Lock()   { b.mu.Lock() }
func (b *Backend) Unlock() { b.mu.Unlock() }

// AddUser seeds an account. Admins get the admin role.
func (b *Backend) AddUser(id, login, password string, admin bool) *user.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := &user.User{ID: id, Login: login, FirstName: strings.ToUpper(login[:1]) + login[1:], IsActive: true, Roles: []user.Role{}}
	if admin {
		u.Roles = append(u.Roles, user.Role{ID: 1, Code: user.AdminRole, Name: "Administrator"})
	}
	b.Users[id] = u
	b.Passwords[login] = password
	return u
}

// Token issues a signed access token for the user with id.
func Token(id string) string {
	claims := jwt.StandardClaims{Subject: id, ExpiresAt: time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backendtest"))
	if err != nil {
		panic(err)
	}
	return token
}

// Requests returns "METHOD path" for every request served so far.
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

// Count returns how many served requests match "METHOD path" exactly.
func (b *Backend) Count(request string) int {
	n := 0
	for _, r := range b.Requests() {
		if r == request {
			n++
		}
	}
	return n
}

// Start serves b on a test server closed with t.
func (b *Backend) Start(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(b.Router())
	t.Cleanup(srv.Close)
	return srv
}

// Router mounts the backend routes.
func (b *Backend) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(b.record)

	r.Post("/auth/login", b.login)
	r.Get("/admin/users/{id}", b.getUser)
	r.Put("/admin/users/{id}", b.updateUser)

	r.Get("/locations/type/{type}", b.locationsByType)
	r.Get("/locations/child/{id}/{type}", b.locationChildren)
	r.Post("/admin/locations", b.createLocation)

	r.Get("/reference/authors", b.listAuthors)
	r.Get("/reference/works", b.listWorks)
	r.Get("/reference/publishers", b.listPublishers)
	r.Get("/authors/{id}", b.getAuthor)
	r.Get("/works/{id}", b.getWork)
	r.Get("/publishers/{id}", b.getPublisher)
	r.Post("/admin/authors", b.createAuthor)
	r.Put("/admin/authors/{id}", b.updateAuthor)
	r.Post("/admin/works", b.createWork)
	r.Put("/admin/works/{id}", b.updateWork)
	r.Post("/admin/publishers", b.createPublisher)
	r.Put("/admin/publishers/{id}", b.updatePublisher)

	r.Get("/books/{scope}", b.listBooks)
	r.Post("/admin/books", b.createBook)
	r.Put("/admin/books/{id}", b.updateBook)

	r.Post("/admin/{entity}/{id}/image", b.uploadImage)
	r.Post("/admin/print", b.print)
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// authorized reports whether r carries a token for a known user.
func (b *Backend) authorized(w http.ResponseWriter, r *http.Request) bool {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("backendtest"), nil
	})
	if err == nil {
		b.mu.Lock()
		_, ok := b.Users[claims.Subject]
		b.mu.Unlock()
		if ok {
			return true
		}
	}
	respond(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	return false
}

func (b *Backend) nextID(prefix string) string {
	b.seq++
	return fmt.Sprintf("%s-%d", prefix, b.seq)
}

// ── Auth & users ────────────────────────────────────────

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if pw, ok := b.Passwords[req.Login]; !ok || pw != req.Password {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "invalid login or password"})
		return
	}
	for _, u := range b.Users {
		if u.Login == req.Login {
			respond(w, http.StatusOK, map[string]string{"access_token": Token(u.ID)})
			return
		}
	}
	respond(w, http.StatusUnauthorized, map[string]string{"error": "invalid login or password"})
}

func (b *Backend) getUser(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.HideProfiles {
		respond(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
		return
	}
	u, ok := b.Users[chi.URLParam(r, "id")]
	if !ok {
		notFound(w)
		return
	}
	respond(w, http.StatusOK, u)
}

func (b *Backend) updateUser(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var req user.UpdateUserRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.Users[chi.URLParam(r, "id")]
	if !ok {
		notFound(w)
		return
	}
	u.Login = req.Login
	u.FirstName = req.FirstName
	w.WriteHeader(http.StatusNoContent)
}

// ── Locations ───────────────────────────────────────────

func (b *Backend) locationsByType(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	t := location.Type(chi.URLParam(r, "type"))
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []*location.Location{}
	for _, loc := range b.Locations {
		if loc.Type == t {
			out = append(out, loc)
		}
	}
	respond(w, http.StatusOK, out)
}

// locationChildren answers 404 for a parent without children.
func (b *Backend) locationChildren(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	parentID := chi.URLParam(r, "id")
	t := location.Type(chi.URLParam(r, "type"))
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*location.Location
	for _, loc := range b.Locations {
		if loc.ParentID == parentID && loc.Type == t {
			out = append(out, loc)
		}
	}
	if len(out) == 0 {
		notFound(w)
		return
	}
	respond(w, http.StatusOK, out)
}

func (b *Backend) createLocation(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var req location.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	loc := &location.Location{
		ID:        b.nextID(string(req.Type)),
		ParentID:  req.ParentID,
		Type:      req.Type,
		Name:      req.Name,
		Barcode:   barcode(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if req.Address != nil {
		loc.Address = *req.Address
	}
	if req.Description != nil {
		loc.Description = *req.Description
	}
	b.Locations = append(b.Locations, loc)
	respond(w, http.StatusCreated, loc)
}

// ── Reference data ──────────────────────────────────────

func (b *Backend) listAuthors(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]reference.AuthorSummary, 0, len(b.Authors))
	for _, a := range b.Authors {
		out = append(out, a.AuthorSummary)
	}
	respond(w, http.StatusOK, out)
}

func (b *Backend) listWorks(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]reference.WorkShort, 0, len(b.Works))
	for _, wk := range b.Works {
		out = append(out, wk.Short())
	}
	respond(w, http.StatusOK, out)
}

func (b *Backend) listPublishers(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]reference.Publisher, 0, len(b.Publishers))
	for _, p := range b.Publishers {
		out = append(out, *p)
	}
	respond(w, http.StatusOK, out)
}

func (b *Backend) getAuthor(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if a := b.author(chi.URLParam(r, "id")); a != nil {
		respond(w, http.StatusOK, a)
		return
	}
	notFound(w)
}

func (b *Backend) getWork(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if wk := b.work(chi.URLParam(r, "id")); wk != nil {
		respond(w, http.StatusOK, wk)
		return
	}
	notFound(w)
}

func (b *Backend) getPublisher(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if p := b.publisher(chi.URLParam(r, "id")); p != nil {
		respond(w, http.StatusOK, p)
		return
	}
	notFound(w)
}

func (b *Backend) createAuthor(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var req reference.AuthorRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a := &reference.Author{AuthorSummary: reference.AuthorSummary{ID: b.nextID("author")}}
	applyAuthor(a, req)
	b.Authors = append(b.Authors, a)
	respond(w, http.StatusCreated, a)
}

func (b *Backend) updateAuthor(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var req reference.AuthorRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a := b.author(chi.URLParam(r, "id"))
	if a == nil {
		notFound(w)
		return
	}
	applyAuthor(a, req)
	w.WriteHeader(http.StatusNoContent)
}

func applyAuthor(a *reference.Author, req reference.AuthorRequest) {
	if req.LastName != "" {
		a.LastName = req.LastName
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&a.FirstName, req.FirstName)
	set(&a.MiddleName, req.MiddleName)
	set(&a.Bio, req.Bio)
	set(&a.PhotoURL, req.PhotoURL)
	set(&a.BirthDate, req.BirthDate)
	set(&a.DeathDate, req.DeathDate)
}

func (b *Backend) createWork(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var req reference.CreateWorkRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	wk := &reference.WorkDetailed{
		ID:      b.nextID("work"),
		Title:   req.Work.Title,
		Year:    req.Work.Year,
		Authors: b.summaries(req.Authors),
	}
	if req.Work.Description != nil {
		wk.Description = *req.Work.Description
	}
	b.Works = append(b.Works, wk)
	respond(w, http.StatusCreated, wk)
}

func (b *Backend) updateWork(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var req reference.UpdateWorkRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	wk := b.work(chi.URLParam(r, "id"))
	if wk == nil {
		notFound(w)
		return
	}
	wk.Title = req.Title
	wk.Description = req.Description
	wk.Year = req.Year
	wk.Authors = b.summaries(req.Authors)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) createPublisher(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var req reference.PublisherRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := &reference.Publisher{ID: b.nextID("publisher")}
	applyPublisher(p, req)
	b.Publishers = append(b.Publishers, p)
	respond(w, http.StatusCreated, p)
}

func (b *Backend) updatePublisher(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var req reference.PublisherRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.publisher(chi.URLParam(r, "id"))
	if p == nil {
		notFound(w)
		return
	}
	applyPublisher(p, req)
	w.WriteHeader(http.StatusNoContent)
}

func applyPublisher(p *reference.Publisher, req reference.PublisherRequest) {
	if req.Name != "" {
		p.Name = req.Name
	}
	if req.LogoURL != nil {
		p.LogoURL = *req.LogoURL
	}
	if req.WebURL != nil {
		p.WebURL = *req.WebURL
	}
}

// ── Books ───────────────────────────────────────────────

func (b *Backend) listBooks(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	scope := book.Scope(chi.URLParam(r, "scope"))
	q := strings.ToLower(r.URL.Query().Get("q"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	b.mu.Lock()
	defer b.mu.Unlock()
	var matched []book.Book
	for _, bk := range b.Books {
		if q != "" && !strings.Contains(strings.ToLower(bk.Title), q) {
			continue
		}
		copied := *bk
		if scope != book.Internal {
			copied.Location = nil
		}
		matched = append(matched, copied)
	}
	page := book.Page[book.Book]{Items: []book.Book{}, Count: len(matched)}
	if offset < len(matched) {
		end := len(matched)
		if limit > 0 && offset+limit < end {
			end = offset + limit
		}
		page.Items = matched[offset:end]
	}
	respond(w, http.StatusOK, page)
}

func (b *Backend) createBook(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var req book.CreateRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	bk := &book.Book{
		ID:             b.nextID("book"),
		Title:          req.Book.Title,
		Barcode:        barcode(),
		FactoryBarcode: req.Book.FactoryBarcode,
		Year:           req.Book.Year,
		Description:    req.Book.Description,
		Extra:          req.Book.Extra,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	if p := b.publisher(req.Book.PublisherID); p != nil {
		bk.Publisher = p
	}
	for _, ref := range req.Works {
		if wk := b.work(ref.WorkID); wk != nil {
			bk.Works = append(bk.Works, wk.Short())
		}
	}
	bk.Location = b.snapshot(req.Book.LocationID)
	b.Books = append(b.Books, bk)
	respond(w, http.StatusCreated, bk)
}

func (b *Backend) updateBook(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var req book.UpdateRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var bk *book.Book
	for _, candidate := range b.Books {
		if candidate.ID == chi.URLParam(r, "id") {
			bk = candidate
		}
	}
	if bk == nil {
		notFound(w)
		return
	}
	if req.Title != "" {
		bk.Title = req.Title
	}
	if req.Extra != nil {
		bk.Extra = req.Extra
	}
	if req.LocationID != "" {
		bk.Location = b.snapshot(req.LocationID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// snapshot builds the denormalized location of a shelf.
func (b *Backend) snapshot(shelfID string) *book.Location {
	shelf := b.location(shelfID)
	if shelf == nil {
		return nil
	}
	out := &book.Location{ShelfID: shelf.ID, ShelfName: shelf.Name}
	if c := b.location(shelf.ParentID); c != nil {
		out.CabinetID, out.CabinetName = c.ID, c.Name
		if room := b.location(c.ParentID); room != nil {
			out.RoomID, out.RoomName = room.ID, room.Name
			if bl := b.location(room.ParentID); bl != nil {
				out.BuildingID, out.BuildingName, out.Address = bl.ID, bl.Name, bl.Address
			}
		}
	}
	return out
}

// ── Images & printing ───────────────────────────────────

func (b *Backend) uploadImage(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	b.mu.Lock()
	fail := b.FailImages
	b.mu.Unlock()
	if fail {
		respond(w, http.StatusInternalServerError, map[string]string{"error": "storage unavailable"})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	file.Close()
	url := fmt.Sprintf("https://img.test/%s/%s/%s", chi.URLParam(r, "entity"), chi.URLParam(r, "id"), header.Filename)
	respond(w, http.StatusOK, map[string]string{"url": url})
}

func (b *Backend) print(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(w, r) {
		return
	}
	var task printqueue.Task
	if !decode(w, r, &task) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.printCalls++
	if b.FailPrintAt > 0 && b.printCalls == b.FailPrintAt {
		respond(w, http.StatusServiceUnavailable, map[string]string{"error": "printer offline"})
		return
	}
	b.Printed = append(b.Printed, task)
	w.WriteHeader(http.StatusNoContent)
}

// ── Lookups (caller holds mu) ───────────────────────────

func (b *Backend) author(id string) *reference.Author {
	for _, a := range b.Authors {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (b *Backend) work(id string) *reference.WorkDetailed {
	for _, wk := range b.Works {
		if wk.ID == id {
			return wk
		}
	}
	return nil
}

func (b *Backend) publisher(id string) *reference.Publisher {
	for _, p := range b.Publishers {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (b *Backend) location(id string) *location.Location {
	for _, loc := range b.Locations {
		if loc.ID == id {
			return loc
		}
	}
	return nil
}

func (b *Backend) summaries(ids []string) []reference.AuthorSummary {
	out := make([]reference.AuthorSummary, 0, len(ids))
	for _, id := range ids {
		if a := b.author(id); a != nil {
			out = append(out, a.AuthorSummary)
		}
	}
	return out
}

func barcode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func notFound(w http.ResponseWriter) {
	respond(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
