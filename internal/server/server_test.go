package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/backendtest"
	"github.com/georgemunganga/librarian/internal/modules/auth"
	"github.com/georgemunganga/librarian/internal/modules/book"
	"github.com/georgemunganga/librarian/internal/modules/location"
	"github.com/georgemunganga/librarian/internal/modules/printqueue"
	"github.com/georgemunganga/librarian/internal/modules/reference"
	"github.com/georgemunganga/librarian/internal/server"
	"github.com/georgemunganga/librarian/internal/session"
)

func newConsole(t *testing.T) (*httptest.Server, *backendtest.Backend) {
	t.Helper()
	backend := backendtest.New()
	backend.AddUser("1", "admin", "secret", true)
	backend.Locations = []*location.Location{
		{ID: "b1", Type: location.Building, Name: "Main", Barcode: "LB1", Address: "1 High St"},
		{ID: "r1", ParentID: "b1", Type: location.Room, Name: "Hall", Barcode: "LR1"},
		{ID: "c1", ParentID: "r1", Type: location.Cabinet, Name: "C1", Barcode: "LC1"},
		{ID: "s1", ParentID: "c1", Type: location.Shelf, Name: "S1", Barcode: "LS1"},
	}
	tolstoy := reference.AuthorSummary{ID: "a1", LastName: "Tolstoy", FirstName: "Leo"}
	backend.Authors = []*reference.Author{{AuthorSummary: tolstoy}}
	backend.Works = []*reference.WorkDetailed{{ID: "w1", Title: "War and Peace", Authors: []reference.AuthorSummary{tolstoy}}}
	backend.Publishers = []*reference.Publisher{{ID: "p1", Name: "Penguin"}}
	backend.Books = []*book.Book{{ID: "bk1", Title: "Anna Karenina", Barcode: "B100"}}

	upstream := backend.Start(t)
	tokens := auth.NewMemoryStore()
	client := apiclient.New(upstream.URL, 5*time.Second, tokens, nil)
	s := session.New(client, tokens, session.Options{PageSize: 10, MaxPages: 10}, nil)

	console := httptest.NewServer(server.NewRouter(s))
	t.Cleanup(console.Close)
	return console, backend
}

func call(t *testing.T, srv *httptest.Server, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build %s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func signIn(t *testing.T, srv *httptest.Server) {
	t.Helper()
	var body struct {
		Admin bool `json:"admin"`
	}
	code := call(t, srv, http.MethodPost, "/api/v1/session/login", map[string]string{"login": "admin", "password": "secret"}, &body)
	if code != http.StatusOK || !body.Admin {
		t.Fatalf("login: status %d admin=%v", code, body.Admin)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	srv, _ := newConsole(t)
	var body map[string]string
	code := call(t, srv, http.MethodPost, "/api/v1/session/login", map[string]string{"login": "admin", "password": "nope"}, &body)
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d", code)
	}
	if body["error"] == "" {
		t.Fatal("missing error message")
	}
}

func TestMeRequiresLogin(t *testing.T) {
	srv, _ := newConsole(t)
	if code := call(t, srv, http.MethodGet, "/api/v1/session/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("status = %d", code)
	}
	signIn(t, srv)
	var body struct {
		User struct {
			Login string `json:"login"`
		} `json:"user"`
	}
	if code := call(t, srv, http.MethodGet, "/api/v1/session/me", nil, &body); code != http.StatusOK || body.User.Login != "admin" {
		t.Fatalf("me: status %d login %q", code, body.User.Login)
	}
}

func TestBookSearch(t *testing.T) {
	srv, _ := newConsole(t)
	signIn(t, srv)

	var state book.State
	if code := call(t, srv, http.MethodGet, "/api/v1/books?q=anna", nil, &state); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if state.Loading || len(state.Books) != 1 || state.Books[0].Barcode != "B100" {
		t.Fatalf("state = %+v", state)
	}
	if call(t, srv, http.MethodGet, "/api/v1/books?q=tolstoy", nil, &state); len(state.Books) != 0 {
		t.Fatalf("unexpected match: %+v", state.Books)
	}
}

func TestReferenceFilters(t *testing.T) {
	srv, _ := newConsole(t)
	signIn(t, srv)

	var works []reference.WorkShort
	call(t, srv, http.MethodGet, "/api/v1/reference/works?q=war", nil, &works)
	if len(works) != 1 || works[0].ID != "w1" {
		t.Fatalf("works = %+v", works)
	}
	call(t, srv, http.MethodGet, "/api/v1/reference/works?author=a2", nil, &works)
	if len(works) != 0 {
		t.Fatalf("works by unknown author = %+v", works)
	}
}

func TestLocationTreeExpand(t *testing.T) {
	srv, _ := newConsole(t)
	signIn(t, srv)

	var tree struct {
		Nodes []location.Node `json:"nodes"`
	}
	call(t, srv, http.MethodGet, "/api/v1/locations/tree", nil, &tree)
	if len(tree.Nodes) != 1 || tree.Nodes[0].ID != "b1" || tree.Nodes[0].Expanded {
		t.Fatalf("tree = %+v", tree.Nodes)
	}

	var node location.Node
	if code := call(t, srv, http.MethodPost, "/api/v1/locations/b1/toggle", nil, &node); code != http.StatusOK {
		t.Fatalf("toggle: status %d", code)
	}
	if !node.Expanded || len(node.Children) != 1 || node.Children[0].ID != "r1" {
		t.Fatalf("node = %+v", node)
	}
	if code := call(t, srv, http.MethodPost, "/api/v1/locations/zz/toggle", nil, nil); code != http.StatusNotFound {
		t.Fatalf("unknown toggle: status %d", code)
	}
}

func TestWorkspaceBookFlow(t *testing.T) {
	srv, backend := newConsole(t)
	signIn(t, srv)

	if code := call(t, srv, http.MethodPost, "/api/v1/workspace/book", nil, nil); code != http.StatusCreated {
		t.Fatalf("open: status %d", code)
	}

	var draft book.Draft
	code := call(t, srv, http.MethodPatch, "/api/v1/workspace/book", map[string]interface{}{"title": "Resurrection", "year": "1899"}, &draft)
	if code != http.StatusOK || draft.Title != "Resurrection" || draft.Year != "1899" {
		t.Fatalf("patch: status %d draft %+v", code, draft)
	}

	var failure map[string]string
	if code := call(t, srv, http.MethodPost, "/api/v1/workspace/book/submit", nil, &failure); code != http.StatusUnprocessableEntity {
		t.Fatalf("submit without works: status %d", code)
	}

	call(t, srv, http.MethodPatch, "/api/v1/workspace/book", map[string]interface{}{"work_ids": []string{"w1"}}, &draft)
	if draft.Title != "Resurrection" || len(draft.WorkIDs) != 1 {
		t.Fatalf("partial patch lost fields: %+v", draft)
	}

	for _, step := range []struct {
		level location.Type
		id    string
	}{{location.Building, "b1"}, {location.Room, "r1"}, {location.Cabinet, "c1"}, {location.Shelf, "s1"}} {
		if code := call(t, srv, http.MethodPut, "/api/v1/workspace/book/location", map[string]interface{}{"level": step.level, "id": step.id}, nil); code != http.StatusOK {
			t.Fatalf("select %s: status %d", step.level, code)
		}
	}

	var res struct {
		Data   book.Book `json:"data"`
		Queued bool      `json:"queued"`
	}
	if code := call(t, srv, http.MethodPost, "/api/v1/workspace/book/submit", nil, &res); code != http.StatusCreated {
		t.Fatalf("submit: status %d", code)
	}
	if !res.Queued || res.Data.Location == nil || res.Data.Location.ShelfID != "s1" {
		t.Fatalf("submit result = %+v", res)
	}
	if code := call(t, srv, http.MethodGet, "/api/v1/workspace/book", nil, nil); code != http.StatusNotFound {
		t.Fatalf("draft still open: status %d", code)
	}

	var items []printqueue.Item
	call(t, srv, http.MethodGet, "/api/v1/print/", nil, &items)
	if len(items) != 1 || items[0].Barcode != res.Data.Barcode {
		t.Fatalf("queue = %+v", items)
	}

	var sent struct {
		Sent int `json:"sent"`
	}
	if code := call(t, srv, http.MethodPost, "/api/v1/print/send", nil, &sent); code != http.StatusOK || sent.Sent != 1 {
		t.Fatalf("send: status %d sent %d", code, sent.Sent)
	}
	backend.Lock()
	printed := len(backend.Printed)
	backend.Unlock()
	if printed != 1 {
		t.Fatalf("printed = %d", printed)
	}
}

func TestPrintQueueEndpoints(t *testing.T) {
	srv, _ := newConsole(t)
	signIn(t, srv)

	var failure map[string]string
	if code := call(t, srv, http.MethodPost, "/api/v1/print/send", nil, &failure); code != http.StatusUnprocessableEntity {
		t.Fatalf("empty send: status %d", code)
	}

	b := book.Book{ID: "bk1", Title: "Anna Karenina", Barcode: "B100"}
	if code := call(t, srv, http.MethodPost, "/api/v1/print/books", b, nil); code != http.StatusCreated {
		t.Fatalf("add: status %d", code)
	}
	if code := call(t, srv, http.MethodPost, "/api/v1/print/books", b, nil); code != http.StatusOK {
		t.Fatalf("duplicate add: status %d", code)
	}

	if code := call(t, srv, http.MethodPost, "/api/v1/print/locations/b1", nil, nil); code != http.StatusNotFound {
		t.Fatalf("unloaded location: status %d", code)
	}
	call(t, srv, http.MethodGet, "/api/v1/locations/tree", nil, nil)
	var items []printqueue.Item
	if code := call(t, srv, http.MethodPost, "/api/v1/print/locations/b1", nil, &items); code != http.StatusCreated || len(items) != 2 {
		t.Fatalf("add location: status %d items %d", code, len(items))
	}

	call(t, srv, http.MethodDelete, "/api/v1/print/B100", nil, &items)
	if len(items) != 1 || !strings.HasPrefix(items[0].Barcode, "LB") {
		t.Fatalf("after remove = %+v", items)
	}
	if code := call(t, srv, http.MethodDelete, "/api/v1/print/", nil, nil); code != http.StatusNoContent {
		t.Fatalf("clear: status %d", code)
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, "127.0.0.1:0", http.NotFoundHandler(), nil)
	}()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRoleFailuresAreJSON(t *testing.T) {
	srv, _ := newConsole(t)
	signIn(t, srv)

	resp, err := srv.Client().Get(srv.URL + "/api/v1/roles")
	if err != nil {
		t.Fatalf("roles: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body["error"] == "" {
		t.Fatalf("body = %v, %v", body, err)
	}

	var failure map[string]string
	if code := call(t, srv, http.MethodPost, "/api/v1/roles", map[string]string{"code": "cat"}, &failure); code != http.StatusUnprocessableEntity || failure["error"] == "" {
		t.Fatalf("invalid role: status %d body %v", code, failure)
	}

	resp, err = srv.Client().Post(srv.URL+"/api/v1/roles", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("malformed role: %v", err)
	}
	defer resp.Body.Close()
	failure = nil
	if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil || resp.StatusCode != http.StatusBadRequest || failure["error"] == "" {
		t.Fatalf("malformed role: status %d body %v, %v", resp.StatusCode, failure, err)
	}
}
