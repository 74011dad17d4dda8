package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/georgemunganga/librarian/internal/backendtest"
	"github.com/georgemunganga/librarian/internal/modules/book"
	"github.com/georgemunganga/librarian/internal/modules/location"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"search war", []string{"search", "war"}},
		{"search  \t war", []string{"search", "war"}},
		{`add work "War and Peace" --author a1`, []string{"add", "work", "War and Peace", "--author", "a1"}},
		{`add author --middle ""`, []string{"add", "author", "--middle", ""}},
		{`say "a"b`, []string{"say", "ab"}},
	}
	for _, tt := range tests {
		if got := parseArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseArgs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadLineStripsCarriageReturn(t *testing.T) {
	r := strings.NewReader("secret\r\nnext\n")
	line, err := readLine(r)
	if err != nil || string(line) != "secret" {
		t.Fatalf("readLine = %q, %v", line, err)
	}
	line, _ = readLine(r)
	if string(line) != "next" {
		t.Fatalf("second line = %q", line)
	}
}

func TestPrintBooks(t *testing.T) {
	year := 1877
	books := []book.Book{{
		Title:    "Anna Karenina",
		Barcode:  "B100",
		Year:     &year,
		Location: &book.Location{BuildingName: "Main", ShelfName: "S1"},
	}}

	var out bytes.Buffer
	printBooks(&out, books, false)
	if strings.Contains(out.String(), "LOCATION") {
		t.Fatalf("location shown to a reader:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "1877") || !strings.Contains(out.String(), "1 book(s)") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	out.Reset()
	printBooks(&out, books, true)
	if !strings.Contains(out.String(), "Main · S1") {
		t.Fatalf("location missing:\n%s", out.String())
	}

	out.Reset()
	printBooks(&out, nil, true)
	if out.String() != "No books found.\n" {
		t.Fatalf("empty output = %q", out.String())
	}
}

func newTestApp(t *testing.T) (*app, *backendtest.Backend) {
	t.Helper()
	backend := backendtest.New()
	backend.AddUser("1", "admin", "secret", true)
	backend.Locations = []*location.Location{
		{ID: "b1", Type: location.Building, Name: "Main", Barcode: "LB1", Address: "1 High St"},
		{ID: "r1", ParentID: "b1", Type: location.Room, Name: "Hall", Barcode: "LR1"},
		{ID: "c1", ParentID: "r1", Type: location.Cabinet, Name: "C1", Barcode: "LC1"},
		{ID: "s1", ParentID: "c1", Type: location.Shelf, Name: "S1", Barcode: "LS1"},
	}
	backend.Books = []*book.Book{{ID: "bk1", Title: "Anna Karenina", Barcode: "B100"}}
	srv := backend.Start(t)

	dir := t.TempDir()
	cfg := "api_url: " + srv.URL + "\n" +
		"token_file: " + filepath.Join(dir, "token") + "\n" +
		"history_file: " + filepath.Join(dir, "history") + "\n" +
		"log_level: error\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}

	a := newApp()
	a.configPath = path
	a.stdin = strings.NewReader("secret\n")
	a.stderr = &bytes.Buffer{}
	return a, backend
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.Execute()
	return out.String(), err
}

func TestCommandsAgainstBackend(t *testing.T) {
	a, backend := newTestApp(t)

	if _, err := run(t, a, "whoami"); err == nil || !strings.Contains(err.Error(), "librarian login") {
		t.Fatalf("whoami before login: %v", err)
	}

	out, err := run(t, a, "login", "admin")
	if err != nil || !strings.Contains(out, "Signed in as admin [admin]") {
		t.Fatalf("login: %q, %v", out, err)
	}

	out, err = run(t, a, "search", "anna")
	if err != nil || !strings.Contains(out, "B100") || !strings.Contains(out, "LOCATION") {
		t.Fatalf("search: %q, %v", out, err)
	}

	if out, err = run(t, a, "print", "book", "B100"); err != nil || out != "Queued B100\n" {
		t.Fatalf("print book: %q, %v", out, err)
	}
	if out, _ = run(t, a, "print", "book", "B100"); out != "B100 is already queued\n" {
		t.Fatalf("duplicate: %q", out)
	}
	if out, err = run(t, a, "print", "location", "b1"); err != nil || out != "Queued LB1\n" {
		t.Fatalf("print location: %q, %v", out, err)
	}

	out, _ = run(t, a, "print")
	if !strings.Contains(out, "Anna Karenina") || !strings.Contains(out, "1 High St") {
		t.Fatalf("queue:\n%s", out)
	}

	if out, err = run(t, a, "print", "send"); err != nil || out != "2 label(s) sent\n" {
		t.Fatalf("send: %q, %v", out, err)
	}
	if backend.Count("POST /admin/print") != 2 {
		t.Fatalf("print calls = %d", backend.Count("POST /admin/print"))
	}

	if out, err = run(t, a, "logout"); err != nil || out != "Signed out\n" {
		t.Fatalf("logout: %q, %v", out, err)
	}
	if _, err := run(t, a, "search"); err == nil {
		t.Fatal("search after logout succeeded")
	}
}

func TestAddCommandsChain(t *testing.T) {
	a, backend := newTestApp(t)
	if _, err := run(t, a, "login", "admin"); err != nil {
		t.Fatalf("login: %v", err)
	}

	out, err := run(t, a, "add", "author", "--last", "Chekhov", "--first", "Anton", "--born", "1860-01-29")
	if err != nil || !strings.HasPrefix(out, "Created author") {
		t.Fatalf("add author: %q, %v", out, err)
	}
	backend.Lock()
	authorID := backend.Authors[len(backend.Authors)-1].ID
	backend.Unlock()

	out, err = run(t, a, "add", "work", "--title", "The Lady with the Dog", "--author", authorID)
	if err != nil || !strings.HasPrefix(out, "Created work The Lady with the Dog") {
		t.Fatalf("add work: %q, %v", out, err)
	}
	backend.Lock()
	work := backend.Works[len(backend.Works)-1]
	backend.Unlock()
	if len(work.Authors) != 1 || work.Authors[0].ID != authorID {
		t.Fatalf("work authors = %+v", work.Authors)
	}

	if _, err := run(t, a, "add", "book", "--title", "Stories"); err == nil {
		t.Fatal("book without works accepted")
	}
	out, err = run(t, a, "add", "book", "--title", "Stories", "--work", work.ID, "--shelf", "s1", "--year", "1899")
	if err != nil || !strings.Contains(out, "Label queued") {
		t.Fatalf("add book: %q, %v", out, err)
	}
	backend.Lock()
	created := backend.Books[len(backend.Books)-1]
	backend.Unlock()
	if created.Title != "Stories" || created.Location == nil || created.Location.BuildingName != "Main" {
		t.Fatalf("created book = %+v", created)
	}

	if out, _ = run(t, a, "print"); !strings.Contains(out, "Chekhov") {
		t.Fatalf("queue:\n%s", out)
	}

	if _, err := run(t, a, "add", "location", "shelf", "--name", "S2"); err == nil {
		t.Fatal("shelf without parent accepted")
	}
	out, err = run(t, a, "add", "location", "shelf", "--name", "S2", "--parent", "c1")
	if err != nil || !strings.HasPrefix(out, "Created shelf S2") {
		t.Fatalf("add location: %q, %v", out, err)
	}
}
