package reference

import (
	"strings"
	"testing"

	"github.com/georgemunganga/librarian/internal/apiclient"
	"github.com/georgemunganga/librarian/internal/validation"
)

func fieldOf(err error) string {
	if fe, ok := err.(*validation.FieldError); ok {
		return fe.Field
	}
	return ""
}

func TestAuthorDraftValidate(t *testing.T) {
	if f := fieldOf(AuthorDraft{FirstName: "Leo"}.Validate()); f != "last_name" {
		t.Fatalf("field = %q", f)
	}
	if f := fieldOf(AuthorDraft{LastName: "Tolstoy", BirthDate: "9 Sep 1828"}.Validate()); f != "birth_date" {
		t.Fatalf("field = %q", f)
	}
	if err := (AuthorDraft{LastName: "Tolstoy", BirthDate: "1828-09-09", DeathDate: " "}).Validate(); err != nil {
		t.Fatalf("unexpected %v", err)
	}
}

func TestAuthorDraftRequest(t *testing.T) {
	d := AuthorDraft{LastName: " Tolstoy ", BirthDate: "1828-09-09", PhotoURL: "https://img/t.jpg"}
	req := d.Request()
	if req.LastName != "Tolstoy" || req.BirthDate == nil || *req.BirthDate != "1828-09-09T00:00:00Z" {
		t.Fatalf("req = %+v", req)
	}
	if req.DeathDate != nil || req.FirstName != nil {
		t.Fatal("blank fields sent")
	}
	if req.PhotoURL == nil {
		t.Fatal("typed photo URL dropped on create")
	}

	d.Photo = &apiclient.File{Name: "t.jpg", Body: strings.NewReader("x")}
	if d.Request().PhotoURL != nil {
		t.Fatal("photo URL sent alongside a file")
	}
	d.Photo = nil
	d.ID = "a1"
	if d.Request().PhotoURL != nil {
		t.Fatal("photo URL sent on update")
	}
}

func TestEditAuthorTrimsDates(t *testing.T) {
	d := EditAuthor(&Author{AuthorSummary: AuthorSummary{ID: "a1"}, BirthDate: "1828-09-09T00:00:00Z"})
	if d.BirthDate != "1828-09-09" {
		t.Fatalf("birth = %q", d.BirthDate)
	}
}

func TestWorkDraft(t *testing.T) {
	if f := fieldOf(WorkDraft{}.Validate()); f != "title" {
		t.Fatalf("field = %q", f)
	}
	if f := fieldOf(WorkDraft{Title: "X", Year: "abc"}.Validate()); f != "year" {
		t.Fatalf("field = %q", f)
	}

	var d WorkDraft
	d.Title = "War and Peace"
	d.AddAuthor("a1")
	d.AddAuthor("a2")
	d.AddAuthor("a1")
	d.RemoveAuthor("a2")
	req := d.CreateRequest()
	if len(req.Authors) != 1 || req.Authors[0] != "a1" {
		t.Fatalf("authors = %v", req.Authors)
	}

	empty := WorkDraft{Title: "Anon"}.CreateRequest()
	if empty.Authors == nil {
		t.Fatal("authors must encode as []")
	}
}

func TestPublisherDraft(t *testing.T) {
	if f := fieldOf(PublisherDraft{}.Validate()); f != "name" {
		t.Fatalf("field = %q", f)
	}
	req := PublisherDraft{Name: "Penguin", LogoURL: "https://img/p.png"}.Request()
	if req.LogoURL == nil {
		t.Fatal("logo URL dropped on create")
	}
	req = PublisherDraft{ID: "p1", Name: "Penguin", LogoURL: "https://img/p.png"}.Request()
	if req.LogoURL != nil {
		t.Fatal("logo URL sent on update")
	}
}
