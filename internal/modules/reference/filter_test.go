package reference

import "testing"

func TestAuthorName(t *testing.T) {
	cases := []struct {
		a    AuthorSummary
		want string
	}{
		{AuthorSummary{LastName: "Tolstoy", FirstName: "Leo"}, "Leo Tolstoy"},
		{AuthorSummary{LastName: "Tolstoy", FirstName: "Lev", MiddleName: "Nikolayevich"}, "Tolstoy Lev Nikolayevich"},
		{AuthorSummary{FirstName: "Homer"}, "Homer"},
		{AuthorSummary{LastName: "Anonymous"}, "Anonymous"},
	}
	for _, tc := range cases {
		if got := AuthorName(tc.a); got != tc.want {
			t.Errorf("AuthorName(%+v) = %q, want %q", tc.a, got, tc.want)
		}
	}
}

func TestFilters(t *testing.T) {
	authors := []AuthorSummary{
		{ID: "a1", LastName: "Tolstoy", FirstName: "Leo"},
		{ID: "a2", LastName: "Chekhov", FirstName: "Anton"},
	}
	if got := FilterAuthors("  TOL ", authors); len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("authors = %+v", got)
	}
	if got := FilterAuthors("   ", authors); len(got) != 2 {
		t.Fatalf("blank query filtered: %+v", got)
	}

	works := []WorkShort{
		{ID: "w1", Title: "War and Peace", Authors: authors[:1]},
		{ID: "w2", Title: "The Cherry Orchard", Authors: authors[1:]},
	}
	if got := FilterWorks("peace", works); len(got) != 1 || got[0].ID != "w1" {
		t.Fatalf("works = %+v", got)
	}
	if got := FilterWorks("nothing", works); got == nil || len(got) != 0 {
		t.Fatalf("want empty, got %#v", got)
	}
	if got := WorksByAuthor("a2", works); len(got) != 1 || got[0].ID != "w2" {
		t.Fatalf("by author = %+v", got)
	}

	pubs := []Publisher{{ID: "p1", Name: "Penguin"}, {ID: "p2", Name: "Vintage"}}
	if got := FilterPublishers("vin", pubs); len(got) != 1 || got[0].ID != "p2" {
		t.Fatalf("publishers = %+v", got)
	}
}
