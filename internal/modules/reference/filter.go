package reference

import "strings"

// The filters back the search boxes of the pickers. They are pure: a blank
// query returns the list unchanged.

func FilterAuthors(query string, authors []AuthorSummary) []AuthorSummary {
	needle := normalize(query)
	if needle == "" {
		return authors
	}
	out := make([]AuthorSummary, 0)
	for _, a := range authors {
		if strings.Contains(strings.ToLower(AuthorName(a)), needle) {
			out = append(out, a)
		}
	}
	return out
}

func FilterWorks(query string, works []WorkShort) []WorkShort {
	needle := normalize(query)
	if needle == "" {
		return works
	}
	out := make([]WorkShort, 0)
	for _, w := range works {
		if strings.Contains(strings.ToLower(w.Title), needle) {
			out = append(out, w)
		}
	}
	return out
}

func FilterPublishers(query string, publishers []Publisher) []Publisher {
	needle := normalize(query)
	if needle == "" {
		return publishers
	}
	out := make([]Publisher, 0)
	for _, p := range publishers {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}

// WorksByAuthor lists the works crediting authorID.
func WorksByAuthor(authorID string, works []WorkShort) []WorkShort {
	out := make([]WorkShort, 0)
	if authorID == "" {
		return out
	}
	for _, w := range works {
		for _, a := range w.Authors {
			if a.ID == authorID {
				out = append(out, w)
				break
			}
		}
	}
	return out
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
