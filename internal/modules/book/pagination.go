package book

import (
	"context"
	"errors"
	"fmt"
)

// DefaultPageSize is the page limit sent to the list endpoints.
const DefaultPageSize = 200

// ErrTooManyPages stops a fetch whose backend keeps returning full pages.
var ErrTooManyPages = errors.New("too many pages")

// Page is one response of a paginated list endpoint.
type Page[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// PageFunc fetches the page starting at offset.
type PageFunc[T any] func(ctx context.Context, limit, offset int) (Page[T], error)

// FetchAllPages requests pages from offset 0 until a page comes back with
// fewer than limit items. The offset advances by the number of items
// actually returned. At most maxPages requests are made when maxPages > 0.
func FetchAllPages[T any](ctx context.Context, limit, maxPages int, fetch PageFunc[T]) ([]T, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	all := make([]T, 0)
	offset := 0
	for pages := 0; ; pages++ {
		if maxPages > 0 && pages >= maxPages {
			return nil, fmt.Errorf("%w: stopped after %d pages at offset %d", ErrTooManyPages, pages, offset)
		}
		page, err := fetch(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if len(page.Items) < limit {
			return all, nil
		}
		offset += len(page.Items)
	}
}
