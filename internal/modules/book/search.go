package book

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeQuery collapses whitespace runs to one space and trims the left
// side. The right side is kept so the input box does not eat a trailing
// space while the user types.
func NormalizeQuery(raw string) string {
	return strings.TrimLeft(whitespace.ReplaceAllString(raw, " "), " ")
}

// State is the visible result of the latest search.
type State struct {
	Query   string `json:"query"`
	Books   []Book `json:"books"`
	Loading bool   `json:"loading"`
	Err     string `json:"error,omitempty"`
	Seq     uint64 `json:"seq"`
}

// Controller runs book searches. Every dispatch is tagged with an
// increasing sequence number and its outcome is applied only while that
// number is still the latest, so an older response arriving late never
// replaces a newer one.
type Controller struct {
	service    Service
	privileged func() bool
	logger     *slog.Logger

	mu      sync.Mutex
	seq     uint64
	state   State
	pending int
	waiters []chan struct{}
}

// NewController creates a Controller. privileged is consulted at dispatch
// to pick the internal or the public listing.
func NewController(service Service, privileged func() bool, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		service:    service,
		privileged: privileged,
		logger:     logger,
		state:      State{Books: []Book{}},
	}
}

// Search normalizes raw, records it as the current query and dispatches a
// fetch in the background. A blank query loads every book. The fetch keeps
// ctx's values but not its cancellation, so it survives the request that
// started it. It returns the sequence number of the dispatch.
func (c *Controller) Search(ctx context.Context, raw string) uint64 {
	query := NormalizeQuery(raw)

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.Query = query
	c.state.Loading = true
	c.state.Err = ""
	c.state.Seq = seq
	c.pending++
	c.mu.Unlock()

	scope := Public
	if c.privileged != nil && c.privileged() {
		scope = Internal
	}
	needle := strings.TrimSpace(query)
	ctx = context.WithoutCancel(ctx)

	go func() {
		books, err := c.service.Search(ctx, scope, needle)
		c.settle(seq, needle, books, err)
	}()
	return seq
}

// Refresh re-dispatches the current query.
func (c *Controller) Refresh(ctx context.Context) uint64 {
	c.mu.Lock()
	query := c.state.Query
	c.mu.Unlock()
	return c.Search(ctx, query)
}

func (c *Controller) settle(seq uint64, needle string, books []Book, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq == c.seq {
		c.state.Loading = false
		if err != nil {
			c.logger.Warn("book search failed", "query", needle, "seq", seq, "error", err)
			c.state.Books = []Book{}
			c.state.Err = searchFailure(needle)
		} else {
			c.state.Books = books
			c.state.Err = ""
		}
	} else {
		c.logger.Debug("stale book search dropped", "seq", seq, "latest", c.seq)
	}

	c.pending--
	if c.pending == 0 {
		for _, ch := range c.waiters {
			close(ch)
		}
		c.waiters = nil
	}
}

func searchFailure(needle string) string {
	if needle == "" {
		return "could not load books"
	}
	return "could not find books"
}

// Wait blocks until every dispatched search has settled or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == 0 {
		c.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a snapshot of the visible result.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Books = append([]Book{}, c.state.Books...)
	return s
}

// Reset drops the results and invalidates every in-flight search.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.seq++
	c.state = State{Books: []Book{}, Seq: c.seq}
	c.mu.Unlock()
}
