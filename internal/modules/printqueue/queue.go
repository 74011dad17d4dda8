// Package printqueue collects barcode labels and sends them to the print
// service in one batch.
package printqueue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/georgemunganga/librarian/internal/modules/book"
	"github.com/georgemunganga/librarian/internal/modules/location"
)

// Queue is the session print queue. Items are unique by barcode and kept
// in insertion order.
type Queue struct {
	printer Printer
	logger  *slog.Logger

	mu      sync.Mutex
	items   []Item
	sending bool
}

func New(printer Printer, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{printer: printer, logger: logger}
}

// AddBook queues a label for b. It reports whether a new item was added;
// a barcode already in the queue is a no-op.
func (q *Queue) AddBook(b *book.Book) (bool, error) {
	barcode := strings.TrimSpace(b.Barcode)
	if barcode == "" {
		return false, fmt.Errorf("book %q: %w", b.Title, ErrNoBarcode)
	}
	return q.add(Item{
		ID:      b.ID,
		Kind:    KindBook,
		Title:   b.Title,
		Authors: book.AuthorsLine(b),
		Barcode: barcode,
	}), nil
}

// AddLocation queues a shelf or room label for loc.
func (q *Queue) AddLocation(loc *location.Location) (bool, error) {
	barcode := strings.TrimSpace(loc.Barcode)
	if barcode == "" {
		return false, fmt.Errorf("location %q: %w", loc.Name, ErrNoBarcode)
	}
	return q.add(Item{
		ID:      loc.ID,
		Kind:    KindLocation,
		Title:   loc.Name,
		Caption: location.PrintLine(loc),
		Barcode: barcode,
	}), nil
}

func (q *Queue) add(it Item) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, existing := range q.items {
		if existing.Barcode == it.Barcode {
			return false
		}
	}
	it.Key = uuid.New()
	it.Status = Pending
	q.items = append(q.items, it)
	return true
}

// Remove drops the item with barcode, if queued.
func (q *Queue) Remove(barcode string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items[:0]
	for _, it := range q.items {
		if it.Barcode != barcode {
			out = append(out, it)
		}
	}
	q.items = out
}

// Items returns a snapshot of the queue.
func (q *Queue) Items() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Item{}, q.items...)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

// SendAll prints every pending item one after another in queue order. It
// stops at the first failure; items printed before it are removed and the
// failed item and everything after it stay queued. It returns the number
// of items printed.
func (q *Queue) SendAll(ctx context.Context) (int, error) {
	q.mu.Lock()
	if q.sending {
		q.mu.Unlock()
		return 0, ErrSending
	}
	if len(q.items) == 0 {
		q.mu.Unlock()
		return 0, ErrEmptyQueue
	}
	q.sending = true
	batch := append([]Item{}, q.items...)
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.prune()
		q.sending = false
		q.mu.Unlock()
	}()

	sent := 0
	for _, it := range batch {
		if it.Status == Sent {
			continue
		}
		if err := q.printer.Print(ctx, it.Task()); err != nil {
			q.logger.Warn("print failed", "barcode", it.Barcode, "sent", sent, "error", err)
			return sent, fmt.Errorf("print %s: %w", it.Barcode, err)
		}
		q.mark(it.Key)
		sent++
	}
	q.logger.Info("print queue sent", "items", sent)
	return sent, nil
}

func (q *Queue) mark(key uuid.UUID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].Key == key {
			q.items[i].Status = Sent
			return
		}
	}
}

func (q *Queue) prune() {
	out := q.items[:0]
	for _, it := range q.items {
		if it.Status != Sent {
			out = append(out, it)
		}
	}
	q.items = out
}
