package printqueue

import (
	"context"

	"github.com/georgemunganga/librarian/internal/apiclient"
)

// Printer delivers a single label to the print service.
type Printer interface {
	Print(ctx context.Context, task Task) error
}

type remotePrinter struct{ client *apiclient.Client }

// NewRemotePrinter returns a Printer posting to /admin/print.
func NewRemotePrinter(client *apiclient.Client) Printer { return &remotePrinter{client: client} }

func (p *remotePrinter) Print(ctx context.Context, task Task) error {
	return p.client.Post(ctx, "/admin/print", task, nil)
}
