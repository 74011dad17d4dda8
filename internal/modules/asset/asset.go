// Package asset attaches uploaded images to entities that already exist on
// the backend. Image storage is keyed by entity id, so the entity is always
// saved first and the image follows in a second phase.
package asset

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/georgemunganga/librarian/internal/apiclient"
)

// Entity names an image-bearing entity kind on the backend.
type Entity string

const (
	Author    Entity = "author"
	Book      Entity = "book"
	Publisher Entity = "publisher"
)

// State is the position of an entity in the two-phase submission.
type State int

const (
	// Created: the entity is saved and no image was attached.
	Created State = iota
	Uploading
	Attached
	// Failed still means the entity itself was saved.
	Failed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Uploading:
		return "uploading"
	case Attached:
		return "attached"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Warning reports an image that could not be attached to a saved entity.
type Warning struct {
	Entity Entity
	ID     string
	Err    error
}

func (w *Warning) Error() string {
	return fmt.Sprintf("%s %s was saved, but its image could not be uploaded: %s",
		w.Entity, w.ID, apiclient.Message(w.Err))
}

func (w *Warning) Unwrap() error { return w.Err }

// Result is the final state of one submission.
type Result struct {
	State State
	// URL is the cache-busted image URL for local display, set when Attached.
	URL string
	Err error
}

// Warning returns the non-fatal image error, or nil.
func (r Result) Warning() error {
	if r.State == Failed {
		return r.Err
	}
	return nil
}

// Outcome pairs a saved entity with the result of its image phase.
type Outcome[T any] struct {
	Entity T
	Asset  Result
}

// Warning returns the non-fatal image error, or nil.
func (o *Outcome[T]) Warning() error { return o.Asset.Warning() }

// Uploader stores an image for an existing entity and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, entity Entity, id string, file apiclient.File) (string, error)
}

type remoteUploader struct{ client *apiclient.Client }

// NewRemoteUploader returns an Uploader posting to /admin/{entity}/{id}/image.
func NewRemoteUploader(client *apiclient.Client) Uploader { return &remoteUploader{client: client} }

func (u *remoteUploader) Upload(ctx context.Context, entity Entity, id string, file apiclient.File) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	path := apiclient.Path("admin", string(entity), id, "image")
	if err := u.client.Upload(ctx, path, "image", file, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// AttachFunc records url on the saved entity.
type AttachFunc func(ctx context.Context, url string) error

// Submitter runs the image phase after an entity was saved.
type Submitter struct {
	uploader Uploader
	logger   *slog.Logger
	now      func() time.Time
}

func NewSubmitter(uploader Uploader, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{uploader: uploader, logger: logger, now: time.Now}
}

// Attach uploads file for the entity and records the resulting URL through
// attach. A nil file leaves the entity in the Created state. Any failure
// ends in Failed with a *Warning; the entity is never rolled back.
func (s *Submitter) Attach(ctx context.Context, entity Entity, id string, file *apiclient.File, attach AttachFunc) Result {
	if file == nil {
		return Result{State: Created}
	}

	s.logger.Debug("image upload", "entity", entity, "id", id, "state", Uploading, "file", file.Name)
	url, err := s.uploader.Upload(ctx, entity, id, *file)
	if err != nil {
		return s.failed(entity, id, err)
	}
	if err := attach(ctx, url); err != nil {
		return s.failed(entity, id, err)
	}
	return Result{State: Attached, URL: CacheBust(url, s.now())}
}

func (s *Submitter) failed(entity Entity, id string, err error) Result {
	s.logger.Warn("image attach failed", "entity", entity, "id", id, "error", err)
	return Result{State: Failed, Err: &Warning{Entity: entity, ID: id, Err: err}}
}

// CacheBust appends a v=<unix millis> marker so a replaced image is not
// served from the browser cache.
func CacheBust(url string, at time.Time) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "v=" + strconv.FormatInt(at.UnixMilli(), 10)
}
