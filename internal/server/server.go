// Package server is the local console API: the session's modules mounted on
// one chi router.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/georgemunganga/librarian/internal/modules/book"
	"github.com/georgemunganga/librarian/internal/modules/location"
	"github.com/georgemunganga/librarian/internal/modules/printqueue"
	"github.com/georgemunganga/librarian/internal/modules/reference"
	"github.com/georgemunganga/librarian/internal/modules/user"
	"github.com/georgemunganga/librarian/internal/session"
)

const shutdownTimeout = 10 * time.Second

// NewRouter mounts every module of s.
func NewRouter(s *session.Session) *chi.Mux {
	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Session & Users ─────────────────────────────────────
	session.NewHandler(s).RegisterRoutes(router)
	user.NewHandler(s.Users).RegisterRoutes(router)

	// ── Catalog ─────────────────────────────────────────────
	location.NewHandler(s.Locations, s.Tree, s.Selector).RegisterRoutes(router)
	reference.NewHandler(s.Reference, s.References).RegisterRoutes(router)
	book.NewHandler(s.Books, s.Search).RegisterRoutes(router)

	// ── Labels ──────────────────────────────────────────────
	printqueue.NewHandler(s.Print, s.Tree).RegisterRoutes(router)

	return router
}

// Run serves handler on addr until ctx is cancelled, then drains
// in-flight requests.
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("console API listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("console API shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
