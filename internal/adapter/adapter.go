package adapter

import (
	"context"

	"github.com/Ning0612/cptrash/internal/domain"
)

// DirectoryView is a session-scoped window onto one remote directory at a time.
// Implementations drive a UI that renders asynchronously, so every read is
// best-effort: listing and selection report soft failures through their
// return values instead of errors. Only navigation can fail hard, and it
// returns a *domain.NavigationError in that case.
type DirectoryView interface {
	// CurrentPath returns the directory currently displayed
	// Falls back to the configured trash root when the view has no path
	CurrentPath(ctx context.Context) string

	// Navigate displays path and waits for the listing to stabilize
	Navigate(ctx context.Context, path string) error

	// Reload re-renders the current directory and waits for it to stabilize
	Reload(ctx context.Context) error

	// WaitStable blocks until the listing stops changing
	// Returns false if stability could not be proven; callers proceed anyway
	WaitStable(ctx context.Context) bool

	// List returns the entries of the current directory in display order
	// With retryOnEmpty, an empty listing is re-read a few times before
	// being accepted as genuinely empty
	List(ctx context.Context, retryOnEmpty bool) []domain.Entry

	// SelectAll selects every row through the bulk selection control
	SelectAll(ctx context.Context) bool

	// SelectByName selects the rows for entries one by one
	// Returns true if at least one row was selected
	SelectByName(ctx context.Context, entries []domain.Entry) bool

	// DeleteSelected triggers deletion of the current selection and confirms it
	// The outcome is not verified; callers re-list to measure it
	DeleteSelected(ctx context.Context)

	// SelectAndDeleteSingle deletes exactly one named entry
	// In dry run it only selects and reports whether deletion would proceed
	SelectAndDeleteSingle(ctx context.Context, name string, dryRun bool) bool
}
