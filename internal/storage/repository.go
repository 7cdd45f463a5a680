// Package storage provides persistence for snippets.
// SQLRepository is the production implementation over database/sql;
// MockRepository is an in-memory implementation for tests.
package storage

import (
	"context"

	"github.com/canonica-labs/snippets/internal/snippets"
)

// SnippetRepository defines the operations the CLI runs against the snippets
// table. Implementations must be context-aware and must never return hidden
// snippets from Catalog or Search.
type SnippetRepository interface {
	// Put stores message under keyword, replacing the message and hidden flag
	// of an existing snippet with the same keyword.
	Put(ctx context.Context, keyword, message string, hidden bool) (snippets.Snippet, error)

	// Get retrieves a snippet by keyword. found is false when no snippet has
	// that keyword; absence is not an error.
	Get(ctx context.Context, keyword string) (snippet snippets.Snippet, found bool, err error)

	// Catalog returns the keywords of all visible snippets in ascending
	// byte order. Returns an empty slice (not nil) if there are none.
	Catalog(ctx context.Context) ([]string, error)

	// Search returns the visible snippets whose message contains term.
	// The match is case-sensitive and term is taken literally.
	Search(ctx context.Context, term string) ([]snippets.Snippet, error)

	// List returns full snippets ordered by keyword. Hidden snippets are
	// included only when includeHidden is set.
	List(ctx context.Context, includeHidden bool) ([]snippets.Snippet, error)

	// EnsureSchema creates the snippets table if it does not exist.
	EnsureSchema(ctx context.Context) error

	// CheckConnectivity verifies the backend is reachable.
	CheckConnectivity(ctx context.Context) error
}
