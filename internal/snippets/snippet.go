// Package snippets defines the snippet model shared by the store and the CLI.
package snippets

import (
	"github.com/canonica-labs/snippets/internal/errors"
)

// NotFoundMessage is what the CLI prints in place of a message when get finds
// no snippet. The store never returns it.
const NotFoundMessage = "404: Snippet Not Found"

// Snippet is a single row of the snippets table.
type Snippet struct {
	// Keyword is the unique name the snippet is stored under.
	Keyword string `json:"keyword" yaml:"keyword"`

	// Message is the snippet body.
	Message string `json:"message" yaml:"message"`

	// Hidden excludes the snippet from catalog and search results.
	Hidden bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Validate checks the snippet can be stored from a bundle file.
func (s Snippet) Validate() error {
	if s.Keyword == "" {
		return errors.NewInvalidSnippet("keyword", "cannot be empty")
	}
	return nil
}

// Visible reports whether the snippet may appear in catalog and search.
func (s Snippet) Visible() bool {
	return !s.Hidden
}
