// Package bootstrap loads and writes snippet bundles: YAML files holding many
// snippets at once, used by 'snippets load' and 'snippets export'.
//
// A bundle looks like:
//
//	snippets:
//	  - keyword: shovel
//	    message: Buy a shovel.
//	  - keyword: pin
//	    message: "1234"
//	    hidden: true
package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/canonica-labs/snippets/internal/errors"
	"github.com/canonica-labs/snippets/internal/snippets"
)

// Bundle is a set of snippets stored together.
type Bundle struct {
	Snippets []snippets.Snippet `json:"snippets" yaml:"snippets"`

	// validated tracks if Validate() has been called
	validated bool
}

// Putter is the part of the snippet store a bundle is applied to.
type Putter interface {
	Put(ctx context.Context, keyword, message string, hidden bool) (snippets.Snippet, error)
}

// LoadBundle reads and validates a bundle file. Unknown fields fail.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInvalidBundle(path, "failed to read bundle file", err)
	}
	return parseBundle(path, data)
}

// ParseBundle decodes and validates a bundle.
func ParseBundle(data []byte) (*Bundle, error) {
	return parseBundle("", data)
}

func parseBundle(path string, data []byte) (*Bundle, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var b Bundle
	if err := dec.Decode(&b); err != nil {
		if err == io.EOF {
			return nil, errors.NewInvalidBundle(path, "bundle is empty", nil)
		}
		return nil, errors.NewInvalidBundle(path, "failed to parse bundle YAML", err)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks every snippet has a keyword and no keyword repeats.
// A repeated keyword would make the result depend on apply order.
func (b *Bundle) Validate() error {
	seen := make(map[string]int, len(b.Snippets))
	for i, s := range b.Snippets {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("snippet #%d: %w", i+1, err)
		}
		if first, dup := seen[s.Keyword]; dup {
			return errors.NewInvalidSnippet("keyword",
				fmt.Sprintf("'%s' appears in entries #%d and #%d", s.Keyword, first, i+1))
		}
		seen[s.Keyword] = i + 1
	}
	b.validated = true
	return nil
}

// Apply stores every snippet in order, calling stored after each one.
// It stops at the first failure; snippets already stored stay stored.
func (b *Bundle) Apply(ctx context.Context, repo Putter, stored func(snippets.Snippet)) error {
	if !b.validated {
		return fmt.Errorf("bundle must be validated before apply")
	}
	for _, s := range b.Snippets {
		out, err := repo.Put(ctx, s.Keyword, s.Message, s.Hidden)
		if err != nil {
			return fmt.Errorf("failed to store '%s': %w", s.Keyword, err)
		}
		if stored != nil {
			stored(out)
		}
	}
	return nil
}

// NewBundle builds an already-valid bundle from store contents.
func NewBundle(items []snippets.Snippet) *Bundle {
	return &Bundle{Snippets: items, validated: true}
}

// Write encodes the bundle as YAML.
func (b *Bundle) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to marshal bundle: %w", err)
	}
	return enc.Close()
}

// Save writes the bundle to a file.
func (b *Bundle) Save(path string) error {
	var buf bytes.Buffer
	if err := b.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write bundle file: %w", err)
	}
	return nil
}
