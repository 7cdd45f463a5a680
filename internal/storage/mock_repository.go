package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/canonica-labs/snippets/internal/errors"
	"github.com/canonica-labs/snippets/internal/snippets"
)

// MockRepository is an in-memory implementation of SnippetRepository for
// testing. It is thread-safe and respects context cancellation.
type MockRepository struct {
	mu       sync.RWMutex
	snippets map[string]snippets.Snippet

	// Test helper fields for simulating failures
	connectivityFailure bool
	persistenceFailure  bool
	schemaEnsured       bool
}

// NewMockRepository creates a new mock repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		snippets: make(map[string]snippets.Snippet),
	}
}

// checkContext verifies the context is not cancelled or timed out.
func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Put stores or replaces a snippet.
func (r *MockRepository) Put(ctx context.Context, keyword, message string, hidden bool) (snippets.Snippet, error) {
	if err := checkContext(ctx); err != nil {
		return snippets.Snippet{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.persistenceFailure {
		return snippets.Snippet{}, errors.NewDatabase("put", errSimulated)
	}

	s := snippets.Snippet{Keyword: keyword, Message: message, Hidden: hidden}
	r.snippets[keyword] = s
	return s, nil
}

// Get retrieves a snippet by keyword.
func (r *MockRepository) Get(ctx context.Context, keyword string) (snippets.Snippet, bool, error) {
	if err := checkContext(ctx); err != nil {
		return snippets.Snippet{}, false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.persistenceFailure {
		return snippets.Snippet{}, false, errors.NewDatabase("get", errSimulated)
	}

	s, ok := r.snippets[keyword]
	return s, ok, nil
}

// Catalog returns the visible keywords in ascending order.
func (r *MockRepository) Catalog(ctx context.Context) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.persistenceFailure {
		return nil, errors.NewDatabase("catalog", errSimulated)
	}

	keywords := []string{}
	for k, s := range r.snippets {
		if s.Visible() {
			keywords = append(keywords, k)
		}
	}
	sort.Strings(keywords)
	return keywords, nil
}

// Search returns the visible snippets whose message contains term, ordered by
// keyword.
func (r *MockRepository) Search(ctx context.Context, term string) ([]snippets.Snippet, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.persistenceFailure {
		return nil, errors.NewDatabase("search", errSimulated)
	}

	results := []snippets.Snippet{}
	for _, s := range r.snippets {
		if s.Visible() && strings.Contains(s.Message, term) {
			results = append(results, s)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Keyword < results[j].Keyword
	})
	return results, nil
}

// List returns snippets ordered by keyword.
func (r *MockRepository) List(ctx context.Context, includeHidden bool) ([]snippets.Snippet, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.persistenceFailure {
		return nil, errors.NewDatabase("list", errSimulated)
	}

	results := []snippets.Snippet{}
	for _, s := range r.snippets {
		if includeHidden || s.Visible() {
			results = append(results, s)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Keyword < results[j].Keyword
	})
	return results, nil
}

// EnsureSchema records that the schema was requested.
func (r *MockRepository) EnsureSchema(ctx context.Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.persistenceFailure {
		return errors.NewDatabase("init", errSimulated)
	}
	r.schemaEnsured = true
	return nil
}

// CheckConnectivity reports the simulated connectivity state.
func (r *MockRepository) CheckConnectivity(ctx context.Context) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.connectivityFailure {
		return errors.NewDatabaseUnavailable("mock", errSimulated)
	}
	return nil
}

// Count returns the number of stored snippets, hidden ones included.
func (r *MockRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snippets)
}

// SchemaEnsured reports whether EnsureSchema has been called.
func (r *MockRepository) SchemaEnsured() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schemaEnsured
}

// SetConnectivityFailure makes CheckConnectivity fail.
func (r *MockRepository) SetConnectivityFailure(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectivityFailure = fail
}

// SetPersistenceFailure makes every data operation fail with a database error.
func (r *MockRepository) SetPersistenceFailure(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persistenceFailure = fail
}

type simulatedError struct{}

func (simulatedError) Error() string { return "simulated failure" }

var errSimulated error = simulatedError{}
