package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	_ "github.com/marcboeker/go-duckdb" // DuckDB driver
	_ "modernc.org/sqlite"              // SQLite driver

	"github.com/canonica-labs/snippets/internal/errors"
	"github.com/canonica-labs/snippets/internal/observability"
	"github.com/canonica-labs/snippets/internal/snippets"
)

// SQLRepository implements SnippetRepository over database/sql.
// The connection pool is opened once and shared by every call; each call
// runs in its own transaction.
type SQLRepository struct {
	db      *sql.DB
	dialect Dialect
	q       queries
	log     *observability.Logger
}

// Config selects and locates the backend.
type Config struct {
	// Driver is one of "postgres", "sqlite" or "duckdb".
	Driver string

	// DSN is the driver-specific connection string or file path.
	DSN string
}

// NewSQLRepository wraps an open database handle.
func NewSQLRepository(db *sql.DB, dialect Dialect, logger *observability.Logger) *SQLRepository {
	if logger == nil {
		logger = observability.Discard()
	}
	if dialect.SingleConnection {
		db.SetMaxOpenConns(1)
	}
	return &SQLRepository{
		db:      db,
		dialect: dialect,
		q:       dialect.queries(),
		log:     logger.With("driver", dialect.Name),
	}
}

// Open connects to the configured backend and verifies connectivity.
func Open(ctx context.Context, cfg Config, logger *observability.Logger) (*SQLRepository, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.Discard()
	}

	logger.Debug("Connecting to database", "driver", dialect.Name)
	db, err := sql.Open(dialect.DriverName, cfg.DSN)
	if err != nil {
		return nil, errors.NewDatabaseUnavailable(dialect.Name, err)
	}

	repo := NewSQLRepository(db, dialect, logger)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.NewDatabaseUnavailable(dialect.Name, err)
	}
	logger.Debug("Database connection established.", "driver", dialect.Name)
	return repo, nil
}

// Close releases the connection pool.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// Dialect returns the dialect the repository renders queries for.
func (r *SQLRepository) Dialect() Dialect {
	return r.dialect
}

// Put stores a snippet with a single atomic upsert.
func (r *SQLRepository) Put(ctx context.Context, keyword, message string, hidden bool) (snippets.Snippet, error) {
	r.log.Info("Storing snippet", "keyword", keyword, "message", message, "hidden", hidden)

	err := r.inTx(ctx, "put", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, r.q.upsert, keyword, message, hidden)
		if err != nil {
			return fmt.Errorf("failed to upsert snippet: %w", err)
		}
		return nil
	})
	if err != nil {
		return snippets.Snippet{}, err
	}

	r.log.Debug("Snippet stored successfully.", "keyword", keyword)
	return snippets.Snippet{Keyword: keyword, Message: message, Hidden: hidden}, nil
}

// Get retrieves the snippet stored under keyword.
func (r *SQLRepository) Get(ctx context.Context, keyword string) (snippets.Snippet, bool, error) {
	var s snippets.Snippet
	found := true

	err := r.inTx(ctx, "get", func(tx *sql.Tx) error {
		var row snippetRow
		err := tx.QueryRowContext(ctx, r.q.get, keyword).Scan(&row.keyword, &row.message, &row.hidden)
		if err == sql.ErrNoRows {
			found = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get snippet: %w", err)
		}
		s = row.snippet()
		return nil
	})
	if err != nil {
		return snippets.Snippet{}, false, err
	}

	if !found {
		r.log.Info("Snippet not found", "keyword", keyword)
		return snippets.Snippet{}, false, nil
	}
	r.log.Info("Returning snippet", "keyword", keyword, "message", s.Message)
	return s, true, nil
}

// Catalog returns the visible keywords in ascending order.
func (r *SQLRepository) Catalog(ctx context.Context) ([]string, error) {
	keywords := []string{}

	err := r.inTx(ctx, "catalog", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, r.q.catalog)
		if err != nil {
			return fmt.Errorf("failed to list keywords: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var keyword string
			if err := rows.Scan(&keyword); err != nil {
				return fmt.Errorf("failed to scan keyword: %w", err)
			}
			keywords = append(keywords, keyword)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating keywords: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("Returning all keywords", "count", len(keywords))
	return keywords, nil
}

// Search returns the visible snippets whose message contains term.
func (r *SQLRepository) Search(ctx context.Context, term string) ([]snippets.Snippet, error) {
	results := []snippets.Snippet{}

	err := r.inTx(ctx, "search", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, r.q.search, term)
		if err != nil {
			return fmt.Errorf("failed to search snippets: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var s snippets.Snippet
			if err := rows.Scan(&s.Keyword, &s.Message); err != nil {
				return fmt.Errorf("failed to scan snippet: %w", err)
			}
			results = append(results, s)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating snippets: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("Returning snippets with search term", "term", term, "count", len(results))
	return results, nil
}

// List returns snippets ordered by keyword.
func (r *SQLRepository) List(ctx context.Context, includeHidden bool) ([]snippets.Snippet, error) {
	query := r.q.listVisible
	if includeHidden {
		query = r.q.listAll
	}
	results := []snippets.Snippet{}

	err := r.inTx(ctx, "list", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to list snippets: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var row snippetRow
			if err := rows.Scan(&row.keyword, &row.message, &row.hidden); err != nil {
				return fmt.Errorf("failed to scan snippet: %w", err)
			}
			results = append(results, row.snippet())
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("Returning snippets", "count", len(results), "include_hidden", includeHidden)
	return results, nil
}

// EnsureSchema creates the snippets table if it does not exist.
func (r *SQLRepository) EnsureSchema(ctx context.Context) error {
	err := r.inTx(ctx, "init", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("failed to create snippets table: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info("Snippets table ready")
	return nil
}

// CheckConnectivity pings the backend.
func (r *SQLRepository) CheckConnectivity(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return errors.NewDatabaseUnavailable(r.dialect.Name, err)
	}
	return nil
}

// snippetRow scans a full row. The table may be created by other tools
// without NOT NULL constraints. A NULL message reads as empty. A NULL hidden
// flag reads as hidden, since the catalog and search filters never match it.
type snippetRow struct {
	keyword string
	message sql.NullString
	hidden  sql.NullBool
}

func (r snippetRow) snippet() snippets.Snippet {
	return snippets.Snippet{
		Keyword: r.keyword,
		Message: r.message.String,
		Hidden:  !r.hidden.Valid || r.hidden.Bool,
	}
}

// inTx runs fn in a transaction scoped to a single operation. The
// transaction is rolled back on every path that does not commit.
func (r *SQLRepository) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.fail(op, fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return r.fail(op, err)
	}

	if err := tx.Commit(); err != nil {
		return r.fail(op, fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

func (r *SQLRepository) fail(op string, err error) error {
	r.log.Error("Database operation failed", "operation", op, "error", err)
	return classify(op, err)
}

// classify wraps a driver error, keeping its SQLSTATE when one is available.
func classify(op string, err error) *errors.ErrDatabase {
	dbErr := errors.NewDatabase(op, err)

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return dbErr.WithSQLState(string(pqErr.Code))
	}

	// The embedded engines report a missing table only in the message.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such table") ||
		(strings.Contains(msg, "table with name") && strings.Contains(msg, "does not exist")) {
		return dbErr.WithSQLState("42P01")
	}
	return dbErr
}
