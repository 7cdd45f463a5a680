package storage

import (
	"fmt"
	"strings"

	"github.com/canonica-labs/snippets/internal/errors"
)

// Dialect captures the SQL differences between the supported backends.
type Dialect struct {
	// Name is the value of database.driver that selects this dialect.
	Name string

	// DriverName is the database/sql driver registered for the backend.
	DriverName string

	// SingleConnection limits the pool to one connection. Embedded engines
	// give each connection of an in-memory database its own copy.
	SingleConnection bool

	numberedParams bool
	keywordOrder   string
	containsFunc   string
}

var (
	// Postgres uses github.com/lib/pq.
	Postgres = Dialect{
		Name:           "postgres",
		DriverName:     "postgres",
		numberedParams: true,
		// Byte order regardless of the database locale.
		keywordOrder: `keyword COLLATE "C"`,
		containsFunc: "strpos(message, %s) > 0",
	}

	// SQLite uses modernc.org/sqlite. instr is case-sensitive where LIKE is not.
	SQLite = Dialect{
		Name:             "sqlite",
		DriverName:       "sqlite",
		SingleConnection: true,
		keywordOrder:     "keyword",
		containsFunc:     "instr(message, %s) > 0",
	}

	// DuckDB uses github.com/marcboeker/go-duckdb.
	DuckDB = Dialect{
		Name:             "duckdb",
		DriverName:       "duckdb",
		SingleConnection: true,
		keywordOrder:     "keyword",
		containsFunc:     "contains(message, %s)",
	}
)

// Dialects lists the supported backends in the order they are documented.
func Dialects() []Dialect {
	return []Dialect{Postgres, SQLite, DuckDB}
}

// DialectFor returns the dialect selected by a database.driver value.
func DialectFor(name string) (Dialect, error) {
	for _, d := range Dialects() {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return Dialect{}, errors.NewConfigInvalid("database.driver", fmt.Sprintf("unsupported driver %q", name))
}

// param returns the placeholder for the n-th (1-based) query argument.
func (d Dialect) param(n int) string {
	if d.numberedParams {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// queries holds the statements a repository runs, rendered once per dialect.
type queries struct {
	upsert      string
	get         string
	catalog     string
	search      string
	listAll     string
	listVisible string
}

func (d Dialect) queries() queries {
	return queries{
		upsert: fmt.Sprintf(
			`INSERT INTO snippets (keyword, message, hidden)
			 VALUES (%s, %s, %s)
			 ON CONFLICT (keyword) DO UPDATE SET message = excluded.message, hidden = excluded.hidden`,
			d.param(1), d.param(2), d.param(3)),
		get: fmt.Sprintf(
			`SELECT keyword, message, hidden FROM snippets WHERE keyword = %s`,
			d.param(1)),
		catalog: fmt.Sprintf(
			`SELECT keyword FROM snippets WHERE NOT hidden ORDER BY %s`,
			d.keywordOrder),
		search: fmt.Sprintf(
			`SELECT keyword, message FROM snippets WHERE %s AND NOT hidden ORDER BY %s`,
			fmt.Sprintf(d.containsFunc, d.param(1)), d.keywordOrder),
		listAll: fmt.Sprintf(
			`SELECT keyword, message, hidden FROM snippets ORDER BY %s`,
			d.keywordOrder),
		listVisible: fmt.Sprintf(
			`SELECT keyword, message, hidden FROM snippets WHERE NOT hidden ORDER BY %s`,
			d.keywordOrder),
	}
}
