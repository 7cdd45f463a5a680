// Package errors provides explicit, human-readable error types for snippets.
// Every error carries a Reason and a Suggestion so the CLI can tell the user
// what went wrong and what to try next.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// SnippetError is the base error type for all snippets errors.
type SnippetError struct {
	Code       ErrorCode
	Message    string
	Reason     string
	Suggestion string
	Cause      error
}

// ErrorCode represents the category of error for exit code mapping.
type ErrorCode int

const (
	CodeValidation ErrorCode = 1
	CodeUsage      ErrorCode = 2
	CodeDatabase   ErrorCode = 3
	CodeInternal   ErrorCode = 4
)

func (e *SnippetError) Error() string {
	msg := e.Message
	if e.Reason != "" {
		msg = fmt.Sprintf("%s\nReason: %s", msg, e.Reason)
	}
	if e.Suggestion != "" {
		msg = fmt.Sprintf("%s\nSuggestion: %s", msg, e.Suggestion)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s\nCaused by: %v", msg, e.Cause)
	}
	return msg
}

func (e *SnippetError) Unwrap() error {
	return e.Cause
}

// ErrUsage is returned when the command line cannot be parsed into a command.
type ErrUsage struct {
	SnippetError
}

// NewUsage creates a new ErrUsage.
func NewUsage(reason string) *ErrUsage {
	return &ErrUsage{
		SnippetError: SnippetError{
			Code:       CodeUsage,
			Message:    "invalid usage",
			Reason:     reason,
			Suggestion: "run 'snippets --help' for the list of commands",
		},
	}
}

// ErrDatabase is returned for any backend failure other than the expected
// duplicate-key path of put.
type ErrDatabase struct {
	SnippetError
	Operation string
	// SQLState is the backend's SQLSTATE code, when it reports one.
	SQLState string
}

// NewDatabase wraps a backend failure for the given operation.
func NewDatabase(operation string, cause error) *ErrDatabase {
	return &ErrDatabase{
		SnippetError: SnippetError{
			Code:       CodeDatabase,
			Message:    fmt.Sprintf("%s failed", operation),
			Reason:     "the snippets database returned an error",
			Suggestion: "check connectivity with 'snippets doctor'",
			Cause:      cause,
		},
		Operation: operation,
	}
}

// WithSQLState records the backend error code and refines the suggestion for
// the classes of failure the user can act on.
func (e *ErrDatabase) WithSQLState(code string) *ErrDatabase {
	e.SQLState = code
	switch {
	case code == "42P01":
		e.Reason = "the snippets table does not exist"
		e.Suggestion = "create it with 'snippets init'"
	case strings.HasPrefix(code, "28"):
		e.Reason = "the database rejected the credentials"
		e.Suggestion = "check database.user and database.password in the config"
	case strings.HasPrefix(code, "08"):
		e.Reason = "the database connection failed"
	}
	return e
}

// NewDatabaseUnavailable is returned when the backend cannot be reached at
// startup.
func NewDatabaseUnavailable(driver string, cause error) *ErrDatabase {
	return &ErrDatabase{
		SnippetError: SnippetError{
			Code:       CodeDatabase,
			Message:    "database unavailable",
			Reason:     fmt.Sprintf("could not connect using the %s driver", driver),
			Suggestion: "check the database section of the config or pass --dsn",
			Cause:      cause,
		},
		Operation: "connect",
	}
}

// ErrInvalidSnippet is returned when a snippet definition is rejected before
// reaching the store.
type ErrInvalidSnippet struct {
	SnippetError
	Field string
}

// NewInvalidSnippet creates a new ErrInvalidSnippet.
func NewInvalidSnippet(field, reason string) *ErrInvalidSnippet {
	return &ErrInvalidSnippet{
		SnippetError: SnippetError{
			Code:       CodeValidation,
			Message:    "invalid snippet",
			Reason:     fmt.Sprintf("field '%s': %s", field, reason),
			Suggestion: "every entry needs a unique, non-empty keyword",
		},
		Field: field,
	}
}

// ErrInvalidBundle is returned when a snippet bundle file cannot be read or
// decoded.
type ErrInvalidBundle struct {
	SnippetError
	Path string
}

// NewInvalidBundle creates a new ErrInvalidBundle.
func NewInvalidBundle(path, reason string, cause error) *ErrInvalidBundle {
	return &ErrInvalidBundle{
		SnippetError: SnippetError{
			Code:       CodeValidation,
			Message:    "invalid snippet bundle",
			Reason:     reason,
			Suggestion: "a bundle is a YAML file with a 'snippets' list of keyword, message and hidden entries",
			Cause:      cause,
		},
		Path: path,
	}
}

// ErrConfigInvalid is returned when configuration cannot be loaded or names an
// unsupported backend.
type ErrConfigInvalid struct {
	SnippetError
	Key string
}

// NewConfigInvalid creates a new ErrConfigInvalid.
func NewConfigInvalid(key, reason string) *ErrConfigInvalid {
	return &ErrConfigInvalid{
		SnippetError: SnippetError{
			Code:       CodeValidation,
			Message:    "invalid configuration",
			Reason:     fmt.Sprintf("%s: %s", key, reason),
			Suggestion: "supported drivers are postgres, sqlite and duckdb",
		},
		Key: key,
	}
}

// ExitCode maps an error to the process exit status. Unknown errors are
// internal failures.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var usage *ErrUsage
	if stderrors.As(err, &usage) {
		return int(usage.Code)
	}
	var db *ErrDatabase
	if stderrors.As(err, &db) {
		return int(db.Code)
	}
	var invalid *ErrInvalidSnippet
	if stderrors.As(err, &invalid) {
		return int(invalid.Code)
	}
	var bundle *ErrInvalidBundle
	if stderrors.As(err, &bundle) {
		return int(bundle.Code)
	}
	var cfg *ErrConfigInvalid
	if stderrors.As(err, &cfg) {
		return int(cfg.Code)
	}
	var base *SnippetError
	if stderrors.As(err, &base) {
		return int(base.Code)
	}
	return int(CodeInternal)
}
