package errors

import (
	"context"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, 0},
		{"usage", NewUsage("a command is required"), 2},
		{"database", NewDatabase("get", fmt.Errorf("boom")), 3},
		{"invalid snippet", NewInvalidSnippet("keyword", "must not be empty"), 1},
		{"invalid bundle", NewInvalidBundle("b.yaml", "failed to read bundle file", fmt.Errorf("missing")), 1},
		{"wrapped bundle", fmt.Errorf("load: %w", NewInvalidBundle("b.yaml", "bad YAML", nil)), 1},
		{"config", NewConfigInvalid("database.driver", "unsupported"), 1},
		{"unknown", context.Canceled, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.expected {
				t.Errorf("expected exit %d, got %d", tt.expected, got)
			}
		})
	}
}
