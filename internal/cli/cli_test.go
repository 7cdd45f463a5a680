package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"

	"github.com/canonica-labs/snippets/internal/observability"
	"github.com/canonica-labs/snippets/internal/storage"
)

// isolate runs the test in an empty directory with its own XDG homes so no
// config, .env or database of the developer is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg-config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "xdg-data"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	for _, key := range []string{"SNIPPETS_DATABASE_DRIVER", "SNIPPETS_DATABASE_URL", "SNIPPETS_LOGGING_FILE"} {
		t.Setenv(key, "")
	}
	return dir
}

// run executes one CLI invocation against repo.
func run(t *testing.T, repo storage.SnippetRepository, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := New(
		WithRepository(repo),
		WithLogger(observability.Discard()),
		WithOutput(&stdout, &stderr),
	)
	code := c.Run(context.Background(), args)
	return code, stdout.String(), stderr.String()
}

func mustRun(t *testing.T, repo storage.SnippetRepository, args ...string) string {
	t.Helper()
	code, stdout, stderr := run(t, repo, args...)
	if code != ExitSuccess {
		t.Fatalf("%v: expected exit 0, got %d\nstderr: %s", args, code, stderr)
	}
	return stdout
}

// TestPutThenGet verifies the store-then-retrieve round trip.
//
// Green-Flag: a stored snippet must come back under its name.
func TestPutThenGet(t *testing.T) {
	isolate(t)
	repo := storage.NewMockRepository()

	out := mustRun(t, repo, "put", "shovel", "Buy a shovel.")
	if out != "Stored 'Buy a shovel.' as 'shovel'\n" {
		t.Errorf("unexpected put output: %q", out)
	}

	out = mustRun(t, repo, "get", "shovel")
	if out != "Retrieved snippet: 'Buy a shovel.'\n" {
		t.Errorf("unexpected get output: %q", out)
	}
}

// TestPut_Overwrite verifies a second put replaces the first.
func TestPut_Overwrite(t *testing.T) {
	isolate(t)
	repo := storage.NewMockRepository()

	mustRun(t, repo, "put", "x", "first")
	mustRun(t, repo, "put", "x", "second")

	if out := mustRun(t, repo, "get", "x"); out != "Retrieved snippet: 'second'\n" {
		t.Errorf("expected overwritten snippet, got %q", out)
	}
	if repo.Count() != 1 {
		t.Errorf("expected 1 snippet, got %d", repo.Count())
	}
}

// TestGet_NotFound verifies a missing name prints the sentinel and succeeds.
//
// Green-Flag: a missing snippet is not an error.
func TestGet_NotFound(t *testing.T) {
	isolate(t)

	out := mustRun(t, storage.NewMockRepository(), "get", "nope")
	if out != "Retrieved snippet: '404: Snippet Not Found'\n" {
		t.Errorf("unexpected output: %q", out)
	}
}

// TestHiddenSnippets verifies hidden snippets are reachable by get only.
func TestHiddenSnippets(t *testing.T) {
	isolate(t)
	repo := storage.NewMockRepository()

	mustRun(t, repo, "put", "pin", "1234", "--hide")
	mustRun(t, repo, "put", "shovel", "Buy a shovel.")

	if out := mustRun(t, repo, "get", "pin"); out != "Retrieved snippet: '1234'\n" {
		t.Errorf("hidden snippet must still be retrievable, got %q", out)
	}
	if out := mustRun(t, repo, "catalog"); out != "shovel\n" {
		t.Errorf("hidden snippet must not be catalogued, got %q", out)
	}
	if out := mustRun(t, repo, "search", "12"); out != "" {
		t.Errorf("hidden snippet must not be searchable, got %q", out)
	}
}

func TestCatalog_Ordered(t *testing.T) {
	isolate(t)
	repo := storage.NewMockRepository()

	for _, kw := range []string{"zebra", "apple", "mango"} {
		mustRun(t, repo, "put", kw, "fruit or not")
	}

	if out := mustRun(t, repo, "catalog"); out != "apple\nmango\nzebra\n" {
		t.Errorf("unexpected catalog: %q", out)
	}
}

func TestCatalog_Empty(t *testing.T) {
	isolate(t)

	if out := mustRun(t, storage.NewMockRepository(), "catalog"); out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestSearch(t *testing.T) {
	isolate(t)
	repo := storage.NewMockRepository()

	mustRun(t, repo, "put", "shovel", "Buy a shovel.")
	mustRun(t, repo, "put", "rake", "Buy a rake.")
	mustRun(t, repo, "put", "dig", "Dig a hole.")

	out := mustRun(t, repo, "search", "Buy")
	if out != "rake : Buy a rake.\nshovel : Buy a shovel.\n" {
		t.Errorf("unexpected search output: %q", out)
	}

	if out := mustRun(t, repo, "search", "buy"); out != "" {
		t.Errorf("search must be case-sensitive, got %q", out)
	}
}

// TestUsageErrors verifies malformed invocations exit 2 with usage on stderr
// and never reach the store.
//
// Red-Flag: bad invocations must be refused before any database work.
func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{"no command", nil, "a command is required"},
		{"unknown command", []string{"delete", "x"}, `unknown command "delete"`},
		{"put missing snippet", []string{"put", "x"}, "the following arguments are required: snippet"},
		{"put missing both", []string{"put"}, "the following arguments are required: name, snippet"},
		{"get missing name", []string{"get"}, "the following arguments are required: name"},
		{"search missing term", []string{"search"}, "the following arguments are required: searchterm"},
		{"catalog extra argument", []string{"catalog", "x"}, "unrecognized arguments: x"},
		{"unknown flag", []string{"put", "--bogus", "a", "b"}, "unknown flag: --bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			repo := storage.NewMockRepository()

			code, stdout, stderr := run(t, repo, tt.args...)
			if code != ExitUsage {
				t.Errorf("expected exit %d, got %d", ExitUsage, code)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
			if !strings.Contains(stderr, tt.message) {
				t.Errorf("expected stderr to contain %q, got %q", tt.message, stderr)
			}
			if !strings.Contains(stderr, "Usage:") {
				t.Errorf("expected usage text on stderr, got %q", stderr)
			}
			if repo.Count() != 0 {
				t.Errorf("store must be untouched, has %d snippets", repo.Count())
			}
		})
	}
}

// TestDatabaseFailure verifies backend failures exit 3 with a message.
//
// Red-Flag: database errors must not be reported as success.
func TestDatabaseFailure(t *testing.T) {
	isolate(t)
	repo := storage.NewMockRepository()
	repo.SetPersistenceFailure(true)

	for _, args := range [][]string{
		{"put", "a", "b"},
		{"get", "a"},
		{"catalog"},
		{"search", "a"},
	} {
		code, stdout, stderr := run(t, repo, args...)
		if code != ExitDatabase {
			t.Errorf("%v: expected exit %d, got %d", args, ExitDatabase, code)
		}
		if stdout != "" {
			t.Errorf("%v: expected no stdout, got %q", args, stdout)
		}
		if !strings.HasPrefix(stderr, "snippets: ") {
			t.Errorf("%v: expected error on stderr, got %q", args, stderr)
		}
	}
}

func TestQuiet(t *testing.T) {
	isolate(t)
	repo := storage.NewMockRepository()

	if out := mustRun(t, repo, "--quiet", "put", "a", "b"); out != "" {
		t.Errorf("expected --quiet to suppress confirmation, got %q", out)
	}
	if out := mustRun(t, repo, "--quiet", "get", "a"); out != "Retrieved snippet: 'b'\n" {
		t.Errorf("results must not be suppressed by --quiet, got %q", out)
	}
}

func TestJSONOutput(t *testing.T) {
	isolate(t)
	repo := storage.NewMockRepository()
	mustRun(t, repo, "put", "shovel", "Buy a shovel.")

	var got struct {
		Found   bool   `json:"found"`
		Keyword string `json:"keyword"`
		Snippet struct {
			Keyword string `json:"keyword"`
			Message string `json:"message"`
		} `json:"snippet"`
	}
	out := mustRun(t, repo, "--json", "get", "shovel")
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if !got.Found || got.Snippet.Message != "Buy a shovel." {
		t.Errorf("unexpected JSON result: %+v", got)
	}

	var catalog struct {
		Keywords []string `json:"keywords"`
		Count    int      `json:"count"`
	}
	out = mustRun(t, repo, "--json", "catalog")
	if err := json.Unmarshal([]byte(out), &catalog); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if catalog.Count != 1 || catalog.Keywords[0] != "shovel" {
		t.Errorf("unexpected catalog JSON: %+v", catalog)
	}
}

func TestInit(t *testing.T) {
	isolate(t)
	repo := storage.NewMockRepository()

	out := mustRun(t, repo, "init")
	if !strings.Contains(out, "Snippets table ready") {
		t.Errorf("unexpected init output: %q", out)
	}
	if !repo.SchemaEnsured() {
		t.Error("expected init to create the schema")
	}
}

// TestLoadAndExport verifies a bundle loads and exports back.
func TestLoadAndExport(t *testing.T) {
	dir := isolate(t)
	repo := storage.NewMockRepository()

	bundle := filepath.Join(dir, "bundle.yaml")
	content := "snippets:\n  - keyword: shovel\n    message: Buy a shovel.\n  - keyword: pin\n    message: \"1234\"\n    hidden: true\n"
	if err := os.WriteFile(bundle, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write bundle: %v", err)
	}

	out := mustRun(t, repo, "load", bundle)
	if out != "Stored 'Buy a shovel.' as 'shovel'\nStored '1234' as 'pin'\n" {
		t.Errorf("unexpected load output: %q", out)
	}

	out = mustRun(t, repo, "export")
	if !strings.Contains(out, "keyword: shovel") || strings.Contains(out, "pin") {
		t.Errorf("export must hold visible snippets only, got:\n%s", out)
	}

	exported := filepath.Join(dir, "out.yaml")
	mustRun(t, repo, "export", "--include-hidden", "-o", exported)
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "keyword: pin") || !strings.Contains(string(data), "hidden: true") {
		t.Errorf("expected hidden snippet in export, got:\n%s", data)
	}
}

// TestLoad_InvalidBundle verifies a bad bundle stores nothing and exits as
// a validation failure.
//
// Red-Flag: invalid bundles must be rejected as a whole.
func TestLoad_InvalidBundle(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"duplicate keyword", "snippets:\n  - keyword: a\n    message: x\n  - keyword: a\n    message: y\n"},
		{"unknown field", "snippets:\n  - keyword: a\n    message: x\n    colour: red\n"},
		{"broken YAML", "snippets: [unterminated"},
		{"missing file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			repo := storage.NewMockRepository()

			bundle := filepath.Join(dir, "bundle.yaml")
			if tt.content != "" {
				if err := os.WriteFile(bundle, []byte(tt.content), 0o644); err != nil {
					t.Fatalf("failed to write bundle: %v", err)
				}
			}

			code, stdout, stderr := run(t, repo, "load", bundle)
			if code != ExitValidation {
				t.Errorf("expected exit %d, got %d\nstderr: %s", ExitValidation, code, stderr)
			}
			if stdout != "" {
				t.Errorf("expected no stdout, got %q", stdout)
			}
			if repo.Count() != 0 {
				t.Errorf("expected nothing stored, got %d", repo.Count())
			}
		})
	}
}

// TestNoCommand_SkipsConfig verifies a bare invocation is a usage error even
// when the config file is broken.
//
// Red-Flag: usage errors must be reported before any setup runs.
func TestNoCommand_SkipsConfig(t *testing.T) {
	dir := isolate(t)
	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("database: [unterminated"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	code, _, stderr := run(t, storage.NewMockRepository(), "--config", broken)
	if code != ExitUsage {
		t.Errorf("expected exit %d, got %d\nstderr: %s", ExitUsage, code, stderr)
	}
	if !strings.Contains(stderr, "a command is required") {
		t.Errorf("expected usage error on stderr, got %q", stderr)
	}
}

func TestDoctor(t *testing.T) {
	isolate(t)
	repo := storage.NewMockRepository()

	out := mustRun(t, repo, "doctor")
	if !strings.Contains(out, "✓ All checks passed") {
		t.Errorf("expected passing doctor, got:\n%s", out)
	}

	repo.SetConnectivityFailure(true)
	code, out, _ := run(t, repo, "doctor")
	if code != ExitDatabase {
		t.Errorf("expected exit %d, got %d", ExitDatabase, code)
	}
	if !strings.Contains(out, "✗ Database Connectivity") {
		t.Errorf("expected failed connectivity check, got:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	isolate(t)

	out := mustRun(t, storage.NewMockRepository(), "version")
	if !strings.Contains(out, "Version:    "+Version) || !strings.Contains(out, "sqlite") {
		t.Errorf("unexpected version output:\n%s", out)
	}
}

// TestEndToEnd_SQLite drives the real storage stack through the CLI with
// separate invocations sharing one database file.
func TestEndToEnd_SQLite(t *testing.T) {
	dir := isolate(t)
	dbPath := filepath.Join(dir, "snippets.db")
	logPath := filepath.Join(dir, "snippets.log")

	invoke := func(args ...string) (int, string) {
		var stdout, stderr bytes.Buffer
		c := New(WithOutput(&stdout, &stderr))
		base := []string{"--driver", "sqlite", "--dsn", dbPath, "--log-file", logPath}
		code := c.Run(context.Background(), append(base, args...))
		if stderr.Len() > 0 {
			t.Logf("stderr: %s", stderr.String())
		}
		return code, stdout.String()
	}

	if code, _ := invoke("get", "shovel"); code != ExitDatabase {
		t.Errorf("expected missing table to exit %d, got %d", ExitDatabase, code)
	}

	if code, _ := invoke("init"); code != ExitSuccess {
		t.Fatalf("init failed with exit %d", code)
	}
	if code, out := invoke("put", "shovel", "Buy a shovel."); code != ExitSuccess || out != "Stored 'Buy a shovel.' as 'shovel'\n" {
		t.Fatalf("put failed: exit %d, %q", code, out)
	}
	if code, out := invoke("get", "shovel"); code != ExitSuccess || out != "Retrieved snippet: 'Buy a shovel.'\n" {
		t.Errorf("get failed: exit %d, %q", code, out)
	}
	if code, out := invoke("search", "shovel"); code != ExitSuccess || out != "shovel : Buy a shovel.\n" {
		t.Errorf("search failed: exit %d, %q", code, out)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "Snippet stored successfully.") {
		t.Errorf("expected diagnostic log entries, got:\n%s", data)
	}
}
