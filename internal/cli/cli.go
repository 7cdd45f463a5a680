// Package cli provides the command-line interface for snippets.
// Each invocation runs exactly one command against the snippet store.
package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/canonica-labs/snippets/internal/config"
	cerrors "github.com/canonica-labs/snippets/internal/errors"
	"github.com/canonica-labs/snippets/internal/observability"
	"github.com/canonica-labs/snippets/internal/storage"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitUsage      = 2
	ExitDatabase   = 3
	ExitInternal   = 4
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	cfg     *config.Config

	repo   storage.SnippetRepository
	logger *observability.Logger

	// closers release what the CLI opened itself, in reverse order
	closers []func() error

	stdout   io.Writer
	stderr   io.Writer
	errColor *color.Color

	// Global flags
	configPath string
	driver     string
	dsn        string
	logFile    string
	jsonOutput bool
	quiet      bool
	debug      bool
}

// Option configures a CLI.
type Option func(*CLI)

// WithRepository makes the CLI use repo instead of opening the configured
// database.
func WithRepository(repo storage.SnippetRepository) Option {
	return func(c *CLI) {
		c.repo = repo
	}
}

// WithLogger makes the CLI log to l instead of the configured log file.
func WithLogger(l *observability.Logger) Option {
	return func(c *CLI) {
		c.logger = l
	}
}

// WithOutput redirects standard output and standard error. Colour is
// disabled for redirected output.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *CLI) {
		c.stdout = stdout
		c.stderr = stderr
		c.errColor.DisableColor()
	}
}

// New creates a new CLI instance.
func New(opts ...Option) *CLI {
	cli := &CLI{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		errColor: color.New(color.FgRed, color.Bold),
	}
	for _, opt := range opts {
		opt(cli)
	}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

// Execute runs the CLI with the process arguments.
func (c *CLI) Execute(ctx context.Context) int {
	return c.Run(ctx, os.Args[1:])
}

// Run executes a single command and returns the process exit code.
func (c *CLI) Run(ctx context.Context, args []string) int {
	defer c.shutdown()

	// cobra falls back to os.Args for a nil slice
	if args == nil {
		args = []string{}
	}
	c.rootCmd.SetArgs(args)
	cmd, err := c.rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return ExitSuccess
	}

	var usage *cerrors.ErrUsage
	if stderrors.As(err, &usage) {
		c.errColor.Fprintf(c.stderr, "Error: %s\n", usage.Reason)
		fmt.Fprint(c.stderr, cmd.UsageString())
		return ExitUsage
	}

	if c.logger != nil {
		c.logger.Error("Command failed", "command", cmd.Name(), "error", err)
	}
	c.errColor.Fprintf(c.stderr, "snippets: %v\n", err)
	return cerrors.ExitCode(err)
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snippets",
		Short: "Store and retrieve snippets of text",
		Long: `snippets stores short named pieces of text in a database and gets them back.

Snippets are kept in a single 'snippets' table in PostgreSQL (the default),
SQLite or DuckDB. A snippet stored with --hide can still be fetched with 'get'
but never shows up in 'catalog' or 'search'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Args runs before PersistentPreRunE, so a bad invocation never
		// loads config or opens the log file.
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cerrors.NewUsage("a command is required")
			}
			return cerrors.NewUsage(fmt.Sprintf("unknown command %q", args[0]))
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.initConfig(); err != nil {
				return err
			}
			return c.initLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cerrors.NewUsage("a command is required")
		},
	}
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cerrors.NewUsage(err.Error())
	})

	// Global flags
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/snippets/config.yaml)")
	cmd.PersistentFlags().StringVar(&c.driver, "driver", "", "database driver: postgres, sqlite or duckdb")
	cmd.PersistentFlags().StringVar(&c.dsn, "dsn", "", "database connection string or file (overrides config)")
	cmd.PersistentFlags().StringVar(&c.logFile, "log-file", "", "diagnostic log file (default: snippets.log)")
	cmd.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "machine-readable JSON output")
	cmd.PersistentFlags().BoolVar(&c.quiet, "quiet", false, "suppress confirmation output")
	cmd.PersistentFlags().BoolVar(&c.debug, "debug", false, "print debug messages to stderr")

	cmd.AddCommand(c.newPutCmd())
	cmd.AddCommand(c.newGetCmd())
	cmd.AddCommand(c.newCatalogCmd())
	cmd.AddCommand(c.newSearchCmd())
	cmd.AddCommand(c.newInitCmd())
	cmd.AddCommand(c.newLoadCmd())
	cmd.AddCommand(c.newExportCmd())
	cmd.AddCommand(c.newDoctorCmd())
	cmd.AddCommand(c.newVersionCmd())

	return cmd
}

func (c *CLI) initConfig() error {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cerrors.NewConfigInvalid("config", err.Error())
	}
	c.cfg = cfg

	// Override with flags
	if c.driver != "" {
		c.cfg.Database.Driver = c.driver
	}
	if c.dsn != "" {
		c.cfg.Database.URL = c.dsn
	}
	if c.logFile != "" {
		c.cfg.Logging.File = c.logFile
	}

	return nil
}

func (c *CLI) initLogger() error {
	if c.logger != nil {
		return nil
	}
	logger, err := observability.OpenFile(c.cfg.Logging.File, observability.Options{
		Level:  c.cfg.Logging.Level,
		Format: observability.Format(c.cfg.Logging.Format),
	})
	if err != nil {
		return cerrors.NewConfigInvalid("logging", err.Error())
	}
	c.logger = logger
	c.closers = append(c.closers, logger.Close)
	return nil
}

// repository returns the snippet store, connecting on first use.
func (c *CLI) repository(ctx context.Context) (storage.SnippetRepository, error) {
	if c.repo != nil {
		return c.repo, nil
	}

	db := c.cfg.Database
	if err := db.EnsureDataDir(); err != nil {
		return nil, cerrors.NewConfigInvalid("database.path", err.Error())
	}
	c.debugf("Connecting to %s: %s\n", db.Driver, db.Redacted())

	repo, err := storage.Open(ctx, storage.Config{Driver: db.Driver, DSN: db.DSN()}, c.logger)
	if err != nil {
		return nil, err
	}
	c.repo = repo
	c.closers = append(c.closers, repo.Close)
	return repo, nil
}

// shutdown releases everything the CLI opened, newest first.
func (c *CLI) shutdown() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// positional validates that exactly the named positional arguments were
// given, reporting missing ones by name.
func positional(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		switch {
		case len(args) < len(names):
			return cerrors.NewUsage(fmt.Sprintf("the following arguments are required: %s",
				strings.Join(names[len(args):], ", ")))
		case len(args) > len(names):
			return cerrors.NewUsage(fmt.Sprintf("unrecognized arguments: %s",
				strings.Join(args[len(names):], " ")))
		}
		return nil
	}
}

// Helper functions for output

// printf writes confirmation output, suppressed by --quiet.
func (c *CLI) printf(format string, args ...interface{}) {
	if !c.quiet {
		fmt.Fprintf(c.stdout, format, args...)
	}
}

// println writes command results. Results are never suppressed.
func (c *CLI) println(args ...interface{}) {
	fmt.Fprintln(c.stdout, args...)
}

func (c *CLI) debugf(format string, args ...interface{}) {
	if c.debug {
		fmt.Fprintf(c.stderr, "[DEBUG] "+format, args...)
	}
}

func (c *CLI) outputJSON(v interface{}) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
