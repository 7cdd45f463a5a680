package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cerrors "github.com/canonica-labs/snippets/internal/errors"
	"github.com/canonica-labs/snippets/internal/storage"
)

// doctorTimeout bounds each backend check so a hung server cannot hang doctor.
const doctorTimeout = 5 * time.Second

func (c *CLI) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run system diagnostics",
		Long: `Run system diagnostics.

Checks:
  - configuration and driver
  - connectivity to the database
  - presence of the snippets table`,
		Args: positional(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDoctor(cmd.Context())
		},
	}
}

// DiagnosticCheck represents a single diagnostic check result.
type DiagnosticCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (c *CLI) runDoctor(ctx context.Context) error {
	checks := []DiagnosticCheck{c.checkConfig()}

	var firstErr error
	if checks[0].Passed {
		repo, err := c.repository(ctx)
		connCheck := c.checkConnectivity(ctx, repo, err)
		checks = append(checks, connCheck)
		if err == nil && connCheck.Passed {
			schemaCheck, schemaErr := c.checkSchema(ctx, repo)
			checks = append(checks, schemaCheck)
			firstErr = schemaErr
		} else if err != nil {
			firstErr = err
		} else {
			firstErr = cerrors.NewDatabaseUnavailable(c.cfg.Database.Driver, fmt.Errorf("%s", connCheck.Details))
		}
	} else {
		firstErr = cerrors.NewConfigInvalid("database.driver", checks[0].Message)
	}

	allPassed := firstErr == nil

	if c.jsonOutput {
		if err := c.outputJSON(map[string]interface{}{
			"checks":     checks,
			"all_passed": allPassed,
		}); err != nil {
			return err
		}
		return firstErr
	}

	c.println("Snippets Diagnostics")
	c.println("====================")
	c.println("")
	for _, check := range checks {
		c.printCheck(check)
	}
	c.println("")

	if allPassed {
		c.println("✓ All checks passed")
		return nil
	}
	c.println("✗ Some checks failed - see above for details")
	return firstErr
}

func (c *CLI) printCheck(check DiagnosticCheck) {
	status := "✗"
	if check.Passed {
		status = "✓"
	}
	c.println(fmt.Sprintf("%s %s: %s", status, check.Name, check.Message))
	if check.Details != "" && !check.Passed {
		c.println(fmt.Sprintf("  → %s", check.Details))
	}
}

func (c *CLI) checkConfig() DiagnosticCheck {
	check := DiagnosticCheck{Name: "Configuration"}

	if c.cfg == nil {
		check.Message = "No configuration loaded"
		return check
	}

	if _, err := storage.DialectFor(c.cfg.Database.Driver); err != nil {
		check.Message = fmt.Sprintf("Unsupported driver %q", c.cfg.Database.Driver)
		check.Details = "Set database.driver to postgres, sqlite or duckdb"
		return check
	}

	source := c.cfg.Source()
	if source == "" {
		source = "defaults and environment"
	}
	check.Passed = true
	check.Message = fmt.Sprintf("Driver %s (from %s)", c.cfg.Database.Driver, source)
	return check
}

func (c *CLI) checkConnectivity(ctx context.Context, repo storage.SnippetRepository, openErr error) DiagnosticCheck {
	check := DiagnosticCheck{Name: "Database Connectivity"}

	if openErr != nil {
		check.Message = "Cannot connect to database"
		check.Details = fmt.Sprintf("Error: %v", openErr)
		return check
	}

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()
	if err := repo.CheckConnectivity(ctx); err != nil {
		check.Message = "Cannot connect to database"
		check.Details = fmt.Sprintf("Error: %v", err)
		return check
	}

	check.Passed = true
	check.Message = fmt.Sprintf("Connected to %s", c.cfg.Database.Redacted())
	return check
}

func (c *CLI) checkSchema(ctx context.Context, repo storage.SnippetRepository) (DiagnosticCheck, error) {
	check := DiagnosticCheck{Name: "Snippets Table"}

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()
	keywords, err := repo.Catalog(ctx)
	if err != nil {
		check.Message = "Cannot read the snippets table"
		check.Details = "Run 'snippets init' to create it"
		return check, err
	}

	check.Passed = true
	check.Message = fmt.Sprintf("%d visible snippet(s)", len(keywords))
	return check, nil
}
