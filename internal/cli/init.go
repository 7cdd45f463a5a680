package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (c *CLI) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the snippets table",
		Long: `Create the snippets table in the configured database if it does not exist.

Running init again is safe: existing snippets are left untouched.`,
		Args: positional(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInit(cmd.Context())
		},
	}
}

func (c *CLI) runInit(ctx context.Context) error {
	repo, err := c.repository(ctx)
	if err != nil {
		return err
	}

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	if c.jsonOutput {
		return c.outputJSON(map[string]interface{}{
			"status": "ready",
			"driver": c.cfg.Database.Driver,
		})
	}

	c.printf("✓ Snippets table ready (%s)\n", c.cfg.Database.Driver)
	return nil
}
