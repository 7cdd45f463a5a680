package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (c *CLI) newPutCmd() *cobra.Command {
	var hide bool

	cmd := &cobra.Command{
		Use:   "put <name> <snippet>",
		Short: "Store a snippet",
		Long: `Store a snippet under a name.

Storing under a name that already exists replaces its text and its hidden flag.`,
		Args: positional("name", "snippet"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPut(cmd.Context(), args[0], args[1], hide)
		},
	}
	cmd.Flags().BoolVar(&hide, "hide", false, "hide the snippet from catalog and search")

	return cmd
}

func (c *CLI) runPut(ctx context.Context, name, snippet string, hide bool) error {
	repo, err := c.repository(ctx)
	if err != nil {
		return err
	}

	stored, err := repo.Put(ctx, name, snippet, hide)
	if err != nil {
		return err
	}

	if c.jsonOutput {
		return c.outputJSON(map[string]interface{}{
			"status":  "stored",
			"snippet": stored,
		})
	}

	c.printf("Stored %s as %s\n", quote(stored.Message), quote(stored.Keyword))
	return nil
}
