package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (c *CLI) newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Return a catalog of all keywords",
		Long:  `List the names of all snippets that are not hidden, in ascending order.`,
		Args:  positional(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCatalog(cmd.Context())
		},
	}
}

func (c *CLI) runCatalog(ctx context.Context) error {
	repo, err := c.repository(ctx)
	if err != nil {
		return err
	}

	keywords, err := repo.Catalog(ctx)
	if err != nil {
		return err
	}

	if c.jsonOutput {
		return c.outputJSON(map[string]interface{}{
			"keywords": keywords,
			"count":    len(keywords),
		})
	}

	for _, keyword := range keywords {
		c.println(keyword)
	}
	return nil
}
