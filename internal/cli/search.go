package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (c *CLI) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <searchterm>",
		Short: "Search and return snippets",
		Long: `Print every snippet that is not hidden and whose text contains the search term.

The match is case-sensitive and the term is taken literally.`,
		Args: positional("searchterm"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runSearch(ctx context.Context, term string) error {
	repo, err := c.repository(ctx)
	if err != nil {
		return err
	}

	results, err := repo.Search(ctx, term)
	if err != nil {
		return err
	}

	if c.jsonOutput {
		return c.outputJSON(map[string]interface{}{
			"term":    term,
			"results": results,
			"count":   len(results),
		})
	}

	for _, s := range results {
		c.println(s.Keyword + " : " + s.Message)
	}
	return nil
}
