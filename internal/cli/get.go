package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/canonica-labs/snippets/internal/snippets"
)

func (c *CLI) newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Retrieve a snippet",
		Long: `Retrieve the snippet stored under a name.

Hidden snippets are returned too. A name that was never stored prints
'404: Snippet Not Found' and still exits 0.`,
		Args: positional("name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGet(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runGet(ctx context.Context, name string) error {
	repo, err := c.repository(ctx)
	if err != nil {
		return err
	}

	snippet, found, err := repo.Get(ctx, name)
	if err != nil {
		return err
	}

	if c.jsonOutput {
		out := map[string]interface{}{"found": found, "keyword": name}
		if found {
			out["snippet"] = snippet
		}
		return c.outputJSON(out)
	}

	message := snippet.Message
	if !found {
		message = snippets.NotFoundMessage
	}
	c.println("Retrieved snippet: " + quote(message))
	return nil
}
