package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/canonica-labs/snippets/internal/bootstrap"
	"github.com/canonica-labs/snippets/internal/snippets"
)

func (c *CLI) newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.yaml>",
		Short: "Store every snippet in a YAML bundle",
		Long: `Store or update every snippet listed in a YAML bundle file.

The whole file is validated before anything is stored: every entry needs a
keyword and no keyword may appear twice.

Example file:
  snippets:
    - keyword: shovel
      message: Buy a shovel.
    - keyword: pin
      message: "1234"
      hidden: true`,
		Args: positional("file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLoad(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runLoad(ctx context.Context, path string) error {
	bundle, err := bootstrap.LoadBundle(path)
	if err != nil {
		return err
	}
	c.debugf("Bundle valid: %d snippets\n", len(bundle.Snippets))

	repo, err := c.repository(ctx)
	if err != nil {
		return err
	}

	var stored []snippets.Snippet
	err = bundle.Apply(ctx, repo, func(s snippets.Snippet) {
		stored = append(stored, s)
		if !c.jsonOutput {
			c.printf("Stored %s as %s\n", quote(s.Message), quote(s.Keyword))
		}
	})
	if err != nil {
		return err
	}

	c.logger.Info("Loaded snippet bundle", "file", path, "count", len(stored))

	if c.jsonOutput {
		return c.outputJSON(map[string]interface{}{
			"status": "loaded",
			"file":   path,
			"count":  len(stored),
		})
	}
	return nil
}
