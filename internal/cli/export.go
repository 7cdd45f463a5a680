package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/canonica-labs/snippets/internal/bootstrap"
)

func (c *CLI) newExportCmd() *cobra.Command {
	var includeHidden bool
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write snippets as a YAML bundle",
		Long: `Write snippets as a YAML bundle that 'snippets load' accepts.

Hidden snippets are left out unless --include-hidden is given.`,
		Args: positional(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), includeHidden, output)
		},
	}
	cmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "include hidden snippets")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, includeHidden bool, output string) error {
	repo, err := c.repository(ctx)
	if err != nil {
		return err
	}

	items, err := repo.List(ctx, includeHidden)
	if err != nil {
		return err
	}
	bundle := bootstrap.NewBundle(items)

	if output == "" {
		if c.jsonOutput {
			return c.outputJSON(bundle)
		}
		return bundle.Write(c.stdout)
	}

	if err := bundle.Save(output); err != nil {
		return err
	}
	c.printf("✓ Exported %d snippets to %s\n", len(items), output)
	return nil
}
