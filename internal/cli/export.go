package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	rosterio "github.com/matzehuels/peoplepack/pkg/io"
)

// exportCommand creates the export command, which writes the loaded records
// as a roster file.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [roster]",
		Short: "Write the records as a YAML, JSON or TOML roster",
		Long: `Write the records as a roster file.

Export reads from the given roster or the configured source and writes a
roster in the format named by the output extension. Generated ids are
written out, so the exported file lays out exactly like its source.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd.Context(), firstArg(args), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.yaml, .yml, .json or .toml)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, input, output string) error {
	if _, err := rosterio.FormatFor(output); err != nil {
		return err
	}
	src, err := c.openSource(ctx, input)
	if err != nil {
		return err
	}
	defer src.Close()

	prog := newProgress(c.Logger)
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("load %s: %w", src.Name(), err)
	}
	if err := rosterio.Export(snap, output); err != nil {
		return err
	}
	prog.snapshot(snap)
	prog.done("Exported")

	printSuccess("Export complete")
	printFile(output)
	return nil
}
