package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/peoplepack/pkg/pipeline"
)

// orgchartCommand creates the orgchart command, which draws the category
// hierarchy as a top-down Graphviz chart.
func (c *CLI) orgchartCommand() *cobra.Command {
	var (
		formatsStr  string
		output      string
		noCache     bool
		members     bool
		catchAll    string
		subCatchAll string
	)

	cmd := &cobra.Command{
		Use:   "orgchart [roster]",
		Short: "Draw the category hierarchy as an org chart",
		Long: `Draw the category hierarchy as an org chart.

The org chart shows the same grouping as the circle-packing chart, laid out
by Graphviz as a tree. With --members every leaf group lists its people.
The dot format writes the Graphviz source.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			opts.View = pipeline.ViewOrgChart
			opts.Formats = parseFormats(formatsStr)
			opts.Members = members
			if cmd.Flags().Changed("catch-all") {
				opts.CatchAll = catchAll
			}
			if cmd.Flags().Changed("sub-catch-all") {
				opts.SubCatchAll = subCatchAll
			}
			return c.runOrgChart(cmd.Context(), firstArg(args), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().BoolVar(&members, "members", false, "list people under each leaf group")
	cmd.Flags().StringVar(&catchAll, "catch-all", "", "bucket for people without a category")
	cmd.Flags().StringVar(&subCatchAll, "sub-catch-all", "", "bucket for members without a sub-category")

	return cmd
}

func (c *CLI) runOrgChart(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	src, err := c.openSource(ctx, input)
	if err != nil {
		return err
	}
	defer src.Close()
	opts.Refresh = src.roster != nil

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	snap, err := runner.Load(ctx, src, opts)
	if err != nil {
		return err
	}
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, nil, snap, opts)
	if err != nil {
		return err
	}
	prog.snapshot(snap)
	prog.done("Drew org chart for")

	suffix := ""
	if output == "" {
		suffix = ".orgchart"
	}
	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		base:      basePath(output, defaultOutput(input, src.Name(), "")),
		output:    output,
		suffix:    suffix,
		cacheHit:  hit,
	})
}
