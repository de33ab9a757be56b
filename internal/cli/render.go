package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/peoplepack/pkg/pipeline"
	"github.com/matzehuels/peoplepack/pkg/render/styles"
)

// renderCommand creates the render command, the shortcut from roster to image.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr  string
		output      string
		noCache     bool
		refresh     bool
		flags       layoutFlags
		style       string
		scale       float64
		interactive bool
		title       string
	)

	cmd := &cobra.Command{
		Use:   "render [roster]",
		Short: "Draw the circle-packing chart",
		Long: `Draw the circle-packing chart for a roster.

Every category becomes a circle sized by its member count (or by assigned
hours with --weight-by hours). Sub-categories nest inside their parent and
every person appears as a badge in each group they belong to.

With --interactive the SVG embeds person details and shows a tooltip on
hover and a detail panel on click.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			flags.apply(cmd, c, &opts)
			opts.Refresh = refresh
			opts.Formats = parseFormats(formatsStr)
			opts.Interactive = interactive
			opts.Title = title
			if cmd.Flags().Changed("style") {
				opts.Style = style
			}
			if cmd.Flags().Changed("scale") {
				opts.Scale = scale
			}
			return c.runRender(cmd.Context(), firstArg(args), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-read the source instead of using cached records")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&style, "style", "", "visual style: "+strings.Join(styles.Names(), ", "))
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultScale, "PNG pixel density")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "embed tooltips and detail panels in the SVG")
	cmd.Flags().StringVar(&title, "title", "", "chart title")
	flags.register(cmd)

	return cmd
}

// runRender runs the full pipeline and writes every requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	src, err := c.openSource(ctx, input)
	if err != nil {
		return err
	}
	defer src.Close()
	if src.roster != nil {
		opts.Refresh = true
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		base:      basePath(output, defaultOutput(input, src.Name(), "")),
		output:    output,
		stats:     &result.Stats,
		cacheHit:  result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit,
	})
}

// artifactWriteParams describes rendered outputs to write to disk.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	base      string
	output    string
	suffix    string
	stats     *pipeline.Stats
	cacheHit  bool
}

// writeArtifacts writes each artifact to <base><suffix>.<format>, or to the
// explicit output path when a single format was requested.
func writeArtifacts(p artifactWriteParams) error {
	formats := append([]string(nil), p.formats...)
	sort.Strings(formats)

	var written []string
	for _, format := range formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := p.base + p.suffix + "." + format
		if len(formats) == 1 && p.output != "" && filepath.Ext(p.output) != "" {
			path = p.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Rendered %s", plural(len(written), "file", "files"))
	for _, path := range written {
		printFile(path)
	}
	if p.stats != nil {
		printStats(*p.stats, p.cacheHit)
	}
	return nil
}

// basePath derives the base output path. A known format extension on output
// is stripped so that multiple formats can share it.
func basePath(output, fallback string) string {
	if output == "" {
		return fallback
	}
	ext := filepath.Ext(output)
	switch strings.TrimPrefix(ext, ".") {
	case pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON, pipeline.FormatDOT:
		return strings.TrimSuffix(output, ext)
	}
	return output
}
