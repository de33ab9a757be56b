package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/peoplepack/pkg/pipeline"
	"github.com/matzehuels/peoplepack/pkg/render/sink"
)

// layoutCommand creates the layout command for computing the scene.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [roster]",
		Short: "Compute the circle layout and write it as JSON",
		Long: `Compute the circle layout for a roster.

The layout command groups people by category, packs the groups into nested
circles and places a badge for every membership. The result is the scene
JSON (same format as 'render -f json') with absolute coordinates for every
circle, label and badge.

Without a roster argument the source configured in the config file is used.
Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			flags.apply(cmd, c, &opts)
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), firstArg(args), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <roster>.scene.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-read the source instead of using cached records")
	flags.register(cmd)

	return cmd
}

// runLayout loads the roster, computes the scene, and writes it out.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
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

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Loading records...")
	spinner.Start()

	snap, loadHit, err := runner.LoadWithCacheInfo(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return err
	}
	spinner.SetMessage(fmt.Sprintf("Packing %s...", plural(len(snap.People), "person", "people")))
	sc, layoutHit, err := runner.LayoutWithCacheInfo(ctx, snap, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.snapshot(snap)
	prog.scene(sc)
	prog.done("Packed")

	data, err := sink.RenderJSON(sc, sink.WithJSONStyle(opts.Style))
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}

	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if output == "" {
		output = defaultOutput(input, src.Name(), ".scene.json")
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(pipeline.Stats{
		People:   len(snap.People),
		Circles:  len(sc.Circles),
		Badges:   len(sc.Badges),
		Overflow: len(sc.Overflow),
	}, loadHit && layoutHit)
	printNewline()
	printNextStep("Render", appName+" render -f svg,png")

	return nil
}

// defaultOutput derives an output path from the roster file, or from the
// source name for non-file sources.
func defaultOutput(input, sourceName, suffix string) string {
	base := input
	if base == "" {
		base = sourceName
	}
	base = sanitizeFileName(strings.TrimSuffix(filepath.Base(base), filepath.Ext(base)))
	if input != "" {
		base = filepath.Join(filepath.Dir(input), base)
	}
	return base + suffix
}

// sanitizeFileName replaces characters that do not belong in a file name,
// such as the colon in "mongo:org".
func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, s)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
