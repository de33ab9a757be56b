// Package cli implements the peoplepack command-line interface.
package cli

import (
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/peoplepack/pkg/buildinfo"
	"github.com/matzehuels/peoplepack/pkg/cache"
	"github.com/matzehuels/peoplepack/pkg/config"
	"github.com/matzehuels/peoplepack/pkg/errors"
	"github.com/matzehuels/peoplepack/pkg/label"
	"github.com/matzehuels/peoplepack/pkg/observability"
	"github.com/matzehuels/peoplepack/pkg/pipeline"
	"github.com/matzehuels/peoplepack/pkg/source"
	"github.com/matzehuels/peoplepack/pkg/source/file"
	"github.com/matzehuels/peoplepack/pkg/source/mongo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "peoplepack"

	sourceAttempts   = 3
	sourceRetryDelay = time.Second
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config *config.Config

	configPath string

	measurerOnce sync.Once
	measurer     label.Measurer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "peoplepack draws people as badges inside nested category circles",
		Long: `peoplepack lays out a roster of people as a circle-packing chart: every
category is a circle sized by its weight, sub-categories nest inside their
parent, and each person appears as a badge in every group they belong to.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.orgchartCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and registers log-backed hooks.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	observability.SetInteractionHooks(hooks)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if p := c.Config.Cache.Prefix; p != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), p)
	}
	return pipeline.NewRunner(cc, keyer, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Kind {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisAddr)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", c.Config.Cache.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Sources
// =============================================================================

// openedSource is a record source together with its cleanup.
type openedSource struct {
	source.Source

	// roster is set when records come from a file.
	roster *file.Source
	close  func()
}

// Close releases the source.
func (s *openedSource) Close() {
	if s.close != nil {
		s.close()
	}
}

// openSource opens the roster file at path, or the configured source when
// path is empty.
func (c *CLI) openSource(ctx context.Context, path string) (*openedSource, error) {
	cfg := c.Config.Source
	if path == "" && cfg.Kind == config.SourceMongo {
		src, err := mongo.Connect(ctx, cfg.MongoURI, cfg.Database,
			mongo.WithLogger(c.Logger),
			mongo.WithTimeout(cfg.Timeout))
		if err != nil {
			return nil, err
		}
		return &openedSource{
			Source: source.WithRetry(src, sourceAttempts, sourceRetryDelay),
			close:  func() { _ = src.Close(context.Background()) },
		}, nil
	}

	if path == "" {
		path = cfg.Path
	}
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no roster file given (pass a path or set source.path in %s)", config.Path())
	}
	src, err := file.New(path, file.WithLogger(c.Logger))
	if err != nil {
		return nil, err
	}
	return &openedSource{Source: src, roster: src}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/peoplepack/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/peoplepack/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions returns pipeline options filled from the config.
func (c *CLI) pipelineOptions() pipeline.Options {
	cfg := c.Config
	return pipeline.Options{
		Margin:      cfg.Layout.Margin,
		Padding:     cfg.Layout.Padding,
		WeightBy:    cfg.Layout.WeightBy,
		CatchAll:    cfg.Layout.CatchAll,
		SubCatchAll: cfg.Layout.SubCatchAll,
		Marker:      cfg.Render.Marker,
		Style:       cfg.Render.Style,
		Scale:       cfg.Render.Scale,
		Logger:      c.Logger,
		Measurer:    c.textMeasurer(),
	}
}

// height returns the container height for width under the configured
// aspect ratio and minimum height.
func (c *CLI) height(width float64) float64 {
	return math.Max(c.Config.Layout.MinHeight, width*c.Config.Layout.AspectRatio)
}

// textMeasurer returns the Go Regular font measurer, or the fixed-width
// approximation when the font cannot be parsed.
func (c *CLI) textMeasurer() label.Measurer {
	c.measurerOnce.Do(func() {
		m, err := label.NewFontMeasurer()
		if err != nil {
			c.Logger.Debug("font measurer unavailable", "err", err)
			c.measurer = label.FixedMeasurer{}
			return
		}
		c.measurer = m
	})
	return c.measurer
}

// layoutFlags are the layout flags shared by the rendering commands.
type layoutFlags struct {
	width       float64
	height      float64
	margin      float64
	weightBy    string
	catchAll    string
	subCatchAll string
	marker      string
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "container width")
	cmd.Flags().Float64Var(&f.height, "height", 0, "container height (default: from width and aspect ratio)")
	cmd.Flags().Float64Var(&f.margin, "margin", 0, "gap between the outer circle and the container edge")
	cmd.Flags().StringVar(&f.weightBy, "weight-by", "", "circle weighting: members, hours")
	cmd.Flags().StringVar(&f.catchAll, "catch-all", "", "bucket for people without a category")
	cmd.Flags().StringVar(&f.subCatchAll, "sub-catch-all", "", "bucket for members without a sub-category")
	cmd.Flags().StringVar(&f.marker, "marker", "", "status marker shown on flagged people")
}

// apply overrides config-derived options with the flags the user set.
func (f *layoutFlags) apply(cmd *cobra.Command, c *CLI, opts *pipeline.Options) {
	set := cmd.Flags().Changed
	opts.Width = f.width
	opts.Height = f.height
	if !set("height") {
		opts.Height = c.height(f.width)
	}
	if set("margin") {
		opts.Margin = f.margin
	}
	if set("weight-by") {
		opts.WeightBy = f.weightBy
	}
	if set("catch-all") {
		opts.CatchAll = f.catchAll
	}
	if set("sub-catch-all") {
		opts.SubCatchAll = f.subCatchAll
	}
	if set("marker") {
		opts.Marker = f.marker
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
