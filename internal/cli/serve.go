package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/peoplepack/pkg/errors"
	"github.com/matzehuels/peoplepack/pkg/pipeline"
	"github.com/matzehuels/peoplepack/pkg/responsive"
)

const shutdownTimeout = 5 * time.Second

// serveCommand creates the serve command, which hosts the interactive chart.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		watch   bool
		noCache bool
		title   string
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [roster]",
		Short: "Serve the interactive chart over HTTP",
		Long: `Serve the interactive chart over HTTP.

The page reports its width to the server, which lays the chart out again for
every new size. Rapid resizes are coalesced: only the latest width is packed.
With --watch the roster file is re-read whenever it changes.

Endpoints:
  GET  /                       chart page
  GET  /scene.{svg,png,pdf,json}
  GET  /orgchart.{svg,png,pdf,dot}
  POST /api/resize?width=W
  GET  /api/events             server-sent "scene" events
  GET  /api/people/{id}        detail view
  GET  /api/people/{id}/tooltip?x=&y=
  GET  /healthz`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			flags.apply(cmd, c, &opts)
			opts.Title = title
			set := cmd.Flags().Changed
			if !set("addr") {
				addr = c.Config.Serve.Addr
			}
			width := flags.width
			if !set("width") {
				width = c.Config.Serve.Width
			}
			if !set("watch") {
				watch = c.Config.Serve.Watch
			}
			return c.runServe(cmd.Context(), firstArg(args), opts, addr, width, watch, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-read the roster file when it changes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&title, "title", "", "page and chart title")
	flags.register(cmd)
	cmd.Flags().Lookup("width").Usage = "width laid out before the page reports its own"

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string, opts pipeline.Options, addr string, width float64, watch, noCache bool) error {
	src, err := c.openSource(ctx, input)
	if err != nil {
		return err
	}
	defer src.Close()
	if watch && src.roster == nil {
		return errors.New(errors.ErrCodeUnsupported, "--watch needs a roster file")
	}
	// A file may change between layouts; other sources are reloaded on demand.
	opts.Refresh = src.roster != nil

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := newServer(runner, src, opts, c.Logger,
		responsive.WithMinHeight(c.Config.Layout.MinHeight),
		responsive.WithAspectRatio(c.Config.Layout.AspectRatio))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ignoreCanceled(srv.controller.Run(gctx))
	})
	if watch {
		g.Go(func() error {
			return ignoreCanceled(src.roster.Watch(gctx, srv.reload))
		})
	}
	g.Go(func() error {
		c.Logger.Info("serving chart", "addr", "http://"+addr, "source", src.Name(), "watch", watch)
		if err := httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	srv.controller.Resize(width)
	return g.Wait()
}

func ignoreCanceled(err error) error {
	if stderrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
