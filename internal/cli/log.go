// Package cli implements the peoplepack command-line interface.
//
// The commands read a roster (a YAML, TOML or JSON file, or a MongoDB
// database), pack it into nested category circles and write or serve the
// result. The CLI is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - layout: Compute the scene and write it as JSON
//   - render: Draw the circle-packing chart as SVG, PNG, PDF or JSON
//   - orgchart: Draw the category hierarchy as a Graphviz chart
//   - serve: Host the interactive chart and recompute it on resize
//   - explore: Browse the chart in the terminal
//   - cache, config: Inspect local state
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The HTTP host
// attaches a request-scoped logger to each request context.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// logTimeFormat prints wall-clock time with hundredths, e.g. "14:32:01.45".
const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// progress times a command and summarizes what it produced: the people and
// categories of the snapshot it read and the circles of the scene it laid
// out, if any.
type progress struct {
	logger *log.Logger
	start  time.Time

	people     int
	categories int
	circles    int
	overflow   int
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// snapshot records the size of the loaded records.
func (p *progress) snapshot(s *roster.Snapshot) {
	if s == nil {
		return
	}
	p.people, p.categories = len(s.People), len(s.Categories)
}

// scene records the size of a computed layout.
func (p *progress) scene(sc *scene.Scene) {
	if sc == nil {
		return
	}
	p.circles, p.overflow = len(sc.Circles), len(sc.Overflow)
}

// summary reads "42 people in 9 circles", naming categories instead when
// no scene was recorded.
func (p *progress) summary() string {
	var b strings.Builder
	b.WriteString(plural(p.people, "person", "people"))
	switch {
	case p.circles > 0:
		fmt.Fprintf(&b, " in %s", plural(p.circles, "circle", "circles"))
	case p.categories > 0:
		fmt.Fprintf(&b, " across %s", plural(p.categories, "category", "categories"))
	}
	return b.String()
}

// done logs "<verb> <summary> (<elapsed>)" at info level, with a warning
// when badges overflowed their circles.
func (p *progress) done(verb string) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Info(fmt.Sprintf("%s %s (%s)", verb, p.summary(), elapsed),
		"people", p.people, "circles", p.circles)
	if p.overflow > 0 {
		p.logger.Warn("badges overflow their circles", "circles", p.overflow)
	}
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches a request-scoped logger to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
