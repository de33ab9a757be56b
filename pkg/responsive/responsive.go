// Package responsive recomputes the scene when the container width or the
// underlying data changes.
//
// Resize events arrive faster than layouts complete. The controller keeps a
// single pending request: a new width replaces any width not yet consumed,
// so only the latest size is ever laid out. Layouts run on one worker
// goroutine started by [Controller.Run]; the published scene is swapped
// atomically and never mutated afterwards.
package responsive

import (
	"context"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/peoplepack/pkg/scene"
)

const (
	// DefaultMinHeight is the smallest container height.
	DefaultMinHeight = 800.0

	// DefaultAspectRatio is the container height per unit width.
	DefaultAspectRatio = 0.8
)

// ComputeFunc builds a scene for a container size.
type ComputeFunc func(ctx context.Context, size scene.Size) (*scene.Scene, error)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for recompute events.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMinHeight sets the minimum container height.
func WithMinHeight(h float64) Option {
	return func(c *Controller) {
		if h > 0 {
			c.minHeight = h
		}
	}
}

// WithAspectRatio sets the height-to-width ratio.
func WithAspectRatio(r float64) Option {
	return func(c *Controller) {
		if r > 0 {
			c.aspect = r
		}
	}
}

// request is one pending recompute.
type request struct {
	width float64
	force bool
}

// Controller owns the current scene and recomputes it on demand.
type Controller struct {
	compute   ComputeFunc
	logger    *log.Logger
	minHeight float64
	aspect    float64

	pending chan request
	current atomic.Pointer[scene.Scene]
	runs    atomic.Int64

	mu      sync.Mutex
	width   float64
	failed  float64 // width of the last run, if it failed
	subs    []chan *scene.Scene
	stopped bool
	lastErr error
}

// New returns a controller. Call Run to start processing.
func New(compute ComputeFunc, opts ...Option) *Controller {
	c := &Controller{
		compute:   compute,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		minHeight: DefaultMinHeight,
		aspect:    DefaultAspectRatio,
		pending:   make(chan request, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Height returns the container height for a width.
func (c *Controller) Height(width float64) float64 {
	return math.Max(c.minHeight, width*c.aspect)
}

// Size returns the container size for a width.
func (c *Controller) Size(width float64) scene.Size {
	return scene.Size{Width: width, Height: c.Height(width)}
}

// Resize requests a layout for a new width. Widths that are not positive
// and finite are ignored, as is the width already laid out or pending. A
// width whose layout failed is retried. It never blocks.
func (c *Controller) Resize(width float64) {
	if !(width > 0) || math.IsInf(width, 0) {
		return
	}
	c.mu.Lock()
	same := width == c.width && width != c.failed
	c.width = width
	c.failed = 0
	c.mu.Unlock()
	if same {
		return
	}
	c.push(request{width: width})
}

// Recompute requests a layout at the current width, for example after the
// records changed.
func (c *Controller) Recompute() {
	c.mu.Lock()
	w := c.width
	c.mu.Unlock()
	if w <= 0 {
		return
	}
	c.push(request{width: w, force: true})
}

// push replaces any unconsumed request with r.
func (c *Controller) push(r request) {
	for {
		select {
		case c.pending <- r:
			return
		default:
		}
		select {
		case old := <-c.pending:
			r.force = r.force || old.force
		default:
		}
	}
}

// Run processes requests until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	c.mu.Lock()
	c.stopped = false
	c.mu.Unlock()
	for {
		select {
		case <-ctx.Done():
			c.closeSubscribers()
			return ctx.Err()
		case r := <-c.pending:
			c.run(ctx, r)
		}
	}
}

func (c *Controller) run(ctx context.Context, r request) {
	size := c.Size(r.width)
	c.logger.Debug("recomputing scene", "width", size.Width, "height", size.Height, "forced", r.force)
	s, err := c.compute(ctx, size)
	if err == nil {
		c.current.Store(s)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	c.runs.Add(1)
	c.failed = 0

	if err != nil {
		c.failed = r.width
		c.logger.Warn("scene recompute failed", "width", size.Width, "err", err)
		return
	}
	// Sends never block; holding mu keeps Unsubscribe from closing a
	// channel mid-send.
	for _, ch := range c.subs {
		select {
		case ch <- s:
		default:
			// Drop the stale scene a slow subscriber has not read yet.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}

// Current returns the last published scene, or nil before the first layout.
func (c *Controller) Current() *scene.Scene { return c.current.Load() }

// Width returns the most recently requested width.
func (c *Controller) Width() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width
}

// Runs returns how many layouts have been computed.
func (c *Controller) Runs() int64 { return c.runs.Load() }

// Err returns the error of the most recent layout.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Subscribe returns a channel receiving each new scene. Only the latest
// scene is buffered. The channel is closed when Run returns, and comes back
// already closed once Run has returned.
func (c *Controller) Subscribe() <-chan *scene.Scene {
	ch := make(chan *scene.Scene, 1)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		close(ch)
		return ch
	}
	c.subs = append(c.subs, ch)
	return ch
}

// Unsubscribe stops delivery to a channel returned by Subscribe and closes it.
func (c *Controller) Unsubscribe(sub <-chan *scene.Scene) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, ch := range c.subs {
		if (<-chan *scene.Scene)(ch) == sub {
			close(ch)
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

func (c *Controller) closeSubscribers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
	c.stopped = true
}
