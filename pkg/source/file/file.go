// Package file reads roster snapshots from a local file and reports edits
// to it.
package file

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/peoplepack/pkg/errors"
	rosterio "github.com/matzehuels/peoplepack/pkg/io"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/source"
)

// DefaultDebounce groups the burst of events editors emit for one save.
const DefaultDebounce = 150 * time.Millisecond

// Source reads a roster file on every Snapshot call.
type Source struct {
	path     string
	logger   *log.Logger
	debounce time.Duration
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger for watch events.
func WithLogger(l *log.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDebounce sets how long Watch waits for further events before
// reporting a change.
func WithDebounce(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// New returns a source for the roster file at path.
func New(path string, opts ...Option) (*Source, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	if _, err := rosterio.FormatFor(path); err != nil {
		return nil, err
	}
	s := &Source{
		path:     path,
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		debounce: DefaultDebounce,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Path returns the file path.
func (s *Source) Path() string { return s.path }

// Name returns the file path.
func (s *Source) Name() string { return s.path }

// Snapshot reads and decodes the file.
func (s *Source) Snapshot(ctx context.Context) (*roster.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rosterio.Import(s.path)
}

// Watch calls onChange after the file is written, created or replaced,
// until ctx is cancelled. It watches the parent directory so that editors
// which save by renaming a temporary file are noticed.
func (s *Source) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer w.Close()

	abs, err := filepath.Abs(s.path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(errors.ErrCodeSourceUnavailable, err, "watch %s", filepath.Dir(abs))
	}
	s.logger.Debug("watching roster file", "path", abs)

	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			s.logger.Debug("roster file event", "op", ev.Op.String())
			timer.Reset(s.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "err", err)
		case <-timer.C:
			s.logger.Info("roster file changed", "path", s.path)
			onChange()
		}
	}
}

var _ source.Source = (*Source)(nil)
