package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failures are
// logged as warnings.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("loading records", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, people int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("load failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("records loaded", "source", source, "people", people, "took", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, width, height float64, people int) {
	h.logger.Debug("layout started", "width", width, "height", height, "people", people)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, s LayoutStats, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("layout failed", "err", err)
		return
	}
	h.logger.Debug("layout complete", "circles", s.Circles, "badges", s.Badges,
		"overflow", s.Overflow, "compressed", s.Compressed, "took", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render started", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", formats, "err", err)
		return
	}
	h.logger.Debug("render complete", "formats", formats, "took", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "route", route, "status", status, "took", d)
}

func (h *LogHooks) OnError(_ context.Context, method, route string, err error) {
	h.logger.Error("handler failed", "method", method, "route", route, "err", err)
}

func (h *LogHooks) OnPersonHover(_ context.Context, personID string, x, y float64) {
	h.logger.Debug("person hovered", "person", personID, "x", x, "y", y)
}

func (h *LogHooks) OnPersonLeave(context.Context) {
	h.logger.Debug("hover ended")
}

func (h *LogHooks) OnPersonClick(_ context.Context, personID string) {
	h.logger.Info("person opened", "person", personID)
}

var (
	_ PipelineHooks    = (*LogHooks)(nil)
	_ CacheHooks       = (*LogHooks)(nil)
	_ HTTPHooks        = (*LogHooks)(nil)
	_ InteractionHooks = (*LogHooks)(nil)
)
