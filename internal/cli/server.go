package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/peoplepack/pkg/buildinfo"
	"github.com/matzehuels/peoplepack/pkg/errors"
	"github.com/matzehuels/peoplepack/pkg/interact"
	"github.com/matzehuels/peoplepack/pkg/observability"
	"github.com/matzehuels/peoplepack/pkg/pipeline"
	"github.com/matzehuels/peoplepack/pkg/responsive"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
	"github.com/matzehuels/peoplepack/pkg/source"
)

// server hosts the interactive chart. The responsive controller owns the
// current scene; the server owns the snapshot it was computed from.
type server struct {
	runner     *pipeline.Runner
	src        source.Source
	opts       pipeline.Options
	controller *responsive.Controller
	logger     *log.Logger

	snap  atomic.Pointer[roster.Snapshot]
	stale atomic.Bool
}

func newServer(runner *pipeline.Runner, src source.Source, opts pipeline.Options, logger *log.Logger, ctrlOpts ...responsive.Option) *server {
	s := &server{
		runner: runner,
		src:    src,
		opts:   opts,
		logger: logger,
	}
	s.stale.Store(true)
	s.controller = responsive.New(s.compute, append([]responsive.Option{responsive.WithLogger(logger)}, ctrlOpts...)...)
	return s
}

// compute lays out the snapshot for size, reloading records first when they
// are marked stale.
func (s *server) compute(ctx context.Context, size scene.Size) (*scene.Scene, error) {
	snap := s.snap.Load()
	if snap == nil || s.stale.Swap(false) {
		fresh, err := s.runner.Load(ctx, s.src, s.opts)
		if err != nil {
			s.stale.Store(true)
			return nil, err
		}
		snap = fresh
		s.snap.Store(snap)
	}
	opts := s.opts
	opts.Width, opts.Height = size.Width, size.Height
	return s.runner.Layout(ctx, snap, opts)
}

// reload marks the records stale and schedules a recompute at the current width.
func (s *server) reload() {
	s.stale.Store(true)
	s.controller.Recompute()
}

// =============================================================================
// Routing
// =============================================================================

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/scene.{format}", s.handleScene)
	r.Get("/orgchart.{format}", s.handleOrgChart)

	r.Route("/api", func(r chi.Router) {
		r.Post("/resize", s.handleResize)
		r.Get("/events", s.handleEvents)
		r.Get("/people/{id}", s.handlePerson)
		r.Get("/people/{id}/tooltip", s.handleTooltip)
	})
	return r
}

// instrument sets the Server header, attaches a request-scoped logger and
// reports each request to the HTTP hooks.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("Server", buildinfo.ServerHeader())

		ctx := withLogger(r.Context(), s.logger.With("request_id", middleware.GetReqID(r.Context())))
		hooks := observability.HTTP()
		hooks.OnRequest(ctx, r.Method, r.URL.Path)

		next.ServeHTTP(ww, r.WithContext(ctx))

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(ctx, r.Method, route, status, time.Since(start))
	})
}

// =============================================================================
// Handlers
// =============================================================================

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { margin: 0; font-family: system-ui, sans-serif; background: #fafafa; }
#chart svg { display: block; width: 100%; height: auto; }
</style>
</head>
<body>
<div id="chart"></div>
<script>
const chart = document.getElementById("chart");
let timer;
function resize() {
  clearTimeout(timer);
  timer = setTimeout(() => {
    fetch("/api/resize?width=" + Math.round(chart.clientWidth || window.innerWidth), {method: "POST"});
  }, {{.DebounceMS}});
}
async function redraw() {
  const res = await fetch("/scene.svg");
  if (res.ok) chart.innerHTML = await res.text();
  for (const s of chart.querySelectorAll("script")) {
    const run = document.createElement("script");
    run.textContent = s.textContent;
    s.replaceWith(run);
  }
}
new EventSource("/api/events").addEventListener("scene", redraw);
window.addEventListener("resize", resize);
resize();
</script>
</body>
</html>
`))

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	title := s.opts.Title
	if title == "" {
		title = appName
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, struct {
		Title      string
		DebounceMS int
	}{title, 150}); err != nil {
		loggerFromContext(r.Context()).Error("render index", "err", err)
	}
}

type healthResponse struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Ready   bool    `json:"ready"`
	Width   float64 `json:"width,omitempty"`
	People  int     `json:"people"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: buildinfo.Version}
	if sc := s.controller.Current(); sc != nil {
		resp.Ready = true
		resp.Width = sc.Width
	}
	if snap := s.snap.Load(); snap != nil {
		resp.People = len(snap.People)
	}
	writeJSON(w, http.StatusOK, resp)
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// handleScene renders the current scene. SVG and JSON carry person details.
func (s *server) handleScene(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := errors.ValidateFormat(format, pipeline.PackFormats); err != nil {
		s.writeError(w, r, err)
		return
	}
	sc, snap, err := s.current()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.opts
	opts.Width, opts.Height = sc.Width, sc.Height
	opts.Formats = []string{format}
	opts.Interactive = format == pipeline.FormatSVG || format == pipeline.FormatJSON
	s.writeArtifact(w, r, sc, snap, opts, format)
}

// handleOrgChart renders the hierarchy of the current records.
func (s *server) handleOrgChart(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := errors.ValidateFormat(format, pipeline.OrgChartFormats); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap := s.snap.Load()
	if snap == nil {
		s.writeError(w, r, errNotReady)
		return
	}

	opts := s.opts
	opts.View = pipeline.ViewOrgChart
	opts.Formats = []string{format}
	if v := r.URL.Query().Get("members"); v != "" {
		members, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "members must be a boolean"))
			return
		}
		opts.Members = members
	}
	s.writeArtifact(w, r, nil, snap, opts, format)
}

func (s *server) writeArtifact(w http.ResponseWriter, r *http.Request, sc *scene.Scene, snap *roster.Snapshot, opts pipeline.Options, format string) {
	artifacts, err := s.runner.Render(r.Context(), sc, snap, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

type resizeResponse struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// handleResize schedules a layout for a new container width. Only the
// latest pending width is laid out.
func (s *server) handleResize(w http.ResponseWriter, r *http.Request) {
	width, err := strconv.ParseFloat(r.URL.Query().Get("width"), 64)
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidSize, "width must be a number"))
		return
	}
	if err := errors.ValidateSize("width", width); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.controller.Resize(width)
	writeJSON(w, http.StatusAccepted, resizeResponse{Width: width, Height: s.controller.Height(width)})
}

type sceneEvent struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Circles int     `json:"circles"`
	Badges  int     `json:"badges"`
}

// handleEvents streams a "scene" event whenever a new scene is published.
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "streaming not supported"))
		return
	}
	sub := s.controller.Subscribe()
	defer s.controller.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if sc := s.controller.Current(); sc != nil {
		writeSceneEvent(w, sc)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case sc, ok := <-sub:
			if !ok {
				return
			}
			writeSceneEvent(w, sc)
			flusher.Flush()
		}
	}
}

func writeSceneEvent(w http.ResponseWriter, sc *scene.Scene) {
	data, _ := json.Marshal(sceneEvent{
		Width:   sc.Width,
		Height:  sc.Height,
		Circles: len(sc.Circles),
		Badges:  len(sc.Badges),
	})
	fmt.Fprintf(w, "event: scene\ndata: %s\n\n", data)
}

// handlePerson returns the click-through detail view.
func (s *server) handlePerson(w http.ResponseWriter, r *http.Request) {
	id, snap, err := s.person(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	observability.Interaction().OnPersonClick(r.Context(), id)
	writeJSON(w, http.StatusOK, interact.BuildDetail(snap, id))
}

// handleTooltip returns the hover summary placed next to the pointer at
// (x, y) and clamped to the current scene.
func (s *server) handleTooltip(w http.ResponseWriter, r *http.Request) {
	id, snap, err := s.person(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	x, errX := parseCoord(q.Get("x"))
	y, errY := parseCoord(q.Get("y"))
	if errX != nil || errY != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "x and y must be numbers"))
		return
	}

	observability.Interaction().OnPersonHover(r.Context(), id, x, y)
	var viewport scene.Size
	if sc := s.controller.Current(); sc != nil {
		viewport = scene.Size{Width: sc.Width, Height: sc.Height}
	}
	writeJSON(w, http.StatusOK, interact.BuildTooltip(snap, id, x, y, viewport, s.opts.Marker))
}

func parseCoord(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(v, 64)
}

// person resolves the {id} URL parameter against the current records.
func (s *server) person(r *http.Request) (string, *roster.Snapshot, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidatePersonID(id); err != nil {
		return "", nil, err
	}
	snap := s.snap.Load()
	if snap == nil {
		return "", nil, errNotReady
	}
	if _, ok := snap.Person(id); !ok {
		return "", nil, errors.New(errors.ErrCodeNotFound, "person %q not found", id)
	}
	return id, snap, nil
}

var errNotReady = errors.New(errors.ErrCodeSourceUnavailable, "scene not ready")

func (s *server) current() (*scene.Scene, *roster.Snapshot, error) {
	sc, snap := s.controller.Current(), s.snap.Load()
	if sc == nil || snap == nil {
		if err := s.controller.Err(); err != nil {
			return nil, nil, err
		}
		return nil, nil, errNotReady
	}
	return sc, snap, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	}
	loggerFromContext(r.Context()).Debug("request failed", "status", status, "err", err)
	writeJSON(w, status, errorResponse{Error: errorBody{Code: string(code), Message: errors.UserMessage(err)}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
