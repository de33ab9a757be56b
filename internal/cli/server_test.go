package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/peoplepack/pkg/interact"
	"github.com/matzehuels/peoplepack/pkg/observability"
	"github.com/matzehuels/peoplepack/pkg/pipeline"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// swapSource serves whatever snapshot was stored last.
type swapSource struct {
	mu   sync.Mutex
	data *roster.Snapshot
}

func (s *swapSource) Snapshot(context.Context) (*roster.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, nil
}

func (s *swapSource) Name() string { return "swap" }

func (s *swapSource) set(snap *roster.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = snap
}

func teamSnapshot() *roster.Snapshot {
	return &roster.Snapshot{
		Categories: []roster.Category{{Name: "Eng"}, {Name: "Ops"}},
		Skills:     []*roster.Skill{{ID: "go", Name: "Go"}},
		People: []*roster.Person{
			{ID: "1", Name: "Ada Lovelace", Title: "Engineer", Categories: []string{"Eng"}, SkillIDs: []string{"go"}, Flagged: true},
			{ID: "2", Name: "Grace Hopper", Categories: []string{"Eng", "Ops"}},
		},
		Targets:     []*roster.Target{{ID: "t", Name: "Compiler"}},
		Roles:       []*roster.Role{{ID: "r", Name: "Lead"}},
		Assignments: []*roster.Assignment{{PersonID: "1", TargetID: "t", RoleID: "r", Hours: 12}},
	}
}

type testServer struct {
	*server
	src  *swapSource
	http *httptest.Server
	sub  <-chan *scene.Scene
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	src := &swapSource{data: teamSnapshot()}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	srv := newServer(runner, src, pipeline.Options{Refresh: true, Marker: "★"}, logger)

	ts := &testServer{server: srv, src: src, sub: srv.controller.Subscribe()}
	ts.http = httptest.NewServer(srv.routes())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = srv.controller.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		ts.http.Close()
		cancel()
		<-done
	})
	return ts
}

// await waits for the next published scene.
func (ts *testServer) await(t *testing.T) *scene.Scene {
	t.Helper()
	select {
	case sc := <-ts.sub:
		return sc
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for scene")
		return nil
	}
}

func (ts *testServer) ready(t *testing.T, width float64) *scene.Scene {
	t.Helper()
	ts.controller.Resize(width)
	return ts.await(t)
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func errorCode(t *testing.T, body string) string {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal([]byte(body), &e); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return e.Error.Code
}

func TestServerNotReady(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts.http.URL+"/scene.svg")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	if code := errorCode(t, body); code != "SOURCE_UNAVAILABLE" {
		t.Errorf("code = %s", code)
	}

	resp, body = get(t, ts.http.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"ready":false`) {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}
}

func TestServerScene(t *testing.T) {
	ts := newTestServer(t)
	ts.ready(t, 1000)

	resp, body := get(t, ts.http.URL+"/scene.svg")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(resp.Header.Get("Server"), "peoplepack/") {
		t.Errorf("Server = %q", resp.Header.Get("Server"))
	}
	if !strings.Contains(body, "<svg") || !strings.Contains(body, "Ada Lovelace") {
		t.Error("interactive svg should embed person details")
	}

	resp, body = get(t, ts.http.URL+"/scene.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("json status = %d", resp.StatusCode)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(body), &decoded); err != nil {
		t.Errorf("scene json: %v", err)
	}
	if decoded["width"] != 1000.0 {
		t.Errorf("width = %v, want 1000", decoded["width"])
	}

	resp, body = get(t, ts.http.URL+"/scene.gif")
	if resp.StatusCode != http.StatusBadRequest || errorCode(t, body) != "INVALID_FORMAT" {
		t.Errorf("gif = %d %s", resp.StatusCode, body)
	}
}

func TestServerOrgChart(t *testing.T) {
	ts := newTestServer(t)
	ts.ready(t, 1000)

	resp, body := get(t, ts.http.URL+"/orgchart.dot?members=true")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	for _, want := range []string{"digraph", "Grace Hopper"} {
		if !strings.Contains(body, want) {
			t.Errorf("dot missing %q", want)
		}
	}

	resp, _ = get(t, ts.http.URL+"/orgchart.dot?members=maybe")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad members flag status = %d", resp.StatusCode)
	}
	resp, _ = get(t, ts.http.URL+"/orgchart.json")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("json org chart status = %d", resp.StatusCode)
	}
}

func TestServerResize(t *testing.T) {
	ts := newTestServer(t)
	ts.ready(t, 1000)

	tests := []struct {
		query  string
		status int
	}{
		{"width=abc", http.StatusBadRequest},
		{"width=-10", http.StatusBadRequest},
		{"width=1e9", http.StatusBadRequest},
		{"", http.StatusBadRequest},
		{"width=1500", http.StatusAccepted},
	}
	for _, tt := range tests {
		resp, err := http.Post(ts.http.URL+"/api/resize?"+tt.query, "", nil)
		if err != nil {
			t.Fatal(err)
		}
		var body resizeResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if resp.StatusCode != tt.status {
			t.Errorf("resize?%s status = %d, want %d", tt.query, resp.StatusCode, tt.status)
		}
		if tt.status == http.StatusAccepted && (body.Width != 1500 || body.Height != 1200) {
			t.Errorf("resize response = %+v", body)
		}
	}

	sc := ts.await(t)
	if sc.Width != 1500 || sc.Height != 1200 {
		t.Errorf("scene = %vx%v, want 1500x1200", sc.Width, sc.Height)
	}
}

func TestServerPeople(t *testing.T) {
	rec := &interactionRecorder{}
	observability.SetInteractionHooks(rec)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	ts.ready(t, 1000)

	resp, body := get(t, ts.http.URL+"/api/people/1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var d interact.Detail
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		t.Fatal(err)
	}
	if d.Name != "Ada Lovelace" || d.TotalHours != 12 || len(d.Rows) != 1 {
		t.Errorf("detail = %+v", d)
	}

	resp, body = get(t, ts.http.URL+"/api/people/1/tooltip?x=990&y=10")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tooltip status = %d: %s", resp.StatusCode, body)
	}
	var tt interact.Tooltip
	if err := json.Unmarshal([]byte(body), &tt); err != nil {
		t.Fatal(err)
	}
	if tt.Marker != "★" || len(tt.Skills) != 1 || tt.Skills[0].Name != "Go" {
		t.Errorf("tooltip = %+v", tt)
	}
	if tt.X+tt.Width > 1000 {
		t.Errorf("tooltip overflows the scene: x=%v width=%v", tt.X, tt.Width)
	}
	if diff := cmp.Diff([]string{"click 1", "hover 1 990,10"}, rec.Events()); diff != "" {
		t.Errorf("interaction events mismatch (-want +got):\n%s", diff)
	}

	resp, body = get(t, ts.http.URL+"/api/people/404")
	if resp.StatusCode != http.StatusNotFound || errorCode(t, body) != "NOT_FOUND" {
		t.Errorf("missing person = %d %s", resp.StatusCode, body)
	}
	resp, _ = get(t, ts.http.URL+"/api/people/1/tooltip?x=left")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad coordinate status = %d", resp.StatusCode)
	}
}

func TestServerReload(t *testing.T) {
	ts := newTestServer(t)
	ts.ready(t, 1000)

	next := teamSnapshot()
	next.People = append(next.People, &roster.Person{ID: "3", Name: "Linus", Categories: []string{"Ops"}})
	ts.src.set(next)
	ts.reload()

	sc := ts.await(t)
	if got := sc.PersonCount(); got != 3 {
		t.Errorf("people after reload = %d, want 3", got)
	}
	if resp, _ := get(t, ts.http.URL+"/api/people/3"); resp.StatusCode != http.StatusOK {
		t.Errorf("new person status = %d", resp.StatusCode)
	}
}

func TestServerEvents(t *testing.T) {
	ts := newTestServer(t)
	ts.ready(t, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.http.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	buf := make([]byte, 512)
	n, err := resp.Body.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	first := string(buf[:n])
	if !strings.HasPrefix(first, "event: scene\n") || !strings.Contains(first, `"width":1000`) {
		t.Errorf("first event = %q", first)
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	routes []string
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func TestServerReportsRoutePatterns(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	ts.ready(t, 1000)
	get(t, ts.http.URL+"/api/people/2")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) == 0 || hooks.routes[len(hooks.routes)-1] != "GET /api/people/{id}" {
		t.Errorf("routes = %v", hooks.routes)
	}
}
