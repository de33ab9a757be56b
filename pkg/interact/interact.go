// Package interact holds the hover and click state of the visualization.
//
// Interaction is read-only with respect to layout: hovering a badge shows a
// tooltip and clicking it opens a detail view, but neither ever triggers a
// re-pack. The tooltip and detail contents are pure functions of the state
// and the record snapshot, so hosts (the HTTP server, the terminal explorer)
// can rebuild them on demand.
package interact

import (
	"context"
	"sync"

	"github.com/matzehuels/peoplepack/pkg/badge"
	"github.com/matzehuels/peoplepack/pkg/geom"
	"github.com/matzehuels/peoplepack/pkg/observability"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// Handlers are notified of user actions on person badges. Either may be nil.
//
// OnPersonHover receives the hovered person and the pointer position on
// every hover and move, and a nil person when the pointer leaves.
type Handlers struct {
	OnPersonHover func(p *roster.Person, pos geom.Point)
	OnPersonClick func(p *roster.Person)
}

// ObservedHandlers forwards hover and click events to the registered
// observability interaction hooks.
func ObservedHandlers(ctx context.Context) Handlers {
	return Handlers{
		OnPersonHover: func(p *roster.Person, pos geom.Point) {
			if p == nil {
				observability.Interaction().OnPersonLeave(ctx)
				return
			}
			observability.Interaction().OnPersonHover(ctx, p.ID, pos.X, pos.Y)
		},
		OnPersonClick: func(p *roster.Person) {
			observability.Interaction().OnPersonClick(ctx, p.ID)
		},
	}
}

// Status is a copy of the interaction state.
type Status struct {
	HoverID  string
	PointerX float64
	PointerY float64
	DetailID string
}

// State tracks the hovered and selected person. It is safe for concurrent use.
type State struct {
	mu       sync.Mutex
	hoverID  string
	x, y     float64
	detailID string
	viewport scene.Size
	marker   string
	snap     *roster.Snapshot
	handlers Handlers
}

// New returns an idle State for a viewport.
func New(viewport scene.Size, h Handlers) *State {
	return &State{viewport: viewport, handlers: h, marker: badge.DefaultMarker}
}

// SetMarker sets the status marker shown for flagged people.
func (s *State) SetMarker(m string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = m
}

// SetSnapshot sets the records used to resolve people passed to handlers.
func (s *State) SetSnapshot(snap *roster.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// person resolves id against the snapshot. Unknown ids yield a record with
// only the ID set. Callers hold mu.
func (s *State) person(id string) *roster.Person {
	if p, ok := s.snap.Person(id); ok {
		return p
	}
	return &roster.Person{ID: id}
}

// SetViewport updates the bounds used to clamp the tooltip.
func (s *State) SetViewport(v scene.Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = v
}

// Hover starts hovering personID with the pointer at (x, y). The handler
// fires only when the hovered person changes.
func (s *State) Hover(personID string, x, y float64) {
	s.mu.Lock()
	changed := s.hoverID != personID
	s.hoverID, s.x, s.y = personID, x, y
	fn, p := s.handlers.OnPersonHover, s.person(personID)
	s.mu.Unlock()

	if changed && fn != nil {
		fn(p, geom.Point{X: x, Y: y})
	}
}

// Move follows the pointer while a badge is hovered and reports the new
// position.
func (s *State) Move(x, y float64) {
	s.mu.Lock()
	if s.hoverID == "" {
		s.mu.Unlock()
		return
	}
	s.x, s.y = x, y
	fn, p := s.handlers.OnPersonHover, s.person(s.hoverID)
	s.mu.Unlock()

	if fn != nil {
		fn(p, geom.Point{X: x, Y: y})
	}
}

// Leave ends hovering and reports a nil person at the last pointer position.
func (s *State) Leave() {
	s.mu.Lock()
	was := s.hoverID
	s.hoverID = ""
	fn, pos := s.handlers.OnPersonHover, geom.Point{X: s.x, Y: s.y}
	s.mu.Unlock()

	if was != "" && fn != nil {
		fn(nil, pos)
	}
}

// Click opens the detail view for personID.
func (s *State) Click(personID string) {
	s.mu.Lock()
	s.detailID = personID
	fn, p := s.handlers.OnPersonClick, s.person(personID)
	s.mu.Unlock()

	if fn != nil {
		fn(p)
	}
}

// Close dismisses the detail view.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailID = ""
}

// Status returns a copy of the current state.
func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{HoverID: s.hoverID, PointerX: s.x, PointerY: s.y, DetailID: s.detailID}
}

// Tooltip returns the tooltip for the hovered person, or nil.
func (s *State) Tooltip(snap *roster.Snapshot) *Tooltip {
	s.mu.Lock()
	id, x, y, vp, marker := s.hoverID, s.x, s.y, s.viewport, s.marker
	s.mu.Unlock()
	if id == "" {
		return nil
	}
	return BuildTooltip(snap, id, x, y, vp, marker)
}

// Detail returns the detail view for the selected person, or nil.
func (s *State) Detail(snap *roster.Snapshot) *Detail {
	s.mu.Lock()
	id := s.detailID
	s.mu.Unlock()
	if id == "" {
		return nil
	}
	return BuildDetail(snap, id)
}

// HitTest returns the badge under (x, y). When badges of a person appear in
// several circles, the topmost (last drawn) one wins.
func HitTest(sc *scene.Scene, x, y float64) (scene.Badge, bool) {
	if sc == nil {
		return scene.Badge{}, false
	}
	p := geom.Point{X: x, Y: y}
	for i := len(sc.Badges) - 1; i >= 0; i-- {
		b := sc.Badges[i]
		if geom.Distance(p, geom.Point{X: b.AbsX, Y: b.AbsY}) <= b.R {
			return b, true
		}
	}
	return scene.Badge{}, false
}

// Pointer dispatches a pointer position: it hovers the badge under it or
// leaves when there is none.
func (s *State) Pointer(sc *scene.Scene, x, y float64) (scene.Badge, bool) {
	b, ok := HitTest(sc, x, y)
	if !ok {
		s.Leave()
		return b, false
	}
	if s.Status().HoverID == b.PersonID {
		s.Move(x, y)
	} else {
		s.Hover(b.PersonID, x, y)
	}
	return b, true
}
