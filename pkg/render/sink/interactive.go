package sink

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/peoplepack/pkg/badge"
	"github.com/matzehuels/peoplepack/pkg/interact"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

const interactionCSS = `
    .badge { cursor: pointer; }
    .badge:hover .badge-glyph { stroke: #111827; stroke-width: 2; }
    #pp-tooltip, #pp-detail { pointer-events: none; font-family: Go, Helvetica, Arial, sans-serif; font-size: 12px; }
    #pp-detail { pointer-events: all; cursor: pointer; }
    .pp-box { fill: #ffffff; stroke: #d1d5db; rx: 6; }
    .pp-head { font-weight: 600; font-size: 13px; }
    .pp-muted { fill: #6b7280; }`

// interactionJS positions the tooltip next to the pointer, flipping it to
// the other side when it would leave the frame, and opens the detail panel
// on click. Escape or a click on the panel closes it.
const interactionJS = `
    const PP = JSON.parse(document.getElementById('pp-data').textContent);
    const NS = 'http://www.w3.org/2000/svg';
    const svg = document.querySelector('svg');
    const vb = svg.viewBox.baseVal;
    const OFF = PP.offset, W = PP.width, LH = PP.line;
    const tip = document.getElementById('pp-tooltip');
    const det = document.getElementById('pp-detail');
    function clamp(p, size, limit) {
      let pos = p + OFF;
      if (pos + size > limit) pos = p - OFF - size;
      pos = Math.min(pos, limit - size);
      return Math.max(0, pos);
    }
    function fill(g, lines, width) {
      while (g.firstChild) g.removeChild(g.firstChild);
      const h = lines.length * LH + 16;
      const box = document.createElementNS(NS, 'rect');
      box.setAttribute('class', 'pp-box');
      box.setAttribute('width', width); box.setAttribute('height', h);
      g.appendChild(box);
      lines.forEach((l, i) => {
        const t = document.createElementNS(NS, 'text');
        t.setAttribute('x', 10); t.setAttribute('y', 8 + (i + 0.75) * LH);
        if (l.cls) t.setAttribute('class', l.cls);
        if (l.color) t.setAttribute('fill', l.color);
        t.textContent = l.text;
        g.appendChild(t);
      });
      return h;
    }
    function pointer(ev) {
      const pt = svg.createSVGPoint(); pt.x = ev.clientX; pt.y = ev.clientY;
      return pt.matrixTransform(svg.getScreenCTM().inverse());
    }
    function tipLines(p) {
      const lines = [{text: p.name + (p.flagged ? ' ' + PP.marker : ''), cls: 'pp-head'}];
      if (p.title) lines.push({text: p.title, cls: 'pp-muted'});
      if (p.email) lines.push({text: p.email});
      if (p.phone) lines.push({text: p.phone});
      if (p.skills.length) lines.push({text: p.skills.map(s => s.name).join(', ')});
      lines.push({text: p.categories.join(' · '), cls: 'pp-muted'});
      return lines;
    }
    document.querySelectorAll('.badge').forEach(el => {
      const p = PP.people[el.dataset.person];
      if (!p) return;
      el.addEventListener('mouseenter', ev => {
        const h = fill(tip, tipLines(p), W);
        const pt = pointer(ev);
        tip.setAttribute('transform', 'translate(' + clamp(pt.x, W, vb.width) + ',' + clamp(pt.y, h, vb.height) + ')');
        tip.setAttribute('visibility', 'visible');
      });
      el.addEventListener('mousemove', ev => {
        const pt = pointer(ev);
        const h = tip.getBBox().height;
        tip.setAttribute('transform', 'translate(' + clamp(pt.x, W, vb.width) + ',' + clamp(pt.y, h, vb.height) + ')');
      });
      el.addEventListener('mouseleave', () => tip.setAttribute('visibility', 'hidden'));
      el.addEventListener('click', () => {
        const lines = tipLines(p);
        lines.push({text: ''});
        p.rows.forEach(r => lines.push({text: r.target + ' · ' + r.role + ' · ' + r.hours + 'h'}));
        lines.push({text: 'Total ' + p.total_hours + 'h', cls: 'pp-head'});
        const width = Math.min(vb.width, W * 1.5);
        const h = fill(det, lines, width);
        det.setAttribute('transform', 'translate(' + Math.max(0, (vb.width - width) / 2) + ',' + Math.max(0, (vb.height - h) / 2) + ')');
        det.setAttribute('visibility', 'visible');
        tip.setAttribute('visibility', 'hidden');
      });
    });
    det.addEventListener('click', () => det.setAttribute('visibility', 'hidden'));
    document.addEventListener('keydown', ev => { if (ev.key === 'Escape') det.setAttribute('visibility', 'hidden'); });`

// interactionData is embedded as JSON for the script.
type interactionData struct {
	Marker string                      `json:"marker"`
	Offset float64                     `json:"offset"`
	Width  float64                     `json:"width"`
	Line   float64                     `json:"line"`
	People map[string]*interact.Detail `json:"people"`
}

func buildInteractionData(sc *scene.Scene, snap *roster.Snapshot) interactionData {
	d := interactionData{
		Marker: badge.DefaultMarker,
		Offset: interact.PointerOffset,
		Width:  interact.TooltipWidth,
		Line:   interact.TooltipLineHeight,
		People: make(map[string]*interact.Detail),
	}
	for _, b := range sc.Badges {
		if b.Marker != "" {
			d.Marker = b.Marker
		}
		if _, ok := d.People[b.PersonID]; !ok {
			d.People[b.PersonID] = interact.BuildDetail(snap, b.PersonID)
		}
	}
	return d
}

func renderInteraction(buf *bytes.Buffer, sc *scene.Scene, snap *roster.Snapshot) error {
	// json.Marshal escapes '<' and '>', so the payload cannot close the
	// CDATA section.
	data, err := json.Marshal(buildInteractionData(sc, snap))
	if err != nil {
		return err
	}
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", interactionCSS)
	buf.WriteString(`  <g id="pp-tooltip" visibility="hidden"></g>` + "\n")
	buf.WriteString(`  <g id="pp-detail" visibility="hidden"></g>` + "\n")
	fmt.Fprintf(buf, "  <script type=\"application/json\" id=\"pp-data\"><![CDATA[%s]]></script>\n", data)
	fmt.Fprintf(buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", interactionJS)
	return nil
}
