package interact

import (
	"math"
	"sort"
	"strings"

	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

const (
	// PointerOffset separates the tooltip from the pointer.
	PointerOffset = 12.0

	// TooltipWidth and TooltipLineHeight size the tooltip box for clamping.
	TooltipWidth      = 240.0
	TooltipLineHeight = 16.0
	tooltipPadding    = 8.0
)

// SkillTag is a resolved skill reference.
type SkillTag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Tooltip is the hover summary of one person.
type Tooltip struct {
	PersonID   string     `json:"person_id"`
	Name       string     `json:"name"`
	Title      string     `json:"title,omitempty"`
	Flagged    bool       `json:"flagged,omitempty"`
	Marker     string     `json:"marker,omitempty"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Skills     []SkillTag `json:"skills"`
	Categories []string   `json:"categories"`

	// X, Y is the top-left corner of the tooltip box in container coordinates.
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Row is one resolved assignment.
type Row struct {
	Target string  `json:"target"`
	Role   string  `json:"role"`
	Hours  float64 `json:"hours"`
}

// Detail is the click-through view of one person.
type Detail struct {
	PersonID   string     `json:"person_id"`
	Name       string     `json:"name"`
	Title      string     `json:"title,omitempty"`
	Flagged    bool       `json:"flagged,omitempty"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Skills     []SkillTag `json:"skills"`
	Categories []string   `json:"categories"`
	Rows       []Row      `json:"rows"`
	TotalHours float64    `json:"total_hours"`
}

// BuildTooltip resolves the tooltip for personID, positioned next to the
// pointer (x, y) and kept inside the viewport. Unknown people and dangling
// skill references resolve to [roster.Unknown].
func BuildTooltip(snap *roster.Snapshot, personID string, x, y float64, viewport scene.Size, marker string) *Tooltip {
	p, _ := snap.Person(personID)
	tt := &Tooltip{
		PersonID:   personID,
		Name:       p.DisplayName(),
		Skills:     resolveSkills(snap, p),
		Categories: categories(p),
	}
	if p != nil {
		tt.Title = p.Title
		tt.Flagged = p.Flagged
		tt.Email = p.Email
		tt.Phone = p.Phone
		if p.Flagged {
			tt.Marker = marker
		}
	}

	lines := 2 // name, categories
	for _, s := range []string{tt.Title, tt.Email, tt.Phone} {
		if s != "" {
			lines++
		}
	}
	if len(tt.Skills) > 0 {
		lines++
	}
	tt.Width = TooltipWidth
	tt.Height = float64(lines)*TooltipLineHeight + 2*tooltipPadding
	tt.X = clampAxis(x, tt.Width, viewport.Width)
	tt.Y = clampAxis(y, tt.Height, viewport.Height)
	return tt
}

// clampAxis places a box of extent size after the pointer, or before it
// when it would leave the viewport, and keeps it within [0, limit].
func clampAxis(pointer, size, limit float64) float64 {
	pos := pointer + PointerOffset
	if limit > 0 && pos+size > limit {
		pos = pointer - PointerOffset - size
	}
	if limit > 0 {
		pos = math.Min(pos, limit-size)
	}
	return math.Max(0, pos)
}

// BuildDetail joins a person's assignments with targets and roles. Rows are
// sorted by hours, largest first, then by target name.
func BuildDetail(snap *roster.Snapshot, personID string) *Detail {
	p, _ := snap.Person(personID)
	d := &Detail{
		PersonID:   personID,
		Name:       p.DisplayName(),
		Skills:     resolveSkills(snap, p),
		Categories: categories(p),
		Rows:       []Row{},
	}
	if p != nil {
		d.Title = p.Title
		d.Flagged = p.Flagged
		d.Email = p.Email
		d.Phone = p.Phone
	}
	for _, a := range snap.AssignmentsFor(personID) {
		row := Row{Target: roster.Unknown, Role: roster.Unknown}
		if t, ok := snap.Target(a.TargetID); ok && t.Name != "" {
			row.Target = t.Name
		}
		if r, ok := snap.Role(a.RoleID); ok && r.Name != "" {
			row.Role = r.Name
		}
		if a.Hours > 0 && !math.IsInf(a.Hours, 0) {
			row.Hours = a.Hours
		}
		d.Rows = append(d.Rows, row)
		d.TotalHours += row.Hours
	}
	sort.SliceStable(d.Rows, func(i, j int) bool {
		if d.Rows[i].Hours != d.Rows[j].Hours {
			return d.Rows[i].Hours > d.Rows[j].Hours
		}
		return d.Rows[i].Target < d.Rows[j].Target
	})
	return d
}

func resolveSkills(snap *roster.Snapshot, p *roster.Person) []SkillTag {
	out := []SkillTag{}
	if p == nil {
		return out
	}
	for _, id := range p.SkillIDs {
		tag := SkillTag{ID: id, Name: roster.Unknown}
		if s, ok := snap.Skill(id); ok && strings.TrimSpace(s.Name) != "" {
			tag.Name = s.Name
			tag.Color = s.Color
		}
		out = append(out, tag)
	}
	return out
}

func categories(p *roster.Person) []string {
	if p == nil {
		return []string{}
	}
	return append([]string{}, p.Categories...)
}
