package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/peoplepack/pkg/interact"
	"github.com/matzehuels/peoplepack/pkg/pipeline"
	"github.com/matzehuels/peoplepack/pkg/responsive"
	"github.com/matzehuels/peoplepack/pkg/roster"
	"github.com/matzehuels/peoplepack/pkg/scene"
)

// pixelsPerColumn converts terminal columns to container pixels.
const pixelsPerColumn = 10.0

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	flaggedStyle      = lipgloss.NewStyle().Foreground(colorYellow)
	panelStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

// exploreCommand creates the explore command, a terminal view of the chart.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "explore [roster]",
		Short: "Browse the chart in the terminal",
		Long: `Browse the chart in the terminal.

Every badge is listed by group. Moving the cursor over a badge shows its
tooltip; enter opens the detail view and esc closes it. The layout is
recomputed when the terminal is resized.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineOptions()
			opts.Refresh = refresh
			return c.runExplore(cmd.Context(), firstArg(args), opts, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "re-read the source instead of using cached records")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, opts pipeline.Options, noCache bool) error {
	src, err := c.openSource(ctx, input)
	if err != nil {
		return err
	}
	defer src.Close()
	if src.roster != nil {
		opts.Refresh = true
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	snap, err := runner.Load(ctx, src, opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	controller := responsive.New(func(ctx context.Context, size scene.Size) (*scene.Scene, error) {
		o := opts
		o.Width, o.Height = size.Width, size.Height
		return runner.Layout(ctx, snap, o)
	},
		responsive.WithLogger(c.Logger),
		responsive.WithMinHeight(c.Config.Layout.MinHeight),
		responsive.WithAspectRatio(c.Config.Layout.AspectRatio))
	scenes := controller.Subscribe()
	go func() { _ = controller.Run(ctx) }()

	// Keep log lines from tearing the alternate screen.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(max(level, log.WarnLevel))
	defer c.Logger.SetLevel(level)

	model := newExploreModel(ctx, snap, opts.Marker, controller.Resize, scenes)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// =============================================================================
// ExploreModel - Interactive badge browser
// =============================================================================

// sceneMsg delivers a freshly computed scene.
type sceneMsg struct{ scene *scene.Scene }

// ExploreModel is the bubbletea model for browsing badges.
type ExploreModel struct {
	Snapshot *roster.Snapshot
	Scene    *scene.Scene
	State    *interact.State
	Cursor   int
	Offset   int
	Height   int
	Width    int

	resize func(width float64)
	scenes <-chan *scene.Scene
	groups map[string]string
}

func newExploreModel(ctx context.Context, snap *roster.Snapshot, marker string, resize func(float64), scenes <-chan *scene.Scene) ExploreModel {
	state := interact.New(scene.Size{}, interact.ObservedHandlers(ctx))
	state.SetSnapshot(snap)
	if marker != "" {
		state.SetMarker(marker)
	}
	return ExploreModel{
		Snapshot: snap,
		State:    state,
		Height:   15,
		resize:   resize,
		scenes:   scenes,
	}
}

// waitForScene blocks until the controller publishes a scene.
func waitForScene(ch <-chan *scene.Scene) tea.Cmd {
	return func() tea.Msg {
		sc, ok := <-ch
		if !ok {
			return nil
		}
		return sceneMsg{scene: sc}
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return waitForScene(m.scenes)
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sceneMsg:
		m.setScene(msg.scene)
		return m, waitForScene(m.scenes)
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = max(msg.Height-14, 5)
		if m.resize != nil {
			m.resize(float64(msg.Width) * pixelsPerColumn)
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.State.Status().DetailID != "" {
				m.State.Close()
				return m, nil
			}
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
				m.hover()
			}
		case "down", "j":
			if m.Scene != nil && m.Cursor < len(m.Scene.Badges)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
				m.hover()
			}
		case "enter":
			if b, ok := m.current(); ok {
				m.State.Click(b.PersonID)
			}
		}
	}
	return m, nil
}

// setScene swaps in a new layout and keeps the cursor on the same person
// where possible.
func (m *ExploreModel) setScene(sc *scene.Scene) {
	prev, hadPrev := m.current()
	m.Scene = sc
	m.State.SetViewport(scene.Size{Width: sc.Width, Height: sc.Height})

	m.groups = make(map[string]string, len(sc.Circles))
	for _, c := range sc.Circles {
		m.groups[c.ID] = strings.TrimPrefix(c.ID, "/")
	}

	m.Cursor = 0
	if hadPrev {
		for i, b := range sc.Badges {
			if b.PersonID == prev.PersonID && b.CircleID == prev.CircleID {
				m.Cursor = i
				break
			}
		}
	}
	if m.Cursor < m.Offset || m.Cursor >= m.Offset+m.Height {
		m.Offset = max(m.Cursor-m.Height/2, 0)
	}
	m.hover()
}

func (m ExploreModel) current() (scene.Badge, bool) {
	if m.Scene == nil || m.Cursor >= len(m.Scene.Badges) {
		return scene.Badge{}, false
	}
	return m.Scene.Badges[m.Cursor], true
}

func (m ExploreModel) hover() {
	if b, ok := m.current(); ok {
		m.State.Hover(b.PersonID, b.AbsX, b.AbsY)
	} else {
		m.State.Leave()
	}
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("People"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  esc close  q quit"))
	b.WriteString("\n\n")

	if m.Scene == nil {
		b.WriteString(listDimStyle.Render("Packing circles..."))
		return b.String()
	}
	if m.Scene.Empty {
		b.WriteString(listDimStyle.Render(m.Scene.Placeholder))
		return b.String()
	}

	if d := m.State.Detail(m.Snapshot); d != nil {
		b.WriteString(renderDetail(d))
		return b.String()
	}

	b.WriteString(m.badgeTable())
	b.WriteString("\n")
	if tt := m.State.Tooltip(m.Snapshot); tt != nil {
		b.WriteString(renderTooltip(tt))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] · %.0f×%.0f · %d circles",
		m.Cursor+1, len(m.Scene.Badges), m.Scene.Width, m.Scene.Height, len(m.Scene.Circles))))
	if n := len(m.Scene.Overflow); n > 0 {
		b.WriteString(StyleWarning.Render(fmt.Sprintf(" · %d crowded", n)))
	}
	return b.String()
}

func (m ExploreModel) badgeTable() string {
	end := min(m.Offset+m.Height, len(m.Scene.Badges))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		badge := m.Scene.Badges[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := badge.Name
		if badge.Flagged {
			name += " " + badge.Marker
		}
		title := ""
		if p, ok := m.Snapshot.Person(badge.PersonID); ok {
			title = p.Title
		}
		rows = append(rows, []string{cursor, m.groups[badge.CircleID], name, title})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Group", "Person", "Title").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Scene.Badges) {
				return lipgloss.NewStyle()
			}
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case col == 2 && m.Scene.Badges[idx].Flagged:
				return flaggedStyle
			case col == 1 || col == 3:
				return listDimStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	return t.Render()
}

func renderTooltip(tt *interact.Tooltip) string {
	var lines []string
	name := StyleValue.Bold(true).Render(tt.Name)
	if tt.Flagged {
		name += " " + flaggedStyle.Render(tt.Marker)
	}
	lines = append(lines, name)
	if tt.Title != "" {
		lines = append(lines, StyleDim.Render(tt.Title))
	}
	if tt.Email != "" {
		lines = append(lines, StyleLink.Render(tt.Email))
	}
	if tt.Phone != "" {
		lines = append(lines, tt.Phone)
	}
	if len(tt.Skills) > 0 {
		lines = append(lines, skillLine(tt.Skills))
	}
	if len(tt.Categories) > 0 {
		lines = append(lines, StyleDim.Render(strings.Join(tt.Categories, " · ")))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func renderDetail(d *interact.Detail) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(d.Name))
	if d.Flagged {
		b.WriteString(" " + flaggedStyle.Render("flagged"))
	}
	b.WriteString("\n")
	if d.Title != "" {
		printTo(&b, "Title", d.Title)
	}
	if d.Email != "" {
		printTo(&b, "Email", d.Email)
	}
	if d.Phone != "" {
		printTo(&b, "Phone", d.Phone)
	}
	if len(d.Categories) > 0 {
		printTo(&b, "Groups", strings.Join(d.Categories, ", "))
	}
	if len(d.Skills) > 0 {
		printTo(&b, "Skills", skillLine(d.Skills))
	}
	b.WriteString("\n")

	if len(d.Rows) == 0 {
		b.WriteString(listDimStyle.Render("No assignments"))
		return panelStyle.Render(b.String())
	}
	rows := make([][]string, 0, len(d.Rows))
	for _, r := range d.Rows {
		rows = append(rows, []string{r.Target, r.Role, fmt.Sprintf("%g", r.Hours)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Target", "Role", "Hours").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			}
			if col == 2 {
				return StyleNumber
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("Total hours: ") + StyleNumber.Render(fmt.Sprintf("%g", d.TotalHours)))
	return panelStyle.Render(b.String())
}

func printTo(b *strings.Builder, key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(8)
	b.WriteString(keyStyle.Render(key) + " " + StyleValue.Render(value) + "\n")
}

func skillLine(skills []interact.SkillTag) string {
	tags := make([]string, len(skills))
	for i, s := range skills {
		style := lipgloss.NewStyle().Foreground(colorCyan)
		if s.Color != "" {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
		}
		tags[i] = style.Render(s.Name)
	}
	return strings.Join(tags, " ")
}
