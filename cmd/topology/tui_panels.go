package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/session"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// resultItem is a search hit in the results list.
type resultItem graph.SearchResult

func (i resultItem) Title() string       { return i.Label }
func (i resultItem) Description() string { return string(i.Type) + " · " + i.ID }
func (i resultItem) FilterValue() string { return i.Label }

func resultItems(rs []graph.SearchResult) []list.Item {
	items := make([]list.Item, len(rs))
	for i, r := range rs {
		items[i] = resultItem(r)
	}
	return items
}

// neighborItem is one row of the detail panel's neighbour list.
type neighborItem graph.Neighbor

func (i neighborItem) Title() string {
	return session.Direction(graph.Neighbor(i)) + " " + i.Label
}
func (i neighborItem) Description() string {
	return i.RelationType.Label() + " · " + string(i.Type)
}
func (i neighborItem) FilterValue() string { return i.Label }

func neighborItems(ns []graph.Neighbor) []list.Item {
	items := make([]list.Item, len(ns))
	for i, n := range ns {
		items[i] = neighborItem(n)
	}
	return items
}

// filterRow is either a node type or a relation type toggle.
type filterRow struct {
	nodeType graph.NodeType
	relation graph.RelationType
}

func (r filterRow) label() string {
	if r.nodeType != "" {
		return string(r.nodeType)
	}
	return r.relation.Label()
}

// filterState is the filter panel: node types then relation types, each
// toggled on or off. Nothing on in a group means no restriction.
type filterState struct {
	rows   []filterRow
	on     []bool
	cursor int
}

func newFilterState(f graph.Filter) *filterState {
	s := &filterState{}
	for _, t := range graph.AllNodeTypes {
		s.rows = append(s.rows, filterRow{nodeType: t})
	}
	for _, r := range graph.AllRelationTypes {
		s.rows = append(s.rows, filterRow{relation: r})
	}
	s.on = make([]bool, len(s.rows))
	for i, row := range s.rows {
		for _, t := range f.NodeTypes {
			if row.nodeType == t {
				s.on[i] = true
			}
		}
		for _, r := range f.RelationTypes {
			if row.relation == r {
				s.on[i] = true
			}
		}
	}
	return s
}

func (s *filterState) move(delta int) {
	s.cursor = (s.cursor + delta + len(s.rows)) % len(s.rows)
}

func (s *filterState) toggle() {
	s.on[s.cursor] = !s.on[s.cursor]
}

func (s *filterState) filter() graph.Filter {
	var f graph.Filter
	for i, row := range s.rows {
		if !s.on[i] {
			continue
		}
		if row.nodeType != "" {
			f.NodeTypes = append(f.NodeTypes, row.nodeType)
		} else {
			f.RelationTypes = append(f.RelationTypes, row.relation)
		}
	}
	return f
}

// slider adjusts one setting within its UI range.
type slider struct {
	label  string
	rng    visualization.SliderRange
	get    func(visualization.Settings) float64
	set    func(visualization.Settings, float64) visualization.Settings
	format string
}

func (s slider) nudge(cur visualization.Settings, steps int) visualization.Settings {
	return s.set(cur, s.rng.Nudge(s.get(cur), steps))
}

var sliders = []slider{
	{
		label:  "Link width",
		rng:    visualization.LinkWidthRange,
		get:    func(s visualization.Settings) float64 { return s.LinkWidth },
		set:    func(s visualization.Settings, v float64) visualization.Settings { s.LinkWidth = v; return s },
		format: "%.1f",
	},
	{
		label:  "Link opacity",
		rng:    visualization.LinkOpacityRange,
		get:    func(s visualization.Settings) float64 { return s.LinkOpacity },
		set:    func(s visualization.Settings, v float64) visualization.Settings { s.LinkOpacity = v; return s },
		format: "%.1f",
	},
	{
		label: "Node spread",
		rng:   visualization.NodeSpreadRange,
		get:   func(s visualization.Settings) float64 { return float64(s.NodeSpread) },
		set: func(s visualization.Settings, v float64) visualization.Settings {
			s.NodeSpread = int(math.Round(v))
			return s
		},
		format: "%.0f",
	},
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	w, h := m.canvasSize()
	graphArea := canvasFallbackStyle.Width(w).Height(h).Render("")
	if m.canvas != nil {
		graphArea = m.canvas.String()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, graphArea, m.renderSidebar(h))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatus(),
		helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())),
	)
}

func (m model) renderHeader() string {
	var nodes, links int
	if ds := m.session.View().Dataset(); ds != nil {
		nodes, links = len(ds.Nodes), len(ds.Links)
	}
	state := "settled"
	if !m.engine.Settled() {
		state = fmt.Sprintf("α %.3f", m.engine.Alpha())
	}
	stats := fmt.Sprintf("%d nodes · %d links · %s", nodes, links, state)
	if f := m.session.Filter(); len(f.NodeTypes)+len(f.RelationTypes) > 0 {
		stats += " · filtered"
	}
	return titleStyle.Render("◆ topology") + "  " + statsStyle.Render(stats)
}

func (m model) renderStatus() string {
	switch {
	case m.session.Loading():
		return mutedStyle.Render("Loading graph…")
	case m.searching:
		return mutedStyle.Render("Searching…")
	case m.session.LoadError() != nil:
		return errorStyle.Render("✗ " + m.session.LoadError().Error())
	case m.message != "" && m.messageErr:
		return errorStyle.Render("✗ " + m.message)
	case m.message != "":
		return successStyle.Render("✓ " + m.message)
	}
	if id := m.session.View().Highlighted(); id != "" {
		return headerStyle.Render("★ " + id)
	}
	return ""
}

func (m model) renderSidebar(height int) string {
	var s strings.Builder
	s.WriteString(m.search.View())
	s.WriteString("\n\n")

	switch {
	case m.help.ShowAll:
		s.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	case m.focus == filtersPanel:
		s.WriteString(m.renderFilters())
	case m.focus == settingsPanel:
		s.WriteString(m.renderSettings())
	case m.session.Detail() != nil && m.focus != resultsPanel:
		s.WriteString(m.renderDetail())
	case len(m.results.Items()) > 0:
		s.WriteString(m.results.View())
	default:
		s.WriteString(renderLegend())
	}

	return sidebarStyle.
		Width(sidebarWidth - 1).
		Height(height).
		MaxHeight(height).
		Render(s.String())
}

func (m model) renderFilters() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Node types"))
	s.WriteString("\n")
	for i, row := range m.filters.rows {
		if i == len(graph.AllNodeTypes) {
			s.WriteString("\n")
			s.WriteString(headerStyle.Render("Relations"))
			s.WriteString("\n")
		}
		box := "[ ]"
		if m.filters.on[i] {
			box = "[x]"
		}
		line := box + " " + row.label()
		if i == m.filters.cursor {
			line = cursorStyle.Render(line)
		}
		s.WriteString(line + "\n")
	}
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render("space toggle · enter apply\nnone checked = show all"))
	return s.String()
}

func (m model) renderSettings() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Layout settings"))
	s.WriteString("\n\n")
	cur := m.session.View().Settings()
	for i, sl := range sliders {
		v := sl.get(cur)
		line := fmt.Sprintf("%-13s "+sl.format, sl.label, v)
		if i == m.settingsCursor {
			line = cursorStyle.Render(line)
		}
		s.WriteString(line + "\n")
		s.WriteString(mutedStyle.Render(sliderBar(sl.rng, v, sidebarWidth-6)) + "\n")
	}
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render("←/→ adjust · ↑/↓ select"))
	return s.String()
}

// sliderBar draws v's position within r as a bar of the given width.
func sliderBar(r visualization.SliderRange, v float64, width int) string {
	frac := (v - r.Min) / (r.Max - r.Min)
	filled := int(math.Round(frac * float64(width)))
	filled = max(0, min(width, filled))
	return strings.Repeat("━", filled) + "●" + strings.Repeat("─", width-filled)
}

func (m model) renderDetail() string {
	d := m.session.Detail()
	var s strings.Builder

	typeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(d.Node.Type.Color()))
	s.WriteString(headerStyle.Render(d.Node.Label))
	s.WriteString("\n")
	s.WriteString(typeStyle.Render(string(d.Node.Type)))
	s.WriteString("\n\n")

	for _, p := range d.Properties {
		s.WriteString(mutedStyle.Render(p.Key+": ") + p.Value + "\n")
	}
	if len(d.Properties) > 0 {
		s.WriteString("\n")
	}

	switch {
	case d.Loading:
		s.WriteString(mutedStyle.Render("Loading neighbours…"))
	case d.Err != nil:
		s.WriteString(errorStyle.Render("Could not load neighbours"))
	case len(d.Neighbors) == 0:
		s.WriteString(mutedStyle.Render("No neighbours"))
	default:
		s.WriteString(m.neighbors.View())
	}
	return s.String()
}

func renderLegend() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Legend"))
	s.WriteString("\n")
	for _, t := range graph.AllNodeTypes {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color())).Render("■")
		s.WriteString(swatch + " " + string(t) + "\n")
	}
	s.WriteString("\n")
	for _, r := range graph.AllRelationTypes {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(visualization.LinkColor(string(r)))).Render("─")
		s.WriteString(swatch + " " + r.Label() + "\n")
	}
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render("click a node for details"))
	return s.String()
}
