package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-topology/pkg/engine"
	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/session"
	"github.com/dd0wney/cluso-topology/pkg/termrender"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// panel is the sidebar area that receives keys.
type panel int

const (
	graphPanel panel = iota
	searchPanel
	resultsPanel
	filtersPanel
	settingsPanel
	detailPanel
)

// fitDuration is how long the fit-camera transition takes.
const fitDuration = time.Second

// Messages
type (
	frameMsg       time.Time
	graphLoadedMsg struct {
		ds  *graph.Dataset
		err error
	}
	searchDoneMsg struct {
		query   string
		results []graph.SearchResult
		err     error
	}
	neighborsMsg struct {
		id        string
		neighbors []graph.Neighbor
		err       error
	}
	wakeupMsg   visualization.Wakeup
	settingsMsg visualization.Settings
)

type model struct {
	ctx      context.Context
	backend  session.Backend
	session  *session.Session
	engine   *engine.Engine
	interval time.Duration

	focus     panel
	search    textinput.Model
	results   list.Model
	neighbors list.Model
	help      help.Model
	keys      keyMap

	filters        *filterState
	settingsCursor int

	canvas     *termrender.Canvas
	width      int
	height     int
	message    string
	messageErr bool
	searching  bool
}

func newModel(ctx context.Context, backend session.Backend, sess *session.Session, eng *engine.Engine, f graph.Filter, interval time.Duration) model {
	ti := textinput.New()
	ti.Placeholder = "title or name"
	ti.CharLimit = 100
	ti.Width = sidebarWidth - 6
	ti.Prompt = "/ "

	return model{
		ctx:       ctx,
		backend:   backend,
		session:   sess,
		engine:    eng,
		interval:  interval,
		search:    ti,
		results:   newSidebarList("Results"),
		neighbors: newSidebarList("Neighbours"),
		help:      help.New(),
		keys:      keys,
		filters:   newFilterState(f),
	}
}

func newSidebarList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), sidebarWidth-2, 10)
	l.Title = title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return l
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func wakeupCmd(w visualization.Wakeup, now time.Time) tea.Cmd {
	return tea.Tick(w.Delay(now), func(time.Time) tea.Msg {
		return wakeupMsg(w)
	})
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(m.interval),
		m.beginLoad(m.filters.filter()),
	)
}

// beginLoad marks a load as pending and returns the fetch.
func (m model) beginLoad(f graph.Filter) tea.Cmd {
	m.session.BeginLoad(f)
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		ds, err := backend.FetchGraph(ctx, f)
		return graphLoadedMsg{ds: ds, err: err}
	}
}

func (m model) searchCmd(query string) tea.Cmd {
	ctx, sess := m.ctx, m.session
	return func() tea.Msg {
		results, err := sess.Search(ctx, query)
		return searchDoneMsg{query: query, results: results, err: err}
	}
}

func (m model) neighborsCmd(id string) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		nbrs, err := backend.Neighbors(ctx, id)
		return neighborsMsg{id: id, neighbors: nbrs, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case frameMsg:
		m.engine.Step()
		m.session.View().Advance()
		m.redraw()
		return m, frameCmd(m.interval)

	case graphLoadedMsg:
		if err := m.session.ApplyLoad(msg.ds, msg.err); err != nil {
			m.setError(err)
		} else {
			m.setMessage(fmt.Sprintf("Loaded %d nodes, %d links", len(msg.ds.Nodes), len(msg.ds.Links)))
		}
		return m, nil

	case searchDoneMsg:
		m.searching = false
		if msg.err != nil {
			m.setError(fmt.Errorf("search failed: %w", msg.err))
			return m, nil
		}
		cmd := m.results.SetItems(resultItems(msg.results))
		if len(msg.results) == 0 {
			m.setMessage(fmt.Sprintf("No results for %q", msg.query))
			return m, cmd
		}
		m.setFocus(resultsPanel)
		return m, cmd

	case neighborsMsg:
		if m.session.ApplyNeighbors(msg.id, msg.neighbors, msg.err) {
			return m, m.neighbors.SetItems(neighborItems(m.session.Detail().Neighbors))
		}
		return m, nil

	case wakeupMsg:
		m.session.Expire(visualization.Wakeup(msg))
		return m, nil

	case settingsMsg:
		if err := m.session.View().SetSettings(visualization.Settings(msg)); err != nil {
			m.setError(err)
		} else {
			m.setMessage("Settings file reloaded")
		}
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || m.canvas == nil {
		return m, nil
	}
	id, ok := m.canvas.NodeAt(msg.X, msg.Y-headerHeight)
	if !ok {
		return m, nil
	}
	return m, m.click(id)
}

// click opens the detail panel for id and fetches its neighbours.
func (m *model) click(id string) tea.Cmd {
	n, err := m.session.Click(id)
	if err != nil {
		m.setError(err)
		return nil
	}
	m.setFocus(detailPanel)
	return tea.Batch(m.neighbors.SetItems(nil), m.neighborsCmd(n.ID))
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.focus == searchPanel {
		switch {
		case key.Matches(msg, m.keys.Enter):
			query := strings.TrimSpace(m.search.Value())
			if query == "" {
				return m, nil
			}
			m.searching = true
			return m, m.searchCmd(query)
		case key.Matches(msg, m.keys.Back):
			m.setFocus(graphPanel)
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.setFocus(resultsPanel)
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.setFocus(searchPanel)
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Filters):
		m.setFocus(filtersPanel)
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		m.setFocus(settingsPanel)
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		m.setFocus(m.nextPanel())
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		m.setMessage("Reloading…")
		return m, m.beginLoad(m.session.Filter())
	case key.Matches(msg, m.keys.Fit):
		m.engine.MoveCamera(m.engine.FitCamera(fitDuration))
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Back):
		if m.session.Detail() != nil {
			m.session.CloseDetail()
		}
		m.setFocus(graphPanel)
		return m, nil
	}

	switch m.focus {
	case resultsPanel:
		return m.updateResults(msg)
	case detailPanel:
		return m.updateDetail(msg)
	case filtersPanel:
		return m.updateFilters(msg)
	case settingsPanel:
		return m.updateSettings(msg)
	}
	return m, nil
}

func (m model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Enter) {
		item, ok := m.results.SelectedItem().(resultItem)
		if !ok {
			return m, nil
		}
		if _, known := m.session.View().Node(item.ID); !known {
			m.setError(fmt.Errorf("%s is not in the current view; widen the filters", item.Label))
			return m, nil
		}
		now := m.session.View().Now()
		var cmds []tea.Cmd
		for _, w := range m.session.SelectSearchResult(item.ID) {
			cmds = append(cmds, wakeupCmd(w, now))
		}
		m.setMessage("Selected " + item.Label)
		return m, tea.Batch(cmds...)
	}
	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Enter) {
		item, ok := m.neighbors.SelectedItem().(neighborItem)
		if !ok {
			return m, nil
		}
		n, w, err := m.session.SelectNeighbor(item.ID)
		if err != nil {
			if errors.Is(err, visualization.ErrUnknownNode) {
				err = fmt.Errorf("%s is not in the current view; widen the filters", item.Label)
			}
			m.setError(err)
			return m, nil
		}
		return m, tea.Batch(
			wakeupCmd(w, m.session.View().Now()),
			m.neighbors.SetItems(nil),
			m.neighborsCmd(n.ID),
		)
	}
	var cmd tea.Cmd
	m.neighbors, cmd = m.neighbors.Update(msg)
	return m, cmd
}

func (m model) updateFilters(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.filters.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.filters.move(1)
	case key.Matches(msg, m.keys.Toggle):
		m.filters.toggle()
	case key.Matches(msg, m.keys.Enter):
		m.setMessage("Applying filters…")
		return m, m.beginLoad(m.filters.filter())
	}
	return m, nil
}

func (m model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	steps := 0
	switch {
	case key.Matches(msg, m.keys.Up):
		m.settingsCursor = (m.settingsCursor + len(sliders) - 1) % len(sliders)
	case key.Matches(msg, m.keys.Down):
		m.settingsCursor = (m.settingsCursor + 1) % len(sliders)
	case key.Matches(msg, m.keys.Left):
		steps = -1
	case key.Matches(msg, m.keys.Right):
		steps = 1
	}
	if steps == 0 {
		return m, nil
	}
	view := m.session.View()
	next := sliders[m.settingsCursor].nudge(view.Settings(), steps)
	if err := view.SetSettings(next); err != nil {
		m.setError(err)
	}
	return m, nil
}

func (m model) nextPanel() panel {
	order := []panel{graphPanel, searchPanel, resultsPanel, filtersPanel, settingsPanel}
	if m.session.Detail() != nil {
		order = append(order, detailPanel)
	}
	for i, p := range order {
		if p == m.focus {
			return order[(i+1)%len(order)]
		}
	}
	return graphPanel
}

func (m *model) setFocus(p panel) {
	m.focus = p
	if p == searchPanel {
		m.search.Focus()
	} else {
		m.search.Blur()
	}
}

func (m *model) setMessage(s string) {
	m.message = s
	m.messageErr = false
}

func (m *model) setError(err error) {
	m.message = err.Error()
	m.messageErr = true
}

// canvasSize is the graph area left after the sidebar, header and footer.
func (m model) canvasSize() (int, int) {
	return max(m.width-sidebarWidth, minCanvas), max(m.height-headerHeight-footerHeight, minCanvas/2)
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	w, h := m.canvasSize()
	m.session.View().Resize(w, h)
	listHeight := max(h-4, 3)
	m.results.SetSize(sidebarWidth-2, listHeight)
	m.neighbors.SetSize(sidebarWidth-2, listHeight)
	m.redraw()
}

func (m *model) redraw() {
	if m.width == 0 {
		return
	}
	m.canvas = termrender.Draw(m.engine.Snapshot(m.session.View().Now()))
}
