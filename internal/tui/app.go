package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bandline/internal/config"
	"bandline/internal/engine"
	"bandline/internal/model"
	"bandline/internal/store"
	"bandline/internal/timeaxis"
)

const gutterWidth = 14

type appModel struct {
	st   *store.Store
	orch *engine.Orchestrator
	axis *timeaxis.Axis
	cfg  config.Config
	path string
	keys keyMap

	width  int
	height int

	showHelp bool
	filterOn bool

	// lastAdded targets the delete/shift keys at the most recent interactive
	// insert.
	lastAdded string
	addSeq    int

	lastSync syncStats
	status   string
}

type syncStats struct {
	created  int
	reused   int
	patched  int
	released int
}

func summarize(results []engine.SyncResult) syncStats {
	var s syncStats
	for _, r := range results {
		switch r.Action {
		case engine.SyncCreate:
			s.created++
		case engine.SyncReuse:
			s.reused++
		case engine.SyncReuseOwn:
			s.patched++
		case engine.SyncRelease:
			s.released++
		}
	}
	return s
}

func newAppModel(st *store.Store, cfg config.Config, path string) (*appModel, error) {
	start, end, err := cfg.Window(time.Now())
	if err != nil {
		return nil, err
	}
	widthPx := end.Sub(start).Hours() * cfg.Render.PxPerHour
	axis, err := timeaxis.New(timeaxis.Config{
		Start:      start,
		End:        end,
		TickDur:    cfg.TickDuration(),
		WidthPx:    widthPx,
		RTL:        cfg.Axis.RTL,
		Exclusions: cfg.Exclusions(start, end),
	})
	if err != nil {
		return nil, err
	}
	orch, err := engine.NewOrchestrator(engine.Options{
		Source:   st,
		Axis:     axis,
		Geometry: cfg.Geometry.Layout(),
		BufferPx: cfg.Render.BufferPx,
	})
	if err != nil {
		return nil, err
	}
	m := &appModel{
		st:   st,
		orch: orch,
		axis: axis,
		cfg:  cfg,
		path: path,
		keys: newKeyMap(),
	}
	st.Subscribe(orch.Apply)
	orch.OnSync(func(results []engine.SyncResult) {
		m.lastSync = summarize(results)
	})
	return m, nil
}

func (m *appModel) Init() tea.Cmd { return nil }

func (m *appModel) contentSize() (w, h float64) {
	w = float64(m.width - gutterWidth)
	h = float64(m.height - 4) // title, axis header, footer, spacing
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func (m *appModel) pump() {
	for m.orch.NeedsFrame() {
		m.orch.Frame()
	}
}

func (m *appModel) scrollBy(dx, dy float64) {
	s := m.orch.Scroll()
	s.Left += dx
	s.Top += dy
	w, h := m.contentSize()
	maxLeft := m.axis.Width() - w
	maxTop := m.totalHeight() - h
	s.Left = clamp(s.Left, 0, maxLeft)
	s.Top = clamp(s.Top, 0, maxTop)
	m.orch.SetScroll(s)
	m.pump()
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m *appModel) totalHeight() float64 {
	rows := m.orch.RowPositions()
	if len(rows) == 0 {
		return 0
	}
	last := rows[len(rows)-1]
	return last.Top + last.Height
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.contentSize()
		m.orch.SetViewport(engine.ViewportState{Width: w, Height: h})
		m.pump()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	step := m.cfg.Render.PxPerHour
	if step < 1 {
		step = 1
	}
	w, _ := m.contentSize()

	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case key.Matches(msg, k.ScrollLeft):
		m.scrollBy(-step, 0)
	case key.Matches(msg, k.ScrollRight):
		m.scrollBy(step, 0)
	case key.Matches(msg, k.ScrollUp):
		m.scrollBy(0, -1)
	case key.Matches(msg, k.ScrollDown):
		m.scrollBy(0, 1)
	case key.Matches(msg, k.PageLeft):
		m.scrollBy(-w, 0)
	case key.Matches(msg, k.PageRight):
		m.scrollBy(w, 0)
	case key.Matches(msg, k.Home):
		m.orch.SetScroll(engine.ScrollState{})
		m.pump()

	case key.Matches(msg, k.AddEvent):
		m.addEvent()
	case key.Matches(msg, k.DeleteEvent):
		if m.lastAdded != "" {
			if m.st.RemoveEvent(m.lastAdded) {
				m.status = "removed " + m.lastAdded
			}
			m.lastAdded = ""
			m.pump()
		}
	case key.Matches(msg, k.ShiftEvent):
		if m.lastAdded != "" {
			hour := time.Hour.Milliseconds()
			_, err := m.st.UpdateEvent(m.lastAdded, func(e *model.Event) {
				e.StartMS += hour
				e.EndMS += hour
			})
			if err == nil {
				m.status = "shifted " + m.lastAdded
			}
			m.pump()
		}
	case key.Matches(msg, k.BatchShift):
		m.batchShiftFirstRow()
	case key.Matches(msg, k.FilterDay):
		m.toggleFilter()
	case key.Matches(msg, k.Reload):
		m.reload()
	}
	return m, nil
}

func (m *appModel) addEvent() {
	rows := m.st.Resources()
	var target string
	for _, r := range rows {
		if !r.Archived {
			target = r.ID
			break
		}
	}
	if target == "" {
		m.status = "no rows to add to"
		return
	}
	hour := time.Hour.Milliseconds()
	start := m.axis.StartMS() + int64(m.addSeq)*2*hour
	m.addSeq++
	e := m.st.AddEvent(model.Event{
		ID:         m.st.NextEventID(),
		ResourceID: target,
		Name:       fmt.Sprintf("ad-hoc %d", m.addSeq),
		StartMS:    start,
		EndMS:      start + 2*hour,
		Color:      "teal",
	})
	m.lastAdded = e.ID
	m.status = "added " + e.ID
	m.pump()
}

func (m *appModel) batchShiftFirstRow() {
	rows := m.st.Resources()
	if len(rows) == 0 {
		return
	}
	rowID := rows[0].ID
	spans := m.st.SpansForRow(rowID)
	shift := 30 * time.Minute.Milliseconds()
	m.st.Batch(func() {
		for _, s := range spans {
			_, _ = m.st.UpdateEvent(s.ID, func(e *model.Event) {
				e.StartMS += shift
				e.EndMS += shift
			})
		}
	})
	m.status = fmt.Sprintf("shifted %d events on %s", len(spans), rowID)
	m.pump()
}

func (m *appModel) toggleFilter() {
	m.filterOn = !m.filterOn
	if !m.filterOn {
		m.st.SetEventFilter(nil)
		m.status = "filter off"
	} else {
		dayEnd := m.axis.StartMS() + 24*time.Hour.Milliseconds()
		m.st.SetEventFilter(func(e model.Event) bool {
			return e.StartMS < dayEnd
		})
		m.status = "filter: first day only"
	}
	m.pump()
}

func (m *appModel) reload() {
	fresh, err := store.Open(m.path)
	if err != nil {
		m.status = "reload failed: " + err.Error()
		return
	}
	m.st.ReplaceDataset(fresh.Dataset())
	m.status = "reloaded " + m.path
	m.pump()
}

func (m *appModel) View() string {
	if m.width == 0 {
		return "loading..."
	}
	title := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("bandline  %s", m.path))

	if m.showHelp {
		return title + "\n\n" + renderHelp(min(m.width, 80))
	}

	_, h := m.contentSize()
	canvas := Canvas{
		Width:  m.width,
		Height: int(h),
		Gutter: gutterWidth,
		Styled: true,
		ColorOf: func(id string) string {
			if e, ok := m.st.FindEvent(id); ok {
				return e.Color
			}
			return ""
		},
	}
	body := canvas.Render(m.orch.Tree(), m.axis, m.orch.Scroll(), func(id string) string {
		if r, ok := m.st.ResourceByID(id); ok {
			return r.Name
		}
		return id
	})

	footer := styleMuted().Render(m.footerText())
	return strings.Join([]string{title, body, footer}, "\n")
}

func (m *appModel) footerText() string {
	s := m.orch.Scroll()
	parts := []string{
		fmt.Sprintf("x=%.0f y=%.0f", s.Left, s.Top),
		fmt.Sprintf("sync +%d ~%d ↻%d -%d",
			m.lastSync.created, m.lastSync.patched, m.lastSync.reused, m.lastSync.released),
		"?: help  q: quit",
	}
	if m.status != "" {
		parts = append([]string{m.status}, parts...)
	}
	return strings.Join(parts, "   ")
}
