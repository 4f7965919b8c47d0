package tui

import (
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bandline/internal/config"
	"bandline/internal/engine"
	"bandline/internal/store"
	"bandline/internal/timeaxis"
)

// Run starts the interactive viewer on the given store.
func Run(st *store.Store, cfg config.Config, path string) error {
	applyColorProfilePreference()
	m, err := newAppModel(st, cfg, path)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// snapshotFrame builds an orchestrator with a zero virtualization buffer and
// runs it to a settled frame, so the tree holds exactly what a viewport of
// the given size would show.
func snapshotFrame(st *store.Store, cfg config.Config, width, height float64) (*engine.Orchestrator, *timeaxis.Axis, error) {
	start, end, err := cfg.Window(time.Now())
	if err != nil {
		return nil, nil, err
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
		return nil, nil, err
	}
	orch, err := engine.NewOrchestrator(engine.Options{
		Source:   st,
		Axis:     axis,
		Geometry: cfg.Geometry.Layout(),
		BufferPx: 0,
	})
	if err != nil {
		return nil, nil, err
	}
	orch.SetViewport(engine.ViewportState{Width: width, Height: height})
	for orch.NeedsFrame() {
		orch.Frame()
	}
	return orch, axis, nil
}

// Snapshot renders one plain-text frame without entering the terminal UI.
func Snapshot(st *store.Store, cfg config.Config, width, height int) (string, error) {
	if width <= gutterWidth {
		return "", fmt.Errorf("tui: snapshot width %d leaves no timeline right of the %d-column gutter", width, gutterWidth)
	}
	if height <= 2 {
		return "", fmt.Errorf("tui: snapshot height %d leaves no room below the header", height)
	}
	bodyH := height - 2
	orch, axis, err := snapshotFrame(st, cfg, float64(width-gutterWidth), float64(bodyH))
	if err != nil {
		return "", err
	}
	canvas := Canvas{Width: width, Height: bodyH, Gutter: gutterWidth, Styled: false}
	out := canvas.Render(orch.Tree(), axis, orch.Scroll(), func(id string) string {
		if r, ok := st.ResourceByID(id); ok {
			return r.Name
		}
		return id
	})
	return out, nil
}

// SnapshotRow is one row of a JSON snapshot, with the event placements that
// fall inside the viewport.
type SnapshotRow struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Top    float64         `json:"top"`
	Height float64         `json:"height"`
	Events []SnapshotEvent `json:"events"`
}

// SnapshotEvent is one placed event. Left/Top are row-relative pixels, the
// same geometry the terminal renderer draws from.
type SnapshotEvent struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Left         float64 `json:"left"`
	Top          float64 `json:"top"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Milestone    bool    `json:"milestone,omitempty"`
	ClippedStart bool    `json:"clippedStart,omitempty"`
	ClippedEnd   bool    `json:"clippedEnd,omitempty"`
}

// SnapshotJSON exports the same frame Snapshot renders, as structured
// placements instead of terminal cells.
func SnapshotJSON(st *store.Store, cfg config.Config, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("tui: snapshot dimensions must be positive, got %dx%d", width, height)
	}
	orch, _, err := snapshotFrame(st, cfg, float64(width), float64(height))
	if err != nil {
		return nil, err
	}
	rows := make([]SnapshotRow, 0)
	for _, el := range orch.Tree().Roots() {
		if el.Shape != "row" {
			continue
		}
		id := el.Dataset["rowId"]
		row := SnapshotRow{
			ID:     id,
			Name:   id,
			Top:    el.Box.Top,
			Height: el.Box.Height,
			Events: make([]SnapshotEvent, 0, len(el.Children)),
		}
		if r, ok := st.ResourceByID(id); ok {
			row.Name = r.Name
		}
		for _, ev := range el.Children {
			row.Events = append(row.Events, SnapshotEvent{
				ID:           ev.Dataset["eventId"],
				Name:         ev.Dataset["name"],
				Left:         ev.Box.Left,
				Top:          ev.Box.Top,
				Width:        ev.Box.Width,
				Height:       ev.Box.Height,
				Milestone:    ev.Shape == "milestone",
				ClippedStart: ev.Dataset["clippedStart"] == "true",
				ClippedEnd:   ev.Dataset["clippedEnd"] == "true",
			})
		}
		rows = append(rows, row)
	}
	return json.MarshalIndent(struct {
		Rows []SnapshotRow `json:"rows"`
	}{Rows: rows}, "", "  ")
}
