package tui

import (
	"math"
	"sort"
	"strings"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"bandline/internal/engine"
	"bandline/internal/timeaxis"
)

// Canvas paints the retained element tree into terminal lines. One axis pixel
// is one terminal cell, so the axis is built with the content width in cells.
//
// The canvas is stateless between paints: the element tree is the retained
// structure, the canvas just projects it through the current scroll offset.
type Canvas struct {
	Width  int // total columns, gutter included
	Height int // body lines, header excluded
	Gutter int // row-label columns on the left

	// Styled selects ANSI output. Plain output (snapshots, tests) draws the
	// same cells with visible fill characters instead of background color.
	Styled bool

	// ColorOf resolves an event id to its palette color name. Nil means the
	// default bar color for everything.
	ColorOf func(eventID string) string
}

// cell is one terminal cell: a rune plus a style key grouped into runs at
// assembly time.
type cell struct {
	r     rune
	style string
}

type grid struct {
	w, h  int
	cells []cell
}

func newGrid(w, h int) *grid {
	g := &grid{w: w, h: h, cells: make([]cell, w*h)}
	for i := range g.cells {
		g.cells[i] = cell{r: ' '}
	}
	return g
}

func (g *grid) set(x, y int, r rune, style string) {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return
	}
	g.cells[y*g.w+x] = cell{r: r, style: style}
}

func (g *grid) at(x, y int) rune {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return 0
	}
	return g.cells[y*g.w+x].r
}

// Render paints the header and every row element currently in the tree.
// RowName resolves a row id to its display label.
func (c Canvas) Render(tree *engine.Tree, axis *timeaxis.Axis, scroll engine.ScrollState, rowName func(id string) string) string {
	g := newGrid(c.Width, c.Height)
	for _, row := range tree.Roots() {
		if row.Shape != "row" {
			continue
		}
		c.paintRow(g, row, scroll, rowName)
	}
	var b strings.Builder
	b.WriteString(c.header(axis, scroll))
	b.WriteByte('\n')
	b.WriteString(c.assemble(g))
	return b.String()
}

func (c Canvas) paintRow(g *grid, row *engine.Element, scroll engine.ScrollState, rowName func(id string) string) {
	top := int(math.Round(row.Box.Top - scroll.Top))
	height := int(math.Round(row.Box.Height))
	if top+height <= 0 || top >= g.h {
		return
	}
	label := row.Dataset["rowId"]
	if rowName != nil {
		label = rowName(label)
	}
	c.writeText(g, 0, top, truncate(label, c.Gutter-1), "label")
	for _, ev := range row.Children {
		c.paintEvent(g, ev, top, scroll)
	}
}

func (c Canvas) paintEvent(g *grid, ev *engine.Element, rowTop int, scroll engine.ScrollState) {
	x := c.Gutter + int(math.Round(ev.Box.Left-scroll.Left))
	y := rowTop + int(math.Round(ev.Box.Top))
	if y < 0 || y >= g.h {
		return
	}
	color := ""
	if c.ColorOf != nil {
		color = c.ColorOf(ev.Dataset["eventId"])
	}
	if ev.Shape == "milestone" {
		g.set(x, y, '◆', "ms:"+color)
		return
	}
	width := int(math.Round(ev.Box.Width))
	if width < 1 {
		width = 1
	}
	cells := barCells(width, ev.Dataset["name"],
		ev.Dataset["clippedStart"] == "true" || ev.Dataset["startsOutsideView"] == "true",
		ev.Dataset["clippedEnd"] == "true" || ev.Dataset["endsOutsideView"] == "true",
		c.Styled)
	for i, r := range cells {
		g.set(x+i, y, r, "bar:"+color)
	}
}

// barCells lays the event name into a bar of the given width. Styled bars are
// background-colored so the fill is spaces; plain bars need visible fill.
func barCells(width int, name string, clipLeft, clipRight, styled bool) []rune {
	fill := ' '
	if !styled {
		fill = '▒'
	}
	out := make([]rune, width)
	for i := range out {
		out[i] = fill
	}
	inner := width
	if clipLeft {
		out[0] = '‹'
		inner--
	}
	if clipRight {
		out[width-1] = '›'
		inner--
	}
	if inner >= 2 {
		label := truncate(name, inner)
		start := 0
		if clipLeft {
			start = 1
		}
		for _, r := range label {
			out[start] = r
			start++
		}
	}
	return out
}

func (c Canvas) header(axis *timeaxis.Axis, scroll engine.ScrollState) string {
	g := newGrid(c.Width, 1)
	format := "15:04"
	if axis.TickCount() > 0 {
		t := axis.Ticks()[0]
		if t.EndMS-t.StartMS >= 24*time.Hour.Milliseconds() {
			format = "Jan 02"
		}
	}
	type mark struct {
		x       int
		startMS int64
	}
	marks := make([]mark, 0, axis.TickCount())
	for _, t := range axis.Ticks() {
		a, okA := axis.Coord(t.StartMS, timeaxis.CoordOpts{RespectExclusion: true})
		b, okB := axis.Coord(t.EndMS, timeaxis.CoordOpts{RespectExclusion: true, IsEnd: true})
		if !okA || !okB {
			continue
		}
		x := c.Gutter + int(math.Round(math.Min(a, b)-scroll.Left))
		marks = append(marks, mark{x: x, startMS: t.StartMS})
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].x < marks[j].x })

	// Every tick gets a mark; labels land wherever the previous one left
	// room, so dense zooms label every Nth tick automatically.
	nextFree := 0
	for _, m := range marks {
		if g.at(m.x, 0) == ' ' {
			g.set(m.x, 0, '┊', "axis")
		}
		if m.x+1 < nextFree {
			continue
		}
		label := time.UnixMilli(m.startMS).UTC().Format(format)
		c.writeText(g, m.x+1, 0, label, "axis")
		nextFree = m.x + 1 + len(label) + 1
	}
	return c.assemble(g)
}

func (c Canvas) writeText(g *grid, x, y int, s, style string) {
	for _, r := range s {
		g.set(x, y, r, style)
		x++
	}
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return xansi.Cut(s, 0, width-1) + "…"
}

// assemble joins the grid into lines, grouping equal-style runs so each run
// is styled once.
func (c Canvas) assemble(g *grid) string {
	if g.w == 0 {
		return ""
	}
	var b strings.Builder
	for y := 0; y < g.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		runStyle := g.cells[y*g.w].style
		flush := func() {
			b.WriteString(c.style(runStyle, run.String()))
			run.Reset()
		}
		for x := 0; x < g.w; x++ {
			cl := g.cells[y*g.w+x]
			if cl.style != runStyle {
				flush()
				runStyle = cl.style
			}
			run.WriteRune(cl.r)
		}
		flush()
	}
	return b.String()
}

func (c Canvas) style(key, s string) string {
	if !c.Styled || key == "" || strings.TrimSpace(s) == "" && !strings.HasPrefix(key, "bar:") {
		return s
	}
	switch {
	case key == "axis":
		return styleAxis().Render(s)
	case key == "label":
		return styleRowLabel().Render(s)
	case strings.HasPrefix(key, "bar:"):
		return styleBarBlock(strings.TrimPrefix(key, "bar:")).Render(s)
	case strings.HasPrefix(key, "ms:"):
		return styleBar(strings.TrimPrefix(key, "ms:")).Render(s)
	}
	return s
}
