package layout

import (
	"math"
	"os"

	"bandline/internal/model"
	"bandline/internal/timeaxis"
)

// Geometry holds the vertical metrics and width clamps used to turn band
// assignments into pixel boxes.
type Geometry struct {
	BandHeight float64
	BandMargin float64
	EdgeMargin float64
	// MilestoneWidth is the synthesized display width for zero-duration
	// events.
	MilestoneWidth float64
	// MaxBarWidth truncates extremely wide bars; a rendering-engine limit,
	// not a layout invariant.
	MaxBarWidth float64
}

func DefaultGeometry() Geometry {
	return Geometry{
		BandHeight:     1,
		BandMargin:     0,
		EdgeMargin:     0,
		MilestoneWidth: 1,
		MaxBarWidth:    8000,
	}
}

// RowHeight is the deterministic height for a band count under g. It depends
// on placements only, never on scroll state.
func (g Geometry) RowHeight(bands int) float64 {
	if bands < 1 {
		bands = 1
	}
	return float64(bands)*g.BandHeight + float64(bands-1)*g.BandMargin + 2*g.EdgeMargin
}

// Placement is one span's computed pixel box within its row. Left/Width are
// axis coordinates; Top/Height are row-relative. ClippedStart/ClippedEnd
// mark spans whose dates run past the axis range and were clamped to it.
type Placement struct {
	SpanID       string
	Left         float64
	Width        float64
	Top          float64
	Height       float64
	Band         int
	ClippedStart bool
	ClippedEnd   bool
}

func (p Placement) Right() float64 { return p.Left + p.Width }

// RowLayout is the cached layout result for one row.
type RowLayout struct {
	RowID         string
	Placements    []Placement
	RowHeight     float64
	BandsRequired int

	invalid bool
}

// Stale reports whether the entry has been invalidated and awaits recompute.
// A stale entry is still renderable; it just reflects pre-mutation data.
func (l *RowLayout) Stale() bool { return l.invalid }

// debugAsserts makes invariant violations loud instead of clamped.
var debugAsserts = os.Getenv("BANDLINE_DEBUG") != ""

// clampBox repairs NaN or negative geometry. These indicate an upstream
// programming error; in debug mode they panic, otherwise the box is pinned
// so corruption does not cascade visually.
func clampBox(p *Placement) {
	bad := math.IsNaN(p.Left) || math.IsNaN(p.Width) || math.IsNaN(p.Top) || math.IsNaN(p.Height) ||
		p.Width < 0 || p.Height < 0
	if !bad {
		return
	}
	if debugAsserts {
		panic("layout: invalid placement geometry for span " + p.SpanID)
	}
	if math.IsNaN(p.Left) {
		p.Left = 0
	}
	if math.IsNaN(p.Width) || p.Width < 0 {
		p.Width = 0
	}
	if math.IsNaN(p.Top) {
		p.Top = 0
	}
	if math.IsNaN(p.Height) || p.Height < 0 {
		p.Height = 0
	}
}

// ComputeRow lays out one row: horizontal boxes via the axis mapper, vertical
// boxes via the packing mode. Spans entirely outside the axis range yield no
// placement. The result is independent of scroll state.
func ComputeRow(axis *timeaxis.Axis, g Geometry, rowID string, mode model.LayoutMode, spans []model.Span) RowLayout {
	assign := PackStack(spans)
	if mode == model.LayoutPack {
		assign = PackOverlay(spans)
	}

	out := RowLayout{
		RowID:         rowID,
		BandsRequired: assign.BandsRequired,
	}
	if mode == model.LayoutPack {
		out.RowHeight = g.RowHeight(1)
	} else {
		out.RowHeight = g.RowHeight(assign.BandsRequired)
	}

	for _, s := range sortSpans(spans) {
		if s.EndMS < axis.StartMS() || s.StartMS > axis.EndMS() {
			continue
		}
		p, ok := placeSpan(axis, g, assign, s)
		if !ok {
			continue
		}
		clampBox(&p)
		out.Placements = append(out.Placements, p)
	}
	return out
}

func placeSpan(axis *timeaxis.Axis, g Geometry, assign BandAssignment, s model.Span) (Placement, bool) {
	opts := timeaxis.CoordOpts{RespectExclusion: true, SnapToNextIncluded: true}
	left, ok := axis.Coord(s.StartMS, opts)
	if !ok {
		return Placement{}, false
	}
	endOpts := opts
	endOpts.IsEnd = true
	right, ok := axis.Coord(s.EndMS, endOpts)
	if !ok {
		return Placement{}, false
	}
	// RTL axes hand back mirrored coordinates; normalize so Left is always
	// the smaller edge.
	if right < left {
		left, right = right, left
	}

	p := Placement{
		SpanID:       s.ID,
		Left:         left,
		Width:        right - left,
		Band:         assign.BandOf[s.ID],
		ClippedStart: s.StartMS < axis.StartMS(),
		ClippedEnd:   s.EndMS > axis.EndMS(),
	}
	if s.Milestone() && p.Width < g.MilestoneWidth {
		p.Width = g.MilestoneWidth
	}
	if g.MaxBarWidth > 0 && p.Width > g.MaxBarWidth {
		p.Width = g.MaxBarWidth
	}

	if slot, ok := assign.Frac[s.ID]; ok {
		p.Top = g.EdgeMargin + slot.Top*g.BandHeight
		p.Height = slot.Height * g.BandHeight
	} else {
		p.Top = g.EdgeMargin + float64(p.Band)*(g.BandHeight+g.BandMargin)
		p.Height = g.BandHeight
	}
	return p, true
}
