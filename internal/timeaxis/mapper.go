package timeaxis

import (
	"math"
	"sort"
)

// CoordOpts controls date→coordinate conversion.
type CoordOpts struct {
	// IsEnd uses end-of-tick resolution: an instant sitting exactly on a tick
	// boundary resolves into the earlier tick. Use for event end dates so a
	// bar ending at a boundary does not bleed into the next tick.
	IsEnd bool
	// RespectExclusion maps through the tick list (excluded time collapses to
	// zero pixels). When false the conversion is plain linear interpolation
	// over the raw axis range.
	RespectExclusion bool
	// SnapToNextIncluded moves an instant that falls in an excluded gap to
	// the next included tick start (or, with IsEnd, back to the previous tick
	// end) instead of collapsing it onto the gap boundary pixel.
	SnapToNextIncluded bool
}

// Rounding selects how Date converts a fractional millisecond position.
type Rounding int

const (
	RoundFloor Rounding = iota
	RoundNearest
	RoundCeil
)

// Coord converts an instant to a pixel offset on the axis. ok is false when
// the instant lies outside the axis range and no snapping applies; out-of-
// range is an expected, frequent condition (events scrolled out of view) and
// never an error.
func (a *Axis) Coord(ms int64, opt CoordOpts) (float64, bool) {
	if ms < a.startMS || ms > a.endMS {
		if !opt.SnapToNextIncluded {
			return 0, false
		}
		if ms < a.startMS {
			ms = a.startMS
		} else {
			ms = a.endMS
		}
	}

	if !opt.RespectExclusion {
		frac := float64(ms-a.startMS) / float64(a.endMS-a.startMS)
		return a.orient(frac * a.width), true
	}

	idx, inside := a.tickIndex(ms, opt.IsEnd)
	if !inside {
		// ms sits in an excluded gap between tick idx-1 and tick idx. Both
		// gap boundaries share one pixel (gaps get zero width), so without
		// snapping the boundary coordinate is the best-effort answer.
		if opt.SnapToNextIncluded {
			if opt.IsEnd && idx > 0 {
				return a.orient(float64(idx) * a.pxPerTick), true
			}
			if idx >= len(a.ticks) {
				return a.orient(a.width), true
			}
			return a.orient(float64(idx) * a.pxPerTick), true
		}
		if idx >= len(a.ticks) {
			return a.orient(a.width), true
		}
		return a.orient(float64(idx) * a.pxPerTick), true
	}

	tk := a.ticks[idx]
	left := float64(idx) * a.pxPerTick
	span := tk.EndMS - tk.StartMS
	if span <= 0 {
		return a.orient(left), true
	}
	frac := float64(ms-tk.StartMS) / float64(span)
	return a.orient(left + frac*a.pxPerTick), true
}

// Date converts a pixel offset back to an instant. Out-of-range offsets clamp
// to the axis bounds; the conversion is always exclusion-aware (it inverts
// the tick mapping used for rendering).
func (a *Axis) Date(px float64, r Rounding) int64 {
	px = a.orient(px)
	if px <= 0 {
		return a.startMS
	}
	if px >= a.width {
		return a.endMS
	}
	idx := int(px / a.pxPerTick)
	if idx >= len(a.ticks) {
		idx = len(a.ticks) - 1
	}
	tk := a.ticks[idx]
	frac := (px - float64(idx)*a.pxPerTick) / a.pxPerTick
	ms := float64(tk.StartMS) + frac*float64(tk.EndMS-tk.StartMS)
	switch r {
	case RoundFloor:
		return int64(math.Floor(ms))
	case RoundCeil:
		return int64(math.Ceil(ms))
	default:
		return int64(math.Round(ms))
	}
}

// orient applies the reading direction. A pure sign flip at the boundary;
// nothing downstream of the mapper knows about RTL.
func (a *Axis) orient(px float64) float64 {
	if a.rtl {
		return a.width - px
	}
	return px
}

// tickIndex locates the tick containing ms. When ms falls in an excluded gap
// it returns (index of the next tick, false). IsEnd resolves exact boundary
// instants into the earlier tick.
func (a *Axis) tickIndex(ms int64, isEnd bool) (int, bool) {
	if len(a.ticks) == 0 {
		return 0, false
	}
	if isEnd {
		// Last tick with StartMS < ms.
		i := sort.Search(len(a.ticks), func(i int) bool { return a.ticks[i].StartMS >= ms })
		if i == 0 {
			return 0, a.ticks[0].StartMS == ms
		}
		i--
		if ms <= a.ticks[i].EndMS {
			return i, true
		}
		return i + 1, false
	}
	// First tick with EndMS > ms.
	i := sort.Search(len(a.ticks), func(i int) bool { return a.ticks[i].EndMS > ms })
	if i >= len(a.ticks) {
		last := a.ticks[len(a.ticks)-1]
		if last.EndMS == a.endMS && ms == a.endMS {
			return len(a.ticks) - 1, true
		}
		// Trailing excluded gap (an exclusion running up to the axis end):
		// there is no next tick, the gap boundary is the axis end.
		return len(a.ticks), false
	}
	if ms >= a.ticks[i].StartMS {
		return i, true
	}
	return i, false
}
