// Package viewport decides which rows and which time range are worth
// rendering: everything intersecting the visible region extended by a
// configurable buffer. The buffer absorbs scroll jitter at the boundaries;
// setting it to zero (or negative) disables the tolerance entirely, which
// export and snapshot modes use to get exactly the visible content.
package viewport

import "bandline/internal/timeaxis"

// RowPosition is one row's vertical bounding box in content coordinates.
type RowPosition struct {
	RowID  string
	Top    float64
	Height float64
}

func (r RowPosition) bottom() float64 { return r.Top + r.Height }

// Window is the date and pixel range currently considered in view, buffer
// included. A zero Window means "not yet computed"; callers must not confuse
// that with a deliberately unbuffered window, which still carries its pixel
// bounds.
type Window struct {
	StartMS int64
	EndMS   int64
	LeftPx  float64
	RightPx float64
}

// Contains reports whether a horizontal pixel extent intersects the window.
func (w Window) Contains(left, right float64) bool {
	return left < w.RightPx && right > w.LeftPx
}

// Virtualizer computes working sets from scroll state. Stateless apart from
// its buffer configuration.
type Virtualizer struct {
	// BufferPx extends the window on both sides. <= 0 disables buffering.
	BufferPx float64
}

// VisibleRows returns the ids of rows whose boxes intersect the buffered
// vertical range [scrollTop-buffer, scrollTop+viewportH+buffer], preserving
// input order.
func (v Virtualizer) VisibleRows(scrollTop, viewportH float64, rows []RowPosition) []string {
	top := scrollTop
	bottom := scrollTop + viewportH
	if v.BufferPx > 0 {
		top -= v.BufferPx
		bottom += v.BufferPx
	}
	var out []string
	for _, r := range rows {
		if r.Top < bottom && r.bottom() > top {
			out = append(out, r.RowID)
		}
	}
	return out
}

// VisibleWindow computes the buffered horizontal window for the current
// scroll offset, in both pixel and date space. Pixel bounds are clamped to
// the axis extent; the date bounds come from the exclusion-aware inverse
// mapping, widened outward (floor on the left, ceil on the right) so no
// event intersecting the pixel range is missed.
func (v Virtualizer) VisibleWindow(scrollLeft, viewportW float64, axis *timeaxis.Axis) Window {
	left := scrollLeft
	right := scrollLeft + viewportW
	if v.BufferPx > 0 {
		left -= v.BufferPx
		right += v.BufferPx
	}
	if left < 0 {
		left = 0
	}
	if right > axis.Width() {
		right = axis.Width()
	}
	if right < left {
		right = left
	}
	w := Window{LeftPx: left, RightPx: right}
	if axis.RTL() {
		// The mapper flips at its boundary; the left pixel edge is the later
		// date on an RTL axis.
		w.StartMS = axis.Date(right, timeaxis.RoundFloor)
		w.EndMS = axis.Date(left, timeaxis.RoundCeil)
	} else {
		w.StartMS = axis.Date(left, timeaxis.RoundFloor)
		w.EndMS = axis.Date(right, timeaxis.RoundCeil)
	}
	return w
}
