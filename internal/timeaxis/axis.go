package timeaxis

import (
	"fmt"
	"sort"
	"time"
)

// Range is a half-open [StartMS, EndMS) interval in unix milliseconds.
type Range struct {
	StartMS int64 `json:"startMs"`
	EndMS   int64 `json:"endMs"`
}

func (r Range) contains(ms int64) bool { return ms >= r.StartMS && ms < r.EndMS }

// Tick is one included slice of the axis. Ticks are contiguous in pixel space
// even when exclusions leave gaps between them in time.
type Tick struct {
	StartMS int64
	EndMS   int64
}

// Axis maps instants to pixel offsets. Excluded (non-working) time gets zero
// pixels: every tick receives an equal pixel share, and time inside a tick
// maps linearly.
//
// Reading direction is a presentation concern: RTL flips the coordinate at
// the boundary of Coord/Date and nowhere else.
type Axis struct {
	startMS int64
	endMS   int64
	width   float64
	rtl     bool

	ticks      []Tick
	exclusions []Range
	pxPerTick  float64
}

// Config describes an axis to build. TickDur slices the included time; a
// tick shorter than TickDur may appear where an exclusion cuts one short.
type Config struct {
	Start      time.Time
	End        time.Time
	TickDur    time.Duration
	WidthPx    float64
	RTL        bool
	Exclusions []Range
}

func New(cfg Config) (*Axis, error) {
	startMS := cfg.Start.UnixMilli()
	endMS := cfg.End.UnixMilli()
	if endMS <= startMS {
		return nil, fmt.Errorf("timeaxis: end %v not after start %v", cfg.End, cfg.Start)
	}
	if cfg.TickDur <= 0 {
		return nil, fmt.Errorf("timeaxis: non-positive tick duration %v", cfg.TickDur)
	}
	if cfg.WidthPx <= 0 {
		return nil, fmt.Errorf("timeaxis: non-positive width %v", cfg.WidthPx)
	}

	excl := append([]Range(nil), cfg.Exclusions...)
	sort.Slice(excl, func(i, j int) bool { return excl[i].StartMS < excl[j].StartMS })

	step := cfg.TickDur.Milliseconds()
	var ticks []Tick
	for t := startMS; t < endMS; {
		tickEnd := t + step
		if tickEnd > endMS {
			tickEnd = endMS
		}
		cur := Tick{StartMS: t, EndMS: tickEnd}
		// Carve the tick around exclusions; fragments keep their real time
		// extent but the pixel share is per emitted tick.
		carved := carve(cur, excl)
		ticks = append(ticks, carved...)
		t = tickEnd
	}
	if len(ticks) == 0 {
		return nil, fmt.Errorf("timeaxis: axis %v..%v fully excluded", cfg.Start, cfg.End)
	}

	return &Axis{
		startMS:    startMS,
		endMS:      endMS,
		width:      cfg.WidthPx,
		rtl:        cfg.RTL,
		ticks:      ticks,
		exclusions: excl,
		pxPerTick:  cfg.WidthPx / float64(len(ticks)),
	}, nil
}

func carve(t Tick, excl []Range) []Tick {
	out := []Tick{t}
	for _, ex := range excl {
		var next []Tick
		for _, tk := range out {
			if ex.EndMS <= tk.StartMS || ex.StartMS >= tk.EndMS {
				next = append(next, tk)
				continue
			}
			if ex.StartMS > tk.StartMS {
				next = append(next, Tick{StartMS: tk.StartMS, EndMS: ex.StartMS})
			}
			if ex.EndMS < tk.EndMS {
				next = append(next, Tick{StartMS: ex.EndMS, EndMS: tk.EndMS})
			}
		}
		out = next
	}
	return out
}

func (a *Axis) StartMS() int64 { return a.startMS }
func (a *Axis) EndMS() int64   { return a.endMS }
func (a *Axis) Width() float64 { return a.width }
func (a *Axis) RTL() bool      { return a.rtl }
func (a *Axis) Ticks() []Tick  { return a.ticks }
func (a *Axis) TickCount() int { return len(a.ticks) }

// Excluded reports whether ms falls inside a non-working range.
func (a *Axis) Excluded(ms int64) bool {
	for _, ex := range a.exclusions {
		if ex.contains(ms) {
			return true
		}
	}
	return false
}
