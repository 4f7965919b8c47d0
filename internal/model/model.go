package model

import "time"

// LayoutMode selects how overlapping events on a resource are resolved.
type LayoutMode string

const (
	// LayoutStack gives every overlapping event its own band; the row grows.
	LayoutStack LayoutMode = "stack"
	// LayoutPack squeezes all events into one band, splitting the band height
	// between events that overlap in time.
	LayoutPack LayoutMode = "pack"
)

type Resource struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Layout   LayoutMode `json:"layout,omitempty"`
	Archived bool       `json:"archived"`
}

type Event struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resourceId"`
	Name       string    `json:"name"`
	StartMS    int64     `json:"startMs"`
	EndMS      int64     `json:"endMs"`
	Color      string    `json:"color,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Milestone reports whether the event is zero-duration. Milestones take part
// in band packing as points and are rendered with a synthesized minimum width.
func (e Event) Milestone() bool { return e.StartMS == e.EndMS }

// Span is the immutable temporal view of an event used by the layout engine.
// EndMS >= StartMS always; the store normalizes inverted ranges on write.
type Span struct {
	ID      string
	RowID   string
	Name    string
	StartMS int64
	EndMS   int64
}

func (s Span) Milestone() bool { return s.StartMS == s.EndMS }

// Overlaps reports whether two spans share at least one instant. Touching
// ranges ([0,10] and [10,20]) do not overlap. Two milestones at the same
// instant do overlap.
func (s Span) Overlaps(o Span) bool {
	if s.Milestone() && o.Milestone() {
		return s.StartMS == o.StartMS
	}
	if s.Milestone() {
		return s.StartMS >= o.StartMS && s.StartMS < o.EndMS
	}
	if o.Milestone() {
		return o.StartMS >= s.StartMS && o.StartMS < s.EndMS
	}
	return s.StartMS < o.EndMS && o.StartMS < s.EndMS
}

func (e Event) Span() Span {
	return Span{ID: e.ID, RowID: e.ResourceID, Name: e.Name, StartMS: e.StartMS, EndMS: e.EndMS}
}

type Dataset struct {
	Version   int        `json:"version"`
	Resources []Resource `json:"resources"`
	Events    []Event    `json:"events"`
}
