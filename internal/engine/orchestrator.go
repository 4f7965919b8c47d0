package engine

import (
	"fmt"
	"sort"

	"bandline/internal/layout"
	"bandline/internal/model"
	"bandline/internal/timeaxis"
	"bandline/internal/viewport"
)

// DataSource is the engine's view of the data layer. Lookups are synchronous;
// a row id that no longer resolves is an expected race with mutation and is
// skipped at render time, never fatal.
type DataSource interface {
	Resources() []model.Resource
	ResourceByID(id string) (model.Resource, bool)
	SpansForRow(rowID string) []model.Span
}

// ScrollState is the current scroll offset in content pixels.
type ScrollState struct {
	Top  float64
	Left float64
}

// ViewportState is the current viewport size in pixels.
type ViewportState struct {
	Width  float64
	Height float64
}

// Orchestrator drives render passes: it derives the working set from the
// virtualizer, fills the layout cache for visible rows, assembles element
// descriptors, and hands them to the reconciler. All state here belongs to a
// single logical thread of control (a UI loop); there are no locks because
// there must be no concurrent writers.
type Orchestrator struct {
	source DataSource
	axis   *timeaxis.Axis
	geom   layout.Geometry
	cache  *layout.Cache
	virt   viewport.Virtualizer
	class  *Classifier
	tree   *Tree

	scroll ScrollState
	view   ViewportState

	// pending is the union of row ids invalidated since the last pass; full
	// supersedes it wholesale.
	pending     map[string]bool
	full        bool
	needsRender bool

	// inFrame is the single-flight guard: a trigger arriving mid-pass must
	// schedule the next frame, not recurse into layout synchronously.
	inFrame     bool
	rerunQueued bool

	listeners []func([]SyncResult)
}

// Options configures a new Orchestrator.
type Options struct {
	Source   DataSource
	Axis     *timeaxis.Axis
	Geometry layout.Geometry
	BufferPx float64
}

func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("engine: nil data source")
	}
	if opts.Axis == nil {
		return nil, fmt.Errorf("engine: nil axis")
	}
	o := &Orchestrator{
		source:  opts.Source,
		axis:    opts.Axis,
		geom:    opts.Geometry,
		virt:    viewport.Virtualizer{BufferPx: opts.BufferPx},
		class:   &Classifier{},
		tree:    NewTree(),
		pending: make(map[string]bool),
	}
	o.cache = layout.NewCache(func(rowID string, mode model.LayoutMode, spans []model.Span) layout.RowLayout {
		return layout.ComputeRow(o.axis, o.geom, rowID, mode, spans)
	})
	return o, nil
}

// Tree exposes the retained element tree. Read-only between sync passes,
// except for retention flags set through Tree.SetRetain.
func (o *Orchestrator) Tree() *Tree { return o.tree }

// OnSync registers a listener for the results of each render pass.
func (o *Orchestrator) OnSync(fn func([]SyncResult)) {
	o.listeners = append(o.listeners, fn)
}

// Apply feeds one store change through the classifier and folds the verdict
// into the pending frame. Duplicate triggers within one frame collapse:
// last-write-wins on parameters, union on invalidated rows.
func (o *Orchestrator) Apply(ch model.StoreChange) {
	action := o.class.Classify(ch)
	switch action.Kind {
	case ActionNone:
		return
	case ActionTargeted:
		for _, id := range action.RowIDs {
			o.cache.Invalidate(id)
			o.pending[id] = true
		}
		o.requestRender()
	case ActionDeferred:
		// Invalidate now, render later: the commit signal will classify as
		// Targeted and flush the union.
		for _, id := range action.RowIDs {
			o.cache.Invalidate(id)
			o.pending[id] = true
		}
	case ActionFull:
		o.invalidateAll(ch)
		o.requestRender()
	}
}

func (o *Orchestrator) invalidateAll(ch model.StoreChange) {
	if _, replaced := ch.(model.DatasetReplace); replaced {
		// Band identity is meaningless across datasets; drop, don't mark.
		o.cache.Clear()
	} else {
		o.cache.InvalidateAll()
	}
	// Full supersedes any queued targeted work.
	o.pending = make(map[string]bool)
	o.full = true
}

// SetScroll updates the scroll offset and requests a frame.
func (o *Orchestrator) SetScroll(s ScrollState) {
	o.scroll = s
	o.requestRender()
}

// Scroll returns the current scroll offset.
func (o *Orchestrator) Scroll() ScrollState { return o.scroll }

// SetViewport updates the viewport size and requests a frame.
func (o *Orchestrator) SetViewport(v ViewportState) {
	o.view = v
	o.requestRender()
}

func (o *Orchestrator) requestRender() {
	if o.inFrame {
		o.rerunQueued = true
		return
	}
	o.needsRender = true
}

// NeedsFrame reports whether a render pass is due.
func (o *Orchestrator) NeedsFrame() bool { return o.needsRender }

// RowPositions lays rows out vertically from cached heights. Rows without a
// cache entry use the single-band default height; their real height lands on
// the first frame that brings them into view.
func (o *Orchestrator) RowPositions() []viewport.RowPosition {
	resources := o.source.Resources()
	out := make([]viewport.RowPosition, 0, len(resources))
	top := 0.0
	for _, r := range resources {
		if r.Archived {
			continue
		}
		h := o.geom.RowHeight(1)
		if entry, ok := o.cache.Get(r.ID); ok {
			h = entry.RowHeight
		}
		out = append(out, viewport.RowPosition{RowID: r.ID, Top: top, Height: h})
		top += h
	}
	return out
}

// Frame runs one render pass and returns its sync results. Re-entrant calls
// (a listener triggering layout from inside the pass) are converted into a
// queued next frame; the caller should loop while NeedsFrame reports true.
func (o *Orchestrator) Frame() []SyncResult {
	if o.inFrame {
		o.rerunQueued = true
		return nil
	}
	o.inFrame = true
	defer func() {
		o.inFrame = false
		o.needsRender = o.rerunQueued
		o.rerunQueued = false
	}()
	o.needsRender = false
	o.full = false
	o.pending = make(map[string]bool)

	window := o.virt.VisibleWindow(o.scroll.Left, o.view.Width, o.axis)
	rows := o.RowPositions()
	visible := o.virt.VisibleRows(o.scroll.Top, o.view.Height, rows)

	topOf := make(map[string]float64, len(rows))
	for _, r := range rows {
		topOf[r.RowID] = r.Top
	}

	descriptors := make([]Descriptor, 0, len(visible))
	for _, rowID := range visible {
		res, ok := o.source.ResourceByID(rowID)
		if !ok {
			// Stale reference: the row vanished between virtualization and
			// render. Skip the element, keep the pass alive.
			continue
		}
		spans := o.source.SpansForRow(rowID)
		entry := o.cache.ComputeIfInvalid(rowID, res.Layout, spans)
		descriptors = append(descriptors, o.rowDescriptor(res, entry, spans, topOf[rowID], window))
	}

	results := Sync(o.tree, descriptors)
	for _, fn := range o.listeners {
		fn(results)
	}
	return results
}

// rowDescriptor assembles one row element with its visible event children.
// Events filter against the window independently of the row: a tall row can
// be on screen while an event band of it is horizontally out of range.
func (o *Orchestrator) rowDescriptor(res model.Resource, entry *layout.RowLayout, rowSpans []model.Span, top float64, window viewport.Window) Descriptor {
	row := Descriptor{
		SyncID:    "row:" + res.ID,
		Shape:     "row",
		ClassName: "b-timeline-row",
		Box:       Box{Left: 0, Top: top, Width: o.axis.Width(), Height: entry.RowHeight},
		Dataset:   map[string]string{"rowId": res.ID},
	}
	spans := make(map[string]model.Span, len(rowSpans))
	for _, s := range rowSpans {
		spans[s.ID] = s
	}
	for _, p := range entry.Placements {
		if !window.Contains(p.Left, p.Right()) {
			continue
		}
		s, ok := spans[p.SpanID]
		if !ok {
			// Placement for an event the store no longer has; skip.
			continue
		}
		row.Children = append(row.Children, eventDescriptor(s, p, window))
	}
	return row
}

func eventDescriptor(s model.Span, p layout.Placement, window viewport.Window) Descriptor {
	shape := "bar"
	class := "b-timeline-event"
	if s.Milestone() {
		shape = "milestone"
		class = "b-timeline-milestone"
	}
	d := Descriptor{
		SyncID:    "evt:" + s.ID,
		Shape:     shape,
		ClassName: class,
		Box:       Box{Left: p.Left, Top: p.Top, Width: p.Width, Height: p.Height},
		Dataset: map[string]string{
			"eventId": s.ID,
			"name":    s.Name,
		},
	}
	if p.ClippedStart {
		d.Dataset["clippedStart"] = "true"
	}
	if p.ClippedEnd {
		d.Dataset["clippedEnd"] = "true"
	}
	if s.StartMS < window.StartMS {
		d.Dataset["startsOutsideView"] = "true"
	}
	if s.EndMS > window.EndMS {
		d.Dataset["endsOutsideView"] = "true"
	}
	return d
}

// TimeSpanRenderData computes a placement for one span on demand, for
// feature collaborators (drag, resize) that need geometry outside a render
// pass. Returns nil when the span has no on-axis geometry and includeOutside
// is false.
func (o *Orchestrator) TimeSpanRenderData(s model.Span, rowID string, includeOutside bool) *layout.Placement {
	res, ok := o.source.ResourceByID(rowID)
	if !ok {
		return nil
	}
	entry := o.cache.ComputeIfInvalid(rowID, res.Layout, o.source.SpansForRow(rowID))
	for i := range entry.Placements {
		if entry.Placements[i].SpanID == s.ID {
			p := entry.Placements[i]
			return &p
		}
	}
	if !includeOutside {
		return nil
	}
	// Off-axis spans get a clamped zero-width box at the nearest edge.
	px, _ := o.axis.Coord(s.StartMS, timeaxis.CoordOpts{RespectExclusion: true, SnapToNextIncluded: true})
	return &layout.Placement{SpanID: s.ID, Left: px, Width: 0, Height: o.geom.BandHeight}
}

// RefreshResources invalidates the given rows and requests a frame.
func (o *Orchestrator) RefreshResources(ids []string) {
	for _, id := range ids {
		o.cache.Invalidate(id)
		o.pending[id] = true
	}
	o.requestRender()
}

// ClearAll drops every cached layout and requests a full re-render.
func (o *Orchestrator) ClearAll() {
	o.cache.Clear()
	o.pending = make(map[string]bool)
	o.full = true
	o.requestRender()
}

// PendingRows returns the rows invalidated since the last pass, sorted for
// determinism. Diagnostic surface used by tests and the status footer.
func (o *Orchestrator) PendingRows() []string {
	out := make([]string, 0, len(o.pending))
	for id := range o.pending {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// FullInvalidationPending reports whether the next frame re-renders
// everything.
func (o *Orchestrator) FullInvalidationPending() bool { return o.full }
