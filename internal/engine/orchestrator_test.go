package engine

import (
	"testing"
	"time"

	"bandline/internal/layout"
	"bandline/internal/model"
	"bandline/internal/timeaxis"
)

type fakeSource struct {
	resources []model.Resource
	spans     map[string][]model.Span
	// spanCalls counts layout data fetches per row.
	spanCalls map[string]int
}

func (f *fakeSource) Resources() []model.Resource { return f.resources }

func (f *fakeSource) ResourceByID(id string) (model.Resource, bool) {
	for _, r := range f.resources {
		if r.ID == id {
			return r, true
		}
	}
	return model.Resource{}, false
}

func (f *fakeSource) SpansForRow(rowID string) []model.Span {
	if f.spanCalls != nil {
		f.spanCalls[rowID]++
	}
	return f.spans[rowID]
}

func engineAxis(t *testing.T) *timeaxis.Axis {
	t.Helper()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	a, err := timeaxis.New(timeaxis.Config{
		Start:   start,
		End:     start.Add(10 * time.Hour),
		TickDur: time.Hour,
		WidthPx: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func hours(a *timeaxis.Axis, h float64) int64 {
	return a.StartMS() + int64(h*3600_000)
}

func newTestOrchestrator(t *testing.T, src *fakeSource, bufferPx float64) *Orchestrator {
	t.Helper()
	g := layout.DefaultGeometry()
	g.BandHeight = 10
	o, err := NewOrchestrator(Options{
		Source:   src,
		Axis:     engineAxis(t),
		Geometry: g,
		BufferPx: bufferPx,
	})
	if err != nil {
		t.Fatal(err)
	}
	o.SetViewport(ViewportState{Width: 1000, Height: 100})
	return o
}

func twoRowSource(a *timeaxis.Axis) *fakeSource {
	return &fakeSource{
		resources: []model.Resource{{ID: "r1", Name: "Rig 1"}, {ID: "r2", Name: "Rig 2"}},
		spans: map[string][]model.Span{
			"r1": {
				{ID: "e1", RowID: "r1", Name: "e1", StartMS: hours(a, 1), EndMS: hours(a, 3)},
				{ID: "e2", RowID: "r1", Name: "e2", StartMS: hours(a, 2), EndMS: hours(a, 4)},
			},
			"r2": {
				{ID: "e3", RowID: "r2", Name: "e3", StartMS: hours(a, 5), EndMS: hours(a, 6)},
			},
		},
		spanCalls: map[string]int{},
	}
}

func TestFrame_RendersVisibleRowsWithEvents(t *testing.T) {
	a := engineAxis(t)
	src := twoRowSource(a)
	o := newTestOrchestrator(t, src, 0)

	o.Frame()
	tree := o.Tree()
	if len(tree.Roots()) != 2 {
		t.Fatalf("roots: got %d want 2 rows", len(tree.Roots()))
	}
	if _, ok := tree.Find("evt:e1"); !ok {
		t.Fatalf("e1 should be rendered")
	}
	// r1 has two overlapping events: two bands tall.
	row, _ := tree.Find("row:r1")
	if row.Box.Height != 20 {
		t.Fatalf("r1 height: got %v want 20", row.Box.Height)
	}
}

func TestFrame_SecondFrameIsChurnFree(t *testing.T) {
	a := engineAxis(t)
	src := twoRowSource(a)
	o := newTestOrchestrator(t, src, 0)

	o.Frame()
	acts := countActions(o.Frame())
	if acts[SyncCreate] != 0 || acts[SyncRelease] != 0 {
		t.Fatalf("unchanged frame must be churn-free, got %v", acts)
	}
}

func TestFrame_EventOutsideWindowExcludedWithoutBuffer(t *testing.T) {
	a := engineAxis(t)
	src := twoRowSource(a)
	o := newTestOrchestrator(t, src, 0)

	// e3 spans hours 5..6 => px 500..600. Viewport shows px 0..400.
	o.SetViewport(ViewportState{Width: 400, Height: 100})
	o.Frame()
	if _, ok := o.Tree().Find("evt:e3"); ok {
		t.Fatalf("buffer=0: event at px 500 must be excluded from a 0..400 window")
	}

	// Same scroll with a 200px buffer pulls it in.
	buffered := newTestOrchestrator(t, twoRowSource(a), 200)
	buffered.SetViewport(ViewportState{Width: 400, Height: 100})
	buffered.Frame()
	if _, ok := buffered.Tree().Find("evt:e3"); !ok {
		t.Fatalf("buffer=200: event at px 500 must be included")
	}
}

func TestFrame_OffscreenRowsPayNoLayoutCost(t *testing.T) {
	a := engineAxis(t)
	src := twoRowSource(a)
	o := newTestOrchestrator(t, src, 0)

	// Viewport of 10px shows only r1 (20px tall once computed, default 10
	// before that).
	o.SetViewport(ViewportState{Width: 1000, Height: 5})
	o.Frame()
	if src.spanCalls["r2"] != 0 {
		t.Fatalf("off-screen row r2 must not be laid out, calls=%d", src.spanCalls["r2"])
	}
}

func TestApply_TargetedInvalidatesOnlyOwningRow(t *testing.T) {
	a := engineAxis(t)
	src := twoRowSource(a)
	o := newTestOrchestrator(t, src, 0)
	o.Frame()
	r1Before, _ := o.cache.Get("r1")
	r2Before, _ := o.cache.Get("r2")

	o.Apply(model.UpdateEvents{
		Events: []model.Event{{ID: "e1", ResourceID: "r1"}},
		Delta:  model.FieldDelta{"endMs": {}},
	})
	if !o.NeedsFrame() {
		t.Fatalf("targeted change must request a frame")
	}
	o.Frame()
	if r1After, _ := o.cache.Get("r1"); r1After == r1Before {
		t.Fatalf("r1 must recompute after targeted invalidation")
	}
	if r2After, _ := o.cache.Get("r2"); r2After != r2Before {
		t.Fatalf("r2 must keep its cached entry")
	}
}

func TestApply_TargetedThenFullCoalescesIntoOneFullPass(t *testing.T) {
	a := engineAxis(t)
	src := twoRowSource(a)
	o := newTestOrchestrator(t, src, 0)
	o.Frame()

	o.Apply(model.UpdateEvents{
		Events: []model.Event{{ID: "e1", ResourceID: "r1"}},
		Delta:  model.FieldDelta{"startMs": {}},
	})
	o.Apply(model.DatasetReplace{})
	if !o.FullInvalidationPending() {
		t.Fatalf("full must supersede targeted")
	}
	if rows := o.PendingRows(); len(rows) != 0 {
		t.Fatalf("full supersedes the targeted union, pending=%v", rows)
	}
	// Dataset replacement deletes rather than marks: band identity does not
	// carry across datasets.
	if o.cache.Len() != 0 {
		t.Fatalf("dataset replace must clear the cache, len=%d", o.cache.Len())
	}

	o.Frame()
	for _, row := range []string{"r1", "r2"} {
		entry, ok := o.cache.Get(row)
		if !ok || entry.Stale() {
			t.Fatalf("row %s: next frame must recompute every row", row)
		}
	}
}

func TestApply_DeferredHoldsRenderUntilCommit(t *testing.T) {
	a := engineAxis(t)
	src := twoRowSource(a)
	o := newTestOrchestrator(t, src, 0)
	o.Frame()

	o.Apply(model.BatchStart{})
	o.Apply(model.AddEvents{Events: []model.Event{{ID: "e9", ResourceID: "r2"}}})
	if o.NeedsFrame() {
		t.Fatalf("deferred change must not request a frame mid-batch")
	}
	if rows := o.PendingRows(); len(rows) != 1 || rows[0] != "r2" {
		t.Fatalf("pending rows: got %v want [r2]", rows)
	}

	o.Apply(model.BatchCommit{})
	if !o.NeedsFrame() {
		t.Fatalf("commit must flush the deferred render")
	}
}

func TestApply_NoneChangeRequestsNothing(t *testing.T) {
	a := engineAxis(t)
	o := newTestOrchestrator(t, twoRowSource(a), 0)
	o.Frame()

	o.Apply(model.UpdateEvents{
		Events: []model.Event{{ID: "e1", ResourceID: "r1"}},
		Delta:  model.FieldDelta{"note": {}},
	})
	if o.NeedsFrame() {
		t.Fatalf("a non-geometry update must be a render no-op")
	}
}

func TestFrame_ReentrantTriggerQueuesNextFrame(t *testing.T) {
	a := engineAxis(t)
	src := twoRowSource(a)
	o := newTestOrchestrator(t, src, 0)

	frames := 0
	o.OnSync(func([]SyncResult) {
		frames++
		if frames == 1 {
			// Listener mutating scroll mid-pass: must coalesce into the next
			// frame, not recurse.
			o.SetScroll(ScrollState{Top: 0, Left: 5})
		}
	})
	o.Frame()
	if frames != 1 {
		t.Fatalf("re-entrant trigger must not run a nested pass, frames=%d", frames)
	}
	if !o.NeedsFrame() {
		t.Fatalf("the re-entrant trigger must leave a frame queued")
	}
	o.Frame()
	if frames != 2 {
		t.Fatalf("queued frame should run on the next call, frames=%d", frames)
	}
}

func TestFrame_VanishedRowIsSkippedNotFatal(t *testing.T) {
	a := engineAxis(t)
	src := twoRowSource(a)
	o := newTestOrchestrator(t, src, 0)
	o.Frame()

	// Row disappears from the store without a notification reaching us yet.
	src.resources = src.resources[:1]
	o.Apply(model.DatasetReplace{})
	o.Frame()
	if _, ok := o.Tree().Find("row:r2"); ok {
		t.Fatalf("vanished row must drop out of the tree")
	}
	if _, ok := o.Tree().Find("row:r1"); !ok {
		t.Fatalf("surviving rows must still render")
	}
}

func TestTimeSpanRenderData(t *testing.T) {
	a := engineAxis(t)
	src := twoRowSource(a)
	o := newTestOrchestrator(t, src, 0)

	s := src.spans["r1"][0]
	p := o.TimeSpanRenderData(s, "r1", false)
	if p == nil {
		t.Fatalf("expected render data for an on-axis span")
	}
	if p.Left != 100 || p.Width != 200 {
		t.Fatalf("placement: got left=%v width=%v", p.Left, p.Width)
	}

	offAxis := model.Span{ID: "zz", RowID: "r1", StartMS: hours(a, -5), EndMS: hours(a, -4)}
	if p := o.TimeSpanRenderData(offAxis, "r1", false); p != nil {
		t.Fatalf("off-axis span without includeOutside must be nil")
	}
	if p := o.TimeSpanRenderData(offAxis, "r1", true); p == nil || p.Left != 0 {
		t.Fatalf("off-axis span with includeOutside should clamp to the edge, got %+v", p)
	}
	if o.TimeSpanRenderData(s, "ghost", false) != nil {
		t.Fatalf("unknown row must yield nil")
	}
}

func TestRowPositions_StackHeightsAccumulate(t *testing.T) {
	a := engineAxis(t)
	src := twoRowSource(a)
	o := newTestOrchestrator(t, src, 0)
	o.Frame()

	rows := o.RowPositions()
	if len(rows) != 2 {
		t.Fatalf("rows: got %d", len(rows))
	}
	// r1 is two bands of 10px; r2 starts below it.
	if rows[0].Height != 20 || rows[1].Top != 20 {
		t.Fatalf("positions: got %+v", rows)
	}
}
