package engine

import (
	"math"
	"testing"
)

func desc(id, shape string, left float64) Descriptor {
	return Descriptor{
		SyncID: id,
		Shape:  shape,
		Box:    Box{Left: left, Width: 10, Height: 1},
	}
}

func countActions(results []SyncResult) map[SyncAction]int {
	out := map[SyncAction]int{}
	for _, r := range results {
		out[r.Action]++
	}
	return out
}

func TestSync_CreatesThenIdempotent(t *testing.T) {
	tree := NewTree()
	ds := []Descriptor{desc("a", "bar", 0), desc("b", "bar", 20), desc("m", "milestone", 40)}

	first := countActions(Sync(tree, ds))
	if first[SyncCreate] != 3 {
		t.Fatalf("first pass: got %v, want 3 creates", first)
	}

	second := countActions(Sync(tree, ds))
	if second[SyncCreate] != 0 || second[SyncRelease] != 0 {
		t.Fatalf("second pass must be churn-free, got %v", second)
	}
	if second[SyncReuseOwn] != 3 {
		t.Fatalf("second pass: got %v, want 3 reuseOwn", second)
	}
}

func TestSync_PatchInPlacePreservesElementIdentity(t *testing.T) {
	tree := NewTree()
	Sync(tree, []Descriptor{desc("a", "bar", 0)})
	before, _ := tree.Find("a")

	moved := desc("a", "bar", 55)
	Sync(tree, []Descriptor{moved})
	after, _ := tree.Find("a")
	if before != after {
		t.Fatalf("same sync id must keep the same element")
	}
	if after.Box.Left != 55 {
		t.Fatalf("patched left: got %v want 55", after.Box.Left)
	}
}

func TestSync_OrphanOfSameShapeIsRepurposed(t *testing.T) {
	tree := NewTree()
	Sync(tree, []Descriptor{desc("old", "bar", 0)})
	orphaned, _ := tree.Find("old")

	results := Sync(tree, []Descriptor{desc("new", "bar", 30)})
	acts := countActions(results)
	if acts[SyncReuse] != 1 || acts[SyncCreate] != 0 {
		t.Fatalf("expected repurpose, got %v", acts)
	}
	repurposed, ok := tree.Find("new")
	if !ok || repurposed != orphaned {
		t.Fatalf("orphan should carry over under the new id")
	}
	if _, ok := tree.Find("old"); ok {
		t.Fatalf("old id must be gone")
	}
}

func TestSync_ShapeMismatchFallsBackToCreate(t *testing.T) {
	tree := NewTree()
	Sync(tree, []Descriptor{desc("x", "bar", 0)})
	old, _ := tree.Find("x")

	// Same sync id, now a milestone.
	results := Sync(tree, []Descriptor{desc("x", "milestone", 0)})
	acts := countActions(results)
	if acts[SyncCreate] != 1 || acts[SyncRelease] != 1 {
		t.Fatalf("shape mismatch: got %v, want 1 create + 1 release", acts)
	}
	now, _ := tree.Find("x")
	if now == old {
		t.Fatalf("mismatched element must not be force-reused")
	}
	if now.Shape != "milestone" {
		t.Fatalf("shape: got %q", now.Shape)
	}
}

func TestSync_ReleaseOnDisappearance(t *testing.T) {
	tree := NewTree()
	Sync(tree, []Descriptor{desc("a", "bar", 0), desc("b", "milestone", 10)})

	results := Sync(tree, []Descriptor{desc("a", "bar", 0)})
	acts := countActions(results)
	if acts[SyncRelease] != 1 {
		t.Fatalf("expected release of b, got %v", acts)
	}
	if _, ok := tree.Find("b"); ok {
		t.Fatalf("released element must leave the tree")
	}
}

func TestSync_RetainedElementSurvivesForeignPasses(t *testing.T) {
	tree := NewTree()
	Sync(tree, []Descriptor{desc("drag-clone", "bar", 0), desc("a", "bar", 10)})
	if !tree.SetRetain("drag-clone", true) {
		t.Fatalf("SetRetain should find the element")
	}
	el, _ := tree.Find("drag-clone")
	wantBox := el.Box

	// Two passes that do not mention the clone.
	for i := 0; i < 2; i++ {
		results := Sync(tree, []Descriptor{desc("a", "bar", 10)})
		for _, r := range results {
			if r.SyncID == "drag-clone" && r.Action != SyncNone {
				t.Fatalf("retained element got action %v", r.Action)
			}
		}
	}
	got, ok := tree.Find("drag-clone")
	if !ok {
		t.Fatalf("retained element must still be in the tree")
	}
	if got.Box != wantBox {
		t.Fatalf("retained element must reappear unmodified")
	}

	// Owner releases it: next pass drops it.
	tree.SetRetain("drag-clone", false)
	acts := countActions(Sync(tree, []Descriptor{desc("a", "bar", 10)}))
	if acts[SyncRelease] != 1 {
		t.Fatalf("after unretain: got %v, want 1 release", acts)
	}
}

func TestSync_InvalidGeometryIsSkippedNotFatal(t *testing.T) {
	tree := NewTree()
	bad := desc("bad", "bar", 0)
	bad.Box.Left = math.NaN()

	results := Sync(tree, []Descriptor{desc("a", "bar", 0), bad, desc("b", "bar", 20)})
	acts := countActions(results)
	if acts[SyncCreate] != 2 {
		t.Fatalf("good descriptors must render, got %v", acts)
	}
	if _, ok := tree.Find("bad"); ok {
		t.Fatalf("bad descriptor must be omitted from placement")
	}

	neg := desc("neg", "bar", 0)
	neg.Box.Width = -5
	Sync(tree, []Descriptor{neg})
	if _, ok := tree.Find("neg"); ok {
		t.Fatalf("negative extent must be omitted")
	}
}

func TestSync_ChildrenReconcileRecursively(t *testing.T) {
	tree := NewTree()
	row := desc("row:1", "row", 0)
	row.Children = []Descriptor{desc("evt:a", "bar", 5), desc("evt:b", "bar", 15)}
	Sync(tree, []Descriptor{row})
	if tree.Len() != 3 {
		t.Fatalf("tree size: got %d want 3", tree.Len())
	}

	row.Children = []Descriptor{desc("evt:a", "bar", 5)}
	acts := countActions(Sync(tree, []Descriptor{row}))
	if acts[SyncRelease] != 1 || acts[SyncReuseOwn] != 2 {
		t.Fatalf("child diff: got %v", acts)
	}
	if _, ok := tree.Find("evt:b"); ok {
		t.Fatalf("removed child must be released")
	}
}
