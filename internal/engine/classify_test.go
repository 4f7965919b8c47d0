package engine

import (
	"testing"

	"bandline/internal/model"
)

func TestClassify_AddRemoveEventsTargetOwningRows(t *testing.T) {
	var c Classifier
	got := c.Classify(model.AddEvents{Events: []model.Event{
		{ID: "e1", ResourceID: "r1"},
		{ID: "e2", ResourceID: "r2"},
		{ID: "e3", ResourceID: "r1"},
	}})
	if got.Kind != ActionTargeted {
		t.Fatalf("kind: got %v want targeted", got.Kind)
	}
	if len(got.RowIDs) != 2 || got.RowIDs[0] != "r1" || got.RowIDs[1] != "r2" {
		t.Fatalf("rows: got %v want [r1 r2]", got.RowIDs)
	}

	got = c.Classify(model.RemoveEvents{Events: []model.Event{{ID: "e1", ResourceID: "r1"}}})
	if got.Kind != ActionTargeted || len(got.RowIDs) != 1 {
		t.Fatalf("remove: got %+v", got)
	}
}

func TestClassify_NonGeometryUpdateIsNone(t *testing.T) {
	var c Classifier
	got := c.Classify(model.UpdateEvents{
		Events: []model.Event{{ID: "e1", ResourceID: "r1"}},
		Delta:  model.FieldDelta{"note": {Old: "a", New: "b"}},
	})
	if got.Kind != ActionNone {
		t.Fatalf("ordering-only change: got %v want none", got.Kind)
	}
}

func TestClassify_GeometryUpdateTargetsRow(t *testing.T) {
	var c Classifier
	for _, field := range []string{"startMs", "endMs", "resourceId", "name", "color"} {
		got := c.Classify(model.UpdateEvents{
			Events: []model.Event{{ID: "e1", ResourceID: "r1"}},
			Delta:  model.FieldDelta{field: {}},
		})
		if got.Kind != ActionTargeted {
			t.Fatalf("field %s: got %v want targeted", field, got.Kind)
		}
	}
}

func TestClassify_EventMoveTargetsBothRows(t *testing.T) {
	var c Classifier
	got := c.Classify(model.UpdateEvents{
		Events:          []model.Event{{ID: "e1", ResourceID: "r2"}},
		Delta:           model.FieldDelta{"resourceId": {Old: "r1", New: "r2"}},
		PrevResourceIDs: map[string]string{"e1": "r1"},
	})
	if len(got.RowIDs) != 2 {
		t.Fatalf("move must invalidate old and new row, got %v", got.RowIDs)
	}
}

func TestClassify_BatchDefersTargetedUntilCommit(t *testing.T) {
	var c Classifier
	if got := c.Classify(model.BatchStart{}); got.Kind != ActionNone {
		t.Fatalf("batch start: got %v", got.Kind)
	}
	got := c.Classify(model.AddEvents{Events: []model.Event{{ID: "e1", ResourceID: "r1"}}})
	if got.Kind != ActionDeferred {
		t.Fatalf("in-batch change: got %v want deferred", got.Kind)
	}
	got = c.Classify(model.BatchCommit{})
	if got.Kind != ActionTargeted || len(got.RowIDs) != 0 {
		t.Fatalf("commit must flush with a bare targeted action, got %+v", got)
	}
	// Post-commit changes are live again.
	got = c.Classify(model.AddEvents{Events: []model.Event{{ID: "e2", ResourceID: "r1"}}})
	if got.Kind != ActionTargeted {
		t.Fatalf("after commit: got %v want targeted", got.Kind)
	}
}

func TestClassify_NestedBatchesFlushOnOutermostCommit(t *testing.T) {
	var c Classifier
	c.Classify(model.BatchStart{})
	c.Classify(model.BatchStart{})
	if got := c.Classify(model.BatchCommit{}); got.Kind != ActionNone {
		t.Fatalf("inner commit must not flush, got %v", got.Kind)
	}
	if !c.InBatch() {
		t.Fatalf("still inside outer batch")
	}
	if got := c.Classify(model.BatchCommit{}); got.Kind != ActionTargeted {
		t.Fatalf("outer commit must flush, got %v", got.Kind)
	}
}

func TestClassify_StructuralChangesAreFull(t *testing.T) {
	var c Classifier
	if got := c.Classify(model.FilterChange{}); got.Kind != ActionFull {
		t.Fatalf("filter change: got %v", got.Kind)
	}
	if got := c.Classify(model.DatasetReplace{}); got.Kind != ActionFull {
		t.Fatalf("dataset replace: got %v", got.Kind)
	}
}

func TestClassify_ResourceRenameIsNone(t *testing.T) {
	var c Classifier
	got := c.Classify(model.UpdateResources{
		Resources: []model.Resource{{ID: "r1"}},
		Delta:     model.FieldDelta{"name": {}},
	})
	if got.Kind != ActionNone {
		t.Fatalf("resource rename: got %v want none", got.Kind)
	}
	got = c.Classify(model.UpdateResources{
		Resources: []model.Resource{{ID: "r1"}},
		Delta:     model.FieldDelta{"layout": {Old: "stack", New: "pack"}},
	})
	if got.Kind != ActionTargeted {
		t.Fatalf("layout mode change: got %v want targeted", got.Kind)
	}
}
