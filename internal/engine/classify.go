package engine

import "bandline/internal/model"

// ActionKind is the classifier's verdict for one store change.
type ActionKind int

const (
	// ActionNone: the change cannot affect geometry or rendering.
	ActionNone ActionKind = iota
	// ActionTargeted: invalidate and re-render the listed rows.
	ActionTargeted
	// ActionDeferred: invalidate the listed rows now, but hold the re-render
	// until the surrounding batch commits.
	ActionDeferred
	// ActionFull: invalidate everything and re-render unconditionally.
	ActionFull
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionTargeted:
		return "targeted"
	case ActionDeferred:
		return "deferred"
	case ActionFull:
		return "full"
	}
	return "unknown"
}

// RenderAction pairs a verdict with the affected rows (Targeted/Deferred
// only). A Targeted action with no rows still requests a render pass; the
// batch-commit signal classifies that way.
type RenderAction struct {
	Kind   ActionKind
	RowIDs []string
}

// Event fields whose change moves or resizes bars, or reorders band packing.
// Name participates because it is a packing sort key.
var eventGeometryFields = []string{"startMs", "endMs", "resourceId", "name"}

// Event fields that repaint a bar without relayout. Still Targeted: the row
// must re-render even though its band assignment is unchanged.
var eventVisualFields = []string{"color"}

// Resource fields that change the row's layout result.
var resourceLayoutFields = []string{"layout", "archived"}

// Classifier turns store changes into render actions. It tracks batch depth:
// while a batch is open the store may emit several related changes before its
// own consistency pass completes, so per-row invalidations are deferred
// rather than rendered between them. Classifier is not safe for concurrent
// use; it belongs to the orchestrator's single logical thread.
type Classifier struct {
	batchDepth int
}

// InBatch reports whether a batch is currently open.
func (c *Classifier) InBatch() bool { return c.batchDepth > 0 }

// Classify maps one change to a render action. The switch is exhaustive over
// the model.StoreChange variants; an unknown variant (a programming error)
// classifies as Full so the screen can never go stale silently.
func (c *Classifier) Classify(ch model.StoreChange) RenderAction {
	switch ch := ch.(type) {
	case model.AddEvents:
		return c.targeted(eventRows(ch.Events, nil))
	case model.RemoveEvents:
		return c.targeted(eventRows(ch.Events, nil))
	case model.UpdateEvents:
		if !ch.Delta.HasAny(eventGeometryFields...) && !ch.Delta.HasAny(eventVisualFields...) {
			return RenderAction{Kind: ActionNone}
		}
		return c.targeted(eventRows(ch.Events, ch.PrevResourceIDs))
	case model.AddResources:
		return c.targeted(resourceRows(ch.Resources))
	case model.RemoveResources:
		return c.targeted(resourceRows(ch.Resources))
	case model.UpdateResources:
		if !ch.Delta.HasAny(resourceLayoutFields...) {
			return RenderAction{Kind: ActionNone}
		}
		return c.targeted(resourceRows(ch.Resources))
	case model.FilterChange:
		return RenderAction{Kind: ActionFull}
	case model.DatasetReplace:
		return RenderAction{Kind: ActionFull}
	case model.BatchStart:
		c.batchDepth++
		return RenderAction{Kind: ActionNone}
	case model.BatchCommit:
		if c.batchDepth > 0 {
			c.batchDepth--
		}
		if c.batchDepth > 0 {
			return RenderAction{Kind: ActionNone}
		}
		// Outermost commit: flush whatever was deferred.
		return RenderAction{Kind: ActionTargeted}
	}
	return RenderAction{Kind: ActionFull}
}

func (c *Classifier) targeted(rows []string) RenderAction {
	if len(rows) == 0 {
		return RenderAction{Kind: ActionNone}
	}
	if c.batchDepth > 0 {
		return RenderAction{Kind: ActionDeferred, RowIDs: rows}
	}
	return RenderAction{Kind: ActionTargeted, RowIDs: rows}
}

// eventRows collects the owning rows of the given events, including prior
// rows for events that moved between resources. Deduplicated, input order.
func eventRows(events []model.Event, prev map[string]string) []string {
	seen := make(map[string]bool, len(events))
	var out []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, e := range events {
		add(e.ResourceID)
		add(prev[e.ID])
	}
	return out
}

func resourceRows(resources []model.Resource) []string {
	out := make([]string, 0, len(resources))
	for _, r := range resources {
		out = append(out, r.ID)
	}
	return out
}
