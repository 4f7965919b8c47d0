package engine

// SyncAction describes what the reconciler did with one element.
type SyncAction int

const (
	// SyncCreate: no match existed; a new element was created.
	SyncCreate SyncAction = iota
	// SyncReuseOwn: the element with the same sync id was patched in place.
	// Cheapest path; preserves any state attached to the element.
	SyncReuseOwn
	// SyncReuse: an orphaned element of the same shape was repurposed for a
	// different sync id, avoiding destroy/create churn.
	SyncReuse
	// SyncRelease: the element's descriptor disappeared and it was removed.
	SyncRelease
	// SyncNone: the element was left untouched (retained through a pass its
	// owner did not drive).
	SyncNone
)

func (a SyncAction) String() string {
	switch a {
	case SyncCreate:
		return "create"
	case SyncReuseOwn:
		return "reuseOwnElement"
	case SyncReuse:
		return "reuseElement"
	case SyncRelease:
		return "release"
	case SyncNone:
		return "none"
	}
	return "unknown"
}

// SyncResult is one entry of a sync pass's outcome. Returning these instead
// of invoking ambient callbacks keeps reconciliation free of shared mutable
// context; the orchestrator forwards the list to listeners.
type SyncResult struct {
	Action SyncAction
	SyncID string
}

// Sync reconciles the descriptor list against the tree's root elements,
// creating, patching, repurposing, or releasing elements as needed. Child
// descriptors reconcile recursively against the matched element's children.
//
// Guarantees:
//   - Syncing the same list twice yields only reuseOwnElement the second
//     time: zero creates, zero releases.
//   - A descriptor with invalid geometry is skipped; the pass continues for
//     the rest (one bad row must not blank the whole timeline).
//   - A sync-id match with a different shape falls back to create rather
//     than corrupting the element's state through a forced reuse.
//   - Elements flagged Retain survive passes that do not mention them.
func Sync(t *Tree, descriptors []Descriptor) []SyncResult {
	var results []SyncResult
	t.roots = syncLevel(t.roots, descriptors, &results)
	return results
}

func syncLevel(existing []*Element, descriptors []Descriptor, results *[]SyncResult) []*Element {
	byID := make(map[string]*Element, len(existing))
	for _, el := range existing {
		byID[el.SyncID] = el
	}

	wanted := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		wanted[d.SyncID] = true
	}

	// Orphans: elements whose ids are gone from the new list. Candidates for
	// shape-compatible repurposing, in their previous render order.
	var orphans []*Element
	for _, el := range existing {
		if !wanted[el.SyncID] && !el.Retain {
			orphans = append(orphans, el)
		}
	}
	takeOrphan := func(shape string) (*Element, bool) {
		for i, el := range orphans {
			if el.Shape == shape {
				orphans = append(orphans[:i], orphans[i+1:]...)
				return el, true
			}
		}
		return nil, false
	}

	// handled marks elements already accounted for mid-walk: patched,
	// repurposed, or released on shape mismatch.
	handled := make(map[*Element]bool, len(existing))

	next := make([]*Element, 0, len(descriptors))
	for _, d := range descriptors {
		if !d.Box.Valid() {
			// Broken geometry is omitted from placement, never fatal.
			continue
		}
		if el, ok := byID[d.SyncID]; ok {
			if el.Shape == d.Shape {
				patch(el, d)
				el.Children = syncLevel(el.Children, d.Children, results)
				next = append(next, el)
				handled[el] = true
				*results = append(*results, SyncResult{Action: SyncReuseOwn, SyncID: d.SyncID})
				continue
			}
			// Same id, incompatible shape: forcing a reuse would corrupt the
			// element's state, so release it and create fresh below.
			handled[el] = true
			*results = append(*results, SyncResult{Action: SyncRelease, SyncID: el.SyncID})
		}
		if el, ok := takeOrphan(d.Shape); ok {
			el.SyncID = d.SyncID
			patch(el, d)
			el.Children = syncLevel(el.Children, d.Children, results)
			next = append(next, el)
			handled[el] = true
			*results = append(*results, SyncResult{Action: SyncReuse, SyncID: d.SyncID})
			continue
		}
		el := &Element{SyncID: d.SyncID, Shape: d.Shape}
		patch(el, d)
		el.Children = syncLevel(el.Children, d.Children, results)
		next = append(next, el)
		*results = append(*results, SyncResult{Action: SyncCreate, SyncID: d.SyncID})
	}

	// Leftovers: retained elements ride along untouched, the rest release.
	for _, el := range existing {
		if handled[el] {
			continue
		}
		if el.Retain {
			next = append(next, el)
			*results = append(*results, SyncResult{Action: SyncNone, SyncID: el.SyncID})
			continue
		}
		*results = append(*results, SyncResult{Action: SyncRelease, SyncID: el.SyncID})
	}
	return next
}

func patch(el *Element, d Descriptor) {
	el.ClassName = d.ClassName
	el.Box = d.Box
	if d.Dataset != nil {
		el.Dataset = d.Dataset
	}
}
