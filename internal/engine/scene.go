package engine

import "math"

// Box is an element's pixel geometry. Left/Top are parent-relative.
type Box struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Valid reports whether the box can be placed: no NaN, no negative extent.
func (b Box) Valid() bool {
	for _, v := range []float64{b.Left, b.Top, b.Width, b.Height} {
		if math.IsNaN(v) {
			return false
		}
	}
	return b.Width >= 0 && b.Height >= 0
}

// Descriptor declaratively describes one visual element for a sync pass.
// SyncID must be stable across recomputations of the same logical row/event
// so the reconciler can match old against new.
type Descriptor struct {
	SyncID    string
	Shape     string
	ClassName string
	Box       Box
	Dataset   map[string]string
	Children  []Descriptor
}

// Element is a retained visual element. The reconciler owns creation and
// release; everything else treats the tree as read-only between sync passes.
type Element struct {
	SyncID    string
	Shape     string
	ClassName string
	Box       Box
	Dataset   map[string]string
	Children  []*Element

	// Retain keeps the element alive through sync passes whose descriptor
	// list does not include it, until its owning feature releases it. Used
	// e.g. for a drag clone held across re-renders the drag does not drive.
	Retain bool
}

// Tree is the retained visual-element tree for one render target.
type Tree struct {
	roots []*Element
}

func NewTree() *Tree { return &Tree{} }

// Roots returns the current top-level elements in render order.
func (t *Tree) Roots() []*Element { return t.roots }

// Find locates an element by sync id anywhere in the tree.
func (t *Tree) Find(syncID string) (*Element, bool) {
	var walk func(els []*Element) (*Element, bool)
	walk = func(els []*Element) (*Element, bool) {
		for _, el := range els {
			if el.SyncID == syncID {
				return el, true
			}
			if found, ok := walk(el.Children); ok {
				return found, true
			}
		}
		return nil, false
	}
	return walk(t.roots)
}

// SetRetain flags or unflags an element for retention. Reports whether the
// element exists. Clearing the flag does not release the element; the next
// sync pass does.
func (t *Tree) SetRetain(syncID string, retain bool) bool {
	el, ok := t.Find(syncID)
	if !ok {
		return false
	}
	el.Retain = retain
	return true
}

// Len counts elements in the tree, retained ones included.
func (t *Tree) Len() int {
	var count func(els []*Element) int
	count = func(els []*Element) int {
		n := len(els)
		for _, el := range els {
			n += count(el.Children)
		}
		return n
	}
	return count(t.roots)
}
