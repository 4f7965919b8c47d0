package layout

import "bandline/internal/model"

// ComputeFunc produces a fresh layout for a row. The cache calls it only on
// miss or after invalidation.
type ComputeFunc func(rowID string, mode model.LayoutMode, spans []model.Span) RowLayout

// Cache memoizes per-row layout results keyed by row id. Invalidation marks
// entries stale without deleting them, so a stale value stays readable until
// the row is recomputed; recomputation is deferred to the next read. Rows
// that never scroll into view therefore never pay layout cost.
//
// Keys are stable string ids, never live records: a record may be destroyed
// while its row is still visually retained, and the id keeps the entry
// addressable without aliasing the dead object.
type Cache struct {
	entries map[string]*RowLayout
	compute ComputeFunc
}

func NewCache(compute ComputeFunc) *Cache {
	return &Cache{
		entries: make(map[string]*RowLayout),
		compute: compute,
	}
}

// Get returns the entry for rowID if one exists, stale or not. Callers that
// only tolerate fresh entries should check Stale.
func (c *Cache) Get(rowID string) (*RowLayout, bool) {
	e, ok := c.entries[rowID]
	return e, ok
}

// Invalidate marks the row's entry stale. Unknown rows are a no-op; the
// entry appears lazily on first compute. Invalidating twice is the same as
// invalidating once.
func (c *Cache) Invalidate(rowID string) {
	if e, ok := c.entries[rowID]; ok {
		e.invalid = true
	}
}

// InvalidateAll marks every entry stale without discarding any of them.
func (c *Cache) InvalidateAll() {
	for _, e := range c.entries {
		e.invalid = true
	}
}

// Clear drops all entries. Only for dataset replacement: band indexes carry
// no identity across datasets, so stale values would be misleading there.
func (c *Cache) Clear() {
	c.entries = make(map[string]*RowLayout)
}

// Len reports the number of resident entries, stale included.
func (c *Cache) Len() int { return len(c.entries) }

// ComputeIfInvalid returns the cached entry, recomputing first when the row
// is absent or stale.
func (c *Cache) ComputeIfInvalid(rowID string, mode model.LayoutMode, spans []model.Span) *RowLayout {
	if e, ok := c.entries[rowID]; ok && !e.invalid {
		return e
	}
	fresh := c.compute(rowID, mode, spans)
	fresh.RowID = rowID
	fresh.invalid = false
	e := &fresh
	c.entries[rowID] = e
	return e
}
