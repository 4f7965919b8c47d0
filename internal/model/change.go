package model

// StoreChange is a closed set of data-change notifications emitted by the
// store. The render engine classifies these with an exhaustive type switch;
// adding a variant here must be mirrored there.
type StoreChange interface{ storeChange() }

// FieldChange records one field's old and new value in an update.
type FieldChange struct {
	Old any `json:"old,omitempty"`
	New any `json:"new,omitempty"`
}

// FieldDelta maps changed field names to their old/new values.
type FieldDelta map[string]FieldChange

// HasAny reports whether any of the given fields changed.
func (d FieldDelta) HasAny(fields ...string) bool {
	for _, f := range fields {
		if _, ok := d[f]; ok {
			return true
		}
	}
	return false
}

type AddEvents struct{ Events []Event }

type RemoveEvents struct{ Events []Event }

// UpdateEvents carries the updated records plus the per-record field delta.
// PrevResourceIDs holds the prior owning resource for events that moved rows,
// keyed by event id; both the old and new row need invalidation then.
type UpdateEvents struct {
	Events          []Event
	Delta           FieldDelta
	PrevResourceIDs map[string]string
}

type AddResources struct{ Resources []Resource }

type RemoveResources struct{ Resources []Resource }

type UpdateResources struct {
	Resources []Resource
	Delta     FieldDelta
}

// FilterChange signals that the set of visible events changed for reasons the
// store cannot attribute to specific rows.
type FilterChange struct{}

// DatasetReplace signals a wholesale dataset swap; cached band indexes from
// the old dataset are meaningless afterwards.
type DatasetReplace struct{}

// BatchStart opens a multi-change batch: the store will emit several related
// changes before its own consistency pass completes, and rendering in between
// would show transient invalid state.
type BatchStart struct{}

// BatchCommit closes the batch opened by BatchStart.
type BatchCommit struct{}

func (AddEvents) storeChange()       {}
func (RemoveEvents) storeChange()    {}
func (UpdateEvents) storeChange()    {}
func (AddResources) storeChange()    {}
func (RemoveResources) storeChange() {}
func (UpdateResources) storeChange() {}
func (FilterChange) storeChange()    {}
func (DatasetReplace) storeChange()  {}
func (BatchStart) storeChange()      {}
func (BatchCommit) storeChange()     {}
