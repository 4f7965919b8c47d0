package store

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bandline/internal/model"
)

// Store is the in-memory dataset behind the timeline: resources, events, an
// optional visibility filter, and a change-notification stream. Mutations go
// through Store methods so every write emits exactly one StoreChange.
//
// Not safe for concurrent use: the store belongs to the UI loop's single
// logical thread, like everything downstream of it.
type Store struct {
	path string

	resources []model.Resource
	events    []model.Event

	// filter hides events without removing them. nil means everything shows.
	filter func(model.Event) bool

	subs       []func(model.StoreChange)
	batchDepth int
}

// Open loads a dataset file. ".sqlite"/".db" files read through the SQLite
// path; anything else is the JSON format. A missing file yields an empty
// store bound to that path.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if path == "" {
		return s, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}
	if isSQLitePath(path) {
		ds, err := loadSQLite(path)
		if err != nil {
			return nil, err
		}
		s.adopt(ds)
		return s, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", path, err)
	}
	var ds model.Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, fmt.Errorf("store: parse %s: %w", path, err)
	}
	s.adopt(ds)
	return s, nil
}

// New builds an in-memory store from a dataset, with no backing file.
func New(ds model.Dataset) *Store {
	s := &Store{}
	s.adopt(ds)
	return s
}

func isSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".db":
		return true
	}
	return false
}

func (s *Store) adopt(ds model.Dataset) {
	s.resources = ds.Resources
	s.events = ds.Events
	for i := range s.events {
		normalizeEvent(&s.events[i])
	}
}

// normalizeEvent repairs inverted ranges on write so EndMS >= StartMS holds
// everywhere downstream.
func normalizeEvent(e *model.Event) {
	if e.EndMS < e.StartMS {
		e.StartMS, e.EndMS = e.EndMS, e.StartMS
	}
}

// Save writes the dataset back to its path (atomic write-temp-rename for
// JSON). In-memory stores have no path and return an error.
func (s *Store) Save() error {
	if s.path == "" {
		return fmt.Errorf("store: no backing file")
	}
	return s.SaveTo(s.path)
}

// SaveTo writes the dataset to an arbitrary path, choosing the format by
// extension the same way Open does.
func (s *Store) SaveTo(path string) error {
	if isSQLitePath(path) {
		return saveSQLite(path, s.Dataset())
	}
	return WriteDatasetFile(path, s.Dataset())
}

// WriteDatasetFile writes a dataset as JSON via a temp file and rename, so a
// crash mid-write never leaves a truncated dataset behind.
func WriteDatasetFile(path string, ds model.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Dataset snapshots the full current state.
func (s *Store) Dataset() model.Dataset {
	return model.Dataset{
		Version:   1,
		Resources: append([]model.Resource(nil), s.resources...),
		Events:    append([]model.Event(nil), s.events...),
	}
}

// Subscribe registers a change listener. Listeners run synchronously on the
// mutating call, in registration order.
func (s *Store) Subscribe(fn func(model.StoreChange)) {
	s.subs = append(s.subs, fn)
}

func (s *Store) emit(ch model.StoreChange) {
	for _, fn := range s.subs {
		fn(ch)
	}
}

// Resources returns rows in display order.
func (s *Store) Resources() []model.Resource {
	return append([]model.Resource(nil), s.resources...)
}

func (s *Store) ResourceByID(id string) (model.Resource, bool) {
	for _, r := range s.resources {
		if r.ID == id {
			return r, true
		}
	}
	return model.Resource{}, false
}

func (s *Store) FindEvent(id string) (model.Event, bool) {
	for _, e := range s.events {
		if e.ID == id {
			return e, true
		}
	}
	return model.Event{}, false
}

// EventQuery selects events for the accessor surface. Zero StartMS/EndMS
// means unbounded on that side.
type EventQuery struct {
	ResourceID string
	StartMS    int64
	EndMS      int64
}

// Events returns visible events matching the query, ordered by start time.
func (s *Store) Events(q EventQuery) []model.Event {
	var out []model.Event
	for _, e := range s.events {
		if q.ResourceID != "" && e.ResourceID != q.ResourceID {
			continue
		}
		if q.EndMS != 0 && e.StartMS > q.EndMS {
			continue
		}
		if q.StartMS != 0 && e.EndMS < q.StartMS {
			continue
		}
		if s.filter != nil && !s.filter(e) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMS < out[j].StartMS })
	return out
}

// SpansForRow is the layout engine's accessor: all visible spans of one row.
func (s *Store) SpansForRow(rowID string) []model.Span {
	var out []model.Span
	for _, e := range s.events {
		if e.ResourceID != rowID {
			continue
		}
		if s.filter != nil && !s.filter(e) {
			continue
		}
		out = append(out, e.Span())
	}
	return out
}

// NextEventID generates a short random event id, colliding practically
// never within one dataset.
func (s *Store) NextEventID() string {
	for {
		var b [4]byte
		_, _ = rand.Read(b[:])
		id := "evt-" + hex.EncodeToString(b[:])
		if _, exists := s.FindEvent(id); !exists {
			return id
		}
	}
}

// AddEvent inserts an event and notifies. A missing id is filled in; an
// inverted range is normalized.
func (s *Store) AddEvent(e model.Event) model.Event {
	if e.ID == "" {
		e.ID = s.NextEventID()
	}
	normalizeEvent(&e)
	e.UpdatedAt = time.Now()
	s.events = append(s.events, e)
	s.emit(model.AddEvents{Events: []model.Event{e}})
	return e
}

// RemoveEvent deletes by id. Unknown ids are a no-op and emit nothing.
func (s *Store) RemoveEvent(id string) bool {
	for i, e := range s.events {
		if e.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			s.emit(model.RemoveEvents{Events: []model.Event{e}})
			return true
		}
	}
	return false
}

// UpdateEvent applies mut to the event and emits an UpdateEvents change
// carrying the field delta. Returns the updated event.
func (s *Store) UpdateEvent(id string, mut func(*model.Event)) (model.Event, error) {
	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		before := s.events[i]
		mut(&s.events[i])
		normalizeEvent(&s.events[i])
		s.events[i].ID = before.ID // ids are immutable
		s.events[i].UpdatedAt = time.Now()
		after := s.events[i]

		delta := diffEvents(before, after)
		if len(delta) == 0 {
			return after, nil
		}
		ch := model.UpdateEvents{Events: []model.Event{after}, Delta: delta}
		if before.ResourceID != after.ResourceID {
			ch.PrevResourceIDs = map[string]string{after.ID: before.ResourceID}
		}
		s.emit(ch)
		return after, nil
	}
	return model.Event{}, fmt.Errorf("store: unknown event %q", id)
}

func diffEvents(a, b model.Event) model.FieldDelta {
	d := model.FieldDelta{}
	if a.StartMS != b.StartMS {
		d["startMs"] = model.FieldChange{Old: a.StartMS, New: b.StartMS}
	}
	if a.EndMS != b.EndMS {
		d["endMs"] = model.FieldChange{Old: a.EndMS, New: b.EndMS}
	}
	if a.ResourceID != b.ResourceID {
		d["resourceId"] = model.FieldChange{Old: a.ResourceID, New: b.ResourceID}
	}
	if a.Name != b.Name {
		d["name"] = model.FieldChange{Old: a.Name, New: b.Name}
	}
	if a.Color != b.Color {
		d["color"] = model.FieldChange{Old: a.Color, New: b.Color}
	}
	return d
}

// SetEventFilter installs (or clears, with nil) the visibility filter. The
// affected row set is unknown here, so this is a structural change.
func (s *Store) SetEventFilter(fn func(model.Event) bool) {
	s.filter = fn
	s.emit(model.FilterChange{})
}

// ReplaceDataset swaps the whole dataset.
func (s *Store) ReplaceDataset(ds model.Dataset) {
	s.adopt(ds)
	s.emit(model.DatasetReplace{})
}

// Batch brackets fn between BatchStart and BatchCommit so a consumer can
// defer rendering until the batch is consistent. Nesting is allowed; only
// the outermost commit flushes.
func (s *Store) Batch(fn func()) {
	s.batchDepth++
	s.emit(model.BatchStart{})
	defer func() {
		s.batchDepth--
		s.emit(model.BatchCommit{})
	}()
	fn()
}
