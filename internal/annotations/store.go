package annotations

import (
	"fmt"
	"slices"

	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
)

// DefaultMinWidth is the narrowest interval [Store.Add] accepts.
const DefaultMinWidth = 10

// EventType identifies a store change notification.
type EventType int

const (
	EventAdded EventType = iota
	EventRemoved
	EventUpdated
	EventCleared
	EventImported
	EventRenumbered
)

func (e EventType) String() string {
	switch e {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	case EventUpdated:
		return "updated"
	case EventCleared:
		return "cleared"
	case EventImported:
		return "imported"
	case EventRenumbered:
		return "renumbered"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Event is delivered to listeners after a mutation.
//
// Annotation is set for added, removed and updated. Remap (old id -> new id) is set for
// renumbered and only lists ids that changed. A renumbered event precedes the added or
// removed event of the same mutation.
type Event struct {
	Type       EventType
	Annotation models.Annotation
	Remap      map[int]int
}

// Listener receives store events.
type Listener func(Event)

type draft struct {
	anchor, current int
}

// Store is the ordered annotation collection.
type Store struct {
	items     []models.Annotation
	nextID    int
	minWidth  int
	draft     *draft
	listeners map[EventType][]Listener
}

// Option configures a [Store].
type Option func(*Store)

// WithMinWidth overrides [DefaultMinWidth].
func WithMinWidth(w int) Option {
	return func(s *Store) {
		if w > 0 {
			s.minWidth = w
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		nextID:    1,
		minWidth:  DefaultMinWidth,
		listeners: make(map[EventType][]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// On registers a listener for the event type.
func (s *Store) On(t EventType, l Listener) {
	s.listeners[t] = append(s.listeners[t], l)
}

func (s *Store) emit(e Event) {
	for _, l := range s.listeners[e.Type] {
		l(e)
	}
}

// MinWidth returns the configured minimum interval width.
func (s *Store) MinWidth() int { return s.minWidth }

// Len returns the number of committed annotations.
func (s *Store) Len() int { return len(s.items) }

func normalize(start, end int) (int, int) {
	if end < start {
		return end, start
	}
	return start, end
}

// Add inserts [start, end) and returns the id it holds after renumbering.
//
// Bounds are swapped when reversed. Intervals narrower than the store's minimum width
// are rejected with [shared.ErrInvalidInterval] and leave the store unchanged.
func (s *Store) Add(start, end int) (int, error) {
	return s.add(start, end, s.minWidth)
}

func (s *Store) add(start, end, minWidth int) (int, error) {
	start, end = normalize(start, end)
	if end-start < minWidth {
		return 0, fmt.Errorf("%w: width %d is below minimum %d", shared.ErrInvalidInterval, end-start, minWidth)
	}

	provisional := s.nextID
	s.items = append(s.items, models.Annotation{ID: provisional, Start: start, End: end})
	s.sort()

	remap := s.renumber()
	added := s.find(remap.lookup(provisional))
	delete(remap, provisional)

	if len(remap) > 0 {
		s.emit(Event{Type: EventRenumbered, Remap: remap})
	}
	s.emit(Event{Type: EventAdded, Annotation: added})
	return added.ID, nil
}

// StartDraft anchors a new interval at x. Negative positions are rejected.
func (s *Store) StartDraft(x int) error {
	if x < 0 {
		return fmt.Errorf("%w: draft start %d is negative", shared.ErrInvalidInterval, x)
	}
	s.draft = &draft{anchor: x, current: x}
	return nil
}

// UpdateDraft moves the free end of the draft. It is a no-op without a draft.
func (s *Store) UpdateDraft(x int) {
	if s.draft != nil {
		s.draft.current = x
	}
}

// Draft returns the normalized draft interval, if one is in progress.
func (s *Store) Draft() (models.Annotation, bool) {
	if s.draft == nil {
		return models.Annotation{}, false
	}
	start, end := normalize(s.draft.anchor, s.draft.current)
	return models.Annotation{Start: start, End: end}, true
}

// CommitDraft promotes the draft through the same rules as [Store.Add].
// The draft is discarded whether or not the commit succeeds.
func (s *Store) CommitDraft(minWidth int) (int, error) {
	if s.draft == nil {
		return 0, shared.ErrNoDraft
	}
	d, _ := s.Draft()
	s.draft = nil
	return s.add(d.Start, d.End, minWidth)
}

// CancelDraft drops the draft.
func (s *Store) CancelDraft() {
	s.draft = nil
}

// UpdatePosition moves annotation id to [start, end) keeping its id.
// It reports false for unknown ids and for empty intervals.
func (s *Store) UpdatePosition(id, start, end int) bool {
	start, end = normalize(start, end)
	if start == end {
		return false
	}

	i := s.index(id)
	if i < 0 {
		return false
	}
	s.items[i].Start, s.items[i].End = start, end
	updated := s.items[i]
	s.sort()

	s.emit(Event{Type: EventUpdated, Annotation: updated})
	return true
}

// Remove deletes annotation id and renumbers the survivors.
func (s *Store) Remove(id int) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	remap := s.renumber()

	if len(remap) > 0 {
		s.emit(Event{Type: EventRenumbered, Remap: remap})
	}
	s.emit(Event{Type: EventRemoved, Annotation: removed})
	return true
}

// RemoveMany deletes each id, highest first, and returns how many existed.
//
// Ids refer to the numbering before the call; descending order keeps lower ids stable
// while higher ones are removed.
func (s *Store) RemoveMany(ids []int) int {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	n := 0
	for i := len(sorted) - 1; i >= 0; i-- {
		if s.Remove(sorted[i]) {
			n++
		}
	}
	return n
}

// Clear empties the store, drops any draft and resets the id counter.
func (s *Store) Clear() {
	s.items = nil
	s.draft = nil
	s.nextID = 1
	s.emit(Event{Type: EventCleared})
}

// List returns a start-ascending copy of the annotations.
func (s *Store) List() []models.Annotation {
	return slices.Clone(s.items)
}

// Get returns annotation id.
func (s *Store) Get(id int) (models.Annotation, bool) {
	i := s.index(id)
	if i < 0 {
		return models.Annotation{}, false
	}
	return s.items[i], true
}

// Overlap returns annotations sharing at least one index with [start, end).
func (s *Store) Overlap(start, end int) []models.Annotation {
	start, end = normalize(start, end)
	var out []models.Annotation
	for _, a := range s.items {
		if a.Overlaps(start, end) {
			out = append(out, a)
		}
	}
	return out
}

// At returns the first annotation whose closed range contains x.
func (s *Store) At(x int) (models.Annotation, bool) {
	for _, a := range s.items {
		if a.Contains(x) {
			return a, true
		}
	}
	return models.Annotation{}, false
}

// Stats summarizes annotation lengths. All fields are zero for an empty store.
func (s *Store) Stats() models.Stats {
	if len(s.items) == 0 {
		return models.Stats{}
	}

	st := models.Stats{Count: len(s.items), Min: s.items[0].Len(), Max: s.items[0].Len()}
	for _, a := range s.items {
		n := a.Len()
		st.Total += n
		st.Min = min(st.Min, n)
		st.Max = max(st.Max, n)
	}
	st.Average = float64(st.Total) / float64(st.Count)
	return st
}

// ImportAll replaces the contents with list.
//
// Entries with ID 0 take the next free id; the counter advances past every imported id.
// The result is sorted and renumbered. Empty intervals reject the whole import.
func (s *Store) ImportAll(list []models.Annotation) error {
	incoming := make([]models.Annotation, 0, len(list))
	for i, a := range list {
		start, end := normalize(a.Start, a.End)
		if start == end {
			return fmt.Errorf("%w: entry %d has empty range [%d, %d)", shared.ErrInvalidInterval, i, a.Start, a.End)
		}
		incoming = append(incoming, models.Annotation{ID: a.ID, Start: start, End: end})
	}

	s.items = nil
	s.draft = nil
	s.nextID = 1
	for _, a := range incoming {
		if a.ID <= 0 {
			a.ID = s.nextID
		}
		s.nextID = max(s.nextID, a.ID+1)
		s.items = append(s.items, a)
	}
	s.sort()
	s.renumber()

	s.emit(Event{Type: EventImported})
	return nil
}

// ExportAll returns the serializable form of every annotation.
func (s *Store) ExportAll() []models.ExportedAnnotation {
	out := make([]models.ExportedAnnotation, len(s.items))
	for i, a := range s.items {
		out[i] = models.ExportedAnnotation{ID: a.ID, Start: a.Start, End: a.End, Length: a.Len()}
	}
	return out
}

// Clamp fits [start, end) into an array of maxLength samples, keeping it at least one wide.
func Clamp(start, end, maxLength int) (int, int) {
	start = max(0, min(start, maxLength-1))
	end = max(start+1, min(end, maxLength))
	return start, end
}

func (s *Store) sort() {
	slices.SortStableFunc(s.items, func(a, b models.Annotation) int {
		return a.Start - b.Start
	})
}

type remap map[int]int

func (r remap) lookup(id int) int {
	if n, ok := r[id]; ok {
		return n
	}
	return id
}

// renumber assigns ids 1..N in list order and returns the ids that changed.
func (s *Store) renumber() remap {
	changed := make(remap)
	for i := range s.items {
		if s.items[i].ID != i+1 {
			changed[s.items[i].ID] = i + 1
			s.items[i].ID = i + 1
		}
	}
	s.nextID = len(s.items) + 1
	return changed
}

func (s *Store) index(id int) int {
	return slices.IndexFunc(s.items, func(a models.Annotation) bool { return a.ID == id })
}

func (s *Store) find(id int) models.Annotation {
	a, _ := s.Get(id)
	return a
}
