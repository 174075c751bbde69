package crossview

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/tslabel/internal/annotations"
	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
)

// View is a rendering surface that can hold masks.
//
// MoveMask must not call back into the view's drag handler.
type View interface {
	ID() int
	AddMask(label, start, end int) int
	MoveMask(local, start, end int) bool
	RemoveMask(local int) bool
	RemoveAllMasks()
	SetMaskSelected(local int, selected bool)
	SetMaskDraggable(local int, draggable bool)
}

// Store is the subset of the annotation store the mapping needs.
type Store interface {
	List() []models.Annotation
	UpdatePosition(id, start, end int) bool
	On(t annotations.EventType, l annotations.Listener)
}

// Gate reports the single global id currently allowed to drag.
type Gate interface {
	Armed() (int, bool)
}

type viewLocal struct {
	view  int
	local int
}

// Mapping is the cross-view identity layer. It is not safe for concurrent use.
type Mapping struct {
	store   Store
	gate    Gate
	views   []View
	byID    map[int]View
	g       map[int]map[int]int
	reverse map[viewLocal]int
	a       map[int]int
	next    int
	pending map[viewLocal]struct{}
	logger  *log.Logger
	dragLog rate.Sometimes
}

// New creates a mapping bound to store and subscribes to its change events.
func New(store Store, logger *log.Logger) *Mapping {
	m := &Mapping{
		store:   store,
		byID:    make(map[int]View),
		g:       make(map[int]map[int]int),
		reverse: make(map[viewLocal]int),
		a:       make(map[int]int),
		next:    1,
		pending: make(map[viewLocal]struct{}),
		logger:  shared.WithLogger(logger, "component", "crossview"),
		dragLog: rate.Sometimes{Interval: 250 * time.Millisecond},
	}

	store.On(annotations.EventRenumbered, m.applyRemap)
	store.On(annotations.EventRemoved, func(annotations.Event) { m.ResyncAll() })
	store.On(annotations.EventCleared, func(annotations.Event) { m.teardown() })
	store.On(annotations.EventImported, func(annotations.Event) { m.ResyncAll() })
	return m
}

// SetGate injects the drag permission source.
func (m *Mapping) SetGate(g Gate) { m.gate = g }

// AddView registers a view. Existing intervals are not broadcast to it until the next resync.
func (m *Mapping) AddView(v View) {
	if _, ok := m.byID[v.ID()]; ok {
		return
	}
	m.views = append(m.views, v)
	m.byID[v.ID()] = v
}

// Views returns the registered views in registration order.
func (m *Mapping) Views() []View { return slices.Clone(m.views) }

// Reset drops every view and all mapping state. The global counter keeps counting.
func (m *Mapping) Reset() {
	m.teardown()
	m.views = nil
	clear(m.byID)
}

func (m *Mapping) mint() int {
	id := m.next
	m.next++
	return id
}

// CreateAndBroadcast renders [start, end) on every view under a new global id.
// The global id doubles as the label shown on each mask.
func (m *Mapping) CreateAndBroadcast(start, end int) int {
	global := m.mint()
	locals := make(map[int]int, len(m.views))
	for _, v := range m.views {
		local := v.AddMask(global, start, end)
		locals[v.ID()] = local
		m.reverse[viewLocal{v.ID(), local}] = global
	}
	m.g[global] = locals
	return global
}

// Bind records that global renders annotation id.
func (m *Mapping) Bind(global, annotationID int) error {
	if _, ok := m.g[global]; !ok {
		return fmt.Errorf("%w: global id %d", shared.ErrMaskNotFound, global)
	}
	m.a[global] = annotationID
	return nil
}

// Release removes global's masks from every view and forgets it.
func (m *Mapping) Release(global int) {
	locals, ok := m.g[global]
	if !ok {
		return
	}
	for viewID, local := range locals {
		if v, ok := m.byID[viewID]; ok {
			v.RemoveMask(local)
		}
		delete(m.reverse, viewLocal{viewID, local})
		delete(m.pending, viewLocal{viewID, local})
	}
	delete(m.g, global)
	delete(m.a, global)
}

// ResyncAll tears down every mask and rebuilds one global id per stored annotation.
// It returns the number of intervals broadcast.
func (m *Mapping) ResyncAll() int {
	m.teardown()
	list := m.store.List()
	for _, ann := range list {
		global := m.CreateAndBroadcast(ann.Start, ann.End)
		m.a[global] = ann.ID
	}
	m.logger.Debug("resynced views", "views", len(m.views), "annotations", len(list))
	return len(list)
}

func (m *Mapping) teardown() {
	for _, v := range m.views {
		v.RemoveAllMasks()
	}
	clear(m.g)
	clear(m.reverse)
	clear(m.a)
	clear(m.pending)
}

// OnDrag propagates a user drag from one view to all others and to the store.
//
// Unmapped local ids are recorded as pending and reported with [shared.ErrUnmappedMask];
// the source view keeps its geometry until the next resync. Drags of any id other than
// the armed one are refused with [shared.ErrDragNotPermitted].
func (m *Mapping) OnDrag(viewID, local, start, end int) error {
	key := viewLocal{viewID, local}
	global, ok := m.reverse[key]
	if !ok {
		m.pending[key] = struct{}{}
		m.logger.Warn("drag from unmapped mask", "view", viewID, "local", local)
		return fmt.Errorf("%w: view %d local %d", shared.ErrUnmappedMask, viewID, local)
	}

	if m.gate != nil {
		if armed, ok := m.gate.Armed(); !ok || armed != global {
			m.logger.Warn("drag refused for unarmed mask", "global", global, "armed", armed)
			return fmt.Errorf("%w: global id %d", shared.ErrDragNotPermitted, global)
		}
	}

	for otherID, otherLocal := range m.g[global] {
		if otherID == viewID {
			continue
		}
		v, ok := m.byID[otherID]
		if !ok || !v.MoveMask(otherLocal, start, end) {
			m.pending[viewLocal{otherID, otherLocal}] = struct{}{}
			continue
		}
		delete(m.pending, viewLocal{otherID, otherLocal})
	}

	annotationID, ok := m.a[global]
	if !ok {
		m.pending[key] = struct{}{}
		m.logger.Warn("drag of unbound mask", "global", global)
		return fmt.Errorf("%w: global id %d has no annotation", shared.ErrAnnotationNotFound, global)
	}
	if !m.store.UpdatePosition(annotationID, start, end) {
		m.pending[key] = struct{}{}
		m.logger.Warn("store rejected drag", "annotation", annotationID, "start", start, "end", end)
		return fmt.Errorf("%w: annotation %d", shared.ErrAnnotationNotFound, annotationID)
	}
	delete(m.pending, key)

	m.dragLog.Do(func() {
		m.logger.Debug("mask dragged", "global", global, "annotation", annotationID, "start", start, "end", end)
	})
	return nil
}

// Highlight marks every mask of global as selected and draggable and every other mask
// as neither. A zero global clears all highlights.
func (m *Mapping) Highlight(global int) {
	for g, locals := range m.g {
		on := global != 0 && g == global
		for viewID, local := range locals {
			if v, ok := m.byID[viewID]; ok {
				v.SetMaskSelected(local, on)
				v.SetMaskDraggable(local, on)
			}
		}
	}
}

func (m *Mapping) applyRemap(e annotations.Event) {
	for global, id := range m.a {
		if n, ok := e.Remap[id]; ok {
			m.a[global] = n
		}
	}
}

// Resolve returns the global id rendered by (viewID, local).
func (m *Mapping) Resolve(viewID, local int) (int, bool) {
	g, ok := m.reverse[viewLocal{viewID, local}]
	return g, ok
}

// Locals returns view id -> local id for global.
func (m *Mapping) Locals(global int) map[int]int {
	return maps.Clone(m.g[global])
}

// AnnotationID returns the annotation bound to global.
func (m *Mapping) AnnotationID(global int) (int, bool) {
	id, ok := m.a[global]
	return id, ok
}

// GlobalFor returns the global id bound to annotation id.
func (m *Mapping) GlobalFor(annotationID int) (int, bool) {
	for g, id := range m.a {
		if id == annotationID {
			return g, true
		}
	}
	return 0, false
}

// Len returns the number of live global ids.
func (m *Mapping) Len() int { return len(m.g) }

// Pending returns the number of masks whose geometry is not reconciled.
func (m *Mapping) Pending() int { return len(m.pending) }

// Check verifies that every live global id has one mask per view and a bound annotation.
func (m *Mapping) Check() error {
	for g, locals := range m.g {
		if len(locals) != len(m.views) {
			return fmt.Errorf("global id %d has %d masks for %d views", g, len(locals), len(m.views))
		}
		if _, ok := m.a[g]; !ok {
			return fmt.Errorf("global id %d is not bound to an annotation", g)
		}
	}
	if len(m.a) != len(m.g) {
		return fmt.Errorf("%d bindings for %d global ids", len(m.a), len(m.g))
	}

	seen := make(map[int]int, len(m.a))
	for g, id := range m.a {
		if other, dup := seen[id]; dup {
			return fmt.Errorf("annotation %d bound to global ids %d and %d", id, other, g)
		}
		seen[id] = g
	}
	return nil
}
