// Package masks holds the rendered interval markers of a single view.
//
// A [Registry] is purely presentational state: every mask in it can be rebuilt from the
// annotation store. Local ids are scoped to one registry and never reused, so a stale id
// from a torn-down mask set cannot resolve to a newer mask.
package masks

import (
	"fmt"
	"slices"

	"github.com/desertthunder/tslabel/internal/shared"
)

// Mask is the projection of one annotation, or the draft, onto a view.
type Mask struct {
	Local     int
	Label     int
	Start     int
	End       int
	Selected  bool
	Draggable bool
}

// Len returns End - Start.
func (m Mask) Len() int { return m.End - m.Start }

// DragHandler is notified after a user drag changed a mask's geometry.
// Its error is returned from the drag call.
type DragHandler func(viewID, local, start, end int) error

// Edge selects which bound of a mask a resize moves.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

// Registry is the mask set of one view.
type Registry struct {
	viewID    int
	nextLocal int
	masks     map[int]*Mask
	onDrag    DragHandler
}

// NewRegistry creates an empty registry for the view.
func NewRegistry(viewID int) *Registry {
	return &Registry{viewID: viewID, nextLocal: 1, masks: make(map[int]*Mask)}
}

// ID returns the owning view id.
func (r *Registry) ID() int { return r.viewID }

// SetDragHandler injects the callback invoked by user drags.
func (r *Registry) SetDragHandler(h DragHandler) { r.onDrag = h }

// AddMask renders a mask labeled with label and returns its local id.
func (r *Registry) AddMask(label, start, end int) int {
	if end < start {
		start, end = end, start
	}
	local := r.nextLocal
	r.nextLocal++
	r.masks[local] = &Mask{Local: local, Label: label, Start: start, End: end}
	return local
}

// MoveMask sets geometry without notifying the drag handler.
func (r *Registry) MoveMask(local, start, end int) bool {
	m, ok := r.masks[local]
	if !ok {
		return false
	}
	if end < start {
		start, end = end, start
	}
	m.Start, m.End = start, end
	return true
}

// RemoveMask deletes one mask.
func (r *Registry) RemoveMask(local int) bool {
	if _, ok := r.masks[local]; !ok {
		return false
	}
	delete(r.masks, local)
	return true
}

// RemoveAllMasks deletes every mask. Local ids keep counting up.
func (r *Registry) RemoveAllMasks() {
	clear(r.masks)
}

// SetMaskSelected toggles the selected visual.
func (r *Registry) SetMaskSelected(local int, selected bool) {
	if m, ok := r.masks[local]; ok {
		m.Selected = selected
	}
}

// SetMaskDraggable toggles drag permission.
func (r *Registry) SetMaskDraggable(local int, draggable bool) {
	if m, ok := r.masks[local]; ok {
		m.Draggable = draggable
	}
}

// Get returns a copy of the mask.
func (r *Registry) Get(local int) (Mask, bool) {
	m, ok := r.masks[local]
	if !ok {
		return Mask{}, false
	}
	return *m, true
}

// Len returns the number of masks.
func (r *Registry) Len() int { return len(r.masks) }

// Masks returns copies ordered by start, then local id.
func (r *Registry) Masks() []Mask {
	out := make([]Mask, 0, len(r.masks))
	for _, m := range r.masks {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b Mask) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.Local - b.Local
	})
	return out
}

// MaskAt returns the most recently added mask whose closed range contains x.
func (r *Registry) MaskAt(x int) (Mask, bool) {
	best := -1
	for local, m := range r.masks {
		if m.Start <= x && x <= m.End && local > best {
			best = local
		}
	}
	if best < 0 {
		return Mask{}, false
	}
	return *r.masks[best], true
}

// Drag applies a user drag to [start, end) and notifies the drag handler.
//
// Only draggable masks move; others return [shared.ErrDragNotPermitted] unchanged.
func (r *Registry) Drag(local, start, end int) error {
	m, ok := r.masks[local]
	if !ok {
		return fmt.Errorf("%w: view %d local %d", shared.ErrMaskNotFound, r.viewID, local)
	}
	if !m.Draggable {
		return fmt.Errorf("%w: view %d local %d", shared.ErrDragNotPermitted, r.viewID, local)
	}
	if end < start {
		start, end = end, start
	}
	if start == end {
		end = start + 1
	}
	m.Start, m.End = start, end
	if r.onDrag != nil {
		return r.onDrag(r.viewID, local, start, end)
	}
	return nil
}

// DragBy moves the whole mask by delta samples, never past index 0.
func (r *Registry) DragBy(local, delta int) error {
	m, ok := r.masks[local]
	if !ok {
		return fmt.Errorf("%w: view %d local %d", shared.ErrMaskNotFound, r.viewID, local)
	}
	if m.Start+delta < 0 {
		delta = -m.Start
	}
	return r.Drag(local, m.Start+delta, m.End+delta)
}

// DragEdge moves one bound to x. The bound cannot cross the other one; the mask stays
// at least one sample wide.
func (r *Registry) DragEdge(local int, edge Edge, x int) error {
	m, ok := r.masks[local]
	if !ok {
		return fmt.Errorf("%w: view %d local %d", shared.ErrMaskNotFound, r.viewID, local)
	}
	start, end := m.Start, m.End
	switch edge {
	case EdgeStart:
		start = min(max(0, x), end-1)
	case EdgeEnd:
		end = max(x, start+1)
	}
	return r.Drag(local, start, end)
}

// NearestEdge returns the bound of the mask closest to x; ties go to the start.
func (m Mask) NearestEdge(x int) Edge {
	ds, de := x-m.Start, m.End-x
	if ds < 0 {
		ds = -ds
	}
	if de < 0 {
		de = -de
	}
	if ds <= de {
		return EdgeStart
	}
	return EdgeEnd
}
