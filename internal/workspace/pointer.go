package workspace

import (
	"fmt"

	"github.com/desertthunder/tslabel/internal/masks"
	"github.com/desertthunder/tslabel/internal/shared"
)

// GlobalAt returns the global id of the mask under x on a view.
func (s *Session) GlobalAt(viewID, x int) (int, bool) {
	v, ok := s.View(viewID)
	if !ok {
		return 0, false
	}
	m, ok := v.Masks.MaskAt(x)
	if !ok {
		return 0, false
	}
	return s.mapping.Resolve(viewID, m.Local)
}

// Click arms the mask under x, or does nothing on empty space. It reports whether a mask was hit.
func (s *Session) Click(viewID, x int) bool {
	global, ok := s.GlobalAt(viewID, x)
	if !ok {
		s.selection.ClickEmpty()
		return false
	}
	s.selection.Click(global)
	return true
}

// Hover reports pointer movement over a view.
func (s *Session) Hover(viewID, x int) {
	if global, ok := s.GlobalAt(viewID, x); ok {
		s.selection.Hover(global)
		return
	}
	s.selection.HoverEmpty()
}

// Enter reports the pointer entering a view.
func (s *Session) Enter() { s.selection.Enter() }

// SelectAnnotation arms the masks of annotation id.
func (s *Session) SelectAnnotation(id int) bool {
	global, ok := s.mapping.GlobalFor(id)
	if !ok {
		return false
	}
	s.selection.Click(global)
	return true
}

// ClearSelection disarms immediately.
func (s *Session) ClearSelection() { s.selection.Clear() }

// ArmedAnnotation returns the annotation id of the armed mask.
func (s *Session) ArmedAnnotation() (int, bool) {
	global, ok := s.selection.Armed()
	if !ok {
		return 0, false
	}
	return s.mapping.AnnotationID(global)
}

func (s *Session) armedLocal(viewID int) (*masks.Registry, int, error) {
	global, ok := s.selection.Armed()
	if !ok {
		return nil, 0, fmt.Errorf("%w: nothing selected", shared.ErrDragNotPermitted)
	}
	v, ok := s.View(viewID)
	if !ok {
		return nil, 0, fmt.Errorf("%w: view %d", shared.ErrMaskNotFound, viewID)
	}
	local, ok := s.mapping.Locals(global)[viewID]
	if !ok {
		return nil, 0, fmt.Errorf("%w: global id %d on view %d", shared.ErrMaskNotFound, global, viewID)
	}
	return v.Masks, local, nil
}

// Drag moves the armed mask on a view by delta samples. Every other view and the store follow.
func (s *Session) Drag(viewID, delta int) error {
	reg, local, err := s.armedLocal(viewID)
	if err != nil {
		return err
	}
	return reg.DragBy(local, delta)
}

// Resize moves one edge of the armed mask on a view to x.
func (s *Session) Resize(viewID int, edge masks.Edge, x int) error {
	reg, local, err := s.armedLocal(viewID)
	if err != nil {
		return err
	}
	return reg.DragEdge(local, edge, x)
}

// DragMask applies a raw drag of (viewID, local) to [start, end), as a pointer front end reports it.
func (s *Session) DragMask(viewID, local, start, end int) error {
	v, ok := s.View(viewID)
	if !ok {
		return fmt.Errorf("%w: view %d", shared.ErrMaskNotFound, viewID)
	}
	return v.Masks.Drag(local, start, end)
}
