package workspace

import (
	"fmt"

	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/desertthunder/tslabel/internal/viewport"
)

// Locate centers every view on annotation id and disarms the selection.
func (s *Session) Locate(id int) error {
	a, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", shared.ErrAnnotationNotFound, id)
	}
	s.selection.Clear()
	for _, v := range s.views {
		v.Nav.Locate(a)
	}
	return nil
}

// SyncRange copies the window of view from to every other view.
func (s *Session) SyncRange(from int) error {
	src, ok := s.View(from)
	if !ok {
		return fmt.Errorf("%w: view %d", shared.ErrInvalidArgument, from)
	}
	start, end := src.Nav.Range()
	for _, v := range s.views {
		if v.ID != from {
			v.Nav.SetRange(start, end)
		}
	}
	return nil
}

// Pan moves the window of every view and disarms the selection.
func (s *Session) Pan(dir viewport.Direction) {
	s.selection.Clear()
	for _, v := range s.views {
		v.Nav.Pan(dir)
	}
}

// Zoom resizes the window of every view and disarms the selection.
func (s *Session) Zoom(dir viewport.Direction) {
	s.selection.Clear()
	for _, v := range s.views {
		v.Nav.Zoom(dir)
	}
}

// SetYMode switches the y scaling of every view.
func (s *Session) SetYMode(mode models.YMode) {
	s.opts.YMode = mode
	for _, v := range s.views {
		v.Nav.SetYMode(mode)
	}
}

// YMode returns the y scaling applied to new views.
func (s *Session) YMode() models.YMode { return s.opts.YMode }
