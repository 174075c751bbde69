package workspace

import (
	"fmt"

	"github.com/desertthunder/tslabel/internal/annotations"
	"github.com/desertthunder/tslabel/internal/dataset"
	"github.com/desertthunder/tslabel/internal/formatter"
	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
)

func (s *Session) clampX(x int) int {
	return max(0, min(x, s.MaxLength()))
}

// StartDraft anchors a new interval at x.
func (s *Session) StartDraft(x int) error {
	if len(s.views) == 0 {
		return fmt.Errorf("%w: no group loaded", shared.ErrNoDraft)
	}
	return s.store.StartDraft(s.clampX(x))
}

// UpdateDraft moves the free end of the draft to x.
func (s *Session) UpdateDraft(x int) { s.store.UpdateDraft(s.clampX(x)) }

// Draft returns the interval being drawn.
func (s *Session) Draft() (models.Annotation, bool) { return s.store.Draft() }

// CancelDraft discards the draft without side effects.
func (s *Session) CancelDraft() { s.store.CancelDraft() }

// ConfirmDraft commits the draft and renders it on every view. It returns the new annotation id.
func (s *Session) ConfirmDraft() (int, error) {
	id, err := s.store.CommitDraft(s.opts.MinWidth)
	if err != nil {
		return 0, err
	}
	return id, s.broadcast(id)
}

// AddInterval adds [start, end), clamped to the loaded data, and renders it on every view.
func (s *Session) AddInterval(start, end int) (int, error) {
	if n := s.MaxLength(); n > 0 {
		if start > end {
			start, end = end, start
		}
		start, end = annotations.Clamp(start, end, n)
	}
	id, err := s.store.Add(start, end)
	if err != nil {
		return 0, err
	}
	return id, s.broadcast(id)
}

func (s *Session) broadcast(id int) error {
	a, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %d", shared.ErrAnnotationNotFound, id)
	}
	global := s.mapping.CreateAndBroadcast(a.Start, a.End)
	return s.mapping.Bind(global, id)
}

// Delete removes the given annotations and disarms the selection. It returns how many were removed.
func (s *Session) Delete(ids ...int) int {
	s.selection.Clear()
	if len(ids) == 1 {
		if s.store.Remove(ids[0]) {
			return 1
		}
		return 0
	}
	return s.store.RemoveMany(ids)
}

// DeleteArmed removes the annotation of the armed mask.
func (s *Session) DeleteArmed() bool {
	id, ok := s.ArmedAnnotation()
	if !ok {
		return false
	}
	return s.Delete(id) == 1
}

// ClearAll removes every annotation of the open group.
func (s *Session) ClearAll() {
	s.selection.Clear()
	s.store.Clear()
}

// Import replaces the open group's annotations.
func (s *Session) Import(list []models.Annotation) error {
	s.selection.Clear()
	return s.store.ImportAll(list)
}

// Export builds the export document of the open group.
func (s *Session) Export() *formatter.AnnotationExport {
	g, _ := s.Group()
	return formatter.NewAnnotationExport(dataset.GroupName(g), g.Files, s.store.ExportAll(), s.store.Stats())
}

// Resync rebuilds every mask from the store, healing any view the mapping lost track of.
func (s *Session) Resync() int {
	s.selection.Clear()
	return s.mapping.ResyncAll()
}
