package workspace

import (
	"fmt"

	"github.com/desertthunder/tslabel/internal/dataset"
	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
)

func (s *Session) saveInputs() ([]dataset.Series, dataset.SaveOptions, error) {
	if len(s.views) == 0 {
		return nil, dataset.SaveOptions{}, fmt.Errorf("%w: no group loaded", shared.ErrNoFiles)
	}
	sources := make([]dataset.Series, len(s.views))
	for i, v := range s.views {
		sources[i] = v.series()
	}
	opts := s.opts.Save
	opts.GroupIndex = s.current
	return sources, opts, nil
}

// SaveConflicts lists artifacts a save of the open group would overwrite.
func (s *Session) SaveConflicts() ([]string, error) {
	sources, opts, err := s.saveInputs()
	if err != nil {
		return nil, err
	}
	return dataset.Conflicts(s.opts.OutputDir, sources, s.store.List(), opts)
}

// Save writes the open group's labeled output. Without overwrite, existing artifacts fail the save
// with [shared.ErrTargetExists] so the caller can ask for confirmation.
func (s *Session) Save(overwrite bool) (*dataset.SaveResult, error) {
	sources, opts, err := s.saveInputs()
	if err != nil {
		return nil, err
	}
	opts.Overwrite = overwrite

	list := s.store.List()
	res, err := dataset.Save(s.opts.OutputDir, sources, list, opts)
	if err != nil {
		return nil, err
	}
	s.dirty = false
	s.Stash()

	g, _ := s.Group()
	s.logger.Info("saved group", "key", g.Key, "mode", res.Mode, "files", len(res.Files), "annotations", len(list))

	if s.opts.Records != nil {
		dir := s.opts.OutputDir
		if res.Mode == models.SaveMerged && len(res.Dirs) == 1 {
			dir = res.Dirs[0]
		}
		rec := models.NewSaveRecord(s.opts.Workspace, g.Key, res.Mode, dir, len(sources), len(list))
		if err := s.opts.Records.Create(rec); err != nil {
			s.logger.Warn("failed to record save", "key", g.Key, "err", err)
		}
	}
	return res, nil
}
