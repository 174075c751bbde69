package workspace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tslabel/internal/annotations"
	"github.com/desertthunder/tslabel/internal/crossview"
	"github.com/desertthunder/tslabel/internal/dataset"
	"github.com/desertthunder/tslabel/internal/masks"
	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/selection"
	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/desertthunder/tslabel/internal/viewport"
)

// SnapshotStore persists annotation sets per workspace and group key.
type SnapshotStore interface {
	GetByKey(workspace, groupKey string) (*models.Snapshot, error)
	Save(s *models.Snapshot) error
}

// SaveRecorder persists history entries for written output.
type SaveRecorder interface {
	Create(rec *models.SaveRecord) error
}

// Loader reads the files of one group.
type Loader func(ctx context.Context, paths []string) ([]dataset.Series, error)

// Options configures a [Session]. Zero values fall back to the package defaults.
type Options struct {
	Workspace  string
	Groups     []models.Group
	MinWidth   int
	Dwell      time.Duration
	WindowSize int
	YMode      models.YMode
	Save       dataset.SaveOptions // GroupIndex is taken from the current group
	OutputDir  string
	Snapshots  SnapshotStore       // optional
	Records    SaveRecorder        // optional
	Scheduler  selection.Scheduler // runs the dwell timer on the interaction loop
	Loader     Loader
	Logger     *log.Logger
}

// Session is the interactive state of one workspace.
type Session struct {
	opts      Options
	groups    []models.Group
	current   int
	views     []*View
	nextView  int
	store     *annotations.Store
	mapping   *crossview.Mapping
	selection *selection.Machine
	stash     map[int][]models.Annotation
	target    int // group being loaded, -1 when idle
	gen       uint64
	cancel    context.CancelFunc
	loading   bool
	dirty     bool
	logger    *log.Logger
}

// New creates a session with no group open.
func New(opts Options) (*Session, error) {
	if len(opts.Groups) == 0 {
		return nil, shared.ErrNoGroups
	}
	if opts.MinWidth <= 0 {
		opts.MinWidth = annotations.DefaultMinWidth
	}
	if opts.Dwell <= 0 {
		opts.Dwell = selection.DefaultDwell
	}
	if opts.WindowSize <= 0 {
		opts.WindowSize = viewport.DefaultWindow
	}
	if opts.YMode == "" {
		opts.YMode = models.YGlobal
	}
	if opts.Loader == nil {
		opts.Loader = dataset.LoadAll
	}

	logger := shared.WithLogger(opts.Logger, "component", "workspace")
	store := annotations.NewStore(annotations.WithMinWidth(opts.MinWidth))
	mapping := crossview.New(store, opts.Logger)
	machine := selection.New(mapping, opts.Scheduler, opts.Dwell, opts.Logger)
	mapping.SetGate(machine)

	s := &Session{
		opts:      opts,
		groups:    opts.Groups,
		current:   -1,
		target:    -1,
		nextView:  1,
		store:     store,
		mapping:   mapping,
		selection: machine,
		stash:     make(map[int][]models.Annotation),
		logger:    logger,
	}

	markDirty := func(annotations.Event) { s.dirty = true }
	for _, t := range []annotations.EventType{
		annotations.EventAdded,
		annotations.EventRemoved,
		annotations.EventUpdated,
		annotations.EventCleared,
		annotations.EventImported,
	} {
		store.On(t, markDirty)
	}
	return s, nil
}

func (s *Session) Groups() []models.Group           { return s.groups }
func (s *Session) Current() int                     { return s.current }
func (s *Session) Views() []*View                   { return s.views }
func (s *Session) Store() *annotations.Store        { return s.store }
func (s *Session) Mapping() *crossview.Mapping      { return s.mapping }
func (s *Session) Selection() *selection.Machine    { return s.selection }
func (s *Session) Loading() bool                    { return s.loading }
func (s *Session) Workspace() string                { return s.opts.Workspace }
func (s *Session) SaveOptions() dataset.SaveOptions { return s.opts.Save }

// Target returns the group being loaded, or the open group when no load is in flight.
func (s *Session) Target() int {
	if s.loading {
		return s.target
	}
	return s.current
}

// Group returns the open group.
func (s *Session) Group() (models.Group, bool) {
	if s.current < 0 || s.current >= len(s.groups) {
		return models.Group{}, false
	}
	return s.groups[s.current], true
}

// View returns the view with id.
func (s *Session) View(id int) (*View, bool) {
	for _, v := range s.views {
		if v.ID == id {
			return v, true
		}
	}
	return nil, false
}

// Dirty reports whether the annotations changed since the group was loaded or last saved.
func (s *Session) Dirty() bool { return s.dirty }

// NeedsSaveConfirm reports whether leaving the group should offer to save first.
// It is false while a switch is in flight, since the open group was already left once.
func (s *Session) NeedsSaveConfirm() bool { return !s.loading && s.dirty && s.store.Len() > 0 }

// MaxLength returns the longest view length, the upper bound for new intervals.
func (s *Session) MaxLength() int {
	n := 0
	for _, v := range s.views {
		n = max(n, v.Len())
	}
	return n
}

// LoadRequest is a pending group load. Run may be called from any goroutine.
type LoadRequest struct {
	Generation uint64
	Index      int
	Paths      []string
	ctx        context.Context
	load       Loader
}

// LoadResult is delivered back to [Session.ApplyLoad].
type LoadResult struct {
	Generation uint64
	Index      int
	Series     []dataset.Series
	Err        error
}

// Run loads the requested files.
func (r LoadRequest) Run() LoadResult {
	series, err := r.load(r.ctx, r.Paths)
	return LoadResult{Generation: r.Generation, Index: r.Index, Series: series, Err: err}
}

// BeginSwitch starts loading group index.
//
// The outgoing annotations are stashed first. The open group stays in place until
// [Session.ApplyLoad] installs a successful result. Any in-flight load is cancelled and its
// result will be rejected.
func (s *Session) BeginSwitch(ctx context.Context, index int) (LoadRequest, error) {
	if index < 0 || index >= len(s.groups) {
		return LoadRequest{}, fmt.Errorf("%w: group %d of %d", shared.ErrInvalidArgument, index+1, len(s.groups))
	}

	s.Stash()
	if s.cancel != nil {
		s.cancel()
	}

	s.selection.Clear()
	s.target = index
	s.gen++
	s.loading = true

	lctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.logger.Info("switching group", "index", index, "key", s.groups[index].Key, "files", len(s.groups[index].Files))

	return LoadRequest{
		Generation: s.gen,
		Index:      index,
		Paths:      s.groups[index].Files,
		ctx:        lctx,
		load:       s.opts.Loader,
	}, nil
}

// ApplyLoad installs a finished load: one view per file, then the group's stored annotations.
// A failed load leaves the open group, its views and its annotations untouched.
func (s *Session) ApplyLoad(res LoadResult) error {
	if !s.loading || res.Generation != s.gen || res.Index != s.target {
		s.logger.Debug("dropped stale load", "generation", res.Generation, "current", s.gen)
		return fmt.Errorf("%w: generation %d", shared.ErrStaleLoad, res.Generation)
	}
	s.loading = false
	s.target = -1
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if res.Err != nil {
		s.logger.Error("group load failed", "index", res.Index, "keeping", s.current, "err", res.Err)
		return res.Err
	}

	s.store.Clear()
	s.mapping.Reset()
	s.views = nil
	s.current = res.Index

	for _, series := range res.Series {
		id := s.nextView
		s.nextView++

		reg := masks.NewRegistry(id)
		reg.SetDragHandler(s.mapping.OnDrag)
		v := &View{
			ID:    id,
			Path:  series.Path,
			Name:  dataset.BaseName(series.Path),
			Data:  series.Data,
			Nav:   viewport.New(len(series.Data), s.opts.WindowSize, s.opts.YMode),
			Masks: reg,
		}
		s.views = append(s.views, v)
		s.mapping.AddView(reg)
	}

	list, err := s.restore(res.Index)
	if err != nil {
		s.logger.Warn("failed to restore annotations", "index", res.Index, "err", err)
	}
	if len(list) > 0 {
		if err := s.store.ImportAll(list); err != nil {
			s.logger.Warn("stored annotations rejected", "index", res.Index, "err", err)
		}
	}
	s.dirty = false
	s.logger.Info("group loaded", "index", res.Index, "views", len(s.views), "annotations", s.store.Len())
	return nil
}

// Open switches to group index and loads it synchronously.
func (s *Session) Open(ctx context.Context, index int) error {
	req, err := s.BeginSwitch(ctx, index)
	if err != nil {
		return err
	}
	return s.ApplyLoad(req.Run())
}

// Step returns the group index delta away from [Session.Target], or an error at either end.
func (s *Session) Step(delta int) (int, error) {
	from := s.Target()
	next := from + delta
	if next < 0 || next >= len(s.groups) {
		return from, fmt.Errorf("%w: no group %d", shared.ErrInvalidArgument, next+1)
	}
	return next, nil
}

// Close stashes the open group and cancels any in-flight load.
func (s *Session) Close() {
	s.Stash()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Stash records the open group's annotations in memory and in the snapshot store.
func (s *Session) Stash() {
	if s.current < 0 {
		return
	}
	list := s.store.List()
	s.stash[s.current] = list

	if s.opts.Snapshots == nil {
		return
	}
	g := s.groups[s.current]
	snap := models.NewSnapshot(s.opts.Workspace, g.Key, s.current, list)
	if err := s.opts.Snapshots.Save(snap); err != nil {
		s.logger.Warn("failed to persist snapshot", "group", g.Key, "err", err)
	}
}

func (s *Session) restore(index int) ([]models.Annotation, error) {
	if list, ok := s.stash[index]; ok {
		return list, nil
	}
	if s.opts.Snapshots == nil {
		return nil, nil
	}

	snap, err := s.opts.Snapshots.GetByKey(s.opts.Workspace, s.groups[index].Key)
	if errors.Is(err, shared.ErrSnapshotNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap.Annotations(), nil
}
