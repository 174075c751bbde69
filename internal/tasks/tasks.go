package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tslabel/internal/annotations"
	"github.com/desertthunder/tslabel/internal/dataset"
	"github.com/desertthunder/tslabel/internal/formatter"
	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultWorkers   = 4
	maxWorkers       = 10
	defaultRateLimit = 20.0
)

// SnapshotReader looks up the stored annotations of a group.
type SnapshotReader interface {
	GetByKey(workspace, groupKey string) (*models.Snapshot, error)
}

// SaveRecorder persists history entries for written output.
type SaveRecorder interface {
	Create(rec *models.SaveRecord) error
}

// Loader reads the files of one group.
type Loader func(ctx context.Context, paths []string) ([]dataset.Series, error)

// Engine runs batch operations over the groups of one workspace.
type Engine struct {
	snapshots SnapshotReader
	records   SaveRecorder
	load      Loader
	logger    *log.Logger
}

// NewEngine creates an Engine. records may be nil to skip history entries.
func NewEngine(snapshots SnapshotReader, records SaveRecorder, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		snapshots: snapshots,
		records:   records,
		load:      dataset.LoadAll,
		logger:    logger,
	}
}

// BatchOpts configures a batch run.
type BatchOpts struct {
	OutputDir  string
	Save       dataset.SaveOptions // GroupIndex is assigned per group
	Format     formatter.Format    // export format, and the manifest encoding when yaml
	NumWorkers int                 // concurrent workers (default: 4, max: 10)
	RateLimit  float64             // groups handed to workers per second (default: 20)
}

// GroupResult is the outcome for one group.
type GroupResult struct {
	GroupKey     string   `json:"group_key" yaml:"group_key"`
	GroupIndex   int      `json:"group_index" yaml:"group_index"`
	Annotations  int      `json:"annotations" yaml:"annotations"`
	Files        []string `json:"files,omitempty" yaml:"files,omitempty"`
	Skipped      []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Success      bool     `json:"success" yaml:"success"`
	Error        error    `json:"-" yaml:"-"`
	ErrorMessage string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Workspace    string        `json:"workspace" yaml:"workspace"`
	OutputDir    string        `json:"output_dir" yaml:"output_dir"`
	StartedAt    time.Time     `json:"started_at" yaml:"started_at"`
	TotalGroups  int           `json:"total_groups" yaml:"total_groups"`
	Succeeded    int           `json:"succeeded" yaml:"succeeded"`
	Failed       int           `json:"failed" yaml:"failed"`
	Empty        int           `json:"empty" yaml:"empty"`
	ManifestPath string        `json:"-" yaml:"-"`
	Results      []GroupResult `json:"results" yaml:"results"`
}

type groupJob struct {
	index       int
	group       models.Group
	annotations []models.Annotation
}

type jobFunc func(ctx context.Context, job groupJob, opts BatchOpts) GroupResult

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// collect resolves the stored annotations of every group. Groups without any are counted as empty.
func (e *Engine) collect(workspace string, groups []models.Group, result *BatchResult) ([]groupJob, error) {
	var jobs []groupJob
	for i, g := range groups {
		snap, err := e.snapshots.GetByKey(workspace, g.Key)
		if errors.Is(err, shared.ErrSnapshotNotFound) {
			result.Empty++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load snapshot for %s: %w", g.Key, err)
		}
		list := snap.Annotations()
		if len(list) == 0 {
			result.Empty++
			continue
		}
		jobs = append(jobs, groupJob{index: i, group: g, annotations: list})
	}
	return jobs, nil
}

// run fans jobs out to a worker pool, paced by a rate limiter, and gathers the results in group order.
func (e *Engine) run(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	workspace string,
	groups []models.Group,
	opts BatchOpts,
	work jobFunc,
	done func(step, total int, res GroupResult) ProgressUpdate,
) (*BatchResult, error) {
	if e.snapshots == nil {
		return nil, fmt.Errorf("%w: snapshot store not initialized", shared.ErrInvalidConfig)
	}
	if len(groups) == 0 {
		return nil, shared.ErrNoGroups
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("labeled_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	opts.NumWorkers = min(opts.NumWorkers, maxWorkers)
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BatchResult{
		Workspace:   workspace,
		OutputDir:   opts.OutputDir,
		StartedAt:   time.Now().UTC(),
		TotalGroups: len(groups),
	}

	e.sendProgress(prog, loadSnapshotsUpdate(len(groups)))
	queue, err := e.collect(workspace, groups, result)
	if err != nil {
		return nil, err
	}
	result.Results = make([]GroupResult, 0, len(queue))

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan groupJob, len(queue))
	results := make(chan GroupResult, len(queue))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				results <- work(ctx, job, opts)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, job := range queue {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			e.sendProgress(prog, loadGroupUpdate(i+1, len(queue), job.group.Key))
			jobs <- job
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Success {
			result.Succeeded++
			e.sendProgress(prog, done(completed, len(queue), res))
		} else {
			result.Failed++
			if res.Error != nil {
				res.ErrorMessage = res.Error.Error()
			}
			e.logger.Warn("group failed", "group", res.GroupKey, "err", res.Error)
			e.sendProgress(prog, groupFailedUpdate(completed, len(queue), res))
		}
		result.Results = append(result.Results, res)
	}
	slices.SortFunc(result.Results, func(a, b GroupResult) int { return a.GroupIndex - b.GroupIndex })

	if err := ctx.Err(); err != nil {
		return result, err
	}

	format := formatter.FormatJSON
	if opts.Format == formatter.FormatYAML {
		format = formatter.FormatYAML
	}
	manifestPath := filepath.Join(opts.OutputDir, "manifest."+extension(format))
	e.sendProgress(prog, manifestUpdate(manifestPath))
	if err := formatter.WriteManifest(result, manifestPath, format); err != nil {
		return result, fmt.Errorf("batch completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// BatchSave writes labeled output for every group with stored annotations.
func (e *Engine) BatchSave(ctx context.Context, prog chan<- ProgressUpdate, workspace string, groups []models.Group, opts BatchOpts) (*BatchResult, error) {
	return e.run(ctx, prog, workspace, groups, opts, e.saveGroup(workspace), saveGroupUpdate)
}

// BatchExport writes the stored annotations of every group as one file per group.
func (e *Engine) BatchExport(ctx context.Context, prog chan<- ProgressUpdate, workspace string, groups []models.Group, opts BatchOpts) (*BatchResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	return e.run(ctx, prog, workspace, groups, opts, exportGroup, exportGroupUpdate)
}

func (e *Engine) saveGroup(workspace string) jobFunc {
	return func(ctx context.Context, job groupJob, opts BatchOpts) GroupResult {
		res := GroupResult{GroupKey: job.group.Key, GroupIndex: job.index, Annotations: len(job.annotations)}

		series, err := e.load(ctx, job.group.Files)
		if err != nil {
			res.Error = err
			return res
		}

		saveOpts := opts.Save
		saveOpts.GroupIndex = job.index
		out, err := dataset.Save(opts.OutputDir, series, job.annotations, saveOpts)
		if err != nil {
			res.Error = err
			return res
		}
		res.Files = out.Files
		res.Skipped = out.Skipped
		res.Success = true

		if e.records != nil {
			dir := opts.OutputDir
			if out.Mode == models.SaveMerged && len(out.Dirs) == 1 {
				dir = out.Dirs[0]
			}
			rec := models.NewSaveRecord(workspace, job.group.Key, out.Mode, dir, len(series), len(job.annotations))
			if err := e.records.Create(rec); err != nil {
				e.logger.Warn("failed to record save", "group", job.group.Key, "err", err)
			}
		}
		return res
	}
}

func exportGroup(_ context.Context, job groupJob, opts BatchOpts) GroupResult {
	res := GroupResult{GroupKey: job.group.Key, GroupIndex: job.index, Annotations: len(job.annotations)}

	store := annotations.NewStore()
	if err := store.ImportAll(job.annotations); err != nil {
		res.Error = err
		return res
	}

	export := formatter.NewAnnotationExport(dataset.GroupName(job.group), job.group.Files, store.ExportAll(), store.Stats())
	name := fmt.Sprintf("group%03d_%s.%s", job.index+1, sanitize(job.group.Key), extension(opts.Format))
	path, err := formatter.WriteExport(export, filepath.Join(opts.OutputDir, name), opts.Format)
	if err != nil {
		res.Error = err
		return res
	}
	res.Files = []string{path}
	res.Success = true
	return res
}

func extension(f formatter.Format) string {
	switch f {
	case formatter.FormatMarkdown:
		return "md"
	case "":
		return "json"
	}
	return string(f)
}

// sanitize keeps a group key usable as a file name.
func sanitize(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, key)
}
