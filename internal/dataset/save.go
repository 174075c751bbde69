package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/natefinch/atomic"
	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// Artifact file names written into every output directory.
const (
	DataFile      = "data.npy"
	LabelFile     = "data_label.npy"
	TimestampFile = "data_timestamp.npy"
)

// DefaultSkipPoints is the number of leading samples dropped on save unless configured otherwise.
const DefaultSkipPoints = 520

var artifactNames = []string{DataFile, LabelFile, TimestampFile}

// SaveOptions controls the layout and alignment of labeled output.
type SaveOptions struct {
	Mode       models.SaveMode
	SkipPoints int
	GroupIndex int  // zero-based index of the group being saved
	Overwrite  bool // replace existing artifacts instead of failing with [shared.ErrTargetExists]
}

// SaveResult describes what [Save] wrote.
type SaveResult struct {
	Mode    models.SaveMode
	Dirs    []string // output directories, one per written artifact triplet
	Files   []string // every artifact written
	Rows    int      // merged: padded row count; separate: longest written series
	Skipped []string // sources with no samples left after skipping
}

// TargetDirs returns the output directories a save with opts would write to.
func TargetDirs(dir string, sources []Series, annotations []models.Annotation, opts SaveOptions) []string {
	if opts.Mode == models.SaveSeparate {
		dirs := make([]string, 0, len(sources))
		for _, s := range sources {
			if opts.SkipPoints >= len(s.Data) {
				continue
			}
			dirs = append(dirs, filepath.Join(dir, BaseName(s.Path)))
		}
		return dirs
	}
	return []string{filepath.Join(dir, MergedDirName(opts.GroupIndex, len(annotations)))}
}

// MergedDirName names the merged output directory of a group.
func MergedDirName(groupIndex, annotationCount int) string {
	return fmt.Sprintf("datagroup%dmasks%d", groupIndex+1, annotationCount)
}

// Conflicts lists artifacts that a save with opts would overwrite.
func Conflicts(dir string, sources []Series, annotations []models.Annotation, opts SaveOptions) ([]string, error) {
	var existing []string
	for _, d := range TargetDirs(dir, sources, annotations, opts) {
		for _, name := range artifactNames {
			p := filepath.Join(d, name)
			_, err := os.Stat(p)
			switch {
			case err == nil:
				existing = append(existing, p)
			case !errors.Is(err, fs.ErrNotExist):
				return nil, fmt.Errorf("failed to stat %s: %w", p, err)
			}
		}
	}
	return existing, nil
}

// Save writes sources and their labels under dir.
//
// Annotation [start, end) covers the retained sample i of a source when start <= i+skip < end.
// Ranges past the end of a source are clipped to its length. When any artifact already exists and
// opts.Overwrite is unset nothing is written and the error wraps [shared.ErrTargetExists].
func Save(dir string, sources []Series, annotations []models.Annotation, opts SaveOptions) (*SaveResult, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: %w", shared.ErrSaveFailed, shared.ErrNoFiles)
	}
	if opts.SkipPoints < 0 {
		return nil, fmt.Errorf("%w: skip points must be non-negative, got %d", shared.ErrInvalidInput, opts.SkipPoints)
	}
	if opts.Mode == "" {
		opts.Mode = models.SaveMerged
	}

	if !opts.Overwrite {
		existing, err := Conflicts(dir, sources, annotations, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrSaveFailed, err)
		}
		if len(existing) > 0 {
			return nil, fmt.Errorf("%w: %d file(s) under %s", shared.ErrTargetExists, len(existing), dir)
		}
	}

	var (
		res *SaveResult
		err error
	)
	switch opts.Mode {
	case models.SaveMerged:
		res, err = saveMerged(dir, sources, annotations, opts)
	case models.SaveSeparate:
		res, err = saveSeparate(dir, sources, annotations, opts)
	default:
		return nil, fmt.Errorf("%w: unknown save mode %q", shared.ErrInvalidInput, opts.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSaveFailed, err)
	}
	return res, nil
}

func saveMerged(dir string, sources []Series, annotations []models.Annotation, opts SaveOptions) (*SaveResult, error) {
	columns := make([][]float64, len(sources))
	res := &SaveResult{Mode: models.SaveMerged}
	rows := 0
	for i, s := range sources {
		if opts.SkipPoints >= len(s.Data) {
			res.Skipped = append(res.Skipped, s.Path)
			continue
		}
		columns[i] = s.Data[opts.SkipPoints:]
		rows = max(rows, len(columns[i]))
	}
	if rows == 0 {
		return nil, fmt.Errorf("no samples left after skipping %d points", opts.SkipPoints)
	}

	cols := len(columns)
	data := mat.NewDense(rows, cols, nil)
	labels := make([]int64, rows*cols)
	for j, col := range columns {
		for i, v := range col {
			data.Set(i, j, v)
		}
		for _, a := range annotations {
			lo, hi := shiftRange(a, opts.SkipPoints, len(col))
			for i := lo; i < hi; i++ {
				labels[i*cols+j] = int64(a.ID)
			}
		}
	}

	out := filepath.Join(dir, MergedDirName(opts.GroupIndex, len(annotations)))
	var labelBuf bytes.Buffer
	if err := encodeInt64Matrix(&labelBuf, rows, cols, labels); err != nil {
		return nil, err
	}
	files, err := writeArtifacts(out, data, labelBuf.Bytes(), indexVector(rows))
	if err != nil {
		return nil, err
	}

	res.Dirs = []string{out}
	res.Files = files
	res.Rows = rows
	return res, nil
}

func saveSeparate(dir string, sources []Series, annotations []models.Annotation, opts SaveOptions) (*SaveResult, error) {
	res := &SaveResult{Mode: models.SaveSeparate}
	for _, s := range sources {
		if opts.SkipPoints >= len(s.Data) {
			res.Skipped = append(res.Skipped, s.Path)
			continue
		}
		data := s.Data[opts.SkipPoints:]

		labels := make([]int64, len(data))
		for _, a := range annotations {
			lo, hi := shiftRange(a, opts.SkipPoints, len(data))
			for i := lo; i < hi; i++ {
				labels[i] = int64(a.ID)
			}
		}

		var labelBuf bytes.Buffer
		if err := npyio.Write(&labelBuf, labels); err != nil {
			return nil, fmt.Errorf("failed to encode labels of %s: %w", s.Path, err)
		}

		out := filepath.Join(dir, BaseName(s.Path))
		files, err := writeArtifacts(out, data, labelBuf.Bytes(), indexVector(len(data)))
		if err != nil {
			return nil, err
		}
		res.Dirs = append(res.Dirs, out)
		res.Files = append(res.Files, files...)
		res.Rows = max(res.Rows, len(data))
	}
	if len(res.Dirs) == 0 {
		return nil, fmt.Errorf("no samples left after skipping %d points", opts.SkipPoints)
	}
	return res, nil
}

// shiftRange maps an annotation onto retained sample indices of a series of length n.
func shiftRange(a models.Annotation, skip, n int) (int, int) {
	lo := max(0, a.Start-skip)
	hi := min(n, max(0, a.End-skip))
	if lo >= hi {
		return 0, 0
	}
	return lo, hi
}

func indexVector(n int) []int64 {
	idx := make([]int64, n)
	for i := range idx {
		idx[i] = int64(i)
	}
	return idx
}

// writeArtifacts writes the data, label and timestamp files of one output directory.
func writeArtifacts(dir string, data any, labels []byte, timestamps []int64) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var dataBuf, tsBuf bytes.Buffer
	if err := npyio.Write(&dataBuf, data); err != nil {
		return nil, fmt.Errorf("failed to encode data: %w", err)
	}
	if err := npyio.Write(&tsBuf, timestamps); err != nil {
		return nil, fmt.Errorf("failed to encode timestamps: %w", err)
	}

	contents := [][]byte{dataBuf.Bytes(), labels, tsBuf.Bytes()}
	files := make([]string, 0, len(artifactNames))
	for i, name := range artifactNames {
		p := filepath.Join(dir, name)
		if err := atomic.WriteFile(p, bytes.NewReader(contents[i])); err != nil {
			return files, fmt.Errorf("failed to write %s: %w", p, err)
		}
		files = append(files, p)
	}
	return files, nil
}
