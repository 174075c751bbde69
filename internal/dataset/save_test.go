package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
	th "github.com/desertthunder/tslabel/internal/testing"
	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

func ramp(n int, offset float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = offset + float64(i)
	}
	return out
}

func TestSaveMerged(t *testing.T) {
	dir := t.TempDir()
	sources := []Series{
		{Path: "/in/run_a.npy", Data: ramp(1000, 0)},
		{Path: "/in/run_b.npy", Data: ramp(800, 10000)},
	}
	annotations := []models.Annotation{{ID: 1, Start: 600, End: 700}, {ID: 2, Start: 900, End: 1100}}
	opts := SaveOptions{Mode: models.SaveMerged, SkipPoints: 520, GroupIndex: 2}

	res, err := Save(dir, sources, annotations, opts)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out := filepath.Join(dir, "datagroup3masks2")
	if diff := cmp.Diff([]string{out}, res.Dirs); diff != "" {
		t.Errorf("dirs mismatch (-want +got):\n%s", diff)
	}
	if res.Rows != 480 {
		t.Errorf("expected 480 rows, got %d", res.Rows)
	}
	for _, name := range []string{DataFile, LabelFile, TimestampFile} {
		th.AssertFileExists(t, filepath.Join(out, name))
	}

	t.Run("data matrix is padded", func(t *testing.T) {
		var m mat.Dense
		th.ReadNPY(t, filepath.Join(out, DataFile), &m)
		r, c := m.Dims()
		if r != 480 || c != 2 {
			t.Fatalf("expected 480x2, got %dx%d", r, c)
		}
		if got := m.At(0, 0); got != 520 {
			t.Errorf("At(0, 0) = %v, want 520", got)
		}
		if got := m.At(279, 1); got != 10799 {
			t.Errorf("At(279, 1) = %v, want 10799", got)
		}
		if got := m.At(300, 1); got != 0 {
			t.Errorf("padding At(300, 1) = %v, want 0", got)
		}
	})

	t.Run("labels are shifted by skip", func(t *testing.T) {
		var labels []int64
		shape := th.ReadNPY(t, filepath.Join(out, LabelFile), &labels)
		if diff := cmp.Diff([]int{480, 2}, shape); diff != "" {
			t.Fatalf("shape mismatch (-want +got):\n%s", diff)
		}
		at := func(row, col int) int64 { return labels[row*2+col] }

		for _, col := range []int{0, 1} {
			if at(79, col) != 0 || at(80, col) != 1 || at(179, col) != 1 || at(180, col) != 0 {
				t.Errorf("column %d: annotation 1 should cover rows [80, 180)", col)
			}
		}
		if at(380, 0) != 2 || at(479, 0) != 2 {
			t.Error("annotation 2 should be clipped to the end of column 0")
		}
		if at(279, 1) != 0 {
			t.Error("annotation 2 lies past the end of column 1")
		}
	})

	t.Run("timestamps index rows", func(t *testing.T) {
		var ts []int64
		th.ReadNPY(t, filepath.Join(out, TimestampFile), &ts)
		if len(ts) != 480 || ts[0] != 0 || ts[479] != 479 {
			t.Errorf("unexpected timestamps: len=%d", len(ts))
		}
	})

	t.Run("existing target requires overwrite", func(t *testing.T) {
		conflicts, err := Conflicts(dir, sources, annotations, opts)
		if err != nil {
			t.Fatalf("Conflicts failed: %v", err)
		}
		if len(conflicts) != 3 {
			t.Errorf("expected 3 conflicts, got %v", conflicts)
		}

		if _, err := Save(dir, sources, annotations, opts); !errors.Is(err, shared.ErrTargetExists) {
			t.Errorf("expected ErrTargetExists, got %v", err)
		}

		opts.Overwrite = true
		if _, err := Save(dir, sources, annotations, opts); err != nil {
			t.Errorf("overwrite failed: %v", err)
		}
	})

	t.Run("all sources shorter than skip", func(t *testing.T) {
		short := []Series{{Path: "/in/x.npy", Data: ramp(10, 0)}}
		_, err := Save(t.TempDir(), short, nil, SaveOptions{Mode: models.SaveMerged, SkipPoints: 10})
		if !errors.Is(err, shared.ErrSaveFailed) {
			t.Errorf("expected ErrSaveFailed, got %v", err)
		}
	})
}

func TestSaveSeparate(t *testing.T) {
	dir := t.TempDir()
	sources := []Series{
		{Path: "/in/run_a.npy", Data: ramp(50, 0)},
		{Path: "/in/run_b.npy.gz", Data: ramp(30, 0)},
		{Path: "/in/tiny.npy", Data: ramp(5, 0)},
	}
	annotations := []models.Annotation{{ID: 1, Start: 12, End: 20}}

	res, err := Save(dir, sources, annotations, SaveOptions{Mode: models.SaveSeparate, SkipPoints: 10})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	want := []string{filepath.Join(dir, "run_a"), filepath.Join(dir, "run_b")}
	if diff := cmp.Diff(want, res.Dirs); diff != "" {
		t.Errorf("dirs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/in/tiny.npy"}, res.Skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
	if len(res.Files) != 6 {
		t.Errorf("expected 6 files, got %d", len(res.Files))
	}

	var data []float64
	th.ReadNPY(t, filepath.Join(dir, "run_b", DataFile), &data)
	if len(data) != 20 || data[0] != 10 {
		t.Errorf("unexpected data: len=%d first=%v", len(data), data[0])
	}

	var labels []int64
	th.ReadNPY(t, filepath.Join(dir, "run_a", LabelFile), &labels)
	wantLabels := make([]int64, 40)
	for i := 2; i < 10; i++ {
		wantLabels[i] = 1
	}
	if diff := cmp.Diff(wantLabels, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveValidation(t *testing.T) {
	t.Run("no sources", func(t *testing.T) {
		if _, err := Save(t.TempDir(), nil, nil, SaveOptions{}); !errors.Is(err, shared.ErrNoFiles) {
			t.Errorf("expected ErrNoFiles, got %v", err)
		}
	})

	t.Run("negative skip", func(t *testing.T) {
		src := []Series{{Path: "a.npy", Data: ramp(5, 0)}}
		if _, err := Save(t.TempDir(), src, nil, SaveOptions{SkipPoints: -1}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown mode", func(t *testing.T) {
		src := []Series{{Path: "a.npy", Data: ramp(5, 0)}}
		if _, err := Save(t.TempDir(), src, nil, SaveOptions{Mode: "zip"}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestEncodeInt64Matrix(t *testing.T) {
	var buf bytes.Buffer
	values := []int64{1, 2, 3, 4, 5, 6}
	if err := encodeInt64Matrix(&buf, 3, 2, values); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	raw := buf.Bytes()
	if !bytes.HasPrefix(raw, npyMagic) {
		t.Fatal("missing NPY magic")
	}
	if header := len(raw) - 8*len(values); header%64 != 0 {
		t.Errorf("header length %d is not 64-byte aligned", header)
	}

	p := filepath.Join(t.TempDir(), "m.npy")
	if err := os.WriteFile(p, raw, 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	var got []int64
	shape := th.ReadNPY(t, p, &got)
	if diff := cmp.Diff([]int{3, 2}, shape); diff != "" {
		t.Errorf("shape mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(values, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	if err := encodeInt64Matrix(&buf, 2, 2, values); err == nil {
		t.Error("expected error for mismatched length")
	}
}
