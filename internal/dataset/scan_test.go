package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/tslabel/internal/models"
	th "github.com/desertthunder/tslabel/internal/testing"
	"github.com/google/go-cmp/cmp"
)

func TestScan(t *testing.T) {
	root := t.TempDir()
	a := th.WriteNPY(t, filepath.Join(root, "a.npy"), []float64{1, 2})
	b := th.WriteNPY(t, filepath.Join(root, "nested", "deep", "B.NPY"), []float64{3})
	c := th.WriteCompressedNPY(t, filepath.Join(root, "c.npy.gz"), []float64{4})
	th.WriteNPY(t, filepath.Join(root, "notes.txt"), []float64{5})

	t.Run("recursive and case insensitive", func(t *testing.T) {
		files, err := Scan([]string{root})
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		want := []string{a, c, b}
		if diff := cmp.Diff(want, files); diff != "" {
			t.Errorf("files mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("custom extensions", func(t *testing.T) {
		files, err := Scan([]string{root}, ".npy")
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if diff := cmp.Diff([]string{a, b}, files); diff != "" {
			t.Errorf("files mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("missing directories are skipped", func(t *testing.T) {
		files, err := Scan([]string{filepath.Join(root, "missing"), root, root})
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if len(files) != 3 {
			t.Errorf("expected 3 unique files, got %v", files)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		files, err := Scan(nil)
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if len(files) != 0 {
			t.Errorf("expected no files, got %v", files)
		}
	})
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/run1.npy", "run1"},
		{"run1.NPY", "run1"},
		{"/data/run1.npy.gz", "run1"},
		{"run1.npy.XZ", "run1"},
		{"2024-01-02_sensor.v2.npy", "2024-01-02_sensor.v2"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := BaseName(tt.path); got != tt.want {
				t.Errorf("BaseName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestGroupFiles(t *testing.T) {
	root := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	write := func(name string, age int) string {
		p := th.WriteNPY(t, filepath.Join(root, name), []float64{1})
		th.Touch(t, p, base.Add(time.Duration(age)*time.Minute))
		return p
	}

	x2 := write("session01_x.npy", 2)
	x1 := write("session01_y.npy", 1)
	y := write("session02_x.npy", 0)
	short := write("s.npy", 0)

	t.Run("prefix", func(t *testing.T) {
		groups := GroupFiles([]string{x2, y, x1, short}, models.MatchPrefix, 9)
		want := []models.Group{
			{Key: "s", Files: []string{short}},
			{Key: "session01", Files: []string{x1, x2}},
			{Key: "session02", Files: []string{y}},
		}
		if diff := cmp.Diff(want, groups); diff != "" {
			t.Errorf("groups mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("suffix", func(t *testing.T) {
		groups := GroupFiles([]string{x2, y, x1}, models.MatchSuffix, 2)
		want := []models.Group{
			{Key: "_x", Files: []string{y, x2}},
			{Key: "_y", Files: []string{x1}},
		}
		if diff := cmp.Diff(want, groups); diff != "" {
			t.Errorf("groups mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("non-positive length uses default", func(t *testing.T) {
		groups := GroupFiles([]string{x1, x2}, models.MatchPrefix, 0)
		if len(groups) != 2 {
			t.Errorf("expected whole names as keys, got %v", groups)
		}
	})
}

func TestCommonPrefix(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
		want  string
	}{
		{"empty", nil, "data"},
		{"single file", []string{"/d/run_42.npy"}, "run_42"},
		{"shared prefix", []string{"/d/sensorA_1.npy", "/d/sensorA_2.npy"}, "sensorA_"},
		{"leading date", []string{"/d/2024-03-05x.npy", "/d/2x.npy"}, "2024-03-05"},
		{"leading letters", []string{"/d/abc1.npy", "/d/xyz.npy"}, "abc"},
		{"first ten characters", []string{"/d/123456789012.npy", "/d/9.npy"}, "1234567890"},
		{"short fallback", []string{"/d/12.npy", "/d/9.npy"}, "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommonPrefix(tt.paths); got != tt.want {
				t.Errorf("CommonPrefix() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	root := t.TempDir()
	good := th.WriteNPY(t, filepath.Join(root, "good.npy"), []float64{1})
	empty := filepath.Join(root, "empty.npy")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("Failed to create empty file: %v", err)
	}

	got := Validate([]string{good, empty, filepath.Join(root, "missing.npy"), root})
	if diff := cmp.Diff([]string{good}, got); diff != "" {
		t.Errorf("Validate mismatch (-want +got):\n%s", diff)
	}
}
