package dataset

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/desertthunder/tslabel/internal/shared"
	th "github.com/desertthunder/tslabel/internal/testing"
	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/mat"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	t.Run("one dimensional float", func(t *testing.T) {
		p := th.WriteNPY(t, filepath.Join(root, "f.npy"), []float64{0.5, 1.5, -2})
		got, err := Load(ctx, p)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if diff := cmp.Diff([]float64{0.5, 1.5, -2}, got); diff != "" {
			t.Errorf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("integer dtype is converted", func(t *testing.T) {
		p := th.WriteNPY(t, filepath.Join(root, "i.npy"), []int32{3, -4, 5})
		got, err := Load(ctx, p)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if diff := cmp.Diff([]float64{3, -4, 5}, got); diff != "" {
			t.Errorf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("matrix yields first column", func(t *testing.T) {
		m := mat.NewDense(3, 2, []float64{1, 10, 2, 20, 3, 30})
		p := th.WriteNPY(t, filepath.Join(root, "m.npy"), m)
		got, err := Load(ctx, p)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if diff := cmp.Diff([]float64{1, 2, 3}, got); diff != "" {
			t.Errorf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("single column is flattened", func(t *testing.T) {
		m := mat.NewDense(4, 1, []float64{4, 3, 2, 1})
		p := th.WriteNPY(t, filepath.Join(root, "col.npy"), m)
		got, err := Load(ctx, p)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if diff := cmp.Diff([]float64{4, 3, 2, 1}, got); diff != "" {
			t.Errorf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("compressed inputs", func(t *testing.T) {
		for _, name := range []string{"z.npy.gz", "z.npy.xz"} {
			p := th.WriteCompressedNPY(t, filepath.Join(root, name), []float64{7, 8, 9})
			got, err := Load(ctx, p)
			if err != nil {
				t.Fatalf("Load(%s) failed: %v", name, err)
			}
			if diff := cmp.Diff([]float64{7, 8, 9}, got); diff != "" {
				t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
			}
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(ctx, filepath.Join(root, "missing.npy"))
		if !errors.Is(err, shared.ErrLoadFailed) {
			t.Errorf("expected ErrLoadFailed, got %v", err)
		}
	})

	t.Run("not an npy file", func(t *testing.T) {
		_, err := Decode(ctx, bytes.NewReader([]byte("plain text")))
		if err == nil {
			t.Error("expected error for invalid header")
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		p := th.WriteNPY(t, filepath.Join(root, "c.npy"), []float64{1, 2, 3})
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Load(cctx, p)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("LoadAll keeps order", func(t *testing.T) {
		a := th.WriteNPY(t, filepath.Join(root, "la.npy"), []float64{1})
		b := th.WriteNPY(t, filepath.Join(root, "lb.npy"), []float64{2, 3})
		series, err := LoadAll(ctx, []string{b, a})
		if err != nil {
			t.Fatalf("LoadAll failed: %v", err)
		}
		want := []Series{{Path: b, Data: []float64{2, 3}}, {Path: a, Data: []float64{1}}}
		if diff := cmp.Diff(want, series); diff != "" {
			t.Errorf("series mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name    string
		data    []float64
		shape   []int
		fortran bool
		want    []float64
	}{
		{"scalar", []float64{5}, nil, false, []float64{5}},
		{"vector", []float64{1, 2, 3}, []int{3}, false, []float64{1, 2, 3}},
		{"c order matrix", []float64{1, 2, 3, 4, 5, 6}, []int{3, 2}, false, []float64{1, 3, 5}},
		{"fortran matrix", []float64{1, 3, 5, 2, 4, 6}, []int{3, 2}, true, []float64{1, 3, 5}},
		{"rank three c order", []float64{1, 2, 3, 4, 5, 6, 7, 8}, []int{2, 2, 2}, false, []float64{1, 2, 3, 4, 5, 6, 7, 8}},
		{"rank three fortran", []float64{1, 5, 3, 7, 2, 6, 4, 8}, []int{2, 2, 2}, true, []float64{1, 2, 3, 4, 5, 6, 7, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reduce(tt.data, tt.shape, tt.fortran)
			if err != nil {
				t.Fatalf("reduce failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("short data", func(t *testing.T) {
		if _, err := reduce([]float64{1}, []int{2, 2}, false); err == nil {
			t.Error("expected error when data is shorter than shape")
		}
	})
}

func TestDetectCompression(t *testing.T) {
	tests := []struct {
		header []byte
		want   Compression
	}{
		{[]byte{0x1f, 0x8b, 0x08}, CompressionGzip},
		{[]byte("BZh91AY"), CompressionBzip2},
		{[]byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, CompressionXZ},
		{[]byte("\x93NUMPY"), CompressionNone},
		{nil, CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			if got := DetectCompression(tt.header); got != tt.want {
				t.Errorf("DetectCompression(%x) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}
