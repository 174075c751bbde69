package dataset

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/sbinet/npyio"
	"github.com/ulikunitz/xz"
)

// Compression is the container format wrapped around an NPY stream.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

// DetectCompression inspects the leading bytes of a stream.
func DetectCompression(header []byte) Compression {
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(header, bzip2Magic):
		return CompressionBzip2
	case bytes.HasPrefix(header, xzMagic):
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// Series is one loaded file.
type Series struct {
	Path string
	Data []float64
}

// Load reads the NPY array at path and reduces it to a single series.
//
// One-dimensional arrays are returned as is, two-dimensional arrays yield their first column
// (a single-column matrix is flattened) and higher ranks are flattened in row-major order.
// Reading stops early when ctx is cancelled.
func Load(ctx context.Context, path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrLoadFailed, path, err)
	}
	defer f.Close()

	data, err := Decode(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrLoadFailed, path, err)
	}
	return data, nil
}

// LoadAll loads every path in order. The first failure aborts the batch.
func LoadAll(ctx context.Context, paths []string) ([]Series, error) {
	out := make([]Series, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := Load(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, Series{Path: p, Data: data})
	}
	return out, nil
}

// Decode reads an NPY stream, transparently decompressing gzip, bzip2 and xz input.
func Decode(ctx context.Context, r io.Reader) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	br := bufio.NewReader(&ctxReader{ctx: ctx, r: r})
	header, _ := br.Peek(len(xzMagic))

	var src io.Reader = br
	switch DetectCompression(header) {
	case CompressionGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		src = gz
	case CompressionBzip2:
		src = bzip2.NewReader(br)
	case CompressionXZ:
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		src = xr
	}

	npy, err := npyio.NewReader(src)
	if err != nil {
		return nil, fmt.Errorf("invalid npy header: %w", err)
	}

	data, err := readValues(npy)
	if err != nil {
		return nil, err
	}
	return reduce(data, npy.Header.Descr.Shape, npy.Header.Descr.Fortran)
}

type number interface {
	~float32 | ~float64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64
}

func readAs[T number](r *npyio.Reader) ([]float64, error) {
	var v []T
	if err := r.Read(&v); err != nil {
		return nil, err
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out, nil
}

func readValues(r *npyio.Reader) ([]float64, error) {
	code := r.Header.Descr.Type
	if len(code) == 3 {
		code = code[1:]
	}

	switch code {
	case "f8":
		var v []float64
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		return v, nil
	case "f4":
		return readAs[float32](r)
	case "i8":
		return readAs[int64](r)
	case "i4":
		return readAs[int32](r)
	case "i2":
		return readAs[int16](r)
	case "i1":
		return readAs[int8](r)
	case "u8":
		return readAs[uint64](r)
	case "u4":
		return readAs[uint32](r)
	case "u2":
		return readAs[uint16](r)
	case "u1":
		return readAs[uint8](r)
	case "b1":
		var v []bool
		if err := r.Read(&v); err != nil {
			return nil, err
		}
		out := make([]float64, len(v))
		for i, b := range v {
			if b {
				out[i] = 1
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedDT, r.Header.Descr.Type)
	}
}

// reduce maps an n-dimensional array onto one series.
func reduce(data []float64, shape []int, fortran bool) ([]float64, error) {
	n := 1
	for _, d := range shape {
		n *= d
	}
	if len(data) < n {
		return nil, fmt.Errorf("array holds %d values, shape %v needs %d", len(data), shape, n)
	}
	data = data[:n]

	switch len(shape) {
	case 0, 1:
		return data, nil
	case 2:
		rows, cols := shape[0], shape[1]
		if cols == 1 || rows == 0 {
			return data, nil
		}
		if fortran {
			return data[:rows], nil
		}
		col := make([]float64, rows)
		for i := range rows {
			col[i] = data[i*cols]
		}
		return col, nil
	default:
		if fortran {
			return rowMajor(data, shape), nil
		}
		return data, nil
	}
}

// rowMajor reorders column-major data into row-major order.
func rowMajor(data []float64, shape []int) []float64 {
	strides := make([]int, len(shape))
	s := 1
	for d := range shape {
		strides[d] = s
		s *= shape[d]
	}

	out := make([]float64, len(data))
	idx := make([]int, len(shape))
	for k := range out {
		off := 0
		for d := range idx {
			off += idx[d] * strides[d]
		}
		out[k] = data[off]

		for d := len(idx) - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
		}
	}
	return out
}

// ctxReader aborts reads once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
