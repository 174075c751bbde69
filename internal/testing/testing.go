// package testing contains shared testing utilities
package testing

import (
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sbinet/npyio"
	"github.com/ulikunitz/xz"
)

// FakeScheduler records scheduled callbacks and runs them only when told to.
type FakeScheduler struct {
	calls []*ScheduledCall
}

// ScheduledCall is one callback registered with [FakeScheduler].
type ScheduledCall struct {
	Delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

// AfterFunc satisfies the dwell scheduler contract.
func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	c := &ScheduledCall{Delay: d, f: f}
	s.calls = append(s.calls, c)
	return func() bool {
		if c.stopped || c.fired {
			return false
		}
		c.stopped = true
		return true
	}
}

// Calls returns every callback ever scheduled, oldest first.
func (s *FakeScheduler) Calls() []*ScheduledCall { return s.calls }

// Pending returns the number of callbacks neither stopped nor fired.
func (s *FakeScheduler) Pending() int {
	n := 0
	for _, c := range s.calls {
		if !c.stopped && !c.fired {
			n++
		}
	}
	return n
}

// FireAll runs every pending callback in scheduling order.
func (s *FakeScheduler) FireAll() {
	for _, c := range s.calls {
		if !c.stopped && !c.fired {
			c.Fire()
		}
	}
}

// Fire runs the callback regardless of whether it was stopped, the way a timer that
// already fired before Stop would deliver a late event.
func (c *ScheduledCall) Fire() {
	c.fired = true
	c.f()
}

// Stopped reports whether the call was cancelled.
func (c *ScheduledCall) Stopped() bool { return c.stopped }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// WriteNPY writes val (a numeric slice or gonum matrix) as an NPY file at path.
func WriteNPY(t *testing.T, path string, val any) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := npyio.Write(f, val); err != nil {
		t.Fatalf("Failed to write npy %s: %v", path, err)
	}
	return path
}

// WriteCompressedNPY writes val as NPY wrapped in gzip or xz, chosen by the path suffix.
func WriteCompressedNPY(t *testing.T, path string, val any) string {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()

	var w io.WriteCloser
	switch filepath.Ext(path) {
	case ".gz":
		w = gzip.NewWriter(f)
	case ".xz":
		w, err = xz.NewWriter(f)
		if err != nil {
			t.Fatalf("Failed to create xz writer: %v", err)
		}
	default:
		t.Fatalf("Unsupported compressed suffix for %s", path)
	}

	if err := npyio.Write(w, val); err != nil {
		t.Fatalf("Failed to write npy %s: %v", path, err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close compressor for %s: %v", path, err)
	}
	return path
}

// ReadNPY reads an NPY file into ptr and returns its shape.
func ReadNPY(t *testing.T, path string, ptr any) []int {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		t.Fatalf("Failed to read npy header of %s: %v", path, err)
	}
	if err := r.Read(ptr); err != nil {
		t.Fatalf("Failed to read npy data of %s: %v", path, err)
	}
	return r.Header.Descr.Shape
}

// Touch sets the modification time of path.
func Touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Failed to set mtime of %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
