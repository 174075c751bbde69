// Package viewport implements per-view window navigation over the sample index domain.
//
// A [Navigator] owns window_start and window_size for one view. Sizes are clamped to
// [MinWindow, data length]; starts to [0, data length - size]. Every operation leaves the
// window inside the array.
package viewport

import (
	"github.com/desertthunder/tslabel/internal/models"
)

const (
	MinWindow     = 100
	DefaultWindow = 1000
)

// Direction selects pan and zoom direction.
type Direction int

const (
	Prev Direction = iota
	Next
)

// Zoom directions share the pan constants.
const (
	In  = Prev
	Out = Next
)

// Navigator is the window state of one view.
type Navigator struct {
	length int
	start  int
	size   int
	mode   models.YMode
}

// New creates a navigator over length samples starting at index 0.
func New(length, size int, mode models.YMode) *Navigator {
	if mode == "" {
		mode = models.YGlobal
	}
	n := &Navigator{length: max(0, length), mode: mode}
	n.size = n.clampSize(size)
	return n
}

func (n *Navigator) clampSize(size int) int {
	lo := min(MinWindow, n.length)
	return max(lo, min(size, n.length))
}

func (n *Navigator) clampStart(start int) int {
	return max(0, min(start, n.MaxStart()))
}

// Length returns the data length.
func (n *Navigator) Length() int { return n.length }

// Start returns window_start.
func (n *Navigator) Start() int { return n.start }

// Size returns window_size.
func (n *Navigator) Size() int { return n.size }

// End returns the exclusive end of the window.
func (n *Navigator) End() int { return min(n.length, n.start+n.size) }

// MaxStart returns the largest valid window_start.
func (n *Navigator) MaxStart() int { return max(0, n.length-n.size) }

// YMode returns the y scaling mode.
func (n *Navigator) YMode() models.YMode { return n.mode }

// SetYMode changes the y scaling mode.
func (n *Navigator) SetYMode(mode models.YMode) { n.mode = mode }

// SetLength rebinds the navigator to an array of a new length and reclamps.
func (n *Navigator) SetLength(length int) {
	n.length = max(0, length)
	n.size = n.clampSize(n.size)
	n.start = n.clampStart(n.start)
}

// SetSize applies a shared window size, keeping the start clamped.
func (n *Navigator) SetSize(size int) {
	n.size = n.clampSize(size)
	n.start = n.clampStart(n.start)
}

// Center places the window in the middle of the array.
func (n *Navigator) Center() {
	n.start = max(0, (n.length-n.size)/2)
}

// Step returns the pan distance, half a window.
func (n *Navigator) Step() int { return max(1, n.size/2) }

// Pan moves the window half its size. Consecutive pages overlap by half a window.
func (n *Navigator) Pan(dir Direction) {
	switch dir {
	case Prev:
		n.start = max(0, n.start-n.Step())
	case Next:
		n.start = min(n.MaxStart(), n.start+n.Step())
	}
}

// Zoom shrinks (In) the window to 70% or grows (Out) it to 140%, keeping the prior
// midpoint centered.
func (n *Navigator) Zoom(dir Direction) {
	old := n.size
	switch dir {
	case In:
		n.size = n.clampSize(max(MinWindow, old*7/10))
	case Out:
		n.size = n.clampSize(min(n.length, old*14/10))
	}
	n.start = n.clampStart(n.start + (old-n.size)/2)
}

// SliderToWindow maps a slider percentage in [0, 100] to window_start.
func (n *Navigator) SliderToWindow(pct float64) {
	pct = max(0, min(100, pct))
	n.start = n.clampStart(int(pct / 100 * float64(n.MaxStart())))
}

// WindowToSlider maps window_start back to a slider percentage.
func (n *Navigator) WindowToSlider() int {
	ms := n.MaxStart()
	if ms == 0 {
		return 0
	}
	return n.start * 100 / ms
}

// Locate centers the window on the annotation midpoint.
func (n *Navigator) Locate(a models.Annotation) {
	n.start = n.clampStart(a.Center() - n.size/2)
}

// Range returns the window as [start, end).
func (n *Navigator) Range() (int, int) { return n.start, n.End() }

// SetRange copies a window from another view, clamped to this array.
func (n *Navigator) SetRange(start, end int) {
	if end < start {
		start, end = end, start
	}
	n.size = n.clampSize(end - start)
	n.start = n.clampStart(start)
}

// Visible returns the window slice of data.
func (n *Navigator) Visible(data []float64) []float64 {
	start, end := min(n.start, len(data)), min(n.End(), len(data))
	return data[start:end]
}
