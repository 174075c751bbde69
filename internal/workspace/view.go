package workspace

import (
	"github.com/desertthunder/tslabel/internal/dataset"
	"github.com/desertthunder/tslabel/internal/masks"
	"github.com/desertthunder/tslabel/internal/viewport"
)

// View is one displayed file: its samples, window and masks.
type View struct {
	ID    int
	Path  string
	Name  string
	Data  []float64
	Nav   *viewport.Navigator
	Masks *masks.Registry
}

// Value returns the sample at x.
func (v *View) Value(x int) (float64, bool) {
	if x < 0 || x >= len(v.Data) {
		return 0, false
	}
	return v.Data[x], true
}

// Len returns the number of samples.
func (v *View) Len() int { return len(v.Data) }

// YRange returns the y bounds for the view's current y mode.
func (v *View) YRange() (float64, float64) { return v.Nav.YRange(v.Data) }

// Visible returns the samples inside the window.
func (v *View) Visible() []float64 { return v.Nav.Visible(v.Data) }

func (v *View) series() dataset.Series { return dataset.Series{Path: v.Path, Data: v.Data} }
