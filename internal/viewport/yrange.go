package viewport

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/desertthunder/tslabel/internal/models"
)

// YRange returns the y bounds to display for data under the navigator's y mode, padded
// by 10% of the span. A flat series is treated as having span 1.
func (n *Navigator) YRange(data []float64) (float64, float64) {
	src := data
	if n.mode == models.YWindow {
		src = n.Visible(data)
	}
	finite := make([]float64, 0, len(src))
	for _, v := range src {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return -0.1, 1.1
	}

	lo, hi := floats.Min(finite), floats.Max(finite)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	margin := span * 0.1
	return lo - margin, hi + margin
}

// TickSpacing picks a major x-axis tick interval so that span shows about six ticks,
// snapped to 1, 2 or 5 times a power of ten.
func TickSpacing(span int) int {
	raw := float64(span) / 6
	if raw <= 1 {
		return 1
	}
	base := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, f := range []float64{1, 2, 5, 10} {
		if raw <= f*base {
			return int(f * base)
		}
	}
	return int(10 * base)
}
