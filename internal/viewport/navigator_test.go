package viewport

import (
	"math"
	"testing"

	"github.com/desertthunder/tslabel/internal/models"
)

func TestNavigator(t *testing.T) {
	t.Run("center then zoom in", func(t *testing.T) {
		n := New(5000, 1000, models.YGlobal)
		n.Center()
		if n.Start() != 2000 {
			t.Fatalf("center start = %d, want 2000", n.Start())
		}

		n.Zoom(In)
		if n.Size() != 700 || n.Start() != 2150 {
			t.Errorf("zoom in = (%d, %d), want (2150, 700)", n.Start(), n.Size())
		}
		if n.Start() > 4300 {
			t.Errorf("start %d exceeds max 4300", n.Start())
		}
	})

	t.Run("size clamping", func(t *testing.T) {
		tc := []struct {
			name     string
			length   int
			size     int
			wantSize int
		}{
			{"below minimum", 5000, 20, 100},
			{"above length", 500, 1000, 500},
			{"short array", 60, 1000, 60},
			{"empty array", 0, 1000, 0},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				n := New(tt.length, tt.size, "")
				if n.Size() != tt.wantSize {
					t.Errorf("size = %d, want %d", n.Size(), tt.wantSize)
				}
				if n.YMode() != models.YGlobal {
					t.Errorf("default y mode = %s", n.YMode())
				}
			})
		}
	})

	t.Run("center on short array", func(t *testing.T) {
		n := New(80, 1000, models.YGlobal)
		n.Center()
		if n.Start() != 0 {
			t.Errorf("start = %d, want 0", n.Start())
		}
	})

	t.Run("pan", func(t *testing.T) {
		n := New(1000, 300, models.YGlobal)

		steps := []struct {
			dir  Direction
			want int
		}{
			{Next, 150},
			{Next, 300},
			{Next, 450},
			{Next, 600},
			{Next, 700},
			{Next, 700},
			{Prev, 550},
			{Prev, 400},
		}
		for i, s := range steps {
			n.Pan(s.dir)
			if n.Start() != s.want {
				t.Fatalf("step %d: start = %d, want %d", i, n.Start(), s.want)
			}
		}

		for range 10 {
			n.Pan(Prev)
		}
		if n.Start() != 0 {
			t.Errorf("pan prev should stop at 0, got %d", n.Start())
		}
	})

	t.Run("zoom limits", func(t *testing.T) {
		n := New(5000, 120, models.YGlobal)
		n.Zoom(In)
		if n.Size() != 100 {
			t.Errorf("zoom in floor = %d, want 100", n.Size())
		}

		n = New(5000, 4000, models.YGlobal)
		n.SliderToWindow(100)
		n.Zoom(Out)
		if n.Size() != 5000 || n.Start() != 0 {
			t.Errorf("zoom out = (%d, %d), want (0, 5000)", n.Start(), n.Size())
		}
	})

	t.Run("zoom out keeps midpoint", func(t *testing.T) {
		n := New(10000, 1000, models.YGlobal)
		n.SliderToWindow(50)
		mid := n.Start() + n.Size()/2

		n.Zoom(Out)
		if n.Size() != 1400 {
			t.Fatalf("size = %d, want 1400", n.Size())
		}
		if got := n.Start() + n.Size()/2; got != mid {
			t.Errorf("midpoint moved from %d to %d", mid, got)
		}
	})

	t.Run("slider mapping", func(t *testing.T) {
		n := New(5000, 1000, models.YGlobal)

		tc := []struct {
			pct       float64
			wantStart int
			wantPct   int
		}{
			{0, 0, 0},
			{25, 1000, 25},
			{50, 2000, 50},
			{100, 4000, 100},
			{150, 4000, 100},
			{-3, 0, 0},
		}
		for _, tt := range tc {
			n.SliderToWindow(tt.pct)
			if n.Start() != tt.wantStart {
				t.Errorf("SliderToWindow(%v) start = %d, want %d", tt.pct, n.Start(), tt.wantStart)
			}
			if got := n.WindowToSlider(); got != tt.wantPct {
				t.Errorf("WindowToSlider() = %d, want %d", got, tt.wantPct)
			}
		}

		full := New(500, 1000, models.YGlobal)
		if full.WindowToSlider() != 0 {
			t.Error("slider should read 0 when the window covers the array")
		}
	})

	t.Run("locate", func(t *testing.T) {
		tc := []struct {
			name string
			ann  models.Annotation
			want int
		}{
			{"middle", models.Annotation{Start: 2400, End: 2600}, 2000},
			{"near start", models.Annotation{Start: 10, End: 60}, 0},
			{"near end", models.Annotation{Start: 4900, End: 4990}, 4000},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				n := New(5000, 1000, models.YGlobal)
				n.Locate(tt.ann)
				if n.Start() != tt.want {
					t.Errorf("start = %d, want %d", n.Start(), tt.want)
				}
			})
		}
	})

	t.Run("range copy", func(t *testing.T) {
		src := New(5000, 1000, models.YGlobal)
		src.SliderToWindow(50)

		dst := New(3000, 500, models.YGlobal)
		dst.SetRange(src.Range())
		if dst.Size() != 1000 || dst.Start() != 2000 {
			t.Errorf("copied range = (%d, %d), want (2000, 1000)", dst.Start(), dst.Size())
		}

		dst.SetRange(4000, 6000)
		if s, e := dst.Range(); s != 1000 || e != 3000 {
			t.Errorf("range past the end = [%d, %d), want [1000, 3000)", s, e)
		}
	})

	t.Run("set length reclamps", func(t *testing.T) {
		n := New(5000, 1000, models.YGlobal)
		n.SliderToWindow(100)
		n.SetLength(1500)
		if n.Start() != 500 || n.Size() != 1000 {
			t.Errorf("after shrink = (%d, %d), want (500, 1000)", n.Start(), n.Size())
		}
	})
}

func TestSlider(t *testing.T) {
	n := New(5000, 1000, models.YGlobal)
	s := NewSlider(n)
	calls := 0
	s.OnChange = func(int) { calls++ }

	s.Set(50)
	if n.Start() != 2000 || calls != 1 {
		t.Fatalf("user set: start=%d calls=%d", n.Start(), calls)
	}

	n.Pan(Next)
	s.Sync()
	if s.Value() != 62 {
		t.Errorf("synced value = %d, want 62", s.Value())
	}
	if calls != 1 {
		t.Errorf("sync must not notify, got %d calls", calls)
	}

	short := NewSlider(New(50, 1000, models.YGlobal))
	short.Set(80)
	if short.Enabled() || short.Value() != 0 {
		t.Error("slider over a fully visible array should be disabled")
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestYRange(t *testing.T) {
	data := make([]float64, 1000)
	for i := range data {
		data[i] = float64(i)
	}

	t.Run("global", func(t *testing.T) {
		n := New(1000, 100, models.YGlobal)
		lo, hi := n.YRange(data)
		if !approx(lo, -99.9) || !approx(hi, 1098.9) {
			t.Errorf("global range = (%v, %v)", lo, hi)
		}
	})

	t.Run("window", func(t *testing.T) {
		n := New(1000, 100, models.YWindow)
		n.SliderToWindow(100)
		lo, hi := n.YRange(data)
		want := 99.0 * 0.1
		if !approx(lo, 900-want) || !approx(hi, 999+want) {
			t.Errorf("window range = (%v, %v)", lo, hi)
		}
	})

	t.Run("non-finite values are skipped", func(t *testing.T) {
		n := New(4, 100, models.YGlobal)
		lo, hi := n.YRange([]float64{math.NaN(), 0, 10, math.Inf(1)})
		if !approx(lo, -1) || !approx(hi, 11) {
			t.Errorf("range = (%v, %v), want (-1, 11)", lo, hi)
		}
	})

	t.Run("flat series", func(t *testing.T) {
		n := New(3, 100, models.YGlobal)
		lo, hi := n.YRange([]float64{2, 2, 2})
		if !approx(lo, 1.9) || !approx(hi, 2.1) {
			t.Errorf("flat range = (%v, %v)", lo, hi)
		}
	})
}

func TestTickSpacing(t *testing.T) {
	tc := []struct {
		span int
		want int
	}{
		{5, 1},
		{12, 2},
		{30, 5},
		{60, 10},
		{1000, 200},
		{6000, 1000},
		{25000, 5000},
	}
	for _, tt := range tc {
		if got := TickSpacing(tt.span); got != tt.want {
			t.Errorf("TickSpacing(%d) = %d, want %d", tt.span, got, tt.want)
		}
	}
}
