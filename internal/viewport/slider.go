package viewport

// Slider is a 0-100 position control bound to a navigator.
//
// Sync updates the displayed value from the navigator without firing OnChange, so a
// programmatic update can never loop back into navigation.
type Slider struct {
	nav      *Navigator
	value    int
	enabled  bool
	OnChange func(value int)
}

// NewSlider creates a slider following nav.
func NewSlider(nav *Navigator) *Slider {
	s := &Slider{nav: nav}
	s.Sync()
	return s
}

// Value returns the displayed percentage.
func (s *Slider) Value() int { return s.value }

// Enabled reports whether the window can move at all.
func (s *Slider) Enabled() bool { return s.enabled }

// Bind points the slider at another navigator and syncs.
func (s *Slider) Bind(nav *Navigator) {
	s.nav = nav
	s.Sync()
}

// Set is a user change: it moves the navigator and notifies OnChange.
func (s *Slider) Set(value int) {
	if s.nav == nil || !s.enabled {
		return
	}
	s.value = max(0, min(100, value))
	s.nav.SliderToWindow(float64(s.value))
	if s.OnChange != nil {
		s.OnChange(s.value)
	}
}

// Sync reflects the navigator's window silently.
func (s *Slider) Sync() {
	if s.nav == nil {
		s.value, s.enabled = 0, false
		return
	}
	s.enabled = s.nav.MaxStart() > 0
	s.value = s.nav.WindowToSlider()
}
