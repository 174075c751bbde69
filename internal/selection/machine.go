// Package selection tracks the one global mask id that may be dragged.
//
// The machine has two states, Unarmed and Armed(id). Clicking or hovering a mask arms it;
// hovering empty space starts a dwell timer that disarms when it fires. Every timer is
// tagged with a token and a callback carrying a superseded token does nothing.
package selection

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/tslabel/internal/shared"
)

// DefaultDwell is the hover-on-empty delay before disarming.
const DefaultDwell = time.Second

// Scheduler runs f once after d on the interaction loop. The returned stop function
// cancels the call and reports whether it was still pending.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// Highlighter applies selection visuals and drag permission to every mask of a global id.
// Zero means no mask is selected.
type Highlighter interface {
	Highlight(global int)
}

// Change describes an armed id transition. Zero means unarmed.
type Change struct {
	From   int
	To     int
	Reason string
}

// Machine is the selection state machine. It is not safe for concurrent use.
type Machine struct {
	armed     int
	dwell     time.Duration
	sched     Scheduler
	hl        Highlighter
	token     uint64
	stop      func() bool
	listeners []func(Change)
	logger    *log.Logger
}

// New creates an unarmed machine.
func New(hl Highlighter, sched Scheduler, dwell time.Duration, logger *log.Logger) *Machine {
	if dwell < 0 {
		dwell = DefaultDwell
	}
	return &Machine{
		dwell:  dwell,
		sched:  sched,
		hl:     hl,
		logger: shared.WithLogger(logger, "component", "selection"),
	}
}

// OnChange registers a listener for armed id transitions.
func (m *Machine) OnChange(f func(Change)) {
	m.listeners = append(m.listeners, f)
}

// Armed returns the armed global id.
func (m *Machine) Armed() (int, bool) {
	return m.armed, m.armed != 0
}

// DwellPending reports whether a disarm timer is scheduled.
func (m *Machine) DwellPending() bool {
	return m.stop != nil
}

// Click arms id, replacing any previous selection.
func (m *Machine) Click(id int) {
	if id <= 0 {
		return
	}
	m.cancelDwell()
	if m.armed == id {
		return
	}
	m.set(id, "click")
}

// ClickEmpty is ignored; only the dwell timer disarms.
func (m *Machine) ClickEmpty() {}

// Hover re-arms on a different mask while armed and cancels a pending dwell.
// Hovering while unarmed does nothing.
func (m *Machine) Hover(id int) {
	if m.armed == 0 || id <= 0 {
		return
	}
	m.cancelDwell()
	if id != m.armed {
		m.set(id, "hover")
	}
}

// Enter cancels a pending dwell when the pointer re-enters a view.
func (m *Machine) Enter() {
	m.cancelDwell()
}

// HoverEmpty starts the dwell timer while armed. An already pending timer is kept.
func (m *Machine) HoverEmpty() {
	if m.armed == 0 || m.stop != nil {
		return
	}
	if m.dwell == 0 || m.sched == nil {
		m.set(0, "dwell")
		return
	}

	m.token++
	token := m.token
	m.stop = m.sched.AfterFunc(m.dwell, func() { m.fire(token) })
}

func (m *Machine) fire(token uint64) {
	if token != m.token || m.stop == nil {
		m.logger.Debug("ignored stale dwell", "token", token, "current", m.token)
		return
	}
	m.stop = nil
	if m.armed != 0 {
		m.set(0, "dwell")
	}
}

// Clear disarms immediately and cancels any pending dwell.
func (m *Machine) Clear() {
	m.cancelDwell()
	if m.armed != 0 {
		m.set(0, "clear")
	}
}

func (m *Machine) cancelDwell() {
	if m.stop == nil {
		return
	}
	m.stop()
	m.stop = nil
	m.token++
}

func (m *Machine) set(id int, reason string) {
	prev := m.armed
	m.armed = id
	if m.hl != nil {
		m.hl.Highlight(id)
	}
	m.logger.Debug("selection changed", "from", prev, "to", id, "reason", reason)
	for _, f := range m.listeners {
		f(Change{From: prev, To: id, Reason: reason})
	}
}
