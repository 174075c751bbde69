package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Scheduler runs delayed callbacks on the bubbletea update loop.
//
// AfterFunc only queues a tea.Tick; the callback runs when the matching [MsgDwellFired]
// reaches [Model.Update]. A stopped or already fired id is ignored.
type Scheduler struct {
	seq     int
	pending map[int]func()
	queued  []tea.Cmd
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{pending: make(map[int]func())}
}

// AfterFunc schedules f after d and returns its stop function.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) func() bool {
	s.seq++
	id := s.seq
	s.pending[id] = f
	s.queued = append(s.queued, tea.Tick(d, func(time.Time) tea.Msg { return dwellFiredMsg(id) }))

	return func() bool {
		_, ok := s.pending[id]
		delete(s.pending, id)
		return ok
	}
}

// Fire runs the callback for id if it is still pending.
func (s *Scheduler) Fire(id int) bool {
	f, ok := s.pending[id]
	if !ok {
		return false
	}
	delete(s.pending, id)
	f()
	return true
}

// Pending returns the number of callbacks waiting to fire.
func (s *Scheduler) Pending() int { return len(s.pending) }

// Flush returns the ticks queued since the last flush.
func (s *Scheduler) Flush() tea.Cmd {
	cmds := s.queued
	s.queued = nil
	return tea.Batch(cmds...)
}
