package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/tslabel/internal/dataset"
	"github.com/desertthunder/tslabel/internal/masks"
	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/shared"
	"github.com/desertthunder/tslabel/internal/viewport"
	"github.com/desertthunder/tslabel/internal/workspace"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	LabelView
	PromptView
	ConfirmView
)

type promptKind int

const (
	promptLocate promptKind = iota
	promptAdd
)

type confirmKind int

const (
	confirmOverwrite confirmKind = iota
	confirmSwitch
	confirmClear
)

const noticeDuration = 2 * time.Second

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	session    *workspace.Session
	sched      *Scheduler
	logger     *log.Logger
	width      int
	height     int
	active     int // index into the session's views
	cursor     int // sample index on the active view
	slider     *viewport.Slider
	table      table.Model
	input      textinput.Model
	prompt     promptKind
	confirm    confirmKind
	conflicts  []string
	afterSave  int // group to open once a save succeeds, -1 for none
	startAt    int
	notice     string
	noticeKind string
	noticeSeq  int
	noticeTTL  time.Duration
	help       help.Model
	keys       keyMap
}

// NewModel creates a TUI model over session. sched must be the scheduler the session was built with.
func NewModel(ctx context.Context, session *workspace.Session, sched *Scheduler, logger *log.Logger) *Model {
	input := textinput.New()
	input.CharLimit = 32
	input.Width = 30

	m := &Model{
		ctx:       ctx,
		view:      LoadingView,
		session:   session,
		sched:     sched,
		logger:    shared.WithLogger(logger, "component", "ui"),
		slider:    viewport.NewSlider(nil),
		table:     newAnnotationTable(),
		input:     input,
		afterSave: -1,
		noticeTTL: noticeDuration,
		help:      help.New(),
		keys:      newKeyMap(),
	}
	m.slider.OnChange = func(int) {
		if v := m.activeView(); v != nil {
			_ = m.session.SyncRange(v.ID)
		}
	}
	return m
}

// StartAt sets the group opened by [Model.Init]. Out of range indices fall back to the first group.
func (m *Model) StartAt(index int) *Model {
	if index >= 0 && index < len(m.session.Groups()) {
		m.startAt = index
	}
	return m
}

// Init starts loading the first group.
func (m *Model) Init() tea.Cmd {
	return m.switchGroup(m.startAt)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.refresh()
	return m, tea.Batch(cmd, m.sched.Flush())
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetWidth(min(msg.Width, 60))
		return nil

	case tea.KeyMsg:
		switch m.view {
		case LoadingView:
			return m.handleLoadingKeys(msg)
		case LabelView:
			return m.handleLabelKeys(msg)
		case PromptView:
			return m.handlePromptKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}
	return nil
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgGroupLoaded:
		res := msg.data.(workspace.LoadResult)
		err := m.session.ApplyLoad(res)
		if errors.Is(err, shared.ErrStaleLoad) {
			return nil
		}
		m.view = LabelView
		if err != nil {
			return m.fail(err)
		}
		m.active = 0
		m.centerCursor()
		g, _ := m.session.Group()
		return m.startNotice(fmt.Sprintf("group %d/%d %s: %d file(s), %d annotation(s)",
			res.Index+1, len(m.session.Groups()), dataset.GroupName(g), len(m.session.Views()), m.session.Store().Len()), "info")

	case MsgDwellFired:
		m.sched.Fire(msg.data.(int))

	case MsgNoticeExpired:
		if msg.data.(int) == m.noticeSeq {
			m.notice, m.noticeKind = "", ""
		}
	}
	return nil
}

func (m *Model) handleLoadingKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.session.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.nextGroup):
		return m.requestSwitch(1)
	case key.Matches(msg, m.keys.prevGroup):
		return m.requestSwitch(-1)
	}
	return nil
}

func (m *Model) handleLabelKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.session.Close()
		return tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.panLeft):
		m.session.Pan(viewport.Prev)
		m.clampCursor()
		m.pointerMoved()
	case key.Matches(msg, m.keys.panRight):
		m.session.Pan(viewport.Next)
		m.clampCursor()
		m.pointerMoved()
	case key.Matches(msg, m.keys.zoomIn):
		m.session.Zoom(viewport.In)
		m.clampCursor()
	case key.Matches(msg, m.keys.zoomOut):
		m.session.Zoom(viewport.Out)
		m.clampCursor()
	case key.Matches(msg, m.keys.nextView):
		m.focusView(1)
	case key.Matches(msg, m.keys.prevView):
		m.focusView(-1)
	case key.Matches(msg, m.keys.up):
		m.table.MoveUp(1)
	case key.Matches(msg, m.keys.down):
		m.table.MoveDown(1)
	case key.Matches(msg, m.keys.draw):
		return m.draw()
	case key.Matches(msg, m.keys.enter):
		return m.click()
	case key.Matches(msg, m.keys.back):
		if _, ok := m.session.Draft(); ok {
			m.session.CancelDraft()
			return m.startNotice("interval discarded", "info")
		}
		m.session.ClearSelection()
	case key.Matches(msg, m.keys.moveLeft):
		return m.drag(-m.step())
	case key.Matches(msg, m.keys.moveRight):
		return m.drag(m.step())
	case key.Matches(msg, m.keys.resize):
		return m.resize()
	case key.Matches(msg, m.keys.locate):
		if id, ok := m.selectedRow(); ok {
			return m.locate(id)
		}
	case key.Matches(msg, m.keys.find):
		return m.ask(promptLocate, "locate id: ")
	case key.Matches(msg, m.keys.add):
		return m.ask(promptAdd, "start end: ")
	case key.Matches(msg, m.keys.remove):
		return m.remove()
	case key.Matches(msg, m.keys.clear):
		if m.session.Store().Len() > 0 {
			m.confirmWith(confirmClear)
		}
	case key.Matches(msg, m.keys.nextGroup):
		return m.requestSwitch(1)
	case key.Matches(msg, m.keys.prevGroup):
		return m.requestSwitch(-1)
	case key.Matches(msg, m.keys.yMode):
		mode := models.YWindow
		if m.session.YMode() == models.YWindow {
			mode = models.YGlobal
		}
		m.session.SetYMode(mode)
		return m.startNotice("y range: "+string(mode), "info")
	case key.Matches(msg, m.keys.sync):
		if v := m.activeView(); v != nil {
			if err := m.session.SyncRange(v.ID); err != nil {
				return m.fail(err)
			}
			return m.startNotice("synced range from "+v.Name, "info")
		}
	case key.Matches(msg, m.keys.resync):
		n := m.session.Resync()
		return m.startNotice(fmt.Sprintf("rebuilt %d interval(s)", n), "info")
	case key.Matches(msg, m.keys.slider):
		d := int(msg.String()[0] - '0')
		m.slider.Set(d * 100 / 9)
		m.clampCursor()
		m.pointerMoved()
	case key.Matches(msg, m.keys.save):
		m.afterSave = -1
		return m.save()
	}
	return nil
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		m.input.Blur()
		m.view = LabelView
		return nil
	case key.Matches(msg, m.keys.enter):
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.view = LabelView
		return m.submit(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.view = LabelView
		switch m.confirm {
		case confirmOverwrite:
			return m.writeOutput(true)
		case confirmSwitch:
			return m.save()
		case confirmClear:
			m.session.ClearAll()
			return m.startNotice("cleared all intervals", "info")
		}
	case key.Matches(msg, m.keys.no):
		m.view = LabelView
		switch m.confirm {
		case confirmSwitch:
			next := m.afterSave
			m.afterSave = -1
			return m.switchGroup(next)
		case confirmOverwrite:
			m.afterSave = -1
			return m.startNotice("save cancelled", "warn")
		}
	case key.Matches(msg, m.keys.back):
		m.view = LabelView
		m.afterSave = -1
	}
	return nil
}

func (m *Model) submit(value string) tea.Cmd {
	if value == "" {
		return nil
	}
	switch m.prompt {
	case promptLocate:
		id, err := strconv.Atoi(strings.TrimPrefix(value, "#"))
		if err != nil {
			return m.fail(fmt.Errorf("%w: %q is not an id", shared.ErrInvalidInput, value))
		}
		return m.locate(id)
	case promptAdd:
		start, end, err := parseInterval(value)
		if err != nil {
			return m.fail(err)
		}
		id, err := m.session.AddInterval(start, end)
		if err != nil {
			return m.fail(err)
		}
		return m.startNotice(fmt.Sprintf("added #%d", id), "success")
	}
	return nil
}

// parseInterval reads "start end", "start,end" or "start-end".
func parseInterval(s string) (int, int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '-' || r == ':' })
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: want two indices, got %q", shared.ErrInvalidInput, s)
	}
	start, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	end, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return start, end, nil
}

func (m *Model) ask(kind promptKind, prompt string) tea.Cmd {
	m.prompt = kind
	m.input.Prompt = prompt
	m.input.Reset()
	m.view = PromptView
	return m.input.Focus()
}

func (m *Model) confirmWith(kind confirmKind) {
	m.confirm = kind
	m.view = ConfirmView
}

func (m *Model) switchGroup(index int) tea.Cmd {
	req, err := m.session.BeginSwitch(m.ctx, index)
	if err != nil {
		return m.fail(err)
	}
	m.view = LoadingView
	return func() tea.Msg { return groupLoadedMsg(req.Run()) }
}

func (m *Model) requestSwitch(delta int) tea.Cmd {
	next, err := m.session.Step(delta)
	if err != nil {
		if delta > 0 {
			return m.startNotice("already at the last group", "warn")
		}
		return m.startNotice("already at the first group", "warn")
	}
	if m.session.NeedsSaveConfirm() {
		m.afterSave = next
		m.confirmWith(confirmSwitch)
		return nil
	}
	return m.switchGroup(next)
}

func (m *Model) save() tea.Cmd {
	conflicts, err := m.session.SaveConflicts()
	if err != nil {
		m.afterSave = -1
		return m.fail(err)
	}
	if len(conflicts) > 0 {
		m.conflicts = conflicts
		m.confirmWith(confirmOverwrite)
		return nil
	}
	return m.writeOutput(false)
}

func (m *Model) writeOutput(overwrite bool) tea.Cmd {
	next := m.afterSave
	m.afterSave = -1
	m.conflicts = nil

	res, err := m.session.Save(overwrite)
	if err != nil {
		return m.fail(err)
	}
	note := m.startNotice(fmt.Sprintf("saved %d file(s) to %s", len(res.Files), strings.Join(res.Dirs, ", ")), "success")
	if next >= 0 {
		return tea.Batch(note, m.switchGroup(next))
	}
	return note
}

func (m *Model) draw() tea.Cmd {
	if _, ok := m.session.Draft(); ok {
		return m.commitDraft()
	}
	if err := m.session.StartDraft(m.cursor); err != nil {
		return m.fail(err)
	}
	return nil
}

func (m *Model) commitDraft() tea.Cmd {
	m.session.UpdateDraft(m.cursor)
	id, err := m.session.ConfirmDraft()
	if err != nil {
		m.session.CancelDraft()
		return m.fail(err)
	}
	return m.startNotice(fmt.Sprintf("added #%d", id), "success")
}

func (m *Model) click() tea.Cmd {
	if _, ok := m.session.Draft(); ok {
		return m.commitDraft()
	}
	v := m.activeView()
	if v == nil {
		return nil
	}
	if m.session.Click(v.ID, m.cursor) {
		if id, ok := m.session.ArmedAnnotation(); ok {
			m.selectRow(id)
		}
	}
	return nil
}

func (m *Model) drag(delta int) tea.Cmd {
	v := m.activeView()
	if v == nil {
		return nil
	}
	if err := m.session.Drag(v.ID, delta); err != nil {
		return m.fail(err)
	}
	m.cursor += delta
	m.clampCursor()
	m.pointerMoved()
	return nil
}

func (m *Model) resize() tea.Cmd {
	v := m.activeView()
	id, ok := m.session.ArmedAnnotation()
	if v == nil || !ok {
		return m.fail(fmt.Errorf("%w: nothing selected", shared.ErrDragNotPermitted))
	}
	a, _ := m.session.Store().Get(id)
	edge := masks.Mask{Start: a.Start, End: a.End}.NearestEdge(m.cursor)
	if err := m.session.Resize(v.ID, edge, m.cursor); err != nil {
		return m.fail(err)
	}
	return nil
}

func (m *Model) remove() tea.Cmd {
	if id, ok := m.session.ArmedAnnotation(); ok && m.session.DeleteArmed() {
		return m.startNotice(fmt.Sprintf("deleted #%d", id), "info")
	}
	id, ok := m.selectedRow()
	if !ok {
		return nil
	}
	if m.session.Delete(id) == 0 {
		return m.fail(fmt.Errorf("%w: %d", shared.ErrAnnotationNotFound, id))
	}
	return m.startNotice(fmt.Sprintf("deleted #%d", id), "info")
}

func (m *Model) locate(id int) tea.Cmd {
	if err := m.session.Locate(id); err != nil {
		return m.fail(err)
	}
	a, _ := m.session.Store().Get(id)
	m.cursor = a.Center()
	m.clampCursor()
	m.selectRow(id)
	return nil
}

func (m *Model) activeView() *workspace.View {
	views := m.session.Views()
	if m.active < 0 || m.active >= len(views) {
		return nil
	}
	return views[m.active]
}

func (m *Model) focusView(delta int) {
	n := len(m.session.Views())
	if n == 0 {
		return
	}
	m.active = ((m.active+delta)%n + n) % n
	m.session.Enter()
	m.clampCursor()
	m.pointerMoved()
}

// step is the number of samples under one plot column.
func (m *Model) step() int {
	v := m.activeView()
	if v == nil {
		return 1
	}
	return max(1, v.Nav.Size()/m.plotWidth())
}

func (m *Model) moveCursor(dir int) {
	v := m.activeView()
	if v == nil {
		return
	}
	start, end := v.Nav.Range()
	x := m.cursor + dir*m.step()
	switch {
	case x < start:
		m.session.Pan(viewport.Prev)
	case x >= end:
		m.session.Pan(viewport.Next)
	}
	m.cursor = x
	m.clampCursor()
	m.pointerMoved()
}

func (m *Model) pointerMoved() {
	v := m.activeView()
	if v == nil {
		return
	}
	if _, ok := m.session.Draft(); ok {
		m.session.UpdateDraft(m.cursor)
	}
	m.session.Hover(v.ID, m.cursor)
}

func (m *Model) centerCursor() {
	if v := m.activeView(); v != nil {
		start, end := v.Nav.Range()
		m.cursor = (start + end) / 2
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	v := m.activeView()
	if v == nil || v.Len() == 0 {
		m.cursor = 0
		return
	}
	start, end := v.Nav.Range()
	m.cursor = max(start, min(m.cursor, end-1))
}

// refresh mirrors session state into the bubbles components.
func (m *Model) refresh() {
	m.table.SetRows(annotationRows(m.session.Store().ExportAll()))
	if n := len(m.table.Rows()); n > 0 && (m.table.Cursor() < 0 || m.table.Cursor() >= n) {
		m.table.SetCursor(m.table.Cursor())
	}
	if v := m.activeView(); v != nil {
		m.slider.Bind(v.Nav)
	} else {
		m.slider.Bind(nil)
	}
}

func (m *Model) fail(err error) tea.Cmd {
	m.logger.Warn("action failed", "err", err)
	switch {
	case errors.Is(err, shared.ErrDragNotPermitted):
		return m.startNotice("select an interval first", "warn")
	case errors.Is(err, shared.ErrInvalidInterval):
		return m.startNotice(fmt.Sprintf("interval too short (min %d samples)", m.session.Store().MinWidth()), "warn")
	}
	return m.startNotice(err.Error(), "error")
}

func (m *Model) startNotice(msg, kind string) tea.Cmd {
	m.notice = msg
	m.noticeKind = kind

	m.noticeSeq++
	id := m.noticeSeq
	return tea.Tick(m.noticeTTL, func(time.Time) tea.Msg { return noticeExpiredMsg(id) })
}
