package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"

	"github.com/desertthunder/tslabel/internal/dataset"
	"github.com/desertthunder/tslabel/internal/models"
	"github.com/desertthunder/tslabel/internal/workspace"
)

const defaultPlotWidth = 80

var cursorShade = lipgloss.Color("#626262")

var bars = []rune("▁▂▃▄▅▆▇█")

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case PromptView:
		return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderLabel(), m.input.View(),
			m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back}))
	case ConfirmView:
		return fmt.Sprintf("%s\n\n%s\n\n%s", m.renderLabel(), styles.warn.Render(m.question()),
			m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.back}))
	default:
		return fmt.Sprintf("%s\n\n%s", m.renderLabel(), m.help.View(m.keys))
	}
}

func (m *Model) plotWidth() int {
	if m.width <= 0 {
		return defaultPlotWidth
	}
	return max(20, m.width-2)
}

func (m *Model) renderLoading() string {
	groups := m.session.Groups()
	var g models.Group
	if i := m.session.Target(); i >= 0 && i < len(groups) {
		g = groups[i]
	}
	title := styles.title.Render(fmt.Sprintf("Loading group %d/%d", m.session.Target()+1, len(groups)))
	info := fmt.Sprintf("%s (%d files)", g.Key, len(g.Files))
	return fmt.Sprintf("%s\n%s\n\n%s", title, info,
		m.help.ShortHelpView([]key.Binding{m.keys.nextGroup, m.keys.prevGroup, m.keys.quit}))
}

func (m *Model) renderLabel() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	views := m.session.Views()
	if len(views) == 0 {
		b.WriteString(styles.err.Render("no data loaded for this group"))
		b.WriteString("\n")
	}
	for i, v := range views {
		b.WriteString(m.renderView(v, i == m.active))
	}

	b.WriteString(m.renderReadout())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(m.renderNotice())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.table.View())
	return b.String()
}

func (m *Model) renderHeader() string {
	g, _ := m.session.Group()
	header := fmt.Sprintf("group %d/%d · %s · %d file(s) · %d interval(s)",
		m.session.Current()+1, len(m.session.Groups()), dataset.GroupName(g),
		len(m.session.Views()), m.session.Store().Len())
	if m.session.Dirty() {
		header += " " + styles.As("[modified]", lipgloss.Color("#FFA500"))
	}
	return styles.title.Render(header)
}

func (m *Model) renderView(v *workspace.View, active bool) string {
	width := m.plotWidth()
	start, end := v.Nav.Range()
	lo, hi := v.YRange()

	name := v.Name
	if active {
		name = styles.active.Render(name)
	}

	line := sparkline(v.Data, start, end, width, lo, hi)
	cursor := -1
	if active && end > start {
		cursor = columnOf(m.cursor, start, end, width)
	}

	var plot strings.Builder
	for col, r := range line {
		if col == cursor {
			plot.WriteString(styles.cursor.Render(string(r)))
			continue
		}
		plot.WriteRune(r)
	}

	return fmt.Sprintf("%s %s\n%s\n%s\n", name,
		styles.help.Render(fmt.Sprintf("[%d, %d) of %d · y %.4g..%.4g", start, end, v.Len(), lo, hi)),
		plot.String(), m.maskStrip(v, start, end, width, cursor))
}

// sparkline buckets data[start:end] into width columns and maps each bucket mean onto a bar.
func sparkline(data []float64, start, end, width int, lo, hi float64) []rune {
	out := make([]rune, width)
	span := end - start
	for col := range out {
		a := start + col*span/width
		b := min(start+(col+1)*span/width, len(data))
		if b <= a {
			b = a + 1
		}
		if span <= 0 || a >= len(data) {
			out[col] = ' '
			continue
		}
		mean := floats.Sum(data[a:b]) / float64(b-a)
		level := len(bars) / 2
		if hi > lo {
			level = int((mean - lo) / (hi - lo) * float64(len(bars)-1))
		}
		out[col] = bars[max(0, min(level, len(bars)-1))]
	}
	return out
}

// columnOf maps sample x in the window [start, end) onto a plot column.
func columnOf(x, start, end, width int) int {
	if end <= start {
		return 0
	}
	return max(0, min(width-1, (x-start)*width/(end-start)))
}

type cell struct {
	r     rune
	style *lipgloss.Style
}

// maskStrip draws the intervals of v under the plot. Column cursor, when not -1, is shaded.
func (m *Model) maskStrip(v *workspace.View, start, end, width, cursor int) string {
	cells := make([]cell, width)
	for i := range cells {
		cells[i] = cell{r: '·', style: &styles.help}
	}

	paint := func(s, e int, r rune, st *lipgloss.Style) {
		if e <= start || s >= end {
			return
		}
		from := columnOf(max(s, start), start, end, width)
		to := columnOf(min(e, end)-1, start, end, width)
		for c := from; c <= to; c++ {
			cells[c] = cell{r: r, style: st}
		}
	}

	for _, mk := range v.Masks.Masks() {
		if mk.Selected {
			paint(mk.Start, mk.End, '█', &styles.selected)
		} else {
			paint(mk.Start, mk.End, '▀', &styles.mask)
		}
	}
	if d, ok := m.session.Draft(); ok {
		paint(d.Start, max(d.End, d.Start+1), '░', &styles.draft)
	}

	var b strings.Builder
	for col, c := range cells {
		if col == cursor {
			b.WriteString(styles.On(string(c.r), cursorShade))
			continue
		}
		b.WriteString(c.style.Render(string(c.r)))
	}
	return b.String()
}

func (m *Model) renderReadout() string {
	v := m.activeView()
	if v == nil {
		return ""
	}

	parts := []string{fmt.Sprintf("x=%d", m.cursor)}
	if y, ok := v.Value(m.cursor); ok {
		parts = append(parts, fmt.Sprintf("y=%.4g", y))
	}
	parts = append(parts, fmt.Sprintf("%d%%", m.slider.Value()), "y:"+string(m.session.YMode()))

	if d, ok := m.session.Draft(); ok {
		parts = append(parts, styles.draft.Render(fmt.Sprintf("drawing [%d, %d)", d.Start, d.End)))
	}
	if id, ok := m.session.ArmedAnnotation(); ok {
		a, _ := m.session.Store().Get(id)
		parts = append(parts, styles.selected.Render("selected "+a.String()))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderNotice() string {
	text := noticeText(m.notice, m.noticeKind)
	switch m.noticeKind {
	case "success":
		return styles.ok.Render(text)
	case "warn":
		return styles.warn.Render(text)
	case "error":
		return styles.err.Render(text)
	}
	return text
}

func noticeText(msg, kind string) string {
	if msg == "" {
		return ""
	}
	var icon string
	switch kind {
	case "info":
		icon = "ℹ"
	case "success":
		icon = "✓"
	case "warn":
		icon = "!"
	case "error":
		icon = "×"
	}
	if icon == "" {
		return msg
	}
	return icon + " " + msg
}

func (m *Model) question() string {
	switch m.confirm {
	case confirmOverwrite:
		return fmt.Sprintf("Overwrite %d existing file(s)? (%s)", len(m.conflicts), strings.Join(m.conflicts, ", "))
	case confirmSwitch:
		return "Save the current group before switching? (esc to stay)"
	case confirmClear:
		return fmt.Sprintf("Delete all %d interval(s)?", m.session.Store().Len())
	}
	return ""
}
